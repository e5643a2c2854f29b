package faqs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tramita/tramita/internal/platform/db"
)

// ErrNotFound is returned when a FAQ does not exist.
var ErrNotFound = errors.New("faq not found")

type Repository interface {
	All(ctx context.Context) ([]FAQ, error)
	Get(ctx context.Context, id int64) (FAQ, error)
	Create(ctx context.Context, f FAQ) (FAQ, error)
	Update(ctx context.Context, id int64, f FAQ) error
	Delete(ctx context.Context, ids []int64) error
	SetPublished(ctx context.Context, ids []int64, published bool) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// All loads the complete FAQ set in display order.
func (r *repository) All(ctx context.Context) ([]FAQ, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, question, answer, category, position, published, updated_at
		 FROM faqs ORDER BY position ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("faqs: list: %w", err)
	}
	defer rows.Close()

	var faqs []FAQ
	for rows.Next() {
		var f FAQ
		if err := rows.Scan(&f.ID, &f.Question, &f.Answer, &f.Category, &f.Position, &f.Published, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("faqs: scan: %w", err)
		}
		faqs = append(faqs, f)
	}
	return faqs, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (FAQ, error) {
	var f FAQ
	err := r.pool.QueryRow(ctx,
		`SELECT id, question, answer, category, position, published, updated_at
		 FROM faqs WHERE id = $1`, id).
		Scan(&f.ID, &f.Question, &f.Answer, &f.Category, &f.Position, &f.Published, &f.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return FAQ{}, ErrNotFound
	}
	if err != nil {
		return FAQ{}, fmt.Errorf("faqs: get: %w", err)
	}
	return f, nil
}

func (r *repository) Create(ctx context.Context, f FAQ) (FAQ, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO faqs (question, answer, category, position, published, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)
		 RETURNING id, updated_at`,
		f.Question, f.Answer, f.Category, f.Position, f.Published, now).
		Scan(&f.ID, &f.UpdatedAt)
	if err != nil {
		return FAQ{}, err
	}
	return f, nil
}

func (r *repository) Update(ctx context.Context, id int64, f FAQ) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE faqs
		 SET question = $1, answer = $2, category = $3, position = $4, published = $5, updated_at = $6
		 WHERE id = $7`,
		f.Question, f.Answer, f.Category, f.Position, f.Published, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, ids []int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM faqs WHERE id = ANY($1)`, ids)
		return err
	})
}

func (r *repository) SetPublished(ctx context.Context, ids []int64, published bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE faqs SET published = $1, updated_at = $2 WHERE id = ANY($3)`,
		published, time.Now(), ids)
	return err
}
