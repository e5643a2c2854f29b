package acts

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/tramita/tramita/internal/catalog"
	"github.com/tramita/tramita/internal/platform/db"
	"github.com/tramita/tramita/internal/table"
	"github.com/tramita/tramita/internal/table/tablesql"
)

// ErrNotFound is returned when an act does not exist.
var ErrNotFound = errors.New("act not found")

type Repository interface {
	table.Source
	table.KeyLister
	table.RecordResolver
	Get(ctx context.Context, id int64) (Act, error)
	Create(ctx context.Context, act Act) (Act, error)
	Update(ctx context.Context, id int64, act Act) error
	SetStatus(ctx context.Context, ids []int64, status string) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Fetch(ctx context.Context, q table.Query) (table.Result, error) {
	countSQL, countArgs, err := tablesql.CountQuery(SQLSpec, q)
	if err != nil {
		return table.Result{}, err
	}
	selectSQL, args, err := tablesql.SelectQuery(SQLSpec, q)
	if err != nil {
		return table.Result{}, err
	}

	var (
		total   int
		records []table.Record
	)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := r.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
			return fmt.Errorf("acts: count: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		rows, err := r.pool.Query(ctx, selectSQL, args...)
		if err != nil {
			return fmt.Errorf("acts: list: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var a Act
			if err := rows.Scan(&a.ID, &a.Number, &a.Title, &a.Kind, &a.Status,
				&a.IssuedAt, &a.DependencyID, &a.DependencyName, &a.UpdatedAt); err != nil {
				return fmt.Errorf("acts: scan: %w", err)
			}
			records = append(records, a.record())
		}
		return rows.Err()
	})

	if err := g.Wait(); err != nil {
		return table.Result{}, err
	}
	return table.Result{Records: records, Total: total}, nil
}

func (r *repository) Keys(ctx context.Context, q table.Query) ([]string, error) {
	sql, args, err := tablesql.KeysQuery(SQLSpec, "a.id", q)
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("acts: keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		keys = append(keys, strconv.FormatInt(id, 10))
	}
	return keys, rows.Err()
}

// Resolve returns the selected records for specific keys, wherever they
// fall in the paged result.
func (r *repository) Resolve(ctx context.Context, q table.Query, keys []string) ([]table.Record, error) {
	ids, err := catalog.ParseIDs(keys)
	if err != nil {
		return nil, err
	}
	sql, args, err := tablesql.ResolveQuery(SQLSpec, "a.id", q, ids)
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("acts: resolve: %w", err)
	}
	defer rows.Close()

	var records []table.Record
	for rows.Next() {
		var a Act
		if err := rows.Scan(&a.ID, &a.Number, &a.Title, &a.Kind, &a.Status,
			&a.IssuedAt, &a.DependencyID, &a.DependencyName, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("acts: resolve scan: %w", err)
		}
		records = append(records, a.record())
	}
	return records, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Act, error) {
	var a Act
	err := r.pool.QueryRow(ctx,
		`SELECT a.id, a.number, a.title, a.kind, a.status,
		        a.issued_at, a.dependency_id, d.name, a.updated_at
		 FROM acts a JOIN dependencies d ON d.id = a.dependency_id
		 WHERE a.id = $1`, id).
		Scan(&a.ID, &a.Number, &a.Title, &a.Kind, &a.Status,
			&a.IssuedAt, &a.DependencyID, &a.DependencyName, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Act{}, ErrNotFound
	}
	if err != nil {
		return Act{}, fmt.Errorf("acts: get: %w", err)
	}
	return a, nil
}

func (r *repository) Create(ctx context.Context, act Act) (Act, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO acts (number, title, kind, status, issued_at, dependency_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		 RETURNING id, updated_at`,
		act.Number, act.Title, act.Kind, act.Status, act.IssuedAt, act.DependencyID, now).
		Scan(&act.ID, &act.UpdatedAt)
	if err != nil {
		return Act{}, err
	}
	return act, nil
}

func (r *repository) Update(ctx context.Context, id int64, act Act) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE acts
		 SET number = $1, title = $2, kind = $3, status = $4, issued_at = $5,
		     dependency_id = $6, updated_at = $7
		 WHERE id = $8`,
		act.Number, act.Title, act.Kind, act.Status, act.IssuedAt, act.DependencyID, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetStatus moves the given acts to a lifecycle state in one transaction.
func (r *repository) SetStatus(ctx context.Context, ids []int64, status string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`UPDATE acts SET status = $1, updated_at = $2 WHERE id = ANY($3)`,
			status, time.Now(), ids)
		return err
	})
}
