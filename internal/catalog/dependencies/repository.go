package dependencies

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/tramita/tramita/internal/catalog"
	"github.com/tramita/tramita/internal/platform/db"
	"github.com/tramita/tramita/internal/table"
	"github.com/tramita/tramita/internal/table/tablesql"
)

// ErrNotFound is returned when a dependency does not exist.
var ErrNotFound = errors.New("dependency not found")

type Repository interface {
	table.Source
	table.KeyLister
	table.RecordResolver
	Get(ctx context.Context, id int64) (Dependency, error)
	Create(ctx context.Context, dep Dependency) (Dependency, error)
	Update(ctx context.Context, id int64, dep Dependency) error
	Delete(ctx context.Context, ids []int64) error
	SetActive(ctx context.Context, ids []int64, active bool) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// Fetch runs the listing pipeline server-side via tablesql. The count and
// page queries are independent, so they run concurrently on the pool.
func (r *repository) Fetch(ctx context.Context, q table.Query) (table.Result, error) {
	countSQL, countArgs, err := tablesql.CountQuery(sqlSpec, q)
	if err != nil {
		return table.Result{}, err
	}
	selectSQL, args, err := tablesql.SelectQuery(sqlSpec, q)
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
			return fmt.Errorf("dependencies: count: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		rows, err := r.pool.Query(ctx, selectSQL, args...)
		if err != nil {
			return fmt.Errorf("dependencies: list: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var d Dependency
			if err := rows.Scan(&d.ID, &d.Code, &d.Name, &d.Head, &d.Phone, &d.Email, &d.Active, &d.UpdatedAt); err != nil {
				return fmt.Errorf("dependencies: scan: %w", err)
			}
			records = append(records, d.record())
		}
		return rows.Err()
	})

	if err := g.Wait(); err != nil {
		return table.Result{}, err
	}
	return table.Result{Records: records, Total: total}, nil
}

// Keys returns every matching row key for select-all.
func (r *repository) Keys(ctx context.Context, q table.Query) ([]string, error) {
	sql, args, err := tablesql.KeysQuery(sqlSpec, "d.id", q)
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("dependencies: keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		keys = append(keys, fmt.Sprintf("%d", id))
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
	sql, args, err := tablesql.ResolveQuery(sqlSpec, "d.id", q, ids)
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("dependencies: resolve: %w", err)
	}
	defer rows.Close()

	var records []table.Record
	for rows.Next() {
		var d Dependency
		if err := rows.Scan(&d.ID, &d.Code, &d.Name, &d.Head, &d.Phone, &d.Email, &d.Active, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("dependencies: resolve scan: %w", err)
		}
		records = append(records, d.record())
	}
	return records, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Dependency, error) {
	var d Dependency
	err := r.pool.QueryRow(ctx,
		`SELECT id, code, name, head, phone, email, active, updated_at
		 FROM dependencies WHERE id = $1`, id).
		Scan(&d.ID, &d.Code, &d.Name, &d.Head, &d.Phone, &d.Email, &d.Active, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Dependency{}, ErrNotFound
	}
	if err != nil {
		return Dependency{}, fmt.Errorf("dependencies: get: %w", err)
	}
	return d, nil
}

func (r *repository) Create(ctx context.Context, dep Dependency) (Dependency, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO dependencies (code, name, head, phone, email, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		 RETURNING id, updated_at`,
		dep.Code, dep.Name, dep.Head, dep.Phone, dep.Email, dep.Active, now).
		Scan(&dep.ID, &dep.UpdatedAt)
	if err != nil {
		return Dependency{}, err
	}
	return dep, nil
}

func (r *repository) Update(ctx context.Context, id int64, dep Dependency) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE dependencies
		 SET code = $1, name = $2, head = $3, phone = $4, email = $5, active = $6, updated_at = $7
		 WHERE id = $8`,
		dep.Code, dep.Name, dep.Head, dep.Phone, dep.Email, dep.Active, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the given dependencies in one transaction.
func (r *repository) Delete(ctx context.Context, ids []int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM dependencies WHERE id = ANY($1)`, ids)
		return err
	})
}

// SetActive flips the active flag for the given dependencies.
func (r *repository) SetActive(ctx context.Context, ids []int64, active bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE dependencies SET active = $1, updated_at = $2 WHERE id = ANY($3)`,
		active, time.Now(), ids)
	return err
}
