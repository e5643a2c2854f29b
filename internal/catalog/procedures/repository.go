package procedures

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
	"github.com/tramita/tramita/internal/table"
	"github.com/tramita/tramita/internal/table/tablesql"
)

// ErrNotFound is returned when a procedure does not exist.
var ErrNotFound = errors.New("procedure not found")

type Repository interface {
	table.Source
	table.KeyLister
	table.RecordResolver
	Get(ctx context.Context, id int64) (Procedure, error)
	Create(ctx context.Context, p Procedure) (Procedure, error)
	Update(ctx context.Context, id int64, p Procedure) error
	SetActive(ctx context.Context, ids []int64, active bool) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func scanProcedure(rows pgx.Rows) (Procedure, error) {
	var p Procedure
	err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.DependencyID, &p.DependencyName,
		&p.Requirements, &p.Cost, &p.DurationDays, &p.Active, &p.UpdatedAt)
	return p, err
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
			return fmt.Errorf("procedures: count: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		rows, err := r.pool.Query(ctx, selectSQL, args...)
		if err != nil {
			return fmt.Errorf("procedures: list: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			p, err := scanProcedure(rows)
			if err != nil {
				return fmt.Errorf("procedures: scan: %w", err)
			}
			records = append(records, p.record())
		}
		return rows.Err()
	})

	if err := g.Wait(); err != nil {
		return table.Result{}, err
	}
	return table.Result{Records: records, Total: total}, nil
}

func (r *repository) Keys(ctx context.Context, q table.Query) ([]string, error) {
	sql, args, err := tablesql.KeysQuery(SQLSpec, "p.id", q)
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("procedures: keys: %w", err)
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
	sql, args, err := tablesql.ResolveQuery(SQLSpec, "p.id", q, ids)
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("procedures: resolve: %w", err)
	}
	defer rows.Close()

	var records []table.Record
	for rows.Next() {
		p, err := scanProcedure(rows)
		if err != nil {
			return nil, fmt.Errorf("procedures: resolve scan: %w", err)
		}
		records = append(records, p.record())
	}
	return records, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Procedure, error) {
	var p Procedure
	err := r.pool.QueryRow(ctx,
		`SELECT p.id, p.name, p.category, p.dependency_id, d.name,
		        p.requirements, p.cost, p.duration_days, p.active, p.updated_at
		 FROM procedures p JOIN dependencies d ON d.id = p.dependency_id
		 WHERE p.id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Category, &p.DependencyID, &p.DependencyName,
			&p.Requirements, &p.Cost, &p.DurationDays, &p.Active, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Procedure{}, ErrNotFound
	}
	if err != nil {
		return Procedure{}, fmt.Errorf("procedures: get: %w", err)
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, p Procedure) (Procedure, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO procedures (name, category, dependency_id, requirements, cost, duration_days, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		 RETURNING id, updated_at`,
		p.Name, p.Category, p.DependencyID, p.Requirements, p.Cost, p.DurationDays, p.Active, now).
		Scan(&p.ID, &p.UpdatedAt)
	if err != nil {
		return Procedure{}, err
	}
	return p, nil
}

func (r *repository) Update(ctx context.Context, id int64, p Procedure) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE procedures
		 SET name = $1, category = $2, dependency_id = $3, requirements = $4,
		     cost = $5, duration_days = $6, active = $7, updated_at = $8
		 WHERE id = $9`,
		p.Name, p.Category, p.DependencyID, p.Requirements, p.Cost, p.DurationDays, p.Active, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) SetActive(ctx context.Context, ids []int64, active bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE procedures SET active = $1, updated_at = $2 WHERE id = ANY($3)`,
		active, time.Now(), ids)
	return err
}
