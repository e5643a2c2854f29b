package jobs

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tramita/tramita/internal/catalog/acts"
	"github.com/tramita/tramita/internal/catalog/procedures"
	"github.com/tramita/tramita/internal/platform/db"
	"github.com/tramita/tramita/internal/table/tablesql"
)

const exportBatchSize = 1000

type entitySpec struct {
	spec       tablesql.Spec
	keyExpr    string
	archiveSQL string
}

// Catalog entities that support whole-set jobs. The archive statement
// receives the matched ids as its only argument.
var entitySpecs = map[string]entitySpec{
	acts.Entity: {
		spec:       acts.SQLSpec,
		keyExpr:    "a.id",
		archiveSQL: `UPDATE acts SET status = 'archived', updated_at = now() WHERE id = ANY($1)`,
	},
	procedures.Entity: {
		spec:       procedures.SQLSpec,
		keyExpr:    "p.id",
		archiveSQL: `UPDATE procedures SET active = FALSE, updated_at = now() WHERE id = ANY($1)`,
	},
}

// CatalogTasks processes whole-set catalog jobs against the database.
type CatalogTasks struct {
	pool      *pgxpool.Pool
	logger    *slog.Logger
	exportDir string
}

// NewCatalogTasks builds the catalog task handlers.
func NewCatalogTasks(pool *pgxpool.Pool, logger *slog.Logger, exportDir string) *CatalogTasks {
	return &CatalogTasks{pool: pool, logger: logger, exportDir: exportDir}
}

// Handlers returns the task registrations for worker setup.
func (t *CatalogTasks) Handlers() []TaskHandler {
	return []TaskHandler{
		{Type: TaskBulkArchive, Handler: t.HandleBulkArchive},
		{Type: TaskExportCSV, Handler: t.HandleExportCSV},
	}
}

// HandleBulkArchive archives every row matching the payload's query.
func (t *CatalogTasks) HandleBulkArchive(ctx context.Context, task *asynq.Task) error {
	var payload BulkArchivePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	es, ok := entitySpecs[payload.Entity]
	if !ok {
		t.logger.Warn("bulk archive for unknown entity", slog.String("entity", payload.Entity))
		return asynq.SkipRetry
	}

	sql, args, err := tablesql.KeysQuery(es.spec, es.keyExpr, payload.Query)
	if err != nil {
		t.logger.Warn("bulk archive query rejected", slog.Any("error", err))
		return asynq.SkipRetry
	}
	rows, err := t.pool.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("jobs: bulk archive keys: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	err = db.WithTx(ctx, t.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, es.archiveSQL, ids)
		return err
	})
	if err != nil {
		return err
	}
	t.logger.Info("bulk archive completed",
		slog.String("entity", payload.Entity), slog.Int("rows", len(ids)))
	return nil
}

// HandleExportCSV streams the filtered listing to a CSV artifact, paging
// through the result set in batches.
func (t *CatalogTasks) HandleExportCSV(ctx context.Context, task *asynq.Task) error {
	var payload ExportCSVPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	es, ok := entitySpecs[payload.Entity]
	if !ok {
		t.logger.Warn("export for unknown entity", slog.String("entity", payload.Entity))
		return asynq.SkipRetry
	}

	if err := os.MkdirAll(t.exportDir, 0o755); err != nil {
		return fmt.Errorf("jobs: export dir: %w", err)
	}
	path := filepath.Join(t.exportDir, payload.Entity+"-"+payload.ExportID+".csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("jobs: create export: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	q := payload.Query
	q.Page = 1
	q.PageSize = exportBatchSize
	wroteHeader := false
	for {
		sql, args, err := tablesql.SelectQuery(es.spec, q)
		if err != nil {
			t.logger.Warn("export query rejected", slog.Any("error", err))
			return asynq.SkipRetry
		}
		n, err := t.writeBatch(ctx, w, sql, args, &wroteHeader)
		if err != nil {
			return err
		}
		if n < exportBatchSize {
			break
		}
		q.Page++
	}

	if err := w.Error(); err != nil {
		return fmt.Errorf("jobs: write export: %w", err)
	}
	t.logger.Info("export completed",
		slog.String("entity", payload.Entity), slog.String("path", path))
	return nil
}

func (t *CatalogTasks) writeBatch(ctx context.Context, w *csv.Writer, sql string, args []any, wroteHeader *bool) (int, error) {
	rows, err := t.pool.Query(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("jobs: export batch: %w", err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		if !*wroteHeader {
			fields := rows.FieldDescriptions()
			header := make([]string, len(fields))
			for i, fd := range fields {
				header[i] = fd.Name
			}
			if err := w.Write(header); err != nil {
				return n, err
			}
			*wroteHeader = true
		}
		values, err := rows.Values()
		if err != nil {
			return n, err
		}
		record := make([]string, len(values))
		for i, v := range values {
			record[i] = fmt.Sprint(v)
		}
		if err := w.Write(record); err != nil {
			return n, err
		}
		n++
	}
	return n, rows.Err()
}
