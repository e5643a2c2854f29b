// Package catalog holds helpers shared by the portal's entity modules.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tramita/tramita/internal/table"
)

// Enqueuer submits heavy whole-set operations to the background queue so
// they run off the request path. Implemented by the jobs client.
type Enqueuer interface {
	EnqueueExport(ctx context.Context, entity string, q table.Query) (string, error)
	EnqueueBulkArchive(ctx context.Context, entity string, q table.Query) (string, error)
}

// UniqueViolation reports whether err is a Postgres unique-constraint
// violation, used to surface duplicates as conflicts instead of 500s.
func UniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// ParseIDs converts selection keys back to numeric row IDs.
func ParseIDs(keys []string) ([]int64, error) {
	ids := make([]int64, 0, len(keys))
	for _, k := range keys {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("catalog: invalid row key %q", k)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
