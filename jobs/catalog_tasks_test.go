package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tramita/tramita/internal/table"
)

func testTasks(t *testing.T) *CatalogTasks {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
	return NewCatalogTasks(nil, logger, t.TempDir())
}

func TestBulkArchiveSkipsMalformedPayload(t *testing.T) {
	tasks := testTasks(t)
	task := asynq.NewTask(TaskBulkArchive, []byte("{not json"))
	err := tasks.HandleBulkArchive(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestBulkArchiveSkipsUnknownEntity(t *testing.T) {
	tasks := testTasks(t)
	payload, err := json.Marshal(BulkArchivePayload{Entity: "ghosts"})
	require.NoError(t, err)
	err = tasks.HandleBulkArchive(context.Background(), asynq.NewTask(TaskBulkArchive, payload))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestBulkArchiveSkipsInvalidFilterGroup(t *testing.T) {
	tasks := testTasks(t)
	payload, err := json.Marshal(BulkArchivePayload{
		Entity: "acts",
		Query: table.Query{Group: &table.FilterGroup{
			Operator:   "NOR",
			Conditions: []table.FilterCondition{{Field: "status", Operator: table.OpEquals, Value: "draft"}},
		}},
	})
	require.NoError(t, err)
	err = tasks.HandleBulkArchive(context.Background(), asynq.NewTask(TaskBulkArchive, payload))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
