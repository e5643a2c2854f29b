package jobs

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/tramita/tramita/internal/table"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskBulkArchive archives every catalog row matching a listing query.
	TaskBulkArchive = "catalog:bulk_archive"
	// TaskExportCSV streams a filtered listing to a CSV artifact.
	TaskExportCSV = "catalog:export_csv"
)

// BulkArchivePayload carries a whole-set archive request.
type BulkArchivePayload struct {
	Entity string      `json:"entity"`
	Query  table.Query `json:"query"`
}

// ExportCSVPayload carries a filtered export request. ExportID names the
// artifact so the caller can poll for it.
type ExportCSVPayload struct {
	Entity   string      `json:"entity"`
	Query    table.Query `json:"query"`
	ExportID string      `json:"exportId"`
}

// NewBulkArchiveTask constructs an Asynq task for a whole-set archive.
func NewBulkArchiveTask(payload BulkArchivePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBulkArchive, data), nil
}

// NewExportCSVTask constructs an Asynq task for a CSV export.
func NewExportCSVTask(payload ExportCSVPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskExportCSV, data), nil
}

// EnqueueBulkArchive submits a whole-set archive job and returns its id.
func (c *Client) EnqueueBulkArchive(ctx context.Context, entity string, q table.Query) (string, error) {
	task, err := NewBulkArchiveTask(BulkArchivePayload{Entity: entity, Query: q})
	if err != nil {
		return "", err
	}
	info, err := c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

// EnqueueExport submits a CSV export job and returns the export id the
// artifact will be written under.
func (c *Client) EnqueueExport(ctx context.Context, entity string, q table.Query) (string, error) {
	exportID := uuid.NewString()
	task, err := NewExportCSVTask(ExportCSVPayload{Entity: entity, Query: q, ExportID: exportID})
	if err != nil {
		return "", err
	}
	if _, err := c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault)); err != nil {
		return "", err
	}
	return exportID, nil
}
