// Package acts manages administrative acts: resolutions, decrees and
// ordinances published by the municipality.
package acts

import (
	"strconv"
	"time"

	"github.com/tramita/tramita/internal/table"
)

// Kinds of administrative acts accepted by the listing's select filter.
var Kinds = []string{"resolucion", "decreto", "ordenanza", "aviso"}

// Act lifecycle states.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// Statuses enumerated for the select filter.
var Statuses = []string{StatusDraft, StatusPublished, StatusArchived}

// Act is one administrative act.
type Act struct {
	ID             int64     `json:"id"`
	Number         string    `json:"number"`
	Title          string    `json:"title"`
	Kind           string    `json:"kind"`
	Status         string    `json:"status"`
	IssuedAt       time.Time `json:"issued_at"`
	DependencyID   int64     `json:"dependency_id"`
	DependencyName string    `json:"dependency_name"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (a Act) record() table.Record {
	return table.Record{
		"id":              strconv.FormatInt(a.ID, 10),
		"number":          a.Number,
		"title":           a.Title,
		"kind":            a.Kind,
		"status":          a.Status,
		"issued_at":       a.IssuedAt,
		"dependency_name": a.DependencyName,
		"updated_at":      a.UpdatedAt,
	}
}
