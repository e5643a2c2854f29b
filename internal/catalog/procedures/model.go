// Package procedures manages the trámites citizens can start through the
// portal: what each one requires, what it costs, and who owns it.
package procedures

import (
	"strconv"
	"time"

	"github.com/tramita/tramita/internal/table"
)

// Categories a procedure can belong to. The listing's select filter only
// accepts these.
var Categories = []string{"licencias", "registro", "pagos", "certificados", "urbanismo"}

// Procedure is one citizen-facing trámite.
type Procedure struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Category       string    `json:"category"`
	DependencyID   int64     `json:"dependency_id"`
	DependencyName string    `json:"dependency_name"`
	Requirements   []string  `json:"requirements"`
	Cost           float64   `json:"cost"`
	DurationDays   int       `json:"duration_days"`
	Active         bool      `json:"active"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (p Procedure) record() table.Record {
	return table.Record{
		"id":              strconv.FormatInt(p.ID, 10),
		"name":            p.Name,
		"category":        p.Category,
		"dependency_name": p.DependencyName,
		"cost":            p.Cost,
		"duration_days":   p.DurationDays,
		"active":          p.Active,
		"updated_at":      p.UpdatedAt,
	}
}
