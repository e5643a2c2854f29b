// Package dependencies manages the municipal departments that own
// procedures and administrative acts.
package dependencies

import (
	"strconv"
	"time"

	"github.com/tramita/tramita/internal/table"
)

// Dependency is a municipal department.
type Dependency struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Head      string    `json:"head"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Active    bool      `json:"active"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (d Dependency) record() table.Record {
	return table.Record{
		"id":         strconv.FormatInt(d.ID, 10),
		"code":       d.Code,
		"name":       d.Name,
		"head":       d.Head,
		"phone":      d.Phone,
		"email":      d.Email,
		"active":     d.Active,
		"updated_at": d.UpdatedAt,
	}
}
