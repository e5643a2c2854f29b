// Package faqs manages the portal's frequently asked questions. The set is
// small, so its listing runs in client mode over the full set.
package faqs

import (
	"strconv"
	"time"

	"github.com/tramita/tramita/internal/table"
)

// Categories accepted by the listing's select filter.
var Categories = []string{"tramites", "pagos", "portal", "general"}

// FAQ is one question/answer pair.
type FAQ struct {
	ID        int64     `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Category  string    `json:"category"`
	Position  int       `json:"position"`
	Published bool      `json:"published"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (f FAQ) record() table.Record {
	return table.Record{
		"id":         strconv.FormatInt(f.ID, 10),
		"question":   f.Question,
		"answer":     f.Answer,
		"category":   f.Category,
		"position":   f.Position,
		"published":  f.Published,
		"updated_at": f.UpdatedAt,
	}
}
