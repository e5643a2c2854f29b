package table

import "fmt"

// DataType classifies the values a column holds and selects its default
// comparator and range semantics.
type DataType string

const (
	DataString DataType = "string"
	DataNumber DataType = "number"
	DataBool   DataType = "boolean"
	DataDate   DataType = "date"
)

// FilterType selects how the simple filter panel matches a column.
type FilterType string

const (
	FilterText    FilterType = "text"
	FilterSelect  FilterType = "select"
	FilterBoolean FilterType = "boolean"
	FilterRange   FilterType = "range"
	FilterDate    FilterType = "date"
)

// CardRole is a caller-declared hint for the card layout below the
// responsive breakpoint.
type CardRole string

const (
	RoleAuto      CardRole = ""
	RolePrimary   CardRole = "primary"
	RoleSecondary CardRole = "secondary"
	RoleHidden    CardRole = "hidden"
)

// Comparator orders two field values. Negative means a < b.
type Comparator func(a, b any) int

// Column declares one column of a listing: identity, typing, and which
// engine features it participates in. Columns are supplied by the caller
// and treated as read-only per pipeline run.
type Column struct {
	Key        string
	Title      string
	Sortable   bool
	Filterable bool
	FilterType FilterType
	DataType   DataType
	// Options is the finite value set for FilterSelect columns.
	Options []string
	// Comparator overrides the DataType default ordering.
	Comparator Comparator
	// CardRole hints the column's role in the card layout.
	CardRole CardRole
}

// validate enforces the per-column invariants at configuration acceptance
// time, before any value can reach the evaluator.
func (c Column) validate() error {
	if c.Key == "" {
		return fmt.Errorf("column: key is required")
	}
	switch c.DataType {
	case DataString, DataNumber, DataBool, DataDate, "":
	default:
		return fmt.Errorf("column %q: unknown data type %q", c.Key, c.DataType)
	}
	if !c.Filterable {
		return nil
	}
	switch c.FilterType {
	case FilterText, FilterBoolean, FilterDate, "":
	case FilterSelect:
		if len(c.Options) == 0 {
			return fmt.Errorf("column %q: select filter requires options", c.Key)
		}
	case FilterRange:
		if c.DataType != DataNumber && c.DataType != DataDate {
			return fmt.Errorf("column %q: range filter requires a number or date column, got %q", c.Key, c.DataType)
		}
	default:
		return fmt.Errorf("column %q: unknown filter type %q", c.Key, c.FilterType)
	}
	return nil
}

// columnIndex builds the key→Column lookup used throughout the pipeline.
func columnIndex(cols []Column) map[string]Column {
	idx := make(map[string]Column, len(cols))
	for _, c := range cols {
		idx[c.Key] = c
	}
	return idx
}
