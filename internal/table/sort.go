package table

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
)

// Direction of one sort entry.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortEntry is one (field, direction, priority) unit of a multi-column
// sort. Priorities among active entries are contiguous from 0 and unique.
type SortEntry struct {
	Key       string    `json:"key"`
	Direction Direction `json:"direction"`
	Priority  int       `json:"priority"`
}

// SortState holds the active sort entries and whether multi-sort is
// enabled. The zero value is the unsorted state with multi-sort off.
// Transitions return a new state; the receiver is never mutated.
type SortState struct {
	entries []SortEntry
	multi   bool
}

// NewSortState builds a state from existing entries, re-indexing their
// priorities to stay contiguous from 0.
func NewSortState(multi bool, entries ...SortEntry) SortState {
	return SortState{entries: reindex(entries), multi: multi}
}

// Entries returns a copy of the active entries in priority order.
func (s SortState) Entries() []SortEntry {
	out := make([]SortEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// IsSorted reports whether any entry is active.
func (s SortState) IsSorted() bool { return len(s.entries) > 0 }

// Click applies a plain header click: asc on first click, desc on the
// second click of the same key, unsorted on the third. Clicking a
// different key replaces the whole list.
func (s SortState) Click(key string) SortState {
	next := SortState{multi: s.multi}
	if len(s.entries) == 1 && s.entries[0].Key == key {
		if s.entries[0].Direction == Asc {
			next.entries = []SortEntry{{Key: key, Direction: Desc, Priority: 0}}
		}
		// desc → unsorted: leave entries empty.
		return next
	}
	next.entries = []SortEntry{{Key: key, Direction: Asc, Priority: 0}}
	return next
}

// AddClick applies a modified ("add to sort") click. With multi-sort
// disabled it behaves as Click. Otherwise a new key is appended at the
// next priority, an ascending key flips to descending, and a descending
// key is removed with the remaining priorities re-indexed.
func (s SortState) AddClick(key string) SortState {
	if !s.multi {
		return s.Click(key)
	}
	for i, e := range s.entries {
		if e.Key != key {
			continue
		}
		entries := s.Entries()
		if e.Direction == Asc {
			entries[i].Direction = Desc
			return SortState{entries: entries, multi: true}
		}
		entries = append(entries[:i], entries[i+1:]...)
		return SortState{entries: reindex(entries), multi: true}
	}
	entries := append(s.Entries(), SortEntry{Key: key, Direction: Asc, Priority: len(s.entries)})
	return SortState{entries: entries, multi: true}
}

func reindex(entries []SortEntry) []SortEntry {
	out := make([]SortEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	for i := range out {
		out[i].Priority = i
	}
	return out
}

// sortRecords orders records by the sort entries in priority order; the
// first non-zero per-column comparison decides. Ties preserve the original
// relative order (stable sort). A new slice is returned.
func sortRecords(records []Record, entries []SortEntry, cols map[string]Column, coll *collate.Collator) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	if len(entries) == 0 {
		return out
	}
	ordered := reindex(entries)
	sort.SliceStable(out, func(i, j int) bool {
		return compareRecords(out[i], out[j], ordered, cols, coll) < 0
	})
	return out
}

func compareRecords(a, b Record, entries []SortEntry, cols map[string]Column, coll *collate.Collator) int {
	for _, e := range entries {
		col := cols[e.Key]
		c := compareValues(col, a[e.Key], b[e.Key], coll)
		if c == 0 {
			continue
		}
		if e.Direction == Desc {
			return -c
		}
		return c
	}
	return 0
}

// compareValues applies the column's comparator, falling back to the
// DataType default. Missing values order before present ones.
func compareValues(col Column, a, b any, coll *collate.Collator) int {
	if col.Comparator != nil {
		return col.Comparator(a, b)
	}
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	switch col.DataType {
	case DataNumber:
		fa, oka := toFloat(a)
		fb, okb := toFloat(b)
		if oka && okb {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			default:
				return 0
			}
		}
	case DataBool:
		ba, oka := toBool(a)
		bb, okb := toBool(b)
		if oka && okb {
			switch {
			case ba == bb:
				return 0
			case !ba:
				return -1
			default:
				return 1
			}
		}
	case DataDate:
		ta, oka := toTime(a)
		tb, okb := toTime(b)
		if oka && okb {
			switch {
			case ta.Before(tb):
				return -1
			case ta.After(tb):
				return 1
			default:
				return 0
			}
		}
	}
	sa, sb := stringify(a), stringify(b)
	if coll != nil {
		return coll.CompareString(sa, sb)
	}
	return strings.Compare(sa, sb)
}
