package table

import (
	"context"
	"sync"

	"golang.org/x/text/collate"
)

// Result is what a data source returns for one query: the visible page of
// records plus the total size of the filtered result set.
type Result struct {
	Records []Record
	Total   int
}

// Source supplies records for a query. A server-side source pushes
// filtering, sorting and pagination to the backend and returns one page; a
// client-side source evaluates the full pipeline over a prefetched set.
// Both satisfy the same contract, so the engine does not care which mode a
// listing is configured for.
type Source interface {
	Fetch(ctx context.Context, q Query) (Result, error)
}

// KeyLister is an optional Source capability: enumerate the keys of the
// entire filtered set, enabling explicit full-set selection.
type KeyLister interface {
	Keys(ctx context.Context, q Query) ([]string, error)
}

// RecordResolver is an optional Source capability: return the records for
// specific keys independent of the query's pagination. The selection is
// page-independent, so bulk execution needs it to reach keys selected on
// other pages.
type RecordResolver interface {
	Resolve(ctx context.Context, q Query, keys []string) ([]Record, error)
}

// ClientSource runs the whole pipeline in memory over a prefetched record
// set. Safe for concurrent use.
type ClientSource struct {
	cols         map[string]Column
	searchFields []string
	keyField     string
	coll         *collate.Collator

	mu      sync.RWMutex
	records []Record
}

// NewClientSource builds a client-side source for the given configuration.
func NewClientSource(cfg Config, records []Record) *ClientSource {
	return &ClientSource{
		cols:         columnIndex(cfg.Columns),
		searchFields: cfg.SearchFields,
		keyField:     cfg.KeyField,
		coll:         cfg.collator(),
		records:      records,
	}
}

// Replace swaps the prefetched record set, e.g. after a refresh.
func (s *ClientSource) Replace(records []Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
}

// Fetch evaluates filter → search → sort → paginate and returns the page.
func (s *ClientSource) Fetch(ctx context.Context, q Query) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	s.mu.RLock()
	records := s.records
	s.mu.RUnlock()

	filtered := s.filter(records, q)
	sorted := sortRecords(filtered, q.Sort, s.cols, s.coll)
	pg := NewPagination(q.Page, q.PageSize).WithTotal(len(sorted))
	return Result{Records: slicePage(sorted, pg), Total: len(sorted)}, nil
}

// Keys enumerates the keys of the whole filtered set.
func (s *ClientSource) Keys(ctx context.Context, q Query) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	records := s.records
	s.mu.RUnlock()

	filtered := s.filter(records, q)
	keys := make([]string, 0, len(filtered))
	for _, rec := range filtered {
		keys = append(keys, recordKey(rec, s.keyField))
	}
	return keys, nil
}

// Resolve returns the records for the given keys, wherever they fall in
// the paged result.
func (s *ClientSource) Resolve(ctx context.Context, q Query, keys []string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	records := s.records
	s.mu.RUnlock()

	want := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		want[k] = struct{}{}
	}
	out := make([]Record, 0, len(keys))
	for _, rec := range records {
		if _, ok := want[recordKey(rec, s.keyField)]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *ClientSource) filter(records []Record, q Query) []Record {
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if !q.Filters.Match(rec, s.cols) {
			continue
		}
		if q.Group != nil && !q.Group.Match(rec, s.cols) {
			continue
		}
		if !searchMatch(rec, s.searchFields, q.Search) {
			continue
		}
		out = append(out, rec)
	}
	return out
}
