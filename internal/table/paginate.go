package table

import "math"

// DefaultPageSize is applied when a query does not set one.
const DefaultPageSize = 20

// Pagination tracks the 1-based current page, page size and total count of
// the filtered+searched result set. Policy, in order of precedence:
// any filter, search or sort change resets to page 1; a page-size change
// preserves the position of the first visible item; a shrinking total
// clamps the page to the last valid page rather than showing an empty
// page while data exists.
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total"`
}

// NewPagination applies the guards the listing endpoints rely on: page
// floors at 1 and size falls back to the default.
func NewPagination(page, pageSize int) Pagination {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page <= 0 {
		page = 1
	}
	return Pagination{Page: page, PageSize: pageSize}
}

// TotalPages derives the page count; at least 1 so an empty result still
// has a current page.
func (p Pagination) TotalPages() int {
	if p.Total <= 0 {
		return 1
	}
	return int(math.Ceil(float64(p.Total) / float64(p.PageSize)))
}

// WithTotal records a new total and clamps the page to the last valid one.
func (p Pagination) WithTotal(total int) Pagination {
	if total < 0 {
		total = 0
	}
	p.Total = total
	if last := p.TotalPages(); p.Page > last {
		p.Page = last
	}
	if p.Page < 1 {
		p.Page = 1
	}
	return p
}

// WithPage moves to an explicit page, clamped to valid bounds.
func (p Pagination) WithPage(page int) Pagination {
	if page < 1 {
		page = 1
	}
	if last := p.TotalPages(); page > last {
		page = last
	}
	p.Page = page
	return p
}

// WithPageSize changes the page size while keeping the first item of the
// current page visible, so the caller's approximate scroll position
// survives instead of jumping back to page 1.
func (p Pagination) WithPageSize(size int) Pagination {
	if size <= 0 {
		size = DefaultPageSize
	}
	first := (p.Page - 1) * p.PageSize
	p.PageSize = size
	p.Page = first/size + 1
	return p.WithTotal(p.Total)
}

// Offset is the index of the first record on the current page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// slicePage cuts the current page out of the full ordered result set.
func slicePage(records []Record, p Pagination) []Record {
	start := p.Offset()
	if start >= len(records) {
		return []Record{}
	}
	end := start + p.PageSize
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}
