package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPaginationGuards(t *testing.T) {
	p := NewPagination(0, 0)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPageSize, p.PageSize)

	p = NewPagination(-3, -1)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPageSize, p.PageSize)
}

func TestPaginationClampOnShrink(t *testing.T) {
	p := NewPagination(5, 10).WithTotal(100)
	assert.Equal(t, 5, p.Page)

	// Filters narrowed the set: page clamps to the last valid page, never
	// an empty page while data exists.
	p = p.WithTotal(23)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 3, p.TotalPages())

	p = p.WithTotal(0)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 1, p.TotalPages())
}

func TestPaginationPageSizeChangePreservesPosition(t *testing.T) {
	// Page 3 of 10-per-page over 28 records: first visible item is #20.
	p := NewPagination(3, 10).WithTotal(28)
	p = p.WithPageSize(25)
	// Item #20 lives on page 1 of the 25-per-page view.
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 25, p.PageSize)

	// Page 5 of 10-per-page: first visible item is #40 → page 3 of 20.
	p = NewPagination(5, 10).WithTotal(100).WithPageSize(20)
	assert.Equal(t, 3, p.Page)
}

func TestPaginationWithPageClamps(t *testing.T) {
	p := NewPagination(1, 10).WithTotal(35)
	assert.Equal(t, 4, p.WithPage(9).Page)
	assert.Equal(t, 1, p.WithPage(-2).Page)
	assert.Equal(t, 2, p.WithPage(2).Page)
}

func TestSlicePage(t *testing.T) {
	records := make([]Record, 28)
	for i := range records {
		records[i] = Record{"id": i}
	}
	p := NewPagination(3, 10).WithTotal(28)
	page := slicePage(records, p)
	assert.Len(t, page, 8)
	assert.Equal(t, 20, page[0]["id"])

	// Past-the-end page yields an empty slice, not a panic.
	assert.Empty(t, slicePage(records, Pagination{Page: 9, PageSize: 10, Total: 28}))
}

func TestPaginationTotalMatchesPageSum(t *testing.T) {
	records := make([]Record, 47)
	for i := range records {
		records[i] = Record{"id": i}
	}
	p := NewPagination(1, 10).WithTotal(len(records))
	sum := 0
	for page := 1; page <= p.TotalPages(); page++ {
		sum += len(slicePage(records, p.WithPage(page)))
	}
	assert.Equal(t, p.Total, sum)
}
