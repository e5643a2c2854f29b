package table

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortStateSingleClicks(t *testing.T) {
	s := NewSortState(false)

	s = s.Click("name")
	require.Equal(t, []SortEntry{{Key: "name", Direction: Asc, Priority: 0}}, s.Entries())

	s = s.Click("name")
	require.Equal(t, []SortEntry{{Key: "name", Direction: Desc, Priority: 0}}, s.Entries())

	s = s.Click("name")
	assert.False(t, s.IsSorted())

	// A click on a different key replaces the list entirely.
	s = s.Click("name").Click("age")
	require.Equal(t, []SortEntry{{Key: "age", Direction: Asc, Priority: 0}}, s.Entries())
}

func TestSortStateMultiClickSequence(t *testing.T) {
	s := NewSortState(true)

	s = s.Click("name")
	require.Equal(t, []SortEntry{{Key: "name", Direction: Asc, Priority: 0}}, s.Entries())

	s = s.AddClick("age")
	require.Equal(t, []SortEntry{
		{Key: "name", Direction: Asc, Priority: 0},
		{Key: "age", Direction: Asc, Priority: 1},
	}, s.Entries())

	s = s.AddClick("age")
	require.Equal(t, []SortEntry{
		{Key: "name", Direction: Asc, Priority: 0},
		{Key: "age", Direction: Desc, Priority: 1},
	}, s.Entries())

	s = s.AddClick("age")
	require.Equal(t, []SortEntry{{Key: "name", Direction: Asc, Priority: 0}}, s.Entries())
}

func TestSortStateMultiRemovalReindexes(t *testing.T) {
	s := NewSortState(true).Click("a").AddClick("b").AddClick("c")

	// Cycle "b" out: asc → desc → removed.
	s = s.AddClick("b").AddClick("b")
	require.Equal(t, []SortEntry{
		{Key: "a", Direction: Asc, Priority: 0},
		{Key: "c", Direction: Asc, Priority: 1},
	}, s.Entries())

	// Removing the last entry returns to unsorted.
	s = s.AddClick("a").AddClick("a").AddClick("c").AddClick("c")
	assert.False(t, s.IsSorted())
}

func TestSortStateAddClickWithoutMultiActsAsClick(t *testing.T) {
	s := NewSortState(false).Click("name").AddClick("age")
	require.Equal(t, []SortEntry{{Key: "age", Direction: Asc, Priority: 0}}, s.Entries())
}

func TestSortStateTransitionsDoNotMutateReceiver(t *testing.T) {
	base := NewSortState(true).Click("name")
	_ = base.AddClick("age")
	require.Equal(t, []SortEntry{{Key: "name", Direction: Asc, Priority: 0}}, base.Entries())
}

func testColumns() map[string]Column {
	return columnIndex([]Column{
		{Key: "name", DataType: DataString, Sortable: true},
		{Key: "age", DataType: DataNumber, Sortable: true},
		{Key: "active", DataType: DataBool, Sortable: true},
		{Key: "created", DataType: DataDate, Sortable: true},
	})
}

func TestSortRecordsByName(t *testing.T) {
	records := []Record{
		{"name": "Bob", "age": 25},
		{"name": "Alice", "age": 30},
	}
	sorted := sortRecords(records, []SortEntry{{Key: "name", Direction: Asc, Priority: 0}}, testColumns(), nil)
	require.Len(t, sorted, 2)
	assert.Equal(t, "Alice", sorted[0]["name"])
	assert.Equal(t, "Bob", sorted[1]["name"])
}

func TestSortRecordsMultiKeyWithTieBreak(t *testing.T) {
	records := []Record{
		{"name": "Ana", "age": 40},
		{"name": "Ben", "age": 25},
		{"name": "Ana", "age": 25},
	}
	entries := []SortEntry{
		{Key: "name", Direction: Asc, Priority: 0},
		{Key: "age", Direction: Desc, Priority: 1},
	}
	sorted := sortRecords(records, entries, testColumns(), nil)
	assert.Equal(t, 40, sorted[0]["age"])
	assert.Equal(t, 25, sorted[1]["age"])
	assert.Equal(t, "Ben", sorted[2]["name"])
}

func TestSortRecordsOrderIndependence(t *testing.T) {
	records := []Record{
		{"name": "Carmen", "age": 31},
		{"name": "Álvaro", "age": 28},
		{"name": "Beatriz", "age": 45},
		{"name": "Diego", "age": 19},
		{"name": "Elena", "age": 51},
	}
	entries := []SortEntry{{Key: "age", Direction: Asc, Priority: 0}}
	want := sortRecords(records, entries, testColumns(), nil)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		shuffled := make([]Record, len(records))
		copy(shuffled, records)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, sortRecords(shuffled, entries, testColumns(), nil))
	}
}

func TestSortRecordsStability(t *testing.T) {
	records := []Record{
		{"name": "first", "age": 30},
		{"name": "second", "age": 30},
		{"name": "third", "age": 30},
	}
	sorted := sortRecords(records, []SortEntry{{Key: "age", Direction: Asc, Priority: 0}}, testColumns(), nil)
	assert.Equal(t, "first", sorted[0]["name"])
	assert.Equal(t, "second", sorted[1]["name"])
	assert.Equal(t, "third", sorted[2]["name"])
}

func TestSortRecordsCustomComparator(t *testing.T) {
	// Status ordering that is neither alphabetic nor numeric.
	rank := map[string]int{"draft": 0, "published": 1, "archived": 2}
	cols := map[string]Column{
		"status": {Key: "status", DataType: DataString, Comparator: func(a, b any) int {
			return rank[stringify(a)] - rank[stringify(b)]
		}},
	}
	records := []Record{
		{"status": "archived"},
		{"status": "draft"},
		{"status": "published"},
	}
	sorted := sortRecords(records, []SortEntry{{Key: "status", Direction: Asc, Priority: 0}}, cols, nil)
	assert.Equal(t, "draft", sorted[0]["status"])
	assert.Equal(t, "published", sorted[1]["status"])
	assert.Equal(t, "archived", sorted[2]["status"])
}

func TestSortRecordsMissingValuesFirst(t *testing.T) {
	records := []Record{
		{"name": "zz", "created": "2024-03-01"},
		{"name": "aa"},
	}
	sorted := sortRecords(records, []SortEntry{{Key: "created", Direction: Asc, Priority: 0}}, testColumns(), nil)
	assert.Equal(t, "aa", sorted[0]["name"])
}
