package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func filterColumns() map[string]Column {
	return columnIndex([]Column{
		{Key: "name", DataType: DataString, Filterable: true, FilterType: FilterText},
		{Key: "category", DataType: DataString, Filterable: true, FilterType: FilterSelect, Options: []string{"padron", "obras", "tributos"}},
		{Key: "published", DataType: DataBool, Filterable: true, FilterType: FilterBoolean},
		{Key: "cost", DataType: DataNumber, Filterable: true, FilterType: FilterRange},
		{Key: "issued", DataType: DataDate, Filterable: true, FilterType: FilterDate},
	})
}

func TestFilterValueEmptyPassesEverything(t *testing.T) {
	rec := Record{"name": "Licencia de obra"}
	assert.True(t, FilterValue{}.Match(rec, filterColumns()))
	assert.True(t, FilterValue(nil).Match(rec, filterColumns()))
	assert.True(t, FilterValue{"name": ""}.Match(rec, filterColumns()))
	assert.True(t, FilterValue{"category": []string{}}.Match(rec, filterColumns()))
}

func TestFilterValueText(t *testing.T) {
	cols := filterColumns()
	rec := Record{"name": "Licencia de obra menor"}
	assert.True(t, FilterValue{"name": "obra"}.Match(rec, cols))
	assert.True(t, FilterValue{"name": "ÓBRA"}.Match(rec, cols))
	assert.True(t, FilterValue{"name": "óbra menor"}.Match(rec, cols))
	assert.False(t, FilterValue{"name": "padron"}.Match(rec, cols))
}

func TestFilterValueSelect(t *testing.T) {
	cols := filterColumns()
	rec := Record{"category": "obras"}
	assert.True(t, FilterValue{"category": "obras"}.Match(rec, cols))
	assert.False(t, FilterValue{"category": "padron"}.Match(rec, cols))
	// Multi-select is OR within the field.
	assert.True(t, FilterValue{"category": []string{"padron", "obras"}}.Match(rec, cols))
	assert.False(t, FilterValue{"category": []any{"padron", "tributos"}}.Match(rec, cols))
}

func TestFilterValueBoolean(t *testing.T) {
	cols := filterColumns()
	assert.True(t, FilterValue{"published": true}.Match(Record{"published": true}, cols))
	assert.False(t, FilterValue{"published": true}.Match(Record{"published": false}, cols))
	assert.True(t, FilterValue{"published": "true"}.Match(Record{"published": true}, cols))
}

func TestFilterValueNumericRange(t *testing.T) {
	cols := filterColumns()
	rec := Record{"cost": 45.5}
	assert.True(t, FilterValue{"cost": Range{Start: 10, End: 50}}.Match(rec, cols))
	assert.True(t, FilterValue{"cost": Range{Start: 45.5, End: 45.5}}.Match(rec, cols))
	assert.False(t, FilterValue{"cost": Range{Start: 50, End: nil}}.Match(rec, cols))
	assert.True(t, FilterValue{"cost": Range{Start: nil, End: 100}}.Match(rec, cols))
	// JSON-decoded range shape.
	assert.True(t, FilterValue{"cost": map[string]any{"start": 40.0, "end": 50.0}}.Match(rec, cols))
}

func TestFilterValueDateRange(t *testing.T) {
	cols := filterColumns()
	rec := Record{"issued": "2024-03-15"}
	assert.True(t, FilterValue{"issued": Range{Start: "2024-01-01", End: "2024-12-31"}}.Match(rec, cols))
	assert.False(t, FilterValue{"issued": Range{Start: "2024-04-01"}}.Match(rec, cols))
}

func TestFilterValueIgnoresUnknownAndNonFilterable(t *testing.T) {
	cols := columnIndex([]Column{{Key: "name", DataType: DataString, Filterable: false}})
	rec := Record{"name": "x"}
	assert.True(t, FilterValue{"name": "zzz", "ghost": "y"}.Match(rec, cols))
}

func TestFilterValueCloneIsDeep(t *testing.T) {
	orig := FilterValue{"category": []string{"obras"}}
	cp := orig.Clone()
	cp["category"].([]string)[0] = "padron"
	assert.Equal(t, "obras", orig["category"].([]string)[0])
}
