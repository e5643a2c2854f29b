package acts

import (
	"golang.org/x/text/language"

	"github.com/tramita/tramita/internal/table"
	"github.com/tramita/tramita/internal/table/tablesql"
)

func tableColumns() []table.Column {
	return []table.Column{
		{Key: "number", Title: "Número", Sortable: true, Filterable: true, FilterType: table.FilterText, DataType: table.DataString, CardRole: table.RoleSecondary},
		{Key: "title", Title: "Título", Sortable: true, Filterable: true, FilterType: table.FilterText, DataType: table.DataString, CardRole: table.RolePrimary},
		{Key: "kind", Title: "Tipo", Sortable: true, Filterable: true, FilterType: table.FilterSelect, DataType: table.DataString, Options: Kinds},
		{Key: "status", Title: "Estado", Sortable: true, Filterable: true, FilterType: table.FilterSelect, DataType: table.DataString, Options: Statuses},
		{Key: "issued_at", Title: "Fecha", Sortable: true, Filterable: true, FilterType: table.FilterDate, DataType: table.DataDate},
		{Key: "dependency_name", Title: "Dependencia", Sortable: true, Filterable: true, FilterType: table.FilterText, DataType: table.DataString, CardRole: table.RoleHidden},
	}
}

// TableConfig declares the acts listing.
func TableConfig(locale language.Tag, pageSize int) table.Config {
	return table.Config{
		Columns:      tableColumns(),
		KeyField:     "id",
		SearchFields: []string{"number", "title", "dependency_name"},
		MultiSort:    true,
		Locale:       locale,
		Mode:         table.FetchServer,
		PageSize:     pageSize,
	}
}

// SQLSpec is exported for the bulk-archive and export jobs, which rebuild
// the listing query outside the request path.
var SQLSpec = tablesql.Spec{
	From: "acts a JOIN dependencies d ON d.id = a.dependency_id",
	Select: []string{
		"a.id", "a.number", "a.title", "a.kind", "a.status",
		"a.issued_at", "a.dependency_id", "d.name", "a.updated_at",
	},
	Columns: map[string]tablesql.Column{
		"number":          {Name: "a.number", DataType: table.DataString},
		"title":           {Name: "a.title", DataType: table.DataString},
		"kind":            {Name: "a.kind", DataType: table.DataString},
		"status":          {Name: "a.status", DataType: table.DataString},
		"issued_at":       {Name: "a.issued_at", DataType: table.DataDate},
		"dependency_name": {Name: "d.name", DataType: table.DataString},
	},
	SearchColumns: []string{"a.number", "a.title", "d.name"},
	DefaultOrder:  "a.issued_at DESC",
}
