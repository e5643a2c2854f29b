package procedures

import (
	"golang.org/x/text/language"

	"github.com/tramita/tramita/internal/table"
	"github.com/tramita/tramita/internal/table/tablesql"
)

func tableColumns() []table.Column {
	return []table.Column{
		{Key: "name", Title: "Trámite", Sortable: true, Filterable: true, FilterType: table.FilterText, DataType: table.DataString, CardRole: table.RolePrimary},
		{Key: "category", Title: "Categoría", Sortable: true, Filterable: true, FilterType: table.FilterSelect, DataType: table.DataString, Options: Categories, CardRole: table.RoleSecondary},
		{Key: "dependency_name", Title: "Dependencia", Sortable: true, Filterable: true, FilterType: table.FilterText, DataType: table.DataString},
		{Key: "cost", Title: "Costo", Sortable: true, Filterable: true, FilterType: table.FilterRange, DataType: table.DataNumber},
		{Key: "duration_days", Title: "Duración (días)", Sortable: true, Filterable: true, FilterType: table.FilterRange, DataType: table.DataNumber, CardRole: table.RoleHidden},
		{Key: "active", Title: "Activo", Filterable: true, FilterType: table.FilterBoolean, DataType: table.DataBool},
		{Key: "updated_at", Title: "Actualizado", Sortable: true, Filterable: true, FilterType: table.FilterDate, DataType: table.DataDate, CardRole: table.RoleHidden},
	}
}

// TableConfig declares the procedures listing.
func TableConfig(locale language.Tag, pageSize int) table.Config {
	return table.Config{
		Columns:      tableColumns(),
		KeyField:     "id",
		SearchFields: []string{"name", "category", "dependency_name"},
		MultiSort:    true,
		Locale:       locale,
		Mode:         table.FetchServer,
		PageSize:     pageSize,
	}
}

// SQLSpec is exported so the export job can rebuild the exact listing
// query when streaming CSV off the request path.
var SQLSpec = tablesql.Spec{
	From: "procedures p JOIN dependencies d ON d.id = p.dependency_id",
	Select: []string{
		"p.id", "p.name", "p.category", "p.dependency_id", "d.name",
		"p.requirements", "p.cost", "p.duration_days", "p.active", "p.updated_at",
	},
	Columns: map[string]tablesql.Column{
		"name":            {Name: "p.name", DataType: table.DataString},
		"category":        {Name: "p.category", DataType: table.DataString},
		"dependency_name": {Name: "d.name", DataType: table.DataString},
		"cost":            {Name: "p.cost", DataType: table.DataNumber},
		"duration_days":   {Name: "p.duration_days", DataType: table.DataNumber},
		"active":          {Name: "p.active", DataType: table.DataBool},
		"updated_at":      {Name: "p.updated_at", DataType: table.DataDate},
	},
	SearchColumns: []string{"p.name", "p.category", "d.name"},
	DefaultOrder:  "p.name ASC",
}
