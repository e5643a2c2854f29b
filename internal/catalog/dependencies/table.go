package dependencies

import (
	"golang.org/x/text/language"

	"github.com/tramita/tramita/internal/table"
	"github.com/tramita/tramita/internal/table/tablesql"
)

func tableColumns() []table.Column {
	return []table.Column{
		{Key: "code", Title: "Código", Sortable: true, Filterable: true, FilterType: table.FilterText, DataType: table.DataString, CardRole: table.RoleSecondary},
		{Key: "name", Title: "Nombre", Sortable: true, Filterable: true, FilterType: table.FilterText, DataType: table.DataString, CardRole: table.RolePrimary},
		{Key: "head", Title: "Responsable", Sortable: true, Filterable: true, FilterType: table.FilterText, DataType: table.DataString},
		{Key: "phone", Title: "Teléfono", DataType: table.DataString, CardRole: table.RoleHidden},
		{Key: "email", Title: "Correo", DataType: table.DataString, CardRole: table.RoleHidden},
		{Key: "active", Title: "Activa", Filterable: true, FilterType: table.FilterBoolean, DataType: table.DataBool},
		{Key: "updated_at", Title: "Actualizada", Sortable: true, Filterable: true, FilterType: table.FilterDate, DataType: table.DataDate, CardRole: table.RoleHidden},
	}
}

// TableConfig declares the listing served by the query endpoint. Bulk
// actions are attached by the handler, which owns the service.
func TableConfig(locale language.Tag, pageSize int) table.Config {
	return table.Config{
		Columns:      tableColumns(),
		KeyField:     "id",
		SearchFields: []string{"code", "name", "head"},
		MultiSort:    true,
		Locale:       locale,
		Mode:         table.FetchServer,
		PageSize:     pageSize,
	}
}

var sqlSpec = tablesql.Spec{
	From:   "dependencies d",
	Select: []string{"d.id", "d.code", "d.name", "d.head", "d.phone", "d.email", "d.active", "d.updated_at"},
	Columns: map[string]tablesql.Column{
		"code":       {Name: "d.code", DataType: table.DataString},
		"name":       {Name: "d.name", DataType: table.DataString},
		"head":       {Name: "d.head", DataType: table.DataString},
		"phone":      {Name: "d.phone", DataType: table.DataString},
		"email":      {Name: "d.email", DataType: table.DataString},
		"active":     {Name: "d.active", DataType: table.DataBool},
		"updated_at": {Name: "d.updated_at", DataType: table.DataDate},
	},
	SearchColumns: []string{"d.code", "d.name", "d.head"},
	DefaultOrder:  "d.name ASC",
}
