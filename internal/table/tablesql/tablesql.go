// Package tablesql translates a table.Query into dynamic SQL, so listing
// repositories can run the engine's filter/search/sort/pagination pipeline
// server-side. Queries are built by hand with positional arguments, the
// same way the CRUD repositories build their list queries.
//
// Text matching wraps both sides in unaccent() so server-side search and
// contains filters are diacritic-insensitive, matching the in-memory
// normalizer. The database must have the unaccent extension installed
// (CREATE EXTENSION IF NOT EXISTS unaccent).
package tablesql

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tramita/tramita/internal/table"
)

// Column maps one engine column key onto its SQL expression.
type Column struct {
	// Name is the SQL expression for the column, e.g. "p.name".
	Name     string
	DataType table.DataType
}

// Spec declares the queryable surface of one listing. Only keys present
// in Columns can be filtered or sorted on; everything else is rejected,
// never interpolated.
type Spec struct {
	// From is the table clause, e.g. "procedures p".
	From string
	// Select is the projected column list.
	Select []string
	// Columns whitelists the engine keys usable in filters and sorting.
	Columns map[string]Column
	// SearchColumns are the SQL expressions probed by free-text search.
	SearchColumns []string
	// DefaultOrder is the ORDER BY fallback for unsorted queries.
	DefaultOrder string
}

type builder struct {
	args []any
}

func (b *builder) bind(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

// containsCondition renders an accent- and case-insensitive substring
// match.
func containsCondition(expr, pattern string, b *builder) string {
	return "unaccent(" + expr + ") ILIKE unaccent(" + b.bind(pattern) + ")"
}

// SelectQuery renders the page query: WHERE from simple filters, the
// filter-group tree and search, ORDER BY from the sort entries, LIMIT and
// OFFSET from the pagination.
func SelectQuery(spec Spec, q table.Query) (string, []any, error) {
	b := &builder{}
	where, err := whereClause(spec, q, b)
	if err != nil {
		return "", nil, err
	}
	order, err := orderClause(spec, q.Sort)
	if err != nil {
		return "", nil, err
	}

	sql := "SELECT " + strings.Join(spec.Select, ", ") + " FROM " + spec.From + where + order

	pg := table.NewPagination(q.Page, q.PageSize)
	sql += " LIMIT " + b.bind(pg.PageSize) + " OFFSET " + b.bind(pg.Offset())
	return sql, b.args, nil
}

// KeysQuery renders the full matching key set with the same WHERE clause,
// backing select-all over filtered results.
func KeysQuery(spec Spec, keyExpr string, q table.Query) (string, []any, error) {
	b := &builder{}
	where, err := whereClause(spec, q, b)
	if err != nil {
		return "", nil, err
	}
	return "SELECT " + keyExpr + " FROM " + spec.From + where, b.args, nil
}

// ResolveQuery renders the select restricted to specific key values,
// without pagination, so records selected on other pages can be resolved
// for bulk execution. keys is bound as one array argument, e.g. []int64.
func ResolveQuery(spec Spec, keyExpr string, q table.Query, keys any) (string, []any, error) {
	b := &builder{}
	where, err := whereClause(spec, q, b)
	if err != nil {
		return "", nil, err
	}
	cond := keyExpr + " = ANY(" + b.bind(keys) + ")"
	if where == "" {
		where = " WHERE " + cond
	} else {
		where += " AND " + cond
	}
	order, err := orderClause(spec, q.Sort)
	if err != nil {
		return "", nil, err
	}
	return "SELECT " + strings.Join(spec.Select, ", ") + " FROM " + spec.From + where + order, b.args, nil
}

// CountQuery renders the matching-set count with the same WHERE clause.
func CountQuery(spec Spec, q table.Query) (string, []any, error) {
	b := &builder{}
	where, err := whereClause(spec, q, b)
	if err != nil {
		return "", nil, err
	}
	return "SELECT COUNT(*) FROM " + spec.From + where, b.args, nil
}

func whereClause(spec Spec, q table.Query, b *builder) (string, error) {
	var conds []string

	// Deterministic order over the simple filter map.
	keys := make([]string, 0, len(q.Filters))
	for k := range q.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		val := q.Filters[key]
		col, ok := spec.Columns[key]
		if !ok {
			return "", fmt.Errorf("tablesql: filter field %q is not queryable", key)
		}
		cond, err := simpleCondition(col, val, b)
		if err != nil {
			return "", err
		}
		if cond != "" {
			conds = append(conds, cond)
		}
	}

	if q.Group != nil {
		// Queries arriving from outside the engine (e.g. replayed from a
		// job payload) have not passed acceptance yet.
		if msgs := q.Group.Validate(); len(msgs) > 0 {
			return "", fmt.Errorf("tablesql: invalid filter group: %s", strings.Join(msgs, "; "))
		}
		cond, err := groupCondition(spec, *q.Group, b)
		if err != nil {
			return "", err
		}
		if cond != "" {
			conds = append(conds, cond)
		}
	}

	if search := strings.TrimSpace(q.Search); search != "" && len(spec.SearchColumns) > 0 {
		parts := make([]string, 0, len(spec.SearchColumns))
		for _, c := range spec.SearchColumns {
			parts = append(parts, containsCondition(c, "%"+search+"%", b))
		}
		conds = append(conds, "("+strings.Join(parts, " OR ")+")")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), nil
}

func simpleCondition(col Column, val any, b *builder) (string, error) {
	switch v := val.(type) {
	case nil:
		return "", nil
	case string:
		if v == "" {
			return "", nil
		}
		if col.DataType == table.DataString {
			return containsCondition(col.Name, "%"+v+"%", b), nil
		}
		return col.Name + " = " + b.bind(v), nil
	case []string:
		if len(v) == 0 {
			return "", nil
		}
		return col.Name + " = ANY(" + b.bind(v) + ")", nil
	case []any:
		if len(v) == 0 {
			return "", nil
		}
		return col.Name + " = ANY(" + b.bind(v) + ")", nil
	case table.Range:
		return rangeCondition(col, v, b)
	case *table.Range:
		if v == nil {
			return "", nil
		}
		return rangeCondition(col, *v, b)
	default:
		return col.Name + " = " + b.bind(v), nil
	}
}

func rangeCondition(col Column, r table.Range, b *builder) (string, error) {
	var parts []string
	if r.Start != nil {
		parts = append(parts, col.Name+" >= "+b.bind(r.Start))
	}
	if r.End != nil {
		parts = append(parts, col.Name+" <= "+b.bind(r.End))
	}
	if len(parts) == 0 {
		return "", nil
	}
	return strings.Join(parts, " AND "), nil
}

func groupCondition(spec Spec, g table.FilterGroup, b *builder) (string, error) {
	var parts []string
	for _, c := range g.Conditions {
		col, ok := spec.Columns[c.Field]
		if !ok {
			return "", fmt.Errorf("tablesql: condition field %q is not queryable", c.Field)
		}
		cond, err := condition(col, c, b)
		if err != nil {
			return "", err
		}
		parts = append(parts, cond)
	}
	for _, sub := range g.Groups {
		cond, err := groupCondition(spec, sub, b)
		if err != nil {
			return "", err
		}
		if cond != "" {
			parts = append(parts, cond)
		}
	}
	if len(parts) == 0 {
		return "", nil
	}
	var joiner string
	switch g.Operator {
	case table.GroupAnd:
		joiner = " AND "
	case table.GroupOr:
		joiner = " OR "
	default:
		return "", fmt.Errorf("tablesql: unknown group operator %q", string(g.Operator))
	}
	return "(" + strings.Join(parts, joiner) + ")", nil
}

func condition(col Column, c table.FilterCondition, b *builder) (string, error) {
	switch c.Operator {
	case table.OpEquals:
		return col.Name + " = " + b.bind(c.Value), nil
	case table.OpNotEquals:
		return col.Name + " <> " + b.bind(c.Value), nil
	case table.OpContains:
		return containsCondition(col.Name, fmt.Sprintf("%%%v%%", c.Value), b), nil
	case table.OpGt:
		return col.Name + " > " + b.bind(c.Value), nil
	case table.OpGte:
		return col.Name + " >= " + b.bind(c.Value), nil
	case table.OpLt:
		return col.Name + " < " + b.bind(c.Value), nil
	case table.OpLte:
		return col.Name + " <= " + b.bind(c.Value), nil
	case table.OpBetween:
		r, ok := rangeValue(c.Value)
		if !ok {
			return "", fmt.Errorf("tablesql: between on %q requires a range value", c.Field)
		}
		return col.Name + " BETWEEN " + b.bind(r.Start) + " AND " + b.bind(r.End), nil
	case table.OpIn:
		return col.Name + " = ANY(" + b.bind(c.Value) + ")", nil
	case table.OpIsNull:
		return col.Name + " IS NULL", nil
	case table.OpIsNotNull:
		return col.Name + " IS NOT NULL", nil
	default:
		return "", fmt.Errorf("tablesql: unsupported operator %q", string(c.Operator))
	}
}

func rangeValue(v any) (table.Range, bool) {
	switch r := v.(type) {
	case table.Range:
		return r, true
	case *table.Range:
		if r == nil {
			return table.Range{}, false
		}
		return *r, true
	case map[string]any:
		return table.Range{Start: r["start"], End: r["end"]}, true
	case []any:
		if len(r) == 2 {
			return table.Range{Start: r[0], End: r[1]}, true
		}
		return table.Range{}, false
	default:
		return table.Range{}, false
	}
}

func orderClause(spec Spec, entries []table.SortEntry) (string, error) {
	if len(entries) == 0 {
		if spec.DefaultOrder == "" {
			return "", nil
		}
		return " ORDER BY " + spec.DefaultOrder, nil
	}
	ordered := make([]table.SortEntry, len(entries))
	copy(ordered, entries)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Priority < ordered[j].Priority })

	parts := make([]string, 0, len(ordered))
	for _, e := range ordered {
		col, ok := spec.Columns[e.Key]
		if !ok {
			return "", fmt.Errorf("tablesql: sort key %q is not queryable", e.Key)
		}
		dir := "ASC"
		if e.Direction == table.Desc {
			dir = "DESC"
		}
		parts = append(parts, col.Name+" "+dir)
	}
	return " ORDER BY " + strings.Join(parts, ", "), nil
}
