package table

// FilterValue maps a column key to its simple filter value: a scalar, a
// Range, or a slice for multi-select. The panel replaces it wholesale on
// every change; clearing filters resets it to empty.
type FilterValue map[string]any

// Range bounds a numeric or date filter. A nil Start or End leaves that
// side open.
type Range struct {
	Start any `json:"start"`
	End   any `json:"end"`
}

// Clone deep-copies the filter map so a snapshot (preset, engine state)
// cannot be mutated through the original.
func (f FilterValue) Clone() FilterValue {
	if f == nil {
		return nil
	}
	out := make(FilterValue, len(f))
	for k, v := range f {
		if vs, ok := v.([]any); ok {
			cp := make([]any, len(vs))
			copy(cp, vs)
			out[k] = cp
			continue
		}
		if vs, ok := v.([]string); ok {
			cp := make([]string, len(vs))
			copy(cp, vs)
			out[k] = cp
			continue
		}
		out[k] = v
	}
	return out
}

// Match reports whether a record passes every active simple filter. Empty
// values impose no constraint; fields without a filterable column are
// ignored.
func (f FilterValue) Match(rec Record, cols map[string]Column) bool {
	for key, want := range f {
		if isEmptyValue(want) {
			continue
		}
		col, ok := cols[key]
		if !ok || !col.Filterable {
			continue
		}
		if !matchSimple(col, rec[key], want) {
			return false
		}
	}
	return true
}

func matchSimple(col Column, have, want any) bool {
	switch col.FilterType {
	case FilterSelect:
		return matchMembership(have, want)
	case FilterBoolean:
		hb, okh := toBool(have)
		wb, okw := toBool(want)
		return okh && okw && hb == wb
	case FilterRange, FilterDate:
		if r, ok := asRange(want); ok {
			return matchRange(col.DataType, have, r)
		}
		return equalValues(col.DataType, have, want)
	default:
		// Text filters match on canonical substrings.
		return Match(stringify(want), stringify(have))
	}
}

// matchMembership handles select filters: a slice means "any of" within
// the field, a scalar means exact equality on canonical forms.
func matchMembership(have, want any) bool {
	switch ws := want.(type) {
	case []any:
		for _, w := range ws {
			if Normalize(stringify(have)) == Normalize(stringify(w)) {
				return true
			}
		}
		return false
	case []string:
		for _, w := range ws {
			if Normalize(stringify(have)) == Normalize(w) {
				return true
			}
		}
		return false
	default:
		return Normalize(stringify(have)) == Normalize(stringify(want))
	}
}

func asRange(v any) (Range, bool) {
	switch r := v.(type) {
	case Range:
		return r, true
	case *Range:
		if r == nil {
			return Range{}, false
		}
		return *r, true
	case map[string]any:
		// JSON-decoded {"start":..,"end":..}.
		_, hasStart := r["start"]
		_, hasEnd := r["end"]
		if !hasStart && !hasEnd {
			return Range{}, false
		}
		return Range{Start: r["start"], End: r["end"]}, true
	case []any:
		if len(r) == 2 {
			return Range{Start: r[0], End: r[1]}, true
		}
		return Range{}, false
	default:
		return Range{}, false
	}
}

// matchRange checks inclusive bounds with the column's value semantics.
func matchRange(dt DataType, have any, r Range) bool {
	if dt == DataDate {
		hv, ok := toTime(have)
		if !ok {
			return false
		}
		if r.Start != nil && !isEmptyValue(r.Start) {
			if s, ok := toTime(r.Start); !ok || hv.Before(s) {
				return false
			}
		}
		if r.End != nil && !isEmptyValue(r.End) {
			if e, ok := toTime(r.End); !ok || hv.After(e) {
				return false
			}
		}
		return true
	}
	hv, ok := toFloat(have)
	if !ok {
		return false
	}
	if r.Start != nil && !isEmptyValue(r.Start) {
		if s, ok := toFloat(r.Start); !ok || hv < s {
			return false
		}
	}
	if r.End != nil && !isEmptyValue(r.End) {
		if e, ok := toFloat(r.End); !ok || hv > e {
			return false
		}
	}
	return true
}

// equalValues compares under the column's data type, so "25" and 25 agree
// on a number column.
func equalValues(dt DataType, a, b any) bool {
	switch dt {
	case DataNumber:
		fa, oka := toFloat(a)
		fb, okb := toFloat(b)
		return oka && okb && fa == fb
	case DataBool:
		ba, oka := toBool(a)
		bb, okb := toBool(b)
		return oka && okb && ba == bb
	case DataDate:
		ta, oka := toTime(a)
		tb, okb := toTime(b)
		return oka && okb && ta.Equal(tb)
	default:
		return Normalize(stringify(a)) == Normalize(stringify(b))
	}
}
