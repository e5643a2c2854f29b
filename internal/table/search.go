package table

// searchMatch reports whether the free-text query hits at least one of the
// searchable fields. An empty query is a pass-through, not an exclusion
// filter. Search composes with the filter engine by AND.
func searchMatch(rec Record, fields []string, query string) bool {
	q := Normalize(query)
	if q == "" {
		return true
	}
	for _, f := range fields {
		if Match(q, stringify(rec[f])) {
			return true
		}
	}
	return false
}
