package table

import "fmt"

// GroupOperator combines the members of a FilterGroup.
type GroupOperator string

const (
	GroupAnd GroupOperator = "AND"
	GroupOr  GroupOperator = "OR"
)

// Operator is the comparison a FilterCondition applies.
type Operator string

const (
	OpEquals    Operator = "equals"
	OpNotEquals Operator = "not_equals"
	OpContains  Operator = "contains"
	OpGt        Operator = "gt"
	OpGte       Operator = "gte"
	OpLt        Operator = "lt"
	OpLte       Operator = "lte"
	OpBetween   Operator = "between"
	OpIn        Operator = "in"
	OpIsNull    Operator = "is_null"
	OpIsNotNull Operator = "is_not_null"
)

// FilterCondition evaluates one operator against one record field.
// Every operator except the null checks requires a present, non-empty
// Value.
type FilterCondition struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value,omitempty"`
}

// FilterGroup is a strictly acyclic AND/OR tree of conditions and nested
// sub-groups, evaluated by recursive short-circuit descent.
type FilterGroup struct {
	Operator   GroupOperator     `json:"operator"`
	Conditions []FilterCondition `json:"conditions"`
	Groups     []FilterGroup     `json:"groups,omitempty"`
}

// needsValue reports whether the operator requires a non-empty value.
func (o Operator) needsValue() bool {
	return o != OpIsNull && o != OpIsNotNull
}

func (o Operator) known() bool {
	switch o {
	case OpEquals, OpNotEquals, OpContains, OpGt, OpGte, OpLt, OpLte,
		OpBetween, OpIn, OpIsNull, OpIsNotNull:
		return true
	}
	return false
}

// Validate walks the whole tree and collects one message per violating
// condition. The tree must be rejected as a whole when any message is
// returned; partial application is never allowed.
func (g FilterGroup) Validate() []string {
	return g.validateAt("", nil)
}

func (g FilterGroup) validateAt(path string, errs []string) []string {
	if path == "" {
		path = "group"
	}
	switch g.Operator {
	case GroupAnd, GroupOr:
	default:
		errs = append(errs, fmt.Sprintf("%s: unknown group operator %q", path, string(g.Operator)))
	}
	for i, c := range g.Conditions {
		at := fmt.Sprintf("%s.conditions[%d]", path, i)
		if c.Field == "" {
			errs = append(errs, fmt.Sprintf("%s: field is required", at))
		}
		if !c.Operator.known() {
			errs = append(errs, fmt.Sprintf("%s: unknown operator %q", at, string(c.Operator)))
			continue
		}
		if c.Operator.needsValue() && isEmptyValue(c.Value) {
			errs = append(errs, fmt.Sprintf("%s: operator %q requires a value", at, string(c.Operator)))
		}
	}
	for i, sub := range g.Groups {
		errs = sub.validateAt(fmt.Sprintf("%s.groups[%d]", path, i), errs)
	}
	return errs
}

// Match evaluates the tree against a record. An AND group passes only if
// every condition and every child group passes; an OR group passes if any
// does. An empty group imposes no constraint.
func (g FilterGroup) Match(rec Record, cols map[string]Column) bool {
	if len(g.Conditions) == 0 && len(g.Groups) == 0 {
		return true
	}
	if g.Operator == GroupOr {
		for _, c := range g.Conditions {
			if c.matches(rec, cols) {
				return true
			}
		}
		for _, sub := range g.Groups {
			if sub.Match(rec, cols) {
				return true
			}
		}
		return false
	}
	for _, c := range g.Conditions {
		if !c.matches(rec, cols) {
			return false
		}
	}
	for _, sub := range g.Groups {
		if !sub.Match(rec, cols) {
			return false
		}
	}
	return true
}

func (c FilterCondition) matches(rec Record, cols map[string]Column) bool {
	have := rec[c.Field]
	dt := DataString
	if col, ok := cols[c.Field]; ok && col.DataType != "" {
		dt = col.DataType
	}
	switch c.Operator {
	case OpIsNull:
		return isEmptyValue(have)
	case OpIsNotNull:
		return !isEmptyValue(have)
	case OpEquals:
		return equalValues(dt, have, c.Value)
	case OpNotEquals:
		return !equalValues(dt, have, c.Value)
	case OpContains:
		return Match(stringify(c.Value), stringify(have))
	case OpGt:
		cmp, ok := compareCondition(dt, have, c.Value)
		return ok && cmp > 0
	case OpGte:
		cmp, ok := compareCondition(dt, have, c.Value)
		return ok && cmp >= 0
	case OpLt:
		cmp, ok := compareCondition(dt, have, c.Value)
		return ok && cmp < 0
	case OpLte:
		cmp, ok := compareCondition(dt, have, c.Value)
		return ok && cmp <= 0
	case OpBetween:
		if r, ok := asRange(c.Value); ok {
			return matchRange(rangeType(dt), have, r)
		}
		return false
	case OpIn:
		return matchMembership(have, c.Value)
	default:
		return false
	}
}

// compareCondition orders record value against condition value under the
// column type. Incomparable pairs (failed coercions, missing values)
// report ok=false and never satisfy an ordering operator.
func compareCondition(dt DataType, have, want any) (int, bool) {
	switch dt {
	case DataNumber:
		fh, okh := toFloat(have)
		fw, okw := toFloat(want)
		if !okh || !okw {
			return 0, false
		}
		switch {
		case fh < fw:
			return -1, true
		case fh > fw:
			return 1, true
		default:
			return 0, true
		}
	case DataDate:
		th, okh := toTime(have)
		tw, okw := toTime(want)
		if !okh || !okw {
			return 0, false
		}
		switch {
		case th.Before(tw):
			return -1, true
		case th.After(tw):
			return 1, true
		default:
			return 0, true
		}
	default:
		// Fall back to numeric comparison when both sides parse, matching
		// how loosely-typed configurations compare "age" fields.
		if fh, okh := toFloat(have); okh {
			if fw, okw := toFloat(want); okw {
				switch {
				case fh < fw:
					return -1, true
				case fh > fw:
					return 1, true
				default:
					return 0, true
				}
			}
		}
		if have == nil || want == nil {
			return 0, false
		}
		return compareStringsNormalized(stringify(have), stringify(want)), true
	}
}

func compareStringsNormalized(a, b string) int {
	na, nb := Normalize(a), Normalize(b)
	switch {
	case na < nb:
		return -1
	case na > nb:
		return 1
	default:
		return 0
	}
}

func rangeType(dt DataType) DataType {
	if dt == DataDate {
		return DataDate
	}
	return DataNumber
}
