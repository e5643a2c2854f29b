package table

import (
	"fmt"
	"strconv"
	"time"
)

// Record is one row of tabular data. Rows arrive from SQL scans or JSON
// decoding, so they are dynamically shaped; the Column configuration gives
// each field its type.
type Record = map[string]any

// DefaultKeyField is used when Config.KeyField is empty.
const DefaultKeyField = "id"

// recordKey extracts the stable key of a record under the configured key
// field. Keys must be unique and stable across pipeline re-runs.
func recordKey(rec Record, keyField string) string {
	if keyField == "" {
		keyField = DefaultKeyField
	}
	return stringify(rec[keyField])
}

// stringify renders a field value for search matching and key derivation.
func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		return x.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// toFloat coerces numeric field values. SQL scans produce int64/float64,
// JSON decoding produces float64, and CSV-ish sources produce strings.
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// toTime coerces date field values. Accepts time.Time, RFC3339 strings and
// plain YYYY-MM-DD dates.
func toTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case string:
		if t, err := time.Parse(time.RFC3339, x); err == nil {
			return t, true
		}
		if t, err := time.Parse("2006-01-02", x); err == nil {
			return t, true
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// toBool coerces boolean field values.
func toBool(v any) (bool, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case string:
		b, err := strconv.ParseBool(x)
		return b, err == nil
	default:
		return false, false
	}
}

// isEmptyValue reports whether a field or filter value carries no
// information: nil, empty string, or an empty slice.
func isEmptyValue(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case []any:
		return len(x) == 0
	case []string:
		return len(x) == 0
	default:
		return false
	}
}
