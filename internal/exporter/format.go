package exporter

import (
	"fmt"
	"strconv"
	"time"
)

// timestampLayout is the format used for datetime columns in exported files.
const timestampLayout = "2006-01-02 15:04:05"

// formatValue renders a table or metadata cell for CSV output. Floats keep
// their shortest round-trip representation so no precision is lost on
// re-import.
func formatValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(timestampLayout)
	default:
		return fmt.Sprintf("%v", t)
	}
}
