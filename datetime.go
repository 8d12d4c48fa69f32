package tablesync

import (
	"strings"
	"time"
)

// invalidDatetimeLiterals are the literal string values spec §4.D.a calls
// out as always invalid, regardless of whether they additionally parse.
var invalidDatetimeLiterals = map[string]bool{
	"0":                   true,
	"0000-00-00":          true,
	"0000-00-00 00:00:00": true,
	"00:00:00":            true,
}

// datetimeLayouts are tried in order when sanitizeDatetimeValue needs to
// determine whether a string value parses as a date/time at all.
var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"15:04:05",
}

// sanitizeDatetimeValue implements spec §4.D.a: replace value with
// placeholder when it is null/blank, the literal "0", a zero-year date,
// negative, one of the canonical all-zero literals, or unparsable. Unknown
// non-string, non-time types pass through untouched with a warning.
func sanitizeDatetimeValue(value any, placeholder string) (result any, warned bool) {
	if value == nil {
		return placeholder, false
	}

	switch v := value.(type) {
	case []byte:
		// go-sql-driver/mysql scans CHAR/VARCHAR/DATETIME columns into []byte
		// when the destination is interface{}, not string.
		return sanitizeDatetimeValue(string(v), placeholder)
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return placeholder, false
		}
		if invalidDatetimeLiterals[trimmed] {
			return placeholder, false
		}
		if strings.HasPrefix(trimmed, "-") {
			return placeholder, false
		}
		if strings.HasPrefix(trimmed, "0000-") {
			return placeholder, false
		}
		if !parsesAsDatetime(trimmed) {
			return placeholder, false
		}
		return v, false
	case time.Time:
		if v.IsZero() {
			return placeholder, false
		}
		formatted := v.Format("2006-01-02 15:04:05")
		if invalidDatetimeLiterals[formatted] || strings.HasPrefix(formatted, "0000-") {
			return placeholder, false
		}
		return v, false
	case *time.Time:
		if v == nil {
			return placeholder, false
		}
		return sanitizeDatetimeValue(*v, placeholder)
	default:
		return value, true
	}
}

func parsesAsDatetime(s string) bool {
	for _, layout := range datetimeLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
