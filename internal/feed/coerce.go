package feed

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Datatypes a custom field can declare.
const (
	DatatypeText   = "text"
	DatatypeNumber = "number"
	DatatypeBool   = "bool"
	DatatypeDate   = "date"
	DatatypeJSON   = "json"
)

// IsAbsent reports whether a raw value counts as missing rather than
// coercible: nil, empty string, or the literal strings "null"/"undefined"
// (trimmed, case-insensitive). Absent fields are excluded from the mapped
// patch entirely so previously stored values survive a re-sync.
func IsAbsent(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	if !ok {
		return false
	}
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return true
	}
	lower := strings.ToLower(trimmed)
	return lower == "null" || lower == "undefined"
}

// Coerce converts a raw parsed value into the declared field datatype.
// Pure and total: every failure maps to nil, never an error.
func Coerce(v any, datatype string) any {
	if v == nil {
		return nil
	}
	switch datatype {
	case DatatypeNumber:
		return coerceNumber(v)
	case DatatypeBool:
		return coerceBool(v)
	case DatatypeDate:
		return coerceDate(v)
	case DatatypeJSON:
		return coerceJSON(v)
	default:
		return coerceText(v)
	}
}

var numberPrefixRe = regexp.MustCompile(`^-?(\d+(\.\d*)?|\.\d+)`)

// coerceNumber applies the documented convention: commas become decimal
// points, every character outside digits/./- is stripped, and the longest
// leading numeric prefix of what remains is parsed ("1.234,56" -> 1.234).
func coerceNumber(v any) any {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil
		}
		return t
	case string:
		cleaned := strings.Map(func(r rune) rune {
			switch {
			case r >= '0' && r <= '9', r == '.', r == '-':
				return r
			default:
				return -1
			}
		}, strings.ReplaceAll(t, ",", "."))

		match := numberPrefixRe.FindString(cleaned)
		if match == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(match, 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return nil
		}
		return parsed
	default:
		return coerceNumber(stringifyScalar(v))
	}
}

func coerceBool(v any) any {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "1", "true", "yes", "y":
			return true
		case "0", "false", "no", "n":
			return false
		default:
			return nil
		}
	default:
		return coerceBool(stringifyScalar(v))
	}
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02.01.2006",
}

// coerceDate yields an ISO-8601 string or nil. Numeric input is read as a
// millisecond epoch, matching how JSON feeds usually carry timestamps.
func coerceDate(v any) any {
	switch t := v.(type) {
	case float64:
		return time.UnixMilli(int64(t)).UTC().Format(time.RFC3339)
	case string:
		trimmed := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, trimmed); err == nil {
				return parsed.UTC().Format(time.RFC3339)
			}
		}
		return nil
	default:
		return nil
	}
}

func coerceJSON(v any) any {
	switch t := v.(type) {
	case map[string]any, []any:
		return t
	case string:
		var parsed any
		if err := json.Unmarshal([]byte(t), &parsed); err != nil {
			return nil
		}
		return parsed
	default:
		var parsed any
		encoded, err := json.Marshal(t)
		if err != nil {
			return nil
		}
		if err := json.Unmarshal(encoded, &parsed); err != nil {
			return nil
		}
		return parsed
	}
}

func coerceText(v any) any {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any, []any:
		encoded, err := json.Marshal(t)
		if err != nil {
			return nil
		}
		return string(encoded)
	default:
		return stringifyScalar(t)
	}
}
