// Package values converts loosely typed configuration values.
//
// TOML decodes integers as int64 and arrays as []any, while environment
// overrides arrive as strings. Config stores use these helpers so that
// "30", int64(30) and 30 all read as the same integer.
package values

import (
	"strconv"
	"strings"
)

// String returns v as a string.
func String(v any) string {
	switch s := v.(type) {
	case string:
		return s
	default:
		return ""
	}
}

// Int returns v as an int, or 0 if it cannot be converted.
func Int(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}

// Bool returns v as a bool, or false if it cannot be converted.
func Bool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return err == nil && parsed
	default:
		return false
	}
}

// StringSlice returns v as a string slice. A string is split on commas.
func StringSlice(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		result := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				result = append(result, str)
			}
		}
		return result
	case string:
		if strings.TrimSpace(s) == "" {
			return nil
		}
		parts := strings.Split(s, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	default:
		return nil
	}
}
