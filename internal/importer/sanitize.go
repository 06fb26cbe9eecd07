package importer

import (
	"math"
	"strings"
)

// Untrusted JSON is only read through the helpers below.

func asObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func asArray(v any) ([]any, bool) {
	a, ok := v.([]any)
	return a, ok
}

// stringField returns obj[key] when it is a string.
func stringField(obj map[string]any, key string) (string, bool) {
	s, ok := obj[key].(string)
	return s, ok
}

// nonEmptyString returns the trimmed string at key, or "" when the field is
// missing, not a string or blank.
func nonEmptyString(obj map[string]any, key string) string {
	s, ok := stringField(obj, key)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// identifier returns the string at key verbatim, or "" when the field is
// missing, not a string or blank. Ids are matched as-is against item list
// keys and parent references, so they are never trimmed.
func identifier(obj map[string]any, key string) string {
	s, ok := stringField(obj, key)
	if !ok || strings.TrimSpace(s) == "" {
		return ""
	}
	return s
}

// finiteMillis returns obj[key] as epoch milliseconds when it is a finite number.
func finiteMillis(obj map[string]any, key string) (int64, bool) {
	return Millis(obj[key])
}

// Millis truncates v to epoch milliseconds. It reports false for values
// that are not numbers, are not finite or fall outside the int64 range.
func Millis(v any) (int64, bool) {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f < -(1<<63) || f >= 1<<63 {
		return 0, false
	}
	return int64(f), true
}
