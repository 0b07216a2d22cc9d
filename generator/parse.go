package generator

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// ExtractJSON recovers a JSON object from model output that may be wrapped
// in a markdown code fence. It never fails: anything that is not a single
// JSON object yields an empty map, which callers treat the same as every
// expected key being absent.
func ExtractJSON(raw string) map[string]any {
	s := stripFences(raw)
	if !gjson.Valid(s) {
		return map[string]any{}
	}
	res := gjson.Parse(s)
	if !res.IsObject() {
		return map[string]any{}
	}
	m, ok := res.Value().(map[string]any)
	if !ok || m == nil {
		return map[string]any{}
	}
	return m
}

// stripFences removes a leading ``` marker (with or without a language tag)
// and a trailing ``` marker.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		// language tag runs up to the first newline or the opening brace
		if i := strings.IndexAny(s, "\n{["); i >= 0 {
			if s[i] == '\n' {
				s = s[i+1:]
			} else {
				s = s[i:]
			}
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return fmt.Sprint(v)
	}
}

// intField reads an integer, accepting JSON numbers and numeric strings.
// Fractions are truncated toward zero.
func intField(m map[string]any, key string, def int) int {
	switch v := m[key].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return def
		}
		return int(v)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return def
		}
		return int(f)
	default:
		return def
	}
}
