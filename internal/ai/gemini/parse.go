package gemini

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSON strips markdown fences and any prose around the first JSON value.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.TrimSpace(strings.Trim(raw, "`"))

	for _, pair := range [][2]string{{"{", "}"}, {"[", "]"}} {
		start := strings.Index(raw, pair[0])
		end := strings.LastIndex(raw, pair[1])
		if start != -1 && end > start {
			return raw[start : end+1]
		}
	}
	return raw
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

// coerceStrings accepts a list of values or a single value.
func coerceStrings(v any) []string {
	out := []string{}
	switch val := v.(type) {
	case nil:
	case []any:
		for _, item := range val {
			if s := coerceString(item); s != "" {
				out = append(out, s)
			}
		}
	default:
		if s := coerceString(val); s != "" {
			out = append(out, s)
		}
	}
	return out
}
