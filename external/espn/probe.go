package espn

import (
	"strconv"
	"strings"
)

// Probing helpers for the provider's loosely-shaped payloads. Field names
// differ per league and endpoint, so readers take an ordered candidate key
// list and return the first usable hit. Missing data is an empty value,
// never an error.

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

// asString renders scalar payload values for display/identifier use. Numeric
// ids arrive as JSON numbers in some endpoints and strings in others.
func asString(v any) string {
	switch typed := v.(type) {
	case string:
		return strings.TrimSpace(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case bool:
		return strconv.FormatBool(typed)
	default:
		return ""
	}
}

func getAny(m map[string]any, keys ...string) any {
	if m == nil {
		return nil
	}
	for _, key := range keys {
		if v, ok := m[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

func getMap(m map[string]any, keys ...string) map[string]any {
	for _, key := range keys {
		if nested := asMap(getAny(m, key)); nested != nil {
			return nested
		}
	}
	return nil
}

func getSlice(m map[string]any, keys ...string) []any {
	for _, key := range keys {
		if nested := asSlice(getAny(m, key)); nested != nil {
			return nested
		}
	}
	return nil
}

func getString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := asString(getAny(m, key)); s != "" {
			return s
		}
	}
	return ""
}

func getFloat(m map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		switch typed := getAny(m, key).(type) {
		case float64:
			return typed, true
		case int:
			return float64(typed), true
		case string:
			if parsed, err := strconv.ParseFloat(strings.ReplaceAll(typed, ",", ""), 64); err == nil {
				return parsed, true
			}
		}
	}
	return 0, false
}

// getBoolPtr distinguishes an absent flag (nil) from an explicit true/false.
func getBoolPtr(m map[string]any, keys ...string) *bool {
	if m == nil {
		return nil
	}
	for _, key := range keys {
		if v, ok := m[key]; ok {
			if b, ok := v.(bool); ok {
				out := b
				return &out
			}
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
