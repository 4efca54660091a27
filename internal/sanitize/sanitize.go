// Package sanitize strips sensitive fields from breadcrumb snapshots before
// they leave the process. Sanitizers are pure: same length, same order, no
// mutation of the input, and total for well-formed input.
package sanitize

import (
	"strings"

	"github.com/tomasbasham/dashlog/internal/breadcrumb"
)

// Func transforms a snapshot into a redacted copy of the same length and
// order. An empty snapshot in yields an empty snapshot out.
type Func func([]breadcrumb.Record) []breadcrumb.Record

// Mask replaces the value of every redacted field.
const Mask = "[REDACTED]"

// defaultSensitiveKeys match case-insensitively as substrings of a field
// name, so "apiToken" and "user_password" are both caught.
var defaultSensitiveKeys = []string{
	"password",
	"passwd",
	"secret",
	"token",
	"apikey",
	"api_key",
	"authorization",
	"cookie",
	"session",
	"credential",
}

// Redact returns a sanitizer that masks values under sensitive field names,
// recursing into nested records and slices. Keys are matched against
// defaultSensitiveKeys plus any extra names supplied.
func Redact(extraKeys ...string) Func {
	keys := make([]string, 0, len(defaultSensitiveKeys)+len(extraKeys))
	keys = append(keys, defaultSensitiveKeys...)
	for _, k := range extraKeys {
		keys = append(keys, strings.ToLower(k))
	}

	return func(records []breadcrumb.Record) []breadcrumb.Record {
		out := make([]breadcrumb.Record, len(records))
		for i, r := range records {
			out[i] = redactRecord(r, keys)
		}
		return out
	}
}

func sensitive(field string, keys []string) bool {
	lower := strings.ToLower(field)
	for _, k := range keys {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func redactRecord(r breadcrumb.Record, keys []string) breadcrumb.Record {
	out := make(breadcrumb.Record, len(r))
	for field, value := range r {
		if sensitive(field, keys) {
			out[field] = Mask
			continue
		}
		out[field] = redactValue(value, keys)
	}
	return out
}

func redactValue(v any, keys []string) any {
	switch val := v.(type) {
	case map[string]any:
		return map[string]any(redactRecord(breadcrumb.Record(val), keys))
	case breadcrumb.Record:
		return redactRecord(val, keys)
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = redactValue(elem, keys)
		}
		return out
	default:
		return v
	}
}
