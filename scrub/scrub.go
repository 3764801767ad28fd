// Package scrub prepares loosely typed records for casting. Both helpers
// walk maps and sequences recursively and return new values; inputs are not
// modified.
package scrub

import (
	"strings"

	"github.com/samber/lo"

	"github.com/bluzky/tarams/coerce"
)

// Blanks replaces blank string leaves (empty or whitespace only) with nil,
// so optional form fields submitted empty are treated as absent values.
func Blanks(v any) any {
	switch t := v.(type) {
	case string:
		if strings.TrimSpace(t) == "" {
			return nil
		}
		return t
	case map[string]any:
		return lo.MapValues(t, func(x any, _ string) any { return Blanks(x) })
	case []any:
		return lo.Map(t, func(x any, _ int) any { return Blanks(x) })
	}
	if m, ok := coerce.AsMap(v); ok {
		return Blanks(m)
	}
	if s, ok := coerce.AsSlice(v); ok {
		return Blanks(s)
	}
	return v
}

// Nils removes nil-valued keys from maps and nil elements from sequences.
func Nils(v any) any {
	switch t := v.(type) {
	case map[string]any:
		kept := lo.OmitBy(t, func(_ string, x any) bool { return x == nil })
		return lo.MapValues(kept, func(x any, _ string) any { return Nils(x) })
	case []any:
		kept := lo.Filter(t, func(x any, _ int) bool { return x != nil })
		return lo.Map(kept, func(x any, _ int) any { return Nils(x) })
	}
	if m, ok := coerce.AsMap(v); ok {
		return Nils(m)
	}
	if s, ok := coerce.AsSlice(v); ok {
		return Nils(s)
	}
	return v
}

// Record applies Blanks to a record.
func Record(v map[string]any) map[string]any {
	out, _ := Blanks(v).(map[string]any)
	return out
}
