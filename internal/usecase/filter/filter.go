// Package filter evaluates structured filter predicates against raw profile
// records. Matching is pure and side-effect-free, callable in parallel.
package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// Sub-objects searched, in order, when an unprefixed key is not found at the
// top level of the record.
var fallbackObjects = []string{"personal_info", "investment_profile"}

// Matches reports whether the profile satisfies every filter (logical AND).
// An empty or nil filter set matches unconditionally.
//
// Comparison semantics follow the filter value's type:
//   - nil: the profile-side value must also be absent/nil
//   - bool: exact equality
//   - list: any-overlap, case-insensitive; against a profile-side string the
//     elements are tested as substrings; against a scalar, as equals
//   - string: case-insensitive substring of the stringified profile value
//   - anything else: exact equality
func Matches(profile map[string]any, filters map[string]any) bool {
	for key, want := range filters {
		got := resolve(profile, key)
		if !matchValue(got, want) {
			return false
		}
	}
	return true
}

// resolve looks up the profile-side value for a filter key. Dotted keys walk
// nested objects; absence at any step yields nil. Unprefixed keys are tried
// top-level first, then in the known sub-objects.
func resolve(profile map[string]any, key string) any {
	if strings.Contains(key, ".") {
		var current any = profile
		for _, part := range strings.Split(key, ".") {
			obj, ok := current.(map[string]any)
			if !ok {
				return nil
			}
			current = obj[part]
		}
		return current
	}

	if v, ok := profile[key]; ok && v != nil {
		return v
	}
	for _, sub := range fallbackObjects {
		if obj, ok := profile[sub].(map[string]any); ok {
			if v, ok := obj[key]; ok && v != nil {
				return v
			}
		}
	}
	return nil
}

func matchValue(got, want any) bool {
	switch w := want.(type) {
	case nil:
		return got == nil
	case bool:
		g, ok := got.(bool)
		return ok && g == w
	case []any:
		return matchList(got, w)
	case string:
		if got == nil {
			return false
		}
		return strings.Contains(strings.ToLower(stringify(got)), strings.ToLower(w))
	default:
		return got == want
	}
}

// matchList implements the list-filter semantics: any element of the filter
// list matching the profile side passes.
func matchList(got any, want []any) bool {
	switch g := got.(type) {
	case []any:
		haystack := make([]string, len(g))
		for i, v := range g {
			haystack[i] = strings.ToLower(stringify(v))
		}
		for _, w := range want {
			needle := strings.ToLower(stringify(w))
			for _, h := range haystack {
				if h == needle {
					return true
				}
			}
		}
		return false
	case string:
		lower := strings.ToLower(g)
		for _, w := range want {
			if strings.Contains(lower, strings.ToLower(stringify(w))) {
				return true
			}
		}
		return false
	case nil:
		return false
	default:
		scalar := strings.ToLower(stringify(g))
		for _, w := range want {
			if scalar == strings.ToLower(stringify(w)) {
				return true
			}
		}
		return false
	}
}

// stringify renders a JSON-decoded scalar the way the filter comparison
// expects. Floats that are whole numbers print without a fraction so that
// JSON's number decoding (always float64) still compares equal to integer
// filter values.
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
