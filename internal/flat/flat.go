// Package flat expands parametrized configuration maps into concrete ones.
//
// A descriptor key holding a list of values multiplies the element into one
// copy per value (a parameter sweep), and string fields may reference other
// descriptor fields with {name} placeholders.
package flat

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

// Derivatives computes additional descriptor fields from the ones already
// present. The returned fields are merged into the descriptor before
// placeholder substitution.
type Derivatives func(desc map[string]any) map[string]any

var placeholderRe = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// MakeFlat expands every element of elems over the list-valued keys of its
// descriptor. The descriptor is the nested map under descKey, or the element
// itself when descKey is empty. common provides shared base fields; a key
// present in the descriptor overrides the common value.
//
// Output preserves input order. Expansion over multiple list-valued keys is
// a cartesian product, iterated in sorted key order so the result is
// deterministic. A key holding an empty list expands to zero elements.
func MakeFlat(elems []map[string]any, descKey string, common map[string]any) []map[string]any {
	var out []map[string]any
	for _, elem := range elems {
		desc := descOf(elem, descKey)

		merged := copyMap(common)
		for k, v := range desc {
			merged[k] = v
		}

		for _, expanded := range expandDesc(merged) {
			out = append(out, withDesc(elem, descKey, expanded))
		}
	}
	return out
}

// ProcessFstrings substitutes {name} placeholders in the string fields of
// every element's descriptor, using the descriptor's own fields as the
// substitution source. When derive is non-nil its output is merged into the
// descriptor first, so placeholders can reference derived fields as well.
// Unknown placeholders are left untouched.
func ProcessFstrings(elems []map[string]any, descKey string, derive Derivatives) []map[string]any {
	for _, elem := range elems {
		desc := descOf(elem, descKey)

		if derive != nil {
			for k, v := range derive(desc) {
				desc[k] = v
			}
		}

		for k, v := range desc {
			s, ok := v.(string)
			if !ok {
				continue
			}
			desc[k] = placeholderRe.ReplaceAllStringFunc(s, func(match string) string {
				name := match[1 : len(match)-1]
				if val, ok := desc[name]; ok {
					return FormatValue(val)
				}
				return match
			})
		}
	}
	return elems
}

// FormatValue renders a descriptor value the way it should appear inside a
// templated string. Integral floats lose the trailing ".0" so JSON-sourced
// numbers read naturally.
func FormatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func descOf(elem map[string]any, descKey string) map[string]any {
	if descKey == "" {
		return elem
	}
	desc, _ := elem[descKey].(map[string]any)
	return desc
}

func withDesc(elem map[string]any, descKey string, desc map[string]any) map[string]any {
	if descKey == "" {
		return desc
	}
	out := copyMap(elem)
	out[descKey] = desc
	return out
}

func expandDesc(desc map[string]any) []map[string]any {
	out := []map[string]any{copyMap(desc)}

	keys := make([]string, 0, len(desc))
	for k := range desc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		values, ok := desc[k].([]any)
		if !ok {
			continue
		}
		var next []map[string]any
		for _, partial := range out {
			for _, v := range values {
				expanded := copyMap(partial)
				expanded[k] = v
				next = append(next, expanded)
			}
		}
		out = next
	}
	return out
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
