// =============================================================================
// COUNTER Report Generator - Shared Validators and Shape Helpers
// =============================================================================
//
// Every node type composes these functions instead of inheriting them:
//
//   VALUE VALIDATORS
//     validateString           textual value, returned unchanged
//     validateStrings          sequence of strings, single string, or empty
//     validatePositiveInteger  coerces to int, rejects negatives
//     validateOneOf[T]         instance of T, or a date string when T is time.Time
//     validateOneOrMoreOf[T]   single instance or non-empty sequence of T
//     validateZeroOrMoreOf[T]  as above, empty is the canonical empty slice
//     validateZeroOrOneOf[T]   as validateOneOf, empty is the zero value
//
//   SHAPE HELPERS
//     asMapping / asSequence   loose input classification
//     isAssociative            keyed mapping with at least one key
//     buildOne / buildMultiple child construction shared by every composite
//
// LOOSE INPUT:
//   Mappings are map[string]any (or map[any]any / map[string]string with
//   string keys). Sequences are []any, []string or []map[string]any. Values
//   that are already built nodes pass through untouched.
//
// =============================================================================

package counter

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// LOOSE INPUT CLASSIFICATION
// =============================================================================

// asMapping returns v as a string-keyed mapping.
func asMapping(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[k] = val
		}
		return out, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			key, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[key] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// asSequence returns v as an ordered sequence.
func asSequence(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, val := range s {
			out[i] = val
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(s))
		for i, val := range s {
			out[i] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// isAssociative reports whether v is a keyed mapping with at least one key.
// An empty mapping is treated like an empty sequence.
func isAssociative(v any) bool {
	m, ok := asMapping(v)
	return ok && len(m) > 0
}

// isEmpty reports whether v is absent or an empty string, mapping or sequence.
func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	if m, ok := asMapping(v); ok {
		return len(m) == 0
	}
	if s, ok := asSequence(v); ok {
		return len(s) == 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	case reflect.Slice, reflect.Map:
		return rv.Len() == 0
	}
	return false
}

// isset reports whether key is present in m with a non-nil value.
func isset(m map[string]any, key string) bool {
	v, ok := m[key]
	return ok && v != nil
}

// issetAll reports whether every key is set in m.
func issetAll(m map[string]any, keys ...string) bool {
	for _, key := range keys {
		if !isset(m, key) {
			return false
		}
	}
	return true
}

// issetAny reports whether at least one key is set in m.
func issetAny(m map[string]any, keys ...string) bool {
	for _, key := range keys {
		if isset(m, key) {
			return true
		}
	}
	return false
}

// singleEntry returns the only key/value pair of a one-entry mapping.
func singleEntry(m map[string]any) (string, any, bool) {
	if len(m) != 1 {
		return "", nil, false
	}
	for k, v := range m {
		return k, v, true
	}
	return "", nil, false
}

// =============================================================================
// VALUE VALIDATORS
// =============================================================================

// validateString returns v unchanged if it is textual.
func validateString(node, field string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", &BuildError{
			Kind:    KindType,
			Node:    node,
			Field:   field,
			Value:   v,
			Message: fmt.Sprintf("invalid string: %s", typeName(v)),
		}
	}
	return s, nil
}

// optionalString reads key from m; absent keys yield the empty string.
func optionalString(node string, m map[string]any, key string) (string, error) {
	if !isset(m, key) {
		return "", nil
	}
	return validateString(node, key, m[key])
}

// validateStrings accepts a sequence of strings, a single string, or nothing.
func validateStrings(node, field string, v any) ([]string, error) {
	if isEmpty(v) {
		return nil, nil
	}
	if s, ok := v.(string); ok {
		return []string{s}, nil
	}
	seq, ok := asSequence(v)
	if !ok {
		return nil, &BuildError{
			Kind:    KindType,
			Node:    node,
			Field:   field,
			Value:   v,
			Message: fmt.Sprintf("invalid string sequence: %s", typeName(v)),
		}
	}
	out := make([]string, 0, len(seq))
	for _, element := range seq {
		s, err := validateString(node, field, element)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// validatePositiveInteger coerces v to an int and rejects negative or
// non-integral values. Zero is accepted.
func validatePositiveInteger(node, field string, v any) (int, error) {
	fail := func() (int, error) {
		return 0, &BuildError{
			Kind:    KindType,
			Node:    node,
			Field:   field,
			Value:   v,
			Message: fmt.Sprintf("invalid positive integer: %s value %v", typeName(v), v),
		}
	}

	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int8:
		n = int64(x)
	case int16:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	case uint:
		if uint64(x) > math.MaxInt64 {
			return fail()
		}
		n = int64(x)
	case uint8:
		n = int64(x)
	case uint16:
		n = int64(x)
	case uint32:
		n = int64(x)
	case uint64:
		if x > math.MaxInt64 {
			return fail()
		}
		n = int64(x)
	case float32:
		return validatePositiveInteger(node, field, float64(x))
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) || x != math.Trunc(x) || x > math.MaxInt64 {
			return fail()
		}
		n = int64(x)
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return fail()
		}
		n = parsed
	default:
		return fail()
	}

	if n < 0 || n > math.MaxInt {
		return fail()
	}
	return int(n), nil
}

// dateLayouts are tried in order when a date field receives a string.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"20060102",
}

// ParseDate parses a calendar date in any of the accepted layouts.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// validateDate accepts a time.Time or a parsable date string.
func validateDate(node, field string, v any) (time.Time, error) {
	return validateOneOf[time.Time](node, field, v)
}

// validateOneOf returns v if it is already a T. When T is time.Time a date
// string is parsed. Absent values, raw mappings and values of another kind
// fail. Interface kinds accept any implementation.
func validateOneOf[T any](node, field string, v any) (T, error) {
	var zero T
	expected := kindName[T]()

	if v == nil {
		return zero, typeError(node, field, expected, v)
	}
	if t, ok := v.(T); ok {
		if isNilPointer(t) {
			return zero, typeError(node, field, expected, nil)
		}
		return t, nil
	}
	if s, ok := v.(string); ok {
		if _, wantsDate := any(zero).(time.Time); wantsDate {
			if date, ok := ParseDate(s); ok {
				return any(date).(T), nil
			}
		}
	}
	return zero, typeError(node, field, expected, v)
}

// validateOneOrMoreOf accepts a single T or a non-empty sequence of T.
func validateOneOrMoreOf[T any](node, field string, v any) ([]T, error) {
	if typed, ok := v.([]T); ok {
		if len(typed) == 0 {
			return nil, arityError(node, field)
		}
		out := make([]T, 0, len(typed))
		for _, element := range typed {
			checked, err := validateOneOf[T](node, field, any(element))
			if err != nil {
				return nil, err
			}
			out = append(out, checked)
		}
		return out, nil
	}

	if seq, ok := asSequence(v); ok {
		if len(seq) == 0 {
			return nil, arityError(node, field)
		}
		out := make([]T, 0, len(seq))
		for _, element := range seq {
			checked, err := validateOneOf[T](node, field, element)
			if err != nil {
				return nil, err
			}
			out = append(out, checked)
		}
		return out, nil
	}

	if m, ok := asMapping(v); ok && len(m) == 0 {
		return nil, arityError(node, field)
	}

	single, err := validateOneOf[T](node, field, v)
	if err != nil {
		return nil, err
	}
	return []T{single}, nil
}

// validateZeroOrMoreOf is validateOneOrMoreOf with empty input allowed.
func validateZeroOrMoreOf[T any](node, field string, v any) ([]T, error) {
	if isEmpty(v) {
		return nil, nil
	}
	return validateOneOrMoreOf[T](node, field, v)
}

// validateZeroOrOneOf is validateOneOf with empty input allowed.
func validateZeroOrOneOf[T any](node, field string, v any) (T, error) {
	if isEmpty(v) {
		var zero T
		return zero, nil
	}
	return validateOneOf[T](node, field, v)
}

// =============================================================================
// CHILD CONSTRUCTION
// =============================================================================

// buildFunc converts loose input into a node.
type buildFunc[T any] func(raw any) (T, error)

// buildOne passes an already-built T through and builds anything else.
func buildOne[T any](raw any, build buildFunc[T]) (T, error) {
	if built, ok := raw.(T); ok {
		return built, nil
	}
	return build(raw)
}

// buildMultiple builds the children of a zero-or-more / one-or-more field.
//
// A keyed mapping is a single child. A sequence yields one child per
// element. A scalar or already-built node is a single child. Absent input
// and empty containers yield no children; the owning constructor decides
// whether that is acceptable.
func buildMultiple[T any](raw any, build buildFunc[T]) ([]T, error) {
	if built, ok := raw.([]T); ok {
		return built, nil
	}
	if isEmpty(raw) {
		return nil, nil
	}
	if isAssociative(raw) {
		one, err := buildOne(raw, build)
		if err != nil {
			return nil, err
		}
		return []T{one}, nil
	}

	seq, ok := asSequence(raw)
	if !ok {
		one, err := buildOne(raw, build)
		if err != nil {
			return nil, err
		}
		return []T{one}, nil
	}

	out := make([]T, 0, len(seq))
	for _, element := range seq {
		one, err := buildOne(element, build)
		if err != nil {
			return nil, err
		}
		out = append(out, one)
	}
	return out, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// kindName names T for error messages: "date" for time.Time, the bare type
// name for package types.
func kindName[T any]() string {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	if rt == reflect.TypeOf((*time.Time)(nil)).Elem() {
		return "date"
	}
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	return rt.Name()
}

// typeName names the dynamic type of v.
func typeName(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%T", v)
}

// isNilPointer reports whether v is a typed nil pointer.
func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
