package validation

import (
	"regexp"
	"strconv"
	"strings"
)

// =============================================================================
// CONDITIONAL RULE EVALUATION
// =============================================================================

// Condition patterns. A field name of "value" refers to the value being
// transformed when the caller puts it in fields under that key.
var (
	equalsPattern     = regexp.MustCompile(`^(\w+)\s*==\s*'([^']*)'$`)
	notEqualsPattern  = regexp.MustCompile(`^(\w+)\s*!=\s*'([^']*)'$`)
	greaterPattern    = regexp.MustCompile(`^(\w+)\s*>\s*(\d+(?:\.\d+)?)$`)
	lessPattern       = regexp.MustCompile(`^(\w+)\s*<\s*(\d+(?:\.\d+)?)$`)
	startsWithPattern = regexp.MustCompile(`^(\w+)\s+starts_with\s+'([^']*)'$`)
	isEmptyPattern    = regexp.MustCompile(`^(\w+)\s+is_empty$`)
	isNotEmptyPattern = regexp.MustCompile(`^(\w+)\s+is_not_empty$`)
)

// EvaluateCondition evaluates a simple rule against a row's fields.
//
// SUPPORTED PATTERNS:
//   - "Field == 'value'"
//   - "Field != 'value'"
//   - "Field > number" / "Field < number"
//   - "Field starts_with 'prefix'"
//   - "Field is_empty" / "Field is_not_empty"
//
// An optional leading "if " is ignored. Unknown rules evaluate to false.
func EvaluateCondition(rule string, fields map[string]string) bool {
	rule = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rule), "if "))

	if m := equalsPattern.FindStringSubmatch(rule); m != nil {
		return fields[m[1]] == m[2]
	}
	if m := notEqualsPattern.FindStringSubmatch(rule); m != nil {
		return fields[m[1]] != m[2]
	}
	if m := greaterPattern.FindStringSubmatch(rule); m != nil {
		threshold, _ := strconv.ParseFloat(m[2], 64)
		actual, err := strconv.ParseFloat(fields[m[1]], 64)
		return err == nil && actual > threshold
	}
	if m := lessPattern.FindStringSubmatch(rule); m != nil {
		threshold, _ := strconv.ParseFloat(m[2], 64)
		actual, err := strconv.ParseFloat(fields[m[1]], 64)
		return err == nil && actual < threshold
	}
	if m := startsWithPattern.FindStringSubmatch(rule); m != nil {
		return strings.HasPrefix(fields[m[1]], m[2])
	}
	if m := isEmptyPattern.FindStringSubmatch(rule); m != nil {
		return strings.TrimSpace(fields[m[1]]) == ""
	}
	if m := isNotEmptyPattern.FindStringSubmatch(rule); m != nil {
		return strings.TrimSpace(fields[m[1]]) != ""
	}

	return false
}
