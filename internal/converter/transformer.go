// =============================================================================
// COUNTER Report Generator - Transformation Engine
// =============================================================================
//
// This module normalizes usage values before validation. Exports from
// different platforms spell the same thing differently ("HTML" vs "ft_html",
// "01/31/2023" vs "2023-01-31", "1,204" vs "1204"); profile rules bring them
// onto the values the report model accepts.
//
// TRANSFORMATION TYPES:
//   - String manipulations (prepend, append, trim, case conversion, replace)
//   - Numeric clean-up (padding, digit extraction, leading zeros)
//   - Date conversions
//   - Lookup table replacements
//   - Conditional values
//
// =============================================================================

package converter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ginjaninja78/counter-reports/internal/config"
	"github.com/ginjaninja78/counter-reports/internal/counter"
	"github.com/ginjaninja78/counter-reports/internal/types"
	"github.com/ginjaninja78/counter-reports/internal/validation"
)

// =============================================================================
// TRANSFORMER
// =============================================================================

// Transformer handles field value transformations.
type Transformer struct {
	rules []config.TransformationRule

	mu      sync.Mutex
	regexps map[string]*regexp.Regexp
}

// NewTransformer creates a new Transformer with the given rules.
func NewTransformer(rules []config.TransformationRule) *Transformer {
	return &Transformer{
		rules:   rules,
		regexps: make(map[string]*regexp.Regexp),
	}
}

// =============================================================================
// TRANSFORMATION FUNCTIONS
// =============================================================================

// Transform applies every rule for fieldName to value, in rule order.
//
// PARAMETERS:
//   - fieldName: The logical column being transformed.
//   - value: The current value of the field.
//   - allFields: All fields in the current row (for conditional transformations).
//
// RETURNS:
//   - The transformed value.
//   - An error if any transformation fails.
func (t *Transformer) Transform(fieldName, value string, allFields map[string]string) (string, error) {
	result := value
	for _, rule := range t.rules {
		if rule.Field != fieldName {
			continue
		}
		for _, action := range rule.Actions {
			var err error
			result, err = t.apply(result, action, allFields)
			if err != nil {
				return "", fmt.Errorf("transformation '%s' failed: %w", action.Type, err)
			}
		}
	}
	return result, nil
}

// TransformRow applies all rules to a row in place. Rules run in the order
// they are configured, and later rules see earlier results.
func (t *Transformer) TransformRow(row *types.Row) error {
	for _, rule := range t.rules {
		value := row.Fields[rule.Field]
		for _, action := range rule.Actions {
			var err error
			value, err = t.apply(value, action, row.Fields)
			if err != nil {
				return fmt.Errorf("row %d: transformation '%s' on %s failed: %w", row.Number, action.Type, rule.Field, err)
			}
		}
		row.Fields[rule.Field] = value
	}
	return nil
}

// apply runs one action, caching compiled regular expressions.
func (t *Transformer) apply(value string, action config.TransformationAction, allFields map[string]string) (string, error) {
	if action.Type != "regex_replace" || action.Find == "" {
		return ApplyTransformation(value, action, allFields)
	}

	t.mu.Lock()
	re, ok := t.regexps[action.Find]
	if !ok {
		var err error
		re, err = regexp.Compile(action.Find)
		if err != nil {
			t.mu.Unlock()
			return "", fmt.Errorf("invalid regex pattern: %w", err)
		}
		t.regexps[action.Find] = re
	}
	t.mu.Unlock()

	return re.ReplaceAllString(value, action.Value), nil
}

var (
	digitsPattern     = regexp.MustCompile(`\d+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// ApplyTransformation applies a single transformation action.
//
// PARAMETERS:
//   - value: The current value.
//   - action: The transformation action to apply.
//   - allFields: All fields in the current row (for conditional transformations).
//
// RETURNS:
//   - The transformed value.
//   - An error if the action is unknown or malformed.
func ApplyTransformation(value string, action config.TransformationAction, allFields map[string]string) (string, error) {
	switch action.Type {

	// =========================================================================
	// STRING MANIPULATIONS
	// =========================================================================

	case "prepend_string":
		return action.Value + value, nil

	case "append_string":
		return value + action.Value, nil

	case "trim":
		return strings.TrimSpace(value), nil

	case "uppercase":
		return strings.ToUpper(value), nil

	case "lowercase":
		return strings.ToLower(value), nil

	case "normalize_whitespace":
		// "Journal  of\tTests " -> "Journal of Tests"
		return strings.TrimSpace(whitespacePattern.ReplaceAllString(value, " ")), nil

	case "replace":
		// "ft-html" with find "-" and value "_" -> "ft_html"
		if action.Find == "" {
			return value, nil
		}
		return strings.ReplaceAll(value, action.Find, action.Value), nil

	case "regex_replace":
		if action.Find == "" {
			return value, nil
		}
		re, err := regexp.Compile(action.Find)
		if err != nil {
			return "", fmt.Errorf("invalid regex pattern: %w", err)
		}
		return re.ReplaceAllString(value, action.Value), nil

	// =========================================================================
	// NUMERIC CLEAN-UP
	// =========================================================================

	case "pad_zeros_to_length":
		// "123" with value "8" -> "00000123"
		targetLength, err := strconv.Atoi(action.Value)
		if err != nil || targetLength <= 0 {
			return "", fmt.Errorf("invalid length %q", action.Value)
		}
		return PadLeft(value, targetLength, '0'), nil

	case "remove_leading_zeros":
		// "00012" -> "12"
		result := strings.TrimLeft(value, "0")
		if result == "" && value != "" {
			return "0", nil
		}
		return result, nil

	case "extract_digits":
		// "1,204" -> "1204"
		return strings.Join(digitsPattern.FindAllString(value, -1), ""), nil

	// =========================================================================
	// DATE CONVERSIONS
	// =========================================================================

	case "format_date":
		// VALUE FORMAT: "input_layout|output_layout" or "output_layout".
		// Without an input layout, any date the report model accepts is read.
		//
		// EXAMPLE:
		//   Input: "01/31/2023"
		//   Action: format_date with value "01/02/2006|2006-01-02"
		//   Output: "2023-01-31"
		if strings.TrimSpace(value) == "" {
			return value, nil
		}
		inputLayout, outputLayout := "", strings.TrimSpace(action.Value)
		if parts := strings.SplitN(action.Value, "|", 2); len(parts) == 2 {
			inputLayout, outputLayout = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		}
		if outputLayout == "" {
			outputLayout = "2006-01-02"
		}

		var (
			parsed time.Time
			ok     bool
		)
		if inputLayout != "" {
			var err error
			parsed, err = time.Parse(inputLayout, strings.TrimSpace(value))
			ok = err == nil
		} else {
			parsed, ok = counter.ParseDate(value)
		}
		if !ok {
			// Leave it for validation to report with the row number.
			return value, nil
		}
		return parsed.Format(outputLayout), nil

	// =========================================================================
	// LOOKUP TABLE REPLACEMENTS
	// =========================================================================

	case "lookup":
		// "html" with lookup_table {"html": "ft_html"} -> "ft_html"
		if replacement, exists := action.LookupTable[value]; exists {
			return replacement, nil
		}
		return value, nil

	case "lookup_with_default":
		// The default value is specified in action.Value.
		if replacement, exists := action.LookupTable[value]; exists {
			return replacement, nil
		}
		return action.Value, nil

	// =========================================================================
	// CONDITIONAL TRANSFORMATIONS
	// =========================================================================

	case "set_if":
		// Condition sees the row's fields plus "value" for the current value.
		//
		// EXAMPLE:
		//   Condition: "ItemDataType == 'Book'"
		//   Value: "Requests"
		if action.Condition == "" {
			return "", fmt.Errorf("set_if requires a condition")
		}
		fields := make(map[string]string, len(allFields)+1)
		for k, v := range allFields {
			fields[k] = v
		}
		fields["value"] = value
		if validation.EvaluateCondition(action.Condition, fields) {
			return action.Value, nil
		}
		return value, nil

	case "if_empty_use_default":
		if strings.TrimSpace(value) == "" {
			return action.Value, nil
		}
		return value, nil

	case "if_empty_use_field":
		// VALUE: The name of the field to use.
		if strings.TrimSpace(value) == "" {
			if otherValue, exists := allFields[action.Value]; exists {
				return otherValue, nil
			}
		}
		return value, nil

	default:
		return "", fmt.Errorf("unknown transformation type: %s", action.Type)
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// PadLeft pads a string with a character on the left to reach the target length.
func PadLeft(s string, length int, padChar rune) string {
	if len(s) >= length {
		return s
	}
	return strings.Repeat(string(padChar), length-len(s)) + s
}
