// =============================================================================
// COUNTER Report Generator - Validation Module
// =============================================================================
//
// This module pre-flights usage rows before they are assembled into a report.
// It catches row-level problems with the row number attached, so an operator
// can fix the export, where the report builder would only name the node.
//
// VALIDATION RULES:
//   - required:     Required logical columns carry a value
//   - integer:      Count (and PubYr when present) is a non-negative integer
//   - date:         Begin and End parse as dates
//   - enumeration:  ItemDataType, Category and MetricType are registry members
//   - period_order: Begin is not after End (warning)
//   - issn/isbn:    Identifier columns look like an ISSN/ISBN (warning)
//
// SEVERITY:
//   "error" rows are dropped (or fail the file); "warning" rows are kept.
//
// =============================================================================

package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/ginjaninja78/counter-reports/internal/counter"
	"github.com/ginjaninja78/counter-reports/internal/types"
)

// Severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single validation error.
type ValidationError struct {
	// Severity indicates the severity of the error.
	// "error" = the row cannot be reported
	// "warning" = the row is reported as is
	Severity string

	// Field is the logical column that failed validation.
	Field string

	// Value is the actual value that failed validation.
	Value string

	// Rule is the validation rule that was violated.
	Rule string

	// Message is a human-readable error message.
	Message string

	// RowNumber is the original row number in the export.
	RowNumber int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] Row %d, Field '%s': %s (value: '%s')",
		strings.ToUpper(e.Severity),
		e.RowNumber,
		e.Field,
		e.Message,
		e.Value,
	)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if there are no fatal errors.
	IsValid bool

	// Errors contains all validation errors (including warnings).
	Errors []*ValidationError

	// ErrorCount is the number of fatal errors.
	ErrorCount int

	// WarningCount is the number of warnings.
	WarningCount int

	// RowsValidated is the total number of rows validated.
	RowsValidated int
}

// FailedRows returns the row numbers carrying at least one fatal error.
func (r *ValidationResult) FailedRows() map[int]bool {
	failed := make(map[int]bool)
	for _, e := range r.Errors {
		if e.Severity == SeverityError {
			failed[e.RowNumber] = true
		}
	}
	return failed
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator performs validation on usage rows.
type Validator struct {
	options ValidationOptions
}

// ValidationOptions contains options for validation.
type ValidationOptions struct {
	// StopOnFirstError stops validation after the first fatal error.
	// Default: false
	StopOnFirstError bool

	// TreatWarningsAsErrors treats warnings as fatal errors.
	// Default: false
	TreatWarningsAsErrors bool

	// CustomValidators is a map of custom validation functions.
	// Key is the logical column, value is the validation function.
	CustomValidators map[string]CustomValidatorFunc
}

// CustomValidatorFunc is a function type for custom validators.
// It takes the field value and returns an error message if validation fails.
type CustomValidatorFunc func(value string, context ValidationContext) string

// ValidationContext provides context for custom validators.
type ValidationContext struct {
	FieldName string
	Row       types.Row
}

// DefaultValidationOptions returns the default validation options.
func DefaultValidationOptions() ValidationOptions {
	return ValidationOptions{
		CustomValidators: make(map[string]CustomValidatorFunc),
	}
}

// NewValidator creates a new Validator instance.
func NewValidator() *Validator {
	return NewValidatorWithOptions(DefaultValidationOptions())
}

// NewValidatorWithOptions creates a new Validator with custom options.
func NewValidatorWithOptions(options ValidationOptions) *Validator {
	return &Validator{options: options}
}

// =============================================================================
// MAIN VALIDATION FUNCTION
// =============================================================================

// Validate validates all rows with the default options and returns the
// errors found.
func Validate(rows []types.Row) []*ValidationError {
	return NewValidator().ValidateAll(rows).Errors
}

// ValidateAll validates every row and returns a summary.
func (v *Validator) ValidateAll(rows []types.Row) *ValidationResult {
	result := &ValidationResult{
		IsValid: true,
		Errors:  []*ValidationError{},
	}

	for _, row := range rows {
		rowErrors := v.ValidateRow(row)
		result.RowsValidated++

		for _, err := range rowErrors {
			result.Errors = append(result.Errors, err)
			if err.Severity == SeverityError {
				result.ErrorCount++
				result.IsValid = false
			} else {
				result.WarningCount++
			}
		}

		if v.options.StopOnFirstError && !result.IsValid {
			break
		}
	}

	return result
}

// ValidateRow validates a single row keyed by logical column.
func (v *Validator) ValidateRow(row types.Row) []*ValidationError {
	var errs []*ValidationError

	add := func(severity, field, rule, message string) {
		if severity == SeverityWarning && v.options.TreatWarningsAsErrors {
			severity = SeverityError
		}
		errs = append(errs, &ValidationError{
			Severity:  severity,
			Field:     field,
			Value:     row.Get(field),
			Rule:      rule,
			Message:   message,
			RowNumber: row.Number,
		})
	}

	// Required columns.
	for _, column := range types.RequiredColumns {
		if strings.TrimSpace(row.Get(column)) == "" {
			add(SeverityError, column, "required", "Required field is empty")
		}
	}

	// Integers.
	if value := row.Get(types.ColumnCount); strings.TrimSpace(value) != "" {
		if msg := validateNonNegativeInteger(value); msg != "" {
			add(SeverityError, types.ColumnCount, "integer", msg)
		}
	}
	if value := row.Get(types.ColumnPubYr); strings.TrimSpace(value) != "" {
		if msg := validateNonNegativeInteger(value); msg != "" {
			add(SeverityError, types.ColumnPubYr, "integer", msg)
		}
	}

	// Dates.
	begin, beginOK := checkDate(row, types.ColumnBegin, add)
	end, endOK := checkDate(row, types.ColumnEnd, add)
	if beginOK && endOK && begin.After(end) {
		add(SeverityWarning, types.ColumnBegin, "period_order", "Begin is after End")
	}

	// Enumerations.
	enumerated := []struct {
		column string
		enum   counter.Enumeration
	}{
		{types.ColumnItemDataType, counter.EnumItemDataType},
		{types.ColumnCategory, counter.EnumCategory},
		{types.ColumnMetricType, counter.EnumMetricType},
	}
	for _, e := range enumerated {
		value := row.Get(e.column)
		if value != "" && !counter.IsMember(e.enum, value) {
			add(SeverityError, e.column, "enumeration",
				fmt.Sprintf("Not a valid %s; expected one of: %s", e.enum, strings.Join(counter.Values(e.enum), ", ")))
		}
	}

	// Identifier formats.
	for _, column := range []string{types.ColumnOnlineISSN, types.ColumnPrintISSN} {
		if value := row.Get(column); value != "" && !issnPattern.MatchString(value) {
			add(SeverityWarning, column, "issn", "Does not look like an ISSN (NNNN-NNNC)")
		}
	}
	for _, column := range []string{types.ColumnOnlineISBN, types.ColumnPrintISBN} {
		if value := row.Get(column); value != "" && !isISBN(value) {
			add(SeverityWarning, column, "isbn", "Does not look like an ISBN-10 or ISBN-13")
		}
	}

	// Custom validators, in column order for stable output.
	columns := lo.Keys(v.options.CustomValidators)
	sort.Strings(columns)
	for _, column := range columns {
		if msg := v.options.CustomValidators[column](row.Get(column), ValidationContext{FieldName: column, Row: row}); msg != "" {
			add(SeverityError, column, "custom", msg)
		}
	}

	return errs
}

// =============================================================================
// RULE IMPLEMENTATIONS
// =============================================================================

var (
	issnPattern    = regexp.MustCompile(`^\d{4}-?\d{3}[\dXx]$`)
	isbnSeparators = strings.NewReplacer("-", "", " ", "")
)

// checkDate parses a date column, reporting it through add when it does not
// parse. Empty values are left to the required rule.
func checkDate(row types.Row, column string, add func(severity, field, rule, message string)) (time.Time, bool) {
	value := row.Get(column)
	if strings.TrimSpace(value) == "" {
		return time.Time{}, false
	}
	parsed, ok := counter.ParseDate(value)
	if !ok {
		add(SeverityError, column, "date", "Invalid date format")
		return time.Time{}, false
	}
	return parsed, true
}

// validateNonNegativeInteger returns an error message if value is not a
// whole number >= 0.
func validateNonNegativeInteger(value string) string {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return "Value must be a whole number"
	}
	if n < 0 {
		return "Value must not be negative"
	}
	return ""
}

// isISBN reports whether value has 10 or 13 digits once separators are
// removed (ISBN-10 may end in X).
func isISBN(value string) bool {
	digits := isbnSeparators.Replace(value)
	switch len(digits) {
	case 13:
		return isDigits(digits)
	case 10:
		last := digits[9]
		return isDigits(digits[:9]) && (last == 'X' || last == 'x' || (last >= '0' && last <= '9'))
	default:
		return false
	}
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// =============================================================================
// OUTPUT FUNCTIONS
// =============================================================================

// FormatErrors formats validation errors for display or logging.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d error(s):\n\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}
