// =============================================================================
// COUNTER Report Generator - Build Errors
// =============================================================================
//
// Every failure raised while building or rendering a report tree is a
// *BuildError. The Kind field classifies it and errors.Is matches it against
// the package sentinels:
//
//   ErrShape        raw input matched none of the accepted shapes
//   ErrType         a field held a value of the wrong kind
//   ErrEnumeration  a value outside its closed list
//   ErrArity        a one-or-more field received zero elements
//   ErrRender       a node could not be rendered (programming defect)
//
// =============================================================================

package counter

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per Kind.
var (
	ErrShape       = errors.New("unrecognised input shape")
	ErrType        = errors.New("invalid type")
	ErrEnumeration = errors.New("value not in enumeration")
	ErrArity       = errors.New("one or more required")
	ErrRender      = errors.New("render failed")
)

// ErrorKind classifies a BuildError.
type ErrorKind int

const (
	KindShape ErrorKind = iota + 1
	KindType
	KindEnumeration
	KindArity
	KindRender
)

// String returns the kind's name.
func (k ErrorKind) String() string {
	switch k {
	case KindShape:
		return "shape"
	case KindType:
		return "type"
	case KindEnumeration:
		return "enumeration"
	case KindArity:
		return "arity"
	case KindRender:
		return "render"
	default:
		return "unknown"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindShape:
		return ErrShape
	case KindType:
		return ErrType
	case KindEnumeration:
		return ErrEnumeration
	case KindArity:
		return ErrArity
	case KindRender:
		return ErrRender
	default:
		return nil
	}
}

// BuildError describes a single construction or render failure.
type BuildError struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// Node is the node type being built, e.g. "Metric".
	Node string

	// Field is the offending field, empty when the whole input is at fault.
	Field string

	// Value is the offending input, echoed for diagnostics.
	Value any

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	where := e.Node
	if e.Field != "" {
		where += "." + e.Field
	}
	return fmt.Sprintf("[%s] %s: %s", e.Kind, where, e.Message)
}

// Unwrap returns the sentinel matching the error's kind.
func (e *BuildError) Unwrap() error {
	return e.Kind.sentinel()
}

func shapeError(node string, value any) error {
	return &BuildError{
		Kind:    KindShape,
		Node:    node,
		Value:   value,
		Message: fmt.Sprintf("failed to build %s from data %s", node, describe(value)),
	}
}

func typeError(node, field, expected string, value any) error {
	return &BuildError{
		Kind:    KindType,
		Node:    node,
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("expected %q, got %s", expected, describeKind(value)),
	}
}

func enumerationError(node, field, enum, value string) error {
	return &BuildError{
		Kind:    KindEnumeration,
		Node:    node,
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("invalid %s: %q", enum, value),
	}
}

func arityError(node, field string) error {
	return &BuildError{
		Kind:    KindArity,
		Node:    node,
		Field:   field,
		Message: "at least one element is required, got none",
	}
}

func renderError(node, message string) error {
	return &BuildError{
		Kind:    KindRender,
		Node:    node,
		Message: message,
	}
}

// describe renders an input value for error messages.
func describe(value any) string {
	if value == nil {
		return "NULL"
	}
	return fmt.Sprintf("%#v", value)
}

// describeKind names the dynamic kind of an input value for type errors.
func describeKind(value any) string {
	switch v := value.(type) {
	case nil:
		return `"NULL"`
	case string:
		return fmt.Sprintf("unparsable string %q", v)
	default:
		if _, ok := asMapping(value); ok {
			return "unparsable mapping"
		}
		if _, ok := asSequence(value); ok {
			return "unparsable sequence"
		}
		return fmt.Sprintf("%q", fmt.Sprintf("%T", value))
	}
}
