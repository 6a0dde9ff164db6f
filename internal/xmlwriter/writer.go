// =============================================================================
// COUNTER Report Generator - XML Writer Module
// =============================================================================
//
// This module renders an in-memory element tree to XML text. Report nodes in
// the counter package build Element fragments; this module is the only place
// that turns those fragments into bytes.
//
// XML STRUCTURE:
//   Elements carry an ordered attribute list, an optional text value, and an
//   ordered list of children. Order is preserved exactly as appended, which
//   is what the COUNTER schema requires:
//
//   <Reports xmlns="http://www.niso.org/schemas/counter" ...>
//     <Report Created="..." ID="JR1" Version="4" Name="..." Title="...">
//       <Vendor>
//         <ID>vendor</ID>
//       </Vendor>
//       <Customer>...</Customer>
//     </Report>
//   </Reports>
//
// OUTPUT:
//   - Optional XML declaration (version + encoding)
//   - Indented output when Indent is non-empty, compact output otherwise
//   - Elements without text or children are written self-closing
//   - Characters XML 1.0 does not allow are replaced with U+FFFD
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrInvalidElement is returned when an element cannot be rendered.
var ErrInvalidElement = errors.New("invalid element")

// =============================================================================
// ELEMENT TREE
// =============================================================================

// Element represents a generic XML element.
type Element struct {
	XMLName    xml.Name
	Attributes []xml.Attr
	Value      string
	Children   []*Element
}

// NewElement creates an element with the given local name.
func NewElement(name string) *Element {
	return &Element{XMLName: xml.Name{Local: name}}
}

// NewTextElement creates a leaf element holding a text value.
func NewTextElement(name, value string) *Element {
	return &Element{XMLName: xml.Name{Local: name}, Value: value}
}

// SetAttr appends an attribute. Attributes are written in insertion order.
func (e *Element) SetAttr(name, value string) *Element {
	e.Attributes = append(e.Attributes, xml.Attr{Name: xml.Name{Local: name}, Value: value})
	return e
}

// Append adds child elements in order. Nil children are ignored.
func (e *Element) Append(children ...*Element) *Element {
	for _, child := range children {
		if child != nil {
			e.Children = append(e.Children, child)
		}
	}
	return e
}

// AppendText adds a leaf child element holding value.
func (e *Element) AppendText(name, value string) *Element {
	return e.Append(NewTextElement(name, value))
}

// AppendTextIf adds a leaf child element only when value is non-empty.
func (e *Element) AppendTextIf(name, value string) *Element {
	if value == "" {
		return e
	}
	return e.AppendText(name, value)
}

// Name returns the element's local name.
func (e *Element) Name() string {
	return e.XMLName.Local
}

// Child returns the first direct child with the given name, or nil.
func (e *Element) Child(name string) *Element {
	for _, child := range e.Children {
		if child.XMLName.Local == name {
			return child
		}
	}
	return nil
}

// ChildrenNamed returns every direct child with the given name, in order.
func (e *Element) ChildrenNamed(name string) []*Element {
	var out []*Element
	for _, child := range e.Children {
		if child.XMLName.Local == name {
			out = append(out, child)
		}
	}
	return out
}

// Attr returns the value of the named attribute and whether it was present.
func (e *Element) Attr(name string) (string, bool) {
	for _, attr := range e.Attributes {
		if attr.Name.Local == name {
			return attr.Value, true
		}
	}
	return "", false
}

// =============================================================================
// GENERATION OPTIONS
// =============================================================================

// Options contains options for XML generation.
type Options struct {
	// Indent is the string used for one level of indentation.
	// An empty Indent produces compact output with no line breaks.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration determines whether to include the XML declaration.
	// Default: true
	IncludeXMLDeclaration bool

	// XMLVersion is the XML version for the declaration.
	// Default: "1.0"
	XMLVersion string

	// Encoding is the encoding for the XML declaration.
	// Default: "utf-8"
	Encoding string
}

// DefaultOptions returns the options used for whole documents.
func DefaultOptions() Options {
	return Options{
		Indent:                "  ",
		IncludeXMLDeclaration: true,
		XMLVersion:            "1.0",
		Encoding:              "utf-8",
	}
}

// FragmentOptions returns compact options without a declaration.
// Useful for comparing small subtrees.
func FragmentOptions() Options {
	return Options{}
}

// =============================================================================
// XML GENERATION FUNCTIONS
// =============================================================================

// Marshal renders the element tree rooted at root.
//
// RETURNS:
//   - The rendered document.
//   - ErrInvalidElement (wrapped) if the tree contains a nil root or an
//     element without a name.
func Marshal(root *Element, options Options) ([]byte, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: nil root element", ErrInvalidElement)
	}

	var buffer bytes.Buffer

	if options.IncludeXMLDeclaration {
		version := options.XMLVersion
		if version == "" {
			version = "1.0"
		}
		encoding := options.Encoding
		if encoding == "" {
			encoding = "utf-8"
		}
		fmt.Fprintf(&buffer, "<?xml version=\"%s\" encoding=\"%s\"?>", version, encoding)
		buffer.WriteString("\n")
	}

	if err := writeElement(&buffer, root, options.Indent, 0); err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}

// MarshalString is Marshal returning a string.
func MarshalString(root *Element, options Options) (string, error) {
	out, err := Marshal(root, options)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// writeElement writes an XML element to the buffer with indentation.
func writeElement(buffer *bytes.Buffer, element *Element, indent string, level int) error {
	if element.XMLName.Local == "" {
		return fmt.Errorf("%w: element without a name at depth %d", ErrInvalidElement, level)
	}

	pretty := indent != ""
	writeIndent(buffer, indent, level)

	buffer.WriteString("<")
	buffer.WriteString(element.XMLName.Local)

	for _, attr := range element.Attributes {
		fmt.Fprintf(buffer, " %s=\"%s\"", attr.Name.Local, escapeXML(attr.Value))
	}

	if len(element.Children) == 0 && element.Value == "" {
		buffer.WriteString("/>")
		if pretty {
			buffer.WriteString("\n")
		}
		return nil
	}

	buffer.WriteString(">")

	if len(element.Children) == 0 {
		buffer.WriteString(escapeXML(element.Value))
	} else {
		if pretty {
			buffer.WriteString("\n")
		}
		if element.Value != "" {
			writeIndent(buffer, indent, level+1)
			buffer.WriteString(escapeXML(element.Value))
			if pretty {
				buffer.WriteString("\n")
			}
		}

		for _, child := range element.Children {
			if err := writeElement(buffer, child, indent, level+1); err != nil {
				return err
			}
		}

		writeIndent(buffer, indent, level)
	}

	buffer.WriteString("</")
	buffer.WriteString(element.XMLName.Local)
	buffer.WriteString(">")
	if pretty {
		buffer.WriteString("\n")
	}

	return nil
}

func writeIndent(buffer *bytes.Buffer, indent string, level int) {
	for i := 0; i < level; i++ {
		buffer.WriteString(indent)
	}
}

// escapeXML escapes special characters for XML text and attribute values.
// Runes outside the XML 1.0 Char range are replaced with U+FFFD, as
// encoding/xml does, so the output is always well-formed.
func escapeXML(s string) string {
	var buffer bytes.Buffer

	for _, r := range s {
		switch r {
		case '&':
			buffer.WriteString("&amp;")
		case '<':
			buffer.WriteString("&lt;")
		case '>':
			buffer.WriteString("&gt;")
		case '"':
			buffer.WriteString("&quot;")
		case '\'':
			buffer.WriteString("&apos;")
		default:
			if !isXMLChar(r) {
				r = utf8.RuneError
			}
			buffer.WriteRune(r)
		}
	}

	return buffer.String()
}

// isXMLChar reports whether r is in the XML 1.0 Char production.
func isXMLChar(r rune) bool {
	return r == 0x09 ||
		r == 0x0A ||
		r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}
