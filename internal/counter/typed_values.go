// =============================================================================
// COUNTER Report Generator - Typed Value Nodes
// =============================================================================
//
// Identifier, ItemAttribute, ItemContributorID and ItemDate all pair an
// enumerated Type with a Value and accept the same two input shapes:
//
//   {"Type": "DOI", "Value": "10.1000/xyz"}     canonical mapping
//   {"DOI": "10.1000/xyz"}                      single entry, type => value
//
// =============================================================================

package counter

import (
	"time"

	"github.com/ginjaninja78/counter-reports/internal/xmlwriter"
)

// typedPair extracts the type and value of a pair node from loose input.
func typedPair(raw any) (typ any, value any, ok bool) {
	m, isMap := asMapping(raw)
	if !isMap {
		return nil, nil, false
	}
	if issetAll(m, "Type", "Value") {
		return m["Type"], m["Value"], true
	}
	if key, v, single := singleEntry(m); single {
		return key, v, true
	}
	return nil, nil, false
}

// validateTypedString validates an enumerated type and a string value.
func validateTypedString(node string, enum Enumeration, typ, value any) (string, string, error) {
	t, err := validateString(node, "Type", typ)
	if err != nil {
		return "", "", err
	}
	v, err := validateString(node, "Value", value)
	if err != nil {
		return "", "", err
	}
	if err := validateMember(node, "Type", enum, t); err != nil {
		return "", "", err
	}
	return t, v, nil
}

func renderPair(name, typ, value string) *xmlwriter.Element {
	return xmlwriter.NewElement(name).
		AppendText("Type", typ).
		AppendText("Value", value)
}

// =============================================================================
// IDENTIFIER
// =============================================================================

// Identifier is an item or institutional identifier such as an ISSN or DOI.
type Identifier struct {
	typ   string
	value string
}

// NewIdentifier creates an Identifier. typ must be an identifier type.
func NewIdentifier(typ, value string) (*Identifier, error) {
	t, v, err := validateTypedString("Identifier", EnumIdentifierType, typ, value)
	if err != nil {
		return nil, err
	}
	return &Identifier{typ: t, value: v}, nil
}

// BuildIdentifier builds an Identifier from loose input.
func BuildIdentifier(raw any) (*Identifier, error) {
	typ, value, ok := typedPair(raw)
	if !ok {
		return nil, shapeError("Identifier", raw)
	}
	t, v, err := validateTypedString("Identifier", EnumIdentifierType, typ, value)
	if err != nil {
		return nil, err
	}
	return &Identifier{typ: t, value: v}, nil
}

// Type returns the identifier type.
func (i *Identifier) Type() string { return i.typ }

// Value returns the identifier value.
func (i *Identifier) Value() string { return i.value }

// Render implements Node. Standalone identifiers render as <ItemIdentifier>.
func (i *Identifier) Render() *xmlwriter.Element {
	return i.renderAs("ItemIdentifier")
}

// renderAs renders the identifier under a context specific element name.
func (i *Identifier) renderAs(name string) *xmlwriter.Element {
	return renderPair(name, i.typ, i.value)
}

// =============================================================================
// ITEM ATTRIBUTE
// =============================================================================

// ItemAttribute is a typed descriptive attribute of an item.
type ItemAttribute struct {
	typ   string
	value string
}

// NewItemAttribute creates an ItemAttribute. typ must be an attribute type.
func NewItemAttribute(typ, value string) (*ItemAttribute, error) {
	t, v, err := validateTypedString("ItemAttribute", EnumAttributeType, typ, value)
	if err != nil {
		return nil, err
	}
	return &ItemAttribute{typ: t, value: v}, nil
}

// BuildItemAttribute builds an ItemAttribute from loose input.
func BuildItemAttribute(raw any) (*ItemAttribute, error) {
	typ, value, ok := typedPair(raw)
	if !ok {
		return nil, shapeError("ItemAttribute", raw)
	}
	t, v, err := validateTypedString("ItemAttribute", EnumAttributeType, typ, value)
	if err != nil {
		return nil, err
	}
	return &ItemAttribute{typ: t, value: v}, nil
}

// Type returns the attribute type.
func (a *ItemAttribute) Type() string { return a.typ }

// Value returns the attribute value.
func (a *ItemAttribute) Value() string { return a.value }

// Render implements Node.
func (a *ItemAttribute) Render() *xmlwriter.Element {
	return renderPair("ItemAttribute", a.typ, a.value)
}

// =============================================================================
// ITEM CONTRIBUTOR ID
// =============================================================================

// ItemContributorID identifies a contributor, e.g. by ORCID.
type ItemContributorID struct {
	typ   string
	value string
}

// NewItemContributorID creates an ItemContributorID. typ must be a
// contributor identifier type.
func NewItemContributorID(typ, value string) (*ItemContributorID, error) {
	t, v, err := validateTypedString("ItemContributorID", EnumContributorIdentifierType, typ, value)
	if err != nil {
		return nil, err
	}
	return &ItemContributorID{typ: t, value: v}, nil
}

// BuildItemContributorID builds an ItemContributorID from loose input.
func BuildItemContributorID(raw any) (*ItemContributorID, error) {
	typ, value, ok := typedPair(raw)
	if !ok {
		return nil, shapeError("ItemContributorID", raw)
	}
	t, v, err := validateTypedString("ItemContributorID", EnumContributorIdentifierType, typ, value)
	if err != nil {
		return nil, err
	}
	return &ItemContributorID{typ: t, value: v}, nil
}

// Type returns the contributor identifier type.
func (c *ItemContributorID) Type() string { return c.typ }

// Value returns the contributor identifier.
func (c *ItemContributorID) Value() string { return c.value }

// Render implements Node.
func (c *ItemContributorID) Render() *xmlwriter.Element {
	return renderPair("ItemContributorID", c.typ, c.value)
}

// =============================================================================
// ITEM DATE
// =============================================================================

// ItemDate is a typed date of an item, e.g. its publication date.
type ItemDate struct {
	typ   string
	value time.Time
}

// NewItemDate creates an ItemDate. value is a time.Time or a date string.
func NewItemDate(typ string, value any) (*ItemDate, error) {
	return newItemDate(typ, value)
}

// BuildItemDate builds an ItemDate from loose input.
func BuildItemDate(raw any) (*ItemDate, error) {
	typ, value, ok := typedPair(raw)
	if !ok {
		return nil, shapeError("ItemDate", raw)
	}
	return newItemDate(typ, value)
}

func newItemDate(typ, value any) (*ItemDate, error) {
	const node = "ItemDate"

	t, err := validateString(node, "Type", typ)
	if err != nil {
		return nil, err
	}
	if err := validateMember(node, "Type", EnumDateType, t); err != nil {
		return nil, err
	}
	date, err := validateDate(node, "Value", value)
	if err != nil {
		return nil, err
	}
	return &ItemDate{typ: t, value: date}, nil
}

// Type returns the date type.
func (d *ItemDate) Type() string { return d.typ }

// Value returns the date.
func (d *ItemDate) Value() time.Time { return d.value }

// Render implements Node.
func (d *ItemDate) Render() *xmlwriter.Element {
	return renderPair("ItemDate", d.typ, d.value.Format(dateFormat))
}
