package counter

import "github.com/ginjaninja78/counter-reports/internal/xmlwriter"

// ItemDetails holds the optional descriptive children shared by
// ParentItem and ReportItems.
type ItemDetails struct {
	Publisher    string
	Identifiers  []*Identifier
	Contributors []*ItemContributor
	Dates        []*ItemDate
	Attributes   []*ItemAttribute
}

// validate checks every child slot and returns an owned copy.
func (d ItemDetails) validate(node string) (ItemDetails, error) {
	var (
		out ItemDetails
		err error
	)
	out.Publisher = d.Publisher
	if out.Identifiers, err = validateZeroOrMoreOf[*Identifier](node, "ItemIdentifier", d.Identifiers); err != nil {
		return ItemDetails{}, err
	}
	if out.Contributors, err = validateZeroOrMoreOf[*ItemContributor](node, "ItemContributor", d.Contributors); err != nil {
		return ItemDetails{}, err
	}
	if out.Dates, err = validateZeroOrMoreOf[*ItemDate](node, "ItemDate", d.Dates); err != nil {
		return ItemDetails{}, err
	}
	if out.Attributes, err = validateZeroOrMoreOf[*ItemAttribute](node, "ItemAttribute", d.Attributes); err != nil {
		return ItemDetails{}, err
	}
	return out, nil
}

// buildItemDetails reads the descriptive children of an item mapping.
func buildItemDetails(node string, m map[string]any) (ItemDetails, error) {
	var (
		d   ItemDetails
		err error
	)
	if d.Identifiers, err = buildMultiple(m["ItemIdentifier"], BuildIdentifier); err != nil {
		return ItemDetails{}, err
	}
	if d.Contributors, err = buildMultiple(m["ItemContributor"], BuildItemContributor); err != nil {
		return ItemDetails{}, err
	}
	if d.Dates, err = buildMultiple(m["ItemDate"], BuildItemDate); err != nil {
		return ItemDetails{}, err
	}
	if d.Attributes, err = buildMultiple(m["ItemAttribute"], BuildItemAttribute); err != nil {
		return ItemDetails{}, err
	}
	if d.Publisher, err = optionalString(node, m, "ItemPublisher"); err != nil {
		return ItemDetails{}, err
	}
	return d, nil
}

// renderDescriptors appends the repeated descriptive children in schema order.
func (d ItemDetails) renderDescriptors(root *xmlwriter.Element) {
	renderAll(root, d.Identifiers)
	renderAll(root, d.Contributors)
	renderAll(root, d.Dates)
	renderAll(root, d.Attributes)
}

// ParentItem describes the container of a reported item, e.g. the journal
// of an article.
type ParentItem struct {
	name     string
	dataType string
	details  ItemDetails
}

// NewParentItem creates a ParentItem. dataType must be an item data type.
func NewParentItem(name, dataType string, details ItemDetails) (*ParentItem, error) {
	const node = "ParentItem"

	if err := validateMember(node, "ItemDataType", EnumItemDataType, dataType); err != nil {
		return nil, err
	}
	d, err := details.validate(node)
	if err != nil {
		return nil, err
	}
	return &ParentItem{name: name, dataType: dataType, details: d}, nil
}

// BuildParentItem builds a ParentItem from a mapping with ItemName and
// ItemDataType keys.
func BuildParentItem(raw any) (*ParentItem, error) {
	const node = "ParentItem"

	m, ok := asMapping(raw)
	if !ok || !issetAll(m, "ItemName", "ItemDataType") {
		return nil, shapeError(node, raw)
	}

	details, err := buildItemDetails(node, m)
	if err != nil {
		return nil, err
	}
	name, err := validateString(node, "ItemName", m["ItemName"])
	if err != nil {
		return nil, err
	}
	dataType, err := validateString(node, "ItemDataType", m["ItemDataType"])
	if err != nil {
		return nil, err
	}
	return NewParentItem(name, dataType, details)
}

// Name returns the item name.
func (p *ParentItem) Name() string { return p.name }

// DataType returns the item data type.
func (p *ParentItem) DataType() string { return p.dataType }

// Details returns a copy of the descriptive children.
func (p *ParentItem) Details() ItemDetails { return p.details.clone() }

// Render implements Node.
func (p *ParentItem) Render() *xmlwriter.Element {
	root := xmlwriter.NewElement("ParentItem")
	p.details.renderDescriptors(root)
	root.AppendTextIf("ItemPublisher", p.details.Publisher)
	root.AppendText("ItemName", p.name)
	root.AppendText("ItemDataType", p.dataType)
	return root
}

func (d ItemDetails) clone() ItemDetails {
	return ItemDetails{
		Publisher:    d.Publisher,
		Identifiers:  append([]*Identifier(nil), d.Identifiers...),
		Contributors: append([]*ItemContributor(nil), d.Contributors...),
		Dates:        append([]*ItemDate(nil), d.Dates...),
		Attributes:   append([]*ItemAttribute(nil), d.Attributes...),
	}
}
