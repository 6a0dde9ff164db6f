package counter

import "github.com/ginjaninja78/counter-reports/internal/xmlwriter"

// ReportItems is one reported item (journal, book, database...) together
// with its usage.
type ReportItems struct {
	parent      *ParentItem
	platform    string
	name        string
	dataType    string
	details     ItemDetails
	performance []*Metric
}

// NewReportItems creates a ReportItems. dataType must be an item data type,
// performance must hold at least one Metric and parent may be nil.
func NewReportItems(platform, name, dataType string, performance []*Metric, details ItemDetails, parent *ParentItem) (*ReportItems, error) {
	const node = "ReportItems"

	if err := validateMember(node, "ItemDataType", EnumItemDataType, dataType); err != nil {
		return nil, err
	}
	metrics, err := validateOneOrMoreOf[*Metric](node, "ItemPerformance", performance)
	if err != nil {
		return nil, err
	}
	d, err := details.validate(node)
	if err != nil {
		return nil, err
	}
	return &ReportItems{
		parent:      parent,
		platform:    platform,
		name:        name,
		dataType:    dataType,
		details:     d,
		performance: metrics,
	}, nil
}

// BuildReportItems builds a ReportItems from a mapping with ItemName,
// ItemPlatform, ItemDataType and ItemPerformance keys.
func BuildReportItems(raw any) (*ReportItems, error) {
	const node = "ReportItems"

	m, ok := asMapping(raw)
	if !ok || !issetAll(m, "ItemName", "ItemPlatform", "ItemDataType", "ItemPerformance") {
		return nil, shapeError(node, raw)
	}

	var parent *ParentItem
	if !isEmpty(m["ParentItem"]) {
		p, err := buildOne(m["ParentItem"], BuildParentItem)
		if err != nil {
			return nil, err
		}
		parent = p
	}
	details, err := buildItemDetails(node, m)
	if err != nil {
		return nil, err
	}
	performance, err := buildMultiple(m["ItemPerformance"], BuildMetric)
	if err != nil {
		return nil, err
	}

	var scalars [3]string
	for i, key := range []string{"ItemPlatform", "ItemName", "ItemDataType"} {
		if scalars[i], err = validateString(node, key, m[key]); err != nil {
			return nil, err
		}
	}
	return NewReportItems(scalars[0], scalars[1], scalars[2], performance, details, parent)
}

// Platform returns the platform the item is hosted on.
func (r *ReportItems) Platform() string { return r.platform }

// Name returns the item name.
func (r *ReportItems) Name() string { return r.name }

// DataType returns the item data type.
func (r *ReportItems) DataType() string { return r.dataType }

// Parent returns the parent item, or nil.
func (r *ReportItems) Parent() *ParentItem { return r.parent }

// Details returns a copy of the descriptive children.
func (r *ReportItems) Details() ItemDetails { return r.details.clone() }

// Performance returns the item's metrics.
func (r *ReportItems) Performance() []*Metric {
	return append([]*Metric(nil), r.performance...)
}

// Render implements Node.
func (r *ReportItems) Render() *xmlwriter.Element {
	root := xmlwriter.NewElement("ReportItems")
	if r.parent != nil {
		root.Append(r.parent.Render())
	}
	r.details.renderDescriptors(root)
	root.AppendText("ItemPlatform", r.platform)
	root.AppendTextIf("ItemPublisher", r.details.Publisher)
	root.AppendText("ItemName", r.name)
	root.AppendText("ItemDataType", r.dataType)
	renderAll(root, r.performance)
	return root
}
