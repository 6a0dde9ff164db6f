package counter

import (
	"time"

	"github.com/ginjaninja78/counter-reports/internal/xmlwriter"
)

// createdFormat is the layout of the default Created attribute.
const createdFormat = "2006-01-02T15:04:05-07:00"

// now is replaced in tests.
var now = time.Now

// ReportAttributes are the scalar attributes of a Report. An empty Created
// defaults to the current time.
type ReportAttributes struct {
	ID      string
	Version string
	Name    string
	Title   string
	Created string
}

// Report is one COUNTER report issued by a Vendor for one or more
// Customers.
type Report struct {
	attrs     ReportAttributes
	vendor    *Vendor
	customers []*Customer
}

// NewReport creates a Report. customers must hold at least one Customer.
func NewReport(attrs ReportAttributes, vendor *Vendor, customers []*Customer) (*Report, error) {
	const node = "Report"

	if attrs.Created == "" {
		attrs.Created = now().Format(createdFormat)
	}
	v, err := validateOneOf[*Vendor](node, "Vendor", vendor)
	if err != nil {
		return nil, err
	}
	c, err := validateOneOrMoreOf[*Customer](node, "Customer", customers)
	if err != nil {
		return nil, err
	}
	return &Report{attrs: attrs, vendor: v, customers: c}, nil
}

// BuildReport builds a Report from a mapping with ID, Version, Name, Title,
// Customer and Vendor keys and an optional Created key.
func BuildReport(raw any) (*Report, error) {
	const node = "Report"

	m, ok := asMapping(raw)
	if !ok || !issetAll(m, "ID", "Version", "Name", "Title", "Customer", "Vendor") {
		return nil, shapeError(node, raw)
	}

	customers, err := buildMultiple(m["Customer"], BuildCustomer)
	if err != nil {
		return nil, err
	}
	vendor, err := buildOne(m["Vendor"], BuildVendor)
	if err != nil {
		return nil, err
	}

	var attrs ReportAttributes
	for _, field := range []struct {
		key    string
		target *string
	}{
		{"ID", &attrs.ID},
		{"Version", &attrs.Version},
		{"Name", &attrs.Name},
		{"Title", &attrs.Title},
	} {
		if *field.target, err = validateString(node, field.key, m[field.key]); err != nil {
			return nil, err
		}
	}
	if attrs.Created, err = optionalString(node, m, "Created"); err != nil {
		return nil, err
	}

	return NewReport(attrs, vendor, customers)
}

// Attributes returns the report attributes, Created included.
func (r *Report) Attributes() ReportAttributes { return r.attrs }

// Vendor returns the issuing vendor.
func (r *Report) Vendor() *Vendor { return r.vendor }

// Customers returns the reported customers.
func (r *Report) Customers() []*Customer {
	return append([]*Customer(nil), r.customers...)
}

// Render implements Node.
func (r *Report) Render() *xmlwriter.Element {
	root := xmlwriter.NewElement("Report").
		SetAttr("Created", r.attrs.Created).
		SetAttr("ID", r.attrs.ID).
		SetAttr("Version", r.attrs.Version).
		SetAttr("Name", r.attrs.Name).
		SetAttr("Title", r.attrs.Title)
	root.Append(r.vendor.Render())
	renderAll(root, r.customers)
	return root
}
