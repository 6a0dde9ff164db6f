package counter

import "github.com/ginjaninja78/counter-reports/internal/xmlwriter"

// CustomerOptions holds the optional fields of a Customer.
type CustomerOptions struct {
	PartyOptions
	Consortium               *Consortium
	InstitutionalIdentifiers []*Identifier
}

// Customer is the institution whose usage is reported.
type Customer struct {
	party
	consortium  *Consortium
	identifiers []*Identifier
	items       []*ReportItems
}

// NewCustomer creates a Customer. items must hold at least one ReportItems.
func NewCustomer(id string, items []*ReportItems, opts CustomerOptions) (*Customer, error) {
	const node = "Customer"

	p, err := newParty(node, id, opts.PartyOptions)
	if err != nil {
		return nil, err
	}
	identifiers, err := validateZeroOrMoreOf[*Identifier](node, "InstitutionalIdentifier", opts.InstitutionalIdentifiers)
	if err != nil {
		return nil, err
	}
	reported, err := validateOneOrMoreOf[*ReportItems](node, "ReportItems", items)
	if err != nil {
		return nil, err
	}
	return &Customer{
		party:       p,
		consortium:  opts.Consortium,
		identifiers: identifiers,
		items:       reported,
	}, nil
}

// BuildCustomer builds a Customer from a mapping with ID and ReportItems
// keys.
func BuildCustomer(raw any) (*Customer, error) {
	const node = "Customer"

	m, ok := asMapping(raw)
	if !ok || !issetAll(m, "ID", "ReportItems") {
		return nil, shapeError(node, raw)
	}

	items, err := buildMultiple(m["ReportItems"], BuildReportItems)
	if err != nil {
		return nil, err
	}
	identifiers, err := buildMultiple(m["InstitutionalIdentifier"], BuildIdentifier)
	if err != nil {
		return nil, err
	}
	partyOpts, err := buildPartyOptions(node, m)
	if err != nil {
		return nil, err
	}
	var consortium *Consortium
	if !isEmpty(m["Consortium"]) {
		if consortium, err = buildOne(m["Consortium"], BuildConsortium); err != nil {
			return nil, err
		}
	}
	id, err := validateString(node, "ID", m["ID"])
	if err != nil {
		return nil, err
	}

	return NewCustomer(id, items, CustomerOptions{
		PartyOptions:             partyOpts,
		Consortium:               consortium,
		InstitutionalIdentifiers: identifiers,
	})
}

// ID returns the customer identifier.
func (c *Customer) ID() string { return c.id }

// Options returns a copy of the optional fields.
func (c *Customer) Options() CustomerOptions {
	return CustomerOptions{
		PartyOptions:             c.options(),
		Consortium:               c.consortium,
		InstitutionalIdentifiers: append([]*Identifier(nil), c.identifiers...),
	}
}

// Items returns the reported items.
func (c *Customer) Items() []*ReportItems {
	return append([]*ReportItems(nil), c.items...)
}

// Render implements Node. Institutional identifiers render as
// <InstitutionalIdentifier>.
func (c *Customer) Render() *xmlwriter.Element {
	root := xmlwriter.NewElement("Customer")
	c.render(root)
	if c.consortium != nil {
		root.Append(c.consortium.Render())
	}
	for _, id := range c.identifiers {
		root.Append(id.renderAs("InstitutionalIdentifier"))
	}
	renderAll(root, c.items)
	return root
}
