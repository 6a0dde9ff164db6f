package counter

import "github.com/ginjaninja78/counter-reports/internal/xmlwriter"

// PartyOptions holds the optional fields shared by Vendor and Customer.
type PartyOptions struct {
	Name       string
	Contacts   []*Contact
	WebSiteURL string
	LogoURL    string
}

// party is the identity block rendered first by Vendor and Customer.
type party struct {
	id   string
	opts PartyOptions
}

func newParty(node, id string, opts PartyOptions) (party, error) {
	contacts, err := validateZeroOrMoreOf[*Contact](node, "Contact", opts.Contacts)
	if err != nil {
		return party{}, err
	}
	opts.Contacts = contacts
	return party{id: id, opts: opts}, nil
}

// buildPartyOptions reads Name, Contact, WebSiteUrl and LogoUrl from m.
func buildPartyOptions(node string, m map[string]any) (PartyOptions, error) {
	var (
		opts PartyOptions
		err  error
	)
	if opts.Contacts, err = buildMultiple(m["Contact"], BuildContact); err != nil {
		return PartyOptions{}, err
	}
	if opts.Name, err = optionalString(node, m, "Name"); err != nil {
		return PartyOptions{}, err
	}
	if opts.WebSiteURL, err = optionalString(node, m, "WebSiteUrl"); err != nil {
		return PartyOptions{}, err
	}
	if opts.LogoURL, err = optionalString(node, m, "LogoUrl"); err != nil {
		return PartyOptions{}, err
	}
	return opts, nil
}

func (p party) render(root *xmlwriter.Element) {
	root.AppendTextIf("Name", p.opts.Name)
	root.AppendText("ID", p.id)
	renderAll(root, p.opts.Contacts)
	root.AppendTextIf("WebSiteUrl", p.opts.WebSiteURL)
	root.AppendTextIf("LogoUrl", p.opts.LogoURL)
}

func (p party) options() PartyOptions {
	opts := p.opts
	opts.Contacts = append([]*Contact(nil), p.opts.Contacts...)
	return opts
}

// Vendor is the content provider issuing a report.
type Vendor struct {
	party
}

// NewVendor creates a Vendor.
func NewVendor(id string, opts PartyOptions) (*Vendor, error) {
	p, err := newParty("Vendor", id, opts)
	if err != nil {
		return nil, err
	}
	return &Vendor{party: p}, nil
}

// BuildVendor builds a Vendor from a mapping with an ID key.
func BuildVendor(raw any) (*Vendor, error) {
	const node = "Vendor"

	m, ok := asMapping(raw)
	if !ok || !isset(m, "ID") {
		return nil, shapeError(node, raw)
	}
	opts, err := buildPartyOptions(node, m)
	if err != nil {
		return nil, err
	}
	id, err := validateString(node, "ID", m["ID"])
	if err != nil {
		return nil, err
	}
	return NewVendor(id, opts)
}

// ID returns the vendor identifier.
func (v *Vendor) ID() string { return v.id }

// Options returns a copy of the optional fields.
func (v *Vendor) Options() PartyOptions { return v.options() }

// Render implements Node.
func (v *Vendor) Render() *xmlwriter.Element {
	root := xmlwriter.NewElement("Vendor")
	v.render(root)
	return root
}
