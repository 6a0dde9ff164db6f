package counter

import "github.com/ginjaninja78/counter-reports/internal/xmlwriter"

// Consortium identifies the consortium a Customer belongs to.
type Consortium struct {
	code          string
	wellKnownName string
}

// NewConsortium creates a Consortium. code is optional.
func NewConsortium(wellKnownName, code string) *Consortium {
	return &Consortium{wellKnownName: wellKnownName, code: code}
}

// BuildConsortium builds a Consortium from {"WellKnownName", "Code"},
// {name: code}, [name] or a bare name.
func BuildConsortium(raw any) (*Consortium, error) {
	const node = "Consortium"

	if m, ok := asMapping(raw); ok {
		if isset(m, "WellKnownName") {
			name, err := validateString(node, "WellKnownName", m["WellKnownName"])
			if err != nil {
				return nil, err
			}
			code, err := optionalString(node, m, "Code")
			if err != nil {
				return nil, err
			}
			return NewConsortium(name, code), nil
		}
		if name, value, ok := singleEntry(m); ok {
			code, err := validateString(node, "Code", value)
			if err != nil {
				return nil, err
			}
			return NewConsortium(name, code), nil
		}
		return nil, shapeError(node, raw)
	}

	if seq, ok := asSequence(raw); ok && len(seq) == 1 {
		name, err := validateString(node, "WellKnownName", seq[0])
		if err != nil {
			return nil, err
		}
		return NewConsortium(name, ""), nil
	}

	if name, ok := raw.(string); ok {
		return NewConsortium(name, ""), nil
	}

	return nil, shapeError(node, raw)
}

// WellKnownName returns the consortium name.
func (c *Consortium) WellKnownName() string { return c.wellKnownName }

// Code returns the consortium code.
func (c *Consortium) Code() string { return c.code }

// Render implements Node.
func (c *Consortium) Render() *xmlwriter.Element {
	return xmlwriter.NewElement("Consortium").
		AppendTextIf("Code", c.code).
		AppendText("WellKnownName", c.wellKnownName)
}
