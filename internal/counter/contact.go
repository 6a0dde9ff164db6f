package counter

import (
	"net/mail"

	"github.com/ginjaninja78/counter-reports/internal/xmlwriter"
)

// Contact is a named person and/or email address attached to a Vendor or
// Customer. Both fields are optional.
type Contact struct {
	contact string
	email   string
}

// NewContact creates a Contact.
func NewContact(contact, email string) *Contact {
	return &Contact{contact: contact, email: email}
}

// BuildContact builds a Contact from loose input.
//
// ACCEPTED SHAPES (first match wins):
//   - {"Contact": name, "E-mail": email}  ("Email" is accepted for "E-mail")
//   - {key: value}     key is the email if it looks like one, otherwise the name
//   - [nameOrEmail]
//   - "nameOrEmail"
//
// The single-entry heuristic only sniffs the key. {"Jane": "Doe"} becomes
// contact "Jane" with email "Doe".
func BuildContact(raw any) (*Contact, error) {
	const node = "Contact"

	if m, ok := asMapping(raw); ok {
		if isset(m, "E-mail") {
			normalized := make(map[string]any, len(m))
			for k, v := range m {
				normalized[k] = v
			}
			normalized["Email"] = m["E-mail"]
			delete(normalized, "E-mail")
			m = normalized
		}
		if issetAny(m, "Contact", "Email") {
			contact, err := optionalString(node, m, "Contact")
			if err != nil {
				return nil, err
			}
			email, err := optionalString(node, m, "Email")
			if err != nil {
				return nil, err
			}
			return NewContact(contact, email), nil
		}
		if key, value, ok := singleEntry(m); ok {
			other, err := validateString(node, key, value)
			if err != nil {
				return nil, err
			}
			if isEmail(key) {
				return NewContact(other, key), nil
			}
			return NewContact(key, other), nil
		}
		return nil, shapeError(node, raw)
	}

	if seq, ok := asSequence(raw); ok && len(seq) == 1 {
		s, err := validateString(node, "Contact", seq[0])
		if err != nil {
			return nil, err
		}
		return contactFromString(s), nil
	}

	if s, ok := raw.(string); ok {
		return contactFromString(s), nil
	}

	return nil, shapeError(node, raw)
}

func contactFromString(s string) *Contact {
	if isEmail(s) {
		return NewContact("", s)
	}
	return NewContact(s, "")
}

// isEmail reports whether s is a bare email address.
func isEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Name == "" && addr.Address == s
}

// Contact returns the contact name.
func (c *Contact) Contact() string { return c.contact }

// Email returns the email address.
func (c *Contact) Email() string { return c.email }

// Render implements Node.
func (c *Contact) Render() *xmlwriter.Element {
	return xmlwriter.NewElement("Contact").
		AppendTextIf("Contact", c.contact).
		AppendTextIf("E-mail", c.email)
}
