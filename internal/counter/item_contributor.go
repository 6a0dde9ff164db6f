package counter

import "github.com/ginjaninja78/counter-reports/internal/xmlwriter"

// ItemContributor is an author or other contributor of an item.
type ItemContributor struct {
	ids          []*ItemContributorID
	name         string
	affiliations []string
	roles        []string
}

// NewItemContributor creates an ItemContributor. Every argument is optional.
func NewItemContributor(ids []*ItemContributorID, name string, affiliations, roles []string) (*ItemContributor, error) {
	checked, err := validateZeroOrMoreOf[*ItemContributorID]("ItemContributor", "ItemContributorID", ids)
	if err != nil {
		return nil, err
	}
	return &ItemContributor{
		ids:          checked,
		name:         name,
		affiliations: append([]string(nil), affiliations...),
		roles:        append([]string(nil), roles...),
	}, nil
}

// BuildItemContributor builds an ItemContributor from a mapping holding at
// least one of ItemContributorID, ItemContributorName,
// ItemContributorAffiliation or ItemContributorRole. Affiliation and role
// accept a single string or a sequence of strings.
func BuildItemContributor(raw any) (*ItemContributor, error) {
	const node = "ItemContributor"

	m, ok := asMapping(raw)
	if !ok || !issetAny(m, "ItemContributorID", "ItemContributorName", "ItemContributorAffiliation", "ItemContributorRole") {
		return nil, shapeError(node, raw)
	}

	ids, err := buildMultiple(m["ItemContributorID"], BuildItemContributorID)
	if err != nil {
		return nil, err
	}
	name, err := optionalString(node, m, "ItemContributorName")
	if err != nil {
		return nil, err
	}
	affiliations, err := validateStrings(node, "ItemContributorAffiliation", m["ItemContributorAffiliation"])
	if err != nil {
		return nil, err
	}
	roles, err := validateStrings(node, "ItemContributorRole", m["ItemContributorRole"])
	if err != nil {
		return nil, err
	}

	return NewItemContributor(ids, name, affiliations, roles)
}

// IDs returns the contributor identifiers.
func (c *ItemContributor) IDs() []*ItemContributorID {
	return append([]*ItemContributorID(nil), c.ids...)
}

// Name returns the contributor name.
func (c *ItemContributor) Name() string { return c.name }

// Affiliations returns the contributor affiliations.
func (c *ItemContributor) Affiliations() []string { return append([]string(nil), c.affiliations...) }

// Roles returns the contributor roles.
func (c *ItemContributor) Roles() []string { return append([]string(nil), c.roles...) }

// Render implements Node.
func (c *ItemContributor) Render() *xmlwriter.Element {
	root := xmlwriter.NewElement("ItemContributor")
	renderAll(root, c.ids)
	root.AppendTextIf("ItemContributorName", c.name)
	for _, affiliation := range c.affiliations {
		root.AppendText("ItemContributorAffiliation", affiliation)
	}
	for _, role := range c.roles {
		root.AppendText("ItemContributorRole", role)
	}
	return root
}
