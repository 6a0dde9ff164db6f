package counter

import "github.com/samber/lo"

// Enumeration names the closed lists of legal values for typed fields.
type Enumeration string

const (
	EnumItemDataType              Enumeration = "item data type"
	EnumIdentifierType            Enumeration = "identifier type"
	EnumContributorIdentifierType Enumeration = "contributor identifier type"
	EnumDateType                  Enumeration = "date type"
	EnumAttributeType             Enumeration = "attribute type"
	EnumMetricType                Enumeration = "metric type"
	EnumCategory                  Enumeration = "category"
)

// COUNTER release 4.1 vocabularies. "Article" is the proposed 4.2 item data type.
var registry = map[Enumeration][]string{
	EnumItemDataType:              {"Journal", "Database", "Platform", "Book", "Collection", "Multimedia", "Article"},
	EnumIdentifierType:            {"Online_ISSN", "Print_ISSN", "Online_ISBN", "Print_ISBN", "DOI", "Proprietary"},
	EnumContributorIdentifierType: {"ORCID", "ISNI", "Proprietary"},
	EnumDateType:                  {"PubDate", "FirstAccessedOnline", "Proprietary"},
	EnumAttributeType:             {"ArticleVersion", "ArticleType", "QualificationName", "QualificationLevel"},
	EnumMetricType: {
		"abstract", "audio", "data_set", "ft_epub", "ft_html", "ft_html_mobile", "ft_pdf",
		"ft_pdf_mobile", "ft_ps", "ft_ps_mobile", "ft_total", "image", "multimedia",
		"no_license", "other", "podcast", "record_view", "reference", "result_click",
		"search_fed", "search_reg", "sectioned_html", "toc", "turnaway", "video",
	},
	EnumCategory: {"Requests", "Searches", "Access_denied"},
}

// IsMember reports whether value belongs to the named enumeration.
// Unknown enumerations have no members.
func IsMember(enum Enumeration, value string) bool {
	return lo.Contains(registry[enum], value)
}

// Values returns a copy of the enumeration's legal values.
func Values(enum Enumeration) []string {
	return append([]string(nil), registry[enum]...)
}

// Enumerations lists every registered enumeration.
func Enumerations() []Enumeration {
	return []Enumeration{
		EnumItemDataType,
		EnumIdentifierType,
		EnumContributorIdentifierType,
		EnumDateType,
		EnumAttributeType,
		EnumMetricType,
		EnumCategory,
	}
}

func validateMember(node, field string, enum Enumeration, value string) error {
	if !IsMember(enum, value) {
		return enumerationError(node, field, string(enum), value)
	}
	return nil
}
