package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/counter-reports/internal/config"
	"github.com/ginjaninja78/counter-reports/internal/types"
)

func TestApplyTransformation(t *testing.T) {
	fields := map[string]string{"ItemDataType": "Book", "Fallback": "OJS"}

	tests := []struct {
		name   string
		value  string
		action config.TransformationAction
		want   string
	}{
		{"prepend", "html", config.TransformationAction{Type: "prepend_string", Value: "ft_"}, "ft_html"},
		{"append", "ft", config.TransformationAction{Type: "append_string", Value: "_pdf"}, "ft_pdf"},
		{"trim", "  OJS ", config.TransformationAction{Type: "trim"}, "OJS"},
		{"uppercase", "ojs", config.TransformationAction{Type: "uppercase"}, "OJS"},
		{"lowercase", "FT_HTML", config.TransformationAction{Type: "lowercase"}, "ft_html"},
		{"normalize whitespace", " Journal  of\tTests ", config.TransformationAction{Type: "normalize_whitespace"}, "Journal of Tests"},
		{"replace", "ft-html", config.TransformationAction{Type: "replace", Find: "-", Value: "_"}, "ft_html"},
		{"replace without find", "ft-html", config.TransformationAction{Type: "replace", Value: "_"}, "ft-html"},
		{"regex replace", "ISSN 1234-5678", config.TransformationAction{Type: "regex_replace", Find: `^ISSN\s*`}, "1234-5678"},
		{"pad zeros", "42", config.TransformationAction{Type: "pad_zeros_to_length", Value: "5"}, "00042"},
		{"remove leading zeros", "00012", config.TransformationAction{Type: "remove_leading_zeros"}, "12"},
		{"remove leading zeros keeps zero", "000", config.TransformationAction{Type: "remove_leading_zeros"}, "0"},
		{"extract digits", "1,204", config.TransformationAction{Type: "extract_digits"}, "1204"},
		{"format date with layout", "01/31/2023", config.TransformationAction{Type: "format_date", Value: "01/02/2006|2006-01-02"}, "2023-01-31"},
		{"format date sniffed", "January 31, 2023", config.TransformationAction{Type: "format_date", Value: "2006-01-02"}, "2023-01-31"},
		{"format date default layout", "2023/01/31", config.TransformationAction{Type: "format_date"}, "2023-01-31"},
		{"format date unparsable", "soon", config.TransformationAction{Type: "format_date", Value: "2006-01-02"}, "soon"},
		{"lookup hit", "HTML", config.TransformationAction{Type: "lookup", LookupTable: map[string]string{"HTML": "ft_html"}}, "ft_html"},
		{"lookup miss", "EPUB", config.TransformationAction{Type: "lookup", LookupTable: map[string]string{"HTML": "ft_html"}}, "EPUB"},
		{"lookup default", "EPUB", config.TransformationAction{Type: "lookup_with_default", Value: "ft_total", LookupTable: map[string]string{}}, "ft_total"},
		{"set if field", "Journal", config.TransformationAction{Type: "set_if", Condition: "ItemDataType == 'Book'", Value: "Book"}, "Book"},
		{"set if value", "ft_html", config.TransformationAction{Type: "set_if", Condition: "value starts_with 'ft_'", Value: "ft_total"}, "ft_total"},
		{"set if false", "ft_html", config.TransformationAction{Type: "set_if", Condition: "value == 'x'", Value: "ft_total"}, "ft_html"},
		{"empty default", " ", config.TransformationAction{Type: "if_empty_use_default", Value: "Requests"}, "Requests"},
		{"empty field", "", config.TransformationAction{Type: "if_empty_use_field", Value: "Fallback"}, "OJS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyTransformation(tt.value, tt.action, fields)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyTransformation_Errors(t *testing.T) {
	errorCases := []config.TransformationAction{
		{Type: "unknown"},
		{Type: "regex_replace", Find: "("},
		{Type: "pad_zeros_to_length", Value: "many"},
		{Type: "set_if", Value: "x"},
	}
	for _, action := range errorCases {
		_, err := ApplyTransformation("value", action, nil)
		assert.Error(t, err, action.Type)
	}
}

func TestTransformer_TransformRow(t *testing.T) {
	tr := NewTransformer([]config.TransformationRule{
		{Field: "MetricType", Actions: []config.TransformationAction{
			{Type: "trim"},
			{Type: "lowercase"},
			{Type: "prepend_string", Value: "ft_"},
		}},
		{Field: "Category", Actions: []config.TransformationAction{
			{Type: "set_if", Condition: "MetricType == 'ft_html'", Value: "Requests"},
		}},
		{Field: "ItemName", Actions: []config.TransformationAction{
			{Type: "regex_replace", Find: `\s+\(.*\)$`},
		}},
	})

	row := types.Row{Number: 9, Fields: map[string]string{
		"MetricType": " HTML ",
		"Category":   "",
		"ItemName":   "Journal of Tests (online)",
	}}
	require.NoError(t, tr.TransformRow(&row))
	assert.Equal(t, "ft_html", row.Get("MetricType"))
	assert.Equal(t, "Requests", row.Get("Category"))
	assert.Equal(t, "Journal of Tests", row.Get("ItemName"))

	// The compiled pattern is reused.
	other := types.Row{Number: 10, Fields: map[string]string{"ItemName": "Second Journal (print)"}}
	require.NoError(t, tr.TransformRow(&other))
	assert.Equal(t, "Second Journal", other.Get("ItemName"))
	assert.Len(t, tr.regexps, 1)

	got, err := tr.Transform("MetricType", "PDF", nil)
	require.NoError(t, err)
	assert.Equal(t, "ft_pdf", got)

	got, err = tr.Transform("Count", "3", nil)
	require.NoError(t, err)
	assert.Equal(t, "3", got)
}

func TestTransformer_RowError(t *testing.T) {
	tr := NewTransformer([]config.TransformationRule{
		{Field: "Count", Actions: []config.TransformationAction{{Type: "regex_replace", Find: "("}}},
	})
	row := types.Row{Number: 4, Fields: map[string]string{"Count": "3"}}
	err := tr.TransformRow(&row)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 4")
	assert.Contains(t, err.Error(), "invalid regex pattern")
}

func TestPadLeft(t *testing.T) {
	assert.Equal(t, "007", PadLeft("7", 3, '0'))
	assert.Equal(t, "1234", PadLeft("1234", 3, '0'))
}
