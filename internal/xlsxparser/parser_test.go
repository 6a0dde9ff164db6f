package xlsxparser

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/counter-reports/internal/config"
)

// newWorkbook writes rows onto sheet, creating it when it is not the default.
func newWorkbook(t *testing.T, sheet string, rows [][]any) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	t.Cleanup(func() { f.Close() })

	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	return f
}

func usageRows() [][]any {
	return [][]any{
		{"Journal", "Platform", "Begin", "End", "Category", "MetricType", "Count"},
		{"Journal of Tests", "OJS", "2023-01-01", "2023-01-31", "Requests", "ft_html", 3},
		{},
		{"Journal of Tests", "OJS", "2023-01-01", "2023-01-31", "Requests", "ft_pdf", 5},
	}
}

func TestParse_FirstSheet(t *testing.T) {
	f := newWorkbook(t, "Sheet1", usageRows())
	path := filepath.Join(t.TempDir(), "usage.xlsx")
	require.NoError(t, f.SaveAs(path))

	table, err := Parse(path, config.XLSXSettings{HeaderRow: 1, DataStartRow: 2})
	require.NoError(t, err)

	assert.Equal(t, path, table.SourceFile)
	assert.Equal(t, []string{"Journal", "Platform", "Begin", "End", "Category", "MetricType", "Count"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, 2, table.Rows[0].Number)
	assert.Equal(t, "3", table.Rows[0].Get("Count"))
	assert.Equal(t, 4, table.Rows[1].Number)
	assert.Equal(t, "ft_pdf", table.Rows[1].Get("MetricType"))
}

func TestParseReader_NamedSheet(t *testing.T) {
	rows := append([][]any{{"Exported from OJS"}}, usageRows()...)
	f := newWorkbook(t, "Usage", rows)

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	table, err := ParseReader(&buf, "usage.xlsx", config.XLSXSettings{SheetName: "Usage", HeaderRow: 2})
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, 3, table.Rows[0].Number)
	assert.Equal(t, "Journal of Tests", table.Rows[0].Get("Journal"))
}

func TestParse_EmptyHeaderCells(t *testing.T) {
	f := newWorkbook(t, "Sheet1", [][]any{
		{"Journal", nil, "Count"},
		{"Journal of Tests", "x", 1},
	})
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	table, err := ParseReader(&buf, "usage.xlsx", config.XLSXSettings{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Journal", "Column_B", "Count"}, table.Headers)
	assert.Equal(t, "x", table.Rows[0].Get("Column_B"))
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "missing.xlsx"), config.XLSXSettings{})
	assert.ErrorContains(t, err, "failed to open workbook")

	f := newWorkbook(t, "Sheet1", usageRows())
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	data := buf.Bytes()

	_, err = ParseReader(bytes.NewReader(data), "usage.xlsx", config.XLSXSettings{SheetName: "Missing"})
	assert.ErrorContains(t, err, `no sheet "Missing"`)

	_, err = ParseReader(bytes.NewReader(data), "usage.xlsx", config.XLSXSettings{HeaderRow: 10})
	assert.ErrorContains(t, err, "no header row")
}
