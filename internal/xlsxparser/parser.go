// =============================================================================
// COUNTER Report Generator - XLSX Parser Module
// =============================================================================
//
// This module reads usage exports delivered as Excel workbooks. The usage rows
// live on one worksheet: a header row followed by data rows, the same layout
// as the CSV exports.
//
// WORKBOOK STRUCTURE:
//   Row 1 (HeaderRow):    Column headers (Journal, Platform, Begin, ...)
//   Row 2+ (DataStartRow): One usage row per (item, period, category, metric)
//
// Cell values are read as displayed. Date columns should be text or use an
// ISO (yyyy-mm-dd) number format.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/counter-reports/internal/config"
	"github.com/ginjaninja78/counter-reports/internal/types"
)

// =============================================================================
// PARSING FUNCTIONS
// =============================================================================

// Parse reads an XLSX workbook and returns the usage table.
//
// PARAMETERS:
//   - filePath: The path to the XLSX file.
//   - settings: The XLSX settings from the report profile.
//
// RETURNS:
//   - The parsed table, rows keyed by header.
//   - An error if the file cannot be read, the sheet is missing, or the
//     header row is empty.
func Parse(filePath string, settings config.XLSXSettings) (*types.Table, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return parseWorkbook(f, filePath, settings)
}

// ParseReader reads a workbook from r. source is recorded on the table.
func ParseReader(r io.Reader, source string, settings config.XLSXSettings) (*types.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return parseWorkbook(f, source, settings)
}

// parseWorkbook extracts the table from the configured sheet.
func parseWorkbook(f *excelize.File, source string, settings config.XLSXSettings) (*types.Table, error) {
	sheetName := settings.SheetName
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
		if sheetName == "" {
			return nil, fmt.Errorf("workbook has no sheets")
		}
	} else if index, err := f.GetSheetIndex(sheetName); err != nil || index < 0 {
		return nil, fmt.Errorf("workbook has no sheet %q", sheetName)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	headerRow := settings.HeaderRow
	if headerRow <= 0 {
		headerRow = 1
	}
	if len(rows) < headerRow || isRowEmpty(rows[headerRow-1]) {
		return nil, fmt.Errorf("sheet %q has no header row at row %d", sheetName, headerRow)
	}
	headers := cleanHeaders(rows[headerRow-1])

	dataStart := settings.DataStartRow
	if dataStart <= headerRow {
		dataStart = headerRow + 1
	}

	table := &types.Table{
		SourceFile: source,
		Headers:    headers,
		Rows:       []types.Row{},
	}

	for i := dataStart - 1; i < len(rows); i++ {
		row := rows[i]

		// Skip empty rows.
		if len(row) == 0 || isRowEmpty(row) {
			continue
		}

		fields := make(map[string]string, len(headers))
		for col, header := range headers {
			value := ""
			if col < len(row) {
				value = strings.TrimSpace(row[col])
			}
			fields[header] = value
		}

		table.Rows = append(table.Rows, types.Row{Number: i + 1, Fields: fields})
	}

	return table, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// cleanHeaders trims headers and names empty ones by column letter.
func cleanHeaders(row []string) []string {
	headers := make([]string, len(row))
	for i, cell := range row {
		header := strings.TrimSpace(cell)
		if header == "" {
			name, err := excelize.ColumnNumberToName(i + 1)
			if err != nil {
				name = fmt.Sprint(i + 1)
			}
			header = "Column_" + name
		}
		headers[i] = header
	}
	return headers
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
