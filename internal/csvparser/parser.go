// =============================================================================
// COUNTER Report Generator - CSV Parser Module
// =============================================================================
//
// This module is responsible for parsing CSV usage exports. It handles:
//   - Different delimiters (comma, semicolon, tab, pipe)
//   - Multi-line headers
//   - Custom data start rows
//   - A UTF-8 byte order mark on the first header
//   - Comment lines
//
// Each data row keeps the line number it was read from so validation errors
// can point back into the file.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ginjaninja78/counter-reports/internal/config"
	"github.com/ginjaninja78/counter-reports/internal/types"
)

// ErrEmpty is returned when the file holds no records at all.
var ErrEmpty = errors.New("CSV file is empty")

const byteOrderMark = "\ufeff"

// record is one CSV record with the line it started on.
type record struct {
	line   int
	fields []string
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV file and returns the parsed table.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: The CSV parsing settings from the report profile.
//
// RETURNS:
//   - The parsed table, rows keyed by header.
//   - An error if the file cannot be read or parsed.
func Parse(filePath string, settings config.CSVSettings) (*types.Table, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ParseReader(bufio.NewReader(file), filePath, settings)
}

// ParseReader parses CSV data from r. source is recorded on the table.
//
// PARSING PROCESS:
//   1. Configure the CSV reader with the delimiter and comment settings
//   2. Read every record with its starting line
//   3. Read and merge header rows (for multi-line headers)
//   4. Read data rows starting from the configured data start row
//   5. Convert each row to a map of header -> value
func ParseReader(r io.Reader, source string, settings config.CSVSettings) (*types.Table, error) {
	csvReader := csv.NewReader(r)
	configureReader(csvReader, settings)

	var records []record
	for {
		fields, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		line, _ := csvReader.FieldPos(0)
		records = append(records, record{line: line, fields: fields})
	}

	if len(records) == 0 {
		return nil, ErrEmpty
	}
	records[0].fields[0] = strings.TrimPrefix(records[0].fields[0], byteOrderMark)

	headers, err := extractHeaders(records, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to extract headers: %w", err)
	}

	return &types.Table{
		SourceFile: source,
		Headers:    headers,
		Rows:       extractDataRows(records, headers, settings),
	}, nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	// Handle special cases for common delimiters.
	switch settings.Delimiter {
	case "\\t", "\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(settings.Delimiter) > 0 {
			reader.Comma = []rune(settings.Delimiter)[0]
		} else {
			reader.Comma = ','
		}
	}

	if settings.Comment != "" {
		reader.Comment = []rune(settings.Comment)[0]
	}

	// Allow variable number of fields per row.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}

// extractHeaders extracts and merges headers from the CSV.
//
// MULTI-LINE HEADER HANDLING:
//   Non-empty cells of each column are joined with a space.
//
//   Example:
//   Row 1: "Item", "", "Reporting Period", ""
//   Row 2: "Name", "Platform", "Begin", "End"
//   Result: "Item Name", "Platform", "Reporting Period Begin", "End"
func extractHeaders(records []record, settings config.CSVSettings) ([]string, error) {
	headerRows := settings.HeaderRows
	if headerRows <= 0 {
		return nil, fmt.Errorf("header_rows must be at least 1")
	}

	if len(records) < headerRows {
		return nil, fmt.Errorf("file has fewer rows than header_rows setting")
	}

	if headerRows == 1 {
		return cleanHeaders(records[0].fields), nil
	}

	maxCols := 0
	for i := 0; i < headerRows; i++ {
		if len(records[i].fields) > maxCols {
			maxCols = len(records[i].fields)
		}
	}

	headers := make([]string, maxCols)
	for col := 0; col < maxCols; col++ {
		var parts []string

		for row := 0; row < headerRows; row++ {
			if col < len(records[row].fields) {
				value := strings.TrimSpace(records[row].fields[col])
				if value != "" {
					parts = append(parts, value)
				}
			}
		}

		headers[col] = strings.Join(parts, " ")
	}

	return cleanHeaders(headers), nil
}

// cleanHeaders trims headers and names empty ones by column index.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))

	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}

	return cleaned
}

// extractDataRows converts the records at or after the data start row into
// rows keyed by header. DataStartRow is a 1-indexed file line, matching
// Row.Number, so blank and comment lines before the data do not shift it.
// Blank rows are skipped.
func extractDataRows(records []record, headers []string, settings config.CSVSettings) []types.Row {
	if settings.HeaderRows >= len(records) {
		return []types.Row{}
	}

	rows := make([]types.Row, 0, len(records)-settings.HeaderRows)
	for _, rec := range records[settings.HeaderRows:] {
		if rec.line < settings.DataStartRow || isRowEmpty(rec.fields) {
			continue
		}

		fields := make(map[string]string, len(headers))
		for colIndex, header := range headers {
			if colIndex < len(rec.fields) {
				fields[header] = strings.TrimSpace(rec.fields[colIndex])
			} else {
				fields[header] = ""
			}
		}

		rows = append(rows, types.Row{Number: rec.line, Fields: fields})
	}

	return rows
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
