// =============================================================================
// COUNTER Report Generator - Shared Types
// =============================================================================
//
// This package contains the tabular types shared by the parsers, the
// validator and the converter, kept here to avoid import cycles.
//
// =============================================================================

package types

// =============================================================================
// LOGICAL COLUMNS
// =============================================================================

// Logical column names. Profiles map source headers onto these.
const (
	ColumnItemName      = "ItemName"
	ColumnItemPlatform  = "ItemPlatform"
	ColumnItemPublisher = "ItemPublisher"
	ColumnItemDataType  = "ItemDataType"
	ColumnOnlineISSN    = "Online_ISSN"
	ColumnPrintISSN     = "Print_ISSN"
	ColumnOnlineISBN    = "Online_ISBN"
	ColumnPrintISBN     = "Print_ISBN"
	ColumnDOI           = "DOI"
	ColumnProprietary   = "Proprietary"
	ColumnBegin         = "Begin"
	ColumnEnd           = "End"
	ColumnCategory      = "Category"
	ColumnMetricType    = "MetricType"
	ColumnCount         = "Count"
	ColumnPubYr         = "PubYr"
)

// IdentifierColumns are the logical columns that become item identifiers,
// in render order.
var IdentifierColumns = []string{
	ColumnOnlineISSN,
	ColumnPrintISSN,
	ColumnOnlineISBN,
	ColumnPrintISBN,
	ColumnDOI,
	ColumnProprietary,
}

// RequiredColumns must carry a value on every usage row.
var RequiredColumns = []string{
	ColumnItemName,
	ColumnItemPlatform,
	ColumnItemDataType,
	ColumnBegin,
	ColumnEnd,
	ColumnCategory,
	ColumnMetricType,
	ColumnCount,
}

// =============================================================================
// TABLE TYPES
// =============================================================================

// Table is a parsed usage export.
type Table struct {
	// SourceFile is the path the table was read from.
	SourceFile string

	// Headers are the cleaned column headers, in file order.
	Headers []string

	// Rows are the data rows, in file order.
	Rows []Row
}

// Row is a single data row.
type Row struct {
	// Number is the 1-based row number in the source file.
	// Useful for error reporting.
	Number int

	// Fields maps a column name to its (possibly transformed) value.
	// Parsers key by source header; the converter rekeys by logical column.
	Fields map[string]string
}

// Get returns the value of a column, or "" when absent.
func (r Row) Get(column string) string {
	return r.Fields[column]
}

// Clone returns a copy of the row with its own field map.
func (r Row) Clone() Row {
	fields := make(map[string]string, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	return Row{Number: r.Number, Fields: fields}
}

// =============================================================================
// GROUPING TYPES
// =============================================================================

// Item is the group of rows reported as one ReportItems entry.
type Item struct {
	// ID is the item number (1-indexed, order of first appearance).
	ID int

	// Key is the value used to group rows into this item.
	Key string

	// Rows contains all rows belonging to this item.
	Rows []Row
}
