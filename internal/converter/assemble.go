package converter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/ginjaninja78/counter-reports/internal/config"
	"github.com/ginjaninja78/counter-reports/internal/types"
)

// logicalColumns are every column the pipeline reads from a usage row.
var logicalColumns = append([]string{
	types.ColumnItemName,
	types.ColumnItemPlatform,
	types.ColumnItemPublisher,
	types.ColumnItemDataType,
	types.ColumnBegin,
	types.ColumnEnd,
	types.ColumnCategory,
	types.ColumnMetricType,
	types.ColumnCount,
	types.ColumnPubYr,
}, types.IdentifierColumns...)

// =============================================================================
// COLUMN MAPPING
// =============================================================================

// MapColumns rekeys parsed rows by logical column. The source header for a
// column comes from the profile's column mapping, falling back to the
// column's own name; empty values take the profile default.
func MapColumns(table *types.Table, profile *config.ReportProfile) []types.Row {
	rows := make([]types.Row, len(table.Rows))
	for i, row := range table.Rows {
		fields := make(map[string]string, len(logicalColumns))
		for _, column := range logicalColumns {
			header := column
			if mapped, ok := profile.ColumnMapping[column]; ok && mapped != "" {
				header = mapped
			}
			value := strings.TrimSpace(row.Fields[header])
			if value == "" {
				value = profile.Defaults[column]
			}
			fields[column] = value
		}
		rows[i] = types.Row{Number: row.Number, Fields: fields}
	}
	return rows
}

// MissingColumns lists logical columns that are required on every row but
// have neither a source header in the table nor a profile default.
func MissingColumns(table *types.Table, profile *config.ReportProfile) []string {
	return lo.Filter(types.RequiredColumns, func(column string, _ int) bool {
		if profile.Defaults[column] != "" {
			return false
		}
		header := column
		if mapped, ok := profile.ColumnMapping[column]; ok && mapped != "" {
			header = mapped
		}
		return !lo.Contains(table.Headers, header)
	})
}

// =============================================================================
// GROUPING
// =============================================================================

type itemKey struct {
	name     string
	platform string
}

type metricKey struct {
	begin    string
	end      string
	category string
	pubYr    string
}

// GroupItems groups rows into report items by (ItemName, ItemPlatform), in
// order of first appearance. Rows keep their order within an item.
func GroupItems(rows []types.Row) []types.Item {
	keyOf := func(r types.Row) itemKey {
		return itemKey{name: r.Get(types.ColumnItemName), platform: r.Get(types.ColumnItemPlatform)}
	}

	order := lo.Uniq(lo.Map(rows, func(r types.Row, _ int) itemKey { return keyOf(r) }))
	groups := lo.GroupBy(rows, keyOf)

	items := make([]types.Item, len(order))
	for i, key := range order {
		items[i] = types.Item{
			ID:   i + 1,
			Key:  key.name + " | " + key.platform,
			Rows: groups[key],
		}
	}
	return items
}

// =============================================================================
// LOOSE DOCUMENT ASSEMBLY
// =============================================================================

// assembly counts what buildDocument produced.
type assembly struct {
	items     int
	metrics   int
	instances int
}

// buildDocument assembles the loose {Report: {...}} tree for the report
// builder. The profile's Vendor is shared read-only; its Customer is copied
// before ReportItems are added.
func buildDocument(profile *config.ReportProfile, items []types.Item) (map[string]any, assembly, error) {
	var counts assembly

	reportItems := make([]any, 0, len(items))
	for _, item := range items {
		entry, metrics, instances, err := buildItem(item)
		if err != nil {
			return nil, counts, err
		}
		reportItems = append(reportItems, entry)
		counts.items++
		counts.metrics += metrics
		counts.instances += instances
	}

	customer := lo.Assign(profile.Customer)
	customer["ReportItems"] = reportItems

	report := map[string]any{
		"ID":       profile.Report.ID,
		"Version":  profile.Report.Version,
		"Name":     profile.Report.Name,
		"Title":    profile.Report.Title,
		"Vendor":   profile.Vendor,
		"Customer": customer,
	}

	return map[string]any{"Report": report}, counts, nil
}

// buildItem turns one item group into a loose ReportItems mapping. Item
// descriptors come from the first row that carries them; metrics group by
// (Begin, End, Category, PubYr) in order of first appearance and every row
// becomes one Instance.
func buildItem(item types.Item) (map[string]any, int, int, error) {
	first := item.Rows[0]
	entry := map[string]any{
		"ItemName":     first.Get(types.ColumnItemName),
		"ItemPlatform": first.Get(types.ColumnItemPlatform),
		"ItemDataType": first.Get(types.ColumnItemDataType),
	}

	if publisher := firstValue(item.Rows, types.ColumnItemPublisher); publisher != "" {
		entry["ItemPublisher"] = publisher
	}

	var identifiers []any
	for _, column := range types.IdentifierColumns {
		if value := firstValue(item.Rows, column); value != "" {
			identifiers = append(identifiers, map[string]any{column: value})
		}
	}
	if len(identifiers) > 0 {
		entry["ItemIdentifier"] = identifiers
	}

	keyOf := func(r types.Row) metricKey {
		return metricKey{
			begin:    r.Get(types.ColumnBegin),
			end:      r.Get(types.ColumnEnd),
			category: r.Get(types.ColumnCategory),
			pubYr:    r.Get(types.ColumnPubYr),
		}
	}
	order := lo.Uniq(lo.Map(item.Rows, func(r types.Row, _ int) metricKey { return keyOf(r) }))
	groups := lo.GroupBy(item.Rows, keyOf)

	performance := make([]any, 0, len(order))
	instances := 0
	for _, key := range order {
		rows := groups[key]
		counters := make([]any, 0, len(rows))
		for _, row := range rows {
			count, err := strconv.Atoi(strings.TrimSpace(row.Get(types.ColumnCount)))
			if err != nil {
				return nil, 0, 0, fmt.Errorf("row %d: invalid Count %q", row.Number, row.Get(types.ColumnCount))
			}
			counters = append(counters, map[string]any{
				"MetricType": row.Get(types.ColumnMetricType),
				"Count":      count,
			})
		}
		instances += len(counters)

		metric := map[string]any{
			"Period":   map[string]any{"Begin": key.begin, "End": key.end},
			"Category": key.category,
			"Instance": counters,
		}
		if key.pubYr != "" {
			year, err := strconv.Atoi(strings.TrimSpace(key.pubYr))
			if err != nil {
				return nil, 0, 0, fmt.Errorf("row %d: invalid PubYr %q", rows[0].Number, key.pubYr)
			}
			metric["PubYr"] = year
		}
		performance = append(performance, metric)
	}
	entry["ItemPerformance"] = performance

	return entry, len(performance), instances, nil
}

// firstValue returns the first non-empty value of column among rows.
func firstValue(rows []types.Row, column string) string {
	for _, row := range rows {
		if value := row.Get(column); value != "" {
			return value
		}
	}
	return ""
}
