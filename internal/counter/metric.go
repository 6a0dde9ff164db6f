package counter

import (
	"strconv"

	"github.com/ginjaninja78/counter-reports/internal/xmlwriter"
)

// MetricOptions holds the optional publication year bounds of a Metric.
// Zero means unset.
type MetricOptions struct {
	PubYr     int
	PubYrFrom int
	PubYrTo   int
}

// Metric is the usage of one item over one period and category.
// It renders as <ItemPerformance>.
type Metric struct {
	pubYr     int
	pubYrFrom int
	pubYrTo   int
	period    *DateRange
	category  string
	instances []*PerformanceCounter
}

// NewMetric creates a Metric. category must be a metric category and
// instances must hold at least one counter.
func NewMetric(period *DateRange, category string, instances []*PerformanceCounter, opts MetricOptions) (*Metric, error) {
	const node = "Metric"

	p, err := validateOneOf[*DateRange](node, "Period", period)
	if err != nil {
		return nil, err
	}
	if err := validateMember(node, "Category", EnumCategory, category); err != nil {
		return nil, err
	}
	counters, err := validateOneOrMoreOf[*PerformanceCounter](node, "Instance", instances)
	if err != nil {
		return nil, err
	}

	m := &Metric{period: p, category: category, instances: counters}
	for _, year := range []struct {
		field  string
		value  int
		target *int
	}{
		{"PubYr", opts.PubYr, &m.pubYr},
		{"PubYrFrom", opts.PubYrFrom, &m.pubYrFrom},
		{"PubYrTo", opts.PubYrTo, &m.pubYrTo},
	} {
		n, err := validatePositiveInteger(node, year.field, year.value)
		if err != nil {
			return nil, err
		}
		*year.target = n
	}
	return m, nil
}

// BuildMetric builds a Metric from a canonical mapping with Period,
// Category and Instance keys and optional PubYr, PubYrFrom and PubYrTo.
func BuildMetric(raw any) (*Metric, error) {
	const node = "Metric"

	m, ok := asMapping(raw)
	if !ok || !issetAll(m, "Period", "Instance", "Category") {
		return nil, shapeError(node, raw)
	}

	period, err := buildOne(m["Period"], BuildDateRange)
	if err != nil {
		return nil, err
	}
	category, err := validateString(node, "Category", m["Category"])
	if err != nil {
		return nil, err
	}
	if err := validateMember(node, "Category", EnumCategory, category); err != nil {
		return nil, err
	}
	instances, err := buildMultiple(m["Instance"], BuildPerformanceCounter)
	if err != nil {
		return nil, err
	}

	var opts MetricOptions
	for _, year := range []struct {
		key    string
		target *int
	}{
		{"PubYr", &opts.PubYr},
		{"PubYrFrom", &opts.PubYrFrom},
		{"PubYrTo", &opts.PubYrTo},
	} {
		if isEmpty(m[year.key]) {
			continue
		}
		n, err := validatePositiveInteger(node, year.key, m[year.key])
		if err != nil {
			return nil, err
		}
		*year.target = n
	}

	return NewMetric(period, category, instances, opts)
}

// Period returns the reporting period.
func (m *Metric) Period() *DateRange { return m.period }

// Category returns the metric category.
func (m *Metric) Category() string { return m.category }

// Instances returns the performance counters.
func (m *Metric) Instances() []*PerformanceCounter {
	return append([]*PerformanceCounter(nil), m.instances...)
}

// PubYr returns the publication year, zero if unset.
func (m *Metric) PubYr() int { return m.pubYr }

// PubYrFrom returns the lower publication year bound, zero if unset.
func (m *Metric) PubYrFrom() int { return m.pubYrFrom }

// PubYrTo returns the upper publication year bound, zero if unset.
func (m *Metric) PubYrTo() int { return m.pubYrTo }

// Render implements Node. Publication years are attributes of
// <ItemPerformance>.
func (m *Metric) Render() *xmlwriter.Element {
	root := xmlwriter.NewElement("ItemPerformance")
	for _, year := range []struct {
		name  string
		value int
	}{
		{"PubYr", m.pubYr},
		{"PubYrFrom", m.pubYrFrom},
		{"PubYrTo", m.pubYrTo},
	} {
		if year.value != 0 {
			root.SetAttr(year.name, strconv.Itoa(year.value))
		}
	}
	root.Append(m.period.Render())
	root.AppendText("Category", m.category)
	renderAll(root, m.instances)
	return root
}
