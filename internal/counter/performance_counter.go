package counter

import (
	"strconv"

	"github.com/ginjaninja78/counter-reports/internal/xmlwriter"
)

// PerformanceCounter is one usage count of a metric type within a Metric.
// It renders as <Instance>.
type PerformanceCounter struct {
	metricType string
	count      int
}

// NewPerformanceCounter creates a PerformanceCounter. count may be zero.
func NewPerformanceCounter(metricType string, count int) (*PerformanceCounter, error) {
	return newPerformanceCounter(metricType, count)
}

// BuildPerformanceCounter builds a PerformanceCounter from
// {"MetricType", "Count"} or a single entry {metricType: count}.
// Counts may be integers, integral floats or numeric strings.
func BuildPerformanceCounter(raw any) (*PerformanceCounter, error) {
	if m, ok := asMapping(raw); ok {
		if issetAll(m, "MetricType", "Count") {
			return newPerformanceCounter(m["MetricType"], m["Count"])
		}
		if metricType, count, ok := singleEntry(m); ok {
			return newPerformanceCounter(metricType, count)
		}
	}
	return nil, shapeError("PerformanceCounter", raw)
}

func newPerformanceCounter(metricType, count any) (*PerformanceCounter, error) {
	const node = "PerformanceCounter"

	mt, err := validateString(node, "MetricType", metricType)
	if err != nil {
		return nil, err
	}
	if err := validateMember(node, "MetricType", EnumMetricType, mt); err != nil {
		return nil, err
	}
	n, err := validatePositiveInteger(node, "Count", count)
	if err != nil {
		return nil, err
	}
	return &PerformanceCounter{metricType: mt, count: n}, nil
}

// MetricType returns the metric type.
func (p *PerformanceCounter) MetricType() string { return p.metricType }

// Count returns the usage count.
func (p *PerformanceCounter) Count() int { return p.count }

// Render implements Node.
func (p *PerformanceCounter) Render() *xmlwriter.Element {
	return xmlwriter.NewElement("Instance").
		AppendText("MetricType", p.metricType).
		AppendText("Count", strconv.Itoa(p.count))
}
