package counter

import (
	"time"

	"github.com/ginjaninja78/counter-reports/internal/xmlwriter"
)

// DateRange is the reporting period of a Metric. It renders as <Period>.
type DateRange struct {
	begin time.Time
	end   time.Time
}

// NewDateRange creates a DateRange. begin and end are time.Time values or
// date strings.
func NewDateRange(begin, end any) (*DateRange, error) {
	b, err := validateDate("DateRange", "Begin", begin)
	if err != nil {
		return nil, err
	}
	e, err := validateDate("DateRange", "End", end)
	if err != nil {
		return nil, err
	}
	return &DateRange{begin: b, end: e}, nil
}

// BuildDateRange builds a DateRange from {"Begin", "End"} or a two element
// sequence [begin, end].
func BuildDateRange(raw any) (*DateRange, error) {
	if m, ok := asMapping(raw); ok && issetAll(m, "Begin", "End") {
		return NewDateRange(m["Begin"], m["End"])
	}
	if seq, ok := asSequence(raw); ok && len(seq) == 2 {
		return NewDateRange(seq[0], seq[1])
	}
	return nil, shapeError("DateRange", raw)
}

// Begin returns the first day of the period.
func (d *DateRange) Begin() time.Time { return d.begin }

// End returns the last day of the period.
func (d *DateRange) End() time.Time { return d.end }

// Render implements Node.
func (d *DateRange) Render() *xmlwriter.Element {
	return xmlwriter.NewElement("Period").
		AppendText("Begin", d.begin.Format(dateFormat)).
		AppendText("End", d.end.Format(dateFormat))
}
