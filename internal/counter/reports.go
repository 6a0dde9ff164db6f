// =============================================================================
// COUNTER Report Generator - Reports Document
// =============================================================================
//
// Reports is the document root. It owns one or more Report nodes and is the
// only node that may change after construction: AddReport appends.
//
// OUTPUT:
//
//   <?xml version="1.0" encoding="utf-8"?>
//   <Reports xmlns="http://www.niso.org/schemas/counter"
//            xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
//            xsi:schemaLocation="http://www.niso.org/schemas/counter http://...">
//     <Report Created="..." ID="..." Version="..." Name="..." Title="...">
//       ...
//
// =============================================================================

package counter

import (
	"sync"

	"github.com/ginjaninja78/counter-reports/internal/xmlwriter"
)

// Reports is the root aggregate of a COUNTER document.
type Reports struct {
	mu      sync.RWMutex
	reports []*Report
}

// NewReports creates a document holding at least one Report.
func NewReports(reports []*Report) (*Reports, error) {
	checked, err := validateOneOrMoreOf[*Report]("Reports", "Report", reports)
	if err != nil {
		return nil, err
	}
	return &Reports{reports: checked}, nil
}

// BuildReports builds a document from {"Report": ...} or from a bare
// sequence of report mappings.
func BuildReports(raw any) (*Reports, error) {
	const node = "Reports"

	if built, ok := raw.(*Reports); ok && built != nil {
		return built, nil
	}

	// An empty mapping is an empty sequence.
	if m, ok := asMapping(raw); ok && len(m) == 0 {
		raw = []any{}
	}

	if m, ok := asMapping(raw); ok && isset(m, "Report") {
		reports, err := buildMultiple(m["Report"], BuildReport)
		if err != nil {
			return nil, err
		}
		return NewReports(reports)
	}

	if seq, ok := asSequence(raw); ok {
		reports, err := buildMultiple(seq, BuildReport)
		if err != nil {
			return nil, err
		}
		return NewReports(reports)
	}

	return nil, shapeError(node, raw)
}

// AddReport appends report to the document.
func (r *Reports) AddReport(report *Report) error {
	checked, err := validateOneOf[*Report]("Reports", "Report", report)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, checked)
	return nil
}

// Reports returns a snapshot of the owned reports.
func (r *Reports) Reports() []*Report {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Report(nil), r.reports...)
}

// Render implements Node.
func (r *Reports) Render() *xmlwriter.Element {
	root := xmlwriter.NewElement("Reports").
		SetAttr("xmlns", Namespace).
		SetAttr("xmlns:xsi", xsiNamespace).
		SetAttr("xsi:schemaLocation", Namespace+" "+SchemaLocation)
	renderAll(root, r.Reports())
	return root
}

// ToText renders the document as indented XML with a UTF-8 declaration.
func (r *Reports) ToText() (string, error) {
	return ToText(r)
}
