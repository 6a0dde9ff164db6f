// =============================================================================
// COUNTER Report Generator - Run Logs
// =============================================================================
//
// A processing run leaves two plain-text logs in the output directory:
//   error_log_<timestamp>.txt          every failure and row finding, by file
//   processing_summary_<timestamp>.txt totals and a line per file
//
// =============================================================================

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"
)

const (
	logRule      = "================================================================================\n"
	sectionRule  = "--------------------------------------------------------------------------------\n"
	logTimestamp = "2006-01-02 15:04:05"
)

// =============================================================================
// ERROR LOG
// =============================================================================

// ErrorLogEntry is one failure or row-level finding.
type ErrorLogEntry struct {
	Timestamp    time.Time
	FileName     string
	ErrorType    string
	ErrorMessage string
	Severity     string
	RowNumber    int
	FieldName    string
	FieldValue   string
}

// WriteErrorLog writes entries grouped by file, files in order of first
// appearance. Nothing is written for no entries.
//
// RETURNS:
//   - The path to the error log, or "" when there were no entries.
//   - An error if writing fails.
func WriteErrorLog(entries []ErrorLogEntry, outputDir string) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "COUNTER Report Generator - Error Log\nGenerated: %s\nTotal Entries: %d\n%s\n",
		time.Now().Format(logTimestamp), len(entries), logRule)

	files := lo.Uniq(lo.Map(entries, func(e ErrorLogEntry, _ int) string { return e.FileName }))
	byFile := lo.GroupBy(entries, func(e ErrorLogEntry) string { return e.FileName })

	for _, file := range files {
		fmt.Fprintf(&b, "File: %s (%d)\n%s", file, len(byFile[file]), sectionRule)
		for _, e := range byFile[file] {
			writeErrorEntry(&b, e)
		}
		b.WriteString("\n")
	}
	b.WriteString(logRule + "End of Error Log\n")

	path := filepath.Join(outputDir, "error_log_"+time.Now().Format("20060102_150405.000")+".txt")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write error log: %w", err)
	}
	return path, nil
}

// writeErrorEntry writes one entry as a line, with its row location when known.
func writeErrorEntry(b *strings.Builder, e ErrorLogEntry) {
	severity := strings.ToUpper(lo.Ternary(e.Severity == "", "error", e.Severity))
	fmt.Fprintf(b, "  %s [%s] %s", e.Timestamp.Format(logTimestamp), severity, e.ErrorType)
	if e.RowNumber > 0 {
		fmt.Fprintf(b, " row %d", e.RowNumber)
	}
	if e.FieldName != "" {
		fmt.Fprintf(b, " field %s", e.FieldName)
	}
	fmt.Fprintf(b, ": %s", e.ErrorMessage)
	if e.FieldValue != "" {
		fmt.Fprintf(b, " (value: %q)", e.FieldValue)
	}
	b.WriteString("\n")
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary accumulates the outcome of a processing run.
type ProcessingSummary struct {
	StartTime        time.Time
	EndTime          time.Time
	DryRun           bool
	TotalFiles       int
	SuccessfulFiles  int
	FailedFiles      int
	TotalRows        int
	SkippedRows      int
	TotalItems       int
	TotalMetrics     int
	TotalInstances   int
	ValidationErrors int
	ProcessedFiles   []ProcessedFileInfo
	FailedFilesList  []FailedFileInfo
}

// ProcessedFileInfo describes a file that produced a report.
type ProcessedFileInfo struct {
	InputFile        string
	OutputFile       string
	Profile          string
	Rows             int
	SkippedRows      int
	Items            int
	Metrics          int
	Instances        int
	ValidationErrors int
	ProcessTime      time.Duration
}

// FailedFileInfo describes a file that produced no report.
type FailedFileInfo struct {
	InputFile        string
	ErrorMessage     string
	ErrorType        string
	ValidationErrors int
}

// Add records the outcome of one processed file.
func (s *ProcessingSummary) Add(info ProcessedFileInfo) {
	s.TotalFiles++
	s.SuccessfulFiles++
	s.TotalRows += info.Rows
	s.SkippedRows += info.SkippedRows
	s.TotalItems += info.Items
	s.TotalMetrics += info.Metrics
	s.TotalInstances += info.Instances
	s.ValidationErrors += info.ValidationErrors
	s.ProcessedFiles = append(s.ProcessedFiles, info)
}

// AddFailure records a file that could not be processed.
func (s *ProcessingSummary) AddFailure(info FailedFileInfo) {
	s.TotalFiles++
	s.FailedFiles++
	s.ValidationErrors += info.ValidationErrors
	s.FailedFilesList = append(s.FailedFilesList, info)
}

// WriteSummaryLog writes the run summary to the output directory.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary ProcessingSummary, outputDir string) (string, error) {
	var b strings.Builder

	b.WriteString("COUNTER Report Generator - Processing Summary\n" + logRule + "\n")
	fmt.Fprintf(&b, "Run:\n  Started:   %s\n  Finished:  %s\n  Duration:  %s\n  Dry Run:   %t\n\n",
		summary.StartTime.Format(logTimestamp),
		summary.EndTime.Format(logTimestamp),
		summary.EndTime.Sub(summary.StartTime),
		summary.DryRun)

	fmt.Fprintf(&b, "Totals:\n")
	for _, line := range []struct {
		label string
		value int
	}{
		{"Files", summary.TotalFiles},
		{"Successful", summary.SuccessfulFiles},
		{"Failed", summary.FailedFiles},
		{"Rows", summary.TotalRows},
		{"Skipped Rows", summary.SkippedRows},
		{"Report Items", summary.TotalItems},
		{"Metrics", summary.TotalMetrics},
		{"Instances", summary.TotalInstances},
		{"Validation Errors", summary.ValidationErrors},
	} {
		fmt.Fprintf(&b, "  %-19s%d\n", line.label+":", line.value)
	}
	b.WriteString("\n")

	if len(summary.ProcessedFiles) > 0 {
		b.WriteString("Reports:\n" + sectionRule)
		for _, pf := range summary.ProcessedFiles {
			output := lo.Ternary(pf.OutputFile == "", "(not written)", pf.OutputFile)
			fmt.Fprintf(&b, "  %s [%s] -> %s\n", pf.InputFile, pf.Profile, output)
			fmt.Fprintf(&b, "    rows %d (%d skipped), items %d, metrics %d, instances %d, %s\n",
				pf.Rows, pf.SkippedRows, pf.Items, pf.Metrics, pf.Instances, pf.ProcessTime)
		}
		b.WriteString("\n")
	}

	if len(summary.FailedFilesList) > 0 {
		b.WriteString("Failures:\n" + sectionRule)
		for _, ff := range summary.FailedFilesList {
			fmt.Fprintf(&b, "  %s [%s]: %s\n", ff.InputFile, lo.Ternary(ff.ErrorType == "", "processing", ff.ErrorType), ff.ErrorMessage)
		}
		b.WriteString("\n")
	}

	b.WriteString(logRule + "End of Summary\n")

	path := filepath.Join(outputDir, "processing_summary_"+time.Now().Format("20060102_150405.000")+".txt")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write summary file: %w", err)
	}
	return path, nil
}
