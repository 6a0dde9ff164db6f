package utils

import (
	"os"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOutputFileName(t *testing.T) {
	name := GenerateOutputFileName("{profile}_{report}_{uuid}", map[string]string{
		"profile": "OJS_JR1",
		"report":  "JR1",
	})
	assert.Regexp(t, regexp.MustCompile(`^OJS_JR1_JR1_[0-9a-f-]{36}\.xml$`), name)

	name = GenerateOutputFileName("{original}-{date}.XML", map[string]string{"original": "a/b"})
	assert.Regexp(t, regexp.MustCompile(`^a_b-\d{8}\.XML$`), name)

	assert.NotEqual(t,
		GenerateOutputFileName("{uuid}.xml", nil),
		GenerateOutputFileName("{uuid}.xml", nil))
}

func TestWriteErrorLog(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteErrorLog(nil, dir)
	require.NoError(t, err)
	assert.Empty(t, path)

	at := time.Date(2024, 1, 15, 14, 30, 22, 0, time.UTC)
	path, err = WriteErrorLog([]ErrorLogEntry{
		{Timestamp: at, FileName: "jr1.csv", ErrorType: "validation:integer", ErrorMessage: "Value must be a whole number",
			Severity: "error", RowNumber: 3, FieldName: "Count", FieldValue: "many"},
		{Timestamp: at, FileName: "notes.csv", ErrorType: "configuration", ErrorMessage: "no matching report profile found"},
		{Timestamp: at, FileName: "jr1.csv", ErrorType: "validation", ErrorMessage: "validation failed with 1 errors"},
	}, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "Total Entries: 3")
	assert.Contains(t, content, "File: jr1.csv (2)")
	assert.Contains(t, content,
		`2024-01-15 14:30:22 [ERROR] validation:integer row 3 field Count: Value must be a whole number (value: "many")`)
	assert.Contains(t, content, "[ERROR] configuration: no matching report profile found")
	assert.Less(t, strings.Index(content, "File: jr1.csv"), strings.Index(content, "File: notes.csv"))
}

func TestWriteSummaryLog(t *testing.T) {
	summary := ProcessingSummary{StartTime: time.Now(), DryRun: true}
	summary.Add(ProcessedFileInfo{
		InputFile: "usage.csv", Profile: "OJS_JR1",
		Rows: 4, SkippedRows: 1, Items: 2, Metrics: 3, Instances: 3, ValidationErrors: 1,
	})
	summary.AddFailure(FailedFileInfo{InputFile: "broken.csv", ErrorMessage: "validation failed", ErrorType: "validation", ValidationErrors: 2})
	summary.EndTime = time.Now()

	assert.Equal(t, 2, summary.TotalFiles)
	assert.Equal(t, 1, summary.SuccessfulFiles)
	assert.Equal(t, 1, summary.FailedFiles)
	assert.Equal(t, 3, summary.ValidationErrors)

	path, err := WriteSummaryLog(summary, t.TempDir())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "Dry Run:   true")
	assert.Contains(t, content, "Report Items:      2")
	assert.Contains(t, content, "usage.csv [OJS_JR1] -> (not written)")
	assert.Contains(t, content, "rows 4 (1 skipped), items 2, metrics 3, instances 3")
	assert.Contains(t, content, "broken.csv [validation]: validation failed")
}
