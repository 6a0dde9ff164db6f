package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// execute runs the root command with args and returns its standard output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	dryRun, filePath, profileCode = false, "", ""
	buildInput, buildOutput = "", ""
	settle = 0
	verbose = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	return out.String(), err
}

const looseReport = `Report:
  ID: JR1
  Version: "4"
  Name: Journal Report 1
  Title: JR1
  Created: "2024-03-01T09:30:00+00:00"
  Vendor:
    ID: pkp
    Contact:
      support@example.org: Support
  Customer:
    ID: lib-1
    ReportItems:
      - ItemName: Journal of Tests
        ItemPlatform: OJS
        ItemDataType: Journal
        ItemPerformance:
          - Period: ["2023-01-01", "2023-01-31"]
            Category: Requests
            Instance:
              - ft_html: 3
`

func TestBuildCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "report.yaml")
	require.NoError(t, os.WriteFile(input, []byte(looseReport), 0644))

	t.Run("stdout", func(t *testing.T) {
		out, err := execute(t, "build", "--input", input)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="utf-8"?>`))
		assert.Contains(t, out, `<Report Created="2024-03-01T09:30:00+00:00" ID="JR1"`)
		assert.Contains(t, out, "<E-mail>support@example.org</E-mail>")
		assert.Contains(t, out, "<MetricType>ft_html</MetricType>")
	})

	t.Run("file", func(t *testing.T) {
		output := filepath.Join(dir, "report.xml")
		_, err := execute(t, "build", "--input", input, "--output", output)
		require.NoError(t, err)

		data, err := os.ReadFile(output)
		require.NoError(t, err)
		assert.Contains(t, string(data), "<ItemName>Journal of Tests</ItemName>")
	})

	t.Run("json input", func(t *testing.T) {
		jsonInput := filepath.Join(dir, "report.json")
		doc := `{"Report": {"ID": "JR1", "Version": "4", "Name": "JR1", "Title": "JR1",
			"Vendor": {"ID": "pkp"},
			"Customer": {"ID": "lib-1", "ReportItems": {"ItemName": "J", "ItemPlatform": "OJS",
				"ItemDataType": "Journal", "ItemPerformance": {"Period": {"Begin": "2023-01-01", "End": "2023-01-31"},
				"Category": "Requests", "Instance": {"MetricType": "ft_pdf", "Count": 2}}}}}}`
		require.NoError(t, os.WriteFile(jsonInput, []byte(doc), 0644))

		out, err := execute(t, "build", "--input", jsonInput)
		require.NoError(t, err)
		assert.Contains(t, out, "<Count>2</Count>")
	})

	t.Run("invalid category", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(bad, []byte(strings.Replace(looseReport, "Category: Requests", "Category: Invalid", 1)), 0644))

		_, err := execute(t, "build", "--input", bad)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid")
	})

	t.Run("missing input flag", func(t *testing.T) {
		_, err := execute(t, "build")
		assert.Error(t, err)
	})
}

// workspace lays out a config file, one profile and the working directories.
func workspace(t *testing.T) (root, configPath string) {
	t.Helper()
	root = t.TempDir()

	cfg := "input_dir: " + filepath.Join(root, "input") + "\n" +
		"output_dir: " + filepath.Join(root, "output") + "\n" +
		"input_archive_dir: " + filepath.Join(root, "input_archive") + "\n" +
		"output_archive_dir: " + filepath.Join(root, "output_archive") + "\n" +
		"profiles_dir: " + filepath.Join(root, "profiles") + "\n" +
		"output_name_format: \"{profile}_{original}.xml\"\n" +
		"max_concurrency: 2\n"
	configPath = filepath.Join(root, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(cfg), 0644))

	profile := `profile_code: OJS_JR1
file_matching_patterns: ["jr1_*.csv"]
report: {id: JR1, version: "4", name: Journal Report 1, title: JR1}
vendor: {ID: pkp}
customer: {ID: lib-1}
column_mapping: {ItemName: Journal, MetricType: Metric}
defaults: {ItemPlatform: OJS, ItemDataType: Journal, Category: Requests}
`
	require.NoError(t, os.MkdirAll(filepath.Join(root, "profiles"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "profiles", "ojs_jr1.yaml"), []byte(profile), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "input"), 0755))
	return root, configPath
}

const usageExport = "Journal,Begin,End,Metric,Count\n" +
	"Journal of Tests,2023-01-01,2023-01-31,ft_html,3\n" +
	"Journal of Tests,2023-01-01,2023-01-31,ft_pdf,5\n"

func TestProcessCommand(t *testing.T) {
	root, configPath := workspace(t)
	input := filepath.Join(root, "input")
	require.NoError(t, os.WriteFile(filepath.Join(input, "jr1_2023.csv"), []byte(usageExport), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(input, "jr1_bad.csv"), []byte("Journal,Count\nJ,x\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(input, "notes.csv"), []byte("a,b\n1,2\n"), 0644))

	out, err := execute(t, "process", "--config", configPath)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ jr1_2023.csv")
	assert.Contains(t, out, "✗ jr1_bad.csv")
	assert.Contains(t, out, "✗ notes.csv: no matching report profile found")
	assert.Contains(t, out, "Successful:      1")
	assert.Contains(t, out, "Errors:          2")

	report, err := os.ReadFile(filepath.Join(root, "output", "OJS_JR1_jr1_2023.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(report), "<Count>5</Count>")

	// The converted export is archived; failures stay in place.
	assert.NoFileExists(t, filepath.Join(input, "jr1_2023.csv"))
	assert.FileExists(t, filepath.Join(input, "jr1_bad.csv"))

	logs, err := filepath.Glob(filepath.Join(root, "output", "processing_summary_*.txt"))
	require.NoError(t, err)
	assert.Len(t, logs, 1)
	logs, err = filepath.Glob(filepath.Join(root, "output", "error_log_*.txt"))
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestProcessCommand_DryRunWithProfile(t *testing.T) {
	root, configPath := workspace(t)
	file := filepath.Join(root, "input", "usage.csv")
	require.NoError(t, os.WriteFile(file, []byte(usageExport), 0644))

	out, err := execute(t, "process", "--config", configPath, "--file", file, "--profile", "OJS_JR1", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ usage.csv -> (dry run) (1 items)")
	assert.FileExists(t, file)

	reports, err := filepath.Glob(filepath.Join(root, "output", "*.xml"))
	require.NoError(t, err)
	assert.Empty(t, reports)

	_, err = execute(t, "process", "--config", configPath, "--file", file, "--profile", "NOPE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown profile "NOPE"`)
}

func TestValidateCommand(t *testing.T) {
	root, configPath := workspace(t)
	input := filepath.Join(root, "input")
	require.NoError(t, os.WriteFile(filepath.Join(input, "jr1_2023.csv"), []byte(usageExport), 0644))

	out, err := execute(t, "validate", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ jr1_2023.csv [OJS_JR1]: 2 rows, 1 items")
	assert.FileExists(t, filepath.Join(input, "jr1_2023.csv"))

	require.NoError(t, os.WriteFile(filepath.Join(input, "jr1_bad.csv"), []byte(
		"Journal,Begin,End,Metric,Count\nJournal of Tests,2023-01-01,2023-01-31,ft_html,many\n"), 0644))

	out, err = execute(t, "validate", "--config", configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 file(s) failed validation")
	assert.Contains(t, out, "Row 2, Field 'Count'")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "COUNTER Report Generator")
	assert.Contains(t, out, "counter4_1.xsd")
}

func TestWatch_ConvertsExistingAndNewFiles(t *testing.T) {
	root, configPath := workspace(t)
	input := filepath.Join(root, "input")
	output := filepath.Join(root, "output")
	require.NoError(t, os.WriteFile(filepath.Join(input, "jr1_existing.csv"), []byte(usageExport), 0644))

	cfgFile, profileCode, settle = configPath, "", 30*time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out bytes.Buffer
	done := make(chan error, 1)
	go func() { done <- runWatch(ctx, &out) }()

	existing := filepath.Join(output, "OJS_JR1_jr1_existing.xml")
	require.Eventually(t, func() bool {
		_, err := os.Stat(existing)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	// Let the watcher register the directory before dropping a file.
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(input, "jr1_new.csv"), []byte(usageExport), 0644))

	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(output, "OJS_JR1_jr1_new.xml"))
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.NoFileExists(t, filepath.Join(input, "jr1_new.csv"))
}
