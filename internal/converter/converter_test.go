package converter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ginjaninja78/counter-reports/internal/config"
)

const usageCSV = `Journal,Publisher,Online ISSN,Begin,End,Category,Metric,Count
Journal of Tests,PKP,1234-5678,2023-01-01,2023-01-31,Requests,HTML,3
Journal of Tests,PKP,1234-5678,2023-01-01,2023-01-31,Requests,PDF,5
Journal of Tests,PKP,1234-5678,2023-02-01,2023-02-28,Requests,HTML,1
Second Journal,,,2023-01-01,2023-01-31,Requests,PDF,"1,204"
`

func testProfile() *config.ReportProfile {
	return &config.ReportProfile{
		ProfileName: "OJS Journal Report 1",
		ProfileCode: "OJS_JR1",
		CSVSettings: config.CSVSettings{Delimiter: ",", HeaderRows: 1, DataStartRow: 2},
		XLSXSettings: config.XLSXSettings{HeaderRow: 1, DataStartRow: 2},
		Report: config.ReportSettings{
			ID: "JR1", Version: "4", Name: "Journal Report 1", Title: "Full-text article requests",
		},
		Vendor:   map[string]any{"ID": "pkp", "Name": "Public Knowledge Project"},
		Customer: map[string]any{"ID": "lib-1", "Name": "Library"},
		ColumnMapping: map[string]string{
			"ItemName":      "Journal",
			"ItemPublisher": "Publisher",
			"Online_ISSN":   "Online ISSN",
			"MetricType":    "Metric",
		},
		Defaults: map[string]string{
			"ItemPlatform": "OJS",
			"ItemDataType": "Journal",
		},
		TransformationRules: []config.TransformationRule{
			{Field: "MetricType", Actions: []config.TransformationAction{
				{Type: "lookup", LookupTable: map[string]string{"HTML": "ft_html", "PDF": "ft_pdf"}},
			}},
			{Field: "Count", Actions: []config.TransformationAction{{Type: "extract_digits"}}},
		},
	}
}

func testConfig(t *testing.T) *config.MainConfig {
	t.Helper()
	root := t.TempDir()
	cfg := &config.MainConfig{
		InputDir:         filepath.Join(root, "input"),
		OutputDir:        filepath.Join(root, "output"),
		InputArchiveDir:  filepath.Join(root, "input_archive"),
		OutputArchiveDir: filepath.Join(root, "output_archive"),
		OutputNameFormat: "{profile}_{original}.xml",
	}
	require.NoError(t, os.MkdirAll(cfg.InputDir, 0755))
	require.NoError(t, os.MkdirAll(cfg.OutputDir, 0755))
	return cfg
}

func writeInput(t *testing.T, cfg *config.MainConfig, name, content string) string {
	t.Helper()
	path := filepath.Join(cfg.InputDir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// assertInOrder checks that each fragment occurs in text after the previous one.
func assertInOrder(t *testing.T, text string, fragments ...string) {
	t.Helper()
	offset := 0
	for _, fragment := range fragments {
		i := strings.Index(text[offset:], fragment)
		if !assert.GreaterOrEqual(t, i, 0, "missing %q after offset %d", fragment, offset) {
			return
		}
		offset += i + len(fragment)
	}
}

func TestRun_CSV(t *testing.T) {
	cfg := testConfig(t)
	input := writeInput(t, cfg, "ojs_jr1_2023.csv", usageCSV)

	result := New(input, testProfile(), cfg, zap.NewNop(), Options{}).Run(context.Background())
	require.NoError(t, result.Error)
	require.True(t, result.Success)

	assert.Equal(t, filepath.Join(cfg.OutputDir, "OJS_JR1_ojs_jr1_2023.xml"), result.OutputFile)
	assert.Equal(t, 4, result.Stats.RowsProcessed)
	assert.Equal(t, 2, result.Stats.ItemsCreated)
	assert.Equal(t, 3, result.Stats.MetricsCreated)
	assert.Equal(t, 4, result.Stats.InstancesCreated)
	assert.Zero(t, result.Stats.RowsSkipped)

	data, err := os.ReadFile(result.OutputFile)
	require.NoError(t, err)
	text := string(data)
	assert.Equal(t, result.Document, text)

	assert.True(t, strings.HasPrefix(text, `<?xml version="1.0" encoding="utf-8"?>`+"\n<Reports "))
	assertInOrder(t, text,
		`ID="JR1" Version="4" Name="Journal Report 1" Title="Full-text article requests"`,
		"<Vendor>", "<ID>pkp</ID>",
		"<Customer>", "<ID>lib-1</ID>",
		"<ReportItems>",
		"<Type>Online_ISSN</Type>", "<Value>1234-5678</Value>",
		"<ItemPlatform>OJS</ItemPlatform>",
		"<ItemPublisher>PKP</ItemPublisher>",
		"<ItemName>Journal of Tests</ItemName>",
		"<Begin>2023-01-01</Begin>",
		"<MetricType>ft_html</MetricType>", "<Count>3</Count>",
		"<MetricType>ft_pdf</MetricType>", "<Count>5</Count>",
		"<Begin>2023-02-01</Begin>",
		"<ItemName>Second Journal</ItemName>",
		"<Count>1204</Count>",
	)
	assert.Equal(t, 2, strings.Count(text, "<ReportItems>"))
	assert.Equal(t, 1, strings.Count(text, "<ItemPublisher>"))

	// Archived.
	assert.NoFileExists(t, input)
	assert.FileExists(t, filepath.Join(cfg.InputArchiveDir, "ojs_jr1_2023.csv"))
	assert.FileExists(t, filepath.Join(cfg.OutputArchiveDir, "OJS_JR1_ojs_jr1_2023.xml"))
}

func TestRun_XLSX(t *testing.T) {
	cfg := testConfig(t)

	f := excelize.NewFile()
	defer f.Close()
	rows := [][]any{
		{"Journal", "Begin", "End", "Category", "Metric", "Count"},
		{"Journal of Tests", "2023-01-01", "2023-01-31", "Requests", "PDF", 7},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	input := filepath.Join(cfg.InputDir, "usage.xlsx")
	require.NoError(t, f.SaveAs(input))

	result := New(input, testProfile(), cfg, nil, Options{DryRun: true}).Run(context.Background())
	require.NoError(t, result.Error)
	assert.Contains(t, result.Document, "<MetricType>ft_pdf</MetricType>")
	assert.Contains(t, result.Document, "<Count>7</Count>")
}

func TestRun_DryRun(t *testing.T) {
	cfg := testConfig(t)
	input := writeInput(t, cfg, "ojs_jr1_2023.csv", usageCSV)

	result := New(input, testProfile(), cfg, zap.NewNop(), Options{DryRun: true}).Run(context.Background())
	require.NoError(t, result.Error)
	assert.True(t, result.Success)
	assert.Empty(t, result.OutputFile)
	assert.NotEmpty(t, result.Document)

	entries, err := os.ReadDir(cfg.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.FileExists(t, input)
}

func TestRun_ValidationFailure(t *testing.T) {
	content := usageCSV + "Third Journal,,,2023-01-01,2023-01-31,Requests,PDF,many\n"

	t.Run("fails the file", func(t *testing.T) {
		cfg := testConfig(t)
		input := writeInput(t, cfg, "usage.csv", content)

		result := New(input, testProfile(), cfg, zap.NewNop(), Options{}).Run(context.Background())
		require.Error(t, result.Error)
		assert.True(t, errors.Is(result.Error, ErrValidation))
		assert.False(t, result.Success)
		require.Len(t, result.ValidationErrors, 1)
		assert.Equal(t, 6, result.ValidationErrors[0].RowNumber)
		assert.Equal(t, "Count", result.ValidationErrors[0].Field)
		assert.FileExists(t, input)
	})

	t.Run("skips the row", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.ContinueOnError = true
		input := writeInput(t, cfg, "usage.csv", content)

		result := New(input, testProfile(), cfg, zap.NewNop(), Options{DryRun: true}).Run(context.Background())
		require.NoError(t, result.Error)
		assert.Equal(t, 5, result.Stats.RowsProcessed)
		assert.Equal(t, 1, result.Stats.RowsSkipped)
		assert.Equal(t, 1, result.Stats.ValidationErrors)
		assert.Equal(t, 2, result.Stats.ItemsCreated)
		assert.NotContains(t, result.Document, "Third Journal")
	})

	t.Run("nothing left", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.ContinueOnError = true
		input := writeInput(t, cfg, "usage.csv", "Journal,Count\nJournal of Tests,3\n")

		result := New(input, testProfile(), cfg, zap.NewNop(), Options{}).Run(context.Background())
		assert.True(t, errors.Is(result.Error, ErrNoRows))
	})
}

func TestRun_Errors(t *testing.T) {
	cfg := testConfig(t)

	input := writeInput(t, cfg, "usage.json", "{}")
	result := New(input, testProfile(), cfg, zap.NewNop(), Options{}).Run(context.Background())
	assert.True(t, errors.Is(result.Error, ErrUnsupportedFormat))

	input = writeInput(t, cfg, "usage.csv", usageCSV)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result = New(input, testProfile(), cfg, zap.NewNop(), Options{}).Run(ctx)
	assert.True(t, errors.Is(result.Error, context.Canceled))
	assert.FileExists(t, input)

	profile := testProfile()
	profile.TransformationRules = []config.TransformationRule{
		{Field: "Count", Actions: []config.TransformationAction{{Type: "explode"}}},
	}
	result = New(input, profile, cfg, zap.NewNop(), Options{}).Run(context.Background())
	assert.ErrorContains(t, result.Error, "unknown transformation type: explode")
}

func TestRun_VendorRejected(t *testing.T) {
	cfg := testConfig(t)
	input := writeInput(t, cfg, "usage.csv", usageCSV)

	profile := testProfile()
	profile.Vendor = map[string]any{"ID": 42}

	result := New(input, profile, cfg, zap.NewNop(), Options{}).Run(context.Background())
	require.Error(t, result.Error)
	assert.ErrorContains(t, result.Error, "failed to build report")
	assert.FileExists(t, input)
}
