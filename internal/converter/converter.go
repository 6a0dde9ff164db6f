// =============================================================================
// COUNTER Report Generator - Converter Module
// =============================================================================
//
// This module contains the conversion pipeline for a single usage export,
// from parsing to the written report.
//
// CONVERSION PIPELINE:
//   1. Parse the export (CSV or XLSX, by extension)
//   2. Map source headers onto logical columns
//   3. Apply the profile's transformation rules
//   4. Validate the rows
//   5. Group rows into report items and metrics
//   6. Build the report document
//   7. Write the output file
//   8. Archive the processed files
//
// CONCURRENCY:
//   A Converter handles one file and shares nothing mutable with other
//   converters, so the process command runs one per file concurrently.
//
// =============================================================================

package converter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ginjaninja78/counter-reports/internal/config"
	"github.com/ginjaninja78/counter-reports/internal/counter"
	"github.com/ginjaninja78/counter-reports/internal/csvparser"
	"github.com/ginjaninja78/counter-reports/internal/types"
	"github.com/ginjaninja78/counter-reports/internal/validation"
	"github.com/ginjaninja78/counter-reports/internal/xlsxparser"
	"github.com/ginjaninja78/counter-reports/pkg/utils"
)

// Pipeline failures callers may want to tell apart.
var (
	ErrUnsupportedFormat = errors.New("unsupported input format")
	ErrValidation        = errors.New("validation failed")
	ErrNoRows            = errors.New("no usage rows to report")
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// Profile is the code of the profile used.
	Profile string

	// OutputFile is the path to the generated XML file.
	// This is empty if processing failed or for a dry run.
	OutputFile string

	// Document is the generated report text.
	Document string

	// Success indicates whether the processing was successful.
	Success bool

	// Error contains the error if processing failed.
	Error error

	// ValidationErrors holds every row-level finding, warnings included.
	ValidationErrors []*validation.ValidationError

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// RowsProcessed is the number of data rows read.
	RowsProcessed int

	// RowsSkipped is the number of rows left out for fatal validation errors.
	RowsSkipped int

	// ItemsCreated is the number of ReportItems in the report.
	ItemsCreated int

	// MetricsCreated is the number of ItemPerformance entries.
	MetricsCreated int

	// InstancesCreated is the number of Instance entries.
	InstancesCreated int

	// ValidationErrors is the number of fatal validation errors.
	ValidationErrors int

	// ValidationWarnings is the number of validation warnings.
	ValidationWarnings int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Options tune a single run.
type Options struct {
	// DryRun runs every step up to the built document but writes and
	// archives nothing.
	DryRun bool
}

// Converter handles the conversion of a single usage export.
type Converter struct {
	inputPath   string
	profile     *config.ReportProfile
	mainConfig  *config.MainConfig
	files       *utils.FileManager
	transformer *Transformer
	validator   *validation.Validator
	logger      *zap.Logger
	options     Options
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// New creates a new Converter instance.
//
// PARAMETERS:
//   - inputPath: The path to the usage export.
//   - profile: The report profile matched to the file.
//   - mainConfig: The main application configuration.
//   - logger: The logger; nil disables logging.
//   - options: Run options.
func New(inputPath string, profile *config.ReportProfile, mainConfig *config.MainConfig, logger *zap.Logger, options Options) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	files := utils.NewFileManager(
		mainConfig.InputDir,
		mainConfig.OutputDir,
		mainConfig.InputArchiveDir,
		mainConfig.OutputArchiveDir,
	)
	files.UseTimestampSubdirs = mainConfig.ArchiveByDate

	return &Converter{
		inputPath:   inputPath,
		profile:     profile,
		mainConfig:  mainConfig,
		files:       files,
		transformer: NewTransformer(profile.TransformationRules),
		validator:   validation.NewValidator(),
		logger: logger.With(
			zap.String("file", filepath.Base(inputPath)),
			zap.String("profile", profile.ProfileCode),
		),
		options: options,
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the conversion pipeline for the file. The context is checked
// between steps.
func (c *Converter) Run(ctx context.Context) Result {
	startTime := time.Now()
	result := Result{
		FilePath: c.inputPath,
		Profile:  c.profile.ProfileCode,
	}
	fail := func(err error) Result {
		result.Error = err
		result.Stats.ProcessingTime = time.Since(startTime)
		c.logger.Error("Processing failed", zap.Error(err))
		return result
	}

	c.logger.Info("Processing file", zap.Bool("dry_run", c.options.DryRun))

	// =========================================================================
	// STEP 1: PARSE INPUT
	// =========================================================================

	table, err := c.parse()
	if err != nil {
		return fail(err)
	}
	result.Stats.RowsProcessed = len(table.Rows)
	c.logger.Debug("Parsed input", zap.Int("rows", len(table.Rows)), zap.Strings("headers", table.Headers))

	if missing := MissingColumns(table, c.profile); len(missing) > 0 {
		c.logger.Warn("Required columns not found in headers", zap.Strings("columns", missing))
	}

	// =========================================================================
	// STEP 2-3: MAP COLUMNS AND TRANSFORM
	// =========================================================================

	rows := MapColumns(table, c.profile)
	for i := range rows {
		if err := c.transformer.TransformRow(&rows[i]); err != nil {
			return fail(fmt.Errorf("failed to apply transformations: %w", err))
		}
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	// =========================================================================
	// STEP 4: VALIDATE ROWS
	// =========================================================================

	validated := c.validator.ValidateAll(rows)
	result.ValidationErrors = validated.Errors
	result.Stats.ValidationErrors = validated.ErrorCount
	result.Stats.ValidationWarnings = validated.WarningCount

	for _, ve := range validated.Errors {
		fields := []zap.Field{
			zap.Int("row", ve.RowNumber),
			zap.String("field", ve.Field),
			zap.String("value", ve.Value),
			zap.String("rule", ve.Rule),
		}
		if ve.Severity == validation.SeverityError {
			c.logger.Warn(ve.Message, fields...)
		} else {
			c.logger.Debug(ve.Message, fields...)
		}
	}

	if !validated.IsValid {
		if !c.mainConfig.ContinueOnError {
			return fail(fmt.Errorf("%w with %d errors", ErrValidation, validated.ErrorCount))
		}
		failed := validated.FailedRows()
		kept := rows[:0]
		for _, row := range rows {
			if !failed[row.Number] {
				kept = append(kept, row)
			}
		}
		result.Stats.RowsSkipped = len(rows) - len(kept)
		rows = kept
		c.logger.Warn("Skipping invalid rows", zap.Int("skipped", result.Stats.RowsSkipped))
	}

	if len(rows) == 0 {
		return fail(ErrNoRows)
	}

	// =========================================================================
	// STEP 5-6: GROUP AND BUILD THE REPORT
	// =========================================================================

	built, err := c.build(rows)
	if err != nil {
		return fail(err)
	}
	result.Document = built.text
	result.Stats.ItemsCreated = built.counts.items
	result.Stats.MetricsCreated = built.counts.metrics
	result.Stats.InstancesCreated = built.counts.instances

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	if c.options.DryRun {
		result.Success = true
		result.Stats.ProcessingTime = time.Since(startTime)
		c.logger.Info("Dry run complete", zap.Int("items", result.Stats.ItemsCreated))
		return result
	}

	// =========================================================================
	// STEP 7: WRITE OUTPUT FILE
	// =========================================================================

	outputPath, err := c.writeOutput(built.text)
	if err != nil {
		return fail(fmt.Errorf("failed to write output: %w", err))
	}
	result.OutputFile = outputPath
	c.logger.Info("Wrote report", zap.String("output", outputPath), zap.Int("items", result.Stats.ItemsCreated))

	// =========================================================================
	// STEP 8: ARCHIVE FILES
	// =========================================================================

	if err := c.archiveFiles(outputPath); err != nil {
		// Log the error but don't fail the processing.
		c.logger.Warn("Failed to archive files", zap.Error(err))
	}

	result.Success = true
	result.Stats.ProcessingTime = time.Since(startTime)
	return result
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// builtReport is a rendered report with its counts.
type builtReport struct {
	text   string
	counts assembly
}

// build groups validated rows and renders the report document.
func (c *Converter) build(rows []types.Row) (builtReport, error) {
	items := GroupItems(rows)
	c.logger.Debug("Grouped rows", zap.Int("items", len(items)))

	loose, counts, err := buildDocument(c.profile, items)
	if err != nil {
		return builtReport{}, fmt.Errorf("failed to assemble report: %w", err)
	}

	reports, err := counter.BuildReports(loose)
	if err != nil {
		return builtReport{}, fmt.Errorf("failed to build report: %w", err)
	}

	text, err := reports.ToText()
	if err != nil {
		return builtReport{}, fmt.Errorf("failed to render report: %w", err)
	}

	return builtReport{text: text, counts: counts}, nil
}

// parse reads the input with the parser matching its extension.
func (c *Converter) parse() (*types.Table, error) {
	switch strings.ToLower(filepath.Ext(c.inputPath)) {
	case ".csv", ".txt", ".tsv":
		table, err := csvparser.Parse(c.inputPath, c.profile.CSVSettings)
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV: %w", err)
		}
		return table, nil
	case ".xlsx", ".xlsm":
		table, err := xlsxparser.Parse(c.inputPath, c.profile.XLSXSettings)
		if err != nil {
			return nil, fmt.Errorf("failed to parse XLSX: %w", err)
		}
		return table, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(c.inputPath))
	}
}

// writeOutput writes the report to the output directory, named by the
// configured output name format.
func (c *Converter) writeOutput(text string) (string, error) {
	original := strings.TrimSuffix(filepath.Base(c.inputPath), filepath.Ext(c.inputPath))
	fileName := utils.GenerateOutputFileName(c.mainConfig.OutputNameFormat, map[string]string{
		"profile":  c.profile.ProfileCode,
		"report":   c.profile.Report.ID,
		"original": original,
	})
	outputPath := filepath.Join(c.mainConfig.OutputDir, fileName)

	if err := os.WriteFile(outputPath, []byte(text), 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return outputPath, nil
}

// archiveFiles moves the input to the input archive and copies the report
// to the output archive.
func (c *Converter) archiveFiles(outputPath string) error {
	if _, err := c.files.ArchiveInputFile(c.inputPath); err != nil {
		return fmt.Errorf("failed to archive input file: %w", err)
	}
	if _, err := c.files.ArchiveOutputFile(outputPath); err != nil {
		return fmt.Errorf("failed to archive output file: %w", err)
	}
	return nil
}
