// =============================================================================
// COUNTER Report Generator - Process Command
// =============================================================================
//
// This file defines the 'process' command, which converts usage exports in
// the input directory into COUNTER reports. It orchestrates the pipeline for
// every file and writes the run logs.
//
// COMMAND USAGE:
//   counter process [flags]
//
// FLAGS:
//   --dry-run  : Run every step but write and archive nothing
//   --file     : Process only this file
//   --profile  : Use this profile code instead of matching by file name
//
// PROCESSING PIPELINE:
//   1. Load the main configuration and report profiles
//   2. Discover usage exports in the input directory
//   3. Match each file to a report profile
//   4. Convert the files concurrently, at most max_concurrency at a time
//   5. Write the error log and processing summary
//   6. Remove archives older than archive_retention_days
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/counter-reports/internal/config"
	"github.com/ginjaninja78/counter-reports/internal/converter"
	"github.com/ginjaninja78/counter-reports/internal/counter"
	"github.com/ginjaninja78/counter-reports/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun runs the pipeline without writing output files.
var dryRun bool

// filePath is the path to a specific file to process.
var filePath string

// profileCode forces a profile instead of file name matching.
var profileCode string

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Convert usage exports into COUNTER reports",
	Long: `The process command scans the input directory for usage exports (CSV or
XLSX), matches each one to a report profile, and converts it to a COUNTER
XML report.

Files are processed concurrently. Each file is processed independently, and
errors in one file do not affect the processing of others.

On successful processing:
  - The generated XML is placed in the output directory
  - The original export is moved to the input archive
  - A copy of the XML is placed in the output archive

After the run:
  - A processing summary is written to the output directory
  - An error log is written to the output directory if anything failed`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd.Context(), cmd)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run every step but write and archive nothing")
	processCmd.Flags().StringVar(&filePath, "file", "", "Path to a specific file to process")
	processCmd.Flags().StringVar(&profileCode, "profile", "", "Profile code to use instead of file name matching")
}

// =============================================================================
// JOB PLANNING
// =============================================================================

// job is one input file and the profile it is converted with.
type job struct {
	file    string
	profile *config.ReportProfile
}

// planJobs selects the input files and pairs each with a profile.
//
// RETURNS:
//   - The jobs to run, in file name order.
//   - The files no profile matched.
//   - An error if the forced file or profile does not exist.
func planJobs(mainConfig *config.MainConfig, profiles map[string]*config.ReportProfile) ([]job, []string, error) {
	var files []string
	if filePath != "" {
		if _, err := os.Stat(filePath); err != nil {
			return nil, nil, fmt.Errorf("input file not found: %w", err)
		}
		files = []string{filePath}
	} else {
		fm := utils.NewFileManager(mainConfig.InputDir, mainConfig.OutputDir, mainConfig.InputArchiveDir, mainConfig.OutputArchiveDir)
		discovered, err := fm.DiscoverInputFiles()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to discover input files: %w", err)
		}
		files = discovered
	}

	var forced *config.ReportProfile
	if profileCode != "" {
		p, ok := profiles[profileCode]
		if !ok {
			return nil, nil, fmt.Errorf("unknown profile %q", profileCode)
		}
		forced = p
	}

	var (
		jobs      []job
		unmatched []string
	)
	for _, file := range files {
		if forced != nil {
			jobs = append(jobs, job{file: file, profile: forced})
			continue
		}
		if p, ok := config.MatchProfile(profiles, file); ok {
			jobs = append(jobs, job{file: file, profile: p})
		} else {
			unmatched = append(unmatched, file)
		}
	}
	return jobs, unmatched, nil
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess converts every planned file and writes the run logs.
func runProcess(ctx context.Context, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()
	summary := utils.ProcessingSummary{StartTime: time.Now(), DryRun: dryRun}

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	fmt.Fprintln(out, "=== COUNTER Report Generator ===")
	mainConfig, profiles, err := loadConfiguration()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Loaded %d report profile(s)\n", len(profiles))

	if !dryRun {
		fm := utils.NewFileManager(mainConfig.InputDir, mainConfig.OutputDir, mainConfig.InputArchiveDir, mainConfig.OutputArchiveDir)
		if err := fm.EnsureDirectories(); err != nil {
			return err
		}
	}

	// =========================================================================
	// STEP 2-3: DISCOVER AND MATCH INPUT FILES
	// =========================================================================

	jobs, unmatched, err := planJobs(mainConfig, profiles)
	if err != nil {
		return err
	}

	var errorEntries []utils.ErrorLogEntry
	for _, file := range unmatched {
		logger.Warn("No report profile matches file", zap.String("file", filepath.Base(file)))
		summary.AddFailure(utils.FailedFileInfo{
			InputFile:    file,
			ErrorMessage: "no matching report profile found",
			ErrorType:    "configuration",
		})
		errorEntries = append(errorEntries, utils.ErrorLogEntry{
			Timestamp:    time.Now(),
			FileName:     filepath.Base(file),
			ErrorType:    "configuration",
			ErrorMessage: "no matching report profile found",
		})
		fmt.Fprintf(out, "  ✗ %s: no matching report profile found\n", filepath.Base(file))
	}

	if len(jobs) == 0 && len(unmatched) == 0 {
		fmt.Fprintln(out, "No usage exports found in the input directory.")
		return nil
	}

	fmt.Fprintf(out, "Found %d file(s) to process\n", len(jobs)+len(unmatched))

	// =========================================================================
	// STEP 4: PROCESS FILES CONCURRENTLY
	// =========================================================================

	results, err := convertAll(ctx, mainConfig, jobs)
	if err != nil {
		return err
	}

	for _, result := range results {
		name := filepath.Base(result.FilePath)
		errorEntries = append(errorEntries, validationEntries(name, result)...)

		if result.Success {
			summary.Add(utils.ProcessedFileInfo{
				InputFile:        result.FilePath,
				OutputFile:       result.OutputFile,
				Profile:          result.Profile,
				Rows:             result.Stats.RowsProcessed,
				SkippedRows:      result.Stats.RowsSkipped,
				Items:            result.Stats.ItemsCreated,
				Metrics:          result.Stats.MetricsCreated,
				Instances:        result.Stats.InstancesCreated,
				ValidationErrors: result.Stats.ValidationErrors,
				ProcessTime:      result.Stats.ProcessingTime,
			})
			target := result.OutputFile
			if dryRun {
				target = "(dry run)"
			}
			fmt.Fprintf(out, "  ✓ %s -> %s (%d items)\n", name, target, result.Stats.ItemsCreated)
			continue
		}

		errorType := classifyError(result.Error)
		summary.AddFailure(utils.FailedFileInfo{
			InputFile:        result.FilePath,
			ErrorMessage:     result.Error.Error(),
			ErrorType:        errorType,
			ValidationErrors: result.Stats.ValidationErrors,
		})
		errorEntries = append(errorEntries, utils.ErrorLogEntry{
			Timestamp:    time.Now(),
			FileName:     name,
			ErrorType:    errorType,
			ErrorMessage: result.Error.Error(),
		})
		fmt.Fprintf(out, "  ✗ %s: %v\n", name, result.Error)
	}

	// =========================================================================
	// STEP 5: WRITE LOGS AND PRINT SUMMARY
	// =========================================================================

	summary.EndTime = time.Now()

	if errorLog, err := utils.WriteErrorLog(errorEntries, mainConfig.OutputDir); err != nil {
		logger.Error("Failed to write error log", zap.Error(err))
	} else if errorLog != "" {
		fmt.Fprintf(out, "\nErrors have been logged to %s\n", errorLog)
	}

	if summaryLog, err := utils.WriteSummaryLog(summary, mainConfig.OutputDir); err != nil {
		logger.Error("Failed to write processing summary", zap.Error(err))
	} else {
		logger.Info("Wrote processing summary", zap.String("path", summaryLog))
	}

	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", summary.TotalFiles)
	fmt.Fprintf(out, "Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Fprintf(out, "Errors:          %d\n", summary.FailedFiles)
	fmt.Fprintf(out, "Report items:    %d\n", summary.TotalItems)
	fmt.Fprintf(out, "Time elapsed:    %s\n", summary.EndTime.Sub(summary.StartTime))

	// =========================================================================
	// STEP 6: ARCHIVE RETENTION
	// =========================================================================

	if mainConfig.ArchiveRetentionDays > 0 && !dryRun {
		maxAge := time.Duration(mainConfig.ArchiveRetentionDays) * 24 * time.Hour
		for _, dir := range []string{mainConfig.InputArchiveDir, mainConfig.OutputArchiveDir} {
			if dir == "" {
				continue
			}
			removed, err := utils.CleanOldArchives(dir, maxAge)
			if err != nil {
				logger.Warn("Failed to clean archive", zap.String("dir", dir), zap.Error(err))
				continue
			}
			if removed > 0 {
				logger.Info("Removed old archives", zap.String("dir", dir), zap.Int("removed", removed))
			}
		}
	}

	return nil
}

// convertAll runs one converter per job, at most MaxConcurrency at a time.
// A failed file never cancels the others; only the parent context does.
func convertAll(ctx context.Context, mainConfig *config.MainConfig, jobs []job) ([]converter.Result, error) {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(max(mainConfig.MaxConcurrency, 1))

	var (
		mu      sync.Mutex
		results = make([]converter.Result, 0, len(jobs))
	)

	for _, j := range jobs {
		j := j
		eg.Go(func() error {
			conv := converter.New(j.file, j.profile, mainConfig, logger, converter.Options{DryRun: dryRun})
			result := conv.Run(egCtx)

			mu.Lock()
			results = append(results, result)
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("processing interrupted: %w", err)
	}

	sort.Slice(results, func(a, b int) bool { return results[a].FilePath < results[b].FilePath })
	return results, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// classifyError names the kind of failure for the run logs.
func classifyError(err error) string {
	switch {
	case errors.Is(err, converter.ErrValidation), errors.Is(err, converter.ErrNoRows):
		return "validation"
	case errors.Is(err, converter.ErrUnsupportedFormat):
		return "unsupported_format"
	case errors.Is(err, counter.ErrShape), errors.Is(err, counter.ErrType),
		errors.Is(err, counter.ErrEnumeration), errors.Is(err, counter.ErrArity):
		return "report"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "interrupted"
	default:
		return "processing"
	}
}

// validationEntries turns a result's row-level findings into error log entries.
func validationEntries(fileName string, result converter.Result) []utils.ErrorLogEntry {
	entries := make([]utils.ErrorLogEntry, 0, len(result.ValidationErrors))
	for _, ve := range result.ValidationErrors {
		entries = append(entries, utils.ErrorLogEntry{
			Timestamp:    time.Now(),
			FileName:     fileName,
			ErrorType:    "validation:" + ve.Rule,
			ErrorMessage: ve.Message,
			Severity:     ve.Severity,
			RowNumber:    ve.RowNumber,
			FieldName:    ve.Field,
			FieldValue:   ve.Value,
		})
	}
	return entries
}
