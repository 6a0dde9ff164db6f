// =============================================================================
// COUNTER Report Generator - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks the configuration
// and pre-flights every usage export without writing anything.
//
// COMMAND USAGE:
//   counter validate [--file path] [--profile code]
//
// CHECKS:
//   1. The main configuration loads and every profile is valid
//   2. Every input file matches a profile
//   3. Every input file parses, validates and builds into a report
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/counter-reports/internal/converter"
	"github.com/ginjaninja78/counter-reports/internal/validation"
)

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and usage exports without writing output",
	Long: `The validate command loads the main configuration and every report
profile, then runs each usage export in the input directory through the
pipeline as a dry run. Row-level findings are printed per file.

The command fails if any profile is invalid, any file matches no profile,
or any file would fail to convert.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&filePath, "file", "", "Path to a specific file to validate")
	validateCmd.Flags().StringVar(&profileCode, "profile", "", "Profile code to use instead of file name matching")
}

// runValidate pre-flights every input file.
func runValidate(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	mainConfig, profiles, err := loadConfiguration()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Configuration OK: %d report profile(s)\n", len(profiles))

	jobs, unmatched, err := planJobs(mainConfig, profiles)
	if err != nil {
		return err
	}

	failures := len(unmatched)
	for _, file := range unmatched {
		fmt.Fprintf(out, "  ✗ %s: no matching report profile found\n", filepath.Base(file))
	}

	for _, j := range jobs {
		result := converter.New(j.file, j.profile, mainConfig, logger, converter.Options{DryRun: true}).Run(cmd.Context())
		name := filepath.Base(j.file)

		if result.Success {
			fmt.Fprintf(out, "  ✓ %s [%s]: %d rows, %d items, %d warning(s)\n",
				name, result.Profile, result.Stats.RowsProcessed, result.Stats.ItemsCreated, result.Stats.ValidationWarnings)
		} else {
			failures++
			fmt.Fprintf(out, "  ✗ %s [%s]: %v\n", name, result.Profile, result.Error)
		}
		if len(result.ValidationErrors) > 0 {
			fmt.Fprintln(out, validation.FormatErrors(result.ValidationErrors))
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d file(s) failed validation", failures, len(jobs)+len(unmatched))
	}
	return nil
}
