// =============================================================================
// COUNTER Report Generator - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (counter)
//   ├── buildCmd (counter build)
//   ├── processCmd (counter process)
//   ├── validateCmd (counter validate)
//   ├── versionCmd (counter version)
//   └── watchCmd (counter watch)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Setting up logging before any subcommand runs
//   3. Flushing the logger after the subcommand returns
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/counter-reports/internal/config"
	"github.com/ginjaninja78/counter-reports/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// logger is the structured logger shared by every command. It is replaced
// once the main configuration names a log level.
var logger = zap.NewNop()

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "counter",
	Short: "COUNTER Report Generator - Build COUNTER 4.1 usage reports as XML",
	Long: `COUNTER Report Generator builds COUNTER 4.1 usage reports and writes them
as schema-conformant XML.

Reports are built either from a loosely structured YAML/JSON document or
from tabular usage exports (CSV or XLSX) described by report profiles.

Key Features:
  - Accepts several equivalent input shapes for every report entity
  - Closed enumeration checks before any output is produced
  - Per-report profiles with column mapping and transformation rules
  - Row-level pre-flight validation with detailed error logs
  - Concurrent processing of usage exports with automatic archival

Example Usage:
  counter build --input report.yaml        # Build a report from a loose document
  counter process                          # Convert every export in the input directory
  counter process --config ./my.yaml       # Use a custom configuration file
  counter validate                         # Pre-flight exports without writing output
  counter watch                            # Convert exports as they are dropped in`,

	SilenceUsage: true,

	// PersistentPreRunE sets up logging before any subcommand runs.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New("info", verbose)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},

	// PersistentPostRun flushes buffered log entries.
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},

	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is provided, print the help message.
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// loadConfiguration loads the main configuration and every report profile,
// and re-levels the logger to the configured log level.
//
// RETURNS:
//   - The main configuration.
//   - The profiles keyed by profile code.
//   - An error if either cannot be loaded.
func loadConfiguration() (*config.MainConfig, map[string]*config.ReportProfile, error) {
	mainConfig, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load main config: %w", err)
	}

	l, err := logging.New(mainConfig.LogLevel, verbose)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	_ = logger.Sync()
	logger = l

	profiles, err := config.LoadProfiles(mainConfig.ProfilesDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load report profiles: %w", err)
	}

	logger.Debug("Loaded configuration",
		zap.String("config", cfgFile),
		zap.String("profiles_dir", mainConfig.ProfilesDir),
		zap.Int("profiles", len(profiles)),
	)

	return mainConfig, profiles, nil
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init sets up the global flags.
func init() {
	// --config flag: Allows the user to specify a custom configuration file.
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	// --verbose flag: Enables debug logging.
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}
