// =============================================================================
// COUNTER Report Generator - Watch Command
// =============================================================================
//
// This file defines the 'watch' command, which keeps running and converts
// every usage export dropped into the input directory.
//
// COMMAND USAGE:
//   counter watch [--settle 2s] [--profile code]
//
// Exports already in the input directory are converted first. The command
// stops on SIGINT or SIGTERM.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/counter-reports/internal/config"
	"github.com/ginjaninja78/counter-reports/internal/converter"
	"github.com/ginjaninja78/counter-reports/internal/watcher"
	"github.com/ginjaninja78/counter-reports/pkg/utils"
)

// settle is the quiet period before a dropped file is converted.
var settle time.Duration

// watchCmd represents the 'watch' command.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Convert usage exports as they arrive in the input directory",
	Long: `The watch command converts the usage exports already in the input
directory, then watches it and converts each new export once it has stopped
changing for the settle period.

Each conversion writes its report, archives the export and, on failure,
writes an error log, exactly as the process command does.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runWatch(ctx, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&settle, "settle", watcher.DefaultSettle, "Quiet period before a new file is converted")
	watchCmd.Flags().StringVar(&profileCode, "profile", "", "Profile code to use instead of file name matching")
}

// runWatch converts existing exports and then watches for new ones.
func runWatch(ctx context.Context, out io.Writer) error {
	mainConfig, profiles, err := loadConfiguration()
	if err != nil {
		return err
	}

	fm := utils.NewFileManager(mainConfig.InputDir, mainConfig.OutputDir, mainConfig.InputArchiveDir, mainConfig.OutputArchiveDir)
	if err := fm.EnsureDirectories(); err != nil {
		return err
	}

	jobs, unmatched, err := planJobs(mainConfig, profiles)
	if err != nil {
		return err
	}
	for _, file := range unmatched {
		reportUnmatched(out, mainConfig, file)
	}
	for _, j := range jobs {
		convertOne(ctx, out, mainConfig, j)
	}

	w := watcher.New(mainConfig.InputDir, utils.DefaultInputPatterns, settle, logger)
	fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", mainConfig.InputDir)

	return w.Run(ctx, func(ctx context.Context, path string) {
		if _, err := os.Stat(path); err != nil {
			return
		}
		profile, ok := pickProfile(profiles, path)
		if !ok {
			reportUnmatched(out, mainConfig, path)
			return
		}
		convertOne(ctx, out, mainConfig, job{file: path, profile: profile})
	})
}

// pickProfile returns the forced profile or the one matching path.
func pickProfile(profiles map[string]*config.ReportProfile, path string) (*config.ReportProfile, bool) {
	if profileCode != "" {
		p, ok := profiles[profileCode]
		return p, ok
	}
	return config.MatchProfile(profiles, path)
}

// convertOne converts a single file and logs any failure.
func convertOne(ctx context.Context, out io.Writer, mainConfig *config.MainConfig, j job) {
	result := converter.New(j.file, j.profile, mainConfig, logger, converter.Options{}).Run(ctx)
	name := filepath.Base(j.file)

	entries := validationEntries(name, result)
	if result.Success {
		fmt.Fprintf(out, "  ✓ %s -> %s (%d items)\n", name, result.OutputFile, result.Stats.ItemsCreated)
	} else {
		fmt.Fprintf(out, "  ✗ %s: %v\n", name, result.Error)
		entries = append(entries, utils.ErrorLogEntry{
			Timestamp:    time.Now(),
			FileName:     name,
			ErrorType:    classifyError(result.Error),
			ErrorMessage: result.Error.Error(),
		})
	}
	if !result.Success || result.Stats.ValidationErrors > 0 {
		writeErrorLog(entries, mainConfig.OutputDir)
	}
}

// reportUnmatched prints and logs a file that no profile matches.
func reportUnmatched(out io.Writer, mainConfig *config.MainConfig, path string) {
	name := filepath.Base(path)
	fmt.Fprintf(out, "  ✗ %s: no matching report profile found\n", name)
	writeErrorLog([]utils.ErrorLogEntry{{
		Timestamp:    time.Now(),
		FileName:     name,
		ErrorType:    "configuration",
		ErrorMessage: "no matching report profile found",
	}}, mainConfig.OutputDir)
}

func writeErrorLog(entries []utils.ErrorLogEntry, outputDir string) {
	if path, err := utils.WriteErrorLog(entries, outputDir); err != nil {
		logger.Error("Failed to write error log", zap.Error(err))
	} else if path != "" {
		logger.Info("Wrote error log", zap.String("path", path))
	}
}
