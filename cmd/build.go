// =============================================================================
// COUNTER Report Generator - Build Command
// =============================================================================
//
// This file defines the 'build' command, which turns a loosely structured
// report document into COUNTER XML.
//
// COMMAND USAGE:
//   counter build --input report.yaml [--output report.xml]
//
// INPUT:
//   A YAML or JSON document in any of the shapes the report builder accepts,
//   e.g. a mapping with a "Report" key or a sequence of reports. Use "-" to
//   read from standard input.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/counter-reports/internal/counter"
)

var (
	// buildInput is the path to the loose report document.
	buildInput string

	// buildOutput is the path of the XML file to write. Empty writes to stdout.
	buildOutput string
)

// buildCmd represents the 'build' command.
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a COUNTER report from a YAML or JSON document",
	Long: `The build command reads a report document in YAML or JSON, builds and
validates the COUNTER report tree, and writes the XML document.

Any failure names the report entity and the offending value; nothing is
written unless the whole document is valid.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuild(cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVarP(&buildInput, "input", "i", "", "Path to the report document (\"-\" for stdin)")
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "Path of the XML file to write (default stdout)")
	_ = buildCmd.MarkFlagRequired("input")
}

// runBuild reads, builds and writes one report document.
func runBuild(stdin io.Reader, stdout io.Writer) error {
	var (
		data []byte
		err  error
	)
	if buildInput == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(buildInput)
	}
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse input: %w", err)
	}

	doc, err := counter.BuildReports(raw)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	text, err := doc.ToText()
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	if buildOutput == "" {
		_, err = io.WriteString(stdout, text)
		return err
	}

	if err := os.WriteFile(buildOutput, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	logger.Info("Wrote report",
		zap.String("input", buildInput),
		zap.String("output", buildOutput),
		zap.Int("reports", len(doc.Reports())),
	)
	return nil
}
