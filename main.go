// =============================================================================
// COUNTER Report Generator - Main Entry Point
// =============================================================================
//
// This is the main entry point for the COUNTER report generator CLI. It
// delegates command execution to the cmd package.
//
// USAGE:
//   counter build --input doc.yaml   - Build a report from a loose YAML/JSON document
//   counter process                  - Convert every usage export in the input directory
//   counter validate                 - Pre-flight configuration and usage exports
//   counter watch                    - Convert usage exports as they arrive
//   counter version                  - Display the application version
//
// ARCHITECTURE:
//   - cmd/                : CLI command definitions (Cobra)
//   - internal/counter/   : COUNTER 4.1 node types, validators and document root
//   - internal/xmlwriter/ : element tree to XML text
//   - internal/...        : config, parsers, validation and the conversion pipeline
//   - internal/watcher/   : input directory watcher for the watch command
//   - pkg/utils/          : output naming, archival and run logs
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/counter-reports/cmd"
)

func main() {
	cmd.Execute()
}
