package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "callisto",
	Short: "Callisto - batch document PII detection and redaction service",
	Long: `Callisto is a batch document processing service that detects and redacts
sensitive entities in extracted documents.

It provides:
  - Batch detect, redact, extract, and hybrid-detect operations
  - Text-to-geometry alignment: every finding maps back to page coordinates
  - Tiered degradation under lock contention and memory pressure
  - Compliance audit records for every batch
  - Prometheus metrics, health probes, and OpenTelemetry tracing`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
