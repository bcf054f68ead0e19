// Package main provides the refaudit command line tool for auditing
// reference lists.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/refaudit/citation-verification-service/internal/config"
	"github.com/refaudit/citation-verification-service/internal/observability"
)

var (
	cfg    *config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "refaudit",
	Short:         "Audit academic reference lists",
	Long:          "Parses free-text citations, checks them against bibliographic registries, and reports authenticity, content consistency and format compliance per citation.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		logger = observability.NewLogger(observability.LoggingConfig{
			Level:      cfg.Logging.Level,
			Format:     cfg.Logging.Format,
			Output:     cfg.Logging.Output,
			AddSource:  cfg.Logging.AddSource,
			TimeFormat: cfg.Logging.TimeFormat,
		}).With().Str("component", "cli").Logger()

		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
