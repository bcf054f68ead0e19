package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/refaudit/citation-verification-service/internal/domain"
	"github.com/refaudit/citation-verification-service/internal/lexical"
	"github.com/refaudit/citation-verification-service/internal/registries/crossref"
	"github.com/refaudit/citation-verification-service/internal/registries/doiresolver"
	"github.com/refaudit/citation-verification-service/internal/registries/openlibrary"
	"github.com/refaudit/citation-verification-service/internal/registries/webprobe"
	"github.com/refaudit/citation-verification-service/internal/verify"
)

var (
	verifyStyle      string
	verifyJSONOutput bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify [file]",
	Short: "Verify a reference list",
	Long:  "Reads a free-text reference list (one citation per line) from a file or stdin and verifies every citation against external registries. Exits non-zero when any citation is likely fake or has content errors.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		style, err := resolveStyle(verifyStyle)
		if err != nil {
			return err
		}

		batchText, err := readReferences(args)
		if err != nil {
			return err
		}

		verifier := buildVerifier()
		batch, err := verifier.Verify(ctx, batchText, style)
		if err != nil {
			// Partial results from an interrupted batch are still worth
			// reporting before surfacing the cancellation.
			printReport(cmd.OutOrStdout(), batch)
			return err
		}

		if err := printReport(cmd.OutOrStdout(), batch); err != nil {
			return err
		}

		if n := countFailed(batch.Results); n > 0 {
			return fmt.Errorf("%d of %d citations failed verification", n, batch.Summary.Total)
		}
		return nil
	},
}

func init() {
	verifyCmd.Flags().StringVar(&verifyStyle, "style", "", "citation style to check against (default from config)")
	verifyCmd.Flags().BoolVar(&verifyJSONOutput, "json", false, "emit the full report as JSON")
	rootCmd.AddCommand(verifyCmd)
}

// resolveStyle applies the configured default when the flag is empty and
// rejects styles without a format checker.
func resolveStyle(flagValue string) (verify.Style, error) {
	style := verify.Style(flagValue)
	if style == "" {
		style = verify.Style(cfg.Verification.DefaultStyle)
	}
	if style != "" && !verify.SupportedStyle(style) {
		return "", fmt.Errorf("unsupported style: %s", style)
	}
	return style, nil
}

// readReferences reads the reference list from the named file, or from
// stdin when no file is given.
func readReferences(args []string) (string, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read references: %w", err)
	}
	return string(data), nil
}

// buildVerifier assembles the verification pipeline from the loaded
// configuration. The CLI runs without metrics.
func buildVerifier() *verify.Verifier {
	resolver := doiresolver.New(doiresolver.Config{
		BaseURL:   cfg.Registries.DOIResolver.BaseURL,
		Timeout:   cfg.Registries.DOIResolver.Timeout,
		RateLimit: cfg.Registries.DOIResolver.RateLimit,
		BurstSize: cfg.Registries.DOIResolver.BurstSize,
	})
	works := crossref.New(crossref.Config{
		BaseURL:   cfg.Registries.CrossRef.BaseURL,
		Email:     cfg.Registries.Email,
		Timeout:   cfg.Registries.CrossRef.Timeout,
		RateLimit: cfg.Registries.CrossRef.RateLimit,
		BurstSize: cfg.Registries.CrossRef.BurstSize,
	})
	books := openlibrary.New(openlibrary.Config{
		BaseURL:   cfg.Registries.OpenLibrary.BaseURL,
		Timeout:   cfg.Registries.OpenLibrary.Timeout,
		RateLimit: cfg.Registries.OpenLibrary.RateLimit,
		BurstSize: cfg.Registries.OpenLibrary.BurstSize,
	})
	prober := webprobe.New(webprobe.Config{
		Timeout:   cfg.Registries.WebProbe.Timeout,
		RateLimit: cfg.Registries.WebProbe.RateLimit,
		BurstSize: cfg.Registries.WebProbe.BurstSize,
	})

	abbrev := lexical.NewResolver(cfg.Abbreviations)
	authenticity := verify.NewAuthenticityChecker(resolver, works, books, prober)
	content := verify.NewContentChecker(works, abbrev)
	return verify.NewVerifier(authenticity, content, verify.VerifierConfig{
		CitationDelay:     cfg.Verification.CitationDelay,
		Workers:           cfg.Verification.Workers,
		MinCitationLength: cfg.Verification.MinCitationLength,
	}, logger, nil)
}

// countFailed counts citations whose status warrants a non-zero exit.
func countFailed(results []domain.Result) int {
	n := 0
	for _, r := range results {
		switch r.OverallStatus {
		case domain.StatusLikelyFake, domain.StatusContentErrors, domain.StatusProcessingError:
			n++
		}
	}
	return n
}

// printReport writes the verification report, either as JSON or as a
// readable text summary.
func printReport(w io.Writer, batch domain.BatchResult) error {
	if verifyJSONOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(batch)
	}

	for _, r := range batch.Results {
		fmt.Fprintf(w, "line %d: %s\n", r.Citation.LineNumber, r.OverallStatus)
		fmt.Fprintf(w, "  %s\n", r.Citation.RawText)
		fmt.Fprintf(w, "  authenticity: %.2f (%s)\n",
			r.Authenticity.ConfidenceScore, r.Authenticity.ConfidenceLevel)
		for _, detail := range r.Authenticity.VerificationDetails {
			fmt.Fprintf(w, "    %s\n", detail)
		}
		if r.Content != nil {
			for _, e := range r.Content.Errors {
				fmt.Fprintf(w, "  content error: %s\n", e)
			}
			for _, warning := range r.Content.Warnings {
				fmt.Fprintf(w, "  content warning: %s\n", warning)
			}
		}
		if r.Format != nil {
			for _, e := range r.Format.Errors {
				fmt.Fprintf(w, "  format error: %s\n", e)
			}
			for _, warning := range r.Format.Warnings {
				fmt.Fprintf(w, "  format warning: %s\n", warning)
			}
			for _, s := range r.Format.Suggestions {
				fmt.Fprintf(w, "  suggestion: %s\n", s)
			}
		}
		for _, e := range r.ProcessingErrors {
			fmt.Fprintf(w, "  processing error: %s\n", e)
		}
	}

	fmt.Fprintf(w, "\n%d citations in %s\n", batch.Summary.Total, batch.Summary.Elapsed)
	statuses := make([]string, 0, len(batch.Summary.ByStatus))
	for status := range batch.Summary.ByStatus {
		statuses = append(statuses, string(status))
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		fmt.Fprintf(w, "  %-42s %d\n", status, batch.Summary.ByStatus[domain.OverallStatus(status)])
	}
	return nil
}
