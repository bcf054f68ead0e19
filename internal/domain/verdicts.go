package domain

import (
	"time"

	"github.com/google/uuid"
)

// ConfidenceLevel buckets an authenticity confidence score for display.
type ConfidenceLevel string

// Confidence level values.
const (
	ConfidenceLevelLow    ConfidenceLevel = "low"
	ConfidenceLevelMedium ConfidenceLevel = "medium"
	ConfidenceLevelHigh   ConfidenceLevel = "high"
)

// Confidence thresholds shared by the authenticity checker and its verdict.
const (
	// AuthenticThreshold is the minimum confidence score for a citation to
	// be considered authentic.
	AuthenticThreshold = 0.6

	// HighConfidenceThreshold is the minimum score for ConfidenceLevelHigh.
	HighConfidenceThreshold = 0.8
)

// ConfidenceLevelFor maps a confidence score to its display bucket.
func ConfidenceLevelFor(score float64) ConfidenceLevel {
	switch {
	case score >= HighConfidenceThreshold:
		return ConfidenceLevelHigh
	case score >= AuthenticThreshold:
		return ConfidenceLevelMedium
	default:
		return ConfidenceLevelLow
	}
}

// AuthenticityVerdict is the outcome of checking whether a citation refers
// to a real, registered source. It is derived once and never mutated.
type AuthenticityVerdict struct {
	// IsAuthentic holds iff ConfidenceScore >= AuthenticThreshold.
	IsAuthentic bool `json:"is_authentic"`

	// ConfidenceScore is the combined confidence in [0,1].
	ConfidenceScore float64 `json:"confidence_score"`

	// ConfidenceLevel buckets ConfidenceScore for display.
	ConfidenceLevel ConfidenceLevel `json:"confidence_level"`

	// SourcesChecked names the external registries consulted.
	SourcesChecked []string `json:"sources_checked,omitempty"`

	// MethodsUsed names the verification methods that contributed.
	MethodsUsed []string `json:"methods_used,omitempty"`

	// VerificationDetails holds human-readable per-method outcomes.
	VerificationDetails []string `json:"verification_details,omitempty"`

	// DebugInfo holds free-form diagnostic notes for troubleshooting.
	DebugInfo []string `json:"debug_info,omitempty"`
}

// ContentVerdict is the outcome of comparing claimed fields against the
// registry's authoritative record for the same identifier.
//
// IsConsistent depends only on Errors being empty; ConsistencyScore is a
// separate soft signal for display and may drop below 1.0 on sub-checks
// that produced only warnings. The two axes are intentionally decoupled.
type ContentVerdict struct {
	IsConsistent bool `json:"is_consistent"`

	// ConsistencyScore starts at 1.0 and is decremented by a fixed penalty
	// per failed sub-check, floored at 0.0.
	ConsistencyScore float64 `json:"consistency_score"`

	// Errors are confident mismatches between claimed and verified metadata.
	Errors []string `json:"content_errors,omitempty"`

	// Warnings are partial or ambiguous mismatches.
	Warnings []string `json:"content_warnings,omitempty"`
}

// FormatVerdict is the outcome of the structural citation-style checks.
// It is independent of network access and of extraction.
type FormatVerdict struct {
	// IsCompliant holds iff Errors is empty.
	IsCompliant bool `json:"is_compliant"`

	// Score starts at 1.0 minus fixed per-check deductions, floored at 0.0.
	Score float64 `json:"score"`

	Errors      []string `json:"errors,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// OverallStatus is the layered per-citation status folded from the
// authenticity, content and format verdicts.
type OverallStatus string

// Overall status values, in decreasing priority of the conditions that
// produce them (content over format, errors over warnings).
const (
	StatusValid                  OverallStatus = "valid"
	StatusLikelyFake             OverallStatus = "likely_fake"
	StatusContentErrors          OverallStatus = "authentic_with_content_errors"
	StatusContentAndFormatIssues OverallStatus = "authentic_with_content_and_format_issues"
	StatusContentWarnings        OverallStatus = "authentic_with_content_warnings"
	StatusFormatErrors           OverallStatus = "authentic_with_format_errors"
	StatusFormatWarnings         OverallStatus = "authentic_with_format_warnings"
	StatusProcessingError        OverallStatus = "processing_error"
)

// Result is the aggregated, self-describing verification record for one
// citation. It is the only object the presentation layer reads; rendering
// it must require no further calls.
type Result struct {
	Citation Citation `json:"citation"`

	Elements Elements `json:"elements"`

	Authenticity AuthenticityVerdict `json:"authenticity"`

	// Content and Format are nil when the citation was judged likely fake:
	// their preconditions ("assume real source") were not met.
	Content *ContentVerdict `json:"content_check,omitempty"`
	Format  *FormatVerdict  `json:"format_check,omitempty"`

	OverallStatus OverallStatus `json:"overall_status"`

	// ProcessingErrors records unexpected internal faults caught at the
	// per-citation boundary.
	ProcessingErrors []string `json:"processing_errors,omitempty"`
}

// BatchSummary aggregates counts over one verification batch.
type BatchSummary struct {
	BatchID uuid.UUID `json:"batch_id"`

	// Total is the number of citations processed (noise lines excluded).
	Total int `json:"total"`

	// ByStatus counts results per overall status.
	ByStatus map[OverallStatus]int `json:"by_status"`

	// MeanExtractionConfidence averages extraction confidence over the batch.
	// Zero when the batch is empty.
	MeanExtractionConfidence float64 `json:"mean_extraction_confidence"`

	// Elapsed is the wall-clock duration of the batch.
	Elapsed time.Duration `json:"elapsed"`
}

// BatchResult is the full outcome of one verification batch: per-citation
// results in input order plus the batch summary.
type BatchResult struct {
	Results []Result     `json:"results"`
	Summary BatchSummary `json:"summary"`
}

// Summarize builds a BatchSummary over the given results.
func Summarize(batchID uuid.UUID, results []Result, elapsed time.Duration) BatchSummary {
	s := BatchSummary{
		BatchID:  batchID,
		Total:    len(results),
		ByStatus: make(map[OverallStatus]int),
		Elapsed:  elapsed,
	}
	var confidenceSum float64
	for _, r := range results {
		s.ByStatus[r.OverallStatus]++
		confidenceSum += r.Elements.Confidence
	}
	if len(results) > 0 {
		s.MeanExtractionConfidence = confidenceSum / float64(len(results))
	}
	return s
}
