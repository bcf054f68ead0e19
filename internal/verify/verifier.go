package verify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/refaudit/citation-verification-service/internal/domain"
	"github.com/refaudit/citation-verification-service/internal/extract"
	"github.com/refaudit/citation-verification-service/internal/observability"
)

// DefaultMinCitationLength is the minimum line length considered a
// citation. Shorter non-blank lines are noise and excluded from results.
const DefaultMinCitationLength = 20

// VerifierConfig holds batch-processing policy for the orchestrator.
type VerifierConfig struct {
	// CitationDelay is the pause between citations in sequential mode,
	// imposed to respect aggregate registry quotas. Zero disables it.
	CitationDelay time.Duration

	// Workers bounds concurrent citation processing. Values <= 1 select
	// strict sequential processing in input order.
	Workers int

	// MinCitationLength overrides DefaultMinCitationLength when positive.
	MinCitationLength int
}

// Verifier drives the per-citation pipeline: extraction, authenticity,
// then content and format checks, folding the verdicts into one layered
// status per citation plus a batch summary.
type Verifier struct {
	authenticity *AuthenticityChecker
	content      *ContentChecker
	cfg          VerifierConfig
	logger       zerolog.Logger
	metrics      *observability.Metrics
}

// NewVerifier creates a verifier. metrics may be nil when no Prometheus
// registry is wired, e.g. in the CLI.
func NewVerifier(authenticity *AuthenticityChecker, content *ContentChecker, cfg VerifierConfig, logger zerolog.Logger, metrics *observability.Metrics) *Verifier {
	if cfg.MinCitationLength <= 0 {
		cfg.MinCitationLength = DefaultMinCitationLength
	}
	return &Verifier{
		authenticity: authenticity,
		content:      content,
		cfg:          cfg,
		logger:       logger,
		metrics:      metrics,
	}
}

// Verify processes one batch of citation lines against the given citation
// style and returns per-citation results in input order plus a summary.
//
// A single bad line never aborts the batch: extraction diagnostics,
// registry failures and even internal faults are contained per citation.
// On context cancellation the results accumulated so far are returned
// together with the context error; they remain valid and ordered.
func (v *Verifier) Verify(ctx context.Context, batchText string, style Style) (domain.BatchResult, error) {
	batchID := uuid.New()
	started := time.Now()

	citations := v.splitBatch(batchText)
	logger := observability.WithBatchContext(v.logger, batchID.String(), len(citations))
	logger.Info().Str("style", string(style)).Msg("verification batch started")
	if v.metrics != nil {
		v.metrics.RecordBatchStarted()
	}

	formatChecker := NewFormatChecker(style)

	var results []domain.Result
	var err error
	if v.cfg.Workers > 1 {
		results, err = v.processConcurrent(ctx, citations, formatChecker)
	} else {
		results, err = v.processSequential(ctx, citations, formatChecker)
	}

	elapsed := time.Since(started)
	batch := domain.BatchResult{
		Results: results,
		Summary: domain.Summarize(batchID, results, elapsed),
	}

	if v.metrics != nil {
		for _, result := range results {
			v.metrics.RecordCitation(string(result.OverallStatus),
				result.Elements.Confidence, result.Authenticity.ConfidenceScore)
		}
		if err != nil {
			v.metrics.RecordBatchCancelled()
		} else {
			v.metrics.RecordBatchCompleted(elapsed.Seconds())
		}
	}

	event := logger.Info()
	if err != nil {
		event = logger.Warn().Err(err)
	}
	event.Int("results", len(results)).Dur("elapsed", elapsed).Msg("verification batch finished")
	return batch, err
}

// splitBatch turns raw batch text into citation records, skipping blank
// lines and lines too short to be citations. Line numbers count every input
// line, including skipped ones, so they match the caller's view of the text.
func (v *Verifier) splitBatch(batchText string) []domain.Citation {
	var citations []domain.Citation
	for i, line := range strings.Split(batchText, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if len(trimmed) < v.cfg.MinCitationLength {
			if v.metrics != nil {
				v.metrics.RecordCitationSkipped()
			}
			continue
		}
		citations = append(citations, domain.Citation{RawText: trimmed, LineNumber: i + 1})
	}
	return citations
}

// processSequential handles citations one at a time in input order, with
// the configured delay between them. Cancellation is honored between
// citations; accumulated results stay valid.
func (v *Verifier) processSequential(ctx context.Context, citations []domain.Citation, formatChecker *FormatChecker) ([]domain.Result, error) {
	results := make([]domain.Result, 0, len(citations))
	for i, citation := range citations {
		if i > 0 && v.cfg.CitationDelay > 0 {
			select {
			case <-ctx.Done():
				return results, ctx.Err()
			case <-time.After(v.cfg.CitationDelay):
			}
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, v.processCitation(ctx, citation, formatChecker))
	}
	return results, nil
}

// processConcurrent handles citations on a bounded worker pool. Results are
// written into input-order slots, so the returned slice is deterministic
// regardless of completion order.
func (v *Verifier) processConcurrent(ctx context.Context, citations []domain.Citation, formatChecker *FormatChecker) ([]domain.Result, error) {
	slots := make([]*domain.Result, len(citations))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.cfg.Workers)
	for i, citation := range citations {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result := v.processCitation(gctx, citation, formatChecker)
			slots[i] = &result
			return nil
		})
	}
	err := g.Wait()

	results := make([]domain.Result, 0, len(citations))
	for _, slot := range slots {
		if slot != nil {
			results = append(results, *slot)
		}
	}
	return results, err
}

// processCitation runs the full pipeline for one citation. Any panic below
// this frame is converted into a processing_error result; the batch
// continues with the next citation.
func (v *Verifier) processCitation(ctx context.Context, citation domain.Citation, formatChecker *FormatChecker) (result domain.Result) {
	result.Citation = citation

	defer func() {
		if r := recover(); r != nil {
			result.OverallStatus = domain.StatusProcessingError
			result.ProcessingErrors = append(result.ProcessingErrors,
				fmt.Sprintf("internal fault: %v", r))
			if v.metrics != nil {
				v.metrics.RecordProcessingError()
			}
			faultLogger := observability.WithCitationContext(v.logger, citation.LineNumber)
			faultLogger.Error().Interface("panic", r).Msg("citation processing failed")
		}
	}()

	logger := observability.WithCitationContext(v.logger, citation.LineNumber)

	result.Elements = extract.Extract(citation.RawText)
	result.Authenticity = v.authenticity.Check(ctx, &result.Elements)

	if !result.Authenticity.IsAuthentic {
		result.OverallStatus = domain.StatusLikelyFake
		logger.Debug().
			Float64("confidence", result.Authenticity.ConfidenceScore).
			Bool("has_identifier", result.Elements.HasIdentifier()).
			Msg("citation judged likely fake")
		return result
	}

	content := v.content.Check(ctx, &result.Elements)
	format := formatChecker.Check(citation.RawText)
	result.Content = &content
	result.Format = &format
	result.OverallStatus = foldStatus(content, format)

	logger.Debug().
		Str("status", string(result.OverallStatus)).
		Float64("confidence", result.Authenticity.ConfidenceScore).
		Msg("citation verified")
	return result
}

// foldStatus folds the content and format verdicts into the layered status,
// by strict priority: content over format, errors over warnings.
func foldStatus(content domain.ContentVerdict, format domain.FormatVerdict) domain.OverallStatus {
	contentErrors := len(content.Errors) > 0
	contentWarnings := len(content.Warnings) > 0
	formatErrors := len(format.Errors) > 0
	formatWarnings := len(format.Warnings) > 0

	switch {
	case contentErrors:
		return domain.StatusContentErrors
	case contentWarnings && formatErrors:
		return domain.StatusContentAndFormatIssues
	case contentWarnings:
		return domain.StatusContentWarnings
	case formatErrors:
		return domain.StatusFormatErrors
	case formatWarnings:
		return domain.StatusFormatWarnings
	default:
		return domain.StatusValid
	}
}
