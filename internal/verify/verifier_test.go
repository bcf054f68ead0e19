package verify

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refaudit/citation-verification-service/internal/domain"
	"github.com/refaudit/citation-verification-service/internal/lexical"
	"github.com/refaudit/citation-verification-service/internal/registries/crossref"
)

const validCitation = "Smith, J. (2020). A study. Nature, 5(2), 1-10. https://doi.org/10.1000/validexample"

// natureWorks answers registry lookups as CrossRef would for the valid
// citation: the DOI belongs to "A study" published in Nature.
func natureWorks() *stubWorks {
	return &stubWorks{
		work: &crossref.Work{
			Title:          []string{"A study"},
			ContainerTitle: []string{"Nature"},
		},
		journals: []crossref.Journal{{Title: "Nature"}},
	}
}

func newTestVerifier(resolver DOIResolver, works WorkFinder, cfg VerifierConfig) *Verifier {
	authenticity := NewAuthenticityChecker(resolver, works, &stubBooks{}, &stubProber{})
	content := NewContentChecker(works, lexical.NewResolver(nil))
	return NewVerifier(authenticity, content, cfg, zerolog.Nop(), nil)
}

func TestVerifier_Verify(t *testing.T) {
	t.Run("valid citation end to end", func(t *testing.T) {
		verifier := newTestVerifier(&stubResolver{status: 200}, natureWorks(), VerifierConfig{})

		batch, err := verifier.Verify(context.Background(), validCitation, StyleAPA)
		require.NoError(t, err)
		require.Len(t, batch.Results, 1)

		result := batch.Results[0]
		assert.Equal(t, 1, result.Citation.LineNumber)
		assert.True(t, result.Authenticity.IsAuthentic)
		assert.Equal(t, domain.ConfidenceLevelHigh, result.Authenticity.ConfidenceLevel)
		require.NotNil(t, result.Content)
		assert.True(t, result.Content.IsConsistent)
		require.NotNil(t, result.Format)
		assert.True(t, result.Format.IsCompliant)
		assert.Equal(t, domain.StatusValid, result.OverallStatus)
	})

	t.Run("wrong journal yields content errors", func(t *testing.T) {
		citation := "Smith, J. (2020). A study. Journal of Sport, 5(2), 1-10. https://doi.org/10.1000/validexample"
		verifier := newTestVerifier(&stubResolver{status: 200}, natureWorks(), VerifierConfig{})

		batch, err := verifier.Verify(context.Background(), citation, StyleAPA)
		require.NoError(t, err)
		require.Len(t, batch.Results, 1)

		result := batch.Results[0]
		assert.True(t, result.Authenticity.IsAuthentic)
		require.NotNil(t, result.Content)
		assert.NotEmpty(t, result.Content.Errors)
		assert.Equal(t, domain.StatusContentErrors, result.OverallStatus)
	})

	t.Run("unresolved DOI yields likely fake without further checks", func(t *testing.T) {
		verifier := newTestVerifier(&stubResolver{status: 404}, &stubWorks{}, VerifierConfig{})

		batch, err := verifier.Verify(context.Background(), validCitation, StyleAPA)
		require.NoError(t, err)
		require.Len(t, batch.Results, 1)

		result := batch.Results[0]
		assert.False(t, result.Authenticity.IsAuthentic)
		assert.Equal(t, domain.StatusLikelyFake, result.OverallStatus)
		assert.Nil(t, result.Content)
		assert.Nil(t, result.Format)
	})

	t.Run("empty batch returns no results", func(t *testing.T) {
		verifier := newTestVerifier(&stubResolver{status: 200}, natureWorks(), VerifierConfig{})

		batch, err := verifier.Verify(context.Background(), "   \n\n  \n", StyleAPA)
		require.NoError(t, err)
		assert.Empty(t, batch.Results)
		assert.Zero(t, batch.Summary.Total)
	})

	t.Run("noise lines are excluded entirely", func(t *testing.T) {
		batchText := "References\n\n" + validCitation + "\np. 12\n"
		verifier := newTestVerifier(&stubResolver{status: 200}, natureWorks(), VerifierConfig{})

		batch, err := verifier.Verify(context.Background(), batchText, StyleAPA)
		require.NoError(t, err)
		require.Len(t, batch.Results, 1)
		assert.Equal(t, 3, batch.Results[0].Citation.LineNumber)
	})

	t.Run("internal fault becomes processing_error and batch continues", func(t *testing.T) {
		// Nil registry clients make any DOI lookup panic; a citation with
		// no checkable identifier never touches them.
		authenticity := NewAuthenticityChecker(nil, nil, nil, nil)
		content := NewContentChecker(nil, lexical.NewResolver(nil))
		verifier := NewVerifier(authenticity, content, VerifierConfig{}, zerolog.Nop(), nil)

		batchText := validCitation + "\nSome random text that is long enough to process\n"
		batch, err := verifier.Verify(context.Background(), batchText, StyleAPA)
		require.NoError(t, err)
		require.Len(t, batch.Results, 2)

		assert.Equal(t, domain.StatusProcessingError, batch.Results[0].OverallStatus)
		assert.NotEmpty(t, batch.Results[0].ProcessingErrors)
		assert.Equal(t, domain.StatusLikelyFake, batch.Results[1].OverallStatus)
	})

	t.Run("likely fake log notes identifier presence", func(t *testing.T) {
		var buf bytes.Buffer
		logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

		authenticity := NewAuthenticityChecker(&stubResolver{status: 404}, &stubWorks{}, &stubBooks{}, &stubProber{})
		content := NewContentChecker(&stubWorks{}, lexical.NewResolver(nil))
		verifier := NewVerifier(authenticity, content, VerifierConfig{}, logger, nil)

		_, err := verifier.Verify(context.Background(), validCitation, StyleAPA)
		require.NoError(t, err)
		assert.Contains(t, buf.String(), `"has_identifier":true`)
	})

	t.Run("cancelled context returns partial results with error", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		verifier := newTestVerifier(&stubResolver{status: 200}, natureWorks(), VerifierConfig{})
		batch, err := verifier.Verify(ctx, validCitation, StyleAPA)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, batch.Results)
	})

	t.Run("citation delay between sequential citations", func(t *testing.T) {
		batchText := validCitation + "\n" + validCitation
		verifier := newTestVerifier(&stubResolver{status: 200}, natureWorks(),
			VerifierConfig{CitationDelay: time.Millisecond})

		started := time.Now()
		batch, err := verifier.Verify(context.Background(), batchText, StyleAPA)
		require.NoError(t, err)
		assert.Len(t, batch.Results, 2)
		assert.GreaterOrEqual(t, time.Since(started), time.Millisecond)
	})

	t.Run("concurrent workers preserve input order", func(t *testing.T) {
		batchText := validCitation + "\n" + validCitation + "\n" + validCitation + "\n" + validCitation
		verifier := newTestVerifier(&stubResolver{status: 200}, natureWorks(),
			VerifierConfig{Workers: 3})

		batch, err := verifier.Verify(context.Background(), batchText, StyleAPA)
		require.NoError(t, err)
		require.Len(t, batch.Results, 4)

		for i, result := range batch.Results {
			assert.Equal(t, i+1, result.Citation.LineNumber)
			assert.Equal(t, domain.StatusValid, result.OverallStatus)
		}
	})

	t.Run("summary aggregates statuses", func(t *testing.T) {
		fakeCitation := "Jones, K. (2019). Another look. Science, 3(1), 2-8. https://doi.org/10.9999/unregistered"
		batchText := validCitation + "\n" + fakeCitation

		resolver := &statusByDOIResolver{statuses: map[string]int{
			"10.1000/validexample": 200,
			"10.9999/unregistered": 404,
		}}
		verifier := newTestVerifier(resolver, natureWorks(), VerifierConfig{})

		batch, err := verifier.Verify(context.Background(), batchText, StyleAPA)
		require.NoError(t, err)
		require.Len(t, batch.Results, 2)

		summary := batch.Summary
		assert.Equal(t, 2, summary.Total)
		assert.NotEqual(t, uuid.Nil, summary.BatchID)
		assert.Equal(t, 1, summary.ByStatus[domain.StatusValid])
		assert.Equal(t, 1, summary.ByStatus[domain.StatusLikelyFake])
		assert.Greater(t, summary.MeanExtractionConfidence, 0.0)
	})
}

// statusByDOIResolver maps each DOI to its own resolution status.
type statusByDOIResolver struct {
	statuses map[string]int
}

func (s *statusByDOIResolver) Resolve(ctx context.Context, doi string) (int, error) {
	return s.statuses[doi], nil
}

func TestFoldStatus(t *testing.T) {
	withErrors := func(errs ...string) domain.ContentVerdict {
		return domain.ContentVerdict{Errors: errs}
	}
	withWarnings := func(warns ...string) domain.ContentVerdict {
		return domain.ContentVerdict{Warnings: warns}
	}

	tests := []struct {
		name    string
		content domain.ContentVerdict
		format  domain.FormatVerdict
		want    domain.OverallStatus
	}{
		{"all clean", domain.ContentVerdict{}, domain.FormatVerdict{}, domain.StatusValid},
		{"content error wins", withErrors("mismatch"), domain.FormatVerdict{Errors: []string{"comma"}}, domain.StatusContentErrors},
		{"content warning with format error", withWarnings("partial"), domain.FormatVerdict{Errors: []string{"comma"}}, domain.StatusContentAndFormatIssues},
		{"content warning alone", withWarnings("partial"), domain.FormatVerdict{Warnings: []string{"year"}}, domain.StatusContentWarnings},
		{"format error alone", domain.ContentVerdict{}, domain.FormatVerdict{Errors: []string{"comma"}}, domain.StatusFormatErrors},
		{"format warning alone", domain.ContentVerdict{}, domain.FormatVerdict{Warnings: []string{"year"}}, domain.StatusFormatWarnings},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, foldStatus(tt.content, tt.format))
		})
	}
}
