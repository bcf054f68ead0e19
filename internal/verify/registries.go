// Package verify contains the verification pipeline: authenticity checking
// against external registries, content consistency checking against the
// registry's authoritative record, format compliance checking, and the
// orchestrator that folds the verdicts into one layered status per citation.
package verify

import (
	"context"

	"github.com/refaudit/citation-verification-service/internal/registries/crossref"
	"github.com/refaudit/citation-verification-service/internal/registries/openlibrary"
)

// DOIResolver resolves a DOI against the redirect service and returns the
// raw HTTP status code of the first response.
type DOIResolver interface {
	Resolve(ctx context.Context, doi string) (int, error)
}

// WorkFinder looks up work and journal records in the metadata registry.
type WorkFinder interface {
	WorkByDOI(ctx context.Context, doi string) (*crossref.Work, error)
	SearchTitles(ctx context.Context, query string) ([]crossref.Work, error)
	SearchJournals(ctx context.Context, query string) ([]crossref.Journal, error)
}

// BookFinder looks up book records by ISBN.
type BookFinder interface {
	BookByISBN(ctx context.Context, isbn string) (*openlibrary.Book, error)
}

// URLProber reports whether a cited URL is reachable.
type URLProber interface {
	Probe(ctx context.Context, rawURL string) (bool, error)
}
