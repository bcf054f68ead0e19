package verify

import (
	"context"

	"github.com/refaudit/citation-verification-service/internal/registries/crossref"
	"github.com/refaudit/citation-verification-service/internal/registries/openlibrary"
)

// stubResolver answers every DOI resolution with a fixed status or error.
type stubResolver struct {
	status int
	err    error
}

func (s *stubResolver) Resolve(ctx context.Context, doi string) (int, error) {
	return s.status, s.err
}

// stubWorks answers metadata registry lookups with fixed payloads.
type stubWorks struct {
	work        *crossref.Work
	workErr     error
	titles      []crossref.Work
	titlesErr   error
	journals    []crossref.Journal
	journalsErr error
}

func (s *stubWorks) WorkByDOI(ctx context.Context, doi string) (*crossref.Work, error) {
	return s.work, s.workErr
}

func (s *stubWorks) SearchTitles(ctx context.Context, query string) ([]crossref.Work, error) {
	return s.titles, s.titlesErr
}

func (s *stubWorks) SearchJournals(ctx context.Context, query string) ([]crossref.Journal, error) {
	return s.journals, s.journalsErr
}

// stubBooks answers ISBN lookups with a fixed payload or error.
type stubBooks struct {
	book *openlibrary.Book
	err  error
}

func (s *stubBooks) BookByISBN(ctx context.Context, isbn string) (*openlibrary.Book, error) {
	return s.book, s.err
}

// stubProber answers URL probes with a fixed outcome.
type stubProber struct {
	reachable bool
	err       error
}

func (s *stubProber) Probe(ctx context.Context, rawURL string) (bool, error) {
	return s.reachable, s.err
}
