package verify

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/refaudit/citation-verification-service/internal/domain"
	"github.com/refaudit/citation-verification-service/internal/lexical"
	"github.com/refaudit/citation-verification-service/internal/registries/doiresolver"
)

// Per-method confidence contributions. Each method yields a value in [0,1],
// or 0 when inapplicable or inconclusive.
const (
	doiConfidenceResolved   = 0.95
	doiConfidenceRedirect   = 0.90
	doiConfidenceForbidden  = 0.85
	doiConfidenceRateLimit  = 0.75
	doiConfidenceUnresolved = 0.0
	doiConfidenceUnknown    = 0.5

	isbnConfidenceFound = 0.85

	// The title method contributes the best candidate similarity, capped.
	titleConfidenceCap        = 0.8
	titleSimilarityThreshold  = 0.7
	titleMinLength            = 10
	titleQueryMaxTokens       = 5
	titleQueryMinTokenLength  = 4
	titleQueryMinUsableTokens = 2

	urlConfidenceReachable = 0.7

	// multiMethodBonus rewards agreement between independent methods.
	multiMethodBonus = 0.1
)

// Verification method names recorded in the verdict.
const (
	methodDOIResolution = "doi_resolution"
	methodISBNLookup    = "isbn_lookup"
	methodTitleSearch   = "title_search"
	methodURLProbe      = "url_probe"
)

var alphaTokenRe = regexp.MustCompile(`^[A-Za-z]+$`)

// AuthenticityChecker decides whether a citation refers to a real,
// registered source. It runs up to four independent methods against the
// external registries and combines their confidence contributions.
type AuthenticityChecker struct {
	resolver DOIResolver
	works    WorkFinder
	books    BookFinder
	prober   URLProber
}

// NewAuthenticityChecker creates a checker with the given registry clients.
func NewAuthenticityChecker(resolver DOIResolver, works WorkFinder, books BookFinder, prober URLProber) *AuthenticityChecker {
	return &AuthenticityChecker{
		resolver: resolver,
		works:    works,
		books:    books,
		prober:   prober,
	}
}

// Check runs every applicable verification method and aggregates the
// contributions. The final score is the maximum contribution, plus a bonus
// when more than one method contributed, capped at 1.0. A citation is
// authentic iff the score reaches domain.AuthenticThreshold.
func (c *AuthenticityChecker) Check(ctx context.Context, elements *domain.Elements) domain.AuthenticityVerdict {
	verdict := domain.AuthenticityVerdict{}

	var contributions []float64
	record := func(method string, contribution float64, detail string) {
		verdict.VerificationDetails = append(verdict.VerificationDetails, detail)
		if contribution > 0 {
			contributions = append(contributions, contribution)
			verdict.MethodsUsed = append(verdict.MethodsUsed, method)
		}
	}

	if elements.DOI != "" {
		contribution, detail := c.checkDOI(ctx, elements.DOI)
		verdict.SourcesChecked = append(verdict.SourcesChecked, "doi.org")
		record(methodDOIResolution, contribution, detail)
	}

	if elements.Type == domain.ReferenceTypeBook && elements.ISBN != "" {
		contribution, detail := c.checkISBN(ctx, elements.ISBN)
		verdict.SourcesChecked = append(verdict.SourcesChecked, "OpenLibrary")
		record(methodISBNLookup, contribution, detail)
	}

	if elements.Type == domain.ReferenceTypeJournal && len(elements.Title) >= titleMinLength {
		contribution, detail, queried := c.checkTitle(ctx, elements.Title)
		if queried {
			verdict.SourcesChecked = append(verdict.SourcesChecked, "CrossRef")
		}
		if detail != "" {
			record(methodTitleSearch, contribution, detail)
		}
	}

	if elements.Type == domain.ReferenceTypeWebsite && elements.URL != "" {
		contribution, detail := c.checkURL(ctx, elements.URL)
		verdict.SourcesChecked = append(verdict.SourcesChecked, "web")
		record(methodURLProbe, contribution, detail)
	}

	score := 0.0
	for _, contribution := range contributions {
		if contribution > score {
			score = contribution
		}
	}
	if len(contributions) > 1 {
		score += multiMethodBonus
		if score > 1.0 {
			score = 1.0
		}
	}

	verdict.ConfidenceScore = score
	verdict.ConfidenceLevel = domain.ConfidenceLevelFor(score)
	verdict.IsAuthentic = score >= domain.AuthenticThreshold
	return verdict
}

// checkDOI resolves the DOI and maps the raw status code onto a confidence
// contribution. Transport failures are inconclusive, not disqualifying: the
// DOI method fails open.
func (c *AuthenticityChecker) checkDOI(ctx context.Context, doi string) (float64, string) {
	if !doiresolver.ValidShape(doi) {
		return doiConfidenceUnknown, fmt.Sprintf("DOI %q has an unexpected shape, treated as inconclusive", doi)
	}

	status, err := c.resolver.Resolve(ctx, doi)
	if err != nil {
		return doiConfidenceUnknown, fmt.Sprintf("DOI resolution failed (%v), treated as inconclusive", err)
	}

	switch status {
	case http.StatusOK:
		return doiConfidenceResolved, fmt.Sprintf("DOI %s resolved (200)", doi)
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return doiConfidenceRedirect, fmt.Sprintf("DOI %s resolved via redirect (%d)", doi, status)
	case http.StatusForbidden:
		return doiConfidenceForbidden, fmt.Sprintf("DOI %s registered, resolver refuses automated access (403)", doi)
	case http.StatusTooManyRequests:
		return doiConfidenceRateLimit, fmt.Sprintf("DOI %s lookup rate-limited (429), provisionally real", doi)
	case http.StatusNotFound:
		return doiConfidenceUnresolved, fmt.Sprintf("DOI %s not found in the registry (404)", doi)
	default:
		return doiConfidenceUnknown, fmt.Sprintf("DOI %s resolution inconclusive (status %d)", doi, status)
	}
}

// checkISBN normalizes the ISBN and looks it up in the book registry.
func (c *AuthenticityChecker) checkISBN(ctx context.Context, isbn string) (float64, string) {
	normalized := normalizeISBN(isbn)
	if len(normalized) < 10 {
		return 0, fmt.Sprintf("ISBN %q too short after normalization", isbn)
	}

	book, err := c.books.BookByISBN(ctx, normalized)
	if err != nil {
		return 0, fmt.Sprintf("ISBN %s not found in the book registry", normalized)
	}
	return isbnConfidenceFound, fmt.Sprintf("ISBN %s registered as %q", normalized, book.Title)
}

// checkTitle searches the metadata registry by distinctive title tokens and
// scores the best candidate by token overlap. The third return reports
// whether a registry query was actually issued.
func (c *AuthenticityChecker) checkTitle(ctx context.Context, title string) (float64, string, bool) {
	query := titleQuery(title)
	if query == "" {
		return 0, "", false
	}

	candidates, err := c.works.SearchTitles(ctx, query)
	if err != nil {
		return 0, fmt.Sprintf("title search failed (%v)", err), true
	}

	best := 0.0
	for _, candidate := range candidates {
		sim := lexical.TokenOverlap(title, candidate.PrimaryTitle())
		if sim > best {
			best = sim
		}
	}
	if best > titleSimilarityThreshold {
		contribution := best
		if contribution > titleConfidenceCap {
			contribution = titleConfidenceCap
		}
		return contribution, fmt.Sprintf("title matched a registered work (similarity %.2f)", best), true
	}
	return 0, fmt.Sprintf("no registered work matched the title (best similarity %.2f)", best), true
}

// checkURL probes the cited URL. Unlike the DOI method this fails closed: a
// dead or unreachable URL is evidence against the citation.
func (c *AuthenticityChecker) checkURL(ctx context.Context, rawURL string) (float64, string) {
	reachable, err := c.prober.Probe(ctx, rawURL)
	if err != nil {
		return 0, fmt.Sprintf("URL %s unreachable (%v)", rawURL, err)
	}
	if !reachable {
		return 0, fmt.Sprintf("URL %s answered with an error status", rawURL)
	}
	return urlConfidenceReachable, fmt.Sprintf("URL %s reachable", rawURL)
}

// titleQuery builds a registry search query from up to five distinctive
// alphabetic title tokens. Returns "" when too few usable tokens remain.
func titleQuery(title string) string {
	var tokens []string
	for _, token := range strings.Fields(title) {
		token = strings.Trim(token, ".,;:()\"'")
		if len(token) >= titleQueryMinTokenLength && alphaTokenRe.MatchString(token) {
			tokens = append(tokens, token)
			if len(tokens) == titleQueryMaxTokens {
				break
			}
		}
	}
	if len(tokens) < titleQueryMinUsableTokens {
		return ""
	}
	return strings.Join(tokens, " ")
}

// normalizeISBN keeps digits, hyphens and the X check character.
func normalizeISBN(isbn string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '-', r == 'X', r == 'x':
			return r
		default:
			return -1
		}
	}, isbn)
}
