// Package extract parses unstructured citation strings into structured
// bibliographic elements with a heuristic extraction confidence.
//
// Extraction is pattern-based and accepts imperfect recall: a field the
// patterns cannot locate is simply left empty and recorded as a diagnostic
// where that matters. Extract never panics past its boundary.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/refaudit/citation-verification-service/internal/domain"
)

// Confidence increments per successfully extracted signal. The increments
// are additive and the final value is deliberately not clamped; downstream
// thresholds are tuned for the unclamped accumulation.
const (
	authorYearBonus = 0.2
	identifierBonus = 0.3
	titleBonus      = 0.2
	sourceBonus     = 0.2
)

var (
	// doiRe matches a DOI anywhere in the text, with or without a resolver
	// prefix. Only the 10.<registrant>/ prefix shape is validated here;
	// garbage suffixes are left for the resolver to reject.
	doiRe = regexp.MustCompile(`(?:doi\.org/|doi:\s*)?(10\.\d{4,9}/[^\s,;]+)`)

	// isbnRe matches an ISBN-labeled token.
	isbnRe = regexp.MustCompile(`(?i)isbn[-:\s]*((?:97[89][- ]?)?[\d][\d- ]{8,15}[\dXx])`)

	// urlRe matches the first absolute URL token.
	urlRe = regexp.MustCompile(`https?://[^\s<>"]+`)

	// accessRe matches the access-date phrasing that marks web citations.
	accessRe = regexp.MustCompile(`(?i)\b(retrieved|accessed)\b`)

	// yearRe matches a parenthesized 4-digit year with an optional
	// disambiguation letter, e.g. "(2020)" or "(2020a)".
	yearRe = regexp.MustCompile(`\((\d{4}[a-z]?)\)`)

	// Keyword scoring for type detection when no identifier decides it.
	journalKeywordRe = regexp.MustCompile(`(?i)\b(journal|review|science)\b`)
	bookKeywordRe    = regexp.MustCompile(`(?i)\b(press|publisher|edition)\b`)
	websiteKeywordRe = regexp.MustCompile(`(?i)\b(retrieved|accessed|www)\b`)

	// volumePatternRe matches the volume(issue),pages shape that strongly
	// indicates a journal article.
	volumePatternRe = regexp.MustCompile(`\d+\s*\(\d+\)\s*,\s*\d+`)

	// journalNameRe requires a journal-indicative keyword inside a
	// capitalized phrase.
	journalNameRe = regexp.MustCompile(`((?:[A-Z][A-Za-z&'’\- ]*)?(?:Journal|Review|Science|Nature|Proceedings|Letters|Medicine|Physiology|Psychology)[A-Za-z&'’\- ]*)`)

	// journalFallbackRe matches a generic capitalized phrase directly
	// before a comma-then-digit, the usual "<Journal>, 12(3)" shape.
	journalFallbackRe = regexp.MustCompile(`([A-Z][A-Za-z&'’\- ]+),\s*\d`)

	// volumeIssuePagesRe captures volume, issue and a page range.
	volumeIssuePagesRe = regexp.MustCompile(`(\d+)\s*\((\d+)\)\s*,\s*(\d+(?:\s*[-–]\s*\d+)?)`)

	// authorSignalRe detects initials ("J.") as an author-block signal.
	authorSignalRe = regexp.MustCompile(`\p{L}\.`)

	// sentenceEndRe finds the terminator that ends the title sentence.
	sentenceEndRe = regexp.MustCompile(`[.?!]`)
)

// knownPublishers is the static token list used to spot a publisher name
// in book citations. Matching is case-insensitive on the raw text.
var knownPublishers = []string{
	"Academic Press",
	"Cambridge University Press",
	"Oxford University Press",
	"University Press",
	"Human Kinetics",
	"Routledge",
	"Springer",
	"Elsevier",
	"Wiley",
	"Pearson",
	"McGraw-Hill",
	"Sage",
	"Penguin",
	"Random House",
	"Press",
}

// Extract parses a single citation string into structured elements with a
// reference-type classification and an extraction confidence. Any internal
// failure is caught and recorded as a diagnostic; the returned record is
// then partially populated with type unknown.
func Extract(rawText string) (elements domain.Elements) {
	defer func() {
		if r := recover(); r != nil {
			elements.Type = domain.ReferenceTypeUnknown
			elements.Diagnostics = append(elements.Diagnostics, fmt.Sprintf("extraction failed: %v", r))
		}
	}()

	elements.Type = detectType(rawText)

	// Identifiers are searched independently of the year split, so a
	// citation without a parsable year can still be verified by DOI or ISBN.
	if m := doiRe.FindStringSubmatch(rawText); m != nil {
		elements.DOI = strings.TrimRight(m[1], ".,;")
		elements.Confidence += identifierBonus
	}
	if m := isbnRe.FindStringSubmatch(rawText); m != nil {
		elements.ISBN = strings.TrimSpace(m[1])
		elements.Confidence += identifierBonus
	}

	yearLoc := yearRe.FindStringSubmatchIndex(rawText)
	if yearLoc == nil {
		elements.Diagnostics = append(elements.Diagnostics, "no year found")
		return elements
	}
	elements.Year = rawText[yearLoc[2]:yearLoc[3]]

	authors := strings.TrimRight(strings.TrimSpace(rawText[:yearLoc[0]]), " .,;(")
	if authors != "" {
		elements.Authors = authors
		elements.Confidence += authorYearBonus
		if !looksLikeAuthorBlock(authors) {
			elements.Diagnostics = append(elements.Diagnostics, "author block does not look like an author list")
		}
	} else {
		elements.Diagnostics = append(elements.Diagnostics, "no author block before year")
	}

	afterYear := rawText[yearLoc[1]:]
	extractContent(&elements, rawText, afterYear)

	return elements
}

// detectType classifies a citation by identifier presence first, then by
// keyword scoring. Priority order: DOI, ISBN, URL with an access-date
// phrase, keyword scores with ties favoring journal.
func detectType(rawText string) domain.ReferenceType {
	if doiRe.MatchString(rawText) {
		return domain.ReferenceTypeJournal
	}
	if isbnRe.MatchString(rawText) {
		return domain.ReferenceTypeBook
	}
	if urlRe.MatchString(rawText) && accessRe.MatchString(rawText) {
		return domain.ReferenceTypeWebsite
	}

	journalScore := len(journalKeywordRe.FindAllString(rawText, -1))
	bookScore := len(bookKeywordRe.FindAllString(rawText, -1))
	websiteScore := len(websiteKeywordRe.FindAllString(rawText, -1))
	if volumePatternRe.MatchString(rawText) {
		journalScore += 3
	}

	if journalScore == 0 && bookScore == 0 && websiteScore == 0 {
		return domain.ReferenceTypeUnknown
	}
	if journalScore >= bookScore && journalScore >= websiteScore {
		return domain.ReferenceTypeJournal
	}
	if bookScore > websiteScore {
		return domain.ReferenceTypeBook
	}
	return domain.ReferenceTypeWebsite
}

// extractContent populates the type-conditional fields from the substring
// after the year token.
func extractContent(elements *domain.Elements, rawText, afterYear string) {
	switch elements.Type {
	case domain.ReferenceTypeJournal:
		extractTitle(elements, afterYear)
		extractJournal(elements, rawText, afterYear)
	case domain.ReferenceTypeBook:
		extractTitle(elements, afterYear)
		extractPublisher(elements, rawText)
	case domain.ReferenceTypeWebsite:
		extractTitle(elements, afterYear)
		if m := urlRe.FindString(rawText); m != "" {
			elements.URL = strings.TrimRight(m, ".,;)")
			elements.Confidence += sourceBonus
		}
	}
}

// extractTitle takes the text between the closing year parenthesis (plus
// its period) and the next sentence terminator.
func extractTitle(elements *domain.Elements, afterYear string) {
	title := strings.TrimLeft(afterYear, " \t")
	title = strings.TrimLeft(title, ".")
	title = strings.TrimLeft(title, " \t")

	if loc := sentenceEndRe.FindStringIndex(title); loc != nil {
		title = title[:loc[0]]
	}
	title = strings.TrimSpace(title)
	if title == "" {
		elements.Diagnostics = append(elements.Diagnostics, "no title found after year")
		return
	}
	elements.Title = title
	elements.Confidence += titleBonus
}

// extractJournal locates the journal name after the title, preferring the
// keyword-bearing pattern and falling back to the capitalized phrase before
// a comma-then-digit. When a name is found, the text following its
// occurrence is searched for the volume(issue),pages group.
func extractJournal(elements *domain.Elements, rawText, afterYear string) {
	searchText := afterYear
	if elements.Title != "" {
		if idx := strings.Index(afterYear, elements.Title); idx >= 0 {
			searchText = afterYear[idx+len(elements.Title):]
		}
	}

	var journal string
	if m := journalNameRe.FindStringSubmatch(searchText); m != nil {
		journal = strings.TrimSpace(m[1])
	} else if m := journalFallbackRe.FindStringSubmatch(searchText); m != nil {
		journal = strings.TrimSpace(m[1])
	}
	if journal == "" {
		return
	}
	elements.Journal = journal
	elements.Confidence += sourceBonus

	if idx := strings.Index(rawText, journal); idx >= 0 {
		rest := rawText[idx+len(journal):]
		if m := volumeIssuePagesRe.FindStringSubmatch(rest); m != nil {
			elements.Volume = m[1]
			elements.Issue = m[2]
			elements.Pages = strings.ReplaceAll(m[3], " ", "")
		}
	}
}

// extractPublisher scans the whole citation for a known publisher token.
func extractPublisher(elements *domain.Elements, rawText string) {
	lower := strings.ToLower(rawText)
	for _, pub := range knownPublishers {
		if strings.Contains(lower, strings.ToLower(pub)) {
			elements.Publisher = pub
			elements.Confidence += sourceBonus
			return
		}
	}
}

// looksLikeAuthorBlock reports whether text carries author-list signals:
// initials or comma-separated names.
func looksLikeAuthorBlock(text string) bool {
	return authorSignalRe.MatchString(text) || strings.Contains(text, ",")
}
