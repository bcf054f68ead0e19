package verify

import (
	"context"
	"fmt"
	"strconv"

	"github.com/refaudit/citation-verification-service/internal/domain"
	"github.com/refaudit/citation-verification-service/internal/lexical"
)

// Fixed penalties per failed sub-check. The score drops on every fail,
// including the warning-only journal-validity and volume/year fails, so
// ConsistencyScore can sink below 1.0 while IsConsistent stays true.
const (
	penaltyDOIJournal      = 0.4
	penaltyDOITitle        = 0.3
	penaltyJournalValidity = 0.3
	penaltyVolumeYear      = 0.2
)

// Similarity thresholds for the content sub-checks.
const (
	journalErrorThreshold = 0.6
	journalCleanThreshold = 0.8

	titleErrorThreshold = 0.5
	titleCleanThreshold = 0.7

	journalValidityFailThreshold  = 0.3
	journalValidityCleanThreshold = 0.7
)

// Volume/year plausibility bounds. Journal volumes rarely exceed 200, and
// for modern journals the volume cannot outrun the publication year.
const (
	maxPlausibleVolume = 200
	volumeEpochYear    = 1950
	modernYearCutoff   = 2000
)

// ContentChecker compares claimed citation fields against the registry's
// authoritative record for the same identifier. It assumes the citation is
// authentic; the orchestrator enforces that precondition.
type ContentChecker struct {
	works  WorkFinder
	abbrev *lexical.Resolver
}

// NewContentChecker creates a checker backed by the given metadata registry.
func NewContentChecker(works WorkFinder, abbrev *lexical.Resolver) *ContentChecker {
	return &ContentChecker{works: works, abbrev: abbrev}
}

// Check runs the four consistency sub-checks. Every registry failure or
// missing datum resolves to a pass: ambiguity is never penalized, only
// confident mismatches are.
func (c *ContentChecker) Check(ctx context.Context, elements *domain.Elements) domain.ContentVerdict {
	verdict := domain.ContentVerdict{ConsistencyScore: 1.0}

	// Both DOI-backed sub-checks read the same registry record.
	var work *crossrefWork
	if elements.DOI != "" {
		if w, err := c.works.WorkByDOI(ctx, elements.DOI); err == nil {
			work = &crossrefWork{
				title:     w.PrimaryTitle(),
				container: w.PrimaryContainerTitle(),
			}
		}
	}

	c.checkDOIJournal(&verdict, elements, work)
	c.checkDOITitle(&verdict, elements, work)
	c.checkJournalValidity(ctx, &verdict, elements)
	c.checkVolumeYear(&verdict, elements)

	if verdict.ConsistencyScore < 0 {
		verdict.ConsistencyScore = 0
	}
	verdict.IsConsistent = len(verdict.Errors) == 0
	return verdict
}

// crossrefWork is the slice of the registry record the sub-checks consume.
type crossrefWork struct {
	title     string
	container string
}

// checkDOIJournal compares the claimed journal name against the registry's
// container title for the DOI, after canonicalizing abbreviations on both
// sides.
func (c *ContentChecker) checkDOIJournal(verdict *domain.ContentVerdict, elements *domain.Elements, work *crossrefWork) {
	if elements.Type != domain.ReferenceTypeJournal || elements.DOI == "" || elements.Journal == "" {
		return
	}
	if work == nil || work.container == "" {
		return
	}

	sim := c.abbrev.CanonicalSimilarity(elements.Journal, work.container)
	switch {
	case sim < journalErrorThreshold:
		verdict.Errors = append(verdict.Errors,
			fmt.Sprintf("journal %q does not match the journal registered for DOI %s (%q, similarity %.2f)",
				elements.Journal, elements.DOI, work.container, sim))
		verdict.ConsistencyScore -= penaltyDOIJournal
	case sim < journalCleanThreshold:
		verdict.Warnings = append(verdict.Warnings,
			fmt.Sprintf("journal %q only partially matches the journal registered for DOI %s (%q, similarity %.2f)",
				elements.Journal, elements.DOI, work.container, sim))
	}
}

// checkDOITitle compares the claimed title against the registry's title for
// the DOI using pure token overlap.
func (c *ContentChecker) checkDOITitle(verdict *domain.ContentVerdict, elements *domain.Elements, work *crossrefWork) {
	if elements.DOI == "" || elements.Title == "" {
		return
	}
	if work == nil || work.title == "" {
		return
	}

	sim := lexical.TokenOverlap(elements.Title, work.title)
	switch {
	case sim < titleErrorThreshold:
		verdict.Errors = append(verdict.Errors,
			fmt.Sprintf("title does not match the work registered for DOI %s (%q, similarity %.2f)",
				elements.DOI, work.title, sim))
		verdict.ConsistencyScore -= penaltyDOITitle
	case sim < titleCleanThreshold:
		verdict.Warnings = append(verdict.Warnings,
			fmt.Sprintf("title only partially matches the work registered for DOI %s (%q, similarity %.2f)",
				elements.DOI, work.title, sim))
	}
}

// checkJournalValidity searches the registry for the claimed journal name.
// A miss is a warning, not an error: new or unindexed journals are
// plausible. The warning paths still count as fails for the score.
func (c *ContentChecker) checkJournalValidity(ctx context.Context, verdict *domain.ContentVerdict, elements *domain.Elements) {
	if elements.Type != domain.ReferenceTypeJournal || elements.Journal == "" {
		return
	}

	journals, err := c.works.SearchJournals(ctx, elements.Journal)
	if err != nil {
		return
	}
	if len(journals) == 0 {
		verdict.Warnings = append(verdict.Warnings,
			fmt.Sprintf("journal %q not found in the registry index", elements.Journal))
		verdict.ConsistencyScore -= penaltyJournalValidity
		return
	}

	best := 0.0
	bestName := ""
	for _, journal := range journals {
		sim := c.abbrev.CanonicalSimilarity(elements.Journal, journal.Title)
		if sim > best {
			best = sim
			bestName = journal.Title
		}
	}

	switch {
	case best < journalValidityFailThreshold:
		verdict.Warnings = append(verdict.Warnings,
			fmt.Sprintf("journal %q not recognized, did you mean %q?", elements.Journal, bestName))
		verdict.ConsistencyScore -= penaltyJournalValidity
	case best < journalValidityCleanThreshold:
		verdict.Warnings = append(verdict.Warnings,
			fmt.Sprintf("journal %q only loosely matches indexed journal %q (similarity %.2f)",
				elements.Journal, bestName, best))
	}
}

// checkVolumeYear flags implausible volume numbers. Fails are warnings
// only, never hard errors.
func (c *ContentChecker) checkVolumeYear(verdict *domain.ContentVerdict, elements *domain.Elements) {
	year, err := strconv.Atoi(yearDigits(elements.Year))
	if err != nil {
		return
	}
	volume, err := strconv.Atoi(elements.Volume)
	if err != nil {
		return
	}

	implausible := volume > maxPlausibleVolume ||
		(year > modernYearCutoff && volume > year-volumeEpochYear)
	if implausible {
		verdict.Warnings = append(verdict.Warnings,
			fmt.Sprintf("volume %d is implausible for publication year %d", volume, year))
		verdict.ConsistencyScore -= penaltyVolumeYear
	}
}

// yearDigits strips a trailing disambiguation letter from a year string.
func yearDigits(year string) string {
	if len(year) == 5 {
		return year[:4]
	}
	return year
}
