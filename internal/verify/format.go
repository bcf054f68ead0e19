package verify

import (
	"regexp"

	"github.com/refaudit/citation-verification-service/internal/domain"
)

// Style identifies the citation style whose punctuation conventions the
// format checker enforces.
type Style string

// Supported citation styles.
const (
	StyleAPA Style = "apa"
)

// DefaultStyle is used when the caller does not name a style.
const DefaultStyle = StyleAPA

// SupportedStyle reports whether a format checker exists for the style.
func SupportedStyle(s Style) bool {
	return s == StyleAPA
}

// Format deductions per failed structural check.
const (
	deductionCommaBeforeYear = 0.3
	deductionYearWrapping    = 0.1
	deductionAuthorBlock     = 0.1
)

var (
	commaBeforeYearRe = regexp.MustCompile(`,\s*\(\d{4}[a-z]?\)`)
	yearWrappingRe    = regexp.MustCompile(`\.\s*\(\d{4}[a-z]?\)\.`)
	authorBlockRe     = regexp.MustCompile(`^[^()]+\.\s*\(\d{4}`)
)

// FormatChecker runs structural punctuation checks against the raw citation
// text. It needs no network access and no extraction output.
type FormatChecker struct {
	style Style
}

// NewFormatChecker creates a checker for the given citation style. An empty
// style falls back to DefaultStyle.
func NewFormatChecker(style Style) *FormatChecker {
	if style == "" {
		style = DefaultStyle
	}
	return &FormatChecker{style: style}
}

// Style returns the citation style the checker enforces.
func (c *FormatChecker) Style() Style {
	return c.style
}

// Check runs the structural checks and returns the compliance verdict.
// Score starts at 1.0 minus fixed per-check deductions, floored at 0.
func (c *FormatChecker) Check(rawText string) domain.FormatVerdict {
	verdict := domain.FormatVerdict{Score: 1.0}

	if commaBeforeYearRe.MatchString(rawText) {
		verdict.Errors = append(verdict.Errors,
			"comma directly before the year parenthesis")
		verdict.Suggestions = append(verdict.Suggestions,
			"separate the author block from the year with a period: \"Author, A. (2020).\"")
		verdict.Score -= deductionCommaBeforeYear
	}

	if !yearWrappingRe.MatchString(rawText) {
		verdict.Warnings = append(verdict.Warnings,
			"year is not wrapped as \". (YYYY).\"")
		verdict.Suggestions = append(verdict.Suggestions,
			"wrap the publication year as \". (YYYY).\"")
		verdict.Score -= deductionYearWrapping
	}

	if !authorBlockRe.MatchString(rawText) {
		verdict.Warnings = append(verdict.Warnings,
			"citation does not open with an author block followed by the year")
		verdict.Suggestions = append(verdict.Suggestions,
			"start the citation with the authors, then the year: \"Lastname, F. M. (YYYY).\"")
		verdict.Score -= deductionAuthorBlock
	}

	if verdict.Score < 0 {
		verdict.Score = 0
	}
	verdict.IsCompliant = len(verdict.Errors) == 0
	return verdict
}
