// Package domain defines the core types for the citation verification service.
package domain

// ReferenceType classifies what kind of source a citation points at.
// The type is decided once during extraction and never revised by
// downstream checks.
type ReferenceType string

// Reference type values.
const (
	// ReferenceTypeJournal is a journal article citation.
	ReferenceTypeJournal ReferenceType = "journal"

	// ReferenceTypeBook is a book citation.
	ReferenceTypeBook ReferenceType = "book"

	// ReferenceTypeWebsite is a web resource citation.
	ReferenceTypeWebsite ReferenceType = "website"

	// ReferenceTypeUnknown is used when no classification signal was found.
	ReferenceTypeUnknown ReferenceType = "unknown"
)

// Citation is a single line of the input batch. RawText is the immutable
// source of truth; LineNumber is the 1-based position in the batch and the
// stable identifier for reporting.
type Citation struct {
	RawText    string `json:"raw_text"`
	LineNumber int    `json:"line_number"`
}

// Elements is the structured field set extracted from one citation string.
// It is produced once per citation and never mutated after extraction.
// All string fields are empty when the corresponding signal was not found.
type Elements struct {
	// Type is the mutually exclusive reference classification.
	Type ReferenceType `json:"reference_type"`

	// Authors is the author block preceding the year token.
	Authors string `json:"authors,omitempty"`

	// Title is the work title.
	Title string `json:"title,omitempty"`

	// Journal is the claimed journal name (journal references only).
	Journal string `json:"journal,omitempty"`

	// Publisher is the claimed publisher (book references only).
	Publisher string `json:"publisher,omitempty"`

	// URL is the cited web address (website references only).
	URL string `json:"url,omitempty"`

	// Year is the 4-digit publication year, optionally carrying a trailing
	// disambiguation letter (e.g. "2020a").
	Year string `json:"year,omitempty"`

	// DOI is the Digital Object Identifier, without the resolver prefix.
	DOI string `json:"doi,omitempty"`

	// ISBN is the International Standard Book Number as it appeared.
	ISBN string `json:"isbn,omitempty"`

	// Volume, Issue and Pages locate the work within a journal.
	Volume string `json:"volume,omitempty"`
	Issue  string `json:"issue,omitempty"`
	Pages  string `json:"pages,omitempty"`

	// Confidence is the extraction confidence, accumulated additively per
	// successfully extracted signal. It is deliberately not re-normalized
	// and may exceed 1.0 when multiple signals stack; downstream thresholds
	// are tuned for the unclamped value.
	Confidence float64 `json:"extraction_confidence"`

	// Diagnostics is the ordered list of extraction problems encountered
	// (e.g. "no year found"). Diagnostics never abort processing.
	Diagnostics []string `json:"extraction_errors,omitempty"`
}

// HasIdentifier reports whether any registry-checkable identifier was
// extracted.
func (e *Elements) HasIdentifier() bool {
	return e.DOI != "" || e.ISBN != "" || e.URL != ""
}
