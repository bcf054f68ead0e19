// Package lexical provides text normalization and similarity scoring for
// comparing bibliographic fields such as journal names and titles.
package lexical

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Blend weights for Similarity. Token overlap dominates because journal
// names are routinely reordered and abbreviated; the character ratio term
// catches near-identical strings with low token overlap.
const (
	tokenWeight = 0.7
	charWeight  = 0.3
)

// diacriticStripper removes combining marks after NFKD decomposition, so
// accented and unaccented spellings of the same name compare equal.
var diacriticStripper = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases text, folds diacritics, replaces punctuation with
// whitespace and collapses whitespace runs. It is a pure function with no
// failure mode; malformed input degrades to best-effort output.
func Normalize(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return ""
	}

	if folded, _, err := transform.String(diacriticStripper, text); err == nil {
		text = folded
	}

	var sb strings.Builder
	sb.Grow(len(text))
	prevSpace := false
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
			prevSpace = false
		default:
			if !prevSpace && sb.Len() > 0 {
				sb.WriteRune(' ')
				prevSpace = true
			}
		}
	}

	return strings.TrimRight(sb.String(), " ")
}

// Tokens normalizes text and splits it into its word tokens.
func Tokens(text string) []string {
	return strings.Fields(Normalize(text))
}

// Similarity computes a blended similarity score in [0,1] between two
// free-text names: tokenWeight * token-set Jaccard overlap plus
// charWeight * character-level edit-similarity ratio.
//
// Returns 0 if either input is empty. Symmetric: Similarity(a, b) ==
// Similarity(b, a), and Similarity(a, a) == 1 for non-empty a.
func Similarity(a, b string) float64 {
	normA := Normalize(a)
	normB := Normalize(b)
	if normA == "" || normB == "" {
		return 0.0
	}

	return tokenWeight*jaccard(normA, normB) + charWeight*charRatio(normA, normB)
}

// TokenOverlap computes the pure token-set Jaccard overlap in [0,1].
// Titles are compared with this variant: word order and punctuation vary
// freely across citation styles, so the edit-distance term only adds noise.
func TokenOverlap(a, b string) float64 {
	normA := Normalize(a)
	normB := Normalize(b)
	if normA == "" || normB == "" {
		return 0.0
	}

	return jaccard(normA, normB)
}

// jaccard computes token-set Jaccard overlap between two normalized strings.
func jaccard(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}

	intersection := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// charRatio computes the character-level edit-similarity ratio between two
// normalized strings: 1 minus the Levenshtein distance over the longer length.
func charRatio(a, b string) float64 {
	longer := len([]rune(a))
	if lb := len([]rune(b)); lb > longer {
		longer = lb
	}
	if longer == 0 {
		return 0.0
	}

	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(longer)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		set[tok] = struct{}{}
	}
	return set
}
