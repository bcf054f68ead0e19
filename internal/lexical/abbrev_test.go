package lexical

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	r := NewResolver(nil)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "acronym", input: "NEJM", want: "new england journal of medicine"},
		{name: "dotted short form", input: "N. Engl. J. Med.", want: "new england journal of medicine"},
		{name: "mixed case", input: "Phys Rev Lett", want: "physical review letters"},
		{name: "unknown name passes through normalized", input: "Journal of Obscure Results", want: "journal of obscure results"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Canonicalize(tt.input))
		})
	}
}

func TestCanonicalizeRoundTrip(t *testing.T) {
	r := NewResolver(nil)

	// A canonical name must come back unchanged.
	canonical := r.Canonicalize("BMJ")
	assert.Equal(t, canonical, r.Canonicalize(canonical))
}

func TestResolverExtraMappings(t *testing.T) {
	r := NewResolver(map[string]string{
		"J. Obscure Res.": "Journal of Obscure Results",
		"NEJM":            "Overridden Journal",
	})

	assert.Equal(t, "journal of obscure results", r.Canonicalize("j obscure res"))
	// Config entries override the seeded table.
	assert.Equal(t, "overridden journal", r.Canonicalize("nejm"))
}

func TestCanonicalSimilarity(t *testing.T) {
	r := NewResolver(nil)

	// Abbreviation and full form resolve to the same canonical name.
	assert.InDelta(t, 1.0, r.CanonicalSimilarity("N Engl J Med", "New England Journal of Medicine"), 1e-9)

	// Unrelated names stay dissimilar.
	assert.Less(t, r.CanonicalSimilarity("Nature", "Journal of Sport"), 0.3)
}
