package lexical

// defaultAbbreviations maps normalized journal short forms to canonical
// full names. Keys and values are stored in Normalize form so lookups are
// case- and punctuation-insensitive and canonical names round-trip
// unchanged through Canonicalize.
var defaultAbbreviations = map[string]string{
	"pnas":                   "proceedings of the national academy of sciences",
	"proc natl acad sci":     "proceedings of the national academy of sciences",
	"jama":                   "journal of the american medical association",
	"j am med assoc":         "journal of the american medical association",
	"nejm":                   "new england journal of medicine",
	"n engl j med":           "new england journal of medicine",
	"bmj":                    "british medical journal",
	"br med j":               "british medical journal",
	"prl":                    "physical review letters",
	"phys rev lett":          "physical review letters",
	"j biol chem":            "journal of biological chemistry",
	"nat commun":             "nature communications",
	"am j sports med":        "american journal of sports medicine",
	"j appl physiol":         "journal of applied physiology",
	"j sports sci":           "journal of sports sciences",
	"med sci sports exerc":   "medicine and science in sports and exercise",
	"j strength cond res":    "journal of strength and conditioning research",
	"scand j med sci sports": "scandinavian journal of medicine and science in sports",
	"int j sports med":       "international journal of sports medicine",
	"eur j appl physiol":     "european journal of applied physiology",
}

// Resolver maps known journal abbreviations and short forms to canonical
// full names. The mapping is immutable after construction and safe for
// concurrent use.
type Resolver struct {
	mapping map[string]string
}

// NewResolver creates a Resolver seeded with the built-in abbreviation
// table. Entries in extra are merged on top and override seeded ones;
// both keys and values are normalized, so the mapping stays insensitive to
// case and punctuation regardless of how the configuration spells them.
func NewResolver(extra map[string]string) *Resolver {
	mapping := make(map[string]string, len(defaultAbbreviations)+len(extra))
	for abbrev, full := range defaultAbbreviations {
		mapping[abbrev] = full
	}
	for abbrev, full := range extra {
		key := Normalize(abbrev)
		if key == "" {
			continue
		}
		mapping[key] = Normalize(full)
	}
	return &Resolver{mapping: mapping}
}

// Canonicalize normalizes name and resolves it through the abbreviation
// table. Returns the canonical full name when the normalized form is a
// known abbreviation, otherwise the normalized input unchanged.
func (r *Resolver) Canonicalize(name string) string {
	normalized := Normalize(name)
	if full, ok := r.mapping[normalized]; ok {
		return full
	}
	return normalized
}

// CanonicalSimilarity computes the blended Similarity of two journal names
// after resolving both through the abbreviation table.
func (r *Resolver) CanonicalSimilarity(a, b string) float64 {
	return Similarity(r.Canonicalize(a), r.Canonicalize(b))
}
