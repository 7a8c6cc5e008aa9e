// Package category maps free-text business categories onto a fixed set
// of normalized anchor archetypes used for competitor relevance checks.
package category

import "strings"

// Anchor is the normalized archetype a free-text category resolves to.
type Anchor struct {
	Label         string   `json:"label" yaml:"label"`
	AllowedTypes  []string `json:"allowed_types" yaml:"allowed_types"`
	KeywordTokens []string `json:"keyword_tokens" yaml:"keyword_tokens"`
}

// GenericLabel is the anchor label for categories with no known
// archetype. Its anchor carries no specific place types.
const GenericLabel = "local service"

// archetypes is the fixed lookup table. Matching is substring
// containment on the lowercased input, evaluated in order, so more
// specific archetypes must precede broader ones (a "coffee shop" must
// not resolve as "shop").
var archetypes = []struct {
	substrings []string
	anchor     Anchor
}{
	{
		substrings: []string{"coffee", "cafe", "café", "espresso"},
		anchor: Anchor{
			Label:         "coffee shop",
			AllowedTypes:  []string{"cafe", "coffee_shop", "bakery"},
			KeywordTokens: []string{"coffee", "cafe", "espresso", "brunch"},
		},
	},
	{
		substrings: []string{"restaurant", "diner", "eatery", "bistro", "grill"},
		anchor: Anchor{
			Label:         "restaurant",
			AllowedTypes:  []string{"restaurant", "meal_takeaway", "meal_delivery"},
			KeywordTokens: []string{"restaurant", "food", "dining"},
		},
	},
	{
		// Before "bar": "barber" contains "bar".
		substrings: []string{"hair", "barber", "salon"},
		anchor: Anchor{
			Label:         "hair salon",
			AllowedTypes:  []string{"hair_salon", "barber_shop", "beauty_salon"},
			KeywordTokens: []string{"hair", "barber", "salon"},
		},
	},
	{
		substrings: []string{"bar", "pub", "tavern", "brewery"},
		anchor: Anchor{
			Label:         "bar",
			AllowedTypes:  []string{"bar", "pub", "night_club"},
			KeywordTokens: []string{"bar", "drinks", "pub"},
		},
	},
	{
		substrings: []string{"clothing", "boutique", "apparel", "fashion"},
		anchor: Anchor{
			Label:         "clothing store",
			AllowedTypes:  []string{"clothing_store", "shoe_store", "store"},
			KeywordTokens: []string{"clothing", "fashion", "apparel"},
		},
	},
	{
		substrings: []string{"grocery", "supermarket", "food store"},
		anchor: Anchor{
			Label:         "grocery store",
			AllowedTypes:  []string{"grocery_store", "supermarket", "convenience_store"},
			KeywordTokens: []string{"grocery", "supermarket", "market"},
		},
	},
	{
		substrings: []string{"spa", "beauty", "nail", "massage"},
		anchor: Anchor{
			Label:         "beauty spa",
			AllowedTypes:  []string{"spa", "beauty_salon", "nail_salon", "massage"},
			KeywordTokens: []string{"spa", "beauty", "massage"},
		},
	},
}

// Resolve maps a free-text category to its anchor. Unknown categories
// map to the generic anchor; its keyword tokens fall back to the input's
// own words so nearby search still has something to query with.
func Resolve(freeText string) Anchor {
	lowered := strings.ToLower(strings.TrimSpace(freeText))
	if lowered == "" {
		return Anchor{Label: GenericLabel}
	}

	if a, ok := resolveOverride(lowered); ok {
		return a
	}

	for _, at := range archetypes {
		for _, sub := range at.substrings {
			if strings.Contains(lowered, sub) {
				return at.anchor
			}
		}
	}

	return Anchor{
		Label:         GenericLabel,
		KeywordTokens: strings.Fields(lowered),
	}
}

// Specific reports whether the anchor resolved to a known archetype
// with place types to match against.
func (a Anchor) Specific() bool {
	return len(a.AllowedTypes) > 0
}

// Matches reports whether a candidate looks like the same kind of
// business as the anchor: any of its type tags intersects the anchor's
// allowed types, case-insensitively.
func Matches(candidateTypes []string, a Anchor) bool {
	for _, ct := range candidateTypes {
		lowered := strings.ToLower(ct)
		for _, allowed := range a.AllowedTypes {
			if lowered == strings.ToLower(allowed) {
				return true
			}
		}
	}
	return false
}

// TypeOverlap is the looser tier-3 test: the candidate shares at least
// one type tag with the anchor, or one of the anchor's keyword tokens
// appears in a candidate type tag.
func TypeOverlap(candidateTypes []string, a Anchor) bool {
	if Matches(candidateTypes, a) {
		return true
	}
	for _, ct := range candidateTypes {
		lowered := strings.ToLower(ct)
		for _, kw := range a.KeywordTokens {
			if kw != "" && strings.Contains(lowered, strings.ToLower(kw)) {
				return true
			}
		}
	}
	return false
}
