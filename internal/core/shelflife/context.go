package shelflife

import (
	"strings"
	"unicode"
)

type LocationType string

const (
	LocationTypeFridge  LocationType = "fridge"
	LocationTypeFreezer LocationType = "freezer"
	LocationTypePantry  LocationType = "pantry"
	LocationTypeUnknown LocationType = "unknown"
)

// Context is the typed view of a food name and declared location that rules
// are evaluated against.
type Context struct {
	Tokens       []string
	IsCooked     bool
	LocationType LocationType

	words  map[string]struct{}
	padded string
}

// Classify derives a Context from a food name and a location string.
func (c *Catalog) Classify(name, location string) Context {
	normalized := NormalizeName(name)
	tokens := strings.Fields(normalized)

	words := make(map[string]struct{}, len(tokens)*2)
	for _, tok := range tokens {
		words[tok] = struct{}{}
		if singular := singularize(tok); singular != tok {
			words[singular] = struct{}{}
		}
	}

	cooked := false
	for w := range words {
		if _, ok := c.cooked[w]; ok {
			cooked = true
			break
		}
	}

	return Context{
		Tokens:       tokens,
		IsCooked:     cooked,
		LocationType: resolveLocationType(location),
		words:        words,
		padded:       " " + normalized + " ",
	}
}

func (c Context) Has(token string) bool {
	_, ok := c.words[token]
	return ok
}

func (c Context) HasAny(tokens ...string) bool {
	for _, tok := range tokens {
		if c.Has(tok) {
			return true
		}
	}
	return false
}

func (c Context) HasAll(tokens ...string) bool {
	for _, tok := range tokens {
		if !c.Has(tok) {
			return false
		}
	}
	return true
}

// HasPhrase matches a normalized multi-word phrase on token boundaries.
func (c Context) HasPhrase(phrase string) bool {
	if phrase == "" {
		return false
	}
	return strings.Contains(c.padded, " "+phrase+" ")
}

func resolveLocationType(location string) LocationType {
	loc := strings.ToLower(location)
	switch {
	case strings.Contains(loc, "freez"), strings.Contains(loc, "frozen"):
		return LocationTypeFreezer
	case strings.Contains(loc, "fridge"), strings.Contains(loc, "refrigerat"):
		return LocationTypeFridge
	case strings.Contains(loc, "pantry"), strings.Contains(loc, "cupboard"):
		return LocationTypePantry
	default:
		return LocationTypeUnknown
	}
}

// NormalizeName lowercases, replaces punctuation with spaces and collapses
// whitespace. The result is the dedup name and the classifier input.
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteByte(' ')
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func singularize(token string) string {
	switch {
	case len(token) > 4 && strings.HasSuffix(token, "ies"):
		return strings.TrimSuffix(token, "ies") + "y"
	case len(token) > 3 && strings.HasSuffix(token, "s") && !strings.HasSuffix(token, "ss"):
		return strings.TrimSuffix(token, "s")
	default:
		return token
	}
}
