package shelflife

import (
	"math"
	"strings"

	"github.com/MagicMike0112/Project-Study-BSH/internal/core/domain"
)

const defaultConfidence = 0.5

// MaxQuantity bounds a single item's quantity so responses stay encodable.
const MaxQuantity = 100000.0

// NormalizeUnit maps a free-text unit to the canonical enum. The returned
// factor scales the quantity (a dozen is twelve pieces). Unknown units
// become pieces.
func (c *Catalog) NormalizeUnit(raw string) (domain.Unit, float64) {
	key := strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), ".")))
	if alias, ok := c.units[key]; ok {
		return alias.unit, alias.factor
	}
	return domain.UnitPieces, 1
}

// NormalizeLocation maps a free-text location to fridge, freezer or pantry.
// Anything unrecognized is stored in the fridge.
func (c *Catalog) NormalizeLocation(raw string) domain.StorageLocation {
	loc := strings.ToLower(strings.TrimSpace(raw))
	if loc == "" {
		return domain.LocationFridge
	}
	for _, vocab := range c.locations {
		for _, kw := range vocab.keywords {
			if strings.Contains(loc, kw) {
				return vocab.location
			}
		}
	}
	return domain.LocationFridge
}

// IsNonFood reports whether a row names something that is clearly not
// edible, such as cleaning products, bags or deposit lines.
func (c *Catalog) IsNonFood(name string) bool {
	normalized := NormalizeName(name)
	if normalized == "" {
		return false
	}
	for _, tok := range strings.Fields(normalized) {
		if _, ok := c.nonFoodTokens[tok]; ok {
			return true
		}
		if _, ok := c.nonFoodTokens[singularize(tok)]; ok {
			return true
		}
	}
	padded := " " + normalized + " "
	for _, phrase := range c.nonFoodPhrases {
		if strings.Contains(padded, " "+phrase+" ") {
			return true
		}
	}
	return false
}

// NormalizeQuantity returns a positive finite quantity, defaulting to one
// and capped at MaxQuantity.
func NormalizeQuantity(q *float64, factor float64) float64 {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		factor = 1
	}
	if q == nil || *q <= 0 || math.IsNaN(*q) || math.IsInf(*q, 0) {
		return capQuantity(factor)
	}
	return capQuantity(*q * factor)
}

func capQuantity(q float64) float64 {
	if math.IsNaN(q) || q <= 0 {
		return 1
	}
	return math.Min(q, MaxQuantity)
}

// NormalizeConfidence maps a model confidence into [0,1]. Values in (1,100]
// are read as percentages.
func NormalizeConfidence(v *float64) float64 {
	if v == nil {
		return defaultConfidence
	}
	c := *v
	if c > 1 && c <= 100 {
		c /= 100
	}
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}
