package shelflife

import (
	"math"

	"github.com/MagicMike0112/Project-Study-BSH/internal/core/domain"
)

type mergeKey struct {
	name     string
	unit     domain.Unit
	location domain.StorageLocation
}

type mergeGroup struct {
	item    domain.InventoryItem
	daysSum int
	count   int
}

// Merge collapses items sharing (normalized name, unit, location). Quantities
// add up, shelf life is the rounded mean, confidence the max, and the
// earliest predicted expiry wins. Output keeps first-seen order.
func (e *Engine) Merge(items []domain.InventoryItem) []domain.InventoryItem {
	groups := make(map[mergeKey]*mergeGroup, len(items))
	order := make([]mergeKey, 0, len(items))

	for _, item := range items {
		if item.NormalizedName == "" {
			item.NormalizedName = NormalizeName(item.Name)
		}
		key := mergeKey{name: item.NormalizedName, unit: item.Unit, location: item.StorageLocation}
		g, ok := groups[key]
		if !ok {
			groups[key] = &mergeGroup{item: item, daysSum: item.ShelfLifeDays, count: 1}
			order = append(order, key)
			continue
		}

		g.item.Quantity = capQuantity(g.item.Quantity + item.Quantity)
		g.daysSum += item.ShelfLifeDays
		g.count++
		g.item.Confidence = math.Max(g.item.Confidence, item.Confidence)
		if item.PredictedExpiry.Before(g.item.PredictedExpiry.Time) {
			g.item.PredictedExpiry = item.PredictedExpiry
		}
		if item.ReferenceDate.Before(g.item.ReferenceDate.Time) {
			g.item.ReferenceDate = item.ReferenceDate
			g.item.ReferenceType = item.ReferenceType
		}
		if e.catalog.IsGenericCategory(g.item.Category) && !e.catalog.IsGenericCategory(item.Category) {
			g.item.Category = item.Category
		}
		if g.item.GenericName == "" {
			g.item.GenericName = item.GenericName
		}
		if sourceRank(item.Source) > sourceRank(g.item.Source) {
			g.item.Source = item.Source
		}
	}

	maxDays := e.policy.Config().MaxDays
	out := make([]domain.InventoryItem, 0, len(order))
	for _, key := range order {
		g := groups[key]
		if g.count > 1 {
			avg := int(math.Round(float64(g.daysSum) / float64(g.count)))
			g.item.ShelfLifeDays = clampDays(avg, maxDays)
		}
		if g.item.PredictedExpiry.Before(g.item.ReferenceDate.Time) {
			g.item.PredictedExpiry = g.item.ReferenceDate
		}
		out = append(out, g.item)
	}
	return out
}

// sourceRank orders provenance so a merged row reports its most
// authoritative contributor.
func sourceRank(s domain.EstimateSource) int {
	switch s {
	case domain.SourceRule:
		return 2
	case domain.SourceModel:
		return 1
	default:
		return 0
	}
}
