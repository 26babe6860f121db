package shelflife

import (
	"strings"
	"time"

	"github.com/MagicMike0112/Project-Study-BSH/internal/core/domain"
)

const DefaultMaxBatchItems = 60

type DropReason string

const (
	DropUnreadableName DropReason = "unreadable_name"
	DropNonFood        DropReason = "non_food"
)

// BatchStats summarizes what happened to candidates while building a batch.
type BatchStats struct {
	Candidates int
	Dropped    map[DropReason]int
	Merged     int
	Truncated  int
	Sources    map[domain.EstimateSource]int
}

// Engine turns recovered candidates into a bounded, deduplicated batch. It
// has no I/O and is safe for concurrent use.
type Engine struct {
	catalog  *Catalog
	policy   *Policy
	maxItems int
}

func NewEngine(catalog *Catalog, policyCfg PolicyConfig, maxItems int) *Engine {
	if maxItems <= 0 {
		maxItems = DefaultMaxBatchItems
	}
	return &Engine{
		catalog:  catalog,
		policy:   NewPolicy(catalog, policyCfg),
		maxItems: maxItems,
	}
}

// Build normalizes every candidate against the purchase date, drops
// non-food and unreadable rows, merges duplicates and truncates the result.
func (e *Engine) Build(purchaseDate time.Time, candidates []domain.InventoryCandidate) (domain.BatchResult, BatchStats) {
	stats := BatchStats{
		Candidates: len(candidates),
		Dropped:    make(map[DropReason]int),
		Sources:    make(map[domain.EstimateSource]int),
	}
	ref := Reference{Date: domain.NewCalendarDate(purchaseDate).Time, Type: domain.ReferencePurchase}

	items := make([]domain.InventoryItem, 0, len(candidates))
	for _, cand := range candidates {
		item, reason, ok := e.normalizeCandidate(ref, cand)
		if !ok {
			stats.Dropped[reason]++
			continue
		}
		items = append(items, item)
	}

	merged := e.Merge(items)
	stats.Merged = len(items) - len(merged)
	ranked := RankAndTruncate(merged, e.maxItems)
	stats.Truncated = len(merged) - len(ranked)
	for _, item := range ranked {
		stats.Sources[item.Source]++
	}

	return domain.BatchResult{
		PurchaseDate: domain.NewCalendarDate(ref.Date),
		Items:        ranked,
	}, stats
}

func (e *Engine) normalizeCandidate(ref Reference, cand domain.InventoryCandidate) (domain.InventoryItem, DropReason, bool) {
	name := strings.Join(strings.Fields(cand.Name), " ")
	normalized := NormalizeName(name)
	if normalized == "" {
		return domain.InventoryItem{}, DropUnreadableName, false
	}
	if e.catalog.IsNonFood(name) || e.catalog.IsNonFood(cand.GenericName) {
		return domain.InventoryItem{}, DropNonFood, false
	}

	unit, factor := e.catalog.NormalizeUnit(cand.Unit)
	est := e.policy.Decide(Decision{
		Name:        name,
		GenericName: cand.GenericName,
		Location:    cand.StorageLocationRaw,
		Reference:   ref,
		BestBefore:  cand.BestBeforeDate,
		ModelDays:   cand.ShelfLifeDaysRaw,
	})

	category := strings.ToLower(strings.TrimSpace(cand.Category))
	if e.catalog.IsGenericCategory(category) {
		if est.Category != "" {
			category = est.Category
		} else {
			category = "other"
		}
	}

	return domain.InventoryItem{
		Name:            name,
		GenericName:     strings.TrimSpace(cand.GenericName),
		Quantity:        NormalizeQuantity(cand.Quantity, factor),
		Unit:            unit,
		StorageLocation: est.Location,
		ShelfLifeDays:   est.Days,
		ReferenceDate:   domain.NewCalendarDate(est.Reference.Date),
		ReferenceType:   est.Reference.Type,
		PredictedExpiry: domain.NewCalendarDate(est.PredictedExpiry),
		Category:        category,
		Confidence:      NormalizeConfidence(cand.Confidence),
		Source:          est.Source,
		NormalizedName:  normalized,
	}, "", true
}
