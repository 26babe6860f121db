package shelflife

import (
	"sort"

	"github.com/MagicMike0112/Project-Study-BSH/internal/core/domain"
)

// RankAndTruncate orders items by descending confidence, name as tie-break,
// and keeps at most limit of them. A non-positive limit keeps everything.
func RankAndTruncate(items []domain.InventoryItem, limit int) []domain.InventoryItem {
	ranked := append([]domain.InventoryItem(nil), items...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Confidence != ranked[j].Confidence {
			return ranked[i].Confidence > ranked[j].Confidence
		}
		return ranked[i].NormalizedName < ranked[j].NormalizedName
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
