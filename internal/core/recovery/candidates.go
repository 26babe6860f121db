package recovery

import (
	"time"

	"github.com/MagicMike0112/Project-Study-BSH/internal/core/domain"
)

// Field aliases models commonly use instead of the requested names.
var (
	nameKeys       = []string{"name", "item", "title", "product"}
	genericKeys    = []string{"genericName", "generic_name", "generic"}
	quantityKeys   = []string{"quantity", "qty", "amount", "count"}
	unitKeys       = []string{"unit", "units", "uom"}
	locationKeys   = []string{"storageLocation", "storage_location", "location", "storage"}
	daysKeys       = []string{"shelfLifeDays", "shelf_life_days", "days", "shelfLife"}
	expiryKeys     = []string{"predictedExpiry", "predicted_expiry", "expiryDate", "expiry"}
	bestBeforeKeys = []string{"bestBeforeDate", "best_before_date", "bestBefore", "best_before"}
	categoryKeys   = []string{"category", "type"}
	confidenceKeys = []string{"confidence", "score", "probability"}
	purchaseKeys   = []string{"purchaseDate", "purchase_date", "date", "receiptDate"}
)

// Batch is the coerced form of a recovered extraction object.
type Batch struct {
	PurchaseDate *time.Time
	Candidates   []domain.InventoryCandidate
}

// DecodeBatch applies the intermediate schema to a recovered object. Rows
// that are not objects are skipped; missing or malformed fields stay nil.
// An absolute expiry date is converted to a day count from the purchase
// date (or fallbackDate when the receipt has none).
func DecodeBatch(obj map[string]any, fallbackDate time.Time) Batch {
	var out Batch
	if d, ok := CoerceDate(lookup(obj, purchaseKeys)); ok {
		out.PurchaseDate = &d
	}
	base := fallbackDate
	if out.PurchaseDate != nil {
		base = *out.PurchaseDate
	}

	rows, _ := obj["items"].([]any)
	for _, row := range rows {
		fields, ok := row.(map[string]any)
		if !ok {
			continue
		}
		out.Candidates = append(out.Candidates, decodeCandidate(fields, base))
	}
	return out
}

func decodeCandidate(fields map[string]any, base time.Time) domain.InventoryCandidate {
	var c domain.InventoryCandidate
	c.Name, _ = CoerceString(lookup(fields, nameKeys))
	c.GenericName, _ = CoerceString(lookup(fields, genericKeys))
	c.Unit, _ = CoerceString(lookup(fields, unitKeys))
	c.StorageLocationRaw, _ = CoerceString(lookup(fields, locationKeys))
	c.Category, _ = CoerceString(lookup(fields, categoryKeys))

	if q, ok := CoerceFloat(lookup(fields, quantityKeys)); ok {
		c.Quantity = &q
	}
	if conf, ok := CoerceFloat(lookup(fields, confidenceKeys)); ok {
		c.Confidence = &conf
	}
	if days, ok := CoerceInt(lookup(fields, daysKeys)); ok {
		c.ShelfLifeDaysRaw = &days
	} else if expiry, ok := CoerceDate(lookup(fields, expiryKeys)); ok && !base.IsZero() {
		days := domain.DaysBetween(base, expiry)
		c.ShelfLifeDaysRaw = &days
	}
	if bb, ok := CoerceDate(lookup(fields, bestBeforeKeys)); ok {
		c.BestBeforeDate = &bb
	}
	return c
}

// DecodeShelfLifeDays reads a single-item estimate. It returns nil when the
// value is missing or not a number.
func DecodeShelfLifeDays(obj map[string]any) *int {
	days, ok := CoerceInt(lookup(obj, daysKeys))
	if !ok {
		return nil
	}
	return &days
}

func lookup(fields map[string]any, keys []string) any {
	for _, k := range keys {
		if v, ok := fields[k]; ok && v != nil {
			return v
		}
	}
	return nil
}
