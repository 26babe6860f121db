package recovery

import (
	"testing"
	"time"
)

func TestDecodeBatchCoercesLooseFields(t *testing.T) {
	obj := map[string]any{
		"purchaseDate": "10.03.2024",
		"items": []any{
			map[string]any{
				"name":           "Milk",
				"qty":            "2 bottles",
				"unit":           "bottle",
				"location":       "Fridge",
				"shelfLifeDays":  "6.6",
				"confidence":     "0.7",
				"bestBeforeDate": "2024-03-20",
				"category":       "dairy",
			},
			map[string]any{
				"item":            "Chicken",
				"predictedExpiry": "2024-03-12",
			},
			"not an object",
		},
	}

	batch := DecodeBatch(obj, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if batch.PurchaseDate == nil || batch.PurchaseDate.Format("2006-01-02") != "2024-03-10" {
		t.Fatalf("unexpected purchase date %v", batch.PurchaseDate)
	}
	if len(batch.Candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(batch.Candidates))
	}

	milk := batch.Candidates[0]
	if milk.Name != "Milk" || *milk.Quantity != 2 || *milk.ShelfLifeDaysRaw != 7 || *milk.Confidence != 0.7 {
		t.Fatalf("unexpected milk candidate %+v", milk)
	}
	if milk.StorageLocationRaw != "Fridge" || milk.BestBeforeDate == nil {
		t.Fatalf("expected location and best-before, got %+v", milk)
	}

	chicken := batch.Candidates[1]
	if chicken.Name != "Chicken" || chicken.ShelfLifeDaysRaw == nil || *chicken.ShelfLifeDaysRaw != 2 {
		t.Fatalf("expected expiry date converted to 2 days, got %+v", chicken)
	}
	if chicken.Quantity != nil || chicken.Confidence != nil {
		t.Fatalf("missing fields must stay nil, got %+v", chicken)
	}
}

func TestDecodeShelfLifeDays(t *testing.T) {
	if got := DecodeShelfLifeDays(map[string]any{"shelfLifeDays": 12.0}); got == nil || *got != 12 {
		t.Fatalf("expected 12, got %v", got)
	}
	if got := DecodeShelfLifeDays(map[string]any{"days": "about 5 days"}); got != nil {
		t.Fatalf("non-numeric text must be rejected, got %v", *got)
	}
	if got := DecodeShelfLifeDays(map[string]any{}); got != nil {
		t.Fatalf("expected nil for missing days")
	}
}
