package shelflife

import "testing"

func mustDefaultCatalog(t *testing.T) *Catalog {
	t.Helper()
	catalog, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}
	return catalog
}

func TestClassifyNormalizesNameAndLocation(t *testing.T) {
	catalog := mustDefaultCatalog(t)

	ctx := catalog.Classify("  Leftover, FRIED-Rice!! ", "Bottom shelf of the Fridge")
	if got, want := len(ctx.Tokens), 3; got != want {
		t.Fatalf("expected %d tokens, got %d (%v)", want, got, ctx.Tokens)
	}
	if ctx.Tokens[0] != "leftover" || ctx.Tokens[1] != "fried" || ctx.Tokens[2] != "rice" {
		t.Fatalf("unexpected tokens: %v", ctx.Tokens)
	}
	if !ctx.IsCooked {
		t.Fatalf("expected fried leftovers to be cooked")
	}
	if ctx.LocationType != LocationTypeFridge {
		t.Fatalf("expected fridge, got %s", ctx.LocationType)
	}
}

func TestClassifyLocationVocabulary(t *testing.T) {
	catalog := mustDefaultCatalog(t)

	cases := map[string]LocationType{
		"freezer":            LocationTypeFreezer,
		"Chest FREEZER":      LocationTypeFreezer,
		"frozen":             LocationTypeFreezer,
		"freezing drawer":    LocationTypeFreezer,
		"refrigerated":       LocationTypeFridge,
		"refrigerator door":  LocationTypeFridge,
		"fridge":             LocationTypeFridge,
		"kitchen cupboard":   LocationTypePantry,
		"pantry":             LocationTypePantry,
		"":                   LocationTypeUnknown,
		"on the counter top": LocationTypeUnknown,
	}
	for location, want := range cases {
		if got := catalog.Classify("milk", location).LocationType; got != want {
			t.Fatalf("location %q: expected %s, got %s", location, want, got)
		}
	}
}

func TestContextPredicatesIncludeSingularForms(t *testing.T) {
	catalog := mustDefaultCatalog(t)

	ctx := catalog.Classify("Free range eggs and strawberries", "fridge")
	if !ctx.Has("egg") || !ctx.Has("eggs") {
		t.Fatalf("expected both plural and singular egg tokens")
	}
	if !ctx.Has("strawberry") {
		t.Fatalf("expected strawberries to singularize to strawberry")
	}
	if !ctx.HasAll("free", "range") || ctx.HasAll("free", "cage") {
		t.Fatalf("unexpected HasAll result")
	}
	if !ctx.HasAny("cage", "range") || ctx.HasAny("cage", "battery") {
		t.Fatalf("unexpected HasAny result")
	}
	if !ctx.HasPhrase("free range") || ctx.HasPhrase("range eggs free") {
		t.Fatalf("unexpected HasPhrase result")
	}
	if ctx.IsCooked {
		t.Fatalf("raw eggs must not be cooked")
	}
}

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"Milk 1.5%":         "milk 1 5",
		"  Greek   Yogurt ": "greek yogurt",
		"Hähnchen-Brust":    "hähnchen brust",
		"***":               "",
	}
	for in, want := range cases {
		if got := NormalizeName(in); got != want {
			t.Fatalf("NormalizeName(%q) = %q, want %q", in, got, want)
		}
	}
}
