package shelflife

import (
	"strings"
	"testing"
)

func TestRuleTablePrefersSpecificRiceRule(t *testing.T) {
	catalog := mustDefaultCatalog(t)

	match, ok := catalog.Rules().Lookup(catalog.Classify("fried rice", "fridge"))
	if !ok {
		t.Fatalf("expected a rule match for fried rice")
	}
	if match.RuleID != "leftover-rice" || match.Days != 1 {
		t.Fatalf("expected leftover-rice with 1 day, got %s with %d", match.RuleID, match.Days)
	}

	match, ok = catalog.Rules().Lookup(catalog.Classify("roasted vegetables", "fridge"))
	if !ok || match.RuleID != "leftovers" || match.Days != 2 {
		t.Fatalf("expected generic leftovers with 2 days, got %+v ok=%v", match, ok)
	}
}

func TestRuleTableCategories(t *testing.T) {
	catalog := mustDefaultCatalog(t)

	cases := []struct {
		name     string
		location string
		ruleID   string
		days     int
	}{
		{name: "chicken breast", location: "fridge", ruleID: "raw-poultry", days: 2},
		{name: "chicken breast", location: "freezer", ruleID: "raw-poultry", days: 270},
		{name: "ground beef 500g", location: "fridge", ruleID: "ground-meat", days: 1},
		{name: "beef mince", location: "fridge", ruleID: "ground-meat", days: 1},
		{name: "salmon fillet", location: "fridge", ruleID: "fish-seafood", days: 2},
		{name: "pork chops", location: "fridge", ruleID: "red-meat", days: 4},
		{name: "free range eggs", location: "fridge", ruleID: "eggs", days: 28},
		{name: "whole milk", location: "fridge", ruleID: "milk", days: 7},
	}
	for _, tc := range cases {
		match, ok := catalog.Rules().Lookup(catalog.Classify(tc.name, tc.location))
		if !ok {
			t.Fatalf("%s/%s: expected rule %s", tc.name, tc.location, tc.ruleID)
		}
		if match.RuleID != tc.ruleID || match.Days != tc.days {
			t.Fatalf("%s/%s: expected %s=%d, got %s=%d", tc.name, tc.location, tc.ruleID, tc.days, match.RuleID, match.Days)
		}
	}
}

func TestRuleTableSkipsUnknownLocationAndExcludedItems(t *testing.T) {
	catalog := mustDefaultCatalog(t)

	if _, ok := catalog.Rules().Lookup(catalog.Classify("chicken breast", "car trunk")); ok {
		t.Fatalf("unknown location must skip rule evaluation")
	}
	if _, ok := catalog.Rules().Lookup(catalog.Classify("canned tuna", "pantry")); ok {
		t.Fatalf("canned tuna must not match the fresh fish rule")
	}
	if _, ok := catalog.Rules().Lookup(catalog.Classify("egg noodles", "pantry")); ok {
		t.Fatalf("egg noodles must not match the eggs rule")
	}
	if _, ok := catalog.Rules().Lookup(catalog.Classify("chicken breast", "pantry")); ok {
		t.Fatalf("a first match without pantry days must be a miss")
	}
}

func TestDefaultRulesKeepFreezerLongerThanFridge(t *testing.T) {
	catalog := mustDefaultCatalog(t)
	if catalog.Rules().Len() == 0 {
		t.Fatalf("expected default rules to load")
	}

	for _, rule := range catalog.Rules().rules {
		if rule.FridgeDays != nil && rule.FreezerDays != nil && *rule.FreezerDays <= *rule.FridgeDays {
			t.Fatalf("rule %s: freezer %d must exceed fridge %d", rule.ID, *rule.FreezerDays, *rule.FridgeDays)
		}
	}
}

func TestParseCatalogRejectsInvalidRules(t *testing.T) {
	base := `
cookedKeywords: [cooked]
units: {pcs: [pc]}
rules:
`
	cases := map[string]string{
		"freezer not longer": `
  - id: bad
    match: {any: [milk]}
    days: {fridge: 10, freezer: 5}
`,
		"empty predicate": `
  - id: bad
    match: {}
    days: {fridge: 3}
`,
		"no days": `
  - id: bad
    match: {any: [milk]}
    days: {}
`,
		"duplicate id": `
  - id: dup
    match: {any: [milk]}
    days: {fridge: 3}
  - id: dup
    match: {any: [egg]}
    days: {fridge: 3}
`,
	}
	for name, rules := range cases {
		if _, err := ParseCatalog([]byte(base + rules)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestParseCatalogCustomRuleOrder(t *testing.T) {
	doc := `
cookedKeywords: [cooked]
rules:
  - id: cooked-anything
    match: {cooked: true}
    days: {fridge: 3}
  - id: pasta
    match: {any: [pasta]}
    days: {fridge: 5, pantry: 365}
`
	catalog, err := ParseCatalog([]byte(doc))
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}
	match, ok := catalog.Rules().Lookup(catalog.Classify("cooked pasta", "fridge"))
	if !ok || match.RuleID != "cooked-anything" {
		t.Fatalf("expected first rule to win, got %+v", match)
	}
	match, ok = catalog.Rules().Lookup(catalog.Classify("pasta", "pantry"))
	if !ok || match.Days != 365 {
		t.Fatalf("expected pantry pasta rule, got %+v", match)
	}
	if strings.TrimSpace(match.Category) != "" {
		t.Fatalf("expected empty category, got %q", match.Category)
	}
}
