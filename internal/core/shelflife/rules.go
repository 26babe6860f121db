package shelflife

import (
	"fmt"
	"strings"
)

// Rule is one compiled entry of the rule table.
type Rule struct {
	ID          string
	Category    string
	Match       func(Context) bool
	FridgeDays  *int
	FreezerDays *int
	PantryDays  *int
}

// DaysFor returns the day count for a location, or nil when the rule has
// no opinion there.
func (r Rule) DaysFor(location LocationType) *int {
	switch location {
	case LocationTypeFridge:
		return r.FridgeDays
	case LocationTypeFreezer:
		return r.FreezerDays
	case LocationTypePantry:
		return r.PantryDays
	default:
		return nil
	}
}

type RuleMatch struct {
	RuleID   string
	Category string
	Days     int
}

// RuleTable is an ordered, immutable list of rules.
type RuleTable struct {
	rules []Rule
}

func NewRuleTable(rules []Rule) *RuleTable {
	return &RuleTable{rules: append([]Rule(nil), rules...)}
}

func (t *RuleTable) Len() int {
	return len(t.rules)
}

// Lookup evaluates rules in priority order. The first matching rule
// decides: if it has no day count for the context location the result is
// a miss, so the caller falls back to the model. Unknown locations are
// never evaluated.
func (t *RuleTable) Lookup(ctx Context) (RuleMatch, bool) {
	if t == nil || ctx.LocationType == LocationTypeUnknown {
		return RuleMatch{}, false
	}
	for _, rule := range t.rules {
		if !rule.Match(ctx) {
			continue
		}
		days := rule.DaysFor(ctx.LocationType)
		if days == nil {
			return RuleMatch{}, false
		}
		return RuleMatch{RuleID: rule.ID, Category: rule.Category, Days: *days}, true
	}
	return RuleMatch{}, false
}

type ruleDocument struct {
	ID       string            `yaml:"id"`
	Category string            `yaml:"category"`
	Match    predicateDocument `yaml:"match"`
	Days     daysDocument      `yaml:"days"`
}

type predicateDocument struct {
	All     []string `yaml:"all"`
	Any     []string `yaml:"any"`
	None    []string `yaml:"none"`
	Phrases []string `yaml:"phrases"`
	Cooked  *bool    `yaml:"cooked"`
}

type daysDocument struct {
	Fridge  *int `yaml:"fridge"`
	Freezer *int `yaml:"freezer"`
	Pantry  *int `yaml:"pantry"`
}

func compileRules(docs []ruleDocument) (*RuleTable, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("catalog: rules must not be empty")
	}
	seen := make(map[string]struct{}, len(docs))
	rules := make([]Rule, 0, len(docs))
	for i, doc := range docs {
		id := strings.TrimSpace(doc.ID)
		if id == "" {
			return nil, fmt.Errorf("catalog: rule #%d has no id", i)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("catalog: duplicate rule id %q", id)
		}
		seen[id] = struct{}{}

		match, err := compilePredicate(doc.Match)
		if err != nil {
			return nil, fmt.Errorf("catalog: rule %q: %w", id, err)
		}
		if err := validateDays(doc.Days); err != nil {
			return nil, fmt.Errorf("catalog: rule %q: %w", id, err)
		}
		rules = append(rules, Rule{
			ID:          id,
			Category:    strings.TrimSpace(doc.Category),
			Match:       match,
			FridgeDays:  doc.Days.Fridge,
			FreezerDays: doc.Days.Freezer,
			PantryDays:  doc.Days.Pantry,
		})
	}
	return NewRuleTable(rules), nil
}

func validateDays(d daysDocument) error {
	if d.Fridge == nil && d.Freezer == nil && d.Pantry == nil {
		return fmt.Errorf("at least one location day count is required")
	}
	for name, v := range map[string]*int{"fridge": d.Fridge, "freezer": d.Freezer, "pantry": d.Pantry} {
		if v != nil && (*v < 1 || *v > MaxShelfLifeDays) {
			return fmt.Errorf("%s days %d out of range [1,%d]", name, *v, MaxShelfLifeDays)
		}
	}
	if d.Fridge != nil && d.Freezer != nil && *d.Freezer <= *d.Fridge {
		return fmt.Errorf("freezer days %d must exceed fridge days %d", *d.Freezer, *d.Fridge)
	}
	return nil
}

func compilePredicate(doc predicateDocument) (func(Context) bool, error) {
	all := normalizeWords(doc.All)
	anyOf := normalizeWords(doc.Any)
	none := normalizeWords(doc.None)
	phrases := make([]string, 0, len(doc.Phrases))
	for _, p := range doc.Phrases {
		if p = NormalizeName(p); p != "" {
			phrases = append(phrases, p)
		}
	}
	if len(all) == 0 && len(anyOf) == 0 && len(phrases) == 0 && doc.Cooked == nil {
		return nil, fmt.Errorf("match needs at least one of all, any, phrases or cooked")
	}

	var cooked *bool
	if doc.Cooked != nil {
		v := *doc.Cooked
		cooked = &v
	}

	return func(c Context) bool {
		if cooked != nil && c.IsCooked != *cooked {
			return false
		}
		if len(all) > 0 && !c.HasAll(all...) {
			return false
		}
		if len(anyOf) > 0 || len(phrases) > 0 {
			hit := c.HasAny(anyOf...)
			for _, p := range phrases {
				if hit {
					break
				}
				hit = c.HasPhrase(p)
			}
			if !hit {
				return false
			}
		}
		return !c.HasAny(none...)
	}, nil
}

func normalizeWords(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			out = append(out, w)
		}
	}
	return out
}
