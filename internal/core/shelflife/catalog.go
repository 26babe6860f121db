package shelflife

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/MagicMike0112/Project-Study-BSH/internal/core/domain"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// Catalog is the immutable knowledge base of the engine: the ordered rule
// table plus the keyword sets used by classification and normalization.
// It is built once at startup and shared read-only between requests.
type Catalog struct {
	rules             *RuleTable
	cooked            map[string]struct{}
	units             map[string]unitAlias
	locations         []locationVocabulary
	nonFoodTokens     map[string]struct{}
	nonFoodPhrases    []string
	genericCategories map[string]struct{}
}

type unitAlias struct {
	unit   domain.Unit
	factor float64
}

type locationVocabulary struct {
	location domain.StorageLocation
	keywords []string
}

type catalogDocument struct {
	CookedKeywords    []string                     `yaml:"cookedKeywords"`
	Rules             []ruleDocument               `yaml:"rules"`
	Units             map[string][]string          `yaml:"units"`
	UnitMultipliers   map[string]unitMultiplierDoc `yaml:"unitMultipliers"`
	Locations         []locationDocument           `yaml:"locations"`
	NonFood           nonFoodDocument              `yaml:"nonFood"`
	GenericCategories []string                     `yaml:"genericCategories"`
}

type unitMultiplierDoc struct {
	Unit   string  `yaml:"unit"`
	Factor float64 `yaml:"factor"`
}

type locationDocument struct {
	Location string   `yaml:"location"`
	Keywords []string `yaml:"keywords"`
}

type nonFoodDocument struct {
	Tokens  []string `yaml:"tokens"`
	Phrases []string `yaml:"phrases"`
}

var knownUnits = map[domain.Unit]struct{}{
	domain.UnitPieces: {}, domain.UnitKilo: {}, domain.UnitGram: {}, domain.UnitLiter: {},
	domain.UnitMilli: {}, domain.UnitPack: {}, domain.UnitBox: {}, domain.UnitCup: {},
	domain.UnitBottle: {}, domain.UnitCan: {}, domain.UnitTray: {}, domain.UnitJar: {},
	domain.UnitBunch: {},
}

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	return ParseCatalog(embeddedCatalog)
})

// DefaultCatalog returns the catalog compiled into the binary.
func DefaultCatalog() (*Catalog, error) {
	return defaultCatalog()
}

// LoadCatalog reads a catalog file, or returns the built-in catalog when
// path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var doc catalogDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	rules, err := compileRules(doc.Rules)
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		rules:             rules,
		cooked:            wordSet(doc.CookedKeywords),
		units:             make(map[string]unitAlias),
		nonFoodTokens:     wordSet(doc.NonFood.Tokens),
		genericCategories: wordSet(doc.GenericCategories),
	}
	if len(c.cooked) == 0 {
		return nil, fmt.Errorf("catalog: cookedKeywords must not be empty")
	}

	for canonical, aliases := range doc.Units {
		unit := domain.Unit(canonical)
		if _, ok := knownUnits[unit]; !ok {
			return nil, fmt.Errorf("catalog: unknown unit %q", canonical)
		}
		c.units[strings.ToLower(canonical)] = unitAlias{unit: unit, factor: 1}
		for _, alias := range aliases {
			c.units[strings.ToLower(strings.TrimSpace(alias))] = unitAlias{unit: unit, factor: 1}
		}
	}
	for alias, m := range doc.UnitMultipliers {
		unit := domain.Unit(m.Unit)
		if _, ok := knownUnits[unit]; !ok {
			return nil, fmt.Errorf("catalog: unit multiplier %q targets unknown unit %q", alias, m.Unit)
		}
		if m.Factor <= 0 {
			return nil, fmt.Errorf("catalog: unit multiplier %q must have a positive factor", alias)
		}
		c.units[strings.ToLower(alias)] = unitAlias{unit: unit, factor: m.Factor}
	}

	for _, loc := range doc.Locations {
		location := domain.StorageLocation(loc.Location)
		switch location {
		case domain.LocationFridge, domain.LocationFreezer, domain.LocationPantry:
		default:
			return nil, fmt.Errorf("catalog: unknown location %q", loc.Location)
		}
		keywords := make([]string, 0, len(loc.Keywords))
		for _, kw := range loc.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		c.locations = append(c.locations, locationVocabulary{location: location, keywords: keywords})
	}

	for _, phrase := range doc.NonFood.Phrases {
		if p := NormalizeName(phrase); p != "" {
			c.nonFoodPhrases = append(c.nonFoodPhrases, p)
		}
	}
	return c, nil
}

func (c *Catalog) Rules() *RuleTable {
	return c.rules
}

// IsGenericCategory reports whether a category carries no information,
// like "other" or an empty string.
func (c *Catalog) IsGenericCategory(category string) bool {
	_, ok := c.genericCategories[strings.ToLower(strings.TrimSpace(category))]
	return ok
}

func wordSet(words []string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return out
}
