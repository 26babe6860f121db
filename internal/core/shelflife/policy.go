package shelflife

import (
	"errors"
	"strings"
	"time"

	"github.com/MagicMike0112/Project-Study-BSH/internal/core/domain"
)

const (
	MinShelfLifeDays = 1
	MaxShelfLifeDays = 365
)

var errMissingPurchaseDate = errors.New("purchasedDate is required")

type PolicyConfig struct {
	// FallbackDays is used when neither a rule nor the model gives a count.
	FallbackDays int
	MaxDays      int
	// Freezer estimates below FreezerImplausibleBelow are raised to
	// FreezerFloorDays.
	FreezerImplausibleBelow int
	FreezerFloorDays        int
}

func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		FallbackDays:            7,
		MaxDays:                 MaxShelfLifeDays,
		FreezerImplausibleBelow: 30,
		FreezerFloorDays:        90,
	}
}

func (c PolicyConfig) normalize() PolicyConfig {
	def := DefaultPolicyConfig()
	if c.MaxDays < MinShelfLifeDays || c.MaxDays > MaxShelfLifeDays {
		c.MaxDays = def.MaxDays
	}
	if c.FallbackDays < MinShelfLifeDays {
		c.FallbackDays = def.FallbackDays
	}
	c.FallbackDays = clampDays(c.FallbackDays, c.MaxDays)
	if c.FreezerImplausibleBelow < 0 {
		c.FreezerImplausibleBelow = def.FreezerImplausibleBelow
	}
	if c.FreezerFloorDays < MinShelfLifeDays {
		c.FreezerFloorDays = def.FreezerFloorDays
	}
	c.FreezerFloorDays = clampDays(c.FreezerFloorDays, c.MaxDays)
	return c
}

// Policy reconciles rule table, model estimate and printed dates into one
// shelf-life decision.
type Policy struct {
	catalog *Catalog
	cfg     PolicyConfig
}

func NewPolicy(catalog *Catalog, cfg PolicyConfig) *Policy {
	return &Policy{catalog: catalog, cfg: cfg.normalize()}
}

func (p *Policy) Config() PolicyConfig {
	return p.cfg
}

// Decision is the input of one shelf-life decision. ModelDays is nil when
// the model gave no estimate or was not consulted.
type Decision struct {
	Name        string
	GenericName string
	Location    string
	Reference   Reference
	BestBefore  *time.Time
	ModelDays   *int
}

type Estimate struct {
	Days            int
	Location        domain.StorageLocation
	Reference       Reference
	PredictedExpiry time.Time
	Source          domain.EstimateSource
	RuleID          string
	Category        string
}

// RuleFor reports the rule that would decide this item without consulting
// the model. Opened items never use rules.
func (p *Policy) RuleFor(name, genericName, location string, ref Reference) (RuleMatch, bool) {
	if ref.Type != domain.ReferencePurchase {
		return RuleMatch{}, false
	}
	ctx := p.catalog.Classify(joinNames(name, genericName), location)
	return p.catalog.Rules().Lookup(ctx)
}

func (p *Policy) Decide(d Decision) Estimate {
	est := Estimate{
		Location:  p.catalog.NormalizeLocation(d.Location),
		Reference: d.Reference,
	}

	if match, ok := p.RuleFor(d.Name, d.GenericName, d.Location, d.Reference); ok {
		est.Days = match.Days
		est.Source = domain.SourceRule
		est.RuleID = match.RuleID
		est.Category = match.Category
	} else if d.ModelDays != nil && *d.ModelDays > 0 {
		est.Days = *d.ModelDays
		est.Source = domain.SourceModel
	} else {
		est.Days = p.cfg.FallbackDays
		est.Source = domain.SourceFallback
	}
	est.Days = clampDays(est.Days, p.cfg.MaxDays)

	// Best-before never shortens frozen food: freezing stops the countdown.
	if est.Location == domain.LocationFreezer {
		if est.Days < p.cfg.FreezerImplausibleBelow {
			est.Days = max(est.Days, p.cfg.FreezerFloorDays)
		}
	} else if d.BestBefore != nil {
		remaining := domain.DaysBetween(d.Reference.Date, *d.BestBefore)
		if remaining < est.Days {
			est.Days = max(remaining, MinShelfLifeDays)
		}
	}
	est.Days = clampDays(est.Days, p.cfg.MaxDays)

	est.PredictedExpiry = d.Reference.Date.AddDate(0, 0, est.Days)
	if est.PredictedExpiry.Before(d.Reference.Date) {
		est.PredictedExpiry = d.Reference.Date
	}
	return est
}

func clampDays(days, maxDays int) int {
	if days < MinShelfLifeDays {
		return MinShelfLifeDays
	}
	if days > maxDays {
		return maxDays
	}
	return days
}

func joinNames(name, genericName string) string {
	name = strings.TrimSpace(name)
	genericName = strings.TrimSpace(genericName)
	if genericName == "" || strings.EqualFold(name, genericName) {
		return name
	}
	return name + " " + genericName
}
