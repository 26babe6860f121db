package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/MagicMike0112/Project-Study-BSH/internal/core/domain"
	"github.com/MagicMike0112/Project-Study-BSH/internal/core/ports"
	"github.com/MagicMike0112/Project-Study-BSH/internal/core/recovery"
	"github.com/MagicMike0112/Project-Study-BSH/internal/core/shelflife"
)

const (
	defaultExpiryRequestTimeout = 25 * time.Second
	defaultCacheTimeout         = 2 * time.Second
)

type ExpiryConfig struct {
	ModelTimeout  time.Duration
	RepairTimeout time.Duration
	// RequestTimeout bounds everything the model path may take; when it
	// expires the estimate degrades to the fallback.
	RequestTimeout time.Duration
	CacheTimeout   time.Duration
}

func (c ExpiryConfig) normalize() ExpiryConfig {
	if c.ModelTimeout <= 0 {
		c.ModelTimeout = defaultModelTimeout
	}
	if c.RepairTimeout <= 0 {
		c.RepairTimeout = defaultRepairTimeout
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultExpiryRequestTimeout
	}
	if c.CacheTimeout <= 0 {
		c.CacheTimeout = defaultCacheTimeout
	}
	return c
}

type PredictExpiryUseCase struct {
	model    ports.GenerativeModel
	policy   *shelflife.Policy
	catalog  *shelflife.Catalog
	pipeline *recovery.Pipeline
	cache    ports.EstimateCache
	observer ports.PipelineObserver
	logger   *slog.Logger
	cfg      ExpiryConfig
}

// NewPredictExpiryUseCase wires the single-item estimator. cache may be nil.
func NewPredictExpiryUseCase(
	model ports.GenerativeModel,
	catalog *shelflife.Catalog,
	policyCfg shelflife.PolicyConfig,
	cache ports.EstimateCache,
	observer ports.PipelineObserver,
	logger *slog.Logger,
	cfg ExpiryConfig,
) *PredictExpiryUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &PredictExpiryUseCase{
		model:    model,
		policy:   shelflife.NewPolicy(catalog, policyCfg),
		catalog:  catalog,
		pipeline: recovery.NewPipeline(recovery.ExpirySchema, recovery.DefaultSampleLimit),
		cache:    cache,
		observer: observerOrNoop(observer),
		logger:   logger,
		cfg:      cfg.normalize(),
	}
}

func (uc *PredictExpiryUseCase) Predict(ctx context.Context, req domain.ExpiryRequest) (*domain.ExpiryEstimate, error) {
	name := strings.TrimSpace(req.Name)
	genericName := strings.TrimSpace(req.GenericName)
	location := strings.TrimSpace(req.Location)
	if name == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "predict expiry", errors.New("name is required"))
	}
	if location == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "predict expiry", errors.New("location is required"))
	}
	ref, err := shelflife.ResolveReference(req.PurchasedDate, req.OpenDate)
	if err != nil {
		return nil, err
	}

	decision := shelflife.Decision{
		Name:        name,
		GenericName: genericName,
		Location:    location,
		Reference:   ref,
	}
	if strings.TrimSpace(req.BestBeforeDate) != "" {
		if bb, err := domain.ParseDate(req.BestBeforeDate); err == nil {
			decision.BestBefore = &bb
		} else {
			uc.logger.Warn("expiry.best_before.ignored", "value", req.BestBeforeDate, "error", err)
		}
	}

	if _, ok := uc.policy.RuleFor(name, genericName, location, ref); !ok {
		days, err := uc.modelDays(ctx, name, genericName, location, ref.Type)
		switch {
		case err == nil:
			decision.ModelDays = days
		case domain.IsKind(err, domain.ErrModelUnavailable), errors.Is(err, context.DeadlineExceeded):
			uc.logger.Warn("expiry.model.unavailable", "name", name, "error", err)
		default:
			return nil, err
		}
	}

	est := uc.policy.Decide(decision)
	uc.observer.ExpiryEstimated(est.Source)
	return &domain.ExpiryEstimate{
		PredictedExpiry: est.PredictedExpiry,
		Days:            est.Days,
		ReferenceDate:   est.Reference.Date,
		ReferenceType:   est.Reference.Type,
		Source:          est.Source,
	}, nil
}

// modelDays consults the cache and then the model. A nil result with no
// error means the model answered without a usable day count.
func (uc *PredictExpiryUseCase) modelDays(ctx context.Context, name, genericName, location string, refType domain.ReferenceType) (*int, error) {
	storage := uc.catalog.NormalizeLocation(location)
	key := estimateCacheKey(name, genericName, storage, refType)
	if days, ok := uc.cachedDays(ctx, key); ok {
		return &days, nil
	}

	reqCtx, cancel := context.WithTimeout(ctx, uc.cfg.RequestTimeout)
	defer cancel()

	raw, err := generate(reqCtx, uc.model, uc.cfg.ModelTimeout, buildExpiryRequest(name, genericName, storage, refType))
	if err != nil {
		return nil, err
	}
	res, err := uc.pipeline.Recover(reqCtx, raw, newRepairer(uc.model, uc.cfg.RepairTimeout, "expiry.repair", uc.observer))
	if err != nil {
		if outErr, ok := domain.AsModelOutputError(err); ok {
			uc.observer.RecoveryFinished("expiry", outErr.Stage, false)
			uc.logger.Error("recovery.failed", "operation", "expiry", "stage", outErr.Stage, "sample", outErr.Sample, "error", outErr.Err)
		}
		return nil, err
	}
	uc.observer.RecoveryFinished("expiry", string(res.Stage), true)

	days := recovery.DecodeShelfLifeDays(res.Object)
	if days != nil && *days > 0 {
		uc.storeDays(ctx, key, *days)
	}
	return days, nil
}

func (uc *PredictExpiryUseCase) cachedDays(ctx context.Context, key string) (int, bool) {
	if uc.cache == nil {
		return 0, false
	}
	cacheCtx, cancel := context.WithTimeout(ctx, uc.cfg.CacheTimeout)
	defer cancel()

	hits, err := uc.cache.GetMany(cacheCtx, []string{key})
	if err != nil {
		uc.observer.CacheLookup("error")
		uc.logger.Warn("expiry.cache.read_failed", "query", key, "error", err)
		return 0, false
	}
	hit, ok := hits[key]
	if !ok || hit.Days <= 0 {
		uc.observer.CacheLookup("miss")
		return 0, false
	}
	uc.observer.CacheLookup("hit")
	return hit.Days, true
}

func (uc *PredictExpiryUseCase) storeDays(ctx context.Context, key string, days int) {
	if uc.cache == nil {
		return
	}
	cacheCtx, cancel := context.WithTimeout(ctx, uc.cfg.CacheTimeout)
	defer cancel()

	entry := domain.CachedEstimate{Query: key, Days: days, UpdatedAt: time.Now().UTC()}
	if err := uc.cache.Upsert(cacheCtx, []domain.CachedEstimate{entry}); err != nil {
		uc.logger.Warn("expiry.cache.write_failed", "query", key, "error", err)
	}
}

// estimateCacheKey is the normalized query a model estimate is remembered
// under: food name, storage location and whether the pack is open.
func estimateCacheKey(name, genericName string, location domain.StorageLocation, refType domain.ReferenceType) string {
	food := shelflife.NormalizeName(name)
	if g := shelflife.NormalizeName(genericName); g != "" && g != food {
		food += " " + g
	}
	return food + "|" + string(location) + "|" + string(refType)
}
