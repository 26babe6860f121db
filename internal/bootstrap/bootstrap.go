package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/MagicMike0112/Project-Study-BSH/internal/config"
	"github.com/MagicMike0112/Project-Study-BSH/internal/core/ports"
	"github.com/MagicMike0112/Project-Study-BSH/internal/core/shelflife"
	"github.com/MagicMike0112/Project-Study-BSH/internal/core/usecase"
	"github.com/MagicMike0112/Project-Study-BSH/internal/infrastructure/export/xlsx"
	"github.com/MagicMike0112/Project-Study-BSH/internal/infrastructure/extractor/pdftext"
	"github.com/MagicMike0112/Project-Study-BSH/internal/infrastructure/llm/gemini"
	"github.com/MagicMike0112/Project-Study-BSH/internal/infrastructure/llm/imageload"
	"github.com/MagicMike0112/Project-Study-BSH/internal/infrastructure/llm/ollama"
	"github.com/MagicMike0112/Project-Study-BSH/internal/infrastructure/llm/openai"
	"github.com/MagicMike0112/Project-Study-BSH/internal/infrastructure/queue/nats"
	"github.com/MagicMike0112/Project-Study-BSH/internal/infrastructure/repository/postgres"
	"github.com/MagicMike0112/Project-Study-BSH/internal/infrastructure/resilience"
	"github.com/MagicMike0112/Project-Study-BSH/internal/infrastructure/storage/localfs"
)

var ErrAsyncScansDisabled = errors.New("async scans need ASYNC_SCANS_ENABLED=true and POSTGRES_DSN")

type Options struct {
	Logger          *slog.Logger
	Observer        ports.PipelineObserver
	BreakerListener resilience.StateListener
}

type App struct {
	Config config.Config
	Logger *slog.Logger

	Scanner  *usecase.ScanInventoryUseCase
	Expiry   *usecase.PredictExpiryUseCase
	Exporter *xlsx.Exporter

	// Async scan jobs; nil unless enabled.
	Queue     ports.MessageQueue
	SubmitUC  *usecase.SubmitScanJobUseCase
	JobsUC    *usecase.GetScanJobUseCase
	ProcessUC *usecase.ProcessScanJobUseCase

	closeFns []func()
}

func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	app := &App{Config: cfg, Logger: logger}

	catalog, err := loadCatalog(cfg.CatalogFile)
	if err != nil {
		return nil, err
	}

	executor := resilience.NewExecutor(resilienceConfig(cfg)).WithLogger(logger)
	if opts.BreakerListener != nil {
		executor.WithStateListener(opts.BreakerListener)
	}
	images := imageload.New(&http.Client{Timeout: 15 * time.Second}, int64(cfg.MaxImageBytes))
	model, closeModel, err := NewModel(ctx, cfg, images, executor)
	if err != nil {
		return nil, err
	}
	app.onClose(closeModel)

	var db *sql.DB
	if cfg.PostgresDSN != "" {
		db, err = postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		app.onClose(func() { _ = db.Close() })
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			app.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
	}

	scanCfg := usecase.ScanConfig{
		MaxImages:     cfg.MaxScanImages,
		MaxImageBytes: cfg.MaxImageBytes,
		ModelTimeout:  cfg.LLMTimeout,
		RepairTimeout: cfg.LLMRepairTimeout,
	}
	batchPolicy := policyConfig(cfg, cfg.ShelfFallbackDaysBatch)
	engine := shelflife.NewEngine(catalog, batchPolicy, cfg.MaxBatchItems)
	app.Scanner = usecase.NewScanInventoryUseCase(model, engine, pdftext.NewExtractor(0), opts.Observer, logger, scanCfg)

	var cache ports.EstimateCache
	if db != nil && cfg.EstimateCacheEnabled {
		cache = postgres.NewEstimateCache(db)
	}
	app.Expiry = usecase.NewPredictExpiryUseCase(model, catalog, policyConfig(cfg, cfg.ShelfFallbackDaysSingle), cache, opts.Observer, logger, usecase.ExpiryConfig{
		ModelTimeout:   cfg.LLMTimeout,
		RepairTimeout:  cfg.LLMRepairTimeout,
		RequestTimeout: cfg.ExpiryRequestTimeout,
	})
	app.Exporter = xlsx.NewExporter(logger)

	if cfg.AsyncScansEnabled {
		if db == nil {
			app.Close()
			return nil, ErrAsyncScansDisabled
		}
		if err := app.wireAsync(cfg, db, executor, scanCfg); err != nil {
			app.Close()
			return nil, err
		}
	}

	logger.Info("bootstrap.ready",
		"llm_provider", cfg.LLMProvider,
		"rules", catalog.Rules().Len(),
		"estimate_cache", cache != nil,
		"async_scans", app.SubmitUC != nil,
	)
	return app, nil
}

func (a *App) wireAsync(cfg config.Config, db *sql.DB, executor *resilience.Executor, scanCfg usecase.ScanConfig) error {
	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return fmt.Errorf("init object storage: %w", err)
	}
	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
		Logger:             a.Logger,
	})
	if err != nil {
		return fmt.Errorf("init message queue: %w", err)
	}
	a.onClose(queue.Close)

	repo := postgres.NewScanJobRepository(db)
	a.Queue = queue
	a.SubmitUC = usecase.NewSubmitScanJobUseCase(repo, storage, queue, scanCfg)
	a.JobsUC = usecase.NewGetScanJobUseCase(repo)
	a.ProcessUC = usecase.NewProcessScanJobUseCase(repo, storage, a.Scanner, a.Logger)
	return nil
}

// NewModel picks the generative model adapter named by LLM_PROVIDER.
func NewModel(ctx context.Context, cfg config.Config, images *imageload.Loader, executor *resilience.Executor) (ports.GenerativeModel, func(), error) {
	switch cfg.LLMProvider {
	case "", "ollama":
		return ollama.New(cfg.OllamaURL, cfg.OllamaModel, images, executor), func() {}, nil
	case "openai":
		return openai.New(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, executor), func() {}, nil
	case "gemini":
		client, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, images, executor)
		if err != nil {
			return nil, nil, fmt.Errorf("init gemini: %w", err)
		}
		return client, func() { _ = client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLMProvider)
	}
}

func loadCatalog(path string) (*shelflife.Catalog, error) {
	if path == "" {
		catalog, err := shelflife.DefaultCatalog()
		if err != nil {
			return nil, fmt.Errorf("load embedded catalog: %w", err)
		}
		return catalog, nil
	}
	catalog, err := shelflife.LoadCatalog(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return catalog, nil
}

func policyConfig(cfg config.Config, fallbackDays int) shelflife.PolicyConfig {
	return shelflife.PolicyConfig{
		FallbackDays:            fallbackDays,
		MaxDays:                 cfg.ShelfMaxDays,
		FreezerImplausibleBelow: cfg.FreezerImplausibleBelowDays,
		FreezerFloorDays:        cfg.FreezerFloorDays,
	}
}

func resilienceConfig(cfg config.Config) resilience.Config {
	return resilience.Config{
		RetryMaxAttempts:        cfg.ResilienceRetryMaxAttempts,
		RetryInitialBackoff:     cfg.ResilienceRetryInitialBackoff,
		RetryMaxBackoff:         cfg.ResilienceRetryMaxBackoff,
		RetryMultiplier:         cfg.ResilienceRetryMultiplier,
		BreakerEnabled:          cfg.ResilienceBreakerEnabled,
		BreakerMinRequests:      uint32(max(cfg.ResilienceBreakerMinRequests, 0)),
		BreakerFailureRatio:     cfg.ResilienceBreakerFailureRatio,
		BreakerOpenTimeout:      cfg.ResilienceBreakerOpenTimeout,
		BreakerHalfOpenMaxCalls: uint32(max(cfg.ResilienceBreakerHalfOpenMaxReq, 0)),
	}
}

func (a *App) onClose(fn func()) {
	a.closeFns = append(a.closeFns, fn)
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closeFns) - 1; i >= 0; i-- {
		a.closeFns[i]()
	}
	a.closeFns = nil
}
