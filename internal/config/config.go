package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	APIPort  string
	LogLevel string

	LLMProvider string

	OllamaURL   string
	OllamaModel string

	OpenAIBaseURL string
	OpenAIAPIKey  string
	OpenAIModel   string

	GeminiAPIKey string
	GeminiModel  string

	LLMTimeout           time.Duration
	LLMRepairTimeout     time.Duration
	ExpiryRequestTimeout time.Duration

	MaxScanImages int
	MaxImageBytes int
	MaxBatchItems int

	ShelfFallbackDaysBatch      int
	ShelfFallbackDaysSingle     int
	ShelfMaxDays                int
	FreezerImplausibleBelowDays int
	FreezerFloorDays            int

	// CatalogFile overrides the embedded shelf-life catalog when set.
	CatalogFile string

	PostgresDSN          string
	EstimateCacheEnabled bool

	AsyncScansEnabled bool
	NATSURL           string
	NATSSubject       string
	StoragePath       string

	ResilienceRetryMaxAttempts      int
	ResilienceRetryInitialBackoff   time.Duration
	ResilienceRetryMaxBackoff       time.Duration
	ResilienceRetryMultiplier       float64
	ResilienceBreakerEnabled        bool
	ResilienceBreakerMinRequests    int
	ResilienceBreakerFailureRatio   float64
	ResilienceBreakerOpenTimeout    time.Duration
	ResilienceBreakerHalfOpenMaxReq int

	APIRateLimitRPS             float64
	APIRateLimitBurst           int
	APIBackpressureMaxInFlight  int
	APIBackpressureWait         time.Duration
	APIMaxConnections           int
	APIRequestValidationEnabled bool

	WorkerMetricsPort string
}

func Load() Config {
	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		LLMProvider: strings.ToLower(mustEnv("LLM_PROVIDER", "ollama")),

		OllamaURL:   mustEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel: mustEnv("OLLAMA_MODEL", "llama3.2-vision:11b"),

		OpenAIBaseURL: mustEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIAPIKey:  mustEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   mustEnv("OPENAI_MODEL", "gpt-4o-mini"),

		GeminiAPIKey: mustEnv("GEMINI_API_KEY", ""),
		GeminiModel:  mustEnv("GEMINI_MODEL", "gemini-1.5-flash"),

		LLMTimeout:           mustEnvDuration("LLM_TIMEOUT", 45*time.Second),
		LLMRepairTimeout:     mustEnvDuration("LLM_REPAIR_TIMEOUT", 20*time.Second),
		ExpiryRequestTimeout: mustEnvDuration("EXPIRY_REQUEST_TIMEOUT", 25*time.Second),

		MaxScanImages: mustEnvInt("MAX_SCAN_IMAGES", 4),
		MaxImageBytes: mustEnvInt("MAX_IMAGE_BYTES", 8<<20),
		MaxBatchItems: mustEnvInt("MAX_BATCH_ITEMS", 60),

		ShelfFallbackDaysBatch:      mustEnvInt("SHELF_FALLBACK_DAYS_BATCH", 3),
		ShelfFallbackDaysSingle:     mustEnvInt("SHELF_FALLBACK_DAYS_SINGLE", 7),
		ShelfMaxDays:                mustEnvInt("SHELF_MAX_DAYS", 365),
		FreezerImplausibleBelowDays: mustEnvInt("FREEZER_IMPLAUSIBLE_BELOW_DAYS", 30),
		FreezerFloorDays:            mustEnvInt("FREEZER_FLOOR_DAYS", 90),

		CatalogFile: mustEnv("CATALOG_FILE", ""),

		PostgresDSN:          mustEnv("POSTGRES_DSN", ""),
		EstimateCacheEnabled: mustEnvBool("ESTIMATE_CACHE_ENABLED", true),

		AsyncScansEnabled: mustEnvBool("ASYNC_SCANS_ENABLED", false),
		NATSURL:           mustEnv("NATS_URL", "nats://localhost:4222"),
		NATSSubject:       mustEnv("NATS_SUBJECT", "inventory.scan.requested"),
		StoragePath:       mustEnv("STORAGE_PATH", "./data/storage"),

		ResilienceRetryMaxAttempts:      mustEnvInt("RESILIENCE_RETRY_MAX_ATTEMPTS", 1),
		ResilienceRetryInitialBackoff:   mustEnvDuration("RESILIENCE_RETRY_INITIAL_BACKOFF", 200*time.Millisecond),
		ResilienceRetryMaxBackoff:       mustEnvDuration("RESILIENCE_RETRY_MAX_BACKOFF", 800*time.Millisecond),
		ResilienceRetryMultiplier:       mustEnvFloat("RESILIENCE_RETRY_MULTIPLIER", 2),
		ResilienceBreakerEnabled:        mustEnvBool("RESILIENCE_BREAKER_ENABLED", true),
		ResilienceBreakerMinRequests:    mustEnvInt("RESILIENCE_BREAKER_MIN_REQUESTS", 10),
		ResilienceBreakerFailureRatio:   mustEnvFloat("RESILIENCE_BREAKER_FAILURE_RATIO", 0.5),
		ResilienceBreakerOpenTimeout:    mustEnvDuration("RESILIENCE_BREAKER_OPEN_TIMEOUT", 30*time.Second),
		ResilienceBreakerHalfOpenMaxReq: mustEnvInt("RESILIENCE_BREAKER_HALF_OPEN_MAX_REQUESTS", 2),

		APIRateLimitRPS:             mustEnvFloat("API_RATE_LIMIT_RPS", 10),
		APIRateLimitBurst:           mustEnvInt("API_RATE_LIMIT_BURST", 20),
		APIBackpressureMaxInFlight:  mustEnvInt("API_BACKPRESSURE_MAX_IN_FLIGHT", 16),
		APIBackpressureWait:         mustEnvDuration("API_BACKPRESSURE_WAIT", 250*time.Millisecond),
		APIMaxConnections:           mustEnvInt("API_MAX_CONNECTIONS", 256),
		APIRequestValidationEnabled: mustEnvBool("API_REQUEST_VALIDATION_ENABLED", true),

		WorkerMetricsPort: mustEnv("WORKER_METRICS_PORT", "9090"),
	}
}

func mustEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return parsed
}

// mustEnvDuration accepts Go durations ("30s") or a bare number of seconds.
func mustEnvDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
