package config

import (
	"testing"
	"time"
)

func TestLoadShelfLifeDefaults(t *testing.T) {
	for _, key := range []string{"SHELF_FALLBACK_DAYS_BATCH", "SHELF_FALLBACK_DAYS_SINGLE", "SHELF_MAX_DAYS", "FREEZER_FLOOR_DAYS", "MAX_BATCH_ITEMS", "LLM_PROVIDER"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.ShelfFallbackDaysBatch != 3 {
		t.Fatalf("expected batch fallback 3, got %d", cfg.ShelfFallbackDaysBatch)
	}
	if cfg.ShelfFallbackDaysSingle != 7 {
		t.Fatalf("expected single-item fallback 7, got %d", cfg.ShelfFallbackDaysSingle)
	}
	if cfg.ShelfMaxDays != 365 || cfg.FreezerFloorDays != 90 {
		t.Fatalf("unexpected bounds max=%d floor=%d", cfg.ShelfMaxDays, cfg.FreezerFloorDays)
	}
	if cfg.MaxBatchItems != 60 {
		t.Fatalf("expected batch cap 60, got %d", cfg.MaxBatchItems)
	}
	if cfg.LLMProvider != "ollama" {
		t.Fatalf("expected ollama provider, got %q", cfg.LLMProvider)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("LLM_TIMEOUT", "30s")
	t.Setenv("EXPIRY_REQUEST_TIMEOUT", "12")
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")
	t.Setenv("ASYNC_SCANS_ENABLED", "true")
	t.Setenv("MAX_SCAN_IMAGES", "not-a-number")

	cfg := Load()
	if cfg.LLMProvider != "gemini" {
		t.Fatalf("expected lowercased provider, got %q", cfg.LLMProvider)
	}
	if cfg.LLMTimeout != 30*time.Second {
		t.Fatalf("expected 30s model timeout, got %s", cfg.LLMTimeout)
	}
	if cfg.ExpiryRequestTimeout != 12*time.Second {
		t.Fatalf("expected bare seconds accepted, got %s", cfg.ExpiryRequestTimeout)
	}
	if cfg.APIRateLimitRPS != 2.5 {
		t.Fatalf("expected rps 2.5, got %v", cfg.APIRateLimitRPS)
	}
	if !cfg.AsyncScansEnabled {
		t.Fatalf("expected async scans enabled")
	}
	if cfg.MaxScanImages != 4 {
		t.Fatalf("expected invalid value to fall back to 4, got %d", cfg.MaxScanImages)
	}
}
