package common

import (
	"errors"
	"testing"
	"time"

	"github.com/wgamage/actextract/constants"
)

func clearPipelineEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GEMINI_API_KEY", "GEMINI_MODEL", "GEMINI_BASE_URL", "GEMINI_TIMEOUT_SECONDS",
		"EXTRACT_MODE", "ACTS_ROOT", "OUTPUT_DIR",
		"MAX_RETRIES", "RETRY_COOLDOWN_SECONDS", "RATE_LIMIT_COOLDOWN_SECONDS", "PROACTIVE_DELAY_SECONDS",
		"CHUNK_GROUP_ORDER",
		"CHECKPOINT_BACKEND", "CHECKPOINT_DIR", "CHECKPOINT_SQLITE_PATH", "CHECKPOINT_DB_URL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearPipelineEnv(t)
	cfg := LoadConfig()

	if cfg.Gemini.Model != "gemini-2.5-flash" {
		t.Errorf("expected default model %q, got %q", "gemini-2.5-flash", cfg.Gemini.Model)
	}
	if cfg.Gemini.Timeout != 300*time.Second {
		t.Errorf("expected default timeout 300s, got %v", cfg.Gemini.Timeout)
	}
	if cfg.Pipeline.Mode != constants.ModeText {
		t.Errorf("expected default mode %q, got %q", constants.ModeText, cfg.Pipeline.Mode)
	}
	if cfg.Pipeline.MaxRetries != 3 {
		t.Errorf("expected default max retries 3, got %d", cfg.Pipeline.MaxRetries)
	}
	if cfg.Pipeline.RetryCooldown != 10*time.Second || cfg.Pipeline.RateLimitCooldown != 70*time.Second {
		t.Errorf("unexpected default cooldowns: %v / %v", cfg.Pipeline.RetryCooldown, cfg.Pipeline.RateLimitCooldown)
	}
	if cfg.Pipeline.ProactiveDelay != 65*time.Second {
		t.Errorf("expected default proactive delay 65s, got %v", cfg.Pipeline.ProactiveDelay)
	}
	if len(cfg.Pipeline.GroupOrder) != 2 || cfg.Pipeline.GroupOrder[0] != "Initial Chunk" || cfg.Pipeline.GroupOrder[1] != "Overlap Chunk" {
		t.Errorf("unexpected default group order: %v", cfg.Pipeline.GroupOrder)
	}
	if cfg.Checkpoint.Backend != BackendDir || cfg.Checkpoint.Dir != "temp_extracted_chunks" {
		t.Errorf("unexpected default checkpoint config: %+v", cfg.Checkpoint)
	}
	if cfg.Pipeline.OutputDir != "extracted_acts_final" {
		t.Errorf("expected default output dir %q, got %q", "extracted_acts_final", cfg.Pipeline.OutputDir)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	clearPipelineEnv(t)
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("EXTRACT_MODE", "Grouped")
	t.Setenv("MAX_RETRIES", "5")
	t.Setenv("RATE_LIMIT_COOLDOWN_SECONDS", "120")
	t.Setenv("CHUNK_GROUP_ORDER", "Overlap Chunk, Initial Chunk")
	t.Setenv("CHECKPOINT_BACKEND", "sqlite")

	cfg := LoadConfig()
	if cfg.Gemini.APIKey != "test-key" {
		t.Errorf("expected api key from env, got %q", cfg.Gemini.APIKey)
	}
	if cfg.Pipeline.Mode != constants.ModeGrouped {
		t.Errorf("expected mode normalized to %q, got %q", constants.ModeGrouped, cfg.Pipeline.Mode)
	}
	if cfg.Pipeline.MaxRetries != 5 {
		t.Errorf("expected max retries 5, got %d", cfg.Pipeline.MaxRetries)
	}
	if cfg.Pipeline.RateLimitCooldown != 120*time.Second {
		t.Errorf("expected rate limit cooldown 120s, got %v", cfg.Pipeline.RateLimitCooldown)
	}
	if len(cfg.Pipeline.GroupOrder) != 2 || cfg.Pipeline.GroupOrder[0] != "Overlap Chunk" {
		t.Errorf("unexpected group order: %v", cfg.Pipeline.GroupOrder)
	}
	if cfg.Checkpoint.Backend != BackendSQLite {
		t.Errorf("expected sqlite backend, got %q", cfg.Checkpoint.Backend)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected config to validate, got %v", err)
	}
}

func TestValidateRequiresAPIKey(t *testing.T) {
	clearPipelineEnv(t)
	cfg := LoadConfig()

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing api key")
	}
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Code != "CONFIG_ERROR" {
		t.Errorf("expected CONFIG_ERROR, got %v", err)
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput in chain, got %v", err)
	}

	// Offline validation must pass without the key.
	if err := cfg.ValidateOffline(); err != nil {
		t.Errorf("expected offline validation to pass, got %v", err)
	}
}

func TestValidateOfflineRejections(t *testing.T) {
	cases := map[string]func(*Config){
		"bad mode":          func(c *Config) { c.Pipeline.Mode = "verse" },
		"zero retries":      func(c *Config) { c.Pipeline.MaxRetries = 0 },
		"no groups":         func(c *Config) { c.Pipeline.GroupOrder = nil },
		"unknown backend":   func(c *Config) { c.Checkpoint.Backend = "redis" },
		"postgres sans dsn": func(c *Config) { c.Checkpoint.Backend = BackendPostgres },
	}
	for name, mutate := range cases {
		clearPipelineEnv(t)
		cfg := LoadConfig()
		mutate(cfg)
		if err := cfg.ValidateOffline(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}
