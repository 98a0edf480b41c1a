package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/wgamage/actextract/constants"
)

// Config holds all application configuration
type Config struct {
	Gemini     GeminiConfig
	Pipeline   PipelineConfig
	Checkpoint CheckpointConfig
}

// GeminiConfig holds the extraction-service configuration
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// PipelineConfig holds the per-run pipeline policy. All values are fixed
// for the lifetime of a run.
type PipelineConfig struct {
	Mode              constants.Mode
	RootDir           string
	OutputDir         string
	MaxRetries        int
	RetryCooldown     time.Duration
	RateLimitCooldown time.Duration
	ProactiveDelay    time.Duration
	GroupOrder        []string
}

// CheckpointConfig holds the checkpoint-store configuration
type CheckpointConfig struct {
	Backend     string
	Dir         string
	SQLitePath  string
	DatabaseURL string
}

// Checkpoint backend names accepted by CHECKPOINT_BACKEND.
const (
	BackendDir      = "dir"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	modeRaw := getEnv("EXTRACT_MODE", string(constants.ModeText))
	mode, ok := constants.ParseMode(modeRaw)
	if !ok {
		// keep the bad value so Validate can report it
		mode = constants.Mode(modeRaw)
	}
	return &Config{
		Gemini: GeminiConfig{
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			Model:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			BaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
			Timeout: time.Duration(getEnvAsInt("GEMINI_TIMEOUT_SECONDS", 300)) * time.Second,
		},
		Pipeline: PipelineConfig{
			Mode:              mode,
			RootDir:           getEnv("ACTS_ROOT", "."),
			OutputDir:         getEnv("OUTPUT_DIR", "extracted_acts_final"),
			MaxRetries:        getEnvAsInt("MAX_RETRIES", 3),
			RetryCooldown:     time.Duration(getEnvAsInt("RETRY_COOLDOWN_SECONDS", 10)) * time.Second,
			RateLimitCooldown: time.Duration(getEnvAsInt("RATE_LIMIT_COOLDOWN_SECONDS", 70)) * time.Second,
			ProactiveDelay:    time.Duration(getEnvAsInt("PROACTIVE_DELAY_SECONDS", 65)) * time.Second,
			GroupOrder:        getEnvAsList("CHUNK_GROUP_ORDER", []string{"Initial Chunk", "Overlap Chunk"}),
		},
		Checkpoint: CheckpointConfig{
			Backend:     getEnv("CHECKPOINT_BACKEND", BackendDir),
			Dir:         getEnv("CHECKPOINT_DIR", "temp_extracted_chunks"),
			SQLitePath:  getEnv("CHECKPOINT_SQLITE_PATH", "checkpoints.db"),
			DatabaseURL: getEnv("CHECKPOINT_DB_URL", ""),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// Validate checks the full configuration, including the service
// credential. Fatal before any document is processed.
func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "GEMINI_API_KEY is required", ErrInvalidInput)
	}
	return c.ValidateOffline()
}

// ValidateOffline checks everything except the service credential, for
// tools that never call the extraction service.
func (c *Config) ValidateOffline() error {
	if _, ok := constants.ParseMode(string(c.Pipeline.Mode)); !ok {
		return NewAppError("CONFIG_ERROR", "EXTRACT_MODE must be one of text, clauses, grouped", ErrInvalidInput)
	}
	if c.Pipeline.MaxRetries < 1 {
		return NewAppError("CONFIG_ERROR", "MAX_RETRIES must be at least 1", ErrInvalidInput)
	}
	if len(c.Pipeline.GroupOrder) == 0 {
		return NewAppError("CONFIG_ERROR", "CHUNK_GROUP_ORDER must name at least one group", ErrInvalidInput)
	}
	switch c.Checkpoint.Backend {
	case BackendDir, BackendSQLite:
	case BackendPostgres:
		if c.Checkpoint.DatabaseURL == "" {
			return NewAppError("CONFIG_ERROR", "CHECKPOINT_DB_URL is required for the postgres backend", ErrInvalidInput)
		}
	default:
		return NewAppError("CONFIG_ERROR", "CHECKPOINT_BACKEND must be one of dir, sqlite, postgres", ErrInvalidInput)
	}
	return nil
}
