package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/wgamage/actextract/constants"
	"github.com/wgamage/actextract/internal/acts"
	"github.com/wgamage/actextract/internal/checkpoint"
	"github.com/wgamage/actextract/internal/common"
	"github.com/wgamage/actextract/internal/gemini"
	"github.com/wgamage/actextract/internal/ingest"
	"github.com/wgamage/actextract/internal/pipeline"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func logLevel() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	// Parse CLI flags; each one overrides its environment counterpart
	var (
		root    = flag.String("root", "", "root directory holding per-act chunk folders (defaults to ACTS_ROOT)")
		out     = flag.String("out", "", "directory for final artifacts (defaults to OUTPUT_DIR)")
		mode    = flag.String("mode", "", "extraction mode: text, clauses or grouped (defaults to EXTRACT_MODE)")
		ckpDir  = flag.String("checkpoint-dir", "", "directory for per-chunk checkpoints (defaults to CHECKPOINT_DIR)")
		backend = flag.String("backend", "", "checkpoint backend: dir, sqlite or postgres (defaults to CHECKPOINT_BACKEND)")
	)
	flag.Parse()

	_ = godotenv.Load()

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(),
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if *root != "" {
		cfg.Pipeline.RootDir = *root
	}
	if *out != "" {
		cfg.Pipeline.OutputDir = *out
	}
	if *mode != "" {
		m, ok := constants.ParseMode(*mode)
		if !ok {
			printError("Error: unknown mode %q, use text, clauses or grouped\n", *mode)
			os.Exit(1)
		}
		cfg.Pipeline.Mode = m
	}
	if *ckpDir != "" {
		cfg.Checkpoint.Dir = *ckpDir
	}
	if *backend != "" {
		cfg.Checkpoint.Backend = *backend
	}
	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	// Context with signal; an interrupted run resumes from its
	// checkpoints next time.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := checkpoint.Open(ctx, cfg.Checkpoint, cfg.Pipeline.Mode.Ext(), logger)
	if err != nil {
		logger.Error("failed to open checkpoint store", "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	client := gemini.NewClient(gemini.Config{
		APIKey:  cfg.Gemini.APIKey,
		Model:   cfg.Gemini.Model,
		BaseURL: cfg.Gemini.BaseURL,
		Timeout: cfg.Gemini.Timeout,
		Mode:    cfg.Pipeline.Mode,
	}, logger)
	logger.Info("gemini client initialized", "model", cfg.Gemini.Model, "mode", string(cfg.Pipeline.Mode))

	// Never rediscover the pipeline's own working folders as documents.
	exclude := []string{filepath.Base(cfg.Pipeline.OutputDir), filepath.Base(cfg.Checkpoint.Dir)}
	docs, stats, err := ingest.NewDiscoverer(cfg.Pipeline.RootDir, cfg.Pipeline.GroupOrder, exclude, logger).Discover(ctx)
	if err != nil {
		logger.Error("failed to discover documents", "error", err)
		os.Exit(1)
	}
	logger.Info("discovery complete",
		"documents", len(docs),
		"chunks", stats.Chunks,
		"scanned", stats.Scanned,
		"no_layout", stats.NoLayout,
		"empty", stats.Empty,
	)

	processor := pipeline.NewProcessor(client, store, acts.ValidatorForMode(cfg.Pipeline.Mode), pipeline.ProcessorConfig{
		MaxRetries:        cfg.Pipeline.MaxRetries,
		RetryCooldown:     cfg.Pipeline.RetryCooldown,
		RateLimitCooldown: cfg.Pipeline.RateLimitCooldown,
		ProactiveDelay:    cfg.Pipeline.ProactiveDelay,
	}, logger)
	assembler := pipeline.NewAssembler(cfg.Pipeline.Mode, logger)
	driver := pipeline.NewDriver(processor, assembler, store, cfg.Pipeline.OutputDir, cfg.Pipeline.Mode, logger)

	runStats, err := driver.Run(ctx, docs)
	if err != nil {
		logger.Error("pipeline run aborted", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Extraction complete!\n")
	fmt.Printf("- Documents: %d (assembled %d, skipped %d, empty %d, failed %d)\n",
		runStats.Documents, runStats.DocsAssembled, runStats.DocsSkipped, runStats.DocsEmpty, runStats.DocsFailed)
	fmt.Printf("- Chunks: extracted %d, skipped %d, failed %d\n",
		runStats.ChunksExtracted, runStats.ChunksSkipped, runStats.ChunksFailed)
	fmt.Printf("- Output: %s\n", cfg.Pipeline.OutputDir)
}
