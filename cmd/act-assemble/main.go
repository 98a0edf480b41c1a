package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/wgamage/actextract/constants"
	"github.com/wgamage/actextract/internal/checkpoint"
	"github.com/wgamage/actextract/internal/common"
	"github.com/wgamage/actextract/internal/ingest"
	"github.com/wgamage/actextract/internal/pipeline"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

// act-assemble regenerates final artifacts from existing checkpoints
// without calling the extraction service. Useful after fixing an
// assembly bug, or to rebuild outputs deleted by hand.
func main() {
	var (
		root = flag.String("root", "", "root directory holding per-act chunk folders (defaults to ACTS_ROOT)")
		out  = flag.String("out", "", "directory for final artifacts (defaults to OUTPUT_DIR)")
		mode = flag.String("mode", "", "extraction mode: text, clauses or grouped (defaults to EXTRACT_MODE)")
	)
	flag.Parse()

	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
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
	// No service credential needed for reassembly.
	if err := cfg.ValidateOffline(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := checkpoint.Open(ctx, cfg.Checkpoint, cfg.Pipeline.Mode.Ext(), logger)
	if err != nil {
		logger.Error("failed to open checkpoint store", "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	exclude := []string{filepath.Base(cfg.Pipeline.OutputDir), filepath.Base(cfg.Checkpoint.Dir)}
	docs, _, err := ingest.NewDiscoverer(cfg.Pipeline.RootDir, cfg.Pipeline.GroupOrder, exclude, logger).Discover(ctx)
	if err != nil {
		logger.Error("failed to discover documents", "error", err)
		os.Exit(1)
	}

	assembler := pipeline.NewAssembler(cfg.Pipeline.Mode, logger)
	driver := pipeline.NewDriver(nil, assembler, store, cfg.Pipeline.OutputDir, cfg.Pipeline.Mode, logger)

	assembled := 0
	empty := 0
	for _, doc := range docs {
		status, err := driver.AssembleDocument(ctx, doc)
		if err != nil {
			if ctx.Err() != nil {
				logger.Error("assembly aborted", "error", err)
				os.Exit(1)
			}
			logger.Error("failed to assemble document", "document", doc.Name, "error", err)
			continue
		}
		if status == constants.DocumentAssembled {
			assembled++
		} else {
			empty++
		}
	}

	fmt.Printf("Reassembly complete!\n")
	fmt.Printf("- Documents: %d\n", len(docs))
	fmt.Printf("- Assembled: %d\n", assembled)
	fmt.Printf("- Nothing to assemble: %d\n", empty)
	fmt.Printf("- Output: %s\n", cfg.Pipeline.OutputDir)
}
