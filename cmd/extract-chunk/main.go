package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/wgamage/actextract/internal/common"
	"github.com/wgamage/actextract/internal/gemini"
)

// One-off runner: extract a single chunk PDF and print the payload,
// bypassing discovery and checkpointing. Logs go to stderr so stdout
// carries only the extracted payload.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		logger.Error("usage: extract-chunk <chunk.pdf> [times]")
		os.Exit(2)
	}
	path := os.Args[1]
	times := 1
	if len(os.Args) >= 3 {
		if n, err := strconv.Atoi(os.Args[2]); err == nil && n > 0 {
			times = n
		}
	}

	_ = godotenv.Load()
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read chunk", "path", path, "error", err)
		os.Exit(1)
	}

	client := gemini.NewClient(gemini.Config{
		APIKey:  cfg.Gemini.APIKey,
		Model:   cfg.Gemini.Model,
		BaseURL: cfg.Gemini.BaseURL,
		Timeout: cfg.Gemini.Timeout,
		Mode:    cfg.Pipeline.Mode,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Loop N times on the SAME chunk, e.g. to eyeball instruction drift.
	base := filepath.Base(path)
	for i := 1; i <= times; i++ {
		start := time.Now()
		payload, err := client.Extract(ctx, base, data)
		if err != nil {
			logger.Error("extract.error", "iter", i, "rate_limited", gemini.IsRateLimited(err), "err", err)
		} else {
			logger.Info("extract.ok", "iter", i, "bytes", len(payload), "elapsed_ms", time.Since(start).Milliseconds())
			fmt.Println(string(payload))
		}
		if ctx.Err() != nil {
			break
		}
		if i < times {
			time.Sleep(750 * time.Millisecond)
		}
	}
}
