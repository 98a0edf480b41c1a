package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/wgamage/actextract/constants"
	"github.com/wgamage/actextract/internal/common"
	"github.com/wgamage/actextract/internal/export"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

// act-export flattens assembled JSON artifacts into one XLSX workbook,
// a row per clause. With -in it exports a single artifact, otherwise it
// sweeps the whole artifact directory.
func main() {
	var (
		in   = flag.String("in", "", "single artifact file to export (overrides -dir)")
		dir  = flag.String("dir", "", "directory holding assembled artifacts (defaults to OUTPUT_DIR)")
		out  = flag.String("out", "", "output XLSX file path (optional, defaults to parent directory)")
		mode = flag.String("mode", "", "artifact layout: clauses or grouped (defaults to EXTRACT_MODE)")
	)
	flag.Parse()

	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if *dir == "" {
		*dir = cfg.Pipeline.OutputDir
	}
	if *out == "" {
		if *in != "" {
			*out = strings.TrimSuffix(*in, ".json") + ".xlsx"
		} else {
			*out = filepath.Join(filepath.Dir(*dir), "acts.xlsx")
		}
	}
	if *mode != "" {
		m, ok := constants.ParseMode(*mode)
		if !ok {
			printError("Error: unknown mode %q, use clauses or grouped\n", *mode)
			os.Exit(1)
		}
		cfg.Pipeline.Mode = m
	}
	if err := cfg.ValidateOffline(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	svc := export.NewService(logger)
	var (
		xlsxBytes []byte
		err       error
		source    string
	)
	if *in != "" {
		source = *in
		xlsxBytes, err = svc.ExportArtifactXLSX(ctx, *in, cfg.Pipeline.Mode)
	} else {
		source = *dir
		xlsxBytes, err = svc.ExportXLSX(ctx, *dir, cfg.Pipeline.Mode)
	}
	if err != nil {
		logger.Error("failed to export artifacts", "error", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*out, xlsxBytes, 0644); err != nil {
		logger.Error("failed to write output file", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Export complete!\n")
	fmt.Printf("- Source: %s\n", source)
	fmt.Printf("- Output: %s\n", *out)
}
