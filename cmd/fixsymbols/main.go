package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"sensibull-extractor/internal/logger"
	"sensibull-extractor/internal/report"
	"sensibull-extractor/internal/store"
	"sensibull-extractor/internal/trace"
	"sensibull-extractor/internal/universe"
)

// fixsymbols is the post-hoc repair pass: strips trailing digits fused
// onto ticker symbols in already-written page CSVs. Safe to run any number
// of times.
func main() {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	ctx := context.Background()

	cfg, err := store.LoadConfig(configPath())
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		os.Exit(1)
	}

	var known map[string]struct{}
	if cfg.Universe.ValidateSymbols {
		known = universe.KnownSymbols(ctx, 30*time.Second)
	}

	results, err := report.RepairAll(cfg.OutputDir, cfg.TotalPages, known)
	if err != nil {
		logger.ErrorWithErr(ctx, "Symbol repair failed", err)
		os.Exit(1)
	}

	var totalRows, totalChanged int
	for _, res := range results {
		totalRows += res.Rows
		totalChanged += res.Changed
		logger.Info(ctx, "Page repaired",
			"page", res.Page,
			"rows", res.Rows,
			"changed", res.Changed,
		)
		for _, sym := range res.Suspects {
			logger.Warn(ctx, "Repaired symbol not in universe", "page", res.Page, "symbol", sym)
		}
	}
	logger.Info(ctx, "Symbol repair complete",
		"files", len(results),
		"rows", totalRows,
		"changed", totalChanged,
	)

	_ = trace.Shutdown(context.Background())
}

func configPath() string {
	if len(os.Args) > 1 {
		return os.Args[1]
	}
	return "config.yaml"
}
