package main

import (
	"context"
	"fmt"
	"time"

	"sensibull-extractor/internal/archive"
	"sensibull-extractor/internal/driver"
	"sensibull-extractor/internal/extract"
	"sensibull-extractor/internal/extract/extractobs"
	"sensibull-extractor/internal/interfaces"
	"sensibull-extractor/internal/logger"
	"sensibull-extractor/internal/parse"
	"sensibull-extractor/internal/report"
	"sensibull-extractor/internal/resolve"
	"sensibull-extractor/internal/store"
	"sensibull-extractor/internal/types"
)

// run owns the whole traversal: open the report, capture the session
// context, then visit each target page in order. Only the initial load is
// fatal; every later failure skips its page or card and the run continues.
func run(ctx context.Context, cfg *store.Config) error {
	drv, err := driver.NewChrome(ctx, driver.Options{
		Headless:    cfg.Headless,
		StepTimeout: ms(cfg.Waits.StepTimeoutMs),
		ClickSettle: ms(cfg.Waits.ScrollMs),
	})
	if err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer drv.Close()

	logger.Info(ctx, "Loading report", "url", cfg.ReportURL)
	if err := drv.Open(ctx, cfg.ReportURL, ms(cfg.Waits.InitialLoadMs)); err != nil {
		return fmt.Errorf("failed to load initial view: %w", err)
	}

	session := types.Session{
		Timestamp: extract.ReadTimestamp(ctx, drv),
		Pages:     cfg.Pages,
	}
	logger.Info(ctx, "Session started", "timestamp", session.Timestamp, "pages", len(session.Pages))

	extractor := extractobs.Wrap(extract.New(
		drv,
		resolve.New(resolverConfig(cfg)),
		parse.YearRule{Current: cfg.Years.Current, Next: cfg.Years.Next},
		cfg.MaxRetries,
		ms(cfg.Waits.SettleMs),
	))
	paginator := extract.NewPaginator(drv, cfg.TotalPages, ms(cfg.Waits.NavSettleMs), ms(cfg.Waits.NavRecheckMs))
	writer := report.NewWriter(cfg.OutputDir)
	archiver := openArchive(ctx, cfg)
	if archiver != nil {
		defer archiver.Close()
	}
	runAt := time.Now().Format(time.RFC3339)

	for _, pageNum := range cfg.Pages {
		if !paginator.GoTo(ctx, pageNum) {
			logger.Warn(ctx, "Page unreachable, skipping", "page", pageNum)
			continue
		}

		trades, summaries, err := extractor.ExtractPage(ctx, pageNum, session)
		if err != nil {
			logger.ErrorWithErr(ctx, "Page extraction failed, skipping", err, "page", pageNum)
			continue
		}
		if len(trades) == 0 {
			continue
		}

		csvPath, err := writer.WritePage(pageNum, trades, summaries)
		if err != nil {
			logger.ErrorWithErr(ctx, "Failed to write page output", err, "page", pageNum)
			continue
		}
		logger.Info(ctx, "Page complete",
			"page", pageNum,
			"trades", len(trades),
			"days", len(summaries),
			"csv", csvPath,
			"symbols", report.SymbolDistribution(trades),
		)

		if archiver != nil {
			if err := archiver.ArchiveRecords(ctx, runAt, trades); err != nil {
				logger.ErrorWithErr(ctx, "Failed to archive page records", err, "page", pageNum)
			}
		}
	}

	logger.Info(ctx, "Extraction run finished", "final_state", fmt.Sprintf("%+v", paginator.State()))
	return nil
}

func resolverConfig(cfg *store.Config) resolve.Config {
	rc := resolve.DefaultConfig()
	if len(cfg.Resolver.PriceContextExclusions) > 0 {
		rc.PriceContextExclusions = cfg.Resolver.PriceContextExclusions
	}
	if len(cfg.Resolver.BroadExclusions) > 0 {
		rc.BroadExclusions = cfg.Resolver.BroadExclusions
	}
	return rc
}

func openArchive(ctx context.Context, cfg *store.Config) interfaces.RecordArchiver {
	if !cfg.Archive.Enabled {
		return nil
	}
	st, err := archive.Open(cfg.Archive.Path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Archive unavailable, continuing without it", err, "path", cfg.Archive.Path)
		return nil
	}
	return st
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}
