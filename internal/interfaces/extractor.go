package interfaces

import (
	"context"

	"sensibull-extractor/internal/types"
)

// PageExtractor extracts all trades visible on the current report page.
type PageExtractor interface {
	ExtractPage(ctx context.Context, pageNum int, session types.Session) ([]types.TradeRecord, []types.DaySummary, error)
}

// ReportWriter persists one page's extraction results. Returns the path of
// the written tabular file, or "" when there was nothing to write.
type ReportWriter interface {
	WritePage(pageNum int, trades []types.TradeRecord, summaries []types.DaySummary) (csvPath string, err error)
}

// RecordArchiver stores emitted records across runs.
type RecordArchiver interface {
	ArchiveRecords(ctx context.Context, runAt string, trades []types.TradeRecord) error
	Close() error
}
