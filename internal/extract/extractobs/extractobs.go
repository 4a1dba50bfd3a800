package extractobs

import (
	"context"

	"sensibull-extractor/internal/interfaces"
	"sensibull-extractor/internal/logger"
	"sensibull-extractor/internal/trace"
	"sensibull-extractor/internal/types"
)

type observablePageExtractor struct {
	extractor interfaces.PageExtractor
}

var _ interfaces.PageExtractor = (*observablePageExtractor)(nil)

func Wrap(extractor interfaces.PageExtractor) interfaces.PageExtractor {
	return &observablePageExtractor{
		extractor: extractor,
	}
}

func (ope *observablePageExtractor) ExtractPage(ctx context.Context, pageNum int, session types.Session) ([]types.TradeRecord, []types.DaySummary, error) {
	ctx, span := trace.StartSpan(ctx, "extract.ExtractPage")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Starting page extraction",
		"page", pageNum,
	)

	trades, summaries, err := ope.extractor.ExtractPage(ctx, pageNum, session)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Page extraction failed", err,
			"page", pageNum,
		)
		return nil, nil, err
	}

	if len(trades) == 0 {
		logger.InfoSkip(ctx, 1, "No trades extracted from page",
			"page", pageNum,
		)
		return trades, summaries, nil
	}

	logger.InfoSkip(ctx, 1, "Page extraction completed",
		"page", pageNum,
		"trades", len(trades),
		"days", len(summaries),
	)

	return trades, summaries, nil
}
