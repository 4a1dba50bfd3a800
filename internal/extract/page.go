package extract

import (
	"context"
	"strings"
	"time"

	"sensibull-extractor/internal/interfaces"
	"sensibull-extractor/internal/logger"
	"sensibull-extractor/internal/parse"
	"sensibull-extractor/internal/resolve"
	"sensibull-extractor/internal/types"
)

// DayCardPattern matches the visible text of a day-card entry point.
const DayCardPattern = `^\d{1,2}(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)$`

// timestampPattern matches the report's verification header.
const timestampPattern = `Taken @`

// Extractor walks the day-cards of the currently visible page and turns
// each resolved card into stamped trade records and a day summary.
type Extractor struct {
	drv   interfaces.Driver
	retry *RetryLoop
	years parse.YearRule
}

var _ interfaces.PageExtractor = (*Extractor)(nil)

func New(drv interfaces.Driver, resolver *resolve.Resolver, years parse.YearRule, maxRetries int, settle time.Duration) *Extractor {
	return &Extractor{
		drv:   drv,
		retry: NewRetryLoop(drv, resolver, maxRetries, settle),
		years: years,
	}
}

// ExtractPage processes every day-card on the visible page in top-to-bottom
// order, deduplicated by label. Cards that never resolve are skipped and
// logged; they never abort the page.
func (e *Extractor) ExtractPage(ctx context.Context, pageNum int, session types.Session) ([]types.TradeRecord, []types.DaySummary, error) {
	cards, err := e.drv.LocateAll(ctx, DayCardPattern)
	if err != nil {
		return nil, nil, err
	}
	cards = dedupeByLabel(cards)
	logger.Info(ctx, "Day-cards located", "page", pageNum, "cards", len(cards))

	var allTrades []types.TradeRecord
	var summaries []types.DaySummary

	for i, card := range cards {
		date := parse.Date(card.Label, e.years)

		if e.isNoTradeDay(ctx, card) {
			logger.Info(ctx, "No-trade day skipped", "page", pageNum, "card", card.Label)
			continue
		}

		outcome := e.retry.Resolve(ctx, card)
		if outcome.State != StateResolved {
			logger.Warn(ctx, "Day-card resolution exhausted",
				"page", pageNum, "card", card.Label, "date", date,
				"attempts", outcome.Attempts, "state", outcome.State.String())
			continue
		}

		decoded := e.decodeVisibleRows(ctx, outcome.Symbol, outcome.DailyPnL)
		trades, summary := SummarizeDay(date, outcome.Symbol, outcome.DailyPnL, decoded, session, pageNum)

		allTrades = append(allTrades, trades...)
		summaries = append(summaries, summary)

		logger.Card(ctx, pageNum, date, outcome.Symbol, summary.NumTrades, outcome.DailyPnL,
			"card_index", i+1, "card_total", len(cards))
	}

	return allTrades, summaries, nil
}

// decodeVisibleRows reads the detail table of the active card. A driver
// failure here degrades to zero rows; the aggregator then synthesizes the
// placeholder record.
func (e *Extractor) decodeVisibleRows(ctx context.Context, symbol, dailyPnL string) []types.TradeRecord {
	rows, err := e.drv.TableRows(ctx)
	if err != nil {
		logger.Warn(ctx, "Table rows unreadable", "symbol", symbol, "error", err)
		return nil
	}
	return DecodeRows(rows, symbol, dailyPnL, e.years)
}

// isNoTradeDay checks the card's surrounding text for the report's
// no-trade markers.
func (e *Extractor) isNoTradeDay(ctx context.Context, card interfaces.ElementRef) bool {
	text, err := e.drv.ContextText(ctx, card)
	if err != nil {
		return false
	}
	return strings.Contains(text, "NoTradeDay") ||
		strings.Contains(strings.ToLower(text), "not shared")
}

// ReadTimestamp captures the report's verification header once at session
// start. Returns "" when the header is absent.
func ReadTimestamp(ctx context.Context, drv interfaces.Driver) string {
	refs, err := drv.LocateAll(ctx, timestampPattern)
	if err != nil || len(refs) == 0 {
		return ""
	}
	return refs[0].Label
}

func dedupeByLabel(refs []interfaces.ElementRef) []interfaces.ElementRef {
	seen := make(map[string]bool, len(refs))
	out := refs[:0]
	for _, ref := range refs {
		label := strings.TrimSpace(ref.Label)
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		out = append(out, ref)
	}
	return out
}
