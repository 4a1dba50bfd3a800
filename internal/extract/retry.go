// Package extract drives the extraction of trades from the rendered
// report: day-card resolution with bounded retries, row decoding, daily
// aggregation and page traversal.
package extract

import (
	"context"
	"time"

	"sensibull-extractor/internal/interfaces"
	"sensibull-extractor/internal/logger"
	"sensibull-extractor/internal/resolve"
	"sensibull-extractor/internal/types"
)

// CardState is the state of one day-card's trigger-wait-sample cycle.
type CardState int

const (
	StateIdle CardState = iota
	StateActivated
	StateSampling
	StateResolved
	StateExhausted
)

func (s CardState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateActivated:
		return "Activated"
	case StateSampling:
		return "Sampling"
	case StateResolved:
		return "Resolved"
	case StateExhausted:
		return "Exhausted"
	}
	return "Unknown"
}

// CardOutcome is the terminal result of the retry loop for one day-card.
type CardOutcome struct {
	State    CardState
	Symbol   string
	DailyPnL string
	Attempts int
}

// RetryLoop reconciles asynchronous UI state with synchronous extraction:
// activate the card, wait a settling interval, sample the page text, and
// retry on a freshly located element while the symbol stays unresolved.
// All side effects go through the injected driver; the loop itself keeps no
// state beyond the per-card counters.
type RetryLoop struct {
	drv         interfaces.Driver
	resolver    *resolve.Resolver
	maxAttempts int
	settle      time.Duration
}

func NewRetryLoop(drv interfaces.Driver, resolver *resolve.Resolver, maxAttempts int, settle time.Duration) *RetryLoop {
	return &RetryLoop{drv: drv, resolver: resolver, maxAttempts: maxAttempts, settle: settle}
}

// Resolve runs the state machine for one day-card until the symbol
// resolves or the retry budget is exhausted. Driver errors count as failed
// attempts; they never propagate.
func (l *RetryLoop) Resolve(ctx context.Context, card interfaces.ElementRef) CardOutcome {
	outcome := CardOutcome{State: StateIdle, Symbol: types.SymbolUnknown}

	for attempt := 1; attempt <= l.maxAttempts; attempt++ {
		outcome.Attempts = attempt

		// Idle/Sampling -> Activated. The DOM may have re-rendered since
		// the card was first located, so re-resolve on every retry.
		if attempt > 1 {
			card = l.relocate(ctx, card)
		}
		if err := l.drv.Activate(ctx, card); err != nil {
			logger.Warn(ctx, "Day-card activation failed", "card", card.Label, "attempt", attempt, "error", err)
			continue
		}
		outcome.State = StateActivated

		// Activated -> Sampling: settle, then take one snapshot.
		if err := l.drv.Wait(ctx, l.settle); err != nil {
			continue
		}
		outcome.State = StateSampling

		text, err := l.drv.SnapshotText(ctx, "body")
		if err != nil {
			logger.Warn(ctx, "Snapshot failed", "card", card.Label, "attempt", attempt, "error", err)
			continue
		}

		symbol := l.resolver.Symbol(text)
		pnl := resolve.PnL(text)
		if symbol != types.SymbolUnknown {
			outcome.State = StateResolved
			outcome.Symbol = symbol
			outcome.DailyPnL = pnl
			return outcome
		}

		outcome.DailyPnL = pnl
		if attempt < l.maxAttempts {
			logger.Debug(ctx, "Symbol unresolved, retrying", "card", card.Label, "attempt", attempt)
		}
	}

	outcome.State = StateExhausted
	return outcome
}

// relocate finds a fresh ref for the same card label; falls back to the
// stale ref when the label is no longer on the page.
func (l *RetryLoop) relocate(ctx context.Context, card interfaces.ElementRef) interfaces.ElementRef {
	refs, err := l.drv.LocateAll(ctx, card.Pattern)
	if err != nil {
		return card
	}
	for _, ref := range refs {
		if ref.Label == card.Label {
			return ref
		}
	}
	return card
}
