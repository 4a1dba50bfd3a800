package extract

import (
	"context"
	"fmt"
	"time"

	"sensibull-extractor/internal/interfaces"
	"sensibull-extractor/internal/logger"
	"sensibull-extractor/internal/types"
)

// The advance control sits third among the indicator's sibling buttons
// (first/previous/next on the observed report).
const (
	minNavControls = 3
	nextControlIdx = 2
)

// Paginator drives the report's page navigation. Advancing locates the
// "Page X of N" indicator, checks its sibling controls and clicks the
// advance button. Every failure mode is non-fatal: the caller skips the
// unreachable page and the run continues.
type Paginator struct {
	drv        interfaces.Driver
	state      types.PaginationState
	indicator  string
	navSettle  time.Duration
	navRecheck time.Duration
}

func NewPaginator(drv interfaces.Driver, totalPages int, navSettle, navRecheck time.Duration) *Paginator {
	return &Paginator{
		drv:        drv,
		state:      types.PaginationState{CurrentPage: 1, TotalPages: totalPages},
		indicator:  fmt.Sprintf(`Page.*of %d`, totalPages),
		navSettle:  navSettle,
		navRecheck: navRecheck,
	}
}

func (p *Paginator) State() types.PaginationState {
	return p.state
}

// GoTo advances from the current page to the target page. Reports false
// when the target cannot be reached; the paginator stays on whatever page
// it last reached.
func (p *Paginator) GoTo(ctx context.Context, target int) bool {
	if target < p.state.CurrentPage {
		logger.Warn(ctx, "Cannot navigate backwards", "current", p.state.CurrentPage, "target", target)
		return false
	}
	for p.state.CurrentPage < target {
		if !p.Advance(ctx) {
			return false
		}
	}
	return true
}

// Advance moves one page forward.
func (p *Paginator) Advance(ctx context.Context) bool {
	if p.state.Exhausted {
		return false
	}

	indicators, err := p.drv.LocateAll(ctx, p.indicator)
	if err != nil || len(indicators) == 0 {
		logger.Warn(ctx, "Pagination indicator not found", "page", p.state.CurrentPage, "error", err)
		return false
	}

	next, ok := p.nextControl(ctx, indicators[0])
	if !ok {
		return false
	}

	enabled, err := p.drv.IsEnabled(ctx, next)
	if err != nil {
		logger.Warn(ctx, "Advance control state unreadable", "page", p.state.CurrentPage, "error", err)
		return false
	}
	if !enabled {
		// The control flips back on once the page finishes rendering;
		// wait and re-check once.
		_ = p.drv.Wait(ctx, p.navRecheck)
		next, ok = p.nextControl(ctx, indicators[0])
		if !ok {
			return false
		}
	}

	if err := p.drv.Activate(ctx, next); err != nil {
		logger.Warn(ctx, "Advance click failed", "page", p.state.CurrentPage, "error", err)
		return false
	}
	_ = p.drv.Wait(ctx, p.navSettle)

	p.state.CurrentPage++
	if p.state.CurrentPage >= p.state.TotalPages {
		p.state.Exhausted = true
	}
	return true
}

func (p *Paginator) nextControl(ctx context.Context, indicator interfaces.ElementRef) (interfaces.ElementRef, bool) {
	controls, err := p.drv.Controls(ctx, indicator)
	if err != nil {
		logger.Warn(ctx, "Pagination controls unreadable", "page", p.state.CurrentPage, "error", err)
		return interfaces.ElementRef{}, false
	}
	if len(controls) < minNavControls {
		logger.Warn(ctx, "Not enough navigation controls", "page", p.state.CurrentPage, "controls", len(controls))
		return interfaces.ElementRef{}, false
	}
	return controls[nextControlIdx], true
}
