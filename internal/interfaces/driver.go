package interfaces

import (
	"context"
	"time"
)

// ElementRef identifies an on-page element by how it was located rather
// than by a live handle, so it can be re-resolved after the DOM re-renders.
type ElementRef struct {
	// Pattern is the visible-text pattern the element was located with.
	Pattern string
	// Index is the element's position among the pattern's matches.
	Index int
	// Label is the trimmed visible text at locate time.
	Label string
	// Kind distinguishes text elements from navigation controls.
	Kind string
}

const (
	RefText    = "text"
	RefControl = "control"
)

// Driver is the rendering/automation surface the extraction core consumes.
// The core depends on nothing beyond "rows have cells" and "elements are
// locatable by visible text pattern".
type Driver interface {
	// SnapshotText returns the rendered text of the given scope
	// (CSS selector, "body" when empty).
	SnapshotText(ctx context.Context, scope string) (string, error)

	// LocateAll returns refs for all leaf elements whose visible text
	// matches the pattern, in document order.
	LocateAll(ctx context.Context, pattern string) ([]ElementRef, error)

	// Activate scrolls the element into view and clicks it. The element is
	// re-resolved from the ref on every call.
	Activate(ctx context.Context, ref ElementRef) error

	// IsEnabled reports whether a control ref is currently enabled.
	IsEnabled(ctx context.Context, ref ElementRef) (bool, error)

	// Controls returns the navigation buttons sitting next to the given
	// element, in document order.
	Controls(ctx context.Context, ref ElementRef) ([]ElementRef, error)

	// ContextText returns the text surrounding the element (its enclosing
	// container), used to detect no-trade markers around a day-card.
	ContextText(ctx context.Context, ref ElementRef) (string, error)

	// TableRows returns the cell texts of every visible table row that has
	// data cells.
	TableRows(ctx context.Context) ([][]string, error)

	// Wait blocks for the given settling interval or until ctx is done.
	Wait(ctx context.Context, d time.Duration) error
}
