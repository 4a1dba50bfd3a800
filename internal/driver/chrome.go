// Package driver implements the rendering/automation surface on a headless
// Chrome instance. Elements are located by visible text through injected
// scripts and re-resolved on every interaction, so references survive DOM
// re-renders.
package driver

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/chromedp/chromedp"

	"sensibull-extractor/internal/interfaces"
)

// Options configures the browser session.
type Options struct {
	Headless    bool
	StepTimeout time.Duration
	ClickSettle time.Duration
	WindowW     int
	WindowH     int
}

// Chrome drives a single browser tab.
type Chrome struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	stepTimeout time.Duration
	clickSettle time.Duration
}

var _ interfaces.Driver = (*Chrome)(nil)

func NewChrome(parent context.Context, opts Options) (*Chrome, error) {
	if opts.StepTimeout == 0 {
		opts.StepTimeout = 60 * time.Second
	}
	if opts.ClickSettle == 0 {
		opts.ClickSettle = 300 * time.Millisecond
	}
	if opts.WindowW == 0 {
		opts.WindowW = 1920
	}
	if opts.WindowH == 0 {
		opts.WindowH = 1080
	}

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.WindowSize(opts.WindowW, opts.WindowH),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, allocOpts...)
	ctx, cancel := chromedp.NewContext(allocCtx)

	return &Chrome{
		ctx:         ctx,
		cancel:      cancel,
		allocCancel: allocCancel,
		stepTimeout: opts.StepTimeout,
		clickSettle: opts.ClickSettle,
	}, nil
}

func (c *Chrome) Close() {
	c.cancel()
	c.allocCancel()
}

// Open navigates to the report and waits for the initial render. This is
// the only step whose failure is fatal to a run.
func (c *Chrome) Open(ctx context.Context, url string, settle time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tctx, cancel := context.WithTimeout(c.ctx, c.stepTimeout+settle)
	defer cancel()
	if err := chromedp.Run(tctx, chromedp.Navigate(url), chromedp.Sleep(settle)); err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}
	return nil
}

func (c *Chrome) SnapshotText(ctx context.Context, scope string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if scope == "" {
		scope = "body"
	}
	tctx, cancel := context.WithTimeout(c.ctx, c.stepTimeout)
	defer cancel()
	var text string
	if err := chromedp.Run(tctx, chromedp.Text(scope, &text, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("snapshot of %q failed: %w", scope, err)
	}
	return text, nil
}

func (c *Chrome) LocateAll(ctx context.Context, pattern string) ([]interfaces.ElementRef, error) {
	labels := []string{}
	script := fmt.Sprintf(locateScript, strconv.Quote(pattern))
	if err := c.eval(ctx, script, &labels); err != nil {
		return nil, err
	}
	refs := make([]interfaces.ElementRef, len(labels))
	for i, label := range labels {
		refs[i] = interfaces.ElementRef{
			Pattern: pattern,
			Index:   i,
			Label:   label,
			Kind:    interfaces.RefText,
		}
	}
	return refs, nil
}

// Activate scrolls the element into view, lets the viewport settle, then
// clicks through script. Script clicks are more reliable here than native
// ones: overlays on the report intercept synthetic mouse events.
func (c *Chrome) Activate(ctx context.Context, ref interfaces.ElementRef) error {
	var ok bool
	if err := c.eval(ctx, c.refAction(ref, "scroll"), &ok); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("element %q not found for activation", ref.Label)
	}
	if err := c.Wait(ctx, c.clickSettle); err != nil {
		return err
	}
	if err := c.eval(ctx, c.refAction(ref, "click"), &ok); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("element %q vanished before click", ref.Label)
	}
	return nil
}

func (c *Chrome) IsEnabled(ctx context.Context, ref interfaces.ElementRef) (bool, error) {
	var enabled bool
	if err := c.eval(ctx, c.refAction(ref, "enabled"), &enabled); err != nil {
		return false, err
	}
	return enabled, nil
}

func (c *Chrome) Controls(ctx context.Context, ref interfaces.ElementRef) ([]interfaces.ElementRef, error) {
	labels := []string{}
	script := fmt.Sprintf(controlsScript, strconv.Quote(ref.Pattern))
	if err := c.eval(ctx, script, &labels); err != nil {
		return nil, err
	}
	refs := make([]interfaces.ElementRef, len(labels))
	for i, label := range labels {
		refs[i] = interfaces.ElementRef{
			Pattern: ref.Pattern,
			Index:   i,
			Label:   label,
			Kind:    interfaces.RefControl,
		}
	}
	return refs, nil
}

func (c *Chrome) ContextText(ctx context.Context, ref interfaces.ElementRef) (string, error) {
	var text string
	script := fmt.Sprintf(contextTextScript, strconv.Quote(ref.Pattern), strconv.Quote(ref.Label))
	if err := c.eval(ctx, script, &text); err != nil {
		return "", err
	}
	return text, nil
}

func (c *Chrome) TableRows(ctx context.Context) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tctx, cancel := context.WithTimeout(c.ctx, c.stepTimeout)
	defer cancel()
	var html string
	if err := chromedp.Run(tctx, chromedp.OuterHTML("body", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("table snapshot failed: %w", err)
	}
	return ParseTableRows(html)
}

func (c *Chrome) Wait(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func (c *Chrome) eval(ctx context.Context, script string, res any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tctx, cancel := context.WithTimeout(c.ctx, c.stepTimeout)
	defer cancel()
	if err := chromedp.Run(tctx, chromedp.Evaluate(script, res)); err != nil {
		return fmt.Errorf("script evaluation failed: %w", err)
	}
	return nil
}

// refAction builds the script that re-resolves a ref and performs one
// action on it. Text refs are matched by exact label (fresh lookup each
// time); control refs are the nth button next to the pattern's element.
func (c *Chrome) refAction(ref interfaces.ElementRef, action string) string {
	if ref.Kind == interfaces.RefControl {
		return fmt.Sprintf(controlActionScript, strconv.Quote(ref.Pattern), ref.Index, strconv.Quote(action))
	}
	return fmt.Sprintf(textActionScript, strconv.Quote(ref.Pattern), strconv.Quote(ref.Label), ref.Index, strconv.Quote(action))
}

const locateScript = `(() => {
	const re = new RegExp(%s, "i");
	const out = [];
	for (const el of document.querySelectorAll("body *")) {
		if (el.childElementCount > 0) continue;
		const t = (el.textContent || "").trim();
		if (t && re.test(t)) out.push(t);
	}
	return out;
})()`

const textActionScript = `(() => {
	const re = new RegExp(%s, "i");
	const want = %s;
	const idx = %d;
	const action = %s;
	let i = 0;
	for (const el of document.querySelectorAll("body *")) {
		if (el.childElementCount > 0) continue;
		const t = (el.textContent || "").trim();
		if (!t || !re.test(t)) continue;
		if (want !== "" ? t === want : i === idx) {
			if (action === "scroll") el.scrollIntoView({block: "center"});
			else if (action === "click") el.click();
			else if (action === "enabled") return !el.disabled;
			return true;
		}
		i++;
	}
	return false;
})()`

const controlsScript = `(() => {
	const re = new RegExp(%s, "i");
	for (const el of document.querySelectorAll("body *")) {
		if (el.childElementCount > 0) continue;
		const t = (el.textContent || "").trim();
		if (!t || !re.test(t)) continue;
		const parent = el.parentElement;
		if (!parent) return [];
		return Array.from(parent.querySelectorAll("button")).map(b => (b.textContent || "").trim());
	}
	return [];
})()`

const controlActionScript = `(() => {
	const re = new RegExp(%s, "i");
	const idx = %d;
	const action = %s;
	for (const el of document.querySelectorAll("body *")) {
		if (el.childElementCount > 0) continue;
		const t = (el.textContent || "").trim();
		if (!t || !re.test(t)) continue;
		const parent = el.parentElement;
		if (!parent) return false;
		const btns = parent.querySelectorAll("button");
		if (idx >= btns.length) return false;
		const b = btns[idx];
		if (action === "scroll") { b.scrollIntoView({block: "center"}); return true; }
		if (action === "click") { b.click(); return true; }
		if (action === "enabled") return !b.disabled;
		return false;
	}
	return false;
})()`

const contextTextScript = `(() => {
	const re = new RegExp(%s, "i");
	const want = %s;
	for (const el of document.querySelectorAll("body *")) {
		if (el.childElementCount > 0) continue;
		const t = (el.textContent || "").trim();
		if (!t || !re.test(t)) continue;
		if (want !== "" && t !== want) continue;
		const up = el.parentElement && el.parentElement.parentElement;
		return ((up || el).textContent || "").trim();
	}
	return "";
})()`
