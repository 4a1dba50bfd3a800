package extract

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"sensibull-extractor/internal/interfaces"
	"sensibull-extractor/internal/parse"
	"sensibull-extractor/internal/resolve"
	"sensibull-extractor/internal/types"
)

// stubDriver satisfies the driver interface without any rendering surface.
// Snapshot texts are served per call; every interaction is recorded.
type stubDriver struct {
	snapshots   []string // served in order; last one repeats
	snapshotIdx int
	cardLabels  []string
	timestamp   string
	rows        [][]string
	contextText string

	controls    []string
	controlsErr error
	enabled     bool
	activateErr error

	calls       []string
	activations int
	waits       int
}

func (d *stubDriver) SnapshotText(ctx context.Context, scope string) (string, error) {
	d.calls = append(d.calls, "snapshot")
	if len(d.snapshots) == 0 {
		return "", nil
	}
	text := d.snapshots[d.snapshotIdx]
	if d.snapshotIdx < len(d.snapshots)-1 {
		d.snapshotIdx++
	}
	return text, nil
}

func (d *stubDriver) LocateAll(ctx context.Context, pattern string) ([]interfaces.ElementRef, error) {
	d.calls = append(d.calls, "locate")
	var labels []string
	switch pattern {
	case DayCardPattern:
		labels = d.cardLabels
	case timestampPattern:
		if d.timestamp != "" {
			labels = []string{d.timestamp}
		}
	default:
		// Pagination indicator lookup.
		if m, _ := regexp.MatchString(`^Page`, pattern); m && len(d.controls) > 0 || d.controlsErr != nil {
			labels = []string{"Page 1 of 3"}
		}
	}
	refs := make([]interfaces.ElementRef, len(labels))
	for i, l := range labels {
		refs[i] = interfaces.ElementRef{Pattern: pattern, Index: i, Label: l, Kind: interfaces.RefText}
	}
	return refs, nil
}

func (d *stubDriver) Activate(ctx context.Context, ref interfaces.ElementRef) error {
	d.calls = append(d.calls, "activate")
	d.activations++
	return d.activateErr
}

func (d *stubDriver) IsEnabled(ctx context.Context, ref interfaces.ElementRef) (bool, error) {
	d.calls = append(d.calls, "enabled")
	return d.enabled, nil
}

func (d *stubDriver) Controls(ctx context.Context, ref interfaces.ElementRef) ([]interfaces.ElementRef, error) {
	d.calls = append(d.calls, "controls")
	if d.controlsErr != nil {
		return nil, d.controlsErr
	}
	refs := make([]interfaces.ElementRef, len(d.controls))
	for i, l := range d.controls {
		refs[i] = interfaces.ElementRef{Pattern: ref.Pattern, Index: i, Label: l, Kind: interfaces.RefControl}
	}
	return refs, nil
}

func (d *stubDriver) ContextText(ctx context.Context, ref interfaces.ElementRef) (string, error) {
	return d.contextText, nil
}

func (d *stubDriver) TableRows(ctx context.Context) ([][]string, error) {
	return d.rows, nil
}

func (d *stubDriver) Wait(ctx context.Context, t time.Duration) error {
	d.calls = append(d.calls, "wait")
	d.waits++
	return nil
}

const resolvedText = "Total P&L+500ADANIGREEN 950.50"

func newTestRetryLoop(d *stubDriver) *RetryLoop {
	return NewRetryLoop(d, resolve.New(resolve.DefaultConfig()), 3, time.Millisecond)
}

func TestRetryLoopResolvesOnThirdSample(t *testing.T) {
	d := &stubDriver{
		snapshots:  []string{"still rendering", "still rendering", resolvedText},
		cardLabels: []string{"13Feb"},
	}
	loop := newTestRetryLoop(d)

	card := interfaces.ElementRef{Pattern: DayCardPattern, Label: "13Feb", Kind: interfaces.RefText}
	outcome := loop.Resolve(context.Background(), card)

	if outcome.State != StateResolved {
		t.Fatalf("state = %s, want Resolved", outcome.State)
	}
	if outcome.Symbol != "ADANIGREEN" {
		t.Errorf("symbol = %q, want ADANIGREEN", outcome.Symbol)
	}
	if outcome.DailyPnL != "500" {
		t.Errorf("daily pnl = %q, want 500", outcome.DailyPnL)
	}
	if outcome.Attempts != 3 {
		t.Errorf("attempts = %d, want 3", outcome.Attempts)
	}
	if d.activations != 3 {
		t.Errorf("activations = %d, want one per attempt", d.activations)
	}
}

func TestRetryLoopExhausts(t *testing.T) {
	d := &stubDriver{
		snapshots:  []string{"still rendering"},
		cardLabels: []string{"13Feb"},
	}
	loop := newTestRetryLoop(d)

	card := interfaces.ElementRef{Pattern: DayCardPattern, Label: "13Feb", Kind: interfaces.RefText}
	outcome := loop.Resolve(context.Background(), card)

	if outcome.State != StateExhausted {
		t.Fatalf("state = %s, want Exhausted", outcome.State)
	}
	if outcome.Symbol != types.SymbolUnknown {
		t.Errorf("symbol = %q, want UNKNOWN", outcome.Symbol)
	}
	if outcome.Attempts != 3 {
		t.Errorf("attempts = %d, want the full retry budget", outcome.Attempts)
	}
}

func TestRetryLoopTriggerWaitSampleCycle(t *testing.T) {
	d := &stubDriver{
		snapshots:  []string{resolvedText},
		cardLabels: []string{"13Feb"},
	}
	loop := newTestRetryLoop(d)

	loop.Resolve(context.Background(), interfaces.ElementRef{Pattern: DayCardPattern, Label: "13Feb"})

	want := []string{"activate", "wait", "snapshot"}
	if len(d.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", d.calls, want)
	}
	for i, c := range want {
		if d.calls[i] != c {
			t.Fatalf("calls = %v, want %v", d.calls, want)
		}
	}
}

func TestDecodeRowsSkipsHeaderAndMalformed(t *testing.T) {
	rows := [][]string{
		{"24thFeb2500 PE", "10", "5.0", "6.0", "+500"},
		{"Name", "Qty", "Avg", "LTP", "P&L"},
		{"", "1", "2", "3", "4"},
		{"too", "short"},
	}

	trades := DecodeRows(rows, "ADANIGREEN", "500", parse.DefaultYearRule)
	if len(trades) != 1 {
		t.Fatalf("decoded %d rows, want 1", len(trades))
	}

	tr := trades[0]
	if tr.Symbol != "ADANIGREEN" || tr.OptionType != "PE" || tr.Strike != "2500" || tr.Expiry != "2026-02-24" {
		t.Errorf("unexpected contract fields: %+v", tr)
	}
	if tr.Qty != "10" || tr.AvgPrice != "5.0" || tr.LTP != "6.0" || tr.PnL != "500" {
		t.Errorf("unexpected numeric fields: %+v", tr)
	}
	if tr.DailyTotalPnL != "500" {
		t.Errorf("daily total = %q, want 500", tr.DailyTotalPnL)
	}
}

func TestSummarizeDayStampsRecords(t *testing.T) {
	decoded := DecodeRows([][]string{{"2500 PE", "10", "5.0", "6.0", "+500"}}, "UPL", "500", parse.DefaultYearRule)
	session := types.Session{Timestamp: "Taken @ Feb 13, 2026"}

	trades, day := SummarizeDay("2026-02-13", "UPL", "500", decoded, session, 4)
	if len(trades) != 1 || day.NumTrades != 1 {
		t.Fatalf("want exactly one stamped trade, got %d (summary %d)", len(trades), day.NumTrades)
	}
	tr := trades[0]
	if tr.Date != "2026-02-13" || tr.VerificationTimestamp != session.Timestamp || tr.Page != 4 {
		t.Errorf("stamping failed: %+v", tr)
	}
}

func TestSummarizeDayPlaceholder(t *testing.T) {
	session := types.Session{Timestamp: "ts"}

	trades, day := SummarizeDay("2026-02-13", "ADANIGREEN", "16410", nil, session, 2)

	if day.NumTrades != 1 || len(trades) != 1 {
		t.Fatalf("resolved day must contribute at least one record, got %d", len(trades))
	}
	ph := trades[0]
	if ph.OptionType != types.OptionStock {
		t.Errorf("placeholder type = %q, want STOCK", ph.OptionType)
	}
	if ph.Strike != "" || ph.Expiry != "" {
		t.Errorf("placeholder STOCK must have empty strike/expiry: %+v", ph)
	}
	if ph.PnL != "16410" || ph.DailyTotalPnL != "16410" {
		t.Errorf("placeholder must carry the day total as its own P&L: %+v", ph)
	}
	if len(day.Trades) != 1 {
		t.Errorf("summary must include the placeholder")
	}
}

func TestExtractPageEndToEnd(t *testing.T) {
	d := &stubDriver{
		snapshots:  []string{resolvedText},
		cardLabels: []string{"13Feb"},
		rows: [][]string{
			{"24thFeb2500 PE", "10", "5.0", "6.0", "+500"},
			{"Name", "Qty", "Avg", "LTP", "P&L"},
		},
	}
	ex := New(d, resolve.New(resolve.DefaultConfig()), parse.DefaultYearRule, 3, time.Millisecond)
	session := types.Session{Timestamp: "Taken @ Feb 13, 2026"}

	trades, summaries, err := ex.ExtractPage(context.Background(), 11, session)
	if err != nil {
		t.Fatalf("ExtractPage: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("got %d trades, want 1 (header row skipped)", len(trades))
	}

	tr := trades[0]
	if tr.Symbol != "ADANIGREEN" {
		t.Errorf("symbol = %q, want ADANIGREEN", tr.Symbol)
	}
	if tr.OptionType != "PE" || tr.Strike != "2500" || tr.Expiry != "2026-02-24" {
		t.Errorf("contract = %+v", tr)
	}
	if tr.PnL != "500" || tr.Date != "2026-02-13" || tr.Page != 11 {
		t.Errorf("stamped fields = %+v", tr)
	}

	if len(summaries) != 1 {
		t.Fatalf("got %d summaries, want 1", len(summaries))
	}
	if summaries[0].NumTrades != 1 || summaries[0].TotalPnL != "500" || summaries[0].Date != "2026-02-13" {
		t.Errorf("summary = %+v", summaries[0])
	}
}

func TestExtractPageDeduplicatesCards(t *testing.T) {
	d := &stubDriver{
		snapshots:  []string{resolvedText},
		cardLabels: []string{"13Feb", "13Feb", "14Feb"},
	}
	ex := New(d, resolve.New(resolve.DefaultConfig()), parse.DefaultYearRule, 3, time.Millisecond)

	_, summaries, err := ex.ExtractPage(context.Background(), 1, types.Session{})
	if err != nil {
		t.Fatalf("ExtractPage: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("got %d summaries, want 2 after dedup", len(summaries))
	}
}

func TestExtractPageSkipsNoTradeDay(t *testing.T) {
	d := &stubDriver{
		snapshots:   []string{resolvedText},
		cardLabels:  []string{"13Feb"},
		contextText: "13Feb NoTradeDay",
	}
	ex := New(d, resolve.New(resolve.DefaultConfig()), parse.DefaultYearRule, 3, time.Millisecond)

	trades, summaries, err := ex.ExtractPage(context.Background(), 1, types.Session{})
	if err != nil {
		t.Fatalf("ExtractPage: %v", err)
	}
	if len(trades) != 0 || len(summaries) != 0 {
		t.Errorf("no-trade day must be skipped, got %d trades", len(trades))
	}
	if d.activations != 0 {
		t.Errorf("no-trade card must never be activated")
	}
}

func TestPaginatorAdvance(t *testing.T) {
	d := &stubDriver{
		controls: []string{"<<", "<", ">"},
		enabled:  true,
	}
	p := NewPaginator(d, 3, time.Millisecond, time.Millisecond)

	if !p.Advance(context.Background()) {
		t.Fatal("Advance failed with healthy controls")
	}
	if got := p.State().CurrentPage; got != 2 {
		t.Errorf("current page = %d, want 2", got)
	}
}

func TestPaginatorAdvanceFailsNonFatally(t *testing.T) {
	// No indicator on the page at all.
	d := &stubDriver{}
	p := NewPaginator(d, 3, time.Millisecond, time.Millisecond)
	if p.Advance(context.Background()) {
		t.Error("Advance must fail without an indicator")
	}
	if p.State().CurrentPage != 1 {
		t.Errorf("failed advance must not move the page")
	}

	// Indicator present but too few controls.
	d = &stubDriver{controls: []string{">"}, enabled: true}
	p = NewPaginator(d, 3, time.Millisecond, time.Millisecond)
	if p.Advance(context.Background()) {
		t.Error("Advance must fail with missing controls")
	}

	// Controls unreadable.
	d = &stubDriver{controlsErr: errors.New("stale"), enabled: true}
	p = NewPaginator(d, 3, time.Millisecond, time.Millisecond)
	if p.Advance(context.Background()) {
		t.Error("Advance must fail when controls are unreadable")
	}
}

func TestPaginatorDisabledControlRechecked(t *testing.T) {
	d := &stubDriver{
		controls: []string{"<<", "<", ">"},
		enabled:  false,
	}
	p := NewPaginator(d, 3, time.Millisecond, time.Millisecond)

	if !p.Advance(context.Background()) {
		t.Fatal("Advance must retry a disabled control once and proceed")
	}
	if d.waits < 2 {
		t.Errorf("expected a recheck wait plus the nav settle, got %d waits", d.waits)
	}
}

func TestPaginatorGoTo(t *testing.T) {
	d := &stubDriver{
		controls: []string{"<<", "<", ">"},
		enabled:  true,
	}
	p := NewPaginator(d, 5, time.Millisecond, time.Millisecond)

	if !p.GoTo(context.Background(), 1) {
		t.Error("GoTo current page must be a no-op success")
	}
	if d.activations != 0 {
		t.Error("GoTo current page must not click")
	}

	if !p.GoTo(context.Background(), 4) {
		t.Fatal("GoTo 4 failed")
	}
	if got := p.State().CurrentPage; got != 4 {
		t.Errorf("current page = %d, want 4", got)
	}
	if d.activations != 3 {
		t.Errorf("activations = %d, want one per advance", d.activations)
	}
}

func TestReadTimestamp(t *testing.T) {
	d := &stubDriver{timestamp: "Taken @ Feb 13, 2026 3:45 PM"}
	if got := ReadTimestamp(context.Background(), d); got != d.timestamp {
		t.Errorf("ReadTimestamp = %q, want %q", got, d.timestamp)
	}

	d = &stubDriver{}
	if got := ReadTimestamp(context.Background(), d); got != "" {
		t.Errorf("ReadTimestamp = %q, want empty without header", got)
	}
}
