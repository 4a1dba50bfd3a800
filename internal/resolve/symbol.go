// Package resolve recovers the ticker symbol and daily P&L total from the
// noisy rendered text of an activated day-card.
package resolve

import (
	"regexp"
	"strings"

	"sensibull-extractor/internal/parse"
	"sensibull-extractor/internal/types"
)

// Config carries the exclusion vocabularies of the two scanning strategies.
// The defaults are tuned against one specific report's wording; treat them
// as data, not as a complete list.
type Config struct {
	PriceContextExclusions []string
	BroadExclusions        []string
}

// DefaultConfig returns the exclusion sets observed to work on the report
// this extractor was built against.
func DefaultConfig() Config {
	return Config{
		PriceContextExclusions: []string{
			"TOTAL", "P&L", "NAME", "QTY", "AVG", "LTP", "NOTES", "PAGE",
			"JAN", "FEB", "MAR", "APR", "MAY", "JUN",
			"JUL", "AUG", "SEP", "OCT", "NOV", "DEC",
		},
		BroadExclusions: []string{
			"TOTAL", "PRICE", "VALUE", "STOCK", "SHARE", "TRADE", "MARKET",
			"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY", "SUNDAY",
			"JANUARY", "FEBRUARY", "MARCH", "APRIL", "MAY", "JUNE",
			"JULY", "AUGUST", "SEPTEMBER", "OCTOBER", "NOVEMBER", "DECEMBER",
		},
	}
}

// The symbol appears inconsistently relative to its surrounding labels, so
// resolution is an ordered cascade of independent extractors, each tried on
// the full page text, short-circuiting on the first hit.
var (
	// "NotesADANIGREEN 950.50" / "NotesADANIGREEN950.50": label fused
	// directly onto the symbol, price right behind it.
	notesFusedRe = regexp.MustCompile(`(?i)Notes([A-Za-z]{3,20})\s*\d`)
	// "Total P&L+16,410ADANIGREEN 950.50": symbol wedged between the day
	// total and the instrument price.
	afterTotalRe = regexp.MustCompile(`(?i)Total P&L[+\-]?[\d,]+([A-Za-z]{3,20})\s+[\d,]+\.\d{2}`)
	// Any uppercase letter run directly before a two-decimal price.
	beforePriceRe = regexp.MustCompile(`([A-Z]{3,20})\s+[\d,]+\.\d{2}`)
	// "Notes" with arbitrary spacing before the letters.
	notesLooseRe = regexp.MustCompile(`(?i)Notes\s*([A-Za-z]{3,20})`)
	// Broadest net: any uppercase word with a two-decimal number within
	// 100 characters on the same line. The gap is non-greedy so an excluded
	// word's match ends at the nearest price and the scan can move on to the
	// next candidate.
	nearPriceRe = regexp.MustCompile(`\b([A-Z]{3,20})\b[^\n]{0,100}?\d+\.\d{2}`)

	totalPnLRe = regexp.MustCompile(`(?i)Total P&L\s*([+\-]?[\d,]+)`)
)

// Resolver resolves ticker symbols from page text. Pure: identical text
// always yields the identical result. The scanning strategies reject the
// union of both vocabularies so a word excluded by one scan can never leak
// out through another.
type Resolver struct {
	excluded   map[string]bool
	strategies []func(string) string
}

func New(cfg Config) *Resolver {
	r := &Resolver{
		excluded: toSet(append(cfg.PriceContextExclusions, cfg.BroadExclusions...)),
	}
	r.strategies = []func(string) string{
		r.notesFused,
		r.afterTotal,
		r.beforePrice,
		r.notesLoose,
		r.nearPrice,
	}
	return r
}

// Symbol runs the cascade and returns the first hit, or SymbolUnknown when
// every strategy comes up empty.
func (r *Resolver) Symbol(pageText string) string {
	for _, strategy := range r.strategies {
		if sym := strategy(pageText); sym != "" {
			return sym
		}
	}
	return types.SymbolUnknown
}

func (r *Resolver) notesFused(text string) string {
	if m := notesFusedRe.FindStringSubmatch(text); m != nil {
		return strings.ToUpper(m[1])
	}
	return ""
}

func (r *Resolver) afterTotal(text string) string {
	if m := afterTotalRe.FindStringSubmatch(text); m != nil {
		return strings.ToUpper(m[1])
	}
	return ""
}

func (r *Resolver) beforePrice(text string) string {
	for _, m := range beforePriceRe.FindAllStringSubmatch(text, -1) {
		candidate := strings.ToUpper(m[1])
		if r.excluded[candidate] || containsDigit(candidate) {
			continue
		}
		return candidate
	}
	return ""
}

func (r *Resolver) notesLoose(text string) string {
	for _, m := range notesLooseRe.FindAllStringSubmatch(text, -1) {
		candidate := strings.ToUpper(m[1])
		if len(candidate) >= 3 && !r.excluded[candidate] {
			return candidate
		}
	}
	return ""
}

func (r *Resolver) nearPrice(text string) string {
	for _, m := range nearPriceRe.FindAllStringSubmatch(text, -1) {
		candidate := strings.ToUpper(m[1])
		if r.excluded[candidate] || !isAlpha(candidate) {
			continue
		}
		return candidate
	}
	return ""
}

// PnL extracts the day's Total P&L figure as a cleaned numeric string, or
// "" when the anchor is absent. Never fails.
func PnL(pageText string) string {
	if m := totalPnLRe.FindStringSubmatch(pageText); m != nil {
		return parse.CleanNum(m[1])
	}
	return ""
}

func toSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[strings.ToUpper(w)] = true
	}
	return set
}

func containsDigit(s string) bool {
	for _, c := range s {
		if c >= '0' && c <= '9' {
			return true
		}
	}
	return false
}

func isAlpha(s string) bool {
	for _, c := range s {
		if (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			return false
		}
	}
	return s != ""
}
