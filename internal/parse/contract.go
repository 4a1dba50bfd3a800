// Package parse holds the pure text-to-structure leaves: instrument label
// parsing, short date normalization and numeric cell cleaning.
package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"sensibull-extractor/internal/types"
)

// YearRule is the fixed calendar-epoch assumption for resolving two-digit-
// less date tokens. The report never shows a year, so early months belong
// to the next calendar year and everything else to the current one. This is
// configuration, not something derived from the clock: once the real
// boundary passes the constants must be moved forward or records will be
// silently misdated.
type YearRule struct {
	Current string
	Next    string
}

// DefaultYearRule matches the report vintage this extractor was built
// against.
var DefaultYearRule = YearRule{Current: "2025", Next: "2026"}

var monthNum = map[string]string{
	"jan": "01", "feb": "02", "mar": "03", "apr": "04", "may": "05", "jun": "06",
	"jul": "07", "aug": "08", "sep": "09", "oct": "10", "nov": "11", "dec": "12",
}

// Expiry tokens only roll over for Jan/Feb; bare day tokens roll over for
// Jan/Feb/Mar. The asymmetry is deliberate: expiries near the boundary sit
// earlier in the series than trade dates do.
var (
	expiryNextYearMonths = map[string]bool{"01": true, "02": true}
	dateNextYearMonths   = map[string]bool{"01": true, "02": true, "03": true}
)

var (
	productPrefixRe = regexp.MustCompile(`(?i)^(NRML|EML|CNC|MIS|SL|BO|CO)\s*`)
	datedContractRe = regexp.MustCompile(`(?i)(\d+)(?:st|nd|rd|th)?\s*(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s*(\d+(?:\.\d+)?)\s*(CE|PE)`)
	strikeOnlyRe    = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(CE|PE)`)
	dayTokenRe      = regexp.MustCompile(`(\d{1,2})\s*([A-Za-z]{3,})`)
	numberRe        = regexp.MustCompile(`[\d.\-]+`)
)

// Contract parses an instrument label like "NRML24thFeb2500 PE" or
// "24th Feb 960 PE" into its contract descriptor. Total: any input yields a
// well-formed triple, falling back to a STOCK classification.
func Contract(name string, years YearRule) types.ContractDescriptor {
	cleaned := productPrefixRe.ReplaceAllString(name, "")

	if m := datedContractRe.FindStringSubmatch(cleaned); m != nil {
		day, monthStr, strike, optType := m[1], m[2], m[3], m[4]
		month := monthNum[strings.ToLower(monthStr)[:3]]
		year := years.Current
		if expiryNextYearMonths[month] {
			year = years.Next
		}
		return types.ContractDescriptor{
			OptionType: strings.ToUpper(optType),
			Strike:     strike,
			Expiry:     fmt.Sprintf("%s-%s-%s", year, month, padDay(day)),
		}
	}

	if m := strikeOnlyRe.FindStringSubmatch(cleaned); m != nil {
		return types.ContractDescriptor{
			OptionType: strings.ToUpper(m[2]),
			Strike:     m[1],
		}
	}

	return types.ContractDescriptor{OptionType: types.OptionStock}
}

// Date normalizes a short day-card token like "13Feb" to an ISO date.
// Returns "" when the token does not parse; callers treat that as "date
// unknown", not as an error.
func Date(token string, years YearRule) string {
	m := dayTokenRe.FindStringSubmatch(token)
	if m == nil {
		return ""
	}
	month, ok := monthNum[strings.ToLower(m[2])[:3]]
	if !ok {
		return ""
	}
	year := years.Current
	if dateNextYearMonths[month] {
		year = years.Next
	}
	return fmt.Sprintf("%s-%s-%s", year, month, padDay(m[1]))
}

// CleanNum extracts the first signed decimal-number substring from a cell,
// with grouping commas stripped. Defaults to "0" so malformed cells never
// poison a row.
func CleanNum(text string) string {
	if text == "" {
		return "0"
	}
	if m := numberRe.FindString(strings.ReplaceAll(text, ",", "")); m != "" {
		return m
	}
	return "0"
}

func padDay(day string) string {
	n, err := strconv.Atoi(day)
	if err != nil {
		return day
	}
	return fmt.Sprintf("%02d", n)
}
