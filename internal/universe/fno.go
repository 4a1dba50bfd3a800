// Package universe fetches the tradable F&O symbol universe used to
// validate repaired symbols. Validation is advisory: extraction and repair
// never block on it.
package universe

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"sensibull-extractor/internal/logger"
)

const (
	nseHome    = "https://www.nseindia.com"
	nseFNOList = "https://www.nseindia.com/api/master-derivative"

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// FetchFNOList scrapes the NSE derivative master list. The API rejects
// cookie-less requests, so the homepage is visited first to warm up the
// session.
func FetchFNOList(ctx context.Context, timeout time.Duration) ([]string, error) {
	c := colly.NewCollector(
		colly.AllowedDomains("www.nseindia.com"),
	)
	c.SetRequestTimeout(timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", userAgent)
		r.Headers.Set("Accept", "application/json")
	})

	var symbols []string
	var parseErr error
	c.OnResponse(func(r *colly.Response) {
		if !strings.HasSuffix(r.Request.URL.Path, "master-derivative") {
			return
		}
		symbols, parseErr = decodeSymbolList(r.Body)
	})

	c.OnError(func(r *colly.Response, err error) {
		logger.ErrorWithErr(ctx, "F&O list fetch error", err, "url", r.Request.URL.String())
	})

	// Cookie warm-up, then the actual list.
	if err := c.Visit(nseHome); err != nil {
		return nil, fmt.Errorf("failed to warm up NSE session: %w", err)
	}
	if err := c.Visit(nseFNOList); err != nil {
		return nil, fmt.Errorf("failed to fetch F&O list: %w", err)
	}
	c.Wait()

	if parseErr != nil {
		return nil, parseErr
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("F&O list response contained no symbols")
	}

	logger.Info(ctx, "F&O universe fetched", "symbols", len(symbols))
	return symbols, nil
}

// decodeSymbolList accepts both shapes the endpoint has served: a plain
// string array and an object array with a "symbol" field.
func decodeSymbolList(body []byte) ([]string, error) {
	var raw []any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode F&O list: %w", err)
	}

	var symbols []string
	for _, entry := range raw {
		switch v := entry.(type) {
		case string:
			symbols = append(symbols, strings.ToUpper(strings.TrimSpace(v)))
		case map[string]any:
			if sym, ok := v["symbol"].(string); ok {
				symbols = append(symbols, strings.ToUpper(strings.TrimSpace(sym)))
			}
		}
	}
	return symbols, nil
}

// ToSet builds the lookup set used by the repair pass.
func ToSet(symbols []string) map[string]struct{} {
	set := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		set[s] = struct{}{}
	}
	return set
}
