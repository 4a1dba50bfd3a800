package universe

import (
	"context"
	"fmt"
	"os"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"sensibull-extractor/internal/logger"
)

// FetchInstrumentSymbols pulls the NSE instrument dump through the Kite
// API and returns the trading symbols. Needs only an API key; the dump
// endpoint is not session-bound.
func FetchInstrumentSymbols(ctx context.Context, apiKey string) ([]string, error) {
	kc := kiteconnect.New(apiKey)

	instruments, err := kc.GetInstrumentsByExchange("NSE")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch NSE instruments: %w", err)
	}

	symbols := make([]string, 0, len(instruments))
	for _, inst := range instruments {
		symbols = append(symbols, inst.Tradingsymbol)
	}

	logger.Info(ctx, "Instrument dump fetched", "instruments", len(symbols))
	return symbols, nil
}

// KnownSymbols builds the validation set, preferring the Kite instrument
// dump when KITE_API_KEY is set and falling back to the scraped NSE F&O
// list. Returns nil (validation disabled) when both sources fail.
func KnownSymbols(ctx context.Context, timeout time.Duration) map[string]struct{} {
	if apiKey := os.Getenv("KITE_API_KEY"); apiKey != "" {
		if symbols, err := FetchInstrumentSymbols(ctx, apiKey); err == nil {
			return ToSet(symbols)
		} else {
			logger.Warn(ctx, "Instrument dump unavailable, falling back to F&O list", "error", err)
		}
	}

	symbols, err := FetchFNOList(ctx, timeout)
	if err != nil {
		logger.Warn(ctx, "Symbol validation disabled, no universe source available", "error", err)
		return nil
	}
	return ToSet(symbols)
}
