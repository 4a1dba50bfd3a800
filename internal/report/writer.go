// Package report is the output boundary: per-page CSV and JSON emission,
// plus the post-hoc symbol repair pass.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"sensibull-extractor/internal/types"
)

// CSVHeaders is the fixed column contract consumed downstream. Order and
// names must not change.
var CSVHeaders = []string{
	"Date", "Symbol", "Option_Type", "Strike", "Expiry",
	"Qty", "Avg_Price", "LTP", "P_L",
	"Daily_Total_PnL", "Verification_Timestamp", "Page",
}

const (
	csvName  = "sensibull_trades.csv"
	jsonName = "sensibull_trades.json"
)

type Writer struct {
	outDir string
}

func NewWriter(outDir string) *Writer {
	return &Writer{outDir: outDir}
}

// WritePage writes one page's CSV and JSON into its own folder. A page
// with no trades produces no files at all, never an empty one.
func (w *Writer) WritePage(pageNum int, trades []types.TradeRecord, summaries []types.DaySummary) (string, error) {
	if len(trades) == 0 {
		return "", nil
	}

	folder := filepath.Join(w.outDir, fmt.Sprintf("page%d", pageNum))
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", err
	}

	csvPath := filepath.Join(folder, csvName)
	if err := writeCSV(csvPath, trades); err != nil {
		return "", err
	}

	jsonPath := filepath.Join(folder, jsonName)
	if err := writeJSON(jsonPath, trades, summaries); err != nil {
		return "", err
	}

	return csvPath, nil
}

func writeCSV(path string, trades []types.TradeRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write(CSVHeaders); err != nil {
		return err
	}
	for _, t := range trades {
		if err := w.Write(recordFields(t)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeJSON(path string, trades []types.TradeRecord, summaries []types.DaySummary) error {
	out := types.Report{
		TotalTrades:    len(trades),
		TotalDays:      len(summaries),
		ExtractedAt:    time.Now().Format(time.RFC3339),
		Trades:         trades,
		DailySummaries: summaries,
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func recordFields(t types.TradeRecord) []string {
	return []string{
		t.Date, t.Symbol, t.OptionType, t.Strike, t.Expiry,
		t.Qty, t.AvgPrice, t.LTP, t.PnL,
		t.DailyTotalPnL, t.VerificationTimestamp, strconv.Itoa(t.Page),
	}
}

// SymbolDistribution counts trades per symbol, most frequent first.
// Reported after each page for operator visibility.
func SymbolDistribution(trades []types.TradeRecord) []string {
	counts := map[string]int{}
	for _, t := range trades {
		counts[t.Symbol]++
	}
	symbols := make([]string, 0, len(counts))
	for sym := range counts {
		symbols = append(symbols, sym)
	}
	sort.Slice(symbols, func(i, j int) bool {
		if counts[symbols[i]] != counts[symbols[j]] {
			return counts[symbols[i]] > counts[symbols[j]]
		}
		return symbols[i] < symbols[j]
	})
	out := make([]string, len(symbols))
	for i, sym := range symbols {
		out[i] = fmt.Sprintf("%s:%d", sym, counts[sym])
	}
	return out
}
