package extract

import (
	"strings"

	"sensibull-extractor/internal/parse"
	"sensibull-extractor/internal/types"
)

// A data row carries at least name, qty, avg price, last price and P&L.
const minRowCells = 5

// DecodeRows turns raw table cell texts into trade records for one
// resolved day. Header rows and rows with an empty name are skipped, and a
// malformed row never aborts the rest of the table. Date, timestamp and
// page are stamped later by the aggregator.
func DecodeRows(rows [][]string, symbol, dailyPnL string, years parse.YearRule) []types.TradeRecord {
	var trades []types.TradeRecord
	for _, cells := range rows {
		if len(cells) < minRowCells {
			continue
		}
		name := strings.TrimSpace(cells[0])
		if name == "" || strings.EqualFold(name, "Name") {
			continue
		}

		contract := parse.Contract(name, years)
		trades = append(trades, types.TradeRecord{
			Symbol:        symbol,
			OptionType:    contract.OptionType,
			Strike:        contract.Strike,
			Expiry:        contract.Expiry,
			Qty:           parse.CleanNum(cells[1]),
			AvgPrice:      parse.CleanNum(cells[2]),
			LTP:           parse.CleanNum(cells[3]),
			PnL:           parse.CleanNum(cells[4]),
			DailyTotalPnL: dailyPnL,
		})
	}
	return trades
}
