package extract

import (
	"sensibull-extractor/internal/types"
)

// SummarizeDay stamps the decoded rows with the day's identity and folds
// them into a DaySummary. A day with no decodable rows still contributes
// exactly one placeholder STOCK record carrying the day's aggregate P&L,
// so every resolved day emits at least one record.
func SummarizeDay(date, symbol, dailyPnL string, decoded []types.TradeRecord, session types.Session, pageNum int) ([]types.TradeRecord, types.DaySummary) {
	trades := make([]types.TradeRecord, len(decoded))
	copy(trades, decoded)
	for i := range trades {
		trades[i].Date = date
		trades[i].VerificationTimestamp = session.Timestamp
		trades[i].Page = pageNum
	}

	if len(trades) == 0 {
		trades = append(trades, types.TradeRecord{
			Date:                  date,
			Symbol:                symbol,
			OptionType:            types.OptionStock,
			Qty:                   "0",
			AvgPrice:              "0.00",
			PnL:                   dailyPnL,
			DailyTotalPnL:         dailyPnL,
			VerificationTimestamp: session.Timestamp,
			Page:                  pageNum,
		})
	}

	return trades, types.DaySummary{
		Date:      date,
		TotalPnL:  dailyPnL,
		Timestamp: session.Timestamp,
		NumTrades: len(trades),
		Trades:    trades,
	}
}
