package types

// Option type designators carried on every extracted record.
const (
	OptionCE    = "CE"
	OptionPE    = "PE"
	OptionStock = "STOCK"
)

// SymbolUnknown is the sentinel returned when the resolver cascade is
// exhausted. Callers treat it as retryable, never as a valid symbol.
const SymbolUnknown = "UNKNOWN"

// TradeRecord is one extracted trade row. Field names and json tags follow
// the downstream column contract; numeric values are kept as cleaned
// strings exactly as they appeared on the page.
type TradeRecord struct {
	Date                  string `json:"Date"`
	Symbol                string `json:"Symbol"`
	OptionType            string `json:"Option_Type"`
	Strike                string `json:"Strike"`
	Expiry                string `json:"Expiry"`
	Qty                   string `json:"Qty"`
	AvgPrice              string `json:"Avg_Price"`
	LTP                   string `json:"LTP"`
	PnL                   string `json:"P_L"`
	DailyTotalPnL         string `json:"Daily_Total_PnL"`
	VerificationTimestamp string `json:"Verification_Timestamp"`
	Page                  int    `json:"Page"`
}

// ContractDescriptor is the (option type, strike, expiry) triple parsed out
// of an instrument label. Transient: consumed while decoding rows.
type ContractDescriptor struct {
	OptionType string
	Strike     string
	Expiry     string
}

// DaySummary groups the records of one resolved day-card.
type DaySummary struct {
	Date      string        `json:"date"`
	TotalPnL  string        `json:"totalPnL"`
	Timestamp string        `json:"timestamp"`
	NumTrades int           `json:"numTrades"`
	Trades    []TradeRecord `json:"trades"`
}

// PaginationState tracks the traversal position across report pages.
type PaginationState struct {
	CurrentPage int
	TotalPages  int
	Exhausted   bool
}

// Session is the process-wide traversal context: the verification timestamp
// captured once after the initial load, and the target page list. Read-only
// after creation.
type Session struct {
	Timestamp string
	Pages     []int
}

// Report is the structured companion written next to each page CSV.
type Report struct {
	TotalTrades    int           `json:"totalTrades"`
	TotalDays      int           `json:"totalDays"`
	ExtractedAt    string        `json:"extractedAt"`
	Trades         []TradeRecord `json:"trades"`
	DailySummaries []DaySummary  `json:"dailySummaries"`
}
