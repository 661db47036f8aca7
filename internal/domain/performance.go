package domain

// Performance is the account-level roll-up of a closed trade stream.
type Performance struct {
	NetPnL         float64 // all rows, cash flows included
	DividendIncome float64 // cash-flow rows only
	Commissions    float64

	// Trade-only statistics (cash-flow rows excluded)
	TradeCount           int
	Wins                 int
	Losses               int
	WinRate              float64 // wins / trade count
	PnLMean              float64
	PnLMedian            float64
	PnLMin               float64
	PnLMax               float64
	MaxDrawdown          float64 // worst peak-to-trough of cumulative net P&L
	MaxConsecutiveLosses int

	FirstClose int64 // Unix ms, 0 when empty
	LastClose  int64
}

// SymbolPnL is net P&L rolled up per root symbol.
type SymbolPnL struct {
	RootSymbol string
	NetPnL     float64
	TradeCount int
}

// EquityPoint is the running net P&L after one closed row.
type EquityPoint struct {
	Time       int64 // close time, Unix ms
	TradeID    string
	NetPnL     float64 // this row
	Cumulative float64 // all rows up to and including this one
}
