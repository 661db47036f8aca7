package domain

// Execution represents one broker fill.
// Corresponds to executions table; produced by ingestion and never mutated.
type Execution struct {
	ExecutionID string // broker trade id
	Symbol      string // contract symbol
	Underlying  string // underlying symbol (options), may be empty
	AssetClass  AssetClass
	Strike      float64 // 0 when not an option
	Expiry      string  // YYYYMMDD, empty when not an option
	Right       string  // "C" | "P" | ""
	Side        string  // "BUY" | "SELL" | "SLD" | ""
	OpenClose   string  // broker open/close indicator, informational
	Quantity    float64 // signed, or positive magnitude with Side
	Price       float64 // fill price per unit
	Commission  float64 // total commission for the fill, treated as a cost
	Multiplier  float64 // contract multiplier, 0 means missing (1.0)
	TradeTime   int64   // Unix timestamp in milliseconds
	Codes       string  // broker notes/codes, e.g. "A", "Ep", "C;Ex"
	Currency    string
	Description string
}

// Execution side constants
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
	SideSold = "SLD"
)
