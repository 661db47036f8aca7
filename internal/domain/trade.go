package domain

// Direction is the side of the lot that a closed trade consumed.
type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

// Sign returns +1 for long and -1 for short.
func (d Direction) Sign() float64 {
	if d == DirectionShort {
		return -1
	}
	return 1
}

// CloseReason explains how a position was closed.
type CloseReason string

// Close reasons in resolution priority order, then cash-flow reasons.
const (
	CloseReasonAssigned  CloseReason = "Assigned"
	CloseReasonExercised CloseReason = "Exercised"
	CloseReasonExpired   CloseReason = "Expired"
	CloseReasonTrade     CloseReason = "Trade"

	CloseReasonDividends      CloseReason = "Dividends"
	CloseReasonPaymentInLieu  CloseReason = "PaymentInLieuOfDividends"
	CloseReasonWithholdingTax CloseReason = "WithholdingTax"
)

// IsPassive reports whether the close happened without a manual order
// (assignment, exercise or expiration).
func (r CloseReason) IsPassive() bool {
	switch r {
	case CloseReasonAssigned, CloseReasonExercised, CloseReasonExpired:
		return true
	default:
		return false
	}
}

// IsCashFlow reports whether the reason marks a folded cash transaction.
func (r CloseReason) IsCashFlow() bool {
	switch r {
	case CloseReasonDividends, CloseReasonPaymentInLieu, CloseReasonWithholdingTax:
		return true
	default:
		return false
	}
}

// ClosedTrade is one realized FIFO match between a resident lot and a
// closing execution. Created once, never mutated.
// Corresponds to closed_trades table.
type ClosedTrade struct {
	TradeID    string // deterministic hash
	AssetKey   AssetKey
	RootSymbol string
	Symbol     string

	// Instrument metadata carried for classification
	AssetClass AssetClass
	Right      string
	Strike     float64
	Expiry     string
	Multiplier float64

	Direction  Direction // side of the matched lot
	Quantity   float64   // matched magnitude, always >= 0
	EntryTime  int64     // lot entry timestamp (ms)
	CloseTime  int64     // closing execution timestamp (ms)
	EntryPrice float64
	ClosePrice float64

	Commission  float64 // entry + exit allocation
	GrossPnL    float64
	NetPnL      float64 // GrossPnL - Commission
	CloseReason CloseReason
}

// SignedQuantity returns the quantity signed by the direction of the matched lot.
func (t *ClosedTrade) SignedQuantity() float64 {
	return t.Quantity * t.Direction.Sign()
}

// IsCashFlow reports whether the record is a folded cash transaction.
func (t *ClosedTrade) IsCashFlow() bool {
	return t.CloseReason.IsCashFlow()
}
