// Package verification checks that stored closed trades still match a fresh
// replay of the raw journal. Divergence means the derived tables are stale
// (a statement was imported without re-running analyze) or were edited.
package verification

import (
	"context"
	"math"

	"trade-journal-lab/internal/domain"
)

// FloatTolerance is the tolerance for float64 comparisons.
const FloatTolerance = 1e-7

// FieldDivergence represents a mismatch between stored and replayed values.
type FieldDivergence struct {
	Field    string // field name
	Expected any    // stored value
	Actual   any    // replayed value
}

// VerificationResult contains the result of verifying a single trade.
type VerificationResult struct {
	TradeID         string            // verified trade ID
	Match           bool              // true if all fields match
	Divergences     []FieldDivergence // list of divergent fields
	StoredNetPnL    float64
	ReplayedNetPnL  float64
	MissingInReplay bool // stored trade the replay no longer produces
}

// VerificationReport contains results for batch verification.
type VerificationReport struct {
	TotalTrades     int                  // stored trades verified
	MatchedTrades   int                  // trades that matched exactly
	DivergentTrades int                  // trades with divergences or missing from the replay
	UnstoredTrades  []string             // replayed trade IDs absent from storage
	Results         []VerificationResult // individual results, in stored order
}

// Consistent reports whether storage and replay agree completely.
func (r *VerificationReport) Consistent() bool {
	return r.DivergentTrades == 0 && len(r.UnstoredTrades) == 0
}

// Verifier interface for closed trade replay verification.
type Verifier interface {
	// VerifyTrade verifies a single stored trade by ID.
	VerifyTrade(ctx context.Context, tradeID string) (*VerificationResult, error)

	// VerifyAll verifies all stored trades and lists replayed trades that
	// were never stored.
	VerifyAll(ctx context.Context) (*VerificationReport, error)
}

// CompareClosedTrades compares two closed trades and returns divergences.
// Uses FloatTolerance for float64 comparisons.
func CompareClosedTrades(stored, replayed *domain.ClosedTrade) []FieldDivergence {
	var divergences []FieldDivergence

	exact := func(field string, expected, actual any) {
		if expected != actual {
			divergences = append(divergences, FieldDivergence{Field: field, Expected: expected, Actual: actual})
		}
	}
	approx := func(field string, expected, actual float64) {
		if !floatEquals(expected, actual) {
			divergences = append(divergences, FieldDivergence{Field: field, Expected: expected, Actual: actual})
		}
	}

	// Identity
	exact("TradeID", stored.TradeID, replayed.TradeID)
	exact("AssetKey", stored.AssetKey, replayed.AssetKey)
	exact("RootSymbol", stored.RootSymbol, replayed.RootSymbol)
	exact("Direction", stored.Direction, replayed.Direction)

	// Timing
	exact("EntryTime", stored.EntryTime, replayed.EntryTime)
	exact("CloseTime", stored.CloseTime, replayed.CloseTime)

	// Amounts
	approx("Quantity", stored.Quantity, replayed.Quantity)
	approx("EntryPrice", stored.EntryPrice, replayed.EntryPrice)
	approx("ClosePrice", stored.ClosePrice, replayed.ClosePrice)
	approx("Commission", stored.Commission, replayed.Commission)
	approx("GrossPnL", stored.GrossPnL, replayed.GrossPnL)
	approx("NetPnL", stored.NetPnL, replayed.NetPnL)

	// CloseReason must match exactly
	exact("CloseReason", stored.CloseReason, replayed.CloseReason)

	return divergences
}

// floatEquals compares two floats within FloatTolerance.
func floatEquals(a, b float64) bool {
	return math.Abs(a-b) <= FloatTolerance
}
