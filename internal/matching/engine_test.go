package matching

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade-journal-lab/internal/domain"
)

const day = int64(24 * 60 * 60 * 1000)

func stock(id, side string, qty, price, commission float64, ts int64) *domain.Execution {
	return &domain.Execution{
		ExecutionID: id,
		Symbol:      "AAPL",
		AssetClass:  domain.AssetClassStock,
		Side:        side,
		Quantity:    qty,
		Price:       price,
		Commission:  commission,
		TradeTime:   ts,
	}
}

func option(id, side string, qty, price float64, right string, strike float64, ts int64, codes string) *domain.Execution {
	return &domain.Execution{
		ExecutionID: id,
		Symbol:      "AAPL  240119" + right,
		Underlying:  "AAPL",
		AssetClass:  domain.AssetClassOption,
		Strike:      strike,
		Expiry:      "20240119",
		Right:       right,
		Side:        side,
		Quantity:    qty,
		Price:       price,
		Multiplier:  100,
		TradeTime:   ts,
		Codes:       codes,
	}
}

func TestMatch_RoundTrip(t *testing.T) {
	execs := []*domain.Execution{
		stock("b1", domain.SideBuy, 100, 10, 1, 1*day),
		stock("s1", domain.SideSell, 100, 12, -1, 2*day),
	}

	res := NewEngine(nil).Match(execs)

	require.Len(t, res.Closed, 1)
	ct := res.Closed[0]
	assert.Equal(t, domain.AssetKey("AAPL"), ct.AssetKey)
	assert.Equal(t, domain.DirectionLong, ct.Direction)
	assert.InDelta(t, 100, ct.Quantity, 1e-9)
	assert.InDelta(t, 200, ct.GrossPnL, 1e-9)
	assert.InDelta(t, 2, ct.Commission, 1e-9)
	assert.InDelta(t, 198, ct.NetPnL, 1e-9)
	assert.Equal(t, 1*day, ct.EntryTime)
	assert.Equal(t, 2*day, ct.CloseTime)
	assert.Equal(t, domain.CloseReasonTrade, ct.CloseReason)
	assert.Len(t, ct.TradeID, 64)

	assert.Empty(t, res.Open)
	assert.Empty(t, res.Skipped)
}

func TestMatch_PartialClose(t *testing.T) {
	execs := []*domain.Execution{
		stock("b1", domain.SideBuy, 100, 10, 1, 1*day),
		stock("s1", domain.SideSold, 60, 12, 1, 2*day),
	}

	res := NewEngine(nil).Match(execs)

	require.Len(t, res.Closed, 1)
	ct := res.Closed[0]
	assert.InDelta(t, 60, ct.Quantity, 1e-9)
	assert.InDelta(t, 120, ct.GrossPnL, 1e-9)
	// 60 units of entry commission at 0.01 plus the whole exit commission
	assert.InDelta(t, 1.6, ct.Commission, 1e-9)
	assert.InDelta(t, 118.4, ct.NetPnL, 1e-9)

	require.Len(t, res.Open, 1)
	pos := res.Open[0]
	assert.Equal(t, domain.AssetKey("AAPL"), pos.AssetKey)
	assert.InDelta(t, 40, pos.Quantity, 1e-9)
	assert.InDelta(t, 10, pos.AvgPrice, 1e-9)
	assert.Equal(t, 1, pos.LotCount)
	assert.Equal(t, 1*day, pos.OpenedAt)
}

func TestMatch_FIFOOrder(t *testing.T) {
	execs := []*domain.Execution{
		stock("b1", domain.SideBuy, 10, 1, 0, 1*day),
		stock("b2", domain.SideBuy, 10, 2, 0, 2*day),
		stock("s1", domain.SideSell, 15, 3, 0, 3*day),
	}

	res := NewEngine(nil).Match(execs)

	require.Len(t, res.Closed, 2)
	assert.InDelta(t, 10, res.Closed[0].Quantity, 1e-9)
	assert.InDelta(t, 1, res.Closed[0].EntryPrice, 1e-9)
	assert.InDelta(t, 20, res.Closed[0].GrossPnL, 1e-9)
	assert.InDelta(t, 5, res.Closed[1].Quantity, 1e-9)
	assert.InDelta(t, 2, res.Closed[1].EntryPrice, 1e-9)
	assert.InDelta(t, 5, res.Closed[1].GrossPnL, 1e-9)
	assert.NotEqual(t, res.Closed[0].TradeID, res.Closed[1].TradeID)

	require.Len(t, res.Open, 1)
	assert.InDelta(t, 5, res.Open[0].Quantity, 1e-9)
	assert.InDelta(t, 2, res.Open[0].AvgPrice, 1e-9)
	assert.Equal(t, 2*day, res.Open[0].OpenedAt)
}

func TestMatch_ReversalOpensFlippedLot(t *testing.T) {
	execs := []*domain.Execution{
		stock("b1", domain.SideBuy, 10, 5, 0, 1*day),
		stock("s1", domain.SideSell, 15, 6, 0, 2*day),
	}

	res := NewEngine(nil).Match(execs)

	require.Len(t, res.Closed, 1)
	assert.InDelta(t, 10, res.Closed[0].Quantity, 1e-9)
	require.Len(t, res.Open, 1)
	assert.InDelta(t, -5, res.Open[0].Quantity, 1e-9)
	assert.InDelta(t, 6, res.Open[0].AvgPrice, 1e-9)

	// Covering the short realizes from the short side
	more := NewEngine(nil).MatchInto(res.Inventory, []*domain.Execution{
		stock("b2", domain.SideBuy, 5, 4, 0, 3*day),
	})
	require.Len(t, more.Closed, 1)
	assert.Equal(t, domain.DirectionShort, more.Closed[0].Direction)
	assert.InDelta(t, 10, more.Closed[0].GrossPnL, 1e-9)
	assert.Empty(t, more.Open)
}

func TestMatch_SignedQuantityWithoutSide(t *testing.T) {
	execs := []*domain.Execution{
		stock("b1", "", 10, 5, 0, 1*day),
		stock("s1", "", -10, 7, 0, 2*day),
	}

	res := NewEngine(nil).Match(execs)

	require.Len(t, res.Closed, 1)
	assert.InDelta(t, 20, res.Closed[0].GrossPnL, 1e-9)
	assert.Empty(t, res.Open)
}

func TestMatch_ShortOptionExpires(t *testing.T) {
	execs := []*domain.Execution{
		option("o1", domain.SideSell, 1, 2, "P", 150, 1*day, "O"),
		option("c1", domain.SideBuy, 1, 0, "P", 150, 10*day, "C;Ep"),
	}

	res := NewEngine(nil).Match(execs)

	require.Len(t, res.Closed, 1)
	ct := res.Closed[0]
	assert.Equal(t, domain.AssetKey("AAPL 20240119 150 P"), ct.AssetKey)
	assert.Equal(t, "AAPL", ct.RootSymbol)
	assert.Equal(t, domain.DirectionShort, ct.Direction)
	assert.InDelta(t, 200, ct.GrossPnL, 1e-9)
	assert.InDelta(t, 100, ct.Multiplier, 1e-9)
	assert.Equal(t, domain.CloseReasonExpired, ct.CloseReason)
}

func TestMatch_AssignedOptionAndStock(t *testing.T) {
	execs := []*domain.Execution{
		option("o1", domain.SideSell, 1, 3, "P", 150, 1*day, ""),
		option("c1", domain.SideBuy, 1, 0, "P", 150, 5*day, "A"),
		stock("s1", domain.SideBuy, 100, 150, 0, 5*day),
	}

	res := NewEngine(nil).Match(execs)

	require.Len(t, res.Closed, 1)
	assert.Equal(t, domain.CloseReasonAssigned, res.Closed[0].CloseReason)
	require.Len(t, res.Open, 1)
	assert.Equal(t, domain.AssetKey("AAPL"), res.Open[0].AssetKey)
	assert.InDelta(t, 100, res.Open[0].Quantity, 1e-9)
}

func TestMatch_SortsByTradeTime(t *testing.T) {
	ordered := []*domain.Execution{
		stock("b1", domain.SideBuy, 10, 1, 0, 1*day),
		stock("b2", domain.SideBuy, 10, 2, 0, 2*day),
		stock("s1", domain.SideSell, 20, 3, 0, 3*day),
	}
	shuffled := []*domain.Execution{ordered[2], ordered[0], ordered[1]}

	want := NewEngine(nil).Match(ordered)
	got := NewEngine(nil).Match(shuffled)

	assert.Equal(t, want.Closed, got.Closed)
	// Input slice untouched
	assert.Equal(t, "s1", shuffled[0].ExecutionID)
}

func TestMatch_TiesKeepArrivalOrder(t *testing.T) {
	execs := []*domain.Execution{
		stock("b1", domain.SideBuy, 10, 1, 0, 1*day),
		stock("b2", domain.SideBuy, 10, 2, 0, 1*day),
		stock("s1", domain.SideSell, 10, 3, 0, 2*day),
	}

	res := NewEngine(nil).Match(execs)

	require.Len(t, res.Closed, 1)
	assert.InDelta(t, 1, res.Closed[0].EntryPrice, 1e-9)
}

func TestMatch_Deterministic(t *testing.T) {
	execs := mixedExecutions()

	first := NewEngine(nil).Match(execs)
	second := NewEngine(nil).Match(execs)

	require.Equal(t, len(first.Closed), len(second.Closed))
	for i := range first.Closed {
		assert.Equal(t, first.Closed[i].TradeID, second.Closed[i].TradeID)
	}
	assert.Equal(t, first.Open, second.Open)
}

func TestMatch_QuantityConservation(t *testing.T) {
	execs := mixedExecutions()

	res := NewEngine(nil).Match(execs)

	net := make(map[domain.AssetKey]float64)
	for _, n := range mustNormalize(t, execs) {
		net[n.key] += n.quantity
	}
	open := make(map[domain.AssetKey]float64)
	for _, p := range res.Open {
		open[p.AssetKey] = p.Quantity
	}
	for key, want := range net {
		assert.InDelta(t, want, open[key], 1e-6, "key %s", key)
	}

	for _, ct := range res.Closed {
		assert.GreaterOrEqual(t, ct.Quantity, 0.0)
		assert.GreaterOrEqual(t, ct.Commission, 0.0)
		assert.InDelta(t, ct.GrossPnL-ct.Commission, ct.NetPnL, 1e-9)
	}
}

func TestMatch_CommissionIsAlwaysACost(t *testing.T) {
	positive := NewEngine(nil).Match([]*domain.Execution{
		stock("b1", domain.SideBuy, 10, 10, 1, 1*day),
		stock("s1", domain.SideSell, 10, 10, 1, 2*day),
	})
	negative := NewEngine(nil).Match([]*domain.Execution{
		stock("b1", domain.SideBuy, 10, 10, -1, 1*day),
		stock("s1", domain.SideSell, 10, 10, -1, 2*day),
	})

	require.Len(t, positive.Closed, 1)
	require.Len(t, negative.Closed, 1)
	assert.InDelta(t, -2, positive.Closed[0].NetPnL, 1e-9)
	assert.InDelta(t, -2, negative.Closed[0].NetPnL, 1e-9)
}

func TestMatch_SkipsMalformedRows(t *testing.T) {
	execs := []*domain.Execution{
		nil,
		{ExecutionID: "no-symbol", Quantity: 1, Price: 1, TradeTime: day},
		stock("zero", domain.SideBuy, 0, 1, 0, day),
		stock("nan-qty", domain.SideBuy, math.NaN(), 1, 0, day),
		stock("nan-price", domain.SideBuy, 1, math.NaN(), 0, day),
		stock("no-time", domain.SideBuy, 1, 1, 0, 0),
		stock("ok", domain.SideBuy, 1, 1, 0, day),
	}

	res := NewEngine(nil).Match(execs)

	require.Len(t, res.Skipped, 6)
	assert.Equal(t, SkippedRow{Index: 0, Reason: SkipNilExecution}, res.Skipped[0])
	assert.Equal(t, SkipMissingSymbol, res.Skipped[1].Reason)
	assert.Equal(t, SkipZeroQuantity, res.Skipped[2].Reason)
	assert.Equal(t, SkipInvalidQuantity, res.Skipped[3].Reason)
	assert.Equal(t, SkipInvalidPrice, res.Skipped[4].Reason)
	assert.Equal(t, "no-time", res.Skipped[5].ExecutionID)
	assert.Equal(t, SkipMissingTimestamp, res.Skipped[5].Reason)

	require.Len(t, res.Open, 1)
	assert.InDelta(t, 1, res.Open[0].Quantity, 1e-9)
}

func TestMatch_NegativePriceRoundTrip(t *testing.T) {
	spread := func(id, side string, price float64, ts int64) *domain.Execution {
		return &domain.Execution{
			ExecutionID: id,
			Symbol:      "CLZ5-CLF6",
			AssetClass:  domain.AssetClassFuture,
			Side:        side,
			Quantity:    1,
			Price:       price,
			Multiplier:  1000,
			TradeTime:   ts,
		}
	}

	res := NewEngine(nil).Match([]*domain.Execution{
		spread("1", domain.SideBuy, -0.25, 1*day),
		spread("2", domain.SideSell, 0.10, 2*day),
	})

	assert.Empty(t, res.Skipped)
	assert.Empty(t, res.Open)
	require.Len(t, res.Closed, 1)
	ct := res.Closed[0]
	assert.Equal(t, domain.DirectionLong, ct.Direction)
	assert.InDelta(t, -0.25, ct.EntryPrice, 1e-9)
	assert.InDelta(t, 350, ct.GrossPnL, 1e-9)
	assert.Equal(t, domain.CloseReasonTrade, ct.CloseReason)
}

func TestMatch_MissingMultiplierDefaultsToOne(t *testing.T) {
	execs := []*domain.Execution{
		stock("b1", domain.SideBuy, 1, 10, 0, 1*day),
		stock("s1", domain.SideSell, 1, 11, 0, 2*day),
	}

	res := NewEngine(nil).Match(execs)

	require.Len(t, res.Closed, 1)
	assert.InDelta(t, 1, res.Closed[0].Multiplier, 1e-9)
	assert.InDelta(t, 1, res.Closed[0].GrossPnL, 1e-9)
}

func TestMatch_FlatWithinEpsilonOmitted(t *testing.T) {
	execs := []*domain.Execution{
		stock("b1", domain.SideBuy, 1, 10, 0, 1*day),
		stock("s1", domain.SideSell, 1-1e-7, 11, 0, 2*day),
	}

	res := NewEngine(nil).Match(execs)

	assert.Empty(t, res.Open)
	assert.Equal(t, []domain.AssetKey{"AAPL"}, res.Inventory.Keys())
}

func TestMatchParallel_EqualsSequential(t *testing.T) {
	execs := mixedExecutions()

	want := NewEngine(nil).Match(execs)

	for _, workers := range []int{0, 1, 3} {
		got, err := NewEngine(nil).MatchParallel(context.Background(), execs, workers)
		require.NoError(t, err)
		assert.Equal(t, want.Closed, got.Closed, "workers=%d", workers)
		assert.Equal(t, want.Open, got.Open, "workers=%d", workers)
		assert.Equal(t, want.Skipped, got.Skipped, "workers=%d", workers)
		assert.Equal(t, want.Inventory.Keys(), got.Inventory.Keys(), "workers=%d", workers)
	}
}

func TestMatchParallel_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := MatchParallel(ctx, mixedExecutions(), 2)
	require.ErrorIs(t, err, context.Canceled)
}

// mixedExecutions interleaves stock, two option keys and a flip.
func mixedExecutions() []*domain.Execution {
	msft := func(id, side string, qty, price float64, ts int64) *domain.Execution {
		e := stock(id, side, qty, price, 1, ts)
		e.Symbol = "MSFT"
		return e
	}
	return []*domain.Execution{
		stock("a1", domain.SideBuy, 100, 10, 1, 1*day),
		option("p1", domain.SideSell, 2, 3, "P", 140, 1*day, ""),
		msft("m1", domain.SideBuy, 50, 300, 2*day),
		stock("a2", domain.SideBuy, 50, 11, 1, 2*day),
		option("c1", domain.SideSell, 1, 1.5, "C", 160, 3*day, ""),
		stock("a3", domain.SideSell, 120, 12, 1, 4*day),
		msft("m2", domain.SideSell, 80, 310, 5*day),
		option("p2", domain.SideBuy, 1, 1, "P", 140, 6*day, ""),
		option("c2", domain.SideBuy, 1, 0, "C", 160, 7*day, "Ep"),
		stock("a4", domain.SideSell, 40, 9, 1, 8*day),
		msft("m3", domain.SideBuy, 30, 305, 9*day),
		option("p3", domain.SideBuy, 1, 0, "P", 140, 10*day, "A"),
	}
}

func mustNormalize(t *testing.T, execs []*domain.Execution) []*normalized {
	t.Helper()
	var out []*normalized
	for i, e := range execs {
		n, reason := normalize(i, e)
		require.Empty(t, reason)
		out = append(out, n)
	}
	return out
}
