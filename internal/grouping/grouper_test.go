package grouping

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade-journal-lab/internal/domain"
)

const sec = int64(1000)

func leg(id, root string, entry int64) *domain.ClosedTrade {
	return &domain.ClosedTrade{
		TradeID:     id,
		RootSymbol:  root,
		AssetClass:  domain.AssetClassOption,
		Expiry:      "20240119",
		Right:       "C",
		EntryTime:   entry,
		CloseTime:   entry + 3600*sec,
		CloseReason: domain.CloseReasonTrade,
	}
}

func optLeg(right, expiry string) *domain.ClosedTrade {
	return &domain.ClosedTrade{AssetClass: domain.AssetClassOption, Right: right, Expiry: expiry}
}

func TestGroup_ClustersByRootAndGap(t *testing.T) {
	trades := []*domain.ClosedTrade{
		leg("b", "SPY", 1000*sec),
		leg("a", "AAPL", 1000*sec),
		leg("c", "AAPL", 1005*sec),
		leg("d", "AAPL", 1014*sec), // 9s after c, chained
		leg("e", "AAPL", 1030*sec), // 16s gap
	}

	strategies := NewGrouper().Group(trades)

	require.Len(t, strategies, 3)
	assert.Equal(t, "AAPL", strategies[0].RootSymbol)
	assert.Len(t, strategies[0].Legs, 3)
	assert.Equal(t, domain.StrategyTypeButterfly, strategies[0].StrategyType)
	assert.Equal(t, "AAPL", strategies[1].RootSymbol)
	assert.Equal(t, domain.StrategyTypeSingle, strategies[1].StrategyType)
	assert.Equal(t, "SPY", strategies[2].RootSymbol)
}

func TestGroup_GapIsInclusive(t *testing.T) {
	trades := []*domain.ClosedTrade{
		leg("a", "AAPL", 0),
		leg("b", "AAPL", 10*sec),
	}

	strategies := NewGrouper().Group(trades)
	require.Len(t, strategies, 1)

	strategies = NewGrouper(WithGap(5 * time.Second)).Group(trades)
	require.Len(t, strategies, 2)
}

func TestGroup_DeterministicIDs(t *testing.T) {
	trades := []*domain.ClosedTrade{
		leg("a", "AAPL", 0),
		leg("b", "AAPL", 2*sec),
		leg("c", "MSFT", 0),
	}

	first := NewGrouper().Group(trades)
	second := NewGrouper().Group([]*domain.ClosedTrade{trades[2], trades[1], trades[0]})

	require.Len(t, first, 2)
	require.Len(t, second, 2)
	assert.Equal(t, first[0].StrategyID, second[0].StrategyID)
	assert.Equal(t, first[1].StrategyID, second[1].StrategyID)
	assert.NotEqual(t, first[0].StrategyID, first[1].StrategyID)
}

func TestGroup_IgnoresCashFlows(t *testing.T) {
	trades := []*domain.ClosedTrade{
		leg("a", "AAPL", 0),
		{TradeID: "div", RootSymbol: "AAPL", EntryTime: 1 * sec, CloseReason: domain.CloseReasonDividends},
		nil,
	}

	strategies := NewGrouper().Group(trades)

	require.Len(t, strategies, 1)
	assert.Len(t, strategies[0].Legs, 1)
}

func TestGroup_Empty(t *testing.T) {
	assert.Empty(t, NewGrouper().Group(nil))
}

func TestClassify(t *testing.T) {
	stockLeg := &domain.ClosedTrade{AssetClass: domain.AssetClassStock}

	tests := []struct {
		name string
		legs []*domain.ClosedTrade
		want string
	}{
		{"single", []*domain.ClosedTrade{optLeg("C", "20240119")}, domain.StrategyTypeSingle},
		{"vertical", []*domain.ClosedTrade{optLeg("C", "20240119"), optLeg("C", "20240119")}, domain.StrategyTypeVerticalSpread},
		{"straddle", []*domain.ClosedTrade{optLeg("C", "20240119"), optLeg("P", "20240119")}, domain.StrategyTypeStraddle},
		{"calendar", []*domain.ClosedTrade{optLeg("C", "20240119"), optLeg("C", "20240216")}, domain.StrategyTypeCalendar},
		{"butterfly", []*domain.ClosedTrade{optLeg("C", "20240119"), optLeg("C", "20240119"), optLeg("C", "20240119")}, domain.StrategyTypeButterfly},
		{"iron condor", []*domain.ClosedTrade{optLeg("C", "20240119"), optLeg("C", "20240119"), optLeg("P", "20240119"), optLeg("P", "20240119")}, domain.StrategyTypeIronCondor},
		{"four legs across expiries", []*domain.ClosedTrade{optLeg("C", "20240119"), optLeg("C", "20240216"), optLeg("P", "20240119"), optLeg("P", "20240119")}, "Custom 4-Leg"},
		{"five legs", []*domain.ClosedTrade{optLeg("C", "1"), optLeg("C", "1"), optLeg("C", "1"), optLeg("C", "1"), optLeg("C", "1")}, "Custom 5-Leg"},
		{"covered stock", []*domain.ClosedTrade{stockLeg, optLeg("C", "20240119")}, domain.StrategyTypeCoveredStock},
		{"stock only", []*domain.ClosedTrade{stockLeg, stockLeg}, "Custom 2-Leg"},
		{"missing asset class", []*domain.ClosedTrade{optLeg("C", "20240119"), {Right: "P"}}, domain.StrategyTypeUnknownMultiLeg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.legs))
		})
	}
}

func BenchmarkGroup(b *testing.B) {
	trades := make([]*domain.ClosedTrade, 0, 1000)
	for i := 0; i < 1000; i++ {
		trades = append(trades, leg(fmt.Sprintf("t%d", i), fmt.Sprintf("R%d", i%20), int64(i)*7*sec))
	}
	g := NewGrouper()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.Group(trades)
	}
}
