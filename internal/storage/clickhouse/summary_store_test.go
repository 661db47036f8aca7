package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/storage"
)

func TestStrategySummaryStore_ReplaceAll(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewStrategySummaryStore(conn)

	summaries := []*domain.StrategySummary{
		{
			StrategyID: "s-old", RootSymbol: "AAPL", StrategyType: domain.StrategyTypeVerticalSpread,
			Date: 1000, EntryTime: 500, LegCount: 2, NetPnL: 60, Commission: 2.6,
			CloseReasons: "Expired, Trade", DurationDays: 1, CapitalEst: 15500, ROIPct: 0.387, AnnualizedPct: 141.3,
		},
		{
			StrategyID: "s-new", RootSymbol: "MSFT", StrategyType: domain.StrategyTypeSingle,
			Date: 9000, EntryTime: 8000, LegCount: 1, NetPnL: -10, Commission: 1,
			CloseReasons: "Trade", DurationDays: 1, CapitalEst: 3000, ROIPct: -0.33, AnnualizedPct: -121.6,
		},
	}
	require.NoError(t, store.ReplaceAll(ctx, summaries))

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, summaries[1], got[0])
	assert.Equal(t, summaries[0], got[1])

	require.NoError(t, store.ReplaceAll(ctx, summaries[:1]))
	got, err = store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "s-old", got[0].StrategyID)
}

func TestStrategySummaryStore_DuplicateKeepsTable(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewStrategySummaryStore(conn)

	require.NoError(t, store.ReplaceAll(ctx, []*domain.StrategySummary{{StrategyID: "keep", LegCount: 1}}))

	err := store.ReplaceAll(ctx, []*domain.StrategySummary{{StrategyID: "x"}, {StrategyID: "x"}})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "keep", got[0].StrategyID)
}

func TestCampaignSummaryStore_ReplaceAll(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewCampaignSummaryStore(conn)

	summaries := []*domain.CampaignSummary{
		{CampaignID: "c1", RootSymbol: "XYZ", StartTime: 0, EndTime: 5000, DurationDays: 73, TradeCount: 2,
			NetPnL: 350, Commission: 3, CapitalEst: 10000, ROIPct: 3.5, AnnualizedPct: 17.5},
		{CampaignID: "c2", RootSymbol: "ABC", StartTime: 100, EndTime: 9000, DurationDays: 1, TradeCount: 1,
			NetPnL: 5, Commission: 1, CapitalEst: 100, ROIPct: 5, AnnualizedPct: 1825},
	}
	require.NoError(t, store.ReplaceAll(ctx, summaries))

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, summaries[1], got[0])
	assert.Equal(t, summaries[0], got[1])

	require.NoError(t, store.ReplaceAll(ctx, nil))
	got, err = store.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}
