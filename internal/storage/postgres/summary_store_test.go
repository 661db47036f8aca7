package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/storage"
)

func TestStrategySummaryStore_ReplaceAllOrdersByDate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewStrategySummaryStore(pool)

	require.NoError(t, store.ReplaceAll(ctx, []*domain.StrategySummary{
		{StrategyID: "b", RootSymbol: "AAPL", StrategyType: domain.StrategyTypeSingle, Date: 1000, LegCount: 1, NetPnL: 10},
		{StrategyID: "a", RootSymbol: "SPY", StrategyType: domain.StrategyTypeVerticalSpread, Date: 1000, LegCount: 2, NetPnL: -5},
		{StrategyID: "c", RootSymbol: "MSFT", StrategyType: domain.StrategyTypeSingle, Date: 2000, LegCount: 1},
	}))

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "c", got[0].StrategyID)
	assert.Equal(t, "a", got[1].StrategyID)
	assert.Equal(t, 2, got[1].LegCount)
	assert.Equal(t, "b", got[2].StrategyID)

	// Replacing with an empty set clears the table
	require.NoError(t, store.ReplaceAll(ctx, nil))
	got, err = store.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCampaignSummaryStore_DuplicateRollsBack(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewCampaignSummaryStore(pool)

	first := []*domain.CampaignSummary{{CampaignID: "c1", RootSymbol: "XYZ", EndTime: 10, TradeCount: 3}}
	require.NoError(t, store.ReplaceAll(ctx, first))

	err := store.ReplaceAll(ctx, []*domain.CampaignSummary{
		{CampaignID: "c2", RootSymbol: "XYZ"},
		{CampaignID: "c2", RootSymbol: "XYZ"},
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c1", got[0].CampaignID)
	assert.Equal(t, 3, got[0].TradeCount)
}

func TestSummaryStores_InvalidInput(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	err := NewStrategySummaryStore(pool).ReplaceAll(ctx, []*domain.StrategySummary{nil})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	err = NewCampaignSummaryStore(pool).ReplaceAll(ctx, []*domain.CampaignSummary{{}})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
