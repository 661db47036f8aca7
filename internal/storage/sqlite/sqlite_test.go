package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/storage"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func exec(id string, tradeTime int64) *domain.Execution {
	return &domain.Execution{
		ExecutionID: id,
		Symbol:      "AAPL",
		AssetClass:  domain.AssetClassStock,
		Side:        domain.SideBuy,
		Quantity:    100,
		Price:       150.25,
		Commission:  1,
		Multiplier:  1,
		TradeTime:   tradeTime,
		Currency:    "USD",
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Migrate(context.Background()))
}

func TestExecutionStore_MergeIgnoresDuplicates(t *testing.T) {
	ctx := context.Background()
	store := NewExecutionStore(openTestDB(t))

	n, err := store.Merge(ctx, []*domain.Execution{exec("e2", 2000), exec("e1", 1000)})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	dup := exec("e1", 1000)
	dup.Price = 999
	n, err = store.Merge(ctx, []*domain.Execution{dup, exec("e3", 1000)})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := store.GetByID(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, 150.25, got.Price)

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	// trade time first, then arrival order
	assert.Equal(t, "e1", all[0].ExecutionID)
	assert.Equal(t, "e3", all[1].ExecutionID)
	assert.Equal(t, "e2", all[2].ExecutionID)
	assert.Equal(t, exec("e2", 2000), all[2])
}

func TestExecutionStore_GetByIDNotFound(t *testing.T) {
	store := NewExecutionStore(openTestDB(t))

	_, err := store.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestExecutionStore_InvalidInput(t *testing.T) {
	store := NewExecutionStore(openTestDB(t))

	_, err := store.Merge(context.Background(), []*domain.Execution{{Symbol: "AAPL"}})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestCashTransactionStore_Merge(t *testing.T) {
	ctx := context.Background()
	store := NewCashTransactionStore(openTestDB(t))

	txs := []*domain.CashTransaction{
		{TransactionID: "c2", Type: "Dividends", Symbol: "AAPL", Amount: 24, Date: 2000, Currency: "USD"},
		{TransactionID: "c1", Type: "Withholding Tax", Symbol: "AAPL", Amount: -3.6, Date: 1000, Currency: "USD"},
	}
	n, err := store.Merge(ctx, txs)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = store.Merge(ctx, txs[:1])
	require.NoError(t, err)
	assert.Zero(t, n)

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, txs[1], all[0])
	assert.Equal(t, txs[0], all[1])
}

func TestClosedTradeStore_ReplaceAll(t *testing.T) {
	ctx := context.Background()
	store := NewClosedTradeStore(openTestDB(t))

	trades := []*domain.ClosedTrade{
		{TradeID: "b", AssetKey: "AAPL", RootSymbol: "AAPL", Symbol: "AAPL", AssetClass: domain.AssetClassStock,
			Multiplier: 1, Direction: domain.DirectionLong, Quantity: 100, EntryTime: 1, CloseTime: 2,
			EntryPrice: 10, ClosePrice: 12, Commission: 2, GrossPnL: 200, NetPnL: 198, CloseReason: domain.CloseReasonTrade},
		{TradeID: "a", AssetKey: "AAPL 20240119 150 P", RootSymbol: "AAPL", Symbol: "AAPL  240119P00150000",
			AssetClass: domain.AssetClassOption, Right: "P", Strike: 150, Expiry: "20240119", Multiplier: 100,
			Direction: domain.DirectionShort, Quantity: 1, EntryTime: 1, CloseTime: 3, EntryPrice: 2,
			CloseReason: domain.CloseReasonExpired, GrossPnL: 200, NetPnL: 199, Commission: 1},
	}
	require.NoError(t, store.ReplaceAll(ctx, trades))

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, trades, got)

	require.NoError(t, store.ReplaceAll(ctx, trades[1:]))
	got, err = store.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, trades[1:], got)
}

func TestClosedTradeStore_DuplicateRollsBack(t *testing.T) {
	ctx := context.Background()
	store := NewClosedTradeStore(openTestDB(t))

	require.NoError(t, store.ReplaceAll(ctx, []*domain.ClosedTrade{{TradeID: "keep", Direction: domain.DirectionLong}}))

	err := store.ReplaceAll(ctx, []*domain.ClosedTrade{{TradeID: "x"}, {TradeID: "x"}})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "keep", got[0].TradeID)
}

func TestOpenPositionStore_ReplaceAll(t *testing.T) {
	ctx := context.Background()
	store := NewOpenPositionStore(openTestDB(t))

	positions := []*domain.OpenPosition{
		{AssetKey: "MSFT", RootSymbol: "MSFT", Symbol: "MSFT", AssetClass: domain.AssetClassStock,
			Quantity: 40, AvgPrice: 10, Multiplier: 1, LotCount: 1, OpenedAt: 1000},
		{AssetKey: "AAPL", RootSymbol: "AAPL", Symbol: "AAPL", AssetClass: domain.AssetClassStock,
			Quantity: -5, AvgPrice: 150, Multiplier: 1, LotCount: 2, OpenedAt: 500},
	}
	require.NoError(t, store.ReplaceAll(ctx, positions))

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, positions, got)

	err = store.ReplaceAll(ctx, []*domain.OpenPosition{positions[0], positions[0]})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestSummaryStores_Ordering(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	strategies := NewStrategySummaryStore(db)
	campaigns := NewCampaignSummaryStore(db)

	require.NoError(t, strategies.ReplaceAll(ctx, []*domain.StrategySummary{
		{StrategyID: "b", Date: 100, LegCount: 1, CapitalEst: 1},
		{StrategyID: "c", Date: 200, LegCount: 2, CapitalEst: 1},
		{StrategyID: "a", Date: 100, LegCount: 1, CapitalEst: 1},
	}))
	gotS, err := strategies.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, gotS, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{gotS[0].StrategyID, gotS[1].StrategyID, gotS[2].StrategyID})

	require.NoError(t, campaigns.ReplaceAll(ctx, []*domain.CampaignSummary{
		{CampaignID: "x", EndTime: 100, TradeCount: 1},
		{CampaignID: "y", EndTime: 300, TradeCount: 2},
	}))
	gotC, err := campaigns.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, gotC, 2)
	assert.Equal(t, "y", gotC[0].CampaignID)
	assert.Equal(t, 2, gotC[0].TradeCount)
}

func TestOpen_FilePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")

	db, err := Open(ctx, path)
	require.NoError(t, err)
	_, err = db.Stores().Executions.Merge(ctx, []*domain.Execution{exec("e1", 1000)})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	all, err := db.Stores().Executions.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
