package memory

import (
	"context"
	"errors"
	"testing"

	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/storage"
)

func TestClosedTradeStore_ReplaceAll(t *testing.T) {
	store := NewClosedTradeStore()
	ctx := context.Background()

	first := []*domain.ClosedTrade{
		{TradeID: "t2", CloseTime: 2000},
		{TradeID: "t1", CloseTime: 1000},
	}
	if err := store.ReplaceAll(ctx, first); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}

	all, _ := store.GetAll(ctx)
	if len(all) != 2 || all[0].TradeID != "t2" {
		t.Errorf("Expected stored order preserved, got %+v", all)
	}

	if err := store.ReplaceAll(ctx, []*domain.ClosedTrade{{TradeID: "t3"}}); err != nil {
		t.Fatalf("Second ReplaceAll failed: %v", err)
	}
	all, _ = store.GetAll(ctx)
	if len(all) != 1 || all[0].TradeID != "t3" {
		t.Errorf("Expected replacement, got %+v", all)
	}
}

func TestClosedTradeStore_DuplicateKeepsPreviousSet(t *testing.T) {
	store := NewClosedTradeStore()
	ctx := context.Background()

	_ = store.ReplaceAll(ctx, []*domain.ClosedTrade{{TradeID: "keep"}})

	err := store.ReplaceAll(ctx, []*domain.ClosedTrade{{TradeID: "dup"}, {TradeID: "dup"}})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	all, _ := store.GetAll(ctx)
	if len(all) != 1 || all[0].TradeID != "keep" {
		t.Errorf("Failed replacement changed contents: %+v", all)
	}
}

func TestOpenPositionStore_ReplaceAll(t *testing.T) {
	store := NewOpenPositionStore()
	ctx := context.Background()

	err := store.ReplaceAll(ctx, []*domain.OpenPosition{
		{AssetKey: "AAPL", Quantity: 40},
		{AssetKey: "AAPL 20240119 150 C", Quantity: -1},
	})
	if err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}

	all, _ := store.GetAll(ctx)
	if len(all) != 2 || all[1].Quantity != -1 {
		t.Errorf("Unexpected contents: %+v", all)
	}

	err = store.ReplaceAll(ctx, []*domain.OpenPosition{{AssetKey: "X"}, {AssetKey: "X"}})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	err = store.ReplaceAll(ctx, []*domain.OpenPosition{{}})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestStrategySummaryStore_Ordering(t *testing.T) {
	store := NewStrategySummaryStore()
	ctx := context.Background()

	err := store.ReplaceAll(ctx, []*domain.StrategySummary{
		{StrategyID: "b", Date: 1000},
		{StrategyID: "c", Date: 2000},
		{StrategyID: "a", Date: 1000},
	})
	if err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}

	all, _ := store.GetAll(ctx)
	expected := []string{"c", "a", "b"}
	for i, id := range expected {
		if all[i].StrategyID != id {
			t.Errorf("Index %d: got %s, want %s", i, all[i].StrategyID, id)
		}
	}
}

func TestCampaignSummaryStore_Ordering(t *testing.T) {
	store := NewCampaignSummaryStore()
	ctx := context.Background()

	err := store.ReplaceAll(ctx, []*domain.CampaignSummary{
		{CampaignID: "old", EndTime: 1000},
		{CampaignID: "new", EndTime: 5000},
	})
	if err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}

	all, _ := store.GetAll(ctx)
	if all[0].CampaignID != "new" || all[1].CampaignID != "old" {
		t.Errorf("Unexpected order: %s, %s", all[0].CampaignID, all[1].CampaignID)
	}

	err = store.ReplaceAll(ctx, []*domain.CampaignSummary{{CampaignID: "x"}, {CampaignID: "x"}})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}
