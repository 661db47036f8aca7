package memory

import (
	"context"
	"sync"

	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/storage"
)

// ClosedTradeStore is an in-memory implementation of storage.ClosedTradeStore.
type ClosedTradeStore struct {
	mu     sync.RWMutex
	trades []*domain.ClosedTrade
}

// NewClosedTradeStore creates a new in-memory closed trade store.
func NewClosedTradeStore() *ClosedTradeStore {
	return &ClosedTradeStore{}
}

// ReplaceAll replaces the stored trades. Fails without changes on a
// repeated trade_id.
func (s *ClosedTradeStore) ReplaceAll(_ context.Context, trades []*domain.ClosedTrade) error {
	batch := make([]*domain.ClosedTrade, 0, len(trades))
	seen := make(map[string]struct{}, len(trades))

	for _, t := range trades {
		if t == nil || t.TradeID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := seen[t.TradeID]; exists {
			return storage.ErrDuplicateKey
		}
		seen[t.TradeID] = struct{}{}
		copy := *t
		batch = append(batch, &copy)
	}

	s.mu.Lock()
	s.trades = batch
	s.mu.Unlock()
	return nil
}

// GetAll retrieves all trades in stored order.
func (s *ClosedTradeStore) GetAll(_ context.Context) ([]*domain.ClosedTrade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.ClosedTrade, len(s.trades))
	for i, t := range s.trades {
		copy := *t
		result[i] = &copy
	}
	return result, nil
}

var _ storage.ClosedTradeStore = (*ClosedTradeStore)(nil)
