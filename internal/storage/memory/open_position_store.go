package memory

import (
	"context"
	"sync"

	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/storage"
)

// OpenPositionStore is an in-memory implementation of storage.OpenPositionStore.
type OpenPositionStore struct {
	mu        sync.RWMutex
	positions []*domain.OpenPosition
}

// NewOpenPositionStore creates a new in-memory open position store.
func NewOpenPositionStore() *OpenPositionStore {
	return &OpenPositionStore{}
}

// ReplaceAll replaces the stored positions. Fails without changes on a
// repeated asset_key.
func (s *OpenPositionStore) ReplaceAll(_ context.Context, positions []*domain.OpenPosition) error {
	batch := make([]*domain.OpenPosition, 0, len(positions))
	seen := make(map[domain.AssetKey]struct{}, len(positions))

	for _, p := range positions {
		if p == nil || p.AssetKey == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := seen[p.AssetKey]; exists {
			return storage.ErrDuplicateKey
		}
		seen[p.AssetKey] = struct{}{}
		copy := *p
		batch = append(batch, &copy)
	}

	s.mu.Lock()
	s.positions = batch
	s.mu.Unlock()
	return nil
}

// GetAll retrieves all positions in stored order.
func (s *OpenPositionStore) GetAll(_ context.Context) ([]*domain.OpenPosition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.OpenPosition, len(s.positions))
	for i, p := range s.positions {
		copy := *p
		result[i] = &copy
	}
	return result, nil
}

var _ storage.OpenPositionStore = (*OpenPositionStore)(nil)
