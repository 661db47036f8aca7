package memory

import (
	"context"
	"sort"
	"sync"

	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/storage"
)

// ExecutionStore is an in-memory implementation of storage.ExecutionStore.
type ExecutionStore struct {
	mu    sync.RWMutex
	data  map[string]*domain.Execution // keyed by execution_id
	order []string                     // arrival order
}

// NewExecutionStore creates a new in-memory execution store.
func NewExecutionStore() *ExecutionStore {
	return &ExecutionStore{
		data: make(map[string]*domain.Execution),
	}
}

// Merge adds executions not stored yet. Existing ids are ignored.
func (s *ExecutionStore) Merge(_ context.Context, execs []*domain.Execution) (int, error) {
	for _, e := range execs {
		if e == nil || e.ExecutionID == "" {
			return 0, storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := 0
	for _, e := range execs {
		if _, exists := s.data[e.ExecutionID]; exists {
			continue
		}
		copy := *e
		s.data[e.ExecutionID] = &copy
		s.order = append(s.order, e.ExecutionID)
		inserted++
	}
	return inserted, nil
}

// GetByID retrieves an execution by id. Returns ErrNotFound if not exists.
func (s *ExecutionStore) GetByID(_ context.Context, executionID string) (*domain.Execution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.data[executionID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	copy := *e
	return &copy, nil
}

// GetAll retrieves all executions ordered by trade_time ASC, then arrival order.
func (s *ExecutionStore) GetAll(_ context.Context) ([]*domain.Execution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Execution, 0, len(s.order))
	for _, id := range s.order {
		copy := *s.data[id]
		result = append(result, &copy)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].TradeTime < result[j].TradeTime
	})
	return result, nil
}

var _ storage.ExecutionStore = (*ExecutionStore)(nil)
