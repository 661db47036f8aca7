package memory

import (
	"context"
	"sort"
	"sync"

	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/storage"
)

// CashTransactionStore is an in-memory implementation of storage.CashTransactionStore.
type CashTransactionStore struct {
	mu    sync.RWMutex
	data  map[string]*domain.CashTransaction // keyed by transaction_id
	order []string
}

// NewCashTransactionStore creates a new in-memory cash transaction store.
func NewCashTransactionStore() *CashTransactionStore {
	return &CashTransactionStore{
		data: make(map[string]*domain.CashTransaction),
	}
}

// Merge adds transactions not stored yet. Existing ids are ignored.
func (s *CashTransactionStore) Merge(_ context.Context, txs []*domain.CashTransaction) (int, error) {
	for _, tx := range txs {
		if tx == nil || tx.TransactionID == "" {
			return 0, storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := 0
	for _, tx := range txs {
		if _, exists := s.data[tx.TransactionID]; exists {
			continue
		}
		copy := *tx
		s.data[tx.TransactionID] = &copy
		s.order = append(s.order, tx.TransactionID)
		inserted++
	}
	return inserted, nil
}

// GetAll retrieves all transactions ordered by date ASC, then arrival order.
func (s *CashTransactionStore) GetAll(_ context.Context) ([]*domain.CashTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.CashTransaction, 0, len(s.order))
	for _, id := range s.order {
		copy := *s.data[id]
		result = append(result, &copy)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date < result[j].Date
	})
	return result, nil
}

var _ storage.CashTransactionStore = (*CashTransactionStore)(nil)
