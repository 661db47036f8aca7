package memory

import (
	"context"
	"sync"

	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/storage"
)

// StrategySummaryStore is an in-memory implementation of storage.StrategySummaryStore.
type StrategySummaryStore struct {
	mu   sync.RWMutex
	data []*domain.StrategySummary
}

// NewStrategySummaryStore creates a new in-memory strategy summary store.
func NewStrategySummaryStore() *StrategySummaryStore {
	return &StrategySummaryStore{}
}

// ReplaceAll replaces the stored summaries.
func (s *StrategySummaryStore) ReplaceAll(_ context.Context, summaries []*domain.StrategySummary) error {
	batch := make([]*domain.StrategySummary, 0, len(summaries))
	seen := make(map[string]struct{}, len(summaries))

	for _, sum := range summaries {
		if sum == nil || sum.StrategyID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := seen[sum.StrategyID]; exists {
			return storage.ErrDuplicateKey
		}
		seen[sum.StrategyID] = struct{}{}
		copy := *sum
		batch = append(batch, &copy)
	}
	storage.SortStrategySummaries(batch)

	s.mu.Lock()
	s.data = batch
	s.mu.Unlock()
	return nil
}

// GetAll retrieves all summaries ordered by date DESC, strategy_id ASC.
func (s *StrategySummaryStore) GetAll(_ context.Context) ([]*domain.StrategySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.StrategySummary, len(s.data))
	for i, sum := range s.data {
		copy := *sum
		result[i] = &copy
	}
	return result, nil
}

// CampaignSummaryStore is an in-memory implementation of storage.CampaignSummaryStore.
type CampaignSummaryStore struct {
	mu   sync.RWMutex
	data []*domain.CampaignSummary
}

// NewCampaignSummaryStore creates a new in-memory campaign summary store.
func NewCampaignSummaryStore() *CampaignSummaryStore {
	return &CampaignSummaryStore{}
}

// ReplaceAll replaces the stored summaries.
func (s *CampaignSummaryStore) ReplaceAll(_ context.Context, summaries []*domain.CampaignSummary) error {
	batch := make([]*domain.CampaignSummary, 0, len(summaries))
	seen := make(map[string]struct{}, len(summaries))

	for _, sum := range summaries {
		if sum == nil || sum.CampaignID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := seen[sum.CampaignID]; exists {
			return storage.ErrDuplicateKey
		}
		seen[sum.CampaignID] = struct{}{}
		copy := *sum
		batch = append(batch, &copy)
	}
	storage.SortCampaignSummaries(batch)

	s.mu.Lock()
	s.data = batch
	s.mu.Unlock()
	return nil
}

// GetAll retrieves all summaries ordered by end_time DESC, campaign_id ASC.
func (s *CampaignSummaryStore) GetAll(_ context.Context) ([]*domain.CampaignSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.CampaignSummary, len(s.data))
	for i, sum := range s.data {
		copy := *sum
		result[i] = &copy
	}
	return result, nil
}

var (
	_ storage.StrategySummaryStore = (*StrategySummaryStore)(nil)
	_ storage.CampaignSummaryStore = (*CampaignSummaryStore)(nil)
)
