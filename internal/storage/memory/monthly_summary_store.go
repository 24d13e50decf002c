package memory

import (
	"context"
	"sort"
	"sync"

	"copytrade-dashboard/internal/domain"
	"copytrade-dashboard/internal/storage"
)

// MonthlySummaryStore is an in-memory implementation of
// storage.MonthlySummaryStore.
type MonthlySummaryStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.MonthlySummary // keyed by owner id
}

// NewMonthlySummaryStore creates a new in-memory summary store.
func NewMonthlySummaryStore() *MonthlySummaryStore {
	return &MonthlySummaryStore{
		data: make(map[string][]*domain.MonthlySummary),
	}
}

var _ storage.MonthlySummaryStore = (*MonthlySummaryStore)(nil)

// ReplaceForOwner replaces all summaries for an owner with the given set.
func (s *MonthlySummaryStore) ReplaceForOwner(_ context.Context, ownerID string, summaries []*domain.MonthlySummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copies := make([]*domain.MonthlySummary, 0, len(summaries))
	for _, sum := range summaries {
		if sum == nil {
			return storage.ErrInvalidInput
		}
		cp := *sum
		copies = append(copies, &cp)
	}

	s.data[ownerID] = copies
	return nil
}

// GetByOwner retrieves all summaries for an owner, ordered by month ASC.
func (s *MonthlySummaryStore) GetByOwner(_ context.Context, ownerID string) ([]*domain.MonthlySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.data[ownerID]
	result := make([]*domain.MonthlySummary, 0, len(stored))
	for _, sum := range stored {
		cp := *sum
		result = append(result, &cp)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].MonthKey < result[j].MonthKey
	})

	return result, nil
}
