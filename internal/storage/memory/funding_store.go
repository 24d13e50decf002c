package memory

import (
	"context"
	"sort"
	"sync"

	"copytrade-dashboard/internal/domain"
	"copytrade-dashboard/internal/storage"
)

// FundingStore is an in-memory implementation of storage.FundingStore.
type FundingStore struct {
	mu   sync.RWMutex
	data map[string]*domain.FundingRecord // keyed by id
}

// NewFundingStore creates a new in-memory funding store.
func NewFundingStore() *FundingStore {
	return &FundingStore{
		data: make(map[string]*domain.FundingRecord),
	}
}

var _ storage.FundingStore = (*FundingStore)(nil)

// Insert adds a new funding record. Returns ErrDuplicateKey if the id exists.
func (s *FundingStore) Insert(_ context.Context, f *domain.FundingRecord) error {
	if f == nil || f.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[f.ID]; exists {
		return storage.ErrDuplicateKey
	}

	cp := *f
	s.data[f.ID] = &cp
	return nil
}

// InsertBulk adds multiple records atomically. Fails the entire batch on
// any duplicate.
func (s *FundingStore) InsertBulk(_ context.Context, records []*domain.FundingRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := checkFundingBatch(s.data, records); err != nil {
		return err
	}

	for _, f := range records {
		cp := *f
		s.data[f.ID] = &cp
	}
	return nil
}

// GetByOwner retrieves all funding records for an owner, ordered by date
// DESC, id ASC.
func (s *FundingStore) GetByOwner(_ context.Context, ownerID string) ([]*domain.FundingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.FundingRecord
	for _, f := range s.data {
		if f.OwnerID == ownerID {
			cp := *f
			result = append(result, &cp)
		}
	}

	sortFunding(result)
	return result, nil
}

// GetByOwnerMonth retrieves an owner's funding records for one month key.
func (s *FundingStore) GetByOwnerMonth(_ context.Context, ownerID, monthKey string) ([]*domain.FundingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.FundingRecord
	for _, f := range s.data {
		if f.OwnerID == ownerID && f.MonthKey == monthKey {
			cp := *f
			result = append(result, &cp)
		}
	}

	sortFunding(result)
	return result, nil
}

// ReplaceAll atomically deletes all funding records for an owner and
// inserts the given batch.
func (s *FundingStore) ReplaceAll(_ context.Context, ownerID string, records []*domain.FundingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := make(map[string]*domain.FundingRecord, len(s.data))
	for id, f := range s.data {
		if f.OwnerID != ownerID {
			remaining[id] = f
		}
	}

	if err := checkFundingBatch(remaining, records); err != nil {
		return err
	}

	for _, f := range records {
		cp := *f
		remaining[f.ID] = &cp
	}
	s.data = remaining
	return nil
}

// checkFundingBatch validates a batch against existing data and itself.
func checkFundingBatch(existing map[string]*domain.FundingRecord, records []*domain.FundingRecord) error {
	batchKeys := make(map[string]struct{}, len(records))
	for _, f := range records {
		if f == nil || f.ID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := existing[f.ID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[f.ID]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[f.ID] = struct{}{}
	}
	return nil
}

// sortFunding orders by date DESC, id ASC for deterministic listings.
func sortFunding(records []*domain.FundingRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date > records[j].Date
		}
		return records[i].ID < records[j].ID
	})
}
