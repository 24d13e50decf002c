package memory

import (
	"context"
	"sort"
	"sync"

	"copytrade-dashboard/internal/domain"
	"copytrade-dashboard/internal/storage"
)

// TradeStore is an in-memory implementation of storage.TradeStore.
type TradeStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TradeRecord // keyed by id
}

// NewTradeStore creates a new in-memory trade store.
func NewTradeStore() *TradeStore {
	return &TradeStore{
		data: make(map[string]*domain.TradeRecord),
	}
}

var _ storage.TradeStore = (*TradeStore)(nil)

// Insert adds a new trade. Returns ErrDuplicateKey if the id exists.
func (s *TradeStore) Insert(_ context.Context, t *domain.TradeRecord) error {
	if t == nil || t.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[t.ID]; exists {
		return storage.ErrDuplicateKey
	}

	cp := *t
	s.data[t.ID] = &cp
	return nil
}

// InsertBulk adds multiple trades atomically. Fails the entire batch on
// any duplicate.
func (s *TradeStore) InsertBulk(_ context.Context, trades []*domain.TradeRecord) error {
	if len(trades) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := checkTradeBatch(s.data, trades); err != nil {
		return err
	}

	for _, t := range trades {
		cp := *t
		s.data[t.ID] = &cp
	}
	return nil
}

// GetByID retrieves a trade by its id. Returns ErrNotFound if not exists.
func (s *TradeStore) GetByID(_ context.Context, id string) (*domain.TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	cp := *t
	return &cp, nil
}

// GetByOwner retrieves all trades for an owner, ordered by open_time
// DESC, id ASC.
func (s *TradeStore) GetByOwner(_ context.Context, ownerID string) ([]*domain.TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TradeRecord
	for _, t := range s.data {
		if t.OwnerID == ownerID {
			cp := *t
			result = append(result, &cp)
		}
	}

	sortTrades(result)
	return result, nil
}

// GetByOwnerMonth retrieves an owner's trades for one month key.
func (s *TradeStore) GetByOwnerMonth(_ context.Context, ownerID, monthKey string) ([]*domain.TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TradeRecord
	for _, t := range s.data {
		if t.OwnerID == ownerID && t.MonthKey == monthKey {
			cp := *t
			result = append(result, &cp)
		}
	}

	sortTrades(result)
	return result, nil
}

// ReplaceAll atomically deletes all trades for an owner and inserts the
// given batch.
func (s *TradeStore) ReplaceAll(_ context.Context, ownerID string, trades []*domain.TradeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := make(map[string]*domain.TradeRecord, len(s.data))
	for id, t := range s.data {
		if t.OwnerID != ownerID {
			remaining[id] = t
		}
	}

	if err := checkTradeBatch(remaining, trades); err != nil {
		return err
	}

	for _, t := range trades {
		cp := *t
		remaining[t.ID] = &cp
	}
	s.data = remaining
	return nil
}

// checkTradeBatch validates a batch against existing data and itself.
func checkTradeBatch(existing map[string]*domain.TradeRecord, trades []*domain.TradeRecord) error {
	batchKeys := make(map[string]struct{}, len(trades))
	for _, t := range trades {
		if t == nil || t.ID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := existing[t.ID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[t.ID]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[t.ID] = struct{}{}
	}
	return nil
}

// sortTrades orders by open_time DESC, id ASC for deterministic listings.
func sortTrades(trades []*domain.TradeRecord) {
	sort.Slice(trades, func(i, j int) bool {
		if trades[i].OpenTime != trades[j].OpenTime {
			return trades[i].OpenTime > trades[j].OpenTime
		}
		return trades[i].ID < trades[j].ID
	})
}
