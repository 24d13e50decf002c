package storage

import (
	"context"

	"copytrade-dashboard/internal/domain"
)

// TradeStore provides access to trade record storage.
type TradeStore interface {
	// Insert adds a new trade. Returns ErrDuplicateKey if the id exists.
	Insert(ctx context.Context, t *domain.TradeRecord) error

	// InsertBulk adds multiple trades atomically. Fails the entire batch
	// on any duplicate.
	InsertBulk(ctx context.Context, trades []*domain.TradeRecord) error

	// GetByID retrieves a trade by its id. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.TradeRecord, error)

	// GetByOwner retrieves all trades for an owner, ordered by open_time
	// DESC, id ASC.
	GetByOwner(ctx context.Context, ownerID string) ([]*domain.TradeRecord, error)

	// GetByOwnerMonth retrieves an owner's trades for one month key.
	GetByOwnerMonth(ctx context.Context, ownerID, monthKey string) ([]*domain.TradeRecord, error)

	// ReplaceAll atomically deletes all trades for an owner and inserts
	// the given batch. Used by bulk import.
	ReplaceAll(ctx context.Context, ownerID string, trades []*domain.TradeRecord) error
}

// FundingStore provides access to funding record storage.
type FundingStore interface {
	// Insert adds a new funding record. Returns ErrDuplicateKey if the id exists.
	Insert(ctx context.Context, f *domain.FundingRecord) error

	// InsertBulk adds multiple records atomically. Fails the entire batch
	// on any duplicate.
	InsertBulk(ctx context.Context, records []*domain.FundingRecord) error

	// GetByOwner retrieves all funding records for an owner, ordered by
	// date DESC, id ASC.
	GetByOwner(ctx context.Context, ownerID string) ([]*domain.FundingRecord, error)

	// GetByOwnerMonth retrieves an owner's funding records for one month key.
	GetByOwnerMonth(ctx context.Context, ownerID, monthKey string) ([]*domain.FundingRecord, error)

	// ReplaceAll atomically deletes all funding records for an owner and
	// inserts the given batch.
	ReplaceAll(ctx context.Context, ownerID string, records []*domain.FundingRecord) error
}

// MonthlySummaryStore provides access to the analytics database holding
// per-month reductions of an owner's records.
type MonthlySummaryStore interface {
	// ReplaceForOwner replaces all summaries for an owner with the given set.
	ReplaceForOwner(ctx context.Context, ownerID string, summaries []*domain.MonthlySummary) error

	// GetByOwner retrieves all summaries for an owner, ordered by month ASC.
	GetByOwner(ctx context.Context, ownerID string) ([]*domain.MonthlySummary, error)
}
