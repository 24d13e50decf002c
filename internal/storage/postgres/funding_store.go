package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"copytrade-dashboard/internal/domain"
	"copytrade-dashboard/internal/observability"
	"copytrade-dashboard/internal/storage"
)

// FundingStore implements storage.FundingStore using PostgreSQL.
type FundingStore struct {
	pool *Pool
}

// NewFundingStore creates a new FundingStore.
func NewFundingStore(pool *Pool) *FundingStore {
	return &FundingStore{pool: pool}
}

// Compile-time interface check.
var _ storage.FundingStore = (*FundingStore)(nil)

const fundingColumns = `id, date, asset, amount, type, month_key, owner_id`

const insertFundingQuery = `
	INSERT INTO funding_records (id, date, asset, amount, type, month_key, owner_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
`

// Insert adds a new funding record. Returns ErrDuplicateKey if the id exists.
func (s *FundingStore) Insert(ctx context.Context, f *domain.FundingRecord) error {
	_, err := s.pool.Exec(ctx, insertFundingQuery,
		f.ID, f.Date, f.Asset, f.Amount, f.Type, f.MonthKey, f.OwnerID,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert funding record: %w", err)
	}
	return nil
}

// InsertBulk adds multiple records atomically. Fails the entire batch on
// any duplicate.
func (s *FundingStore) InsertBulk(ctx context.Context, records []*domain.FundingRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertFundingTx(ctx, tx, records); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByOwner retrieves all funding records for an owner, newest first.
func (s *FundingStore) GetByOwner(ctx context.Context, ownerID string) ([]*domain.FundingRecord, error) {
	query := `
		SELECT ` + fundingColumns + `
		FROM funding_records
		WHERE owner_id = $1
		ORDER BY date DESC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get funding records by owner: %w", err)
	}
	defer rows.Close()

	return scanFundingRecords(rows)
}

// GetByOwnerMonth retrieves an owner's funding records for one month key.
func (s *FundingStore) GetByOwnerMonth(ctx context.Context, ownerID, monthKey string) ([]*domain.FundingRecord, error) {
	query := `
		SELECT ` + fundingColumns + `
		FROM funding_records
		WHERE owner_id = $1 AND month_key = $2
		ORDER BY date DESC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, ownerID, monthKey)
	if err != nil {
		return nil, fmt.Errorf("get funding records by owner/month: %w", err)
	}
	defer rows.Close()

	return scanFundingRecords(rows)
}

// ReplaceAll atomically deletes all funding records for an owner and
// inserts the given batch.
func (s *FundingStore) ReplaceAll(ctx context.Context, ownerID string, records []*domain.FundingRecord) error {
	start := time.Now()
	err := s.replaceAll(ctx, ownerID, records)
	observability.RecordDBQuery("postgres", "replace_funding_records", time.Since(start).Seconds(), err)
	return err
}

func (s *FundingStore) replaceAll(ctx context.Context, ownerID string, records []*domain.FundingRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM funding_records WHERE owner_id = $1`, ownerID); err != nil {
		return fmt.Errorf("delete funding records by owner: %w", err)
	}

	if err := insertFundingTx(ctx, tx, records); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// insertFundingTx inserts a batch within an open transaction.
func insertFundingTx(ctx context.Context, tx pgx.Tx, records []*domain.FundingRecord) error {
	for _, f := range records {
		_, err := tx.Exec(ctx, insertFundingQuery,
			f.ID, f.Date, f.Asset, f.Amount, f.Type, f.MonthKey, f.OwnerID,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert funding record in bulk: %w", err)
		}
	}
	return nil
}

// scanFundingRecords scans multiple rows into a slice of FundingRecord.
func scanFundingRecords(rows pgx.Rows) ([]*domain.FundingRecord, error) {
	var records []*domain.FundingRecord

	for rows.Next() {
		var f domain.FundingRecord

		err := rows.Scan(&f.ID, &f.Date, &f.Asset, &f.Amount, &f.Type, &f.MonthKey, &f.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("scan funding record row: %w", err)
		}

		records = append(records, &f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate funding record rows: %w", err)
	}

	return records, nil
}
