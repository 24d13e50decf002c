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

// TradeStore implements storage.TradeStore using PostgreSQL.
type TradeStore struct {
	pool *Pool
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

const tradeColumns = `
	id, transaction_id, pair, amount_symbol, side, margin_type, leverage,
	entry_price, exit_price, quantity,
	open_fee, close_fee, funding_fee,
	status, open_time, close_time, month_key,
	copiers, sharing, owner_id
`

const insertTradeQuery = `
	INSERT INTO trade_records (
		id, transaction_id, pair, amount_symbol, side, margin_type, leverage,
		entry_price, exit_price, quantity,
		open_fee, close_fee, funding_fee,
		status, open_time, close_time, month_key,
		copiers, sharing, owner_id
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7,
		$8, $9, $10,
		$11, $12, $13,
		$14, $15, $16, $17,
		$18, $19, $20
	)
`

// Insert adds a new trade. Returns ErrDuplicateKey if the id exists.
func (s *TradeStore) Insert(ctx context.Context, t *domain.TradeRecord) error {
	_, err := s.pool.Exec(ctx, insertTradeQuery, tradeArgs(t)...)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert trade record: %w", err)
	}
	return nil
}

// InsertBulk adds multiple trades atomically. Fails the entire batch on
// any duplicate.
func (s *TradeStore) InsertBulk(ctx context.Context, trades []*domain.TradeRecord) error {
	if len(trades) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertTradesTx(ctx, tx, trades); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByID retrieves a trade by its id. Returns ErrNotFound if not exists.
func (s *TradeStore) GetByID(ctx context.Context, id string) (*domain.TradeRecord, error) {
	query := `SELECT ` + tradeColumns + ` FROM trade_records WHERE id = $1`

	row := s.pool.QueryRow(ctx, query, id)
	t, err := scanTrade(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get trade record by id: %w", err)
	}
	return t, nil
}

// GetByOwner retrieves all trades for an owner, newest first.
func (s *TradeStore) GetByOwner(ctx context.Context, ownerID string) ([]*domain.TradeRecord, error) {
	query := `
		SELECT ` + tradeColumns + `
		FROM trade_records
		WHERE owner_id = $1
		ORDER BY open_time DESC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get trade records by owner: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// GetByOwnerMonth retrieves an owner's trades for one month key.
func (s *TradeStore) GetByOwnerMonth(ctx context.Context, ownerID, monthKey string) ([]*domain.TradeRecord, error) {
	query := `
		SELECT ` + tradeColumns + `
		FROM trade_records
		WHERE owner_id = $1 AND month_key = $2
		ORDER BY open_time DESC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, ownerID, monthKey)
	if err != nil {
		return nil, fmt.Errorf("get trade records by owner/month: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// ReplaceAll atomically deletes all trades for an owner and inserts the
// given batch.
func (s *TradeStore) ReplaceAll(ctx context.Context, ownerID string, trades []*domain.TradeRecord) error {
	start := time.Now()
	err := s.replaceAll(ctx, ownerID, trades)
	observability.RecordDBQuery("postgres", "replace_trade_records", time.Since(start).Seconds(), err)
	return err
}

func (s *TradeStore) replaceAll(ctx context.Context, ownerID string, trades []*domain.TradeRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM trade_records WHERE owner_id = $1`, ownerID); err != nil {
		return fmt.Errorf("delete trade records by owner: %w", err)
	}

	if err := insertTradesTx(ctx, tx, trades); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// insertTradesTx inserts a batch within an open transaction.
func insertTradesTx(ctx context.Context, tx pgx.Tx, trades []*domain.TradeRecord) error {
	for _, t := range trades {
		_, err := tx.Exec(ctx, insertTradeQuery, tradeArgs(t)...)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert trade record in bulk: %w", err)
		}
	}
	return nil
}

// tradeArgs lists insert parameters in column order.
func tradeArgs(t *domain.TradeRecord) []any {
	return []any{
		t.ID, t.TransactionID, t.Pair, t.AmountSymbol, t.Side, t.MarginType, t.Leverage,
		t.EntryPrice, t.ExitPrice, t.Quantity,
		t.OpenFee, t.CloseFee, t.FundingFee,
		t.Status, t.OpenTime, t.CloseTime, t.MonthKey,
		t.Copiers, t.Sharing, t.OwnerID,
	}
}

// scanTrade scans a single row into a TradeRecord.
func scanTrade(row pgx.Row) (*domain.TradeRecord, error) {
	var t domain.TradeRecord

	err := row.Scan(
		&t.ID, &t.TransactionID, &t.Pair, &t.AmountSymbol, &t.Side, &t.MarginType, &t.Leverage,
		&t.EntryPrice, &t.ExitPrice, &t.Quantity,
		&t.OpenFee, &t.CloseFee, &t.FundingFee,
		&t.Status, &t.OpenTime, &t.CloseTime, &t.MonthKey,
		&t.Copiers, &t.Sharing, &t.OwnerID,
	)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// scanTrades scans multiple rows into a slice of TradeRecord.
func scanTrades(rows pgx.Rows) ([]*domain.TradeRecord, error) {
	var trades []*domain.TradeRecord

	for rows.Next() {
		var t domain.TradeRecord

		err := rows.Scan(
			&t.ID, &t.TransactionID, &t.Pair, &t.AmountSymbol, &t.Side, &t.MarginType, &t.Leverage,
			&t.EntryPrice, &t.ExitPrice, &t.Quantity,
			&t.OpenFee, &t.CloseFee, &t.FundingFee,
			&t.Status, &t.OpenTime, &t.CloseTime, &t.MonthKey,
			&t.Copiers, &t.Sharing, &t.OwnerID,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trade record row: %w", err)
		}

		trades = append(trades, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade record rows: %w", err)
	}

	return trades, nil
}
