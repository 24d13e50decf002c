package clickhouse

import (
	"context"
	"fmt"
	"time"

	"copytrade-dashboard/internal/domain"
	"copytrade-dashboard/internal/observability"
	"copytrade-dashboard/internal/storage"
)

// MonthlySummaryStore implements storage.MonthlySummaryStore using
// ClickHouse. Summaries are recomputed on every import, so the table is
// a ReplacingMergeTree keyed by (owner_id, month_key) with a version
// column bumped on each replace.
type MonthlySummaryStore struct {
	conn *Conn
}

// NewMonthlySummaryStore creates a new MonthlySummaryStore.
func NewMonthlySummaryStore(conn *Conn) *MonthlySummaryStore {
	return &MonthlySummaryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.MonthlySummaryStore = (*MonthlySummaryStore)(nil)

// ReplaceForOwner replaces all summaries for an owner with the given set.
func (s *MonthlySummaryStore) ReplaceForOwner(ctx context.Context, ownerID string, summaries []*domain.MonthlySummary) error {
	start := time.Now()
	err := s.replaceForOwner(ctx, ownerID, summaries)
	observability.RecordDBQuery("clickhouse", "replace_monthly_summaries", time.Since(start).Seconds(), err)
	return err
}

func (s *MonthlySummaryStore) replaceForOwner(ctx context.Context, ownerID string, summaries []*domain.MonthlySummary) error {
	// Delete old rows first. ALTER DELETE is asynchronous in ClickHouse,
	// so reads go through FINAL with a version column to stay correct
	// regardless of mutation timing.
	err := s.conn.Exec(ctx,
		`ALTER TABLE monthly_summaries DELETE WHERE owner_id = ?`, ownerID)
	if err != nil {
		return fmt.Errorf("delete monthly summaries by owner: %w", err)
	}

	if len(summaries) == 0 {
		return nil
	}

	var version uint64
	err = s.conn.QueryRow(ctx,
		`SELECT coalesce(max(version), 0) FROM monthly_summaries FINAL WHERE owner_id = ?`,
		ownerID,
	).Scan(&version)
	if err != nil {
		return fmt.Errorf("read summary version: %w", err)
	}
	version++

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO monthly_summaries (
			owner_id, month_key,
			trade_count, closed_count, wins, win_rate,
			net_profit, total_fees, funding_total,
			version
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, sum := range summaries {
		err = batch.Append(
			ownerID, sum.MonthKey,
			uint64(sum.TradeCount), uint64(sum.ClosedCount), uint64(sum.Wins), sum.WinRate,
			sum.NetProfit, sum.TotalFees, sum.FundingTotal,
			version,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByOwner retrieves all summaries for an owner, ordered by month ASC.
func (s *MonthlySummaryStore) GetByOwner(ctx context.Context, ownerID string) ([]*domain.MonthlySummary, error) {
	query := `
		SELECT
			owner_id, month_key,
			trade_count, closed_count, wins, win_rate,
			net_profit, total_fees, funding_total
		FROM monthly_summaries FINAL
		WHERE owner_id = ?
		ORDER BY month_key ASC
	`

	rows, err := s.conn.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query monthly summaries by owner: %w", err)
	}
	defer rows.Close()

	var summaries []*domain.MonthlySummary
	for rows.Next() {
		var (
			sum                     domain.MonthlySummary
			tradeCount, closedCount uint64
			wins                    uint64
		)
		err := rows.Scan(
			&sum.OwnerID, &sum.MonthKey,
			&tradeCount, &closedCount, &wins, &sum.WinRate,
			&sum.NetProfit, &sum.TotalFees, &sum.FundingTotal,
		)
		if err != nil {
			return nil, fmt.Errorf("scan monthly summary row: %w", err)
		}
		sum.TradeCount = int(tradeCount)
		sum.ClosedCount = int(closedCount)
		sum.Wins = int(wins)
		summaries = append(summaries, &sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate monthly summary rows: %w", err)
	}

	return summaries, nil
}
