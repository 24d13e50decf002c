package metrics

import (
	"context"
	"fmt"
	"sort"

	"copytrade-dashboard/internal/domain"
	"copytrade-dashboard/internal/storage"
)

// Aggregator reduces one owner's stored trades and funding flows into
// per-month summaries for the dashboard's time-range views.
type Aggregator struct {
	tradeStore   storage.TradeStore
	fundingStore storage.FundingStore
	summaryStore storage.MonthlySummaryStore
}

// NewAggregator creates a new monthly aggregator.
func NewAggregator(trades storage.TradeStore, funding storage.FundingStore, summaries storage.MonthlySummaryStore) *Aggregator {
	return &Aggregator{
		tradeStore:   trades,
		fundingStore: funding,
		summaryStore: summaries,
	}
}

// ComputeMonthly loads an owner's records and reduces them by month key.
// Results are sorted by month ASC for deterministic output.
func (a *Aggregator) ComputeMonthly(ctx context.Context, ownerID string) ([]*domain.MonthlySummary, error) {
	trades, err := a.tradeStore.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load trades: %w", err)
	}
	funding, err := a.fundingStore.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load funding records: %w", err)
	}

	return reduceMonthly(ownerID, trades, funding), nil
}

// ComputeAndStore computes monthly summaries and replaces the owner's
// stored set with them.
func (a *Aggregator) ComputeAndStore(ctx context.Context, ownerID string) ([]*domain.MonthlySummary, error) {
	summaries, err := a.ComputeMonthly(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if err := a.summaryStore.ReplaceForOwner(ctx, ownerID, summaries); err != nil {
		return nil, fmt.Errorf("store monthly summaries: %w", err)
	}

	return summaries, nil
}

// reduceMonthly groups records by month key and folds them into
// summaries. Per-trade metrics are computed on the fly and discarded.
func reduceMonthly(ownerID string, trades []*domain.TradeRecord, funding []*domain.FundingRecord) []*domain.MonthlySummary {
	byMonth := make(map[string]*domain.MonthlySummary)

	summary := func(monthKey string) *domain.MonthlySummary {
		if monthKey == "" {
			monthKey = domain.MonthKeyUnknown
		}
		s, ok := byMonth[monthKey]
		if !ok {
			s = &domain.MonthlySummary{OwnerID: ownerID, MonthKey: monthKey}
			byMonth[monthKey] = s
		}
		return s
	}

	for _, t := range trades {
		s := summary(t.MonthKey)
		result := Compute(t)

		s.TradeCount++
		s.NetProfit += result.NetProfit
		s.TotalFees += t.OpenFee + t.CloseFee + t.FundingFee
		if t.Status == domain.StatusClosed {
			s.ClosedCount++
			if result.NetProfit > 0 {
				s.Wins++
			}
		}
	}

	for _, f := range funding {
		summary(f.MonthKey).FundingTotal += f.Amount
	}

	var result []*domain.MonthlySummary
	for _, s := range byMonth {
		if s.ClosedCount > 0 {
			s.WinRate = float64(s.Wins) / float64(s.ClosedCount)
		}
		result = append(result, s)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].MonthKey < result[j].MonthKey
	})

	return result
}
