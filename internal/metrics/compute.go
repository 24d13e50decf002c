// Package metrics computes derived profitability figures for trade
// records. Per-trade results are recomputed on demand and never
// persisted; only the monthly reduction is stored.
package metrics

import (
	"copytrade-dashboard/internal/domain"
)

// Result holds the derived metrics for one trade.
type Result struct {
	PnL       float64 // gross P&L before fees
	Margin    float64 // capital at risk: entry * quantity / leverage
	NetProfit float64 // gross P&L minus all fees
	ROE       float64 // net profit as a percentage of margin
}

// Compute derives metrics for a single trade. Pure and total: degenerate
// input (zero leverage, zero margin) yields 0 for the undefined ratios
// instead of failing.
//
// An open position with no exit price is marked at entry, so its gross
// P&L is 0 and only fees show up in the net figure. ROE is net of fees
// deliberately, which distinguishes it from "PnL%" display surfaces.
func Compute(t *domain.TradeRecord) Result {
	currentPrice := t.ExitPrice
	if currentPrice == 0 {
		currentPrice = t.EntryPrice
	}

	var gross float64
	if t.Side == domain.SideShort {
		gross = (t.EntryPrice - currentPrice) * t.Quantity
	} else {
		gross = (currentPrice - t.EntryPrice) * t.Quantity
	}

	var margin float64
	if t.Leverage > 0 {
		margin = (t.EntryPrice * t.Quantity) / t.Leverage
	}

	net := gross - (t.OpenFee + t.CloseFee + t.FundingFee)

	var roe float64
	if margin > 0 {
		roe = (net / margin) * 100
	}

	return Result{
		PnL:       gross,
		Margin:    margin,
		NetProfit: net,
		ROE:       roe,
	}
}
