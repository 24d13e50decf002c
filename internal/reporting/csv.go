// Package reporting renders stored records as downloadable documents.
package reporting

import (
	"fmt"
	"strings"

	"copytrade-dashboard/internal/domain"
	"copytrade-dashboard/internal/metrics"
)

// RenderTradesCSV renders trades with their computed metrics as a CSV string.
func RenderTradesCSV(trades []*domain.TradeRecord) string {
	var sb strings.Builder

	// Header
	sb.WriteString("id,pair,side,margin_type,leverage,entry_price,exit_price,quantity,")
	sb.WriteString("open_fee,close_fee,funding_fee,status,open_time,close_time,month_key,")
	sb.WriteString("pnl,margin,net_profit,roe\n")

	// Rows
	for _, t := range trades {
		r := metrics.Compute(t)
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%g,%g,%g,%g,%g,%g,%g,%s,%s,%s,%s,%.6f,%.6f,%.6f,%.6f\n",
			t.ID,
			t.Pair,
			t.Side,
			t.MarginType,
			t.Leverage,
			t.EntryPrice,
			t.ExitPrice,
			t.Quantity,
			t.OpenFee,
			t.CloseFee,
			t.FundingFee,
			t.Status,
			t.OpenTime,
			t.CloseTime,
			t.MonthKey,
			r.PnL,
			r.Margin,
			r.NetProfit,
			r.ROE,
		))
	}

	return sb.String()
}
