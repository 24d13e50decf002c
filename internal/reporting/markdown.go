package reporting

import (
	"fmt"
	"strings"

	"copytrade-dashboard/internal/domain"
)

// RenderMonthlyMarkdown renders monthly summaries as a Markdown table.
func RenderMonthlyMarkdown(summaries []*domain.MonthlySummary) string {
	var sb strings.Builder

	sb.WriteString("# Monthly Performance\n\n")

	if len(summaries) == 0 {
		sb.WriteString("No records imported yet.\n")
		return sb.String()
	}

	sb.WriteString("| Month | Trades | Closed | Wins | Win Rate | Net Profit | Fees | Funding |\n")
	sb.WriteString("|-------|--------|--------|------|----------|------------|------|--------|\n")
	for _, s := range summaries {
		sb.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %.1f%% | %.2f | %.2f | %.2f |\n",
			s.MonthKey,
			s.TradeCount,
			s.ClosedCount,
			s.Wins,
			s.WinRate*100,
			s.NetProfit,
			s.TotalFees,
			s.FundingTotal,
		))
	}

	return sb.String()
}
