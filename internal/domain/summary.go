package domain

// MonthlySummary is the per-month reduction of one owner's trades and
// funding flows. Summaries are recomputed after every import and stored
// in the analytics database; per-trade metrics are never persisted.
type MonthlySummary struct {
	OwnerID  string
	MonthKey string // YYYY-MM or UNKNOWN

	TradeCount   int
	ClosedCount  int
	Wins         int
	WinRate      float64 // wins / closed trades, 0 when no closed trades
	NetProfit    float64 // sum of per-trade net profit
	TotalFees    float64 // open + close + funding fees across trades
	FundingTotal float64 // signed sum of funding records
}
