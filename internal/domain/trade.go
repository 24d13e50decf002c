package domain

// TradeRecord represents one copy-trading position lifecycle event.
// Records are created by CSV import or manual admin entry and are never
// mutated by the core; derived metrics are recomputed on demand.
type TradeRecord struct {
	ID            string // placeholder id from import, or stable id assigned before storage
	TransactionID string // external exchange transaction id, optional

	// Instrument
	Pair         string // normalized BASE/QUOTE, uppercase
	AmountSymbol string // base asset label for display

	// Position terms
	Side       string  // LONG | SHORT
	MarginType string  // ISOLATED | CROSS
	Leverage   float64 // positive multiplier

	// Pricing
	EntryPrice float64
	ExitPrice  float64 // 0 while the position is open
	Quantity   float64 // position size in base asset

	// Costs, non-negative magnitudes. Fees always reduce profit.
	OpenFee    float64
	CloseFee   float64
	FundingFee float64

	// Lifecycle
	Status    string // OPEN | CLOSED
	OpenTime  string // normalized toward YYYY-MM-DD HH:mm:ss
	CloseTime string // optional
	MonthKey  string // first 7 chars of OpenTime (YYYY-MM), UNKNOWN when empty

	// Social metadata
	Copiers int
	Sharing int

	// OwnerID scopes the record to one external user identity.
	// It is injected by the caller before persistence, never by the parser.
	OwnerID string
}

// Side values.
const (
	SideLong  = "LONG"
	SideShort = "SHORT"
)

// Margin type values.
const (
	MarginIsolated = "ISOLATED"
	MarginCross    = "CROSS"
)

// Status values.
const (
	StatusOpen   = "OPEN"
	StatusClosed = "CLOSED"
)

// MonthKeyUnknown is the sentinel month key for records with no open time.
const MonthKeyUnknown = "UNKNOWN"
