package domain

// FundingRecord represents one funding-fee cash-flow event.
// Amount is signed: negative is a cost, positive a credit.
type FundingRecord struct {
	ID       string
	Date     string // same normalization as trade timestamps
	Asset    string
	Amount   float64
	Type     string // free-text category, default "Funding Fee"
	MonthKey string

	// OwnerID scopes the record to one external user identity.
	OwnerID string
}

// DefaultFundingType is used when an import row carries no category.
const DefaultFundingType = "Funding Fee"

// DefaultFundingAsset is used when an import row carries no asset.
const DefaultFundingAsset = "USDT"
