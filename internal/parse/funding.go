package parse

import (
	"fmt"
	"strings"

	"copytrade-dashboard/internal/domain"
	"copytrade-dashboard/internal/normalize"
)

// Funding parses funding-fee CSV text. The format is always tabular:
// row 0 is a header, then date, asset, amount, type columns. Missing
// columns fall back to defaults; rows without a date are skipped.
func Funding(text string) []*domain.FundingRecord {
	lines := contentLines(text)
	var records []*domain.FundingRecord
	prefix := batchPrefix()

	for i, line := range lines {
		if i == 0 {
			continue // header
		}

		cols := strings.Split(line, ",")
		if strings.TrimSpace(column(cols, 0)) == "" {
			continue
		}

		date := normalize.Time(column(cols, 0))

		asset := normalize.Value(column(cols, 1))
		if asset == "" {
			asset = domain.DefaultFundingAsset
		}

		fundingType := normalize.Value(column(cols, 3))
		if fundingType == "" {
			fundingType = domain.DefaultFundingType
		}

		records = append(records, &domain.FundingRecord{
			ID:       fmt.Sprintf("%s-%d", prefix, i),
			Date:     date,
			Asset:    asset,
			Amount:   normalize.Number(column(cols, 2)),
			Type:     fundingType,
			MonthKey: normalize.MonthKey(date),
		})
	}

	return records
}
