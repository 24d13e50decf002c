// Package parse recovers trade and funding records from loosely structured
// CSV exports. Parsing is best-effort: rows that cannot be minimally
// validated are skipped and the parsers never return an error.
package parse

import (
	"fmt"
	"strings"
	"time"

	"copytrade-dashboard/internal/domain"
	"copytrade-dashboard/internal/normalize"
)

// Tabular column layout, inferred from one specific exchange export.
// The mapping is positional on purpose: the export carries no usable
// header names, so a header-aware lookup would have nothing to key on.
const (
	colOpenTime = 0
	colPair     = 1
	colSide     = 2
	colLeverage = 3
	colEntry    = 4
	colExit     = 5
	colQuantity = 6
	colFee      = 7
	colStatus   = 9

	minTabularColumns = 5
)

// defaultLeverage is used when an import row carries no parseable leverage.
const defaultLeverage = 10

// Trades parses raw CSV text into trade records. The dialect is detected
// per input: a vertical label/value dump when both "Qty" and "Entry Price"
// lines are present, tabular CSV otherwise.
func Trades(text string) []*domain.TradeRecord {
	lines := contentLines(text)
	if isVerticalDump(lines) {
		return verticalTrades(lines)
	}
	return tabularTrades(lines)
}

// contentLines splits input into trimmed non-empty lines, discarding
// lines that are a lone comma (spreadsheet export artifacts).
func contentLines(text string) []string {
	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))
		if line == "" || line == "," {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// isVerticalDump reports whether the lines look like a label/value dump.
func isVerticalDump(lines []string) bool {
	hasQty := false
	hasEntry := false
	for _, line := range lines {
		if strings.Contains(line, "Qty") {
			hasQty = true
		}
		if strings.Contains(line, "Entry Price") {
			hasEntry = true
		}
	}
	return hasQty && hasEntry
}

// tabularTrades parses the columnar dialect. Row 0 is a header; rows with
// fewer than minTabularColumns columns are skipped, as are rows whose pair
// does not survive normalization.
func tabularTrades(lines []string) []*domain.TradeRecord {
	var trades []*domain.TradeRecord
	prefix := batchPrefix()

	for i, line := range lines {
		if i == 0 {
			continue // header
		}

		cols := strings.Split(line, ",")
		if len(cols) < minTabularColumns {
			continue
		}

		pair := normalize.Pair(column(cols, colPair))
		if len(pair) < 3 {
			continue
		}

		side := domain.SideLong
		if strings.Contains(strings.ToLower(column(cols, colSide)), "short") {
			side = domain.SideShort
		}

		leverage := normalize.Number(column(cols, colLeverage))
		if leverage <= 0 {
			leverage = defaultLeverage
		}

		entry := normalize.Number(column(cols, colEntry))
		exit := normalize.Number(column(cols, colExit))
		quantity := normalize.Number(column(cols, colQuantity))

		// This dialect reports one combined fee; attribute half to each leg.
		fee := normalize.Number(column(cols, colFee))

		status := domain.StatusOpen
		if exit > 0 || strings.EqualFold(strings.TrimSpace(column(cols, colStatus)), "closed") {
			status = domain.StatusClosed
		}

		openTime := normalize.Time(column(cols, colOpenTime))

		trades = append(trades, &domain.TradeRecord{
			ID:           fmt.Sprintf("%s-%d", prefix, i),
			Pair:         pair,
			AmountSymbol: baseAsset(pair),
			Side:         side,
			MarginType:   domain.MarginIsolated,
			Leverage:     leverage,
			EntryPrice:   entry,
			ExitPrice:    exit,
			Quantity:     quantity,
			OpenFee:      fee / 2,
			CloseFee:     fee / 2,
			Status:       status,
			OpenTime:     openTime,
			MonthKey:     normalize.MonthKey(openTime),
		})
	}

	return trades
}

// column returns cols[i] or "" when the row is too short.
func column(cols []string, i int) string {
	if i >= len(cols) {
		return ""
	}
	return cols[i]
}

// baseAsset returns the BASE component of a normalized pair.
func baseAsset(pair string) string {
	if idx := strings.Index(pair, "/"); idx > 0 {
		return pair[:idx]
	}
	return pair
}

// batchPrefix builds the time-based id prefix for one parse call.
// Generated ids are unique within the batch only; stable identity is
// assigned later by the ingestion layer.
func batchPrefix() string {
	return fmt.Sprintf("import-%d", time.Now().UnixMilli())
}
