package parse

import (
	"fmt"
	"math"
	"strings"

	"copytrade-dashboard/internal/domain"
	"copytrade-dashboard/internal/normalize"
)

// pairLookback bounds the backward search for a pair anchor above a
// "Qty" line.
const pairLookback = 4

// reservedAnchorWords can never be pair anchors: they are position
// attribute values that happen to sit in the lookback window.
var reservedAnchorWords = map[string]bool{
	"ISOLATED": true,
	"CROSS":    true,
	"LONG":     true,
	"SHORT":    true,
	"DETAILS":  true,
}

// tradeDraft accumulates one vertical-dump block before finalization.
// Its scope is exactly one parse call; a new "Qty" anchor or a "P&L"
// terminator discards or emits it.
type tradeDraft struct {
	pair          string
	amountSymbol  string
	marginType    string
	side          string
	leverage      float64
	entryPrice    float64
	exitPrice     float64
	quantity      float64
	openFee       float64
	closeFee      float64
	fundingFee    float64
	status        string
	openTime      string
	closeTime     string
	transactionID string
	copiers       int
}

// verticalTrades parses the label/value dump dialect in a single forward
// pass with one line of lookahead. Each block starts at a "Qty" line
// anchored to a nearby pair line and ends at a "P&L" line; blocks that
// never reach a terminator are dropped silently.
func verticalTrades(lines []string) []*domain.TradeRecord {
	var trades []*domain.TradeRecord
	var cur *tradeDraft
	prefix := batchPrefix()

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if line == "Qty" && i+1 < len(lines) && lines[i+1] != "" {
			cur = startDraft(lines, i)
			i++ // consume the Qty value line
			continue
		}

		if strings.HasPrefix(line, "P&L") {
			if cur != nil && cur.pair != "" {
				trades = append(trades, cur.finalize(fmt.Sprintf("%s-%d", prefix, len(trades))))
			}
			cur = nil
			continue
		}

		if cur == nil || i+1 >= len(lines) {
			continue
		}

		value := lines[i+1]
		switch line {
		case "Entry Price":
			cur.entryPrice = normalize.Number(value)
		case "Closing Price", "Exit Price":
			cur.exitPrice = normalize.Number(value)
			cur.status = domain.StatusClosed
		case "Trade ID", "Transaction ID":
			cur.transactionID = normalize.Value(value)
		case "Open Time":
			cur.openTime = normalize.Time(value)
		case "Closing Time", "Close Time":
			cur.closeTime = normalize.Time(value)
		case "Open Fee":
			cur.openFee = math.Abs(normalize.Number(value))
		case "Close Fee":
			cur.closeFee = math.Abs(normalize.Number(value))
		case "Funding Fee":
			cur.fundingFee = math.Abs(normalize.Number(value))
		case "Copiers":
			cur.copiers = int(normalize.Number(value))
		default:
			continue // unknown label, do not consume the next line
		}
		i++ // consume the value line
	}

	return trades
}

// startDraft begins a new block at a "Qty" line. It searches backward up
// to pairLookback lines for a recognizable pair anchor; without one the
// block (and any in-progress draft) is abandoned and nil is returned.
func startDraft(lines []string, qtyIdx int) *tradeDraft {
	anchor := findPairAnchor(lines, qtyIdx)
	if anchor < 0 {
		return nil
	}

	d := &tradeDraft{pair: normalize.Pair(lines[anchor])}

	// Line after the anchor carries the margin type.
	if anchor+1 < len(lines) {
		if strings.Contains(strings.ToLower(lines[anchor+1]), "cross") {
			d.marginType = domain.MarginCross
		} else {
			d.marginType = domain.MarginIsolated
		}
	}

	// Next line carries side and leverage, e.g. "Long 20X".
	if anchor+2 < len(lines) {
		fields := strings.Fields(lines[anchor+2])
		if len(fields) > 0 {
			if strings.ToLower(fields[0]) == "short" {
				d.side = domain.SideShort
			} else {
				d.side = domain.SideLong
			}
		}
		if len(fields) > 1 {
			lev := normalize.Number(strings.TrimSuffix(strings.ToUpper(fields[1]), "X"))
			if lev > 0 {
				d.leverage = lev
			}
		}
	}

	// The Qty value line carries quantity and optionally the asset label.
	fields := strings.Fields(lines[qtyIdx+1])
	if len(fields) > 0 {
		d.quantity = normalize.Number(fields[0])
	}
	if len(fields) > 1 {
		d.amountSymbol = fields[1]
	}

	return d
}

// findPairAnchor scans backward from a "Qty" line for a line that
// normalizes into a pair token. Returns -1 when no anchor exists within
// the lookback window.
func findPairAnchor(lines []string, qtyIdx int) int {
	for j := qtyIdx - 1; j >= 0 && j >= qtyIdx-pairLookback; j-- {
		raw := strings.ToUpper(strings.TrimSpace(lines[j]))
		if reservedAnchorWords[raw] {
			continue
		}
		if strings.Contains(normalize.Pair(lines[j]), "/") || strings.HasSuffix(raw, "USDT") {
			return j
		}
	}
	return -1
}

// finalize fills unset fields with the documented defaults and derives
// the month key.
func (d *tradeDraft) finalize(id string) *domain.TradeRecord {
	if d.status == "" {
		d.status = domain.StatusOpen
	}
	if d.leverage <= 0 {
		d.leverage = defaultLeverage
	}
	if d.marginType == "" {
		d.marginType = domain.MarginIsolated
	}
	if d.side == "" {
		d.side = domain.SideLong
	}
	if d.amountSymbol == "" {
		d.amountSymbol = baseAsset(d.pair)
	}

	return &domain.TradeRecord{
		ID:            id,
		TransactionID: d.transactionID,
		Pair:          d.pair,
		AmountSymbol:  d.amountSymbol,
		Side:          d.side,
		MarginType:    d.marginType,
		Leverage:      d.leverage,
		EntryPrice:    d.entryPrice,
		ExitPrice:     d.exitPrice,
		Quantity:      d.quantity,
		OpenFee:       d.openFee,
		CloseFee:      d.closeFee,
		FundingFee:    d.fundingFee,
		Status:        d.status,
		OpenTime:      d.openTime,
		CloseTime:     d.closeTime,
		MonthKey:      normalize.MonthKey(d.openTime),
		Copiers:       d.copiers,
	}
}
