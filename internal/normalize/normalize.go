// Package normalize provides the shared cleanup helpers used by the CSV
// import parsers. All functions are pure and never fail: bad input falls
// back to a documented default instead of an error.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Quote suffixes recognized when a pair comes in without a separator,
// checked in order (BTCUSDT -> BTC/USDT).
var quoteSuffixes = []string{"USDT", "USDC", "USD"}

// currencyTokens are stripped from numeric fields before parsing
// ("0.5 ETH" -> 0.5). Matching is case-insensitive.
var currencyTokens = regexp.MustCompile(`(?i)USDT|ETH|BTC|SOL|XRP|BNB|USD|EUR`)

// trailingUnit matches a trailing run of uppercase letters ("1.2K", "30 BUSD").
var trailingUnit = regexp.MustCompile(`[A-Z]+$`)

// isoDatePrefix matches strings already starting with YYYY-MM-DD.
var isoDatePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// Pair normalizes a raw instrument token into BASE/QUOTE form.
// A token that already contains a slash keeps it (internal whitespace
// removed); a token ending in a known quote suffix is split; anything
// else is returned uppercased without a separator, for the caller to
// accept or reject.
func Pair(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(raw, ",", "")))
	if strings.Contains(s, "/") {
		return strings.Join(strings.Fields(s), "")
	}
	for _, quote := range quoteSuffixes {
		if strings.HasSuffix(s, quote) && len(s) > len(quote) {
			return s[:len(s)-len(quote)] + "/" + quote
		}
	}
	return s
}

// Number parses a loosely formatted numeric field. Thousands separators,
// a trailing unit run and known currency tokens are stripped first.
// Returns 0 when nothing parseable remains.
func Number(raw string) float64 {
	s := strings.ReplaceAll(raw, ",", "")
	s = trailingUnit.ReplaceAllString(strings.TrimSpace(s), "")
	s = currencyTokens.ReplaceAllString(s, "")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// Value strips thousands separators and surrounding whitespace.
func Value(raw string) string {
	return strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
}

// Time normalizes a textual timestamp toward "YYYY-MM-DD HH:mm:ss".
// Empty input yields the current time. Input already starting with an
// ISO date is returned unchanged. A leading MM/DD/YYYY date part is
// rewritten with zero padding; anything else passes through trimmed.
func Time(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Now().Format("2006-01-02 15:04:05")
	}
	if isoDatePrefix.MatchString(trimmed) {
		return raw
	}

	datePart := trimmed
	timePart := ""
	if idx := strings.Index(trimmed, " "); idx >= 0 {
		datePart = trimmed[:idx]
		timePart = strings.TrimSpace(trimmed[idx+1:])
	}
	if !strings.Contains(datePart, "/") {
		return trimmed
	}

	fields := strings.Split(datePart, "/")
	if len(fields) != 3 {
		return raw
	}
	month, err1 := strconv.Atoi(fields[0])
	day, err2 := strconv.Atoi(fields[1])
	year, err3 := strconv.Atoi(fields[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return raw
	}
	if timePart == "" {
		timePart = "00:00:00"
	}
	return fmt.Sprintf("%04d-%02d-%02d %s", year, month, day, timePart)
}

// MonthKey derives the YYYY-MM grouping key from a normalized timestamp.
// Empty input yields the UNKNOWN sentinel; input shorter than seven
// characters is returned whole.
func MonthKey(dateStr string) string {
	if dateStr == "" {
		return "UNKNOWN"
	}
	if len(dateStr) < 7 {
		return dateStr
	}
	return dateStr[:7]
}
