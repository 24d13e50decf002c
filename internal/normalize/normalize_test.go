package normalize

import (
	"regexp"
	"strings"
	"testing"
)

func TestPair_SuffixSplit(t *testing.T) {
	// Lowercase token ending in a known quote is split and uppercased
	if got := Pair("ethusdt"); got != "ETH/USDT" {
		t.Errorf("expected ETH/USDT, got %q", got)
	}
	if got := Pair("btcusdc"); got != "BTC/USDC" {
		t.Errorf("expected BTC/USDC, got %q", got)
	}
	if got := Pair("solusd"); got != "SOL/USD" {
		t.Errorf("expected SOL/USD, got %q", got)
	}
}

func TestPair_ExistingSeparator(t *testing.T) {
	// A slash-form pair keeps its separator, whitespace removed
	if got := Pair("BTC/USDT "); got != "BTC/USDT" {
		t.Errorf("expected BTC/USDT, got %q", got)
	}
	if got := Pair("btc / usdt"); got != "BTC/USDT" {
		t.Errorf("expected BTC/USDT, got %q", got)
	}
}

func TestPair_ThousandsSeparators(t *testing.T) {
	if got := Pair("1,000PEPE/USDT"); got != "1000PEPE/USDT" {
		t.Errorf("expected 1000PEPE/USDT, got %q", got)
	}
}

func TestPair_NoSeparator(t *testing.T) {
	// No slash, no recognized suffix: returned uppercased as-is.
	// Callers are responsible for rejecting separator-less pairs.
	if got := Pair("details"); got != "DETAILS" {
		t.Errorf("expected DETAILS, got %q", got)
	}
	if got := Pair(""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
	// The token must be longer than the suffix itself
	if got := Pair("usdt"); got != "USDT" {
		t.Errorf("expected USDT, got %q", got)
	}
}

func TestNumber_CurrencyAndSeparators(t *testing.T) {
	if got := Number("1,234.5 USDT"); got != 1234.5 {
		t.Errorf("expected 1234.5, got %f", got)
	}
	if got := Number("0.5 eth"); got != 0.5 {
		t.Errorf("expected 0.5, got %f", got)
	}
	if got := Number("-12.75"); got != -12.75 {
		t.Errorf("expected -12.75, got %f", got)
	}
}

func TestNumber_Unparsable(t *testing.T) {
	if got := Number(""); got != 0 {
		t.Errorf("expected 0 for empty input, got %f", got)
	}
	if got := Number("abc"); got != 0 {
		t.Errorf("expected 0 for non-numeric input, got %f", got)
	}
}

func TestValue(t *testing.T) {
	if got := Value(" 1,234 "); got != "1234" {
		t.Errorf("expected 1234, got %q", got)
	}
}

func TestTime_SlashDateRewritten(t *testing.T) {
	if got := Time("01/15/2024 10:00:00"); got != "2024-01-15 10:00:00" {
		t.Errorf("expected 2024-01-15 10:00:00, got %q", got)
	}
	// Month and day are zero-padded, missing time defaults to midnight
	if got := Time("3/7/2024"); got != "2024-03-07 00:00:00" {
		t.Errorf("expected 2024-03-07 00:00:00, got %q", got)
	}
}

func TestTime_ISOPassthrough(t *testing.T) {
	if got := Time("2024-01-15"); got != "2024-01-15" {
		t.Errorf("expected unchanged ISO date, got %q", got)
	}
	if got := Time("2024-01-15 10:30:00"); got != "2024-01-15 10:30:00" {
		t.Errorf("expected unchanged ISO timestamp, got %q", got)
	}
}

func TestTime_EmptyYieldsNow(t *testing.T) {
	got := Time("")
	matched, err := regexp.MatchString(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`, got)
	if err != nil || !matched {
		t.Errorf("expected present-time timestamp, got %q", got)
	}
}

func TestTime_UnrecognizedPassthrough(t *testing.T) {
	// Anything that is neither ISO nor MM/DD/YYYY passes through trimmed
	if got := Time(" yesterday "); got != "yesterday" {
		t.Errorf("expected trimmed passthrough, got %q", got)
	}
}

func TestMonthKey(t *testing.T) {
	if got := MonthKey("2024-03-15"); got != "2024-03" {
		t.Errorf("expected 2024-03, got %q", got)
	}
	if got := MonthKey(""); got != "UNKNOWN" {
		t.Errorf("expected UNKNOWN, got %q", got)
	}
	if got := MonthKey("2024"); got != "2024" {
		t.Errorf("expected short input returned whole, got %q", got)
	}
}

func TestMonthKey_PrefixOfTime(t *testing.T) {
	// The grouping key is always a prefix of the normalized timestamp
	ts := Time("01/15/2024 10:00:00")
	if !strings.HasPrefix(ts, MonthKey(ts)) {
		t.Errorf("month key %q is not a prefix of %q", MonthKey(ts), ts)
	}
}
