package fills

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Leading signed decimal token. Exports often append a unit suffix to numeric
// cells ("1234.5 USDT", "0.003BTC"); everything after the numeric portion is
// truncated.
var numberRe = regexp.MustCompile(`^\s*([-+]?\d+(?:\.\d+)?)`)

func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	m := numberRe.FindStringSubmatch(s)
	if m == nil {
		return decimal.Decimal{}, fmt.Errorf("invalid decimal %q", s)
	}
	return decimal.NewFromString(m[1])
}

// timeFormats is the ordered candidate list; the first format that parses
// wins. Zone-carrying formats come first so an explicit offset is honored
// before the zone-less fallbacks assume UTC.
var timeFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"2006/01/02 15:04:05",
	"2006/01/02",
}

// parseTime normalizes to UTC with no zone semantics retained: zone-less
// timestamps are read as UTC, zoned ones are converted.
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("missing timestamp")
	}
	for _, layout := range timeFormats {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

// canonSymbol collapses internal whitespace and uppercases.
func canonSymbol(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

func truthy(s string) (val, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "true", "1":
		return true, true
	case "n", "no", "false", "0", "":
		return false, true
	}
	return false, false
}
