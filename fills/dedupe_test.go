package fills

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkFill(sym string, ts time.Time, action Action, side Side, price, qty, fee string) Fill {
	return Fill{
		Exchange: "Bitunix",
		Symbol:   sym,
		Time:     ts,
		Action:   action,
		Side:     side,
		Price:    decimal.RequireFromString(price),
		Quantity: decimal.RequireFromString(qty),
		Fee:      decimal.RequireFromString(fee),
		Status:   "Filled",
	}
}

func TestDedupeCollapsesFormattingNoise(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	a := mkFill("BTCUSDT", ts, ActionOpen, SideLong, "42000.5", "0.5", "0.21")
	// Same fill re-exported: trailing zeros, sub-second timestamp, status case.
	b := mkFill("BTCUSDT", ts.Add(300*time.Millisecond), ActionOpen, SideLong, "42000.500000", "0.50000000", "0.2100")
	b.Status = "FILLED"

	out, removed := Dedupe([]Fill{a, b})
	assert.Equal(t, 1, removed)
	require.Len(t, out, 1)
	assert.True(t, out[0].Price.Equal(a.Price), "first occurrence wins")
}

func TestDedupeIgnoresSymbolWhitespaceAndCase(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	a := mkFill("BTCUSDT", ts, ActionOpen, SideLong, "42000", "0.5", "0")
	b := mkFill("  btcusdt ", ts, ActionOpen, SideLong, "42000", "0.5", "0")

	out, removed := Dedupe([]Fill{a, b})
	assert.Equal(t, 1, removed)
	assert.Len(t, out, 1)
}

func TestDedupeIsIdempotent(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	in := []Fill{
		mkFill("BTCUSDT", ts, ActionOpen, SideLong, "42000", "0.5", "0"),
		mkFill("BTCUSDT", ts, ActionOpen, SideLong, "42000", "0.5", "0"),
		mkFill("BTCUSDT", ts.Add(time.Hour), ActionClose, SideLong, "43000", "0.5", "0"),
	}

	once, removed := Dedupe(in)
	assert.Equal(t, 1, removed)
	require.Len(t, once, 2)

	twice, removed := Dedupe(once)
	assert.Zero(t, removed)
	assert.Equal(t, once, twice)
}

func TestDedupeDistinguishesRealDifferences(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		b    Fill
	}{
		{"different price", mkFill("BTCUSDT", ts, ActionOpen, SideLong, "42000.000002", "0.5", "0")},
		{"different quantity", mkFill("BTCUSDT", ts, ActionOpen, SideLong, "42000", "0.50000002", "0")},
		{"different second", mkFill("BTCUSDT", ts.Add(time.Second), ActionOpen, SideLong, "42000", "0.5", "0")},
		{"different action", mkFill("BTCUSDT", ts, ActionClose, SideLong, "42000", "0.5", "0")},
		{"different side", mkFill("BTCUSDT", ts, ActionOpen, SideShort, "42000", "0.5", "0")},
		{"different symbol", mkFill("ETHUSDT", ts, ActionOpen, SideLong, "42000", "0.5", "0")},
	}

	a := mkFill("BTCUSDT", ts, ActionOpen, SideLong, "42000", "0.5", "0")
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out, removed := Dedupe([]Fill{a, tt.b})
			assert.Zero(t, removed)
			assert.Len(t, out, 2)
		})
	}
}

func TestDedupePreservesFirstSeenOrder(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	in := []Fill{
		mkFill("ETHUSDT", ts.Add(2*time.Hour), ActionOpen, SideLong, "2500", "1", "0"),
		mkFill("BTCUSDT", ts, ActionOpen, SideLong, "42000", "0.5", "0"),
		mkFill("ETHUSDT", ts.Add(2*time.Hour), ActionOpen, SideLong, "2500", "1", "0"),
		mkFill("BTCUSDT", ts.Add(time.Hour), ActionClose, SideLong, "43000", "0.5", "0"),
	}

	out, removed := Dedupe(in)
	assert.Equal(t, 1, removed)
	require.Len(t, out, 3)
	assert.Equal(t, "ETHUSDT", out[0].Symbol)
	assert.Equal(t, "BTCUSDT", out[1].Symbol)
	assert.Equal(t, ActionClose, out[2].Action)
}
