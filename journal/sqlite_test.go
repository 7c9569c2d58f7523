package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradebook/fills"
	"github.com/rustyeddy/tradebook/position"
	"github.com/rustyeddy/tradebook/risk"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testTrade(symbol string, entry time.Time) position.ClosedTrade {
	maxRisk := d("10")
	return position.ClosedTrade{
		Exchange:        "Bitunix",
		Symbol:          symbol,
		Side:            fills.SideLong,
		Quantity:        d("0.5"),
		EntryPrice:      d("42000.5"),
		ExitPrice:       d("43100.25"),
		EntryTime:       entry,
		ExitTime:        entry.Add(2 * time.Hour),
		PnL:             d("549.875"),
		FeesTotal:       d("2.1"),
		PnLSource:       position.PnLCalculated,
		MarginMode:      "cross",
		Leverage:        "10",
		MaxRiskPerTrade: &maxRisk,
		RiskSource:      position.RiskCalculated,
	}
}

func openTestDB(t *testing.T) *SQLite {
	t.Helper()
	j, err := NewSQLite(filepath.Join(t.TempDir(), "tradebook.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestSQLiteSaveAndGetTrade(t *testing.T) {
	t.Parallel()

	j := openTestDB(t)
	entry := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	tr := testTrade("BTCUSDT", entry)

	n, err := j.SaveTrades([]position.ClosedTrade{tr})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := j.GetTrade(tr.ID())
	require.NoError(t, err)

	assert.Equal(t, tr.Symbol, got.Symbol)
	assert.Equal(t, tr.Side, got.Side)
	assert.True(t, got.Quantity.Equal(tr.Quantity))
	assert.True(t, got.EntryPrice.Equal(tr.EntryPrice), "decimal round-trips exactly")
	assert.True(t, got.ExitPrice.Equal(tr.ExitPrice))
	assert.True(t, got.PnL.Equal(tr.PnL))
	assert.True(t, got.FeesTotal.Equal(tr.FeesTotal))
	assert.Equal(t, tr.PnLSource, got.PnLSource)
	assert.Equal(t, "cross", got.MarginMode)
	require.NotNil(t, got.MaxRiskPerTrade)
	assert.True(t, got.MaxRiskPerTrade.Equal(d("10")))
	assert.Equal(t, position.RiskCalculated, got.RiskSource)
	assert.True(t, got.EntryTime.Equal(entry))
}

func TestSQLiteSaveTradesIdempotent(t *testing.T) {
	t.Parallel()

	j := openTestDB(t)
	entry := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	tr := testTrade("BTCUSDT", entry)

	n, err := j.SaveTrades([]position.ClosedTrade{tr})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Re-import of an overlapping export produces the same deterministic ID.
	n, err = j.SaveTrades([]position.ClosedTrade{tr, testTrade("ETHUSDT", entry)})
	require.NoError(t, err)
	assert.Equal(t, 1, n, "only the new trade inserts")
}

func TestSQLiteGetTradeNotFound(t *testing.T) {
	t.Parallel()

	j := openTestDB(t)
	_, err := j.GetTrade("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteListTradesClosedBetween(t *testing.T) {
	t.Parallel()

	j := openTestDB(t)
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	early := testTrade("BTCUSDT", base)                   // exits base+2h
	late := testTrade("ETHUSDT", base.Add(48*time.Hour))  // exits two days later

	_, err := j.SaveTrades([]position.ClosedTrade{late, early})
	require.NoError(t, err)

	got, err := j.ListTradesClosedBetween(base, base.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "BTCUSDT", got[0].Symbol)

	all, err := j.ListTradesClosedBetween(base, base.Add(96*time.Hour))
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "BTCUSDT", all[0].Symbol, "oldest exit first")
}

func TestSQLiteImportAudit(t *testing.T) {
	t.Parallel()

	j := openTestDB(t)
	maxFill := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)

	rec := ImportRecord{
		ImportID:          "01HTEST",
		Timestamp:         time.Date(2024, 1, 6, 9, 0, 0, 0, time.UTC),
		Exchange:          "Bitunix",
		AccountLabel:      "main",
		FileName:          "export.csv",
		FileSize:          1234,
		FileSHA256:        "abc123",
		TotalRows:         100,
		FillsAfterDedupe:  90,
		DuplicatesRemoved: 10,
		ClosedEmitted:     7,
		WarningCount:      3,
		RiskSnapshot:      &risk.Config{PortfolioSize: d("1000"), RiskPercent: d("1")},
		MaxFillTime:       maxFill,
	}
	require.NoError(t, j.RecordImport(rec))

	last, err := j.LastImportTime("Bitunix", "main")
	require.NoError(t, err)
	assert.True(t, last.Equal(maxFill))

	// Different account partition sees nothing.
	last, err = j.LastImportTime("Bitunix", "other")
	require.NoError(t, err)
	assert.True(t, last.IsZero())
}

func TestSQLiteLastImportTimePicksNewest(t *testing.T) {
	t.Parallel()

	j := openTestDB(t)
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(72 * time.Hour)

	for i, ts := range []time.Time{newer, older} {
		require.NoError(t, j.RecordImport(ImportRecord{
			ImportID:    string(rune('A' + i)),
			Timestamp:   ts,
			Exchange:    "Blofin",
			FileName:    "export.csv",
			MaxFillTime: ts,
		}))
	}

	last, err := j.LastImportTime("Blofin", "")
	require.NoError(t, err)
	assert.True(t, last.Equal(newer))
}
