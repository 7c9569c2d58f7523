package risk

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradebook/position"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAnnotateCalculated(t *testing.T) {
	t.Parallel()

	cfg := &Config{PortfolioSize: d("1000"), RiskPercent: d("1.0")}
	tr := position.ClosedTrade{Symbol: "BTCUSDT"}

	Annotate(&tr, cfg)

	require.NotNil(t, tr.MaxRiskPerTrade)
	assert.True(t, tr.MaxRiskPerTrade.Equal(d("10")), "1000 x 1.0 / 100, got %s", tr.MaxRiskPerTrade)
	assert.Equal(t, position.RiskCalculated, tr.RiskSource)
}

func TestAnnotateWithoutConfigLeavesTradeUntouched(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  *Config
	}{
		{"nil config", nil},
		{"zero portfolio", &Config{RiskPercent: d("1.0")}},
		{"zero percent", &Config{PortfolioSize: d("1000")}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tr := position.ClosedTrade{Symbol: "BTCUSDT"}
			Annotate(&tr, tt.cfg)
			assert.Nil(t, tr.MaxRiskPerTrade)
			assert.Empty(t, tr.RiskSource)
		})
	}
}

func TestAnnotateIsSnapshot(t *testing.T) {
	t.Parallel()

	cfg := &Config{PortfolioSize: d("1000"), RiskPercent: d("2")}
	tr := position.ClosedTrade{Symbol: "BTCUSDT"}
	Annotate(&tr, cfg)

	// Later configuration changes must not reach already annotated trades.
	cfg.RiskPercent = d("5")
	require.NotNil(t, tr.MaxRiskPerTrade)
	assert.True(t, tr.MaxRiskPerTrade.Equal(d("20")))
}

func TestMaxRiskFractionalPercent(t *testing.T) {
	t.Parallel()

	cfg := &Config{PortfolioSize: d("25000"), RiskPercent: d("0.5")}
	assert.True(t, cfg.MaxRisk().Equal(d("125")))
}
