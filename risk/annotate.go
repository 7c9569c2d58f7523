package risk

import (
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradebook/position"
)

var hundred = decimal.NewFromInt(100)

// Config is the risk configuration snapshot used to annotate a run's trades.
// RiskPercent is expressed as a percentage (1.0 = 1% of the portfolio).
type Config struct {
	PortfolioSize decimal.Decimal `json:"portfolio_size" yaml:"portfolio_size"`
	RiskPercent   decimal.Decimal `json:"risk_percent" yaml:"risk_percent"`
}

// Complete reports whether both values are present and usable.
func (c *Config) Complete() bool {
	return c != nil && c.PortfolioSize.IsPositive() && c.RiskPercent.IsPositive()
}

// MaxRisk returns the maximum tolerated loss per trade:
// portfolio size x risk percent / 100.
func (c *Config) MaxRisk() decimal.Decimal {
	return c.PortfolioSize.Mul(c.RiskPercent).Div(hundred)
}

// Annotate stamps the point-in-time risk threshold onto a closed trade.
// With no complete configuration the trade is left unannotated. Pure aside
// from the mutation of t; later configuration changes never retroactively
// touch previously annotated trades.
func Annotate(t *position.ClosedTrade, c *Config) {
	if !c.Complete() {
		return
	}
	maxRisk := c.MaxRisk()
	t.MaxRiskPerTrade = &maxRisk
	t.RiskSource = position.RiskCalculated
}
