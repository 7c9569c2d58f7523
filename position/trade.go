package position

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradebook/fills"
)

// PnLSource records which branch produced a closed trade's PnL:
// "provided" sums the exchange-reported realized PnL of the close fills
// (already net of fees); "calculated" derives it from the entry/exit VWAPs
// minus the cycle's total fees.
const (
	PnLProvided   = "provided"
	PnLCalculated = "calculated"
)

// RiskSource values for the risk annotation on a closed trade.
const (
	RiskCalculated = "calculated"
	RiskManual     = "manual"
)

// ClosedTrade is a fully round-tripped position: net quantity returned to
// zero. Emitted exactly once, immutable thereafter; ownership passes to the
// persistence collaborator.
type ClosedTrade struct {
	Exchange   string
	Symbol     string
	Side       fills.Side
	Quantity   decimal.Decimal // total matched over the cycle
	EntryPrice decimal.Decimal // final entry VWAP
	ExitPrice  decimal.Decimal // final exit VWAP
	EntryTime  time.Time
	ExitTime   time.Time
	PnL        decimal.Decimal // net realized
	FeesTotal  decimal.Decimal
	PnLSource  string
	MarginMode string
	Leverage   string

	// Risk snapshot stamped at import time; empty when no risk configuration
	// was available. Never updated retroactively.
	MaxRiskPerTrade *decimal.Decimal
	RiskSource      string
}

// ID derives the trade's deterministic identity from symbol, entry time,
// quantity and entry price, so storage can de-duplicate against previously
// persisted trades across repeated imports of overlapping exports.
func (t *ClosedTrade) ID() string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%s",
		t.Symbol,
		t.EntryTime.UTC().Format(time.RFC3339Nano),
		t.Quantity.String(),
		t.EntryPrice.String(),
	)))
	return hex.EncodeToString(h[:])
}

// InProgress is a read-only projection of a position still open at
// end-of-input. Preview only; never persisted.
type InProgress struct {
	Exchange     string
	Symbol       string
	Side         fills.Side
	OpenQuantity decimal.Decimal
	EntryVWAP    decimal.Decimal
	EntryTime    time.Time
	OpenFees     decimal.Decimal
	MarginMode   string
	Leverage     string
}

// Warning records a fill the reconstructor had to discard: a close with no
// open basis, or the portion of a close exceeding the open quantity.
type Warning struct {
	Symbol string
	Side   fills.Side
	Time   time.Time
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s %s @ %s: %s", w.Symbol, w.Side, w.Time.Format(time.RFC3339), w.Reason)
}
