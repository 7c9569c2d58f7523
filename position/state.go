package position

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradebook/fills"
)

// qtyEpsilon absorbs rounding drift on the zero crossing: an open quantity
// within epsilon of zero is clamped to exactly zero. Direct equality would
// leave dust positions open forever.
var qtyEpsilon = decimal.New(1, -8) // 1e-8

func init() {
	// VWAP divisions carry 28 significant digits so drift cannot accumulate
	// across many fills.
	if decimal.DivisionPrecision < 28 {
		decimal.DivisionPrecision = 28
	}
}

// state is the per-key mutable record for one open-to-flat cycle.
// Key: (exchange, symbol, side, margin mode).
type state struct {
	exchange   string
	symbol     string
	side       fills.Side
	marginMode string
	leverage   string

	// Remaining open basis.
	remOpenQty  decimal.Decimal
	remOpenCost decimal.Decimal // sum(price*qty) not yet matched

	// Totals across the cycle.
	consumedEntryCost decimal.Decimal // entry cost attributed to matched quantity
	totalCloseQty     decimal.Decimal
	totalCloseCost    decimal.Decimal

	openFees  decimal.Decimal
	closeFees decimal.Decimal

	providedPnL decimal.Decimal
	pnlMissing  int // close fills without an exchange-reported pnl

	entryTime time.Time
	exitTime  time.Time
}

func newState(f fills.Fill) *state {
	return &state{
		exchange:   f.Exchange,
		symbol:     f.Symbol,
		side:       f.Side,
		marginMode: f.MarginMode,
		leverage:   f.Leverage,
	}
}

// entryVWAP is defined only while the position is open.
func (s *state) entryVWAP() decimal.Decimal {
	if s.remOpenQty.Cmp(qtyEpsilon) <= 0 {
		return decimal.Zero
	}
	return s.remOpenCost.Div(s.remOpenQty)
}

func (s *state) addOpen(f fills.Fill) {
	if s.remOpenQty.IsZero() && s.totalCloseQty.IsZero() {
		s.entryTime = f.Time
	}
	s.remOpenQty = s.remOpenQty.Add(f.Quantity)
	s.remOpenCost = s.remOpenCost.Add(f.Price.Mul(f.Quantity))
	s.openFees = s.openFees.Add(f.Fee)
	if s.marginMode == "" {
		s.marginMode = f.MarginMode
	}
	if s.leverage == "" {
		s.leverage = f.Leverage
	}
}

// applyClose matches a close fill against the remaining open basis and
// returns the quantity actually matched, capped at the open quantity. Fee and
// provided pnl are prorated by the matched share of the fill. When the open
// quantity lands within epsilon of zero it is clamped to exactly zero.
func (s *state) applyClose(f fills.Fill) decimal.Decimal {
	if s.remOpenQty.Cmp(qtyEpsilon) <= 0 {
		return decimal.Zero
	}

	matched := f.Quantity
	if matched.Cmp(s.remOpenQty) > 0 {
		matched = s.remOpenQty
	}

	consumed := s.entryVWAP().Mul(matched)
	s.consumedEntryCost = s.consumedEntryCost.Add(consumed)
	s.remOpenQty = s.remOpenQty.Sub(matched)
	s.remOpenCost = s.remOpenCost.Sub(consumed)

	s.totalCloseQty = s.totalCloseQty.Add(matched)
	s.totalCloseCost = s.totalCloseCost.Add(f.Price.Mul(matched))
	// Prorate by the matched share of the fill, multiplying before dividing
	// so fully-matched and evenly-divisible fills stay exact.
	s.closeFees = s.closeFees.Add(f.Fee.Mul(matched).Div(f.Quantity))

	if f.PnL != nil {
		s.providedPnL = s.providedPnL.Add(f.PnL.Mul(matched).Div(f.Quantity))
	} else {
		s.pnlMissing++
	}

	s.exitTime = f.Time

	if s.remOpenQty.Abs().Cmp(qtyEpsilon) <= 0 {
		s.remOpenQty = decimal.Zero
		s.remOpenCost = decimal.Zero
	}
	return matched
}

func (s *state) closed() bool {
	return s.remOpenQty.IsZero() && s.totalCloseQty.IsPositive()
}

// emitClosed builds the ClosedTrade for a completed cycle. If every close
// fill carried an exchange-reported pnl, their sum is the net result and fees
// are not subtracted again; otherwise pnl is derived from the VWAPs minus the
// cycle's total fees.
func (s *state) emitClosed() ClosedTrade {
	qty := s.totalCloseQty
	entryVWAP := s.consumedEntryCost.Div(qty)
	exitVWAP := s.totalCloseCost.Div(qty)
	feesTotal := s.openFees.Add(s.closeFees)

	var pnl decimal.Decimal
	source := PnLProvided
	if s.pnlMissing > 0 {
		gross := exitVWAP.Sub(entryVWAP).Mul(qty)
		if s.side == fills.SideShort {
			gross = entryVWAP.Sub(exitVWAP).Mul(qty)
		}
		pnl = gross.Sub(feesTotal)
		source = PnLCalculated
	} else {
		pnl = s.providedPnL
	}

	return ClosedTrade{
		Exchange:   s.exchange,
		Symbol:     s.symbol,
		Side:       s.side,
		Quantity:   qty,
		EntryPrice: entryVWAP,
		ExitPrice:  exitVWAP,
		EntryTime:  s.entryTime,
		ExitTime:   s.exitTime,
		PnL:        pnl,
		FeesTotal:  feesTotal,
		PnLSource:  source,
		MarginMode: s.marginMode,
		Leverage:   s.leverage,
	}
}

func (s *state) emitInProgress() *InProgress {
	if s.remOpenQty.Cmp(qtyEpsilon) <= 0 {
		return nil
	}
	return &InProgress{
		Exchange:     s.exchange,
		Symbol:       s.symbol,
		Side:         s.side,
		OpenQuantity: s.remOpenQty,
		EntryVWAP:    s.entryVWAP(),
		EntryTime:    s.entryTime,
		OpenFees:     s.openFees,
		MarginMode:   s.marginMode,
		Leverage:     s.leverage,
	}
}
