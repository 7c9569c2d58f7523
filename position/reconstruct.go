package position

import (
	"fmt"
	"sort"

	"github.com/rustyeddy/tradebook/fills"
)

type stateKey struct {
	exchange   string
	symbol     string
	side       fills.Side
	marginMode string
}

func keyOf(f fills.Fill) stateKey {
	return stateKey{exchange: f.Exchange, symbol: f.Symbol, side: f.Side, marginMode: f.MarginMode}
}

// Reconstruct walks normalized fills and rebuilds position cycles per
// (exchange, symbol, side, margin mode). Each key moves Flat -> Open -> Flat;
// a ClosedTrade is emitted the instant the open quantity returns to zero, and
// keys still open at end-of-input surface as InProgress previews.
//
// Fills for a given key must arrive in non-decreasing timestamp order; the
// caller sorts before reconstruction, so no defensive re-sort happens here.
// The state table is freshly allocated per call, so concurrent calls over
// distinct inputs never share reconstruction state.
func Reconstruct(fs []fills.Fill) ([]ClosedTrade, []InProgress, []Warning) {
	states := make(map[stateKey]*state)
	var closed []ClosedTrade
	var warns []Warning

	for _, f := range fs {
		k := keyOf(f)
		switch f.Action {
		case fills.ActionOpen:
			st := states[k]
			if st == nil {
				st = newState(f)
				states[k] = st
			}
			st.addOpen(f)

		case fills.ActionClose:
			st := states[k]
			if st == nil {
				// No open basis exists for this key; starting a cycle from a
				// close alone would fabricate an entry.
				warns = append(warns, Warning{Symbol: f.Symbol, Side: f.Side, Time: f.Time,
					Reason: fmt.Sprintf("close of %s with no open position discarded", f.Quantity)})
				continue
			}
			matched := st.applyClose(f)
			// Overshoot within epsilon is rounding dust, not discarded data.
			if excess := f.Quantity.Sub(matched); excess.Cmp(qtyEpsilon) > 0 {
				warns = append(warns, Warning{Symbol: f.Symbol, Side: f.Side, Time: f.Time,
					Reason: fmt.Sprintf("close quantity exceeds open position; excess %s discarded", excess)})
			}
			if st.closed() {
				closed = append(closed, st.emitClosed())
				delete(states, k)
			}
		}
	}

	var open []InProgress
	for _, st := range states {
		if ip := st.emitInProgress(); ip != nil {
			open = append(open, *ip)
		}
	}

	sort.SliceStable(closed, func(i, j int) bool { return closed[i].EntryTime.Before(closed[j].EntryTime) })
	sort.SliceStable(open, func(i, j int) bool { return open[i].EntryTime.Before(open[j].EntryTime) })
	return closed, open, warns
}

// SortFills orders fills for reconstruction: grouped by key, then by time.
// Ties keep input order.
func SortFills(fs []fills.Fill) {
	sort.SliceStable(fs, func(i, j int) bool {
		a, b := fs[i], fs[j]
		if a.Exchange != b.Exchange {
			return a.Exchange < b.Exchange
		}
		if a.Symbol != b.Symbol {
			return a.Symbol < b.Symbol
		}
		if a.Side != b.Side {
			return a.Side < b.Side
		}
		if a.MarginMode != b.MarginMode {
			return a.MarginMode < b.MarginMode
		}
		return a.Time.Before(b.Time)
	})
}
