package fills

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Action string

const (
	ActionOpen  Action = "open"
	ActionClose Action = "close"
)

type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

// Fill is one executed order row from an exchange export, normalized to the
// canonical schema. Immutable once produced: quantity and price are strictly
// positive decimals, the timestamp is UTC, and the symbol is uppercased.
type Fill struct {
	Exchange string
	Symbol   string
	Time     time.Time
	Action   Action
	Side     Side
	Price    decimal.Decimal
	Quantity decimal.Decimal
	Fee      decimal.Decimal
	PnL      *decimal.Decimal // only meaningful on close fills

	MarginMode string
	Leverage   string
	ReduceOnly *bool
	Status     string
}

// Warning records a single dropped or suspect row. Row is 1-based within the
// uploaded file (the header is row 1); Column is empty when the problem is
// not tied to one column.
type Warning struct {
	Row    int
	Column string
	Reason string
}

func (w Warning) String() string {
	if w.Column == "" {
		return fmt.Sprintf("row %d: %s", w.Row, w.Reason)
	}
	return fmt.Sprintf("row %d, column %q: %s", w.Row, w.Column, w.Reason)
}
