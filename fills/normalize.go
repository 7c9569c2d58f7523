package fills

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradebook/exchange"
)

// Normalize converts raw export rows into canonical Fills per the matched
// profile. Every row yields either a Fill or a Warning; a single bad row never
// aborts the batch. Warnings carry the 1-based file row number (header is row
// 1, so the first data row of a whole-file call is row 2 when rowOffset is 1).
func Normalize(p *exchange.Profile, header []string, rows [][]string, rowOffset int) ([]Fill, []Warning) {
	idx := columnIndex(header)
	var out []Fill
	var warns []Warning

	for i, row := range rows {
		rowNum := rowOffset + i + 1
		f, warn := normalizeRow(p, idx, row, rowNum)
		if warn != nil {
			warns = append(warns, *warn)
			continue
		}
		if f != nil {
			out = append(out, *f)
		}
	}
	return out, warns
}

func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[exchange.NormalizeHeader(h)] = i
	}
	return idx
}

func cell(row []string, idx map[string]int, col string) (string, bool) {
	if col == "" {
		return "", false
	}
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return "", false
	}
	return row[i], true
}

// normalizeRow returns (fill, nil) for a kept row, (nil, nil) for a silently
// ignorable empty row, and (nil, warning) for a dropped one.
func normalizeRow(p *exchange.Profile, idx map[string]int, row []string, rowNum int) (*Fill, *Warning) {
	if blankRow(row) {
		return nil, nil
	}

	status, _ := cell(row, idx, p.Fields.Status)
	status = strings.TrimSpace(status)
	if !strings.EqualFold(status, "filled") {
		return nil, &Warning{Row: rowNum, Column: p.Fields.Status,
			Reason: fmt.Sprintf("status %q is not filled", status)}
	}

	qtyRaw, _ := cell(row, idx, p.Fields.Quantity)
	qty, err := parseDecimal(qtyRaw)
	if err != nil {
		return nil, &Warning{Row: rowNum, Column: p.Fields.Quantity, Reason: err.Error()}
	}
	if !qty.IsPositive() {
		return nil, &Warning{Row: rowNum, Column: p.Fields.Quantity,
			Reason: fmt.Sprintf("quantity %s is not positive", qty)}
	}

	priceRaw, _ := cell(row, idx, p.Fields.Price)
	price, err := parseDecimal(priceRaw)
	if err != nil {
		return nil, &Warning{Row: rowNum, Column: p.Fields.Price, Reason: err.Error()}
	}
	if !price.IsPositive() {
		return nil, &Warning{Row: rowNum, Column: p.Fields.Price,
			Reason: fmt.Sprintf("price %s is not positive", price)}
	}

	timeRaw, _ := cell(row, idx, p.Fields.Time)
	ts, err := parseTime(timeRaw)
	if err != nil {
		return nil, &Warning{Row: rowNum, Column: p.Fields.Time, Reason: err.Error()}
	}

	symRaw, _ := cell(row, idx, p.Fields.Symbol)
	symbol := canonSymbol(symRaw)
	if symbol == "" {
		return nil, &Warning{Row: rowNum, Column: p.Fields.Symbol, Reason: "missing symbol"}
	}

	var reduceOnly *bool
	if raw, ok := cell(row, idx, p.Fields.ReduceOnly); ok {
		if v, valid := truthy(raw); valid {
			reduceOnly = &v
		}
	}

	sideRaw, _ := cell(row, idx, p.Fields.Side)
	action, side, err := deriveActionSide(sideRaw, p.Rule, reduceOnly)
	if err != nil {
		return nil, &Warning{Row: rowNum, Column: p.Fields.Side, Reason: err.Error()}
	}

	fee := decimal.Zero
	if raw, ok := cell(row, idx, p.Fields.Fee); ok && strings.TrimSpace(raw) != "" {
		// Fee is optional; an unparseable fee degrades to zero rather than
		// dropping an otherwise valid fill.
		if v, err := parseDecimal(raw); err == nil {
			fee = v
		}
	}

	var pnl *decimal.Decimal
	if raw, ok := cell(row, idx, p.Fields.PnL); ok && strings.TrimSpace(raw) != "" {
		if v, err := parseDecimal(raw); err == nil {
			pnl = &v
		}
	}

	f := &Fill{
		Exchange:   p.Exchange,
		Symbol:     symbol,
		Time:       ts,
		Action:     action,
		Side:       side,
		Price:      price,
		Quantity:   qty,
		Fee:        fee,
		PnL:        pnl,
		ReduceOnly: reduceOnly,
		Status:     status,
	}
	if raw, ok := cell(row, idx, p.Fields.MarginMode); ok {
		f.MarginMode = strings.TrimSpace(raw)
	}
	if raw, ok := cell(row, idx, p.Fields.Leverage); ok {
		f.Leverage = strings.TrimSpace(raw)
	}
	return f, nil
}

// deriveActionSide maps the export's side label to (action, position side).
// The label carries an open/close token and a long/short token ("Open Long",
// "close short(sl)"). A truthy reduce-only flag forces close regardless of
// the label. Profiles with InvertOnClose label the order direction on close
// fills, so the position side flips there.
func deriveActionSide(label string, rule exchange.SideRule, reduceOnly *bool) (Action, Side, error) {
	s := strings.ToLower(strings.TrimSpace(label))

	var action Action
	switch {
	case strings.Contains(s, "open"):
		action = ActionOpen
	case strings.Contains(s, "close"):
		action = ActionClose
	default:
		return "", "", fmt.Errorf("unrecognized side value %q", label)
	}

	var side Side
	switch {
	case strings.Contains(s, "long"):
		side = SideLong
	case strings.Contains(s, "short"):
		side = SideShort
	default:
		return "", "", fmt.Errorf("unrecognized side value %q", label)
	}

	if action == ActionClose && rule.InvertOnClose {
		if side == SideLong {
			side = SideShort
		} else {
			side = SideLong
		}
	}

	if reduceOnly != nil && *reduceOnly {
		action = ActionClose
	}
	return action, side, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
