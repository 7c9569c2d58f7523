package journal

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rustyeddy/tradebook/position"
)

const tradeColumns = `trade_id, exchange, symbol, side, quantity, entry_price, exit_price,
	entry_time, exit_time, pnl, fees_total, pnl_source, margin_mode, leverage,
	max_risk_per_trade, risk_source`

// GetTrade returns a single trade record by its deterministic ID.
func (j *SQLite) GetTrade(tradeID string) (position.ClosedTrade, error) {
	row := j.db.QueryRow(`
		SELECT `+tradeColumns+`
		FROM trades
		WHERE trade_id = ?`, tradeID)

	t, err := scanTrade(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return position.ClosedTrade{}, fmt.Errorf("trade %q not found", tradeID)
		}
		return position.ClosedTrade{}, err
	}
	return t, nil
}

// ListTradesClosedBetween returns trades whose exit_time is within [start, end),
// oldest first.
func (j *SQLite) ListTradesClosedBetween(start, end time.Time) ([]position.ClosedTrade, error) {
	rows, err := j.db.Query(`
		SELECT `+tradeColumns+`
		FROM trades
		WHERE exit_time >= ? AND exit_time < ?
		ORDER BY exit_time ASC`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []position.ClosedTrade
	for rows.Next() {
		t, err := scanTrade(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
