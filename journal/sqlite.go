package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradebook/fills"
	"github.com/rustyeddy/tradebook/position"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

// SaveTrades inserts trades, keying on the deterministic trade ID. Trades
// already present are skipped, which gives storage-side dedup for re-imports
// of overlapping exports.
func (j *SQLite) SaveTrades(trades []position.ClosedTrade) (int, error) {
	tx, err := j.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO trades
		(trade_id, exchange, symbol, side, quantity, entry_price, exit_price,
		 entry_time, exit_time, pnl, fees_total, pnl_source, margin_mode, leverage,
		 max_risk_per_trade, risk_source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for _, t := range trades {
		var maxRisk any
		if t.MaxRiskPerTrade != nil {
			maxRisk = t.MaxRiskPerTrade.String()
		}
		res, err := stmt.Exec(
			t.ID(), t.Exchange, t.Symbol, string(t.Side),
			t.Quantity.String(), t.EntryPrice.String(), t.ExitPrice.String(),
			t.EntryTime.UTC(), t.ExitTime.UTC(),
			t.PnL.String(), t.FeesTotal.String(), t.PnLSource,
			t.MarginMode, t.Leverage, maxRisk, t.RiskSource,
		)
		if err != nil {
			return inserted, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, err
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

func (j *SQLite) RecordImport(rec ImportRecord) error {
	var portfolioSize, riskPercent any
	if rec.RiskSnapshot != nil {
		portfolioSize = rec.RiskSnapshot.PortfolioSize.String()
		riskPercent = rec.RiskSnapshot.RiskPercent.String()
	}
	var maxFill any
	if !rec.MaxFillTime.IsZero() {
		maxFill = rec.MaxFillTime.UTC()
	}
	_, err := j.db.Exec(`
		INSERT INTO imports
		(import_id, timestamp, exchange, account_label, file_name, file_size, file_sha256,
		 total_rows, fills_after_dedupe, duplicates_removed, closed_emitted, warning_count,
		 portfolio_size, risk_percent, max_fill_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ImportID, rec.Timestamp.UTC(), rec.Exchange, rec.AccountLabel,
		rec.FileName, rec.FileSize, rec.FileSHA256,
		rec.TotalRows, rec.FillsAfterDedupe, rec.DuplicatesRemoved,
		rec.ClosedEmitted, rec.WarningCount,
		portfolioSize, riskPercent, maxFill,
	)
	return err
}

func (j *SQLite) LastImportTime(exchange, accountLabel string) (time.Time, error) {
	row := j.db.QueryRow(`
		SELECT max_fill_time FROM imports
		WHERE exchange = ? AND account_label = ? AND max_fill_time IS NOT NULL
		ORDER BY max_fill_time DESC LIMIT 1`, exchange, accountLabel)

	var t time.Time
	if err := row.Scan(&t); err != nil {
		if err == sql.ErrNoRows {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

// scanTrade reads one trades row; decimals come back from their TEXT columns
// exactly as stored.
func scanTrade(scan func(dest ...any) error) (position.ClosedTrade, error) {
	var t position.ClosedTrade
	var id, side string
	var qty, entryPrice, exitPrice, pnl, fees string
	var maxRisk sql.NullString
	if err := scan(
		&id, &t.Exchange, &t.Symbol, &side, &qty, &entryPrice, &exitPrice,
		&t.EntryTime, &t.ExitTime, &pnl, &fees, &t.PnLSource,
		&t.MarginMode, &t.Leverage, &maxRisk, &t.RiskSource,
	); err != nil {
		return position.ClosedTrade{}, err
	}

	t.Side = fills.Side(side)
	var err error
	if t.Quantity, err = decimal.NewFromString(qty); err != nil {
		return position.ClosedTrade{}, fmt.Errorf("trade %s: bad quantity %q", id, qty)
	}
	if t.EntryPrice, err = decimal.NewFromString(entryPrice); err != nil {
		return position.ClosedTrade{}, fmt.Errorf("trade %s: bad entry_price %q", id, entryPrice)
	}
	if t.ExitPrice, err = decimal.NewFromString(exitPrice); err != nil {
		return position.ClosedTrade{}, fmt.Errorf("trade %s: bad exit_price %q", id, exitPrice)
	}
	if t.PnL, err = decimal.NewFromString(pnl); err != nil {
		return position.ClosedTrade{}, fmt.Errorf("trade %s: bad pnl %q", id, pnl)
	}
	if t.FeesTotal, err = decimal.NewFromString(fees); err != nil {
		return position.ClosedTrade{}, fmt.Errorf("trade %s: bad fees_total %q", id, fees)
	}
	if maxRisk.Valid {
		v, err := decimal.NewFromString(maxRisk.String)
		if err != nil {
			return position.ClosedTrade{}, fmt.Errorf("trade %s: bad max_risk_per_trade %q", id, maxRisk.String)
		}
		t.MaxRiskPerTrade = &v
	}
	t.EntryTime = t.EntryTime.UTC()
	t.ExitTime = t.ExitTime.UTC()
	return t, nil
}
