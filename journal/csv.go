package journal

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rustyeddy/tradebook/position"
)

// CSVJournal is the flat-file Store backend: closed trades appended to a CSV
// file, audit records appended as JSON lines. Unlike SQLite it cannot look up
// previously persisted trades, so SaveTrades dedupes only within the process
// lifetime and the read operations report unsupported.
type CSVJournal struct {
	trades *csv.Writer
	tf, af *os.File
	seen   map[string]bool
}

var tradeHeader = []string{
	"trade_id", "exchange", "symbol", "side", "quantity", "entry_price", "exit_price",
	"entry_time", "exit_time", "pnl", "fees_total", "pnl_source", "margin_mode",
	"leverage", "max_risk_per_trade", "risk_source",
}

func NewCSV(tradesPath, auditPath string) (*CSVJournal, error) {
	tf, err := os.OpenFile(tradesPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	af, err := os.OpenFile(auditPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		tf.Close()
		return nil, err
	}

	tw := csv.NewWriter(tf)

	fi, err := tf.Stat()
	if err != nil {
		tf.Close()
		af.Close()
		return nil, err
	}
	if fi.Size() == 0 {
		if err := tw.Write(tradeHeader); err != nil {
			tf.Close()
			af.Close()
			return nil, err
		}
		tw.Flush()
		if err := tw.Error(); err != nil {
			tf.Close()
			af.Close()
			return nil, err
		}
	}

	return &CSVJournal{trades: tw, tf: tf, af: af, seen: make(map[string]bool)}, nil
}

func (j *CSVJournal) SaveTrades(trades []position.ClosedTrade) (int, error) {
	inserted := 0
	for _, t := range trades {
		id := t.ID()
		if j.seen[id] {
			continue
		}
		maxRisk := ""
		if t.MaxRiskPerTrade != nil {
			maxRisk = t.MaxRiskPerTrade.String()
		}
		err := j.trades.Write([]string{
			id,
			t.Exchange,
			t.Symbol,
			string(t.Side),
			t.Quantity.String(),
			t.EntryPrice.String(),
			t.ExitPrice.String(),
			t.EntryTime.UTC().Format(time.RFC3339),
			t.ExitTime.UTC().Format(time.RFC3339),
			t.PnL.String(),
			t.FeesTotal.String(),
			t.PnLSource,
			t.MarginMode,
			t.Leverage,
			maxRisk,
			t.RiskSource,
		})
		if err != nil {
			return inserted, err
		}
		j.seen[id] = true
		inserted++
	}
	j.trades.Flush()
	return inserted, j.trades.Error()
}

func (j *CSVJournal) RecordImport(rec ImportRecord) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = j.af.Write(append(line, '\n'))
	return err
}

func (j *CSVJournal) GetTrade(id string) (position.ClosedTrade, error) {
	return position.ClosedTrade{}, fmt.Errorf("csv journal: trade lookup not supported")
}

func (j *CSVJournal) ListTradesClosedBetween(start, end time.Time) ([]position.ClosedTrade, error) {
	return nil, fmt.Errorf("csv journal: trade queries not supported")
}

// LastImportTime scans the JSONL audit file for the newest max_fill_time of
// the given exchange/account pair.
func (j *CSVJournal) LastImportTime(exchange, accountLabel string) (time.Time, error) {
	data, err := os.ReadFile(j.af.Name())
	if err != nil {
		return time.Time{}, err
	}

	var last time.Time
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var rec ImportRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		if rec.Exchange != exchange || rec.AccountLabel != accountLabel {
			continue
		}
		if rec.MaxFillTime.After(last) {
			last = rec.MaxFillTime
		}
	}
	return last, nil
}

func (j *CSVJournal) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	if err := j.tf.Close(); err != nil {
		return err
	}
	return j.af.Close()
}
