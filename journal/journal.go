// Package journal persists closed trades and per-run import audit records,
// with SQLite and flat-file CSV backends.
package journal

import (
	"time"

	"github.com/rustyeddy/tradebook/position"
	"github.com/rustyeddy/tradebook/risk"
)

// ImportRecord is the append-only audit record written once per import run.
type ImportRecord struct {
	ImportID     string    `json:"import_id"`
	Timestamp    time.Time `json:"timestamp"`
	Exchange     string    `json:"exchange"`
	AccountLabel string    `json:"account_label,omitempty"`

	FileName   string `json:"file_name"`
	FileSize   int64  `json:"file_size"`
	FileSHA256 string `json:"file_sha256"`

	TotalRows         int `json:"total_rows"`
	FillsAfterDedupe  int `json:"fills_after_dedupe"`
	DuplicatesRemoved int `json:"duplicates_removed"`
	ClosedEmitted     int `json:"closed_emitted"`
	WarningCount      int `json:"warning_count"`

	// Risk snapshot used for annotation during this run, if any.
	RiskSnapshot *risk.Config `json:"risk_snapshot,omitempty"`

	// Latest fill timestamp processed; lets later imports of overlapping
	// exports from the same account be flagged.
	MaxFillTime time.Time `json:"max_fill_time,omitempty"`
}

// Store persists closed trades and audit records. Implementations must make
// SaveTrades idempotent on the trade's deterministic ID so re-imports of
// overlapping exports cannot duplicate trades. Serializing concurrent writers
// is the store's concern, not the import pipeline's.
type Store interface {
	// SaveTrades persists trades, skipping any whose ID already exists.
	// Returns the number actually inserted.
	SaveTrades(trades []position.ClosedTrade) (int, error)
	GetTrade(id string) (position.ClosedTrade, error)
	ListTradesClosedBetween(start, end time.Time) ([]position.ClosedTrade, error)

	RecordImport(rec ImportRecord) error
	// LastImportTime returns the newest MaxFillTime recorded for an
	// exchange/account pair, or the zero time when none exists.
	LastImportTime(exchange, accountLabel string) (time.Time, error)

	Close() error
}
