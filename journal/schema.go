package journal

// Decimal columns are stored as TEXT: the pipeline's exact-decimal values
// must round-trip without binary float drift.
const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	exchange TEXT NOT NULL,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	quantity TEXT NOT NULL,
	entry_price TEXT NOT NULL,
	exit_price TEXT NOT NULL,
	entry_time DATETIME NOT NULL,
	exit_time DATETIME NOT NULL,
	pnl TEXT NOT NULL,
	fees_total TEXT NOT NULL,
	pnl_source TEXT NOT NULL,
	margin_mode TEXT NOT NULL DEFAULT '',
	leverage TEXT NOT NULL DEFAULT '',
	max_risk_per_trade TEXT,
	risk_source TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_trades_exit_time ON trades(exit_time);
CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(symbol);

CREATE TABLE IF NOT EXISTS imports (
	import_id TEXT PRIMARY KEY,
	timestamp DATETIME NOT NULL,
	exchange TEXT NOT NULL,
	account_label TEXT NOT NULL DEFAULT '',
	file_name TEXT NOT NULL,
	file_size INTEGER NOT NULL,
	file_sha256 TEXT NOT NULL,
	total_rows INTEGER NOT NULL,
	fills_after_dedupe INTEGER NOT NULL,
	duplicates_removed INTEGER NOT NULL,
	closed_emitted INTEGER NOT NULL,
	warning_count INTEGER NOT NULL,
	portfolio_size TEXT,
	risk_percent TEXT,
	max_fill_time DATETIME
);

CREATE INDEX IF NOT EXISTS idx_imports_exchange ON imports(exchange, account_label);
`
