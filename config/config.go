package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/tradebook/risk"
)

// Config is the complete tradebook configuration.
type Config struct {
	Account AccountConfig `json:"account" yaml:"account"`
	Risk    RiskConfig    `json:"risk" yaml:"risk"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
}

// AccountConfig labels which account an import belongs to. The label is
// free-form and only partitions audit records.
type AccountConfig struct {
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// RiskConfig holds the risk settings a run's trades are annotated with.
// RiskPercent is a percentage of the portfolio (1.0 = 1%). Both values are
// optional; with either missing, imported trades carry no risk annotation.
type RiskConfig struct {
	PortfolioSize decimal.Decimal `json:"portfolio_size,omitempty" yaml:"portfolio_size,omitempty"`
	RiskPercent   decimal.Decimal `json:"risk_percent,omitempty" yaml:"risk_percent,omitempty"`
}

// JournalConfig selects the persistence backend.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "sqlite" or "csv"
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	AuditFile  string `json:"audit_file,omitempty" yaml:"audit_file,omitempty"`
}

// LoadFromFile loads configuration from a file (YAML or JSON).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Risk.PortfolioSize.IsNegative() {
		return fmt.Errorf("risk.portfolio_size must not be negative")
	}
	if c.Risk.RiskPercent.IsNegative() || c.Risk.RiskPercent.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("risk.risk_percent must be between 0 and 100")
	}
	switch c.Journal.Type {
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal.db_path required for sqlite type")
		}
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.AuditFile == "" {
			return fmt.Errorf("journal trades_file and audit_file required for csv type")
		}
	default:
		return fmt.Errorf("journal.type must be 'sqlite' or 'csv'")
	}
	return nil
}

// RiskSnapshot returns the point-in-time risk configuration for an import
// run, or nil when the settings are incomplete.
func (c *Config) RiskSnapshot() *risk.Config {
	snap := &risk.Config{
		PortfolioSize: c.Risk.PortfolioSize,
		RiskPercent:   c.Risk.RiskPercent,
	}
	if !snap.Complete() {
		return nil
	}
	return snap
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./tradebook.sqlite",
		},
	}
}
