package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/tradebook/config"
	"github.com/rustyeddy/tradebook/journal"
)

type rootOptions struct {
	configPath string
	dbPath     string
	logLevel   string

	cfg *config.Config
	log *zap.Logger
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "tradebook",
		Short:         "Tradebook imports exchange exports and journals closed trades",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global / persistent flags
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config file (optional)")
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite journal database (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level: debug|info|warn|error")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// A .env beside the binary may carry TRADEBOOK_CONFIG; absence is fine.
		_ = godotenv.Load()

		log, err := buildLogger(opts.logLevel)
		if err != nil {
			return err
		}
		opts.log = log

		path := opts.configPath
		if path == "" {
			path = os.Getenv("TRADEBOOK_CONFIG")
		}
		if path != "" {
			cfg, err := config.LoadFromFile(path)
			if err != nil {
				return err
			}
			opts.cfg = cfg
		} else {
			opts.cfg = config.Default()
		}
		if opts.dbPath != "" {
			opts.cfg.Journal.Type = "sqlite"
			opts.cfg.Journal.DBPath = opts.dbPath
		}
		return nil
	}

	// Subcommands
	cmd.AddCommand(
		newImportCmd(opts),
		newTradesCmd(opts),
	)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("tradebook (dev)")
		},
	})

	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	return cfg.Build()
}

func openStore(cfg *config.Config) (journal.Store, error) {
	switch cfg.Journal.Type {
	case "csv":
		return journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.AuditFile)
	default:
		return journal.NewSQLite(cfg.Journal.DBPath)
	}
}
