package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradebook/importer"
	"github.com/rustyeddy/tradebook/uploads"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	var (
		exchangeName string
		account      string
		dryRun       bool
	)

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import an exchange transaction/order-history export",
		Long: `Import reads a transaction/order-history export (.csv, optionally inside
.zip/.gz/.xz), reconstructs closed trades from the individual fills, and
persists them to the journal. Re-importing an overlapping export is safe:
duplicate fills and previously persisted trades are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			data, err := uploads.Read(path)
			if err != nil {
				return err
			}
			sum, size, err := uploads.Fingerprint(path)
			if err != nil {
				return err
			}

			var imp *importer.Importer
			if dryRun {
				imp = importer.New(nil, opts.log)
			} else {
				s, err := openStore(opts.cfg)
				if err != nil {
					return err
				}
				defer s.Close()
				imp = importer.New(s, opts.log)
			}

			acct := account
			if acct == "" {
				acct = opts.cfg.Account.Label
			}

			res, err := imp.Run(importer.Request{
				Data:         data,
				FileName:     filepath.Base(path),
				FileSize:     size,
				SHA256:       sum,
				Exchange:     exchangeName,
				AccountLabel: acct,
				Risk:         opts.cfg.RiskSnapshot(),
				DryRun:       dryRun,
			})
			if err != nil {
				return err
			}

			printResult(cmd, res, dryRun)
			return nil
		},
	}

	cmd.Flags().StringVar(&exchangeName, "exchange", "auto", "Export source: auto|bitunix|blofin")
	cmd.Flags().StringVar(&account, "account", "", "Account label for the audit record")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview results without persisting")
	return cmd
}

func printResult(cmd *cobra.Command, res *importer.Result, dryRun bool) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "import %s (%s)\n", res.ImportID, res.Exchange)
	fmt.Fprintf(out, "  rows: %d, fills after dedupe: %d (%d duplicates removed)\n",
		res.TotalRows, res.FillsAfterDedupe, res.DuplicatesRemoved)
	fmt.Fprintf(out, "  closed trades: %d, in progress: %d\n", res.ClosedEmitted, res.InProgressCount)

	for _, t := range res.Trades {
		fmt.Fprintf(out, "  closed %-12s %-5s qty=%s entry=%s exit=%s pnl=%s fees=%s (%s)\n",
			t.Symbol, t.Side, t.Quantity, t.EntryPrice.StringFixed(8), t.ExitPrice.StringFixed(8),
			t.PnL.StringFixed(8), t.FeesTotal, t.PnLSource)
	}
	for _, p := range res.InProgress {
		fmt.Fprintf(out, "  open   %-12s %-5s qty=%s vwap=%s (preview only)\n",
			p.Symbol, p.Side, p.OpenQuantity, p.EntryVWAP.StringFixed(8))
	}

	if len(res.Warnings) > 0 {
		fmt.Fprintf(out, "  warnings (%d):\n", len(res.Warnings))
		for _, w := range res.Warnings {
			fmt.Fprintf(out, "    - %s\n", w)
		}
	}
	if dryRun {
		fmt.Fprintln(out, "  dry run: nothing persisted")
	}
}
