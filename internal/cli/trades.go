package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradebook/journal"
)

func newTradesCmd(opts *rootOptions) *cobra.Command {
	var day string

	cmd := &cobra.Command{
		Use:   "trades",
		Short: "List persisted closed trades",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.cfg.Journal.Type != "sqlite" {
				return fmt.Errorf("trades listing requires the sqlite journal")
			}
			j, err := journal.NewSQLite(opts.cfg.Journal.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer j.Close()

			start, end, err := dayBounds(day)
			if err != nil {
				return err
			}

			recs, err := j.ListTradesClosedBetween(start, end)
			if err != nil {
				return fmt.Errorf("query trades: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(recs) == 0 {
				fmt.Fprintln(out, "no trades")
				return nil
			}
			for _, t := range recs {
				fmt.Fprintf(out, "%s  %-10s %-12s %-5s qty=%s entry=%s exit=%s pnl=%s fees=%s\n",
					t.ExitTime.Format("2006-01-02 15:04:05"),
					t.Exchange, t.Symbol, t.Side,
					t.Quantity, t.EntryPrice, t.ExitPrice, t.PnL, t.FeesTotal)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&day, "day", "", "Only trades closed on this UTC day (YYYY-MM-DD)")
	return cmd
}

// dayBounds returns [start, end) for a UTC day, or an unbounded range when
// day is empty.
func dayBounds(day string) (time.Time, time.Time, error) {
	if day == "" {
		return time.Time{}, time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.ParseInLocation("2006-01-02", day, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("day: %w", err)
	}
	return t, t.Add(24 * time.Hour), nil
}
