package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/teranos/corrfill/display"
	"github.com/teranos/corrfill/errors"
	"github.com/teranos/corrfill/history"
	"github.com/teranos/corrfill/sym"
)

// HistoryCmd represents the history command
var HistoryCmd = &cobra.Command{
	Use:   "history",
	Short: sym.History + " Show past fills from the run ledger",
	Long: sym.History + ` history - Show past fills from the run ledger

Every fill, failed ones included, is recorded in a SQLite ledger at
history.path together with its unresolved tokens.

Examples:
  corrfill history
  corrfill history --limit 50 --json
  corrfill history --stats --since 24h`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var (
	historyLimit int
	historyStats bool
	historySince time.Duration
)

func init() {
	HistoryCmd.Flags().IntVarP(&historyLimit, "limit", "n", history.DefaultListLimit, "Number of runs to show")
	HistoryCmd.Flags().BoolVar(&historyStats, "stats", false, "Show totals instead of individual runs")
	HistoryCmd.Flags().DurationVar(&historySince, "since", 7*24*time.Hour, "Window for --stats")
	HistoryCmd.Flags().Bool("json", false, "Output as JSON")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(verbosity(cmd))
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return errors.WithHint(
			errors.New("the run ledger is disabled"),
			"set history.enabled = true in am.toml",
		)
	}

	store, closeStore, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	w := cmd.OutOrStdout()
	if historyStats {
		stats, err := store.Stats(cmd.Context(), time.Now().Add(-historySince))
		if err != nil {
			return err
		}
		if display.ShouldOutputJSON(cmd) {
			return display.OutputJSON(w, stats)
		}
		fmt.Fprintf(w, "Fills in the last %s\n", historySince)
		fmt.Fprintf(w, "  Runs:        %d (%d failed)\n", stats.Runs, stats.Failed)
		fmt.Fprintf(w, "  Contracts:   %d\n", stats.Contracts)
		fmt.Fprintf(w, "  Unresolved:  %d leaves\n", stats.Unresolved)
		fmt.Fprintf(w, "  Avg time:    %s\n", (time.Duration(stats.AvgDurationMS) * time.Millisecond).String())
		return nil
	}

	runs, err := store.List(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	if display.ShouldOutputJSON(cmd) {
		if runs == nil {
			runs = []history.Run{}
		}
		return display.OutputJSON(w, runs)
	}

	table, err := display.RunsTable(runs)
	if err != nil {
		return err
	}
	fmt.Fprint(w, table)
	return nil
}
