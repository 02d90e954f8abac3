package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/corrfill/am"
	"github.com/teranos/corrfill/cmd/corrfill/commands"
	"github.com/teranos/corrfill/display"
	"github.com/teranos/corrfill/logger"
)

var (
	configPath string
	jsonLogs   bool
)

var rootCmd = &cobra.Command{
	Use:   "corrfill",
	Short: "corrfill - fill letter templates from CDS policy records",
	Long: `corrfill - fill letter templates from CDS policy records.

A template is a JSON document whose string leaves are placeholder tokens.
corrfill fetches the policy record for a contract from the correspondence
data service (CDS) and replaces every token with the value it names.

Available commands:
  fill     - Resolve a template against one or more contracts
  merge    - Assemble the LetterData payload from its fragments
  resolve  - Resolve single tokens against a record file (debug aid)
  history  - Show past fills from the run ledger
  am       - Manage corrfill configuration ("I am")
  version  - Show version information

Examples:
  corrfill fill --contract A1234567           # input/input.json -> output/output.json
  corrfill fill -c A1 -c B2 -o '{contract}.json'
  corrfill merge                              # input/*.json -> output/output.json
  corrfill resolve PEOPLE_OWNER_FirstName --record record.json
  corrfill history --limit 5`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath != "" {
			am.SetExplicitPath(configPath)
		}

		verbosity, _ := cmd.Flags().GetCount("verbose")
		useJSON := jsonLogs

		// A broken config is reported by the commands that need it; logging
		// still comes up with the flag values.
		if cfg, err := am.Load(); err == nil {
			useJSON = useJSON || cfg.Log.JSON
			logger.SetTheme(cfg.GetLogTheme())
		}
		return logger.Initialize(useJSON, verbosity)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file merged above the environment")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Write logs as JSON lines")

	rootCmd.AddCommand(commands.FillCmd)
	rootCmd.AddCommand(commands.MergeCmd)
	rootCmd.AddCommand(commands.ResolveCmd)
	rootCmd.AddCommand(commands.HistoryCmd)
	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		display.Error(os.Stderr, err)
		os.Exit(1)
	}
}
