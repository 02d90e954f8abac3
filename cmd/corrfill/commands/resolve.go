package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/corrfill/cds"
	"github.com/teranos/corrfill/display"
	"github.com/teranos/corrfill/resolve"
	"github.com/teranos/corrfill/sym"
)

// ResolveCmd represents the resolve command
var ResolveCmd = &cobra.Command{
	Use:   "resolve <token>...",
	Short: sym.Resolve + " Resolve single tokens against a record file",
	Long: sym.Resolve + ` resolve - Resolve single tokens against a record file

Shows how each token is classified (root field, people lookup, blank,
malformed, unresolved) and the value it produces. Useful when a filled
letter has a blank where a value was expected.

Examples:
  corrfill resolve PolicyNumber --record record.json
  corrfill resolve PEOPLE_OWNER_FIRST_NAME PEOPLE_AGENT_Email -r record.json --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

var resolveRecord string

func init() {
	ResolveCmd.Flags().StringVarP(&resolveRecord, "record", "r", "", "Record JSON file (array of one object, or an object)")
	ResolveCmd.Flags().Bool("json", false, "Output outcomes as JSON")
	_ = ResolveCmd.MarkFlagRequired("record")
}

type outcomeJSON struct {
	Token    string `json:"token"`
	Strategy string `json:"strategy"`
	Role     string `json:"role,omitempty"`
	Field    string `json:"field,omitempty"`
	Found    bool   `json:"found"`
	Value    string `json:"value"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	record, err := cds.FileSource{Path: resolveRecord}.FetchRecord(cmd.Context(), "")
	if err != nil {
		return err
	}

	outcomes := make([]resolve.Outcome, len(args))
	for i, token := range args {
		outcomes[i] = resolve.Evaluate(token, record)
	}

	if display.ShouldOutputJSON(cmd) {
		out := make([]outcomeJSON, len(outcomes))
		for i, o := range outcomes {
			out[i] = outcomeJSON{
				Token:    o.Token.Raw,
				Strategy: o.Token.Strategy.String(),
				Role:     o.Token.Role,
				Field:    o.Token.Field,
				Found:    o.Found,
				Value:    o.Value,
			}
		}
		return display.OutputJSON(cmd.OutOrStdout(), out)
	}

	table, err := display.OutcomeTable(outcomes)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), table)
	return nil
}
