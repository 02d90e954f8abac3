// Package display renders command output: JSON for scripts, pterm tables
// and prefixed messages for people.
package display

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teranos/corrfill/errors"
)

// OutputEnv forces JSON output for every command when set to "json".
const OutputEnv = "CORRFILL_OUTPUT"

// ShouldOutputJSON determines if a command should output JSON based on its
// --json flag, falling back to CORRFILL_OUTPUT.
func ShouldOutputJSON(cmd *cobra.Command) bool {
	if cmd != nil {
		if f := cmd.Flags().Lookup("json"); f != nil && f.Changed {
			on, _ := cmd.Flags().GetBool("json")
			return on
		}
	}
	return strings.EqualFold(os.Getenv(OutputEnv), "json")
}

// OutputJSON marshals v with MarshalJSON and writes it to w.
func OutputJSON(w io.Writer, v interface{}) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return errors.Wrap(err, "failed to marshal JSON")
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
