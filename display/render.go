package display

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/teranos/corrfill/errors"
	"github.com/teranos/corrfill/history"
	"github.com/teranos/corrfill/resolve"
)

// Error prints err and any hints attached to it.
func Error(w io.Writer, err error) {
	if err == nil {
		return
	}
	pterm.Error.WithWriter(w).Println(err.Error())
	for _, hint := range errors.GetAllHints(err) {
		fmt.Fprintf(w, "  hint: %s\n", hint)
	}
}

// Success prints a success line.
func Success(w io.Writer, format string, args ...interface{}) {
	pterm.Success.WithWriter(w).Printfln(format, args...)
}

// Warning prints a warning line.
func Warning(w io.Writer, format string, args ...interface{}) {
	pterm.Warning.WithWriter(w).Printfln(format, args...)
}

// RunsTable renders ledger rows as a table, newest first as given.
func RunsTable(runs []history.Run) (string, error) {
	if len(runs) == 0 {
		return "No fills recorded yet\n", nil
	}

	data := pterm.TableData{{"When", "Contract", "Status", "Leaves", "Unresolved", "Duration", "Output"}}
	for _, r := range runs {
		status := r.Status
		if r.Status == history.StatusFailed {
			status = pterm.Red(r.Status)
		}
		unresolved := strconv.Itoa(r.Unresolved)
		if len(r.UnresolvedTokens) > 0 {
			unresolved += " (" + truncate(strings.Join(r.UnresolvedTokens, ", "), 40) + ")"
		}
		data = append(data, []string{
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			r.ContractNumber,
			status,
			strconv.Itoa(r.Leaves),
			unresolved,
			(time.Duration(r.DurationMS) * time.Millisecond).String(),
			r.Output,
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}

// OutcomeTable renders the resolution of single tokens.
func OutcomeTable(outcomes []resolve.Outcome) (string, error) {
	data := pterm.TableData{{"Token", "Strategy", "Found", "Value"}}
	for _, o := range outcomes {
		data = append(data, []string{
			strconv.Quote(o.Token.Raw),
			o.Token.Strategy.String(),
			strconv.FormatBool(o.Found),
			strconv.Quote(o.Value),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}

// truncate shortens s to max runes, ending in "..." when cut.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
