package commands

import (
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/corrfill/am"
	"github.com/teranos/corrfill/cds"
	"github.com/teranos/corrfill/display"
	"github.com/teranos/corrfill/errors"
	"github.com/teranos/corrfill/fill"
	"github.com/teranos/corrfill/logger"
	"github.com/teranos/corrfill/sym"
)

// FillCmd represents the fill command
var FillCmd = &cobra.Command{
	Use:   "fill [contract...]",
	Short: sym.Fill + " Resolve a template against CDS policy records",
	Long: sym.Fill + ` fill - Resolve a template against CDS policy records

Every string leaf of the template is treated as a token and replaced by the
value it names in the policy record. Tokens that match nothing become "".

Bare file names are resolved against paths.input_dir (template) and
paths.output_dir (output). "{contract}" in the output path expands to the
contract number, which a batch of several contracts needs.

Without a contract number or --record, corrfill asks for one.

Examples:
  corrfill fill --contract A1234567
  corrfill fill -c A1 -c B2 -o '{contract}.json'
  corrfill fill --record record.json --template letters/renewal.json
  corrfill fill -c A1 --template https://example.com/templates/renewal.json
  corrfill fill -c A1 --watch                 # re-fill when the template changes`,
	RunE: runFill,
}

var (
	fillContracts []string
	fillTemplate  string
	fillOutput    string
	fillRecord    string
	fillWatch     bool
)

func init() {
	FillCmd.Flags().StringArrayVarP(&fillContracts, "contract", "c", nil, "Contract number (repeatable)")
	FillCmd.Flags().StringVarP(&fillTemplate, "template", "t", "", "Template path or URL (default: paths.template)")
	FillCmd.Flags().StringVarP(&fillOutput, "output", "o", "", "Output path; {contract} expands (default: paths.output)")
	FillCmd.Flags().StringVarP(&fillRecord, "record", "r", "", "Read the record from a JSON file instead of CDS")
	FillCmd.Flags().BoolVarP(&fillWatch, "watch", "w", false, "Re-run the fill whenever the template changes")
	FillCmd.Flags().Bool("json", false, "Output run summaries as JSON")
}

// fillSummary is the --json form of a finished fill.
type fillSummary struct {
	RunID            string   `json:"run_id"`
	Contract         string   `json:"contract"`
	Template         string   `json:"template"`
	Output           string   `json:"output,omitempty"`
	Leaves           int      `json:"leaves"`
	Resolved         int      `json:"resolved"`
	Blank            int      `json:"blank"`
	UnresolvedPaths  []string `json:"unresolved_paths,omitempty"`
	UnresolvedTokens []string `json:"unresolved_tokens,omitempty"`
	DurationMS       int64    `json:"duration_ms"`
	Error            string   `json:"error,omitempty"`
}

func summarize(res *fill.Result) fillSummary {
	s := fillSummary{
		RunID:            res.RunID,
		Contract:         res.ContractNumber,
		Template:         res.Template,
		Output:           res.Output,
		Leaves:           res.Tally.Leaves,
		Resolved:         res.Tally.Resolved,
		Blank:            res.Tally.Blank,
		UnresolvedPaths:  res.Tally.Unresolved,
		UnresolvedTokens: res.Tokens,
		DurationMS:       res.Duration.Milliseconds(),
	}
	if res.Err != nil {
		s.Error = res.Err.Error()
	}
	return s
}

func runFill(cmd *cobra.Command, args []string) error {
	verb := verbosity(cmd)
	cfg, err := loadConfig(verb)
	if err != nil {
		return err
	}

	contracts, err := fillContractList(args)
	if err != nil {
		return err
	}

	template := fillTemplate
	if template == "" {
		template = cfg.Paths.Template
	}
	template = inDir(cfg.Paths.InputDir, template)

	output := fillOutput
	if output == "" {
		output = cfg.Paths.Output
	}
	output = inDir(cfg.Paths.OutputDir, output)

	jobs := make([]fill.Job, len(contracts))
	for i, c := range contracts {
		jobs[i] = fill.Job{ContractNumber: c, Template: template, Output: output}
	}

	var fetcher cds.Fetcher = cds.NewClient(cfg.CDS)
	if fillRecord != "" {
		fetcher = cds.FileSource{Path: fillRecord}
	}

	store, closeStore, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	opts := []fill.Option{fill.WithVerbosity(verb)}
	if store != nil {
		opts = append(opts, fill.WithRecorder(store))
	}
	runner := fill.NewRunner(fetcher, opts...)

	if fillWatch {
		if len(jobs) != 1 {
			return errors.NewInvalidRequestError("--watch takes exactly one contract, got %d", len(jobs))
		}
		return watchFill(cmd, runner, jobs[0], cfg)
	}

	results, batchErr := runner.RunBatch(cmd.Context(), jobs, cfg.GetConcurrency())
	if display.ShouldOutputJSON(cmd) {
		summaries := make([]fillSummary, 0, len(results))
		for _, res := range results {
			if res != nil {
				summaries = append(summaries, summarize(res))
			}
		}
		if err := display.OutputJSON(cmd.OutOrStdout(), summaries); err != nil {
			return err
		}
		return batchErr
	}

	for _, res := range results {
		if res != nil && res.Err == nil {
			printFillResult(cmd, res)
		}
	}
	return batchErr
}

// fillContractList gathers contract numbers from flags and arguments,
// prompting when there are none and no record file stands in for CDS.
func fillContractList(args []string) ([]string, error) {
	var contracts []string
	for _, c := range append(append([]string{}, fillContracts...), args...) {
		if c = strings.TrimSpace(c); c != "" {
			contracts = append(contracts, c)
		}
	}
	if len(contracts) > 0 {
		return contracts, nil
	}

	if fillRecord != "" {
		// The record file names the letter when no contract is given
		name := strings.TrimSuffix(filepath.Base(fillRecord), filepath.Ext(fillRecord))
		return []string{name}, nil
	}

	answer, err := pterm.DefaultInteractiveTextInput.Show("Contract number")
	if err != nil {
		return nil, errors.Wrap(err, "failed to read contract number")
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, errors.NewInvalidRequestError("contract number cannot be empty")
	}
	return []string{answer}, nil
}

func printFillResult(cmd *cobra.Command, res *fill.Result) {
	w := cmd.OutOrStdout()
	display.Success(w, "%s %s -> %s (%d/%d leaves resolved, %s)",
		sym.Fill, res.ContractNumber, res.Output,
		res.Tally.Resolved, res.Tally.Leaves, res.Duration.Round(time.Millisecond))
	if len(res.Tokens) > 0 {
		display.Warning(w, "unresolved: %s", strings.Join(res.Tokens, ", "))
	}
}

// watchFill re-runs job on template changes until interrupted. When a
// config file is in play and records come from CDS, edits to [cds] swap
// the client without a restart.
func watchFill(cmd *cobra.Command, runner *fill.Runner, job fill.Job, cfg *am.Config) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if path := am.ActiveConfigPath(); path != "" && fillRecord == "" {
		cw, err := am.NewConfigWatcher(path)
		if err != nil {
			logger.Warnw("Config changes will need a restart", logger.FieldFile, path, logger.FieldError, err)
		} else {
			runner.FollowConfig(cw)
			am.SetGlobalWatcher(cw)
			cw.Start()
			defer func() {
				am.SetGlobalWatcher(nil)
				if err := cw.Stop(); err != nil {
					logger.Warnw("Failed to stop config watcher", logger.FieldError, err)
				}
			}()
		}
	}

	pterm.Info.WithWriter(cmd.ErrOrStderr()).Printfln("%s Watching %s (Ctrl+C to stop)", sym.Watch, job.Template)
	return runner.Watch(ctx, job, cfg.GetWatchDebounce(), func(res *fill.Result, err error) {
		if err != nil {
			display.Error(cmd.ErrOrStderr(), err)
			return
		}
		if display.ShouldOutputJSON(cmd) {
			if err := display.OutputJSON(cmd.OutOrStdout(), summarize(res)); err != nil {
				display.Error(cmd.ErrOrStderr(), err)
			}
			return
		}
		printFillResult(cmd, res)
	})
}
