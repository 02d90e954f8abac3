// Package fill runs template fills end to end: load the template, fetch
// the record, resolve every leaf, write the result and note the run in the
// ledger.
package fill

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranos/corrfill/am"
	"github.com/teranos/corrfill/cds"
	"github.com/teranos/corrfill/db"
	"github.com/teranos/corrfill/errors"
	"github.com/teranos/corrfill/history"
	"github.com/teranos/corrfill/jsonv"
	"github.com/teranos/corrfill/logger"
	"github.com/teranos/corrfill/resolve"
	"github.com/teranos/corrfill/source"
	"github.com/teranos/corrfill/sym"
)

// Job is one fill.
type Job struct {
	ContractNumber string
	Template       string // local path or go-getter reference
	Output         string // may contain {contract}
}

// Result describes a finished fill.
type Result struct {
	Job
	RunID    string
	Output   string // expanded output path
	Tally    resolve.Tally
	Tokens   []string // distinct tokens that matched nothing, in template order
	Duration time.Duration
	Document jsonv.Value
	Err      error // why the fill failed; nil on success
}

// TemplateLoader loads a template by reference.
type TemplateLoader func(ctx context.Context, ref string) (jsonv.Value, error)

// Recorder stores finished runs. *history.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, run history.Run) (history.Run, error)
}

// Runner executes fills. The fetcher can be swapped while fills are in
// flight; each fill uses the fetcher current when it started.
type Runner struct {
	mu        sync.RWMutex
	fetcher   cds.Fetcher
	load      TemplateLoader
	store     Recorder
	logger    *zap.SugaredLogger
	verbosity int
}

// Option customizes a Runner.
type Option func(*Runner)

// WithTemplateLoader replaces source.Load.
func WithTemplateLoader(l TemplateLoader) Option {
	return func(r *Runner) { r.load = l }
}

// WithRecorder enables the run ledger.
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) { r.store = rec }
}

// WithLogger sets the runner logger (default: the "fill" component logger).
func WithLogger(l *zap.SugaredLogger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithVerbosity controls which output categories are logged per leaf.
func WithVerbosity(v int) Option {
	return func(r *Runner) { r.verbosity = v }
}

// NewRunner creates a Runner fetching records from f.
func NewRunner(f cds.Fetcher, opts ...Option) *Runner {
	r := &Runner{fetcher: f, load: source.Load}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.AddSymbol(logger.ComponentLogger("fill"), sym.Fill)
	}
	return r
}

// Fetcher returns the current fetcher.
func (r *Runner) Fetcher() cds.Fetcher {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fetcher
}

// SetFetcher swaps the fetcher used by fills that start afterwards.
func (r *Runner) SetFetcher(f cds.Fetcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetcher = f
}

// FollowConfig rebuilds the CDS client whenever the watched config file
// changes. Other sections are left to the caller.
func (r *Runner) FollowConfig(cw *am.ConfigWatcher, opts ...cds.Option) {
	cw.OnReload(func(cfg *am.Config) error {
		r.SetFetcher(cds.NewClient(cfg.CDS, opts...))
		r.logger.Infow("CDS client reloaded", logger.FieldURL, cfg.CDS.BaseURL)
		return nil
	})
}

// Run performs one fill. Failed fills are recorded in the ledger too.
func (r *Runner) Run(ctx context.Context, job Job) (*Result, error) {
	res := &Result{Job: job, RunID: uuid.NewString()}
	ctx = logger.WithRunID(ctx, res.RunID)
	ctx = logger.WithContract(ctx, job.ContractNumber)
	log := r.logger.With(logger.FieldsFromContext(ctx)...)

	start := time.Now()
	err := r.run(ctx, log, res)
	res.Duration = time.Since(start)
	res.Err = err

	r.record(ctx, log, res, err)
	if err != nil {
		return res, err
	}

	log.Infow("Fill complete",
		logger.FieldOutput, res.Output,
		logger.FieldLeaves, res.Tally.Leaves,
		logger.FieldResolved, res.Tally.Resolved,
		logger.FieldUnresolved, len(res.Tally.Unresolved),
		logger.FieldDurationMS, res.Duration.Milliseconds())
	return res, nil
}

func (r *Runner) run(ctx context.Context, log *zap.SugaredLogger, res *Result) error {
	out, err := ExpandOutput(res.Job.Output, res.ContractNumber)
	if err != nil {
		return err
	}
	res.Output = out

	template, err := r.load(ctx, res.Template)
	if err != nil {
		return errors.Wrapf(err, "load template %s", res.Template)
	}
	if logger.ShouldOutput(r.verbosity, logger.OutputDocumentDump) {
		log.Debugw("Template", logger.FieldTemplate, res.Template, "document", template.String())
	}

	fetchStart := time.Now()
	record, err := r.Fetcher().FetchRecord(ctx, res.ContractNumber)
	if err != nil {
		return errors.Wrapf(err, "fetch record for contract %s", res.ContractNumber)
	}
	if logger.ShouldOutput(r.verbosity, logger.OutputFetch) {
		log.Debugw("Record fetched", logger.FieldDurationMS, time.Since(fetchStart).Milliseconds())
	}
	if logger.ShouldOutput(r.verbosity, logger.OutputRecordDump) {
		log.Debugw("Record", "record", record.String())
	}

	seen := make(map[string]bool)
	t := resolve.Transformer{
		Record: record,
		Observe: func(path string, o resolve.Outcome) {
			res.Tally.Observe(path, o)
			if !o.Found && o.Token.Strategy != resolve.StrategyEmpty && !seen[o.Token.Raw] {
				seen[o.Token.Raw] = true
				res.Tokens = append(res.Tokens, o.Token.Raw)
			}
			r.trace(log, path, o)
		},
	}
	res.Document = t.Transform(template)

	if err := jsonv.WriteFile(res.Output, res.Document); err != nil {
		return err
	}
	return nil
}

func (r *Runner) trace(log *zap.SugaredLogger, path string, o resolve.Outcome) {
	switch {
	case logger.ShouldOutput(r.verbosity, logger.OutputTokenTrace):
		log.Debugw("Token",
			logger.FieldPath, path,
			logger.FieldToken, o.Token.Raw,
			logger.FieldStrategy, o.Token.Strategy.String(),
			"found", o.Found)
	case !o.Found && o.Token.Strategy != resolve.StrategyEmpty &&
		logger.ShouldOutput(r.verbosity, logger.OutputUnresolvedLeaf):
		log.Debugw("Unresolved leaf",
			logger.FieldPath, path,
			logger.FieldToken, o.Token.Raw,
			logger.FieldStrategy, o.Token.Strategy.String())
	}
}

func (r *Runner) record(ctx context.Context, log *zap.SugaredLogger, res *Result, runErr error) {
	if r.store == nil {
		return
	}
	run := history.Run{
		ID:               res.RunID,
		ContractNumber:   res.ContractNumber,
		Template:         res.Template,
		Output:           res.Output,
		Leaves:           res.Tally.Leaves,
		Resolved:         res.Tally.Resolved,
		Unresolved:       len(res.Tally.Unresolved),
		UnresolvedTokens: res.Tokens,
		DurationMS:       res.Duration.Milliseconds(),
		Status:           history.StatusOK,
	}
	if runErr != nil {
		run.Status = history.StatusFailed
		run.Error = runErr.Error()
	}
	// The ledger is bookkeeping; a write failure never fails the fill
	if _, err := r.store.Record(context.WithoutCancel(ctx), run); err != nil {
		if db.IsDatabaseClosed(err) {
			log.Debugw("Run not recorded, ledger already closed")
			return
		}
		log.Warnw("Failed to record run", logger.FieldError, err)
	}
}
