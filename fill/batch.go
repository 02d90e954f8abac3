package fill

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/teranos/corrfill/errors"
)

// RunBatch runs jobs with at most concurrency fills in flight. A failed
// job does not stop the others. results[i] belongs to jobs[i] and is nil
// only when that job never started; the returned error joins every
// failure.
func (r *Runner) RunBatch(ctx context.Context, jobs []Job, concurrency int) ([]*Result, error) {
	if err := checkOutputs(jobs); err != nil {
		return nil, err
	}
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]*Result, len(jobs))
	var (
		mu   sync.Mutex
		errs []error
	)

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, job := range jobs {
		if ctx.Err() != nil {
			mu.Lock()
			errs = append(errs, errors.Wrapf(ctx.Err(), "contract %s not started", job.ContractNumber))
			mu.Unlock()
			continue
		}
		g.Go(func() error {
			res, err := r.Run(ctx, job)
			results[i] = res
			if err != nil {
				mu.Lock()
				errs = append(errs, errors.Wrapf(err, "contract %s", job.ContractNumber))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(errs) > 0 {
		return results, errors.Join(errs...)
	}
	return results, nil
}

// checkOutputs rejects batches where two jobs would write the same file.
func checkOutputs(jobs []Job) error {
	seen := make(map[string]string, len(jobs))
	for _, job := range jobs {
		out, err := ExpandOutput(job.Output, job.ContractNumber)
		if err != nil {
			return err
		}
		if prev, ok := seen[out]; ok {
			return errors.WithHint(
				errors.NewInvalidRequestError("contracts %s and %s would both write %s", prev, job.ContractNumber, out),
				"put "+ContractPlaceholder+" in the output path, e.g. output/{contract}.json",
			)
		}
		seen[out] = job.ContractNumber
	}
	return nil
}
