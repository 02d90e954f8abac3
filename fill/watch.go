package fill

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/teranos/corrfill/errors"
	"github.com/teranos/corrfill/logger"
	"github.com/teranos/corrfill/source"
	"github.com/teranos/corrfill/sym"
)

// ResultHandler receives the outcome of every fill a watch performs.
type ResultHandler func(*Result, error)

// Watch fills job once, then again each time the template file changes,
// until ctx is done. Writes closer together than debounce collapse into
// one fill. Every fill is a complete resolution against a fresh record.
// Only local templates can be watched.
func (r *Runner) Watch(ctx context.Context, job Job, debounce time.Duration, onResult ResultHandler) error {
	ref, err := source.Detect(job.Template)
	if err != nil {
		return err
	}
	if !ref.IsLocal() {
		return errors.WithHint(
			errors.NewInvalidRequestError("cannot watch remote template %s", job.Template),
			"--watch needs a template on the local filesystem",
		)
	}
	target := filepath.Clean(ref.Local)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create fsnotify watcher")
	}
	defer watcher.Close()

	// The directory is watched so editors that replace the file on save
	// are still seen
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return errors.Wrapf(err, "failed to watch %s", filepath.Dir(target))
	}

	log := logger.AddSymbol(r.logger, sym.Watch)
	runOnce := func() {
		res, err := r.Run(ctx, job)
		if onResult != nil {
			onResult(res, err)
		}
	}

	runOnce()
	log.Infow("Watching template", logger.FieldTemplate, target)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			log.Infow("Stopped watching template", logger.FieldTemplate, target)
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if logger.ShouldOutput(r.verbosity, logger.OutputWatch) {
				log.Debugw("Template changed", logger.FieldFile, event.Name, "op", event.Op.String())
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			runOnce()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warnw("Template watcher error", logger.FieldError, err)
		}
	}
}
