package commands

import (
	"database/sql"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/teranos/corrfill/am"
	"github.com/teranos/corrfill/db"
	"github.com/teranos/corrfill/errors"
	"github.com/teranos/corrfill/history"
	"github.com/teranos/corrfill/logger"
)

// verbosity reads the root --verbose count; commands run without the root
// (tests) get 0.
func verbosity(cmd *cobra.Command) int {
	v, err := cmd.Flags().GetCount("verbose")
	if err != nil {
		return 0
	}
	return v
}

// loadConfig loads and validates the configuration.
func loadConfig(verb int) (*am.Config, error) {
	cfg, err := am.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	if logger.ShouldOutput(verb, logger.OutputConfig) {
		logger.Debugw("Configuration loaded", "config", cfg.String())
	}
	return cfg, nil
}

// inDir joins a bare file name onto dir. Paths with a directory part,
// absolute paths and remote references are returned unchanged.
func inDir(dir, name string) string {
	if dir == "" || name == "" || filepath.Base(name) != name {
		return name
	}
	return filepath.Join(am.ExpandHome(dir), name)
}

// openHistory opens the run ledger. A disabled ledger returns a nil store
// and a no-op close.
func openHistory(cfg *am.Config) (*history.Store, func(), error) {
	if !cfg.History.Enabled {
		return nil, func() {}, nil
	}
	conn, err := db.OpenWithMigrations(cfg.GetHistoryPath(), logger.ComponentLogger("db"))
	if err != nil {
		return nil, nil, errors.WithHint(err, "set history.enabled = false to run without a ledger")
	}
	return history.NewStore(conn), closer(conn), nil
}

func closer(conn *sql.DB) func() {
	return func() {
		if err := conn.Close(); err != nil {
			logger.Warnw("Failed to close history database", logger.FieldError, err)
		}
	}
}
