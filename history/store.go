// Package history is the run ledger: one row per fill, recording which
// template was filled for which contract and how many tokens stayed blank.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/teranos/corrfill/db"
	"github.com/teranos/corrfill/errors"
)

// Run statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// DefaultListLimit is used when List is called with a limit below one.
const DefaultListLimit = 20

// Run is one fill as recorded in the ledger.
type Run struct {
	ID               string    `json:"id"`
	ContractNumber   string    `json:"contract_number"`
	Template         string    `json:"template"`
	Output           string    `json:"output"`
	Leaves           int       `json:"leaves"`
	Resolved         int       `json:"resolved"`
	Unresolved       int       `json:"unresolved"`
	UnresolvedTokens []string  `json:"unresolved_tokens,omitempty"`
	DurationMS       int64     `json:"duration_ms"`
	Status           string    `json:"status"`
	Error            string    `json:"error,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// Stats summarises the ledger since a point in time.
type Stats struct {
	Runs          int     `json:"runs"`
	Failed        int     `json:"failed"`
	Contracts     int     `json:"contracts"`
	Unresolved    int     `json:"unresolved"`
	AvgDurationMS float64 `json:"avg_duration_ms"`
}

// Store reads and writes fill_runs.
type Store struct {
	db *sql.DB
}

// NewStore wraps a database migrated by db.Migrate.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record inserts run. An empty ID gets a fresh UUID and a zero CreatedAt
// the current time; the stored run is returned.
func (s *Store) Record(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	// created_at is stored as text; one zone keeps comparisons ordered
	run.CreatedAt = run.CreatedAt.UTC()
	if run.Status == "" {
		run.Status = StatusOK
	}

	tokens := run.UnresolvedTokens
	if tokens == nil {
		tokens = []string{}
	}
	tokensJSON, err := json.Marshal(tokens)
	if err != nil {
		return run, errors.Wrap(err, "encode unresolved tokens")
	}

	query := `
		INSERT INTO fill_runs (
			id, contract_number, template, output, leaves, resolved,
			unresolved, unresolved_tokens, duration_ms, status, error, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		run.ID, run.ContractNumber, run.Template, run.Output,
		run.Leaves, run.Resolved, run.Unresolved, string(tokensJSON),
		run.DurationMS, run.Status, run.Error, run.CreatedAt,
	)
	if err != nil {
		if db.IsDatabaseClosed(err) {
			return run, errors.Wrapf(db.ErrDatabaseClosed, "record run %s", run.ID)
		}
		return run, errors.Wrapf(err, "record run %s", run.ID)
	}
	return run, nil
}

// List returns the most recent runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit < 1 {
		limit = DefaultListLimit
	}

	query := `
		SELECT id, contract_number, template, output, leaves, resolved,
			unresolved, unresolved_tokens, duration_ms, status, error, created_at
		FROM fill_runs
		ORDER BY created_at DESC
		LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run        Run
			tokensJSON string
		)
		if err := rows.Scan(
			&run.ID, &run.ContractNumber, &run.Template, &run.Output,
			&run.Leaves, &run.Resolved, &run.Unresolved, &tokensJSON,
			&run.DurationMS, &run.Status, &run.Error, &run.CreatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "scan run")
		}
		if err := json.Unmarshal([]byte(tokensJSON), &run.UnresolvedTokens); err != nil {
			return nil, errors.Wrapf(err, "decode unresolved tokens of run %s", run.ID)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate runs")
	}
	return runs, nil
}

// Stats summarises runs created at or after since, in any time zone.
func (s *Store) Stats(ctx context.Context, since time.Time) (*Stats, error) {
	query := `
		SELECT
			COUNT(*) as runs,
			COUNT(CASE WHEN status = 'failed' THEN 1 END) as failed,
			COUNT(DISTINCT contract_number) as contracts,
			COALESCE(SUM(unresolved), 0) as unresolved,
			COALESCE(AVG(duration_ms), 0) as avg_duration_ms
		FROM fill_runs
		WHERE created_at >= ?`

	var stats Stats
	err := s.db.QueryRowContext(ctx, query, since.UTC()).Scan(
		&stats.Runs, &stats.Failed, &stats.Contracts,
		&stats.Unresolved, &stats.AvgDurationMS,
	)
	if err != nil {
		return nil, errors.Wrap(err, "run stats")
	}
	return &stats, nil
}
