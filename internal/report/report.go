// Package report records corpus runs in a SQLite database: one row per run
// and one row per failed line, so that large batch jobs can be audited after
// the fact without scraping logs.
//
// Build modes:
//   - Default (CGO_ENABLED=0): pure Go modernc.org/sqlite
//   - CGO mode (-tags cgo_sqlite): mattn/go-sqlite3
package report

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	codecerrors "github.com/FocuswithJustin/osmcodec/core/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	command     TEXT NOT NULL,
	model       TEXT NOT NULL,
	inputs      TEXT NOT NULL,
	started_at  TEXT NOT NULL,
	finished_at TEXT,
	lines       INTEGER NOT NULL DEFAULT 0,
	failures    INTEGER NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS failures (
	run_id  TEXT NOT NULL REFERENCES runs(id),
	line    INTEGER NOT NULL,
	kind    TEXT NOT NULL,
	message TEXT NOT NULL,
	PRIMARY KEY (run_id, line)
);
CREATE INDEX IF NOT EXISTS idx_failures_kind ON failures(run_id, kind);
`

// DriverName returns the database/sql driver name in use.
func DriverName() string {
	return driverName
}

// DriverType returns "purego" or "cgo".
func DriverType() string {
	return driverType
}

// Store is an open report database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the report database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, codecerrors.NewIO("open report", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, codecerrors.NewIO("create report schema", path, err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Run is one recorded invocation.
type Run struct {
	ID         string
	Command    string
	Model      string
	Inputs     []string
	StartedAt  time.Time
	FinishedAt time.Time
	Lines      int
	Failures   int
	Duration   time.Duration

	store *Store
}

// Failure is one failed line of a run.
type Failure struct {
	Line    int
	Kind    string
	Message string
}

// StartRun inserts a new run with a fresh UUID.
func (s *Store) StartRun(ctx context.Context, command, model string, inputs []string) (*Run, error) {
	r := &Run{
		ID:        uuid.New().String(),
		Command:   command,
		Model:     model,
		Inputs:    inputs,
		StartedAt: time.Now().UTC(),
		store:     s,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, command, model, inputs, started_at) VALUES (?, ?, ?, ?, ?)`,
		r.ID, command, model, strings.Join(inputs, "\n"), r.StartedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, codecerrors.NewIO("insert run", s.path, err)
	}
	return r, nil
}

// RecordFailure stores a failed line. If err is a *errors.LineError its line
// number wins over line.
func (r *Run) RecordFailure(ctx context.Context, line int, err error) error {
	var lerr *codecerrors.LineError
	message := err.Error()
	if errors.As(err, &lerr) {
		line = lerr.Line
		message = lerr.Err.Error()
	}
	_, dbErr := r.store.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO failures (run_id, line, kind, message) VALUES (?, ?, ?, ?)`,
		r.ID, line, codecerrors.Kind(err), message)
	if dbErr != nil {
		return codecerrors.NewIO("insert failure", r.store.path, dbErr)
	}
	return nil
}

// Finish records the totals of the run.
func (r *Run) Finish(ctx context.Context, lines, failures int, duration time.Duration) error {
	r.FinishedAt = time.Now().UTC()
	r.Lines, r.Failures, r.Duration = lines, failures, duration
	_, err := r.store.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, lines = ?, failures = ?, duration_ms = ? WHERE id = ?`,
		r.FinishedAt.Format(time.RFC3339Nano), lines, failures, duration.Milliseconds(), r.ID)
	if err != nil {
		return codecerrors.NewIO("update run", r.store.path, err)
	}
	return nil
}

// Runs lists recorded runs, most recent first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, command, model, inputs, started_at, COALESCE(finished_at, ''), lines, failures, duration_ms
		 FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, codecerrors.NewIO("query runs", s.path, err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r                 Run
			inputs            string
			started, finished string
			ms                int64
		)
		if err := rows.Scan(&r.ID, &r.Command, &r.Model, &inputs, &started, &finished, &r.Lines, &r.Failures, &ms); err != nil {
			return nil, codecerrors.NewIO("scan run", s.path, err)
		}
		if inputs != "" {
			r.Inputs = strings.Split(inputs, "\n")
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		if finished != "" {
			r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		}
		r.Duration = time.Duration(ms) * time.Millisecond
		r.store = s
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, codecerrors.NewIO("query runs", s.path, err)
	}
	return runs, nil
}

// Failures lists the failed lines of a run in line order.
func (s *Store) Failures(ctx context.Context, runID string) ([]Failure, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT line, kind, message FROM failures WHERE run_id = ? ORDER BY line`, runID)
	if err != nil {
		return nil, codecerrors.NewIO("query failures", s.path, err)
	}
	defer rows.Close()

	var out []Failure
	for rows.Next() {
		var f Failure
		if err := rows.Scan(&f.Line, &f.Kind, &f.Message); err != nil {
			return nil, codecerrors.NewIO("scan failure", s.path, err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, codecerrors.NewIO("query failures", s.path, err)
	}
	return out, nil
}

// FailureKinds counts the failures of a run by kind.
func (s *Store) FailureKinds(ctx context.Context, runID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, COUNT(*) FROM failures WHERE run_id = ? GROUP BY kind`, runID)
	if err != nil {
		return nil, codecerrors.NewIO("query failure kinds", s.path, err)
	}
	defer rows.Close()

	kinds := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, codecerrors.NewIO("scan failure kind", s.path, err)
		}
		kinds[kind] = n
	}
	return kinds, rows.Err()
}
