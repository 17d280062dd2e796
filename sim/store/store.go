// Package store persists simulation runs and their execution logs in SQLite
// so they can be re-analyzed later without re-running the trace.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/inference-sim/isr-sim/sim"
)

//go:embed schema.sql
var schemaSQL string

// ErrRunNotFound is returned by LoadRun for an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// Store is a SQLite-backed run archive.
type Store struct {
	db *sql.DB
}

// Run is the metadata of one archived run.
type Run struct {
	ID          string
	Seed        int64
	QueuePolicy string
	CreatedAt   time.Time
	TotalTime   int64
}

// Open creates or opens the database at path and applies the schema.
// Safe to call on an existing database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows one writer; a single connection also keeps ":memory:" databases alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// NewRunID returns a time-ordered run id.
func NewRunID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// SaveRun archives a run and its log lines in one transaction and returns
// the stored metadata. A zero run.ID is replaced by a fresh id; a zero
// CreatedAt by the current time.
func (s *Store) SaveRun(ctx context.Context, run Run, lines []sim.LogLine) (Run, error) {
	if run.ID == "" {
		run.ID = NewRunID()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("save run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, seed, queue_policy, created_at, total_time)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.Seed, run.QueuePolicy, run.CreatedAt.Format(time.RFC3339Nano), run.TotalTime)
	if err != nil {
		return Run{}, fmt.Errorf("save run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO log_lines (run_id, seq, start, duration, text)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return Run{}, fmt.Errorf("save run %s: %w", run.ID, err)
	}
	defer stmt.Close()

	for i, l := range lines {
		if _, err := stmt.ExecContext(ctx, run.ID, i, l.Start, l.Duration, l.Text); err != nil {
			return Run{}, fmt.Errorf("save run %s line %d: %w", run.ID, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("save run %s: %w", run.ID, err)
	}
	return run, nil
}

// LoadRun returns a run's metadata and its log lines in timeline order.
func (s *Store) LoadRun(ctx context.Context, id string) (Run, []sim.LogLine, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seed, queue_policy, created_at, total_time
		FROM runs WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, nil, fmt.Errorf("load run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, nil, fmt.Errorf("load run %s: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT start, duration, text
		FROM log_lines WHERE run_id = ?
		ORDER BY seq ASC
	`, id)
	if err != nil {
		return Run{}, nil, fmt.Errorf("load run %s lines: %w", id, err)
	}
	defer rows.Close()

	var lines []sim.LogLine
	for rows.Next() {
		var l sim.LogLine
		if err := rows.Scan(&l.Start, &l.Duration, &l.Text); err != nil {
			return Run{}, nil, fmt.Errorf("load run %s lines: %w", id, err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return Run{}, nil, fmt.Errorf("load run %s lines: %w", id, err)
	}
	return run, lines, nil
}

// ListRuns returns every archived run, oldest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seed, queue_policy, created_at, total_time
		FROM runs ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var r Run
	var created string
	if err := sc.Scan(&r.ID, &r.Seed, &r.QueuePolicy, &created, &r.TotalTime); err != nil {
		return Run{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Run{}, fmt.Errorf("run %s: bad created_at %q: %w", r.ID, created, err)
	}
	r.CreatedAt = t
	return r, nil
}
