// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package jobs keeps a SQLite history of conversion runs.
package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/docmark/internal/convert"
	"github.com/pdiddy/docmark/pkg/types"
)

// ErrNotFound is returned by Get for an unknown job ID.
var ErrNotFound = errors.New("job not found")

const defaultLimit = 50

// Store manages the job history database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the database at cfg.Path and creates the schema
// if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS jobs (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			document TEXT NOT NULL,
			route TEXT,
			status TEXT NOT NULL,
			output TEXT,
			delivered TEXT,
			merged INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0,
			error TEXT,
			created_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts job, assigning an ID and creation time when unset.
func (s *Store) Record(ctx context.Context, job *types.Job) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, document, route, status, output, delivered, merged, skipped, error, created_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.Document, string(job.Route), string(job.Status), job.Output, job.Delivered,
		job.Merged, job.Skipped, job.Error,
		job.CreatedAt.UTC().Format(time.RFC3339Nano), job.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("inserting job %s: %w", job.ID, err)
	}
	return nil
}

const selectColumns = `SELECT id, document, route, status, output, delivered, merged, skipped, error, created_at, duration_ms FROM jobs`

// Get returns the job with the given ID.
func (s *Store) Get(ctx context.Context, id string) (*types.Job, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

// ListOptions filter List.
type ListOptions struct {
	// Limit caps the number of jobs; zero or less uses a default of 50.
	Limit int

	// Status keeps only jobs with this status when set.
	Status types.ConversionStatus
}

// List returns jobs newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]types.Job, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	query := selectColumns
	var args []any
	if opts.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(opts.Status))
	}
	query += ` ORDER BY rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]types.Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(sc scanner) (*types.Job, error) {
	var (
		job                                    types.Job
		route, status                          string
		output, delivered, errText, createdStr sql.NullString
		durationMS                             int64
	)
	if err := sc.Scan(&job.ID, &job.Document, &route, &status, &output, &delivered,
		&job.Merged, &job.Skipped, &errText, &createdStr, &durationMS); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning job: %w", err)
	}
	job.Route = types.Route(route)
	job.Status = types.ConversionStatus(status)
	job.Output = output.String
	job.Delivered = delivered.String
	job.Error = errText.String
	job.Duration = time.Duration(durationMS) * time.Millisecond
	if t, err := time.Parse(time.RFC3339Nano, createdStr.String); err == nil {
		job.CreatedAt = t
	}
	return &job, nil
}

// NewJob builds the history entry for one Dispatcher.Process call.
func NewJob(path string, res *convert.Result, err error, took time.Duration) types.Job {
	job := types.Job{Document: path, Duration: took}
	if route, rerr := convert.Route(path); rerr == nil {
		job.Route = route
	}
	if err != nil {
		job.Status = types.ConversionFailed
		job.Error = err.Error()
		return job
	}
	job.Status = res.Status
	job.Output = res.OutputPath
	if res.Report != nil {
		job.Merged = res.Report.Merged()
		job.Skipped = res.Report.SkippedFragments() + len(res.Report.SkippedRecords)
	}
	return job
}
