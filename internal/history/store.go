package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Record summarizes one completed, failed, or cancelled run.
type Record struct {
	ID          int64
	RunID       string
	InputPath   string
	InputKind   string
	Method      string
	TotalFrames int
	Selected    int
	FailedSrcs  int
	Status      string
	OutputDir   string
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Store persists run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    input_path TEXT NOT NULL,
    input_kind TEXT NOT NULL,
    method TEXT NOT NULL,
    total_frames INTEGER NOT NULL,
    selected INTEGER NOT NULL,
    failed_sources INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL,
    output_dir TEXT NOT NULL,
    started_at TEXT NOT NULL,
    finished_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
`

// Open initializes or connects to the history database at dbPath.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// RecordRun inserts one run record.
func (s *Store) RecordRun(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (
            run_id, input_path, input_kind, method, total_frames,
            selected, failed_sources, status, output_dir, started_at, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID,
		rec.InputPath,
		rec.InputKind,
		rec.Method,
		rec.TotalFrames,
		rec.Selected,
		rec.FailedSrcs,
		rec.Status,
		rec.OutputDir,
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
		rec.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run record: %w", err)
	}
	return nil
}

// ListRecent returns up to limit run records, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	if limit < 1 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, run_id, input_path, input_kind, method, total_frames,
                selected, failed_sources, status, output_dir, started_at, finished_at
         FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec      Record
			started  string
			finished string
		)
		if err := rows.Scan(
			&rec.ID, &rec.RunID, &rec.InputPath, &rec.InputKind, &rec.Method,
			&rec.TotalFrames, &rec.Selected, &rec.FailedSrcs, &rec.Status,
			&rec.OutputDir, &started, &finished,
		); err != nil {
			return nil, fmt.Errorf("scan run record: %w", err)
		}
		rec.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		rec.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		records = append(records, rec)
	}
	return records, rows.Err()
}
