// SQLite sample-run storage.
//
// Information Hiding:
// - SQLite connection management hidden behind the store type
// - Schema and migration details encapsulated
// - Thread-safe via sql.DB's built-in connection pooling

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pewresearch/search-sampler/internal/dates"
	"github.com/pewresearch/search-sampler/model"
)

// SqliteStore persists sampling runs in a SQLite database file. Each run
// gets a fresh UUID; rows append across runs, mirroring the CSV store's
// merge-on-append behavior.
type SqliteStore struct {
	db *sql.DB
}

// RunInfo summarizes one stored run.
type RunInfo struct {
	RunID     string
	Region    string
	Name      string
	QueryTime time.Time
	RowCount  int
}

// OpenSqlite opens or creates a SQLite database at the given path.
// Creates parent directories if they don't exist.
func OpenSqlite(path string) (*SqliteStore, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	store := &SqliteStore{db: db}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// NewSqliteInMemory creates an in-memory database (useful for testing).
func NewSqliteInMemory() (*SqliteStore, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite: %w", err)
	}

	store := &SqliteStore{db: db}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *SqliteStore) Close() error {
	return s.db.Close()
}

func (s *SqliteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			region TEXT NOT NULL,
			name TEXT NOT NULL,
			query_time TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE INDEX IF NOT EXISTS idx_runs_region_name
		ON runs(region, name);

		CREATE TABLE IF NOT EXISTS samples (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			term TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			sample_idx INTEGER NOT NULL,
			value REAL NOT NULL,
			FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_samples_run
		ON samples(run_id, term, timestamp);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveRun stores one run's rows and returns its generated run ID. The
// query_time recorded for the run is taken from the rows (it is constant
// across a run by construction).
func (s *SqliteStore) SaveRun(ctx context.Context, region model.Region, name string, rows []model.SampleRow) (string, error) {
	runID := uuid.NewString()

	queryTime := time.Time{}
	if len(rows) > 0 {
		queryTime = rows[0].QueryTime
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	// defer tx.Rollback() is safe even after Commit() - it becomes a no-op
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO runs (run_id, region, name, query_time) VALUES (?, ?, ?, ?)",
		runID, region.Label(), name, queryTime.Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO samples (run_id, term, timestamp, sample_idx, value) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return "", fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		_, err = stmt.ExecContext(ctx, runID, row.Term, dates.FormatISO(row.Timestamp), row.Sample, row.Value)
		if err != nil {
			return "", fmt.Errorf("failed to insert sample: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}
	return runID, nil
}

// LoadRun returns the rows of a stored run in insertion order.
func (s *SqliteStore) LoadRun(ctx context.Context, runID string) ([]model.SampleRow, error) {
	var queryTimeStr string
	err := s.db.QueryRowContext(ctx,
		"SELECT query_time FROM runs WHERE run_id = ?", runID).Scan(&queryTimeStr)
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}
	queryTime, err := time.Parse(time.RFC3339, queryTimeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid query time for run %s: %w", runID, err)
	}

	rowsIter, err := s.db.QueryContext(ctx,
		"SELECT term, timestamp, sample_idx, value FROM samples WHERE run_id = ? ORDER BY id", runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load samples: %w", err)
	}
	defer rowsIter.Close()

	var rows []model.SampleRow
	for rowsIter.Next() {
		var row model.SampleRow
		var timestampStr string
		if err := rowsIter.Scan(&row.Term, &timestampStr, &row.Sample, &row.Value); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		row.Timestamp, err = dates.ParseISO(timestampStr)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp in run %s: %w", runID, err)
		}
		row.QueryTime = queryTime
		rows = append(rows, row)
	}
	if err := rowsIter.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate samples: %w", err)
	}
	return rows, nil
}

// ListRuns returns summaries of all stored runs, newest first.
func (s *SqliteStore) ListRuns(ctx context.Context) ([]RunInfo, error) {
	rowsIter, err := s.db.QueryContext(ctx, `
		SELECT r.run_id, r.region, r.name, r.query_time, COUNT(s.id)
		FROM runs r LEFT JOIN samples s ON s.run_id = r.run_id
		GROUP BY r.run_id
		ORDER BY r.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rowsIter.Close()

	var runs []RunInfo
	for rowsIter.Next() {
		var info RunInfo
		var queryTimeStr string
		if err := rowsIter.Scan(&info.RunID, &info.Region, &info.Name, &queryTimeStr, &info.RowCount); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		info.QueryTime, err = time.Parse(time.RFC3339, queryTimeStr)
		if err != nil {
			return nil, fmt.Errorf("invalid query time for run %s: %w", info.RunID, err)
		}
		runs = append(runs, info)
	}
	if err := rowsIter.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}
