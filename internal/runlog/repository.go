package runlog

import (
	"database/sql"
	"fmt"
	"time"

	"oikenops/flowmetrics/internal/database"
)

// Repository defines the persistence interface for run records.
type Repository interface {
	Save(record *RunRecord) error
	ListRecent(n int) ([]RunRecord, error)
	Prune(olderThan time.Duration) (int64, error)
	Close() error
}

// SQLiteRepository implements Repository backed by a local SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

// Open creates or opens the run log at the default database path.
func Open() (*SQLiteRepository, error) {
	path, err := database.DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("runlog: %w", err)
	}
	return OpenAt(path)
}

// OpenAt creates or opens a SQLite database at the given path.
func OpenAt(path string) (*SQLiteRepository, error) {
	db, err := database.Open(path)
	if err != nil {
		return nil, fmt.Errorf("runlog: %w", err)
	}

	r := &SQLiteRepository{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *SQLiteRepository) migrate() error {
	const ddl = `
        CREATE TABLE IF NOT EXISTS runs (
            id                INTEGER PRIMARY KEY AUTOINCREMENT,
            started_at        TEXT    NOT NULL,
            finished_at       TEXT    NOT NULL DEFAULT '',
            start_date        TEXT    NOT NULL,
            end_date          TEXT    NOT NULL,
            windows_total     INTEGER NOT NULL DEFAULT 0,
            windows_succeeded INTEGER NOT NULL DEFAULT 0,
            records_written   INTEGER NOT NULL DEFAULT 0,
            hourly_path       TEXT    NOT NULL DEFAULT '',
            daily_path        TEXT    NOT NULL DEFAULT '',
            outcome           TEXT    NOT NULL DEFAULT '',
            detail            TEXT    NOT NULL DEFAULT ''
        );
        CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
        CREATE INDEX IF NOT EXISTS idx_runs_outcome ON runs(outcome);
    `
	if _, err := r.db.Exec(ddl); err != nil {
		return fmt.Errorf("runlog: migration failed: %w", err)
	}
	return nil
}

// Save inserts a new run record and assigns its ID.
func (r *SQLiteRepository) Save(record *RunRecord) error {
	if record.StartedAt.IsZero() {
		record.StartedAt = time.Now().UTC()
	}

	result, err := r.db.Exec(`
        INSERT INTO runs (started_at, finished_at, start_date, end_date, windows_total,
                          windows_succeeded, records_written, hourly_path, daily_path, outcome, detail)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.StartedAt.Format(time.RFC3339Nano), formatTime(record.FinishedAt),
		record.StartDate, record.EndDate, record.WindowsTotal,
		record.WindowsSucceeded, record.RecordsWritten,
		record.HourlyPath, record.DailyPath, record.Outcome, record.Detail,
	)
	if err != nil {
		return fmt.Errorf("runlog: insert failed: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("runlog: failed to get last insert ID: %w", err)
	}
	record.ID = id
	return nil
}

// ListRecent returns the most recent n run records, newest first.
func (r *SQLiteRepository) ListRecent(n int) ([]RunRecord, error) {
	rows, err := r.db.Query(`
        SELECT id, started_at, finished_at, start_date, end_date, windows_total,
               windows_succeeded, records_written, hourly_path, daily_path, outcome, detail
        FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("runlog: query failed: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

// Prune removes run records older than the given age.
// Returns the number of records removed.
func (r *SQLiteRepository) Prune(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339Nano)
	result, err := r.db.Exec(`DELETE FROM runs WHERE started_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("runlog: delete failed: %w", err)
	}
	return result.RowsAffected()
}

// Close releases database resources.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func scanRows(rows *sql.Rows) ([]RunRecord, error) {
	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var startedStr, finishedStr string
		err := rows.Scan(
			&rec.ID, &startedStr, &finishedStr, &rec.StartDate, &rec.EndDate,
			&rec.WindowsTotal, &rec.WindowsSucceeded, &rec.RecordsWritten,
			&rec.HourlyPath, &rec.DailyPath, &rec.Outcome, &rec.Detail,
		)
		if err != nil {
			return nil, fmt.Errorf("runlog: scan failed: %w", err)
		}
		rec.StartedAt, _ = time.Parse(time.RFC3339Nano, startedStr)
		rec.FinishedAt, _ = time.Parse(time.RFC3339Nano, finishedStr)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}
