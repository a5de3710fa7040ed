package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// One connection serialises writers from concurrent batch workers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLiteStore{db: db, now: func() time.Time { return time.Now().UTC() }}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS jobs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			job_type TEXT NOT NULL,
			status TEXT NOT NULL,
			progress INTEGER NOT NULL DEFAULT 0,
			payload JSON,
			error TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS cases (
			key TEXT PRIMARY KEY,
			chart JSON,
			report JSON,
			active_count INTEGER NOT NULL DEFAULT 0,
			job_id INTEGER,
			analyzed_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_type_status ON jobs(job_type, status);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) stamp() string {
	return s.now().Format(time.RFC3339Nano)
}

// --- JobQueue Implementation ---

func (s *SQLiteStore) Enqueue(ctx context.Context, jobType string, payloads []json.RawMessage) ([]int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO jobs (job_type, status, progress, payload, created_at, updated_at)
		VALUES (?, ?, 0, ?, ?, ?)
	`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	now := s.stamp()
	ids := make([]int64, 0, len(payloads))
	for _, p := range payloads {
		res, err := stmt.ExecContext(ctx, jobType, StatusPending, string(p), now, now)
		if err != nil {
			return nil, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return ids, nil
}

const jobColumns = "id, job_type, status, progress, payload, error, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*Job, error) {
	var j Job
	var payload sql.NullString
	var created, updated string
	if err := row.Scan(&j.ID, &j.Type, &j.Status, &j.Progress, &payload, &j.Error, &created, &updated); err != nil {
		return nil, err
	}
	if payload.Valid {
		j.Payload = json.RawMessage(payload.String)
	}
	j.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	j.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return &j, nil
}

func (s *SQLiteStore) Pending(ctx context.Context, jobType string, limit int) ([]Job, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+jobColumns+" FROM jobs WHERE job_type = ? AND status = ? ORDER BY id LIMIT ?", jobType, StatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

func (s *SQLiteStore) GetJob(ctx context.Context, id int64) (*Job, error) {
	j, err := scanJob(s.db.QueryRowContext(ctx, "SELECT "+jobColumns+" FROM jobs WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("job %d: %w", id, ErrNotFound)
	}
	return j, err
}

func (s *SQLiteStore) Advance(ctx context.Context, id int64, progress int) error {
	return s.updateJob(ctx, id, "progress = ?", progress)
}

func (s *SQLiteStore) MarkFinished(ctx context.Context, id int64) error {
	return s.updateJob(ctx, id, "status = ?, error = ''", StatusFinished)
}

func (s *SQLiteStore) MarkFailed(ctx context.Context, id int64, reason string) error {
	return s.updateJob(ctx, id, "status = ?, error = ?", StatusFailed, reason)
}

func (s *SQLiteStore) updateJob(ctx context.Context, id int64, set string, args ...any) error {
	args = append(args, s.stamp(), id)
	res, err := s.db.ExecContext(ctx, "UPDATE jobs SET "+set+", updated_at = ? WHERE id = ?", args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("job %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) Reset(ctx context.Context, jobType string, statuses ...JobStatus) (int64, error) {
	if len(statuses) == 0 {
		statuses = []JobStatus{StatusFinished, StatusFailed}
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(statuses)), ", ")
	args := []any{StatusPending, s.stamp(), jobType}
	for _, st := range statuses {
		args = append(args, st)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE jobs SET status = ?, progress = 0, error = '', updated_at = ?
		WHERE job_type = ? AND status IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) Counts(ctx context.Context, jobType string) (map[JobStatus]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM jobs WHERE job_type = ? GROUP BY status", jobType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[JobStatus]int{
		StatusPending:  0,
		StatusFinished: 0,
		StatusFailed:   0,
	}
	for rows.Next() {
		var st JobStatus
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		counts[st] = n
	}
	return counts, rows.Err()
}

// --- CaseStore Implementation ---

func (s *SQLiteStore) SaveCase(ctx context.Context, c Case) error {
	chartJSON, err := json.Marshal(c.Chart)
	if err != nil {
		return fmt.Errorf("failed to encode chart: %w", err)
	}
	reportJSON, err := json.Marshal(c.Report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	analyzed := c.AnalyzedAt
	if analyzed.IsZero() {
		analyzed = s.now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cases (key, chart, report, active_count, job_id, analyzed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			chart=excluded.chart,
			report=excluded.report,
			active_count=excluded.active_count,
			job_id=excluded.job_id,
			analyzed_at=excluded.analyzed_at
	`, c.Key, chartJSON, reportJSON, len(c.Report.Active()), c.JobID, analyzed.Format(time.RFC3339Nano))
	return err
}

func scanCase(row rowScanner) (*Case, error) {
	var c Case
	var chartJSON, reportJSON []byte
	var jobID sql.NullInt64
	var analyzed string
	if err := row.Scan(&c.Key, &chartJSON, &reportJSON, &jobID, &analyzed); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(chartJSON, &c.Chart); err != nil {
		return nil, fmt.Errorf("case %s: failed to decode chart: %w", c.Key, err)
	}
	if err := json.Unmarshal(reportJSON, &c.Report); err != nil {
		return nil, fmt.Errorf("case %s: failed to decode report: %w", c.Key, err)
	}
	c.JobID = jobID.Int64
	c.AnalyzedAt, _ = time.Parse(time.RFC3339Nano, analyzed)
	return &c, nil
}

func (s *SQLiteStore) GetCase(ctx context.Context, key string) (*Case, error) {
	c, err := scanCase(s.db.QueryRowContext(ctx, "SELECT key, chart, report, job_id, analyzed_at FROM cases WHERE key = ?", key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("case %q: %w", key, ErrNotFound)
	}
	return c, err
}

func (s *SQLiteStore) ListCases(ctx context.Context, limit int) ([]Case, error) {
	if limit <= 0 {
		limit = -1 // sqlite: no limit
	}
	rows, err := s.db.QueryContext(ctx, "SELECT key, chart, report, job_id, analyzed_at FROM cases ORDER BY key LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query cases: %w", err)
	}
	defer rows.Close()

	var cases []Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		cases = append(cases, *c)
	}
	return cases, rows.Err()
}
