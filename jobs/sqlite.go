package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite is a file-backed Store for deployments where job records should
// survive process restarts or be shared across processes.
type SQLite struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS jobs (
  id TEXT PRIMARY KEY,
  status TEXT NOT NULL,
  created_at INTEGER NOT NULL,
  completed_at INTEGER,
  result_json TEXT,
  error_message TEXT
);
`); err != nil {
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) Create(ctx context.Context, job Job) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, status, created_at) VALUES (?, ?, ?)`,
		job.ID, string(job.Status), job.CreatedAt.UnixMilli(),
	)
	return err
}

func (s *SQLite) Get(ctx context.Context, id string) (Job, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, status, created_at, completed_at, result_json, error_message FROM jobs WHERE id = ?`, id)

	var (
		jid, statusStr string
		createdMs      int64
		completedMs    sql.NullInt64
		resultJSON     sql.NullString
		errorMsg       sql.NullString
	)
	if err := row.Scan(&jid, &statusStr, &createdMs, &completedMs, &resultJSON, &errorMsg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Job{}, ErrNotFound
		}
		return Job{}, err
	}

	job := Job{
		ID:        jid,
		Status:    Status(statusStr),
		CreatedAt: time.UnixMilli(createdMs).UTC(),
		Error:     errorMsg.String,
	}
	if completedMs.Valid {
		t := time.UnixMilli(completedMs.Int64).UTC()
		job.CompletedAt = &t
	}
	if resultJSON.Valid {
		job.Result = json.RawMessage(resultJSON.String)
	}
	return job, nil
}

func (s *SQLite) SetProcessing(ctx context.Context, id string) error {
	return s.exec(ctx, `UPDATE jobs SET status = ? WHERE id = ?`, string(StatusProcessing), id)
}

func (s *SQLite) Complete(ctx context.Context, id string, result json.RawMessage) error {
	return s.exec(ctx,
		`UPDATE jobs SET status = ?, result_json = ?, completed_at = ? WHERE id = ?`,
		string(StatusCompleted), string(result), time.Now().UTC().UnixMilli(), id,
	)
}

func (s *SQLite) Fail(ctx context.Context, id string, message string) error {
	return s.exec(ctx,
		`UPDATE jobs SET status = ?, error_message = ?, completed_at = ? WHERE id = ?`,
		string(StatusFailed), message, time.Now().UTC().UnixMilli(), id,
	)
}

func (s *SQLite) Result(ctx context.Context, id string) (json.RawMessage, error) {
	job, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status != StatusCompleted {
		return nil, ErrNotReady
	}
	return job.Result, nil
}

func (s *SQLite) exec(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
