package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/petroverse/ingest-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. It keeps run
// history for file-only runs where no Postgres is configured.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS normalization_runs (
	id          TEXT PRIMARY KEY,
	status      TEXT NOT NULL,
	input_files TEXT NOT NULL DEFAULT '[]',
	summary     TEXT,
	error       TEXT,
	started_at  DATETIME NOT NULL,
	finished_at DATETIME
);
`

// Migrate creates the run-history table.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "sqlite: migrate")
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateRun inserts a new running batch row.
func (s *SQLiteStore) CreateRun(ctx context.Context, inputFiles []string) (*model.Run, error) {
	run := &model.Run{
		ID:         uuid.NewString(),
		Status:     model.RunStatusRunning,
		InputFiles: inputFiles,
		StartedAt:  time.Now().UTC(),
	}

	files, err := json.Marshal(run.InputFiles)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal input files")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO normalization_runs (id, status, input_files, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, string(run.Status), string(files), run.StartedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}
	return run, nil
}

// CompleteRun marks a run complete and stores its summary.
func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, summary model.RunSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal summary")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE normalization_runs SET status = ?, summary = ?, finished_at = ? WHERE id = ?`,
		string(model.RunStatusComplete), string(data), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: complete run")
	}
	return checkAffected(res)
}

// FailRun marks a run failed with the operator-facing message.
func (s *SQLiteStore) FailRun(ctx context.Context, runID string, message string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE normalization_runs SET status = ?, error = ?, finished_at = ? WHERE id = ?`,
		string(model.RunStatusFailed), message, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: fail run")
	}
	return checkAffected(res)
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return ErrRunNotFound
	}
	return nil
}

// GetRun fetches one run by id.
func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, status, input_files, summary, error, started_at, finished_at
		 FROM normalization_runs WHERE id = ?`, runID)

	run, err := scanSQLiteRun(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get run")
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, status, input_files, summary, error, started_at, finished_at
		 FROM normalization_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []model.Run
	for rows.Next() {
		run, err := scanSQLiteRun(rows.Scan)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func scanSQLiteRun(scan func(...any) error) (*model.Run, error) {
	var run model.Run
	var files string
	var summary sql.NullString
	var errMsg sql.NullString
	var finished sql.NullTime

	if err := scan(&run.ID, &run.Status, &files, &summary, &errMsg, &run.StartedAt, &finished); err != nil {
		return nil, err
	}

	if files != "" {
		if err := json.Unmarshal([]byte(files), &run.InputFiles); err != nil {
			return nil, eris.Wrap(err, "unmarshal input files")
		}
	}
	if summary.Valid && summary.String != "" {
		run.Summary = &model.RunSummary{}
		if err := json.Unmarshal([]byte(summary.String), run.Summary); err != nil {
			return nil, eris.Wrap(err, "unmarshal summary")
		}
	}
	if errMsg.Valid {
		run.Error = errMsg.String
	}
	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}
	return &run, nil
}
