package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/petroverse/ingest-cli/internal/db"
	"github.com/petroverse/ingest-cli/internal/model"
)

// ErrRunNotFound is returned when a run id has no row.
var ErrRunNotFound = errors.New("store: run not found")

// PostgresStore implements Store and Loader on a pgx pool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresFromPool wraps an existing pool; used by tests and by
// commands that share one pool across store and migrations.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, closeFn: func() {}}
}

// Pool exposes the underlying pool for migration runs.
func (s *PostgresStore) Pool() db.Pool { return s.pool }

// Migrate applies pending schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return MigratePostgres(ctx, s.pool)
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.closeFn()
	return nil
}

// CreateRun inserts a new running batch row.
func (s *PostgresStore) CreateRun(ctx context.Context, inputFiles []string) (*model.Run, error) {
	run := &model.Run{
		ID:         uuid.NewString(),
		Status:     model.RunStatusRunning,
		InputFiles: inputFiles,
		StartedAt:  time.Now().UTC(),
	}

	files, err := json.Marshal(run.InputFiles)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal input files")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO petroverse.normalization_runs (id, status, input_files, started_at) VALUES ($1, $2, $3, $4)`,
		run.ID, string(run.Status), files, run.StartedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}
	return run, nil
}

// CompleteRun marks a run complete and stores its summary.
func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, summary model.RunSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal summary")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE petroverse.normalization_runs SET status = $1, summary = $2, finished_at = now() WHERE id = $3`,
		string(model.RunStatusComplete), data, runID,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: complete run")
	}
	if tag.RowsAffected() == 0 {
		return ErrRunNotFound
	}
	return nil
}

// FailRun marks a run failed with the operator-facing message.
func (s *PostgresStore) FailRun(ctx context.Context, runID string, message string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE petroverse.normalization_runs SET status = $1, error = $2, finished_at = now() WHERE id = $3`,
		string(model.RunStatusFailed), message, runID,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: fail run")
	}
	if tag.RowsAffected() == 0 {
		return ErrRunNotFound
	}
	return nil
}

const runColumns = `id, status, input_files, summary, error, started_at, finished_at`

// GetRun fetches one run by id.
func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+runColumns+` FROM petroverse.normalization_runs WHERE id = $1`, runID)

	run, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get run")
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+runColumns+` FROM petroverse.normalization_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func scanRun(row pgx.Row) (*model.Run, error) {
	var run model.Run
	var files []byte
	var summary []byte
	var errMsg *string

	if err := row.Scan(&run.ID, &run.Status, &files, &summary, &errMsg, &run.StartedAt, &run.FinishedAt); err != nil {
		return nil, err
	}

	if len(files) > 0 {
		if err := json.Unmarshal(files, &run.InputFiles); err != nil {
			return nil, eris.Wrap(err, "unmarshal input files")
		}
	}
	if len(summary) > 0 {
		run.Summary = &model.RunSummary{}
		if err := json.Unmarshal(summary, run.Summary); err != nil {
			return nil, eris.Wrap(err, "unmarshal summary")
		}
	}
	if errMsg != nil {
		run.Error = *errMsg
	}
	return &run, nil
}

var factColumns = []string{
	"company_id", "product_id", "time_id",
	"volume_liters", "volume_kg", "volume_mt",
	"unit_type", "data_quality_score", "is_outlier", "source_file",
}

// LoadBatch replaces the fact table with the batch. Dimension rows are
// upserted first (idempotent, safe to leave behind on failure); the fact
// table itself is swapped in a single transaction so a failed load leaves
// the previous facts untouched.
func (s *PostgresStore) LoadBatch(ctx context.Context, records []model.NormalizedRecord) (int64, error) {
	companyIDs, err := s.upsertCompanies(ctx, records)
	if err != nil {
		return 0, err
	}
	productIDs, err := s.upsertProducts(ctx, records)
	if err != nil {
		return 0, err
	}
	timeIDs, err := s.upsertTimes(ctx, records)
	if err != nil {
		return 0, err
	}

	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []any{
			companyIDs[rec.CompanyName],
			productIDs[rec.Product],
			timeIDs[timeKey(rec.Year, rec.Month)],
			rec.VolumeLiters,
			rec.VolumeKG,
			rec.VolumeMT,
			string(rec.UnitType),
			rec.DataQualityScore,
			rec.IsOutlier,
			rec.SourceFile,
		})
	}

	return db.TruncateReload(ctx, s.pool, db.ReloadConfig{
		Table:   "petroverse.fact_supply",
		Columns: factColumns,
	}, rows)
}

func timeKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

func (s *PostgresStore) upsertCompanies(ctx context.Context, records []model.NormalizedRecord) (map[string]int, error) {
	ids := make(map[string]int)
	for _, rec := range records {
		if _, ok := ids[rec.CompanyName]; ok {
			continue
		}
		var id int
		err := s.pool.QueryRow(ctx,
			`INSERT INTO petroverse.companies (name, company_type) VALUES ($1, $2)
			 ON CONFLICT (name) DO UPDATE SET company_type = CASE WHEN EXCLUDED.company_type <> '' THEN EXCLUDED.company_type ELSE petroverse.companies.company_type END
			 RETURNING id`,
			rec.CompanyName, rec.CompanyType,
		).Scan(&id)
		if err != nil {
			return nil, eris.Wrapf(err, "postgres: upsert company %q", rec.CompanyName)
		}
		ids[rec.CompanyName] = id
	}
	return ids, nil
}

func (s *PostgresStore) upsertProducts(ctx context.Context, records []model.NormalizedRecord) (map[string]int, error) {
	ids := make(map[string]int)
	for _, rec := range records {
		if _, ok := ids[rec.Product]; ok {
			continue
		}
		var id int
		err := s.pool.QueryRow(ctx,
			`INSERT INTO petroverse.products (name, product_code) VALUES ($1, $2)
			 ON CONFLICT (name) DO UPDATE SET product_code = EXCLUDED.product_code
			 RETURNING id`,
			rec.Product, rec.ProductCode,
		).Scan(&id)
		if err != nil {
			return nil, eris.Wrapf(err, "postgres: upsert product %q", rec.Product)
		}
		ids[rec.Product] = id
	}
	return ids, nil
}

func (s *PostgresStore) upsertTimes(ctx context.Context, records []model.NormalizedRecord) (map[string]int, error) {
	ids := make(map[string]int)
	for _, rec := range records {
		key := timeKey(rec.Year, rec.Month)
		if _, ok := ids[key]; ok {
			continue
		}
		var id int
		err := s.pool.QueryRow(ctx,
			`INSERT INTO petroverse.time_dim (year, month) VALUES ($1, $2)
			 ON CONFLICT (year, month) DO UPDATE SET year = EXCLUDED.year
			 RETURNING id`,
			rec.Year, rec.Month,
		).Scan(&id)
		if err != nil {
			return nil, eris.Wrapf(err, "postgres: upsert time %d-%02d", rec.Year, rec.Month)
		}
		ids[key] = id
	}
	return ids, nil
}
