package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// ReloadConfig defines a full truncate-and-reload of one table.
type ReloadConfig struct {
	Table   string   // target table (e.g., "petroverse.fact_supply")
	Columns []string // columns being inserted
}

// TruncateReload replaces a table's entire contents inside one
// transaction: TRUNCATE, then COPY the new rows. Either the table ends up
// holding exactly the new rows or it is left untouched; a batch is never
// half-written.
func TruncateReload(ctx context.Context, pool Pool, cfg ReloadConfig, rows [][]any) (int64, error) {
	if cfg.Table == "" {
		return 0, eris.New("db: reload: no table specified")
	}
	if len(cfg.Columns) == 0 {
		return 0, eris.New("db: reload: no columns specified")
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "db: reload: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, "TRUNCATE TABLE "+sanitizeTable(cfg.Table)); err != nil {
		return 0, eris.Wrapf(err, "db: reload: truncate %s", cfg.Table)
	}

	var n int64
	if len(rows) > 0 {
		n, err = tx.CopyFrom(ctx, tableIdent(cfg.Table), cfg.Columns, pgx.CopyFromRows(rows))
		if err != nil {
			return 0, eris.Wrapf(err, "db: reload: COPY INTO %s", cfg.Table)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "db: reload: commit tx")
	}

	return n, nil
}
