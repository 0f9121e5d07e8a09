// Package store persists normalization runs and loads normalized batches
// into the relational schema.
package store

import (
	"context"

	"github.com/petroverse/ingest-cli/internal/model"
)

// Store defines run-history persistence. Both backends implement it:
// Postgres for the shared schema, SQLite for offline file-only runs.
type Store interface {
	CreateRun(ctx context.Context, inputFiles []string) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, summary model.RunSummary) error
	FailRun(ctx context.Context, runID string, message string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Loader loads a normalized batch into the dimensional schema. Only the
// Postgres backend is a Loader; file-only runs skip it.
type Loader interface {
	LoadBatch(ctx context.Context, records []model.NormalizedRecord) (int64, error)
}
