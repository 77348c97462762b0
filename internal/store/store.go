package store

import (
	"context"

	"github.com/starford/tmgr/internal/models"
)

// TaskStore defines the store operations used by the command engine.
// Consumers depend on this interface rather than *DB.
type TaskStore interface {
	Insert(ctx context.Context, t models.Task) (models.Task, error)
	All(ctx context.Context) ([]models.Task, error)
	InProgress(ctx context.Context) ([]models.Task, error)
	SelectByPartialID(ctx context.Context, p string) (models.Task, error)
	ReplaceField(ctx context.Context, id string, field Field, value any) (models.Task, error)
	Merge(ctx context.Context, id string, p Patch) (models.Task, error)
	Delete(ctx context.Context, id string) error
	AggregateCounts(ctx context.Context) (Counts, error)
	RewritePriority(ctx context.Context, from, to models.Priority) (int64, error)
	Location() string
	Close() error
}

// Verify *DB satisfies TaskStore at compile time.
var _ TaskStore = (*DB)(nil)
