package domain

import (
	"context"
	"io"
	"time"
)

// RunStore persists replay run metadata.
type RunStore interface {
	Create(ctx context.Context, run Run) error
	Finish(ctx context.Context, run Run) error
	GetByID(ctx context.Context, id string) (Run, error)
	ListByDay(ctx context.Context, day string) ([]Run, error)
}

// FillStore persists the append-only fill log of a run.
type FillStore interface {
	InsertBatch(ctx context.Context, runID string, fills []Fill) error
	ListByRun(ctx context.Context, runID string) ([]Fill, error)
}

// EquityStore persists the append-only equity curve of a run.
type EquityStore interface {
	InsertBatch(ctx context.Context, runID string, snaps []EquitySnapshot) error
	ListByRun(ctx context.Context, runID string) ([]EquitySnapshot, error)
}

// LockManager provides distributed locks so concurrent batch workers never
// replay the same day twice.
type LockManager interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}

// ProgressBus publishes in-flight run progress for external monitors.
type ProgressBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// BlobWriter uploads result artifacts to object storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}
