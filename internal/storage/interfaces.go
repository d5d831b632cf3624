package storage

import (
	"context"
	"time"

	"lowcap-signals/internal/domain"
)

// SignalStore is the persistence boundary for finished signals. Writes are
// single best-effort inserts: a failure is logged by the caller, never
// retried, and carries no transaction or idempotency guarantee beyond the
// primary-key dedup.
type SignalStore interface {
	// Insert adds a new signal. Returns ErrDuplicateKey if signal_id exists.
	Insert(ctx context.Context, s *domain.Signal) error

	// GetByID retrieves a signal by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, signalID string) (*domain.Signal, error)

	// GetBySymbol retrieves all signals for a token symbol, ordered by created_at ASC.
	GetBySymbol(ctx context.Context, symbol string) ([]*domain.Signal, error)

	// GetByTimeRange retrieves signals created within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, start, end time.Time) ([]*domain.Signal, error)

	// GetLatest retrieves the most recent signals, newest first.
	GetLatest(ctx context.Context, limit int) ([]*domain.Signal, error)
}

// SnapshotRecord is one archived enrichment readout.
type SnapshotRecord struct {
	SignalID  string
	Symbol    string
	Snapshot  domain.MarketSnapshot
	FetchedAt time.Time
}

// SnapshotArchive stores the market snapshots observed during enrichment
// for offline analysis. Best effort; archive failures never block a signal.
type SnapshotArchive interface {
	// InsertBulk adds multiple snapshot records.
	InsertBulk(ctx context.Context, records []*SnapshotRecord) error

	// GetBySymbol retrieves archived snapshots for a symbol, ordered by fetched_at ASC.
	GetBySymbol(ctx context.Context, symbol string) ([]*SnapshotRecord, error)
}
