package memory

import (
	"context"
	"sort"
	"sync"

	"lowcap-signals/internal/storage"
)

// SnapshotArchive is an in-memory implementation of storage.SnapshotArchive.
type SnapshotArchive struct {
	mu      sync.RWMutex
	records []*storage.SnapshotRecord
}

// NewSnapshotArchive creates a new in-memory snapshot archive.
func NewSnapshotArchive() *SnapshotArchive {
	return &SnapshotArchive{}
}

// InsertBulk adds multiple snapshot records.
func (a *SnapshotArchive) InsertBulk(_ context.Context, records []*storage.SnapshotRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, r := range records {
		if r == nil {
			return storage.ErrInvalidInput
		}
		recordCopy := *r
		a.records = append(a.records, &recordCopy)
	}
	return nil
}

// GetBySymbol retrieves archived snapshots for a symbol, ordered by fetched_at ASC.
func (a *SnapshotArchive) GetBySymbol(_ context.Context, symbol string) ([]*storage.SnapshotRecord, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var result []*storage.SnapshotRecord
	for _, r := range a.records {
		if r.Symbol == symbol {
			recordCopy := *r
			result = append(result, &recordCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].FetchedAt.Before(result[j].FetchedAt)
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.SnapshotArchive = (*SnapshotArchive)(nil)
