package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"lowcap-signals/internal/domain"
	"lowcap-signals/internal/storage"
)

// SignalStore is an in-memory implementation of storage.SignalStore.
type SignalStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Signal // keyed by signal_id
}

// NewSignalStore creates a new in-memory signal store.
func NewSignalStore() *SignalStore {
	return &SignalStore{
		data: make(map[string]*domain.Signal),
	}
}

// Insert adds a new signal. Returns ErrDuplicateKey if signal_id exists.
func (s *SignalStore) Insert(_ context.Context, sig *domain.Signal) error {
	if sig == nil || sig.SignalID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[sig.SignalID]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	sigCopy := *sig
	s.data[sig.SignalID] = &sigCopy
	return nil
}

// GetByID retrieves a signal by its ID. Returns ErrNotFound if not exists.
func (s *SignalStore) GetByID(_ context.Context, signalID string) (*domain.Signal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sig, exists := s.data[signalID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	sigCopy := *sig
	return &sigCopy, nil
}

// GetBySymbol retrieves all signals for a token symbol, ordered by created_at ASC.
func (s *SignalStore) GetBySymbol(_ context.Context, symbol string) ([]*domain.Signal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Signal
	for _, sig := range s.data {
		if sig.TokenSymbol == symbol {
			sigCopy := *sig
			result = append(result, &sigCopy)
		}
	}

	sortByCreatedAtAsc(result)
	return result, nil
}

// GetByTimeRange retrieves signals created within [start, end] (inclusive).
func (s *SignalStore) GetByTimeRange(_ context.Context, start, end time.Time) ([]*domain.Signal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Signal
	for _, sig := range s.data {
		if !sig.CreatedAt.Before(start) && !sig.CreatedAt.After(end) {
			sigCopy := *sig
			result = append(result, &sigCopy)
		}
	}

	sortByCreatedAtAsc(result)
	return result, nil
}

// GetLatest retrieves the most recent signals, newest first.
func (s *SignalStore) GetLatest(_ context.Context, limit int) ([]*domain.Signal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Signal, 0, len(s.data))
	for _, sig := range s.data {
		sigCopy := *sig
		result = append(result, &sigCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].SignalID > result[j].SignalID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func sortByCreatedAtAsc(signals []*domain.Signal) {
	sort.Slice(signals, func(i, j int) bool {
		if !signals[i].CreatedAt.Equal(signals[j].CreatedAt) {
			return signals[i].CreatedAt.Before(signals[j].CreatedAt)
		}
		return signals[i].SignalID < signals[j].SignalID
	})
}

// Verify interface compliance at compile time.
var _ storage.SignalStore = (*SignalStore)(nil)
