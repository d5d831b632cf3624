package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"lowcap-signals/internal/domain"
	"lowcap-signals/internal/storage"
)

// SignalStore implements storage.SignalStore using PostgreSQL.
type SignalStore struct {
	pool *Pool
}

// NewSignalStore creates a new SignalStore.
func NewSignalStore(pool *Pool) *SignalStore {
	return &SignalStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SignalStore = (*SignalStore)(nil)

const signalColumns = `signal_id, token_symbol, token_name, type, price, source, is_premium, analysis, channel, created_at`

// Insert adds a new signal. Returns ErrDuplicateKey if signal_id exists.
func (s *SignalStore) Insert(ctx context.Context, sig *domain.Signal) error {
	query := `
		INSERT INTO signals (
			signal_id, token_symbol, token_name, type, price, source, is_premium, analysis, channel, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.pool.Exec(ctx, query,
		sig.SignalID,
		sig.TokenSymbol,
		sig.TokenName,
		string(sig.Type),
		sig.Price,
		sig.Source,
		sig.IsPremium,
		sig.Analysis,
		sig.Channel,
		sig.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert signal: %w", err)
	}
	return nil
}

// GetByID retrieves a signal by its ID. Returns ErrNotFound if not exists.
func (s *SignalStore) GetByID(ctx context.Context, signalID string) (*domain.Signal, error) {
	query := `
		SELECT ` + signalColumns + `
		FROM signals
		WHERE signal_id = $1
	`

	row := s.pool.QueryRow(ctx, query, signalID)
	sig, err := scanSignal(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get signal by id: %w", err)
	}
	return sig, nil
}

// GetBySymbol retrieves all signals for a token symbol, ordered by created_at ASC.
func (s *SignalStore) GetBySymbol(ctx context.Context, symbol string) ([]*domain.Signal, error) {
	query := `
		SELECT ` + signalColumns + `
		FROM signals
		WHERE token_symbol = $1
		ORDER BY created_at ASC, signal_id ASC
	`

	rows, err := s.pool.Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("get signals by symbol: %w", err)
	}
	defer rows.Close()

	return scanSignals(rows)
}

// GetByTimeRange retrieves signals created within [start, end] (inclusive).
func (s *SignalStore) GetByTimeRange(ctx context.Context, start, end time.Time) ([]*domain.Signal, error) {
	query := `
		SELECT ` + signalColumns + `
		FROM signals
		WHERE created_at >= $1 AND created_at <= $2
		ORDER BY created_at ASC, signal_id ASC
	`

	rows, err := s.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("get signals by time range: %w", err)
	}
	defer rows.Close()

	return scanSignals(rows)
}

// GetLatest retrieves the most recent signals, newest first.
func (s *SignalStore) GetLatest(ctx context.Context, limit int) ([]*domain.Signal, error) {
	query := `
		SELECT ` + signalColumns + `
		FROM signals
		ORDER BY created_at DESC, signal_id DESC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("get latest signals: %w", err)
	}
	defer rows.Close()

	return scanSignals(rows)
}

// scanSignal scans a single row into a Signal.
func scanSignal(row pgx.Row) (*domain.Signal, error) {
	var sig domain.Signal
	var typeStr string

	err := row.Scan(
		&sig.SignalID,
		&sig.TokenSymbol,
		&sig.TokenName,
		&typeStr,
		&sig.Price,
		&sig.Source,
		&sig.IsPremium,
		&sig.Analysis,
		&sig.Channel,
		&sig.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	sig.Type = domain.SignalType(typeStr)
	sig.CreatedAt = sig.CreatedAt.UTC()
	return &sig, nil
}

// scanSignals scans multiple rows into a slice of Signal.
func scanSignals(rows pgx.Rows) ([]*domain.Signal, error) {
	var signals []*domain.Signal

	for rows.Next() {
		sig, err := scanSignal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan signal row: %w", err)
		}
		signals = append(signals, sig)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signal rows: %w", err)
	}

	return signals, nil
}
