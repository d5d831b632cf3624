package clickhouse

import (
	"context"
	"fmt"
	"time"

	"lowcap-signals/internal/domain"
	"lowcap-signals/internal/storage"
)

// SnapshotArchive implements storage.SnapshotArchive using ClickHouse.
type SnapshotArchive struct {
	conn *Conn
}

// NewSnapshotArchive creates a new SnapshotArchive.
func NewSnapshotArchive(conn *Conn) *SnapshotArchive {
	return &SnapshotArchive{conn: conn}
}

// Compile-time interface check.
var _ storage.SnapshotArchive = (*SnapshotArchive)(nil)

// InsertBulk adds multiple snapshot records in one batch.
func (s *SnapshotArchive) InsertBulk(ctx context.Context, records []*storage.SnapshotRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO snapshot_archive (
			signal_id, symbol, token_name, market_cap, volume_24h, price, price_change_24h, available, fetched_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range records {
		err := batch.Append(
			r.SignalID,
			r.Symbol,
			r.Snapshot.TokenName,
			r.Snapshot.MarketCap,
			r.Snapshot.Volume24h,
			r.Snapshot.Price,
			r.Snapshot.PriceChange24h,
			boolToUInt8(r.Snapshot.Available),
			r.FetchedAt,
		)
		if err != nil {
			return fmt.Errorf("append record: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetBySymbol retrieves archived snapshots for a symbol, ordered by fetched_at ASC.
func (s *SnapshotArchive) GetBySymbol(ctx context.Context, symbol string) ([]*storage.SnapshotRecord, error) {
	query := `
		SELECT signal_id, symbol, token_name, market_cap, volume_24h, price, price_change_24h, available, fetched_at
		FROM snapshot_archive
		WHERE symbol = ?
		ORDER BY fetched_at ASC
	`

	rows, err := s.conn.Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("query snapshots by symbol: %w", err)
	}
	defer rows.Close()

	var records []*storage.SnapshotRecord
	for rows.Next() {
		var (
			r         storage.SnapshotRecord
			snap      domain.MarketSnapshot
			available uint8
			fetchedAt time.Time
		)
		err := rows.Scan(
			&r.SignalID,
			&r.Symbol,
			&snap.TokenName,
			&snap.MarketCap,
			&snap.Volume24h,
			&snap.Price,
			&snap.PriceChange24h,
			&available,
			&fetchedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		snap.Available = available != 0
		r.Snapshot = snap
		r.FetchedAt = fetchedAt.UTC()
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}

	return records, nil
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
