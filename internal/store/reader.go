package store

import (
	"context"
	"fmt"

	clickhouse "github.com/ClickHouse/clickhouse-go/v2"

	"github.com/BullionBear/lobkeeper/internal/model"
)

// EarliestSnapshotAfter returns the earliest (by ts) snapshot row for
// symbol with last_update_id > afterUpdateID, or nil if none exists —
// the anchor lookup C8's common algorithm opens with.
func (s *Store) EarliestSnapshotAfter(ctx context.Context, symbol string, afterUpdateID uint64) (*model.Snapshot, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT ts, last_update_id, bids_price, bids_quantity, asks_price, asks_quantity, symbol
		FROM snapshot
		WHERE symbol = ? AND last_update_id > ?
		ORDER BY ts
		LIMIT 1
	`, symbol, afterUpdateID)
	if err != nil {
		return nil, fmt.Errorf("store: earliest snapshot after: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var snap model.Snapshot
	if err := rows.Scan(
		&snap.Ts, &snap.LastUpdateID,
		&snap.BidsPrice, &snap.BidsQuantity,
		&snap.AsksPrice, &snap.AsksQuantity,
		&snap.Symbol,
	); err != nil {
		return nil, fmt.Errorf("store: scan earliest snapshot: %w", err)
	}
	return &snap, nil
}

// PendingSnapshotsAfter returns, ordered by ts, every snapshot for
// symbol with last_update_id > afterUpdateID — used by the replay
// engine as the re-anchor candidates following the initial anchor.
func (s *Store) PendingSnapshotsAfter(ctx context.Context, symbol string, afterUpdateID uint64) ([]model.Snapshot, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT ts, last_update_id, bids_price, bids_quantity, asks_price, asks_quantity, symbol
		FROM snapshot
		WHERE symbol = ? AND last_update_id > ?
		ORDER BY ts
	`, symbol, afterUpdateID)
	if err != nil {
		return nil, fmt.Errorf("store: pending snapshots: %w", err)
	}
	defer rows.Close()

	var out []model.Snapshot
	for rows.Next() {
		var snap model.Snapshot
		if err := rows.Scan(
			&snap.Ts, &snap.LastUpdateID,
			&snap.BidsPrice, &snap.BidsQuantity,
			&snap.AsksPrice, &snap.AsksQuantity,
			&snap.Symbol,
		); err != nil {
			return nil, fmt.Errorf("store: scan snapshot: %w", err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// DiffRows streams diff rows for symbol with final_update_id >=
// minFinalUpdateID, ordered by ts. The caller must Close() the
// returned DiffCursor. block_size (a pagination hint) is passed
// through as ClickHouse's max_block_size setting when > 0, matching
// replay.py's use of execute_iter(settings={"max_block_size": ...}).
func (s *Store) DiffRows(ctx context.Context, symbol string, minFinalUpdateID uint64, blockSize int) (DiffCursor, error) {
	if blockSize > 0 {
		ctx = clickhouseSettings(ctx, blockSize)
	}
	rows, err := s.conn.Query(ctx, `
		SELECT ts, first_update_id, final_update_id, bids_price, bids_quantity, asks_price, asks_quantity, symbol
		FROM diff
		WHERE symbol = ? AND final_update_id >= ?
		ORDER BY ts
	`, symbol, minFinalUpdateID)
	if err != nil {
		return nil, fmt.Errorf("store: diff rows: %w", err)
	}
	return &chDiffCursor{rows: rows}, nil
}

// DiffRowsAfter streams diff rows for symbol with first_update_id >
// afterUpdateID, ordered by first_update_id — the scan order C7's
// data-block discovery walks.
func (s *Store) DiffRowsAfter(ctx context.Context, symbol string, afterUpdateID uint64) (DiffCursor, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT ts, first_update_id, final_update_id, symbol
		FROM diff
		WHERE symbol = ? AND first_update_id > ?
		ORDER BY first_update_id
	`, symbol, afterUpdateID)
	if err != nil {
		return nil, fmt.Errorf("store: diff rows after: %w", err)
	}
	return &chDiffIDCursor{rows: rows}, nil
}

// SnapshotUpdateIDs returns every last_update_id recorded for symbol,
// in timestamp order — the raw feed for a data block's
// block_snapshot_ids filter.
func (s *Store) SnapshotUpdateIDs(ctx context.Context, symbol string) ([]uint64, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT last_update_id FROM snapshot WHERE symbol = ? ORDER BY ts
	`, symbol)
	if err != nil {
		return nil, fmt.Errorf("store: snapshot update ids: %w", err)
	}
	defer rows.Close()

	var out []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("store: scan snapshot id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func clickhouseSettings(ctx context.Context, maxBlockSize int) context.Context {
	return clickhouse.Context(ctx, clickhouse.WithSettings(clickhouse.Settings{
		"max_block_size": maxBlockSize,
	}))
}
