// Package replay implements data-block discovery (C7) and the replay
// engine (C8), grounded on original_source/replay.py's generator
// functions and, for the internal book representation, on
// internal/orderbook's treemap-backed book in the teacher repo.
package replay

import (
	"context"
	"time"
)

// DataBlock is a maximal gap-free contiguous range of persisted diffs
// for one symbol, plus the snapshot update IDs usable as re-anchor
// points inside it.
type DataBlock struct {
	Symbol             string
	BeginningUpdateID  uint64
	EndingUpdateID     uint64
	HasRows            bool
	Size               int
	BeginningTimestamp time.Time
	EndingTimestamp    time.Time
	BlockSnapshotIDs   []uint64
}

// Empty reports whether the block contains no rows (the terminal
// condition for AllDataBlocks).
func (b DataBlock) Empty() bool { return !b.HasRows }

type blockDiffRow struct {
	ts            time.Time
	firstUpdateID uint64
	finalUpdateID uint64
}

// Block scans the diff table for symbol ordered by first_update_id,
// starting strictly after afterUpdateID, and returns the maximal
// prefix of rows satisfying continuity
// (prev.final_update_id + 1 == next.first_update_id).
func Block(ctx context.Context, st Store, symbol string, afterUpdateID uint64) (DataBlock, error) {
	rows, err := st.DiffRowsAfter(ctx, symbol, afterUpdateID)
	if err != nil {
		return DataBlock{}, err
	}
	defer rows.Close()

	var contiguous []blockDiffRow
	var prevFinal uint64
	havePrev := false

	for rows.Next() {
		row, err := rows.Scan()
		if err != nil {
			return DataBlock{}, err
		}
		r := blockDiffRow{ts: row.Ts, firstUpdateID: row.FirstUpdateID, finalUpdateID: row.FinalUpdateID}
		if havePrev && prevFinal+1 != r.firstUpdateID {
			break
		}
		contiguous = append(contiguous, r)
		prevFinal = r.finalUpdateID
		havePrev = true
	}
	if err := rows.Err(); err != nil {
		return DataBlock{}, err
	}

	if len(contiguous) == 0 {
		return DataBlock{Symbol: symbol}, nil
	}

	first := contiguous[0]
	last := contiguous[len(contiguous)-1]

	snapshotIDs, err := st.SnapshotUpdateIDs(ctx, symbol)
	if err != nil {
		return DataBlock{}, err
	}
	var blockSnapshotIDs []uint64
	for _, id := range snapshotIDs {
		if first.firstUpdateID <= id+1 && id+1 <= last.finalUpdateID {
			blockSnapshotIDs = append(blockSnapshotIDs, id)
		}
	}

	return DataBlock{
		Symbol:             symbol,
		HasRows:            true,
		BeginningUpdateID:  first.firstUpdateID,
		EndingUpdateID:     last.finalUpdateID,
		Size:               len(contiguous),
		BeginningTimestamp: first.ts,
		EndingTimestamp:    last.ts,
		BlockSnapshotIDs:   blockSnapshotIDs,
	}, nil
}

// AllDataBlocks repeatedly constructs blocks, using the previous
// block's ending_update_id as the next anchor, until an empty block
// is produced — partitioning the persisted diff history for symbol
// into contiguous replayable ranges.
func AllDataBlocks(ctx context.Context, st Store, symbol string, start uint64) ([]DataBlock, error) {
	var blocks []DataBlock
	anchor := start
	for {
		b, err := Block(ctx, st, symbol, anchor)
		if err != nil {
			return nil, err
		}
		if b.Empty() {
			return blocks, nil
		}
		blocks = append(blocks, b)
		anchor = b.EndingUpdateID
	}
}
