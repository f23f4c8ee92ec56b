package replay

import (
	"context"
	"fmt"
	"time"

	"github.com/BullionBear/lobkeeper/internal/model"
	"github.com/BullionBear/lobkeeper/internal/store"
)

// ErrAnchorInconsistency is the fatal ReplayAnchorInconsistency
// condition: the chosen anchor snapshot and the first diff on top of
// it do not overlap as the update-ID ranges require.
type ErrAnchorInconsistency struct {
	Symbol             string
	AnchorLastUpdateID uint64
	FirstUpdateID      uint64
	FinalUpdateID      uint64
}

func (e *ErrAnchorInconsistency) Error() string {
	return fmt.Sprintf("replay: anchor inconsistency for %s: anchor last_update_id=%d, diff=[%d,%d]",
		e.Symbol, e.AnchorLastUpdateID, e.FirstUpdateID, e.FinalUpdateID)
}

type diffRow struct {
	ts            time.Time
	firstUpdateID uint64
	finalUpdateID uint64
	bidsPrice     []float64
	bidsQuantity  []float64
	asksPrice     []float64
	asksQuantity  []float64
}

func fromStoreRow(row store.DiffRow) diffRow {
	return diffRow{
		ts:            row.Ts,
		firstUpdateID: row.FirstUpdateID,
		finalUpdateID: row.FinalUpdateID,
		bidsPrice:     row.BidsPrice,
		bidsQuantity:  row.BidsQuantity,
		asksPrice:     row.AsksPrice,
		asksQuantity:  row.AsksQuantity,
	}
}

func mapFrom(prices, quantities []float64) map[float64]float64 {
	m := make(map[float64]float64, len(prices))
	for i, p := range prices {
		m[p] = quantities[i]
	}
	return m
}

func applyDiffMap(book map[float64]float64, prices, quantities []float64) {
	for i, p := range prices {
		q := quantities[i]
		if q == 0 {
			delete(book, p)
		} else {
			book[p] = q
		}
	}
}

func copyMap(m map[float64]float64) map[float64]float64 {
	out := make(map[float64]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// cursor is the shared plumbing both the full and partial replay
// generators drive: anchor lookup, pending re-anchor snapshots, and
// the diff row stream. It mirrors the common steps of
// orderbook_generator / partial_orderbook_generator in
// original_source/replay.py before they diverge on what they yield.
type cursor struct {
	store   Store
	symbol  string
	anchor  *model.Snapshot
	pending []model.Snapshot
	pendIdx int
	rows    store.DiffCursor

	prevFinal uint64
	havePrev  bool
	started   bool
	done      bool
}

func newCursor(ctx context.Context, st Store, symbol string, startUpdateID uint64, blockSize int) (*cursor, error) {
	anchor, err := st.EarliestSnapshotAfter(ctx, symbol, startUpdateID)
	if err != nil {
		return nil, err
	}
	if anchor == nil {
		return &cursor{store: st, symbol: symbol, done: true}, nil
	}
	pending, err := st.PendingSnapshotsAfter(ctx, symbol, anchor.LastUpdateID)
	if err != nil {
		return nil, err
	}
	rows, err := st.DiffRows(ctx, symbol, anchor.LastUpdateID, blockSize)
	if err != nil {
		return nil, err
	}
	return &cursor{
		store:   st,
		symbol:  symbol,
		anchor:  anchor,
		pending: pending,
		rows:    rows,
	}, nil
}

// next advances to the next diff row, applying the gap check, anchor
// sanity check, and re-anchor check. It returns (row, reanchoredFrom,
// ok, err): ok is false once the stream is exhausted or a gap
// terminates it cleanly (err is nil in that case); err is non-nil only
// for ErrAnchorInconsistency or a store-level transport error.
func (c *cursor) next(ctx context.Context) (diffRow, *model.Snapshot, bool, error) {
	if c.done {
		return diffRow{}, nil, false, nil
	}
	if !c.rows.Next() {
		c.done = true
		return diffRow{}, nil, false, c.rows.Err()
	}
	row, err := c.rows.Scan()
	if err != nil {
		c.done = true
		return diffRow{}, nil, false, fmt.Errorf("replay: scan diff: %w", err)
	}
	d := fromStoreRow(row)

	if c.havePrev && c.prevFinal+1 != d.firstUpdateID {
		c.done = true
		return diffRow{}, nil, false, nil // ReplayGap: clean termination
	}
	if !c.havePrev {
		if c.anchor.LastUpdateID+1 < d.firstUpdateID || c.anchor.LastUpdateID+1 > d.finalUpdateID {
			c.done = true
			return diffRow{}, nil, false, &ErrAnchorInconsistency{
				Symbol:             c.symbol,
				AnchorLastUpdateID: c.anchor.LastUpdateID,
				FirstUpdateID:      d.firstUpdateID,
				FinalUpdateID:      d.finalUpdateID,
			}
		}
	}

	var reanchor *model.Snapshot
	if c.pendIdx < len(c.pending) {
		cand := c.pending[c.pendIdx]
		if d.firstUpdateID <= cand.LastUpdateID+1 && cand.LastUpdateID+1 <= d.finalUpdateID {
			reanchor = &cand
			c.pendIdx++
		}
	}

	c.prevFinal = d.finalUpdateID
	c.havePrev = true
	return d, reanchor, true, nil
}

func (c *cursor) close() error {
	if c.rows == nil {
		return nil
	}
	return c.rows.Close()
}
