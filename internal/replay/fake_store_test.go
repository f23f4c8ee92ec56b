package replay

import (
	"context"
	"sort"

	"github.com/BullionBear/lobkeeper/internal/model"
	"github.com/BullionBear/lobkeeper/internal/store"
)

// fakeStore is a hand-rolled in-memory stand-in for *store.Store,
// satisfying the replay.Store read surface without a live ClickHouse
// connection — the fakes-over-mocks style this system favors.
type fakeStore struct {
	snapshots []model.Snapshot
	diffs     []model.Diff
}

func (f *fakeStore) EarliestSnapshotAfter(_ context.Context, symbol string, afterUpdateID uint64) (*model.Snapshot, error) {
	var candidates []model.Snapshot
	for _, s := range f.snapshots {
		if s.Symbol == symbol && s.LastUpdateID > afterUpdateID {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Ts.Before(candidates[j].Ts) })
	out := candidates[0]
	return &out, nil
}

func (f *fakeStore) PendingSnapshotsAfter(_ context.Context, symbol string, afterUpdateID uint64) ([]model.Snapshot, error) {
	var out []model.Snapshot
	for _, s := range f.snapshots {
		if s.Symbol == symbol && s.LastUpdateID > afterUpdateID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ts.Before(out[j].Ts) })
	return out, nil
}

func (f *fakeStore) DiffRows(_ context.Context, symbol string, minFinalUpdateID uint64, _ int) (store.DiffCursor, error) {
	var rows []store.DiffRow
	for _, d := range f.diffs {
		if d.Symbol == symbol && d.FinalUpdateID >= minFinalUpdateID {
			rows = append(rows, toRow(d))
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Ts.Before(rows[j].Ts) })
	return &sliceCursor{rows: rows, idx: -1}, nil
}

func (f *fakeStore) DiffRowsAfter(_ context.Context, symbol string, afterUpdateID uint64) (store.DiffCursor, error) {
	var rows []store.DiffRow
	for _, d := range f.diffs {
		if d.Symbol == symbol && d.FirstUpdateID > afterUpdateID {
			rows = append(rows, toRow(d))
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].FirstUpdateID < rows[j].FirstUpdateID })
	return &sliceCursor{rows: rows, idx: -1}, nil
}

func (f *fakeStore) SnapshotUpdateIDs(_ context.Context, symbol string) ([]uint64, error) {
	var out []uint64
	snaps := make([]model.Snapshot, 0)
	for _, s := range f.snapshots {
		if s.Symbol == symbol {
			snaps = append(snaps, s)
		}
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Ts.Before(snaps[j].Ts) })
	for _, s := range snaps {
		out = append(out, s.LastUpdateID)
	}
	return out, nil
}

func toRow(d model.Diff) store.DiffRow {
	return store.DiffRow{
		Ts:            d.Ts,
		FirstUpdateID: d.FirstUpdateID,
		FinalUpdateID: d.FinalUpdateID,
		BidsPrice:     d.BidsPrice,
		BidsQuantity:  d.BidsQuantity,
		AsksPrice:     d.AsksPrice,
		AsksQuantity:  d.AsksQuantity,
		Symbol:        d.Symbol,
	}
}

type sliceCursor struct {
	rows []store.DiffRow
	idx  int
}

func (c *sliceCursor) Next() bool {
	c.idx++
	return c.idx < len(c.rows)
}

func (c *sliceCursor) Scan() (store.DiffRow, error) {
	return c.rows[c.idx], nil
}

func (c *sliceCursor) Err() error   { return nil }
func (c *sliceCursor) Close() error { return nil }
