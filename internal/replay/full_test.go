package replay

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BullionBear/lobkeeper/internal/model"
)

var baseTs = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func ts(sec int) time.Time { return baseTs.Add(time.Duration(sec) * time.Second) }

// TestFullReplayCleanApply is scenario S1: a clean anchor plus two
// sequential diffs, one of which removes a level via qty=0.
func TestFullReplayCleanApply(t *testing.T) {
	fs := &fakeStore{
		snapshots: []model.Snapshot{{
			Ts: ts(0), Symbol: "BTCUSDT", LastUpdateID: 10,
			BidsPrice: []float64{100.0, 99.0}, BidsQuantity: []float64{1.0, 2.0},
			AsksPrice: []float64{101.0}, AsksQuantity: []float64{1.5},
		}},
		diffs: []model.Diff{
			{Ts: ts(1), Symbol: "BTCUSDT", FirstUpdateID: 11, FinalUpdateID: 11,
				BidsPrice: []float64{100.0}, BidsQuantity: []float64{1.5}},
			{Ts: ts(2), Symbol: "BTCUSDT", FirstUpdateID: 12, FinalUpdateID: 12,
				AsksPrice: []float64{101.0, 102.0}, AsksQuantity: []float64{0, 3.0}},
		},
	}

	r, err := NewFullReplay(context.Background(), fs, "BTCUSDT", 0, 0, false)
	require.NoError(t, err)
	defer r.Close()

	initial, ok, err := r.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 10, initial.LastUpdateID)

	first, ok, err := r.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 11, first.LastUpdateID)

	second, ok, err := r.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 12, second.LastUpdateID)
	assert.Equal(t, map[float64]float64{100.0: 1.5, 99.0: 2.0}, second.Bids)
	assert.Equal(t, map[float64]float64{102.0: 3.0}, second.Asks)
	assert.NotContains(t, second.Asks, 101.0, "qty=0 must remove the level")

	_, ok, err = r.Next(context.Background())
	require.NoError(t, err)
	assert.False(t, ok, "generator must be exhausted after the last diff")
}

// TestFullReplayGapTerminatesCleanly is scenario S2: a discontinuity
// between two diffs stops the generator without an error.
func TestFullReplayGapTerminatesCleanly(t *testing.T) {
	fs := &fakeStore{
		snapshots: []model.Snapshot{{Ts: ts(0), Symbol: "BTCUSDT", LastUpdateID: 10}},
		diffs: []model.Diff{
			{Ts: ts(1), Symbol: "BTCUSDT", FirstUpdateID: 11, FinalUpdateID: 11},
			{Ts: ts(2), Symbol: "BTCUSDT", FirstUpdateID: 13, FinalUpdateID: 13},
		},
	}

	r, err := NewFullReplay(context.Background(), fs, "BTCUSDT", 0, 0, false)
	require.NoError(t, err)
	defer r.Close()

	_, ok, err := r.Next(context.Background()) // initial snapshot state
	require.NoError(t, err)
	require.True(t, ok)

	first, ok, err := r.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 11, first.LastUpdateID)

	_, ok, err = r.Next(context.Background())
	assert.NoError(t, err, "a gap is a clean termination, not an error")
	assert.False(t, ok, "generator must stop before yielding the post-gap diff")
}

// TestFullReplayReanchor is scenario S3: a pending snapshot
// intersecting the diff's range replaces (not merges) the books.
func TestFullReplayReanchor(t *testing.T) {
	fs := &fakeStore{
		snapshots: []model.Snapshot{
			{Ts: ts(0), Symbol: "BTCUSDT", LastUpdateID: 10,
				BidsPrice: []float64{100.0}, BidsQuantity: []float64{1.0},
				AsksPrice: []float64{101.0}, AsksQuantity: []float64{1.0}},
			{Ts: ts(1), Symbol: "BTCUSDT", LastUpdateID: 12,
				BidsPrice: []float64{50.0}, BidsQuantity: []float64{1.0},
				AsksPrice: []float64{51.0}, AsksQuantity: []float64{1.0}},
		},
		diffs: []model.Diff{
			{Ts: ts(2), Symbol: "BTCUSDT", FirstUpdateID: 11, FinalUpdateID: 15,
				BidsPrice: []float64{52.0}, BidsQuantity: []float64{2.0}},
		},
	}

	r, err := NewFullReplay(context.Background(), fs, "BTCUSDT", 0, 0, false)
	require.NoError(t, err)
	defer r.Close()

	_, ok, err := r.Next(context.Background()) // initial anchor state
	require.NoError(t, err)
	require.True(t, ok)

	state, ok, err := r.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 15, state.LastUpdateID)
	assert.Equal(t, map[float64]float64{50.0: 1.0, 52.0: 2.0}, state.Bids,
		"books must be replaced by the re-anchor snapshot, then the diff applied on top")
	assert.Equal(t, map[float64]float64{51.0: 1.0}, state.Asks)
}

func TestFullReplayEmptyWhenNoSnapshot(t *testing.T) {
	fs := &fakeStore{}

	r, err := NewFullReplay(context.Background(), fs, "BTCUSDT", 0, 0, false)
	require.NoError(t, err)
	defer r.Close()

	_, ok, err := r.Next(context.Background())
	assert.NoError(t, err)
	assert.False(t, ok, "no matching snapshot means the generator is empty")
}

func TestFullReplayAnchorInconsistencyIsFatal(t *testing.T) {
	fs := &fakeStore{
		snapshots: []model.Snapshot{{Ts: ts(0), Symbol: "BTCUSDT", LastUpdateID: 10}},
		diffs: []model.Diff{
			// anchor.LastUpdateID+1 == 11, but this diff starts at 20:
			// the sanity check needs 20 <= 11 <= 30, and 20 <= 11 fails.
			{Ts: ts(1), Symbol: "BTCUSDT", FirstUpdateID: 20, FinalUpdateID: 30},
		},
	}

	r, err := NewFullReplay(context.Background(), fs, "BTCUSDT", 0, 0, false)
	require.NoError(t, err)
	defer r.Close()

	_, ok, err := r.Next(context.Background()) // initial anchor state
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = r.Next(context.Background())
	assert.False(t, ok)
	require.Error(t, err)
	var anchorErr *ErrAnchorInconsistency
	assert.ErrorAs(t, err, &anchorErr)
}

func TestFullReplayReturnCopyIsolatesCaller(t *testing.T) {
	fs := &fakeStore{
		snapshots: []model.Snapshot{{
			Ts: ts(0), Symbol: "BTCUSDT", LastUpdateID: 10,
			BidsPrice: []float64{100.0}, BidsQuantity: []float64{1.0},
		}},
	}

	r, err := NewFullReplay(context.Background(), fs, "BTCUSDT", 0, 0, true)
	require.NoError(t, err)
	defer r.Close()

	state, ok, err := r.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	state.Bids[999.0] = 42.0
	assert.NotContains(t, r.bids, 999.0, "returnCopy must isolate the yielded map from internal state")
}
