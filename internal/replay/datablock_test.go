package replay

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BullionBear/lobkeeper/internal/model"
)

func diffRange(symbol string, first, final uint64, at int) model.Diff {
	return model.Diff{Ts: ts(at), Symbol: symbol, FirstUpdateID: first, FinalUpdateID: final}
}

// TestAllDataBlocksSplitsOnGap is scenario S6: diff rows
// (1,3),(4,7),(8,10),(12,15) split into two contiguous blocks.
func TestAllDataBlocksSplitsOnGap(t *testing.T) {
	fs := &fakeStore{
		diffs: []model.Diff{
			diffRange("X", 1, 3, 1),
			diffRange("X", 4, 7, 2),
			diffRange("X", 8, 10, 3),
			diffRange("X", 12, 15, 4),
		},
	}

	blocks, err := AllDataBlocks(context.Background(), fs, "X", 0)

	require.NoError(t, err)
	require.Len(t, blocks, 2)

	assert.EqualValues(t, 1, blocks[0].BeginningUpdateID)
	assert.EqualValues(t, 10, blocks[0].EndingUpdateID)
	assert.Equal(t, 3, blocks[0].Size)

	assert.EqualValues(t, 12, blocks[1].BeginningUpdateID)
	assert.EqualValues(t, 15, blocks[1].EndingUpdateID)
	assert.Equal(t, 1, blocks[1].Size)
}

func TestBlockEmptyWhenNoRows(t *testing.T) {
	fs := &fakeStore{}

	b, err := Block(context.Background(), fs, "X", 0)

	require.NoError(t, err)
	assert.True(t, b.Empty())
}

func TestBlockSnapshotIDsFilteredToUsableRange(t *testing.T) {
	fs := &fakeStore{
		diffs: []model.Diff{
			diffRange("X", 1, 5, 1),
			diffRange("X", 6, 10, 2),
		},
		snapshots: []model.Snapshot{
			{Ts: ts(3), Symbol: "X", LastUpdateID: 4},  // 4+1=5, inside [1,10] -> usable
			{Ts: ts(4), Symbol: "X", LastUpdateID: 50}, // 50+1=51, outside -> not usable
		},
	}

	b, err := Block(context.Background(), fs, "X", 0)

	require.NoError(t, err)
	assert.Equal(t, []uint64{4}, b.BlockSnapshotIDs)
}

func TestAllDataBlocksEmptyWhenNoDiffs(t *testing.T) {
	fs := &fakeStore{}

	blocks, err := AllDataBlocks(context.Background(), fs, "X", 0)

	require.NoError(t, err)
	assert.Empty(t, blocks)
}
