package replay

import (
	"context"

	"github.com/BullionBear/lobkeeper/internal/model"
	"github.com/BullionBear/lobkeeper/internal/store"
)

// Store is the read surface C7/C8 need from the persistence layer.
// *store.Store satisfies it; unit tests drive a hand-rolled fake
// instead of a ClickHouse connection, per this system's preference
// for fakes over a mocking framework.
type Store interface {
	EarliestSnapshotAfter(ctx context.Context, symbol string, afterUpdateID uint64) (*model.Snapshot, error)
	PendingSnapshotsAfter(ctx context.Context, symbol string, afterUpdateID uint64) ([]model.Snapshot, error)
	DiffRows(ctx context.Context, symbol string, minFinalUpdateID uint64, blockSize int) (store.DiffCursor, error)
	DiffRowsAfter(ctx context.Context, symbol string, afterUpdateID uint64) (store.DiffCursor, error)
	SnapshotUpdateIDs(ctx context.Context, symbol string) ([]uint64, error)
}
