package store

import (
	"context"
	"sync"
	"time"

	"github.com/BullionBear/lobkeeper/internal/model"
	"github.com/BullionBear/lobkeeper/internal/obslog"
)

// DiffWriter is the batching writer (C2). It buffers diff rows and
// flushes the whole buffer as one batch once bufferSize is reached,
// the same accumulate-then-flush-as-one-batch shape as
// domain/chronicler's batchWriter, but synchronous and mutex-guarded
// rather than channel-driven — matching the dispatcher contract in
// original_source/model.py, which has no background goroutine and
// retries the flush inline on the very next insert.
//
// There is intentionally no exported Flush: insert is the only way
// rows leave the buffer, so a slow store shows up as buffer growth,
// never as a dropped frame.
type DiffWriter struct {
	mu         sync.Mutex
	store      diffBatchInserter
	logger     *obslog.Logger
	bufferSize int
	buffer     []model.Diff
}

// diffBatchInserter is the one method DiffWriter needs from Store,
// split out so unit tests can flush into a fake instead of a real
// ClickHouse connection.
type diffBatchInserter interface {
	InsertDiffBatch(ctx context.Context, rows []model.Diff) error
}

// NewDiffWriter constructs a writer that flushes every bufferSize rows.
func NewDiffWriter(s diffBatchInserter, logger *obslog.Logger, bufferSize int) *DiffWriter {
	return &DiffWriter{
		store:      s,
		logger:     logger,
		bufferSize: bufferSize,
		buffer:     make([]model.Diff, 0, bufferSize),
	}
}

// Insert buffers one diff row, flushing the whole buffer once it
// reaches bufferSize. A flush failure is logged at WARNING and the
// buffer is retained so the next Insert call retries it.
func (w *DiffWriter) Insert(d model.Diff) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buffer = append(w.buffer, d)
	if len(w.buffer) >= w.bufferSize {
		w.flushLocked()
	}
}

// Len reports the number of buffered, unflushed rows.
func (w *DiffWriter) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.buffer)
}

func (w *DiffWriter) flushLocked() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := w.store.InsertDiffBatch(ctx, w.buffer); err != nil {
		if w.logger != nil {
			w.logger.Log("diff writer flush failed, retrying on next insert", model.LevelWarning, err.Error())
		}
		return
	}
	w.buffer = w.buffer[:0]
}
