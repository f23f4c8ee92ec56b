package replay

import (
	"context"
	"time"
)

// FullBook is one yield of the full replay generator: complete
// price->quantity mappings for both sides of the book.
type FullBook struct {
	Ts           time.Time
	LastUpdateID uint64
	Bids         map[float64]float64
	Asks         map[float64]float64
	Symbol       string
}

// FullReplay reconstructs the complete order book over a contiguous
// range, using a hash map per side since only point updates matter —
// the Mapping Discipline this system follows for full (non-truncated)
// replay.
type FullReplay struct {
	cursor     *cursor
	symbol     string
	bids, asks map[float64]float64
	returnCopy bool
	yielded    bool
}

// NewFullReplay opens a full-book replay generator starting strictly
// after startUpdateID. blockSize is a pagination hint passed to the
// store; returnCopy selects between yielding independent copies of
// the book maps or live references (invalidated by the next Next call).
func NewFullReplay(ctx context.Context, st Store, symbol string, startUpdateID uint64, blockSize int, returnCopy bool) (*FullReplay, error) {
	c, err := newCursor(ctx, st, symbol, startUpdateID, blockSize)
	if err != nil {
		return nil, err
	}
	r := &FullReplay{cursor: c, symbol: symbol, returnCopy: returnCopy}
	if c.anchor != nil {
		r.bids = mapFrom(c.anchor.BidsPrice, c.anchor.BidsQuantity)
		r.asks = mapFrom(c.anchor.AsksPrice, c.anchor.AsksQuantity)
	}
	return r, nil
}

// Next yields the next FullBook state, or (nil, false, nil) once the
// generator is exhausted or hits a gap, or (nil, false, err) on a
// fatal ErrAnchorInconsistency or store error.
func (r *FullReplay) Next(ctx context.Context) (*FullBook, bool, error) {
	if r.cursor.anchor == nil {
		return nil, false, nil
	}
	if !r.yielded {
		r.yielded = true
		return r.snapshot(r.cursor.anchor.Ts, r.cursor.anchor.LastUpdateID), true, nil
	}

	d, reanchor, ok, err := r.cursor.next(ctx)
	if err != nil || !ok {
		return nil, false, err
	}
	if reanchor != nil {
		r.bids = mapFrom(reanchor.BidsPrice, reanchor.BidsQuantity)
		r.asks = mapFrom(reanchor.AsksPrice, reanchor.AsksQuantity)
	}
	applyDiffMap(r.bids, d.bidsPrice, d.bidsQuantity)
	applyDiffMap(r.asks, d.asksPrice, d.asksQuantity)

	return r.snapshot(d.ts, d.finalUpdateID), true, nil
}

func (r *FullReplay) snapshot(ts time.Time, lastUpdateID uint64) *FullBook {
	bids, asks := r.bids, r.asks
	if r.returnCopy {
		bids, asks = copyMap(r.bids), copyMap(r.asks)
	}
	return &FullBook{Ts: ts, LastUpdateID: lastUpdateID, Bids: bids, Asks: asks, Symbol: r.symbol}
}

// Close releases the underlying store cursor.
func (r *FullReplay) Close() error {
	if r.cursor == nil {
		return nil
	}
	return r.cursor.close()
}
