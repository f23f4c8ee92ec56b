package replay

import (
	"context"
	"time"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
)

// defaultLevelMultiplier is the safety margin the internal book
// retains beyond the requested top-k so that deletes near the top
// don't starve the next extraction — see original_source/replay.py's
// heapq.nlargest(level * 30, ...) truncation.
const defaultLevelMultiplier = 30

// PartialBook is one yield of the level-k replay generator: the top-k
// bid and ask levels interleaved as
// [ask_1_px, ask_1_qty, bid_1_px, bid_1_qty, ask_2_px, ...].
type PartialBook struct {
	Ts           time.Time
	LastUpdateID uint64
	Book         []float64
	Symbol       string
}

// PartialReplay reconstructs only the top-k levels of each side,
// using an ordered map (treemap) per side since the frequent
// operation here is a top-k query rather than point lookups — the
// inverse mapping-discipline choice from FullReplay, grounded on
// internal/orderbook.BookArray's treemap usage in the teacher repo.
type PartialReplay struct {
	cursor          *cursor
	symbol          string
	level           int
	levelMultiplier int
	bids, asks      *treemap.Map
	yielded         bool
}

// NewPartialReplay opens a level-k replay generator. level is the
// number of price levels retained per side at each yield;
// levelMultiplier, if <= 0, defaults to 30.
func NewPartialReplay(ctx context.Context, st Store, symbol string, startUpdateID uint64, level, levelMultiplier, blockSize int) (*PartialReplay, error) {
	if levelMultiplier <= 0 {
		levelMultiplier = defaultLevelMultiplier
	}
	c, err := newCursor(ctx, st, symbol, startUpdateID, blockSize)
	if err != nil {
		return nil, err
	}
	r := &PartialReplay{cursor: c, symbol: symbol, level: level, levelMultiplier: levelMultiplier}
	if c.anchor != nil {
		r.bids = treemapFrom(c.anchor.BidsPrice, c.anchor.BidsQuantity)
		r.asks = treemapFrom(c.anchor.AsksPrice, c.anchor.AsksQuantity)
	}
	return r, nil
}

// Next yields the next PartialBook state, following the same
// exhaustion/gap/fatal-error contract as FullReplay.Next.
func (r *PartialReplay) Next(ctx context.Context) (*PartialBook, bool, error) {
	if r.cursor.anchor == nil {
		return nil, false, nil
	}
	if !r.yielded {
		r.yielded = true
		return r.extract(r.cursor.anchor.Ts, r.cursor.anchor.LastUpdateID), true, nil
	}

	d, reanchor, ok, err := r.cursor.next(ctx)
	if err != nil || !ok {
		return nil, false, err
	}
	if reanchor != nil {
		r.bids = treemapFrom(reanchor.BidsPrice, reanchor.BidsQuantity)
		r.asks = treemapFrom(reanchor.AsksPrice, reanchor.AsksQuantity)
	}
	applyDiffTree(r.bids, d.bidsPrice, d.bidsQuantity)
	applyDiffTree(r.asks, d.asksPrice, d.asksQuantity)

	keep := r.level * r.levelMultiplier
	truncateDescending(r.bids, keep)
	truncateAscending(r.asks, keep)

	return r.extract(d.ts, d.finalUpdateID), true, nil
}

func (r *PartialReplay) extract(ts time.Time, lastUpdateID uint64) *PartialBook {
	bidKeys := topDescending(r.bids, r.level)
	askKeys := topAscending(r.asks, r.level)

	out := make([]float64, 0, r.level*4)
	for i := 0; i < r.level; i++ {
		if i < len(askKeys) {
			qty, _ := r.asks.Get(askKeys[i])
			out = append(out, askKeys[i], qty.(float64))
		} else {
			out = append(out, 0, 0)
		}
		if i < len(bidKeys) {
			qty, _ := r.bids.Get(bidKeys[i])
			out = append(out, bidKeys[i], qty.(float64))
		} else {
			out = append(out, 0, 0)
		}
	}
	return &PartialBook{Ts: ts, LastUpdateID: lastUpdateID, Book: out, Symbol: r.symbol}
}

// Close releases the underlying store cursor.
func (r *PartialReplay) Close() error {
	if r.cursor == nil {
		return nil
	}
	return r.cursor.close()
}

func treemapFrom(prices, quantities []float64) *treemap.Map {
	t := treemap.NewWith(utils.Float64Comparator)
	for i, p := range prices {
		t.Put(p, quantities[i])
	}
	return t
}

func applyDiffTree(t *treemap.Map, prices, quantities []float64) {
	for i, p := range prices {
		q := quantities[i]
		if q == 0 {
			t.Remove(p)
		} else {
			t.Put(p, q)
		}
	}
}

func topDescending(t *treemap.Map, n int) []float64 {
	keys := make([]float64, 0, n)
	it := t.Iterator()
	for it.End(); it.Prev(); {
		keys = append(keys, it.Key().(float64))
		if len(keys) >= n {
			break
		}
	}
	return keys
}

func topAscending(t *treemap.Map, n int) []float64 {
	keys := make([]float64, 0, n)
	it := t.Iterator()
	for it.Next() {
		keys = append(keys, it.Key().(float64))
		if len(keys) >= n {
			break
		}
	}
	return keys
}

func truncateDescending(t *treemap.Map, keep int) {
	if t.Size() <= keep {
		return
	}
	drop := make([]float64, 0, t.Size()-keep)
	it := t.Iterator()
	idx := 0
	for it.End(); it.Prev(); {
		if idx >= keep {
			drop = append(drop, it.Key().(float64))
		}
		idx++
	}
	for _, k := range drop {
		t.Remove(k)
	}
}

func truncateAscending(t *treemap.Map, keep int) {
	if t.Size() <= keep {
		return
	}
	drop := make([]float64, 0, t.Size()-keep)
	it := t.Iterator()
	idx := 0
	for it.Next() {
		if idx >= keep {
			drop = append(drop, it.Key().(float64))
		}
		idx++
	}
	for _, k := range drop {
		t.Remove(k)
	}
}
