package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/BullionBear/lobkeeper/internal/model"
	"github.com/BullionBear/lobkeeper/internal/obslog"
	"github.com/BullionBear/lobkeeper/internal/store"
	"github.com/BullionBear/lobkeeper/internal/symbol"
)

// SnapshotFetcher issues the REST depth request (C4). Errors are
// logged and swallowed; the caller's schedule is never blocked on a
// failed fetch, matching client.go's log-and-return-error style but
// with the error absorbed at this layer instead of propagated.
type SnapshotFetcher struct {
	httpClient *http.Client
	st         *store.Store
	logger     *obslog.Logger
}

// NewSnapshotFetcher builds a fetcher sharing one http.Client across
// calls, the way pkg/exchange/binancefuture.Client reuses its
// transport.
func NewSnapshotFetcher(st *store.Store, logger *obslog.Logger) *SnapshotFetcher {
	return &SnapshotFetcher{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		st:         st,
		logger:     logger,
	}
}

// Fetch issues one REST depth request for resolved, parses it, and
// persists a Snapshot row with the canonical symbol. Any failure is
// logged at WARNING and swallowed.
func (f *SnapshotFetcher) Fetch(ctx context.Context, resolved symbol.Resolved, limit int) {
	u := RESTDepthURL(resolved.Family, resolved.UpstreamSymbol, limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		f.logWarn(resolved, fmt.Sprintf("build snapshot request: %v", err))
		return
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.logWarn(resolved, fmt.Sprintf("snapshot request failed: %v", err))
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		f.logWarn(resolved, fmt.Sprintf("read snapshot response: %v", err))
		return
	}
	if resp.StatusCode != http.StatusOK {
		f.logWarn(resolved, fmt.Sprintf("snapshot request status %d: %s", resp.StatusCode, string(body)))
		return
	}

	var depth RESTDepthResponse
	if err := json.Unmarshal(body, &depth); err != nil {
		f.logWarn(resolved, fmt.Sprintf("parse snapshot response: %v", err))
		return
	}

	snap, err := toSnapshot(depth, resolved.Canonical)
	if err != nil {
		f.logWarn(resolved, fmt.Sprintf("malformed snapshot payload: %v", err))
		return
	}

	if err := f.st.InsertSnapshot(ctx, snap); err != nil {
		f.logWarn(resolved, fmt.Sprintf("persist snapshot: %v", err))
	}
}

func (f *SnapshotFetcher) logWarn(resolved symbol.Resolved, payload string) {
	if f.logger == nil {
		return
	}
	f.logger.Log(fmt.Sprintf("snapshot fetch failed for %s", resolved.Canonical), model.LevelWarning, payload)
}

func toSnapshot(depth RESTDepthResponse, canonicalSymbol string) (model.Snapshot, error) {
	bidsPrice, bidsQty, err := splitLevels(depth.Bids)
	if err != nil {
		return model.Snapshot{}, err
	}
	asksPrice, asksQty, err := splitLevels(depth.Asks)
	if err != nil {
		return model.Snapshot{}, err
	}
	return model.Snapshot{
		Ts:           time.Now().UTC(),
		LastUpdateID: uint64(depth.LastUpdateID),
		BidsPrice:    bidsPrice,
		BidsQuantity: bidsQty,
		AsksPrice:    asksPrice,
		AsksQuantity: asksQty,
		Symbol:       canonicalSymbol,
	}, nil
}

func splitLevels(levels [][2]string) (prices, quantities []float64, err error) {
	prices = make([]float64, len(levels))
	quantities = make([]float64, len(levels))
	for i, lvl := range levels {
		p, err := strconv.ParseFloat(lvl[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("parse price %q: %w", lvl[0], err)
		}
		q, err := strconv.ParseFloat(lvl[1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("parse quantity %q: %w", lvl[1], err)
		}
		prices[i] = p
		quantities[i] = q
	}
	return prices, quantities, nil
}
