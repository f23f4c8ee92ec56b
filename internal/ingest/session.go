package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/BullionBear/lobkeeper/internal/eventbus"
	"github.com/BullionBear/lobkeeper/internal/model"
	"github.com/BullionBear/lobkeeper/internal/obslog"
	"github.com/BullionBear/lobkeeper/internal/store"
	"github.com/BullionBear/lobkeeper/internal/symbol"
)

// sessionState names the reconnect state machine in spec §4.9. It is
// tracked explicitly (rather than left implicit in control flow) so a
// session's current state is always available for logging.
type sessionState int

const (
	stateDisconnected sessionState = iota
	stateConnecting
	stateStreamingPreFirstDiff
	stateStreamingInSequence
)

// Session is the stream session (C5): one long-lived goroutine per
// symbol maintaining a single WebSocket connection, grounded on
// pkg/exchange/binance/ws.go's connect/read-loop/reconnect shape but
// single-goroutine (no separate write loop — this system never sends
// subscription frames; the depth stream is implied by the URL path).
type Session struct {
	id       string
	resolved symbol.Resolved
	writer   *store.DiffWriter
	fetcher  *SnapshotFetcher
	logger   *obslog.Logger
	events   *eventbus.Bus

	streamIntervalMs  int
	fullFetchInterval time.Duration
	fullFetchLimit    int

	state               sessionState
	prevFinalUpdateID   *uint64
	nextFullFetchDueAt  time.Time
}

// SessionConfig carries the per-session parameters read from the
// global Config (internal/config) and resolved at supervisor
// construction time.
type SessionConfig struct {
	StreamIntervalMs  int
	FullFetchInterval time.Duration
	FullFetchLimit    int
}

// NewSession constructs a session for one configured symbol. resolved
// must already carry the canonical symbol and asset family
// (internal/symbol.Resolve). events may be nil: a nil *eventbus.Bus
// silently drops every publish, so the lifecycle bridge is strictly
// optional.
func NewSession(resolved symbol.Resolved, cfg SessionConfig, writer *store.DiffWriter, fetcher *SnapshotFetcher, logger *obslog.Logger, events *eventbus.Bus) *Session {
	return &Session{
		id:                uuid.NewString(),
		resolved:          resolved,
		writer:            writer,
		fetcher:           fetcher,
		logger:            logger,
		events:            events,
		streamIntervalMs:  cfg.StreamIntervalMs,
		fullFetchInterval: cfg.FullFetchInterval,
		fullFetchLimit:    cfg.FullFetchLimit,
		state:             stateDisconnected,
	}
}

// Run drives the session forever until ctx is cancelled. It never
// returns on its own on stream failure — only cancellation ends it,
// per spec §4.5: "the session never terminates on its own."
func (s *Session) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		s.state = stateConnecting
		conn, err := s.connect(ctx)
		if err != nil {
			s.logger.Log(fmt.Sprintf("connect failed for %s", s.resolved.Canonical), model.LevelInfo, err.Error())
			if !s.sleep(ctx, 2*time.Second) {
				return
			}
			continue
		}

		s.onOpen()
		s.streamUntilDisconnect(ctx, conn)
		conn.Close()
		s.onClose()

		if !s.sleep(ctx, 2*time.Second) {
			return
		}
	}
}

func (s *Session) connect(ctx context.Context) (*websocket.Conn, error) {
	url := WSDepthURL(s.resolved.Family, s.resolved.UpstreamSymbol, s.streamIntervalMs)
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return conn, nil
}

// onOpen implements spec §4.5 step 2: on open, the next snapshot is
// immediately due and there is no previous frame yet.
func (s *Session) onOpen() {
	s.state = stateStreamingPreFirstDiff
	s.prevFinalUpdateID = nil
	s.nextFullFetchDueAt = time.Now()
	_ = s.events.Publish(eventbus.Event{
		Ts:     time.Now().UTC(),
		Symbol: s.resolved.Canonical,
		Kind:   eventbus.KindConnected,
	})
}

// onClose implements spec §4.9's Closed/FrameParseError transition:
// reset to PreFirstDiff and force the next frame after reconnect to
// trigger a snapshot fetch.
func (s *Session) onClose() {
	s.state = stateDisconnected
	s.prevFinalUpdateID = nil
	s.nextFullFetchDueAt = time.Now()
	_ = s.events.Publish(eventbus.Event{
		Ts:     time.Now().UTC(),
		Symbol: s.resolved.Canonical,
		Kind:   eventbus.KindReconnecting,
	})
}

func (s *Session) streamUntilDisconnect(ctx context.Context, conn *websocket.Conn) {
	for {
		if ctx.Err() != nil {
			return
		}
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			s.logger.Log(fmt.Sprintf("websocket closed for %s", s.resolved.Canonical), model.LevelInfo, err.Error())
			return
		}

		var frame DepthStreamFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			s.logger.Log(fmt.Sprintf("frame parse error for %s", s.resolved.Canonical), model.LevelInfo, string(raw))
			return
		}

		s.handleFrame(ctx, frame)
	}
}

func (s *Session) handleFrame(ctx context.Context, frame DepthStreamFrame) {
	first, final, ok := s.updateIDRange(frame)
	if !ok {
		// Futures frame missing pu: skip this diff and wait for the
		// periodic snapshot to re-anchor, per the resolved open
		// question on missing pu rather than crashing on a nil
		// pointer dereference.
		s.logger.Log(fmt.Sprintf("missing pu on frame for %s, skipping diff", s.resolved.Canonical), model.LevelInfo, "")
		return
	}

	if time.Now().After(s.nextFullFetchDueAt) || time.Now().Equal(s.nextFullFetchDueAt) {
		go s.fetcher.Fetch(ctx, s.resolved, s.fullFetchLimit)
		s.logger.Log(fmt.Sprintf("scheduled snapshot fetch for %s", s.resolved.Canonical), model.LevelInfo, "")
		// max(next+interval, now()) avoids a burst of immediately-due
		// fetches after a long disconnect.
		next := s.nextFullFetchDueAt.Add(s.fullFetchInterval)
		now := time.Now()
		if now.After(next) {
			next = now
		}
		s.nextFullFetchDueAt = next
	}

	if s.prevFinalUpdateID != nil && *s.prevFinalUpdateID+1 != first {
		s.logger.Log(fmt.Sprintf("LOB dropped for %s, refetching full market depth", s.resolved.Canonical), model.LevelInfo, "")
		_ = s.events.Publish(eventbus.Event{
			Ts:     time.Now().UTC(),
			Symbol: s.resolved.Canonical,
			Kind:   eventbus.KindGapDetected,
			Detail: fmt.Sprintf("prev_final=%d next_first=%d", *s.prevFinalUpdateID, first),
		})
	}

	diff, err := toDiff(frame, first, final, s.resolved.Canonical)
	if err != nil {
		s.logger.Log(fmt.Sprintf("malformed frame payload for %s", s.resolved.Canonical), model.LevelInfo, err.Error())
		return
	}
	s.writer.Insert(diff)

	s.state = stateStreamingInSequence
	v := final
	s.prevFinalUpdateID = &v
}

// updateIDRange derives (first_update_id, final_update_id) per spec
// §4.5: spot uses (U, u) directly; futures uses (pu+1, u). ok is
// false when a futures frame is missing pu.
func (s *Session) updateIDRange(frame DepthStreamFrame) (first, final uint64, ok bool) {
	if s.resolved.Family == symbol.Spot {
		return uint64(frame.FirstUpdateID), uint64(frame.FinalUpdateID), true
	}
	if frame.PreviousFinalUpdateID == nil {
		return 0, 0, false
	}
	return uint64(*frame.PreviousFinalUpdateID) + 1, uint64(frame.FinalUpdateID), true
}

func (s *Session) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}

func toDiff(frame DepthStreamFrame, first, final uint64, canonicalSymbol string) (model.Diff, error) {
	bidsPrice, bidsQty, err := splitLevels(frame.Bids)
	if err != nil {
		return model.Diff{}, err
	}
	asksPrice, asksQty, err := splitLevels(frame.Asks)
	if err != nil {
		return model.Diff{}, err
	}
	return model.Diff{
		Ts:            time.UnixMilli(frame.EventTimeMs).UTC(),
		FirstUpdateID: first,
		FinalUpdateID: final,
		BidsPrice:     bidsPrice,
		BidsQuantity:  bidsQty,
		AsksPrice:     asksPrice,
		AsksQuantity:  asksQty,
		Symbol:        canonicalSymbol,
	}, nil
}
