package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/BullionBear/lobkeeper/internal/config"
	"github.com/BullionBear/lobkeeper/internal/eventbus"
	"github.com/BullionBear/lobkeeper/internal/obslog"
	"github.com/BullionBear/lobkeeper/internal/store"
	"github.com/BullionBear/lobkeeper/internal/symbol"
)

// Supervisor owns one Session per configured symbol and runs them
// concurrently, grounded on pkg/node's map-based registry of
// independently-running units. Sessions never share mutable state;
// the supervisor only owns their lifetimes.
type Supervisor struct {
	sessions map[string]*Session
	logger   *obslog.Logger
}

// NewSupervisor resolves every configured symbol and builds its
// session, wiring each to its own SnapshotFetcher and the shared
// DiffWriter/Store/Logger. events may be nil when no NATS lifecycle
// bridge is configured for this deployment.
func NewSupervisor(cfg *config.Config, st *store.Store, writer *store.DiffWriter, logger *obslog.Logger, events *eventbus.Bus) *Supervisor {
	sessCfg := SessionConfig{
		StreamIntervalMs:  cfg.StreamInterval,
		FullFetchInterval: time.Duration(cfg.FullFetchInterval) * time.Second,
		FullFetchLimit:    cfg.FullFetchLimit,
	}

	sessions := make(map[string]*Session, len(cfg.Symbols))
	for _, configured := range cfg.Symbols {
		resolved := symbol.Resolve(configured)
		fetcher := NewSnapshotFetcher(st, logger)
		sessions[resolved.Canonical] = NewSession(resolved, sessCfg, writer, fetcher, logger, events)
	}

	return &Supervisor{sessions: sessions, logger: logger}
}

// Run starts every session in its own goroutine and blocks until ctx
// is cancelled and all sessions have returned.
func (s *Supervisor) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for canonical, sess := range s.sessions {
		wg.Add(1)
		go func(canonical string, sess *Session) {
			defer wg.Done()
			sess.Run(ctx)
		}(canonical, sess)
	}
	wg.Wait()
}

// Symbols returns the canonical symbols this supervisor is running,
// used by the admin API's symbol listing endpoint.
func (s *Supervisor) Symbols() []string {
	out := make([]string, 0, len(s.sessions))
	for canonical := range s.sessions {
		out = append(out, canonical)
	}
	return out
}
