// Package lifecycle adapts pkg/shutdown's signal-driven graceful
// shutdown to this system's own obslog.Logger, so every hooked
// callback (the HTTP server, the store connection, the event bus)
// gets a bounded window to finish before the process exits. Stream
// sessions are not hooked callbacks; they stop when the root context
// is cancelled.
package lifecycle

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/BullionBear/lobkeeper/internal/obslog"
)

type callback struct {
	name    string
	f       func()
	timeout time.Duration
}

// Shutdown coordinates a root context cancelled on SIGINT/SIGTERM and
// a set of named teardown callbacks run concurrently once that
// signal arrives.
type Shutdown struct {
	logger    *obslog.Logger
	rootCtx   context.Context
	cancel    context.CancelFunc
	mu        sync.Mutex
	callbacks []callback
	sigCh     chan os.Signal
}

// New builds a Shutdown coordinator, immediately starting to listen
// for os.Interrupt so a signal arriving before WaitForShutdown is
// called is not lost.
func New(logger *obslog.Logger) *Shutdown {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	return &Shutdown{logger: logger, rootCtx: ctx, cancel: cancel, sigCh: sigCh}
}

// Context is cancelled the moment a shutdown signal is received,
// before any callback runs — long-running loops (sessions,
// supervisor) select on it to stop accepting new work.
func (s *Shutdown) Context() context.Context { return s.rootCtx }

// HookShutdownCallback registers f to run during shutdown. If timeout
// is zero the callback runs without a deadline; otherwise a callback
// still running past timeout is logged and abandoned rather than
// blocking process exit indefinitely.
func (s *Shutdown) HookShutdownCallback(name string, f func(), timeout time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = append(s.callbacks, callback{name: name, f: f, timeout: timeout})
}

// WaitForShutdown blocks until os.Interrupt (registered by New) or one
// of sigs arrives, then cancels the
// root context and runs every hooked callback before returning.
func (s *Shutdown) WaitForShutdown(sigs ...os.Signal) {
	if len(sigs) > 0 {
		signal.Notify(s.sigCh, sigs...)
	}
	<-s.sigCh
	s.cancel()
	s.logger.Info("shutdown signal received, running teardown callbacks")
	s.runCallbacks()
	s.logger.Info("shutdown complete")
}

func (s *Shutdown) runCallbacks() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var wg sync.WaitGroup
	for _, cb := range s.callbacks {
		wg.Add(1)
		go func(cb callback) {
			defer wg.Done()

			done := make(chan struct{})
			go func() {
				defer close(done)
				cb.f()
			}()

			if cb.timeout <= 0 {
				<-done
				s.logger.Info(cb.name + ": shutdown callback done")
				return
			}
			select {
			case <-done:
				s.logger.Info(cb.name + ": shutdown callback done")
			case <-time.After(cb.timeout):
				s.logger.Warning(cb.name + ": shutdown callback timed out")
			}
		}(cb)
	}
	wg.Wait()
}
