package quiz

import (
	"context"
	"sync"
	"time"

	"quiz_app_backend/logger"
	"quiz_app_backend/metrics"
)

// RegistryConfig holds everything a Registry needs to build controllers.
type RegistryConfig struct {
	Bank       *Bank
	Store      ProgressStore
	Dispatcher Dispatcher
	UnlockAll  bool
	Options    Options
	Logger     *logger.Logger
	Metrics    *metrics.Metrics
}

type registryEntry struct {
	ctrl     *Controller
	lastSeen time.Time
}

// Registry hands out one Controller per user and keeps it until logout, idle
// eviction or shutdown.
type Registry struct {
	mu      sync.Mutex
	cfg     RegistryConfig
	now     func() time.Time
	entries map[int]*registryEntry
	closed  bool
}

func NewRegistry(cfg RegistryConfig) *Registry {
	cfg.Options.Logger = cfg.Logger
	cfg.Options.Metrics = cfg.Metrics
	cfg.Options = cfg.Options.withDefaults()
	return &Registry{cfg: cfg, now: cfg.Options.Now, entries: map[int]*registryEntry{}}
}

// Bank returns the question bank shared by every controller.
func (r *Registry) Bank() *Bank {
	return r.cfg.Bank
}

// Get returns the user's controller, creating it and loading stored progress
// on first use. A failed load leaves the default progress in place and is
// retried on the next call.
func (r *Registry) Get(ctx context.Context, userID int) (*Controller, error) {
	r.mu.Lock()
	e, ok := r.entries[userID]
	if !ok {
		e = &registryEntry{ctrl: r.newController(userID)}
		// After Shutdown controllers are handed out but no longer tracked.
		if !r.closed {
			r.entries[userID] = e
		}
	}
	e.lastSeen = r.now()
	r.mu.Unlock()

	if !e.ctrl.tracker.Loaded() {
		if err := e.ctrl.tracker.Refresh(ctx); err != nil {
			return e.ctrl, err
		}
	}
	return e.ctrl, nil
}

func (r *Registry) newController(userID int) *Controller {
	notices := &Notices{}
	tracker := NewTracker(userID, TrackerConfig{
		Store:      r.cfg.Store,
		Dispatcher: r.cfg.Dispatcher,
		Notices:    notices,
		UnlockAll:  r.cfg.UnlockAll,
		Logger:     r.cfg.Logger,
		Metrics:    r.cfg.Metrics,
	})
	return NewController(r.cfg.Bank, tracker, notices, r.cfg.Options)
}

// Drop resets and forgets the user's controller.
func (r *Registry) Drop(userID int) {
	r.mu.Lock()
	e, ok := r.entries[userID]
	delete(r.entries, userID)
	r.mu.Unlock()

	if ok {
		e.ctrl.Reset()
	}
}

// EvictIdle drops every controller not requested for maxIdle and returns how
// many were dropped. A running countdown keeps its controller alive.
func (r *Registry) EvictIdle(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	var idle []*Controller
	for id, e := range r.entries {
		if e.lastSeen.After(cutoff) || e.ctrl.timerRunning() {
			continue
		}
		idle = append(idle, e.ctrl)
		delete(r.entries, id)
	}
	r.mu.Unlock()

	for _, ctrl := range idle {
		ctrl.Reset()
	}
	if len(idle) > 0 {
		r.cfg.Logger.Debug("Evicted idle quiz sessions", "count", len(idle))
	}
	return len(idle)
}

// RunJanitor evicts idle controllers every interval until ctx is done.
func (r *Registry) RunJanitor(ctx context.Context, interval, maxIdle time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.EvictIdle(maxIdle)
		}
	}
}

// Shutdown stops every countdown so no timer-driven submit can fire after
// the persistence writer has stopped. Later Get calls still work but their
// controllers are not kept.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	r.closed = true
	entries := r.entries
	r.entries = map[int]*registryEntry{}
	r.mu.Unlock()

	for _, e := range entries {
		e.ctrl.Reset()
	}
}

// Len reports how many users currently hold a controller.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
