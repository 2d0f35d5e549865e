package quiz

import (
	"context"
	"fmt"
	"sync"

	"quiz_app_backend/logger"
	"quiz_app_backend/metrics"
)

// Tracker owns one user's progress. The in-memory copy is authoritative for
// the running process; writes to the store are best effort.
type Tracker struct {
	mu       sync.Mutex
	userID   int
	progress Progress
	gen      uint64
	loaded   bool

	store     ProgressStore
	dispatch  Dispatcher
	notices   *Notices
	unlockAll bool
	log       *logger.Logger
	metrics   *metrics.Metrics
}

// TrackerConfig wires a Tracker to its collaborators.
type TrackerConfig struct {
	Store      ProgressStore
	Dispatcher Dispatcher
	Notices    *Notices
	UnlockAll  bool
	Logger     *logger.Logger
	Metrics    *metrics.Metrics
}

// NewTracker starts from the default progress. userID 0 means anonymous.
func NewTracker(userID int, cfg TrackerConfig) *Tracker {
	notices := cfg.Notices
	if notices == nil {
		notices = &Notices{}
	}
	return &Tracker{
		userID:    userID,
		progress:  NewProgress(),
		store:     cfg.Store,
		dispatch:  cfg.Dispatcher,
		notices:   notices,
		unlockAll: cfg.UnlockAll,
		log:       cfg.Logger.With("user_id", userID),
		metrics:   cfg.Metrics,
	}
}

func (t *Tracker) UserID() int {
	return t.userID
}

// Loaded reports whether stored progress has been applied at least once.
func (t *Tracker) Loaded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loaded || t.userID == 0 || t.store == nil
}

// Refresh fetches stored progress and merges it into the local copy unless a
// local change happened while the fetch was in flight. The merge never lowers
// the highest level and never replaces a result with an older one, so local
// results that have not reached the store yet survive a late load.
func (t *Tracker) Refresh(ctx context.Context) error {
	if t.userID == 0 || t.store == nil {
		return nil
	}

	t.mu.Lock()
	t.gen++
	gen := t.gen
	t.mu.Unlock()

	p, err := t.store.GetProgress(ctx, t.userID)
	if err != nil {
		t.log.Error("Error loading progress", "error", err)
		return fmt.Errorf("error loading progress: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.gen {
		t.log.Debug("Discarding stale progress fetch", "fetch_gen", gen, "current_gen", t.gen)
		return nil
	}
	if !p.HighestLevel.Valid() {
		p.HighestLevel = LevelEasy
	}
	if p.Results == nil {
		p.Results = map[Level]Result{}
	}
	t.progress = mergeProgress(p, t.progress)
	t.loaded = true
	return nil
}

// mergeProgress combines stored and local progress: the higher unlock wins,
// and per level the later result wins, local on a tie.
func mergeProgress(stored, local Progress) Progress {
	out := local.Clone()
	if stored.HighestLevel > out.HighestLevel {
		out.HighestLevel = stored.HighestLevel
	}
	for lvl, r := range stored.Results {
		if cur, ok := out.Results[lvl]; ok && !r.CompletedAt.After(cur.CompletedAt) {
			continue
		}
		out.Results[lvl] = r.clone()
	}
	return out
}

// Progress returns a copy of the current progress.
func (t *Tracker) Progress() Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progress.Clone()
}

// ResultFor returns the stored result of a level.
func (t *Tracker) ResultFor(level Level) (Result, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.progress.Results[level]
	if !ok {
		return Result{}, false
	}
	return r.clone(), true
}

// IsLocked reports whether level is above the user's highest unlocked tier.
// Anonymous users only ever have the first tier.
func (t *Tracker) IsLocked(level Level) bool {
	if t.userID == 0 {
		return level > LevelEasy
	}
	if t.unlockAll {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return level > t.progress.HighestLevel
}

// RecordResult overwrites the level's result, applies the leveling rule and
// hands persistence to the dispatcher.
func (t *Tracker) RecordResult(r Result) (Level, bool) {
	t.mu.Lock()
	t.gen++
	t.progress.Results[r.Level] = r.clone()
	level, unlocked := ApplyLeveling(&t.progress, r)
	snapshot := t.progress.Clone()
	t.mu.Unlock()

	if unlocked {
		t.log.Info("Level unlocked", "level", int(level))
		t.metrics.Unlocked(int(level))
		t.notices.push(NoticeSuccess, fmt.Sprintf("You've unlocked Level %d!", level))
	}

	if t.userID != 0 && t.store != nil && t.dispatch != nil {
		t.persist(snapshot, Attempt{
			UserID:         t.userID,
			Level:          r.Level,
			Score:          r.Score,
			TotalQuestions: r.TotalQuestions,
			CompletedAt:    r.CompletedAt,
		})
	}
	return level, unlocked
}

// persist queues both writes of one submission. However many of them fail,
// the user is told once.
func (t *Tracker) persist(p Progress, a Attempt) {
	var once sync.Once
	onError := func(error) {
		once.Do(func() {
			t.notices.push(NoticeError, "Your progress could not be saved. It is kept for this session.")
		})
	}
	t.dispatch.Enqueue(WriteJob{
		Op:     "save_progress",
		UserID: t.userID,
		Run: func(ctx context.Context) error {
			return t.store.SaveProgress(ctx, t.userID, p)
		},
		OnError: onError,
	})
	t.dispatch.Enqueue(WriteJob{
		Op:     "append_attempt",
		UserID: t.userID,
		Run: func(ctx context.Context) error {
			return t.store.AppendAttempt(ctx, a)
		},
		OnError: onError,
	})
}
