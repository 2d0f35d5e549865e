package quiz

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// manualScheduler fires armed callbacks only when the test calls Tick.
type manualScheduler struct {
	mu      sync.Mutex
	pending []*manualTimer
	all     []*manualTimer
}

type manualTimer struct {
	s       *manualScheduler
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (s *manualScheduler) AfterFunc(_ time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{s: s, f: f}
	s.pending = append(s.pending, t)
	s.all = append(s.all, t)
	return t
}

// Tick fires every callback that is armed and not stopped.
func (s *manualScheduler) Tick() {
	s.mu.Lock()
	due := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, t := range due {
		s.mu.Lock()
		run := !t.stopped
		t.fired = run
		s.mu.Unlock()
		if run {
			t.f()
		}
	}
}

func (s *manualScheduler) TickN(n int) {
	for i := 0; i < n; i++ {
		s.Tick()
	}
}

// Armed counts callbacks that would fire on the next Tick.
func (s *manualScheduler) Armed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.pending {
		if !t.stopped {
			n++
		}
	}
	return n
}

func (s *manualScheduler) last() *manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.all[len(s.all)-1]
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 5, 18, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// memStore is an in-memory ProgressStore.
type memStore struct {
	mu       sync.Mutex
	progress map[int]Progress
	attempts []Attempt
	saveErr  error
	getErr   error
	onGet    func()
}

func newMemStore() *memStore {
	return &memStore{progress: map[int]Progress{}}
}

func (s *memStore) GetProgress(_ context.Context, userID int) (Progress, error) {
	if s.onGet != nil {
		s.onGet()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return Progress{}, s.getErr
	}
	p, ok := s.progress[userID]
	if !ok {
		return NewProgress(), nil
	}
	return p.Clone(), nil
}

func (s *memStore) SaveProgress(_ context.Context, userID int, p Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.progress[userID] = p.Clone()
	return nil
}

func (s *memStore) AppendAttempt(_ context.Context, a Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.attempts = append(s.attempts, a)
	return nil
}

var errStoreDown = errors.New("store unavailable")

type fixture struct {
	bank    *Bank
	sched   *manualScheduler
	clock   *fakeClock
	store   *memStore
	tracker *Tracker
	ctrl    *Controller
}

func newFixture(t *testing.T, userID int, highest Level) *fixture {
	t.Helper()
	bank, err := DefaultBank()
	require.NoError(t, err)
	return newFixtureWithBank(t, bank, userID, highest)
}

func newFixtureWithBank(t *testing.T, bank *Bank, userID int, highest Level) *fixture {
	t.Helper()
	f := &fixture{
		bank:  bank,
		sched: &manualScheduler{},
		clock: newFakeClock(),
		store: newMemStore(),
	}
	if highest > LevelEasy {
		p := NewProgress()
		p.HighestLevel = highest
		f.store.progress[userID] = p
	}
	notices := &Notices{}
	f.tracker = NewTracker(userID, TrackerConfig{
		Store:      f.store,
		Dispatcher: SyncDispatcher{},
		Notices:    notices,
	})
	require.NoError(t, f.tracker.Refresh(context.Background()))
	f.ctrl = NewController(bank, f.tracker, notices, Options{
		Scheduler: f.sched,
		Now:       f.clock.Now,
	})
	return f
}

// correctKeys returns the right answer for every question of level in order.
func correctKeys(b *Bank, level Level) []OptionKey {
	var keys []OptionKey
	for _, q := range b.QuestionsForLevel(level) {
		keys = append(keys, q.Correct)
	}
	return keys
}

// wrongKey returns some option that is not the correct one.
func wrongKey(q Question) OptionKey {
	for _, k := range OptionKeys {
		if k != q.Correct {
			return k
		}
	}
	return OptionNone
}

func bankFromYAML(t *testing.T, doc string) *Bank {
	t.Helper()
	b, err := LoadBank(strings.NewReader(doc))
	require.NoError(t, err)
	return b
}
