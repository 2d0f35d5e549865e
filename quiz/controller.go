package quiz

import (
	"fmt"
	"sync"
	"time"

	"quiz_app_backend/logger"
	"quiz_app_backend/metrics"
)

// DefaultQuestionTime is the per-question countdown in ticks.
const DefaultQuestionTime = 60

// Options configures the timing of a Controller.
type Options struct {
	QuestionTime int
	TickInterval time.Duration
	Scheduler    Scheduler
	Now          func() time.Time
	Logger       *logger.Logger
	Metrics      *metrics.Metrics
}

func (o Options) withDefaults() Options {
	if o.QuestionTime <= 0 {
		o.QuestionTime = DefaultQuestionTime
	}
	if o.TickInterval <= 0 {
		o.TickInterval = time.Second
	}
	if o.Scheduler == nil {
		o.Scheduler = RealScheduler()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Controller is the single owner of a user's quiz session. Requests and
// countdown ticks are serialized through mu.
type Controller struct {
	mu      sync.Mutex
	bank    *Bank
	tracker *Tracker
	notices *Notices
	opts    Options
	session *Session
	cd      countdown
	log     *logger.Logger
}

// NewController builds an idle controller. notices should be the queue the
// tracker pushes into so both share one delivery channel.
func NewController(bank *Bank, tracker *Tracker, notices *Notices, opts Options) *Controller {
	opts = opts.withDefaults()
	if notices == nil {
		notices = tracker.notices
	}
	return &Controller{
		bank:    bank,
		tracker: tracker,
		notices: notices,
		opts:    opts,
		log:     opts.Logger.With("user_id", tracker.UserID()),
	}
}

func (c *Controller) Tracker() *Tracker {
	return c.tracker
}

// Start begins a fresh session for level, replacing any existing one.
func (c *Controller) Start(level Level) error {
	if !level.Valid() {
		return ErrInvalidLevel
	}
	if c.tracker.IsLocked(level) {
		return ErrLevelLocked
	}
	questions := c.bank.QuestionsForLevel(level)
	if len(questions) == 0 {
		return ErrNoQuestions
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cd.cancel()
	c.session = newSession(level, questions, c.opts.QuestionTime, c.opts.Now())
	c.armLocked()

	c.log.Info("Quiz started", "level", int(level), "session_id", c.session.ID.String())
	c.opts.Metrics.SessionStarted(int(level))
	c.notices.push(NoticeInfo, fmt.Sprintf("Level %d quiz started!", level))
	return nil
}

// SelectAnswer records key for the current question. Re-selection before
// advancing overwrites the earlier choice.
func (c *Controller) SelectAnswer(key OptionKey) error {
	if !key.Valid() {
		return ErrInvalidOption
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.inProgressLocked() {
		return ErrNotInProgress
	}
	c.session.Answers[c.session.Position] = key
	// The countdown only runs while the current question is unanswered.
	c.cd.cancel()
	return nil
}

// Advance moves to the next question, or submits on the last one.
func (c *Controller) Advance() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.inProgressLocked() {
		return ErrNotInProgress
	}
	c.advanceLocked()
	return nil
}

// Back returns to the previous question. It is a no-op on the first question.
func (c *Controller) Back() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.inProgressLocked() {
		return ErrNotInProgress
	}
	if c.session.move(-1, c.opts.QuestionTime) {
		c.armLocked()
	}
	return nil
}

// Submit grades the session and forwards the result to the tracker.
func (c *Controller) Submit() (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.inProgressLocked() || c.session.StartedAt.IsZero() {
		return Result{}, ErrNotInProgress
	}
	return c.submitLocked(), nil
}

// Reset drops the session regardless of its state.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cd.cancel()
	c.session = nil
}

// Snapshot returns the current session view.
func (c *Controller) Snapshot() SessionView {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return SessionView{State: StateIdle, TimeLeft: c.opts.QuestionTime, TimeLimit: c.opts.QuestionTime, UserAnswers: []*OptionKey{}}
	}
	return c.session.view(c.opts.QuestionTime, c.cd.timer != nil)
}

func (c *Controller) timerRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cd.timer != nil
}

// Notices drains pending user notices.
func (c *Controller) Notices() []Notice {
	return c.notices.Drain()
}

func (c *Controller) inProgressLocked() bool {
	return c.session != nil && c.session.State == StateInProgress
}

func (c *Controller) advanceLocked() {
	if c.session.onLast() {
		c.submitLocked()
		return
	}
	c.session.move(1, c.opts.QuestionTime)
	c.armLocked()
}

func (c *Controller) submitLocked() Result {
	c.cd.cancel()

	s := c.session
	result := s.grade(c.opts.Now())
	s.Result = &result
	s.State = StateReviewing

	passed := Passed(result.Score, result.TotalQuestions)
	c.log.Info("Quiz submitted",
		"level", int(result.Level),
		"score", result.Score,
		"total_questions", result.TotalQuestions,
		"time_spent", result.TimeSpent,
		"passed", passed,
	)
	c.opts.Metrics.Submitted(int(result.Level), passed)
	c.tracker.RecordResult(result)
	return result.clone()
}

// armLocked starts the countdown for the current question when it is
// unanswered and stops it otherwise.
func (c *Controller) armLocked() {
	if !c.inProgressLocked() || c.session.currentAnswer() != OptionNone {
		c.cd.cancel()
		return
	}
	c.cd.arm(c.opts.Scheduler, c.opts.TickInterval, c.onTick)
}

func (c *Controller) onTick(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.cd.current(gen) || !c.inProgressLocked() || c.session.currentAnswer() != OptionNone {
		return
	}
	c.session.TimeLeft--
	if c.session.TimeLeft > 0 {
		c.cd.rearm(c.opts.Scheduler, c.opts.TickInterval, c.onTick)
		return
	}
	c.log.Debug("Question timed out", "position", c.session.Position)
	c.cd.timer = nil
	c.advanceLocked()
}
