package quiz

import (
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle phase of a quiz session.
type State string

const (
	StateIdle       State = "idle"
	StateInProgress State = "in_progress"
	StateReviewing  State = "reviewing"
)

// Session is one attempt at one level. It holds no locks; Controller
// serializes access to it.
type Session struct {
	ID        uuid.UUID
	Level     Level
	Questions []Question
	Position  int
	Answers   []OptionKey
	TimeLeft  int
	StartedAt time.Time
	State     State
	Result    *Result
}

func newSession(level Level, questions []Question, timeLimit int, now time.Time) *Session {
	return &Session{
		ID:        uuid.New(),
		Level:     level,
		Questions: questions,
		Position:  0,
		Answers:   make([]OptionKey, len(questions)),
		TimeLeft:  timeLimit,
		StartedAt: now,
		State:     StateInProgress,
	}
}

func (s *Session) current() Question {
	return s.Questions[s.Position]
}

func (s *Session) currentAnswer() OptionKey {
	return s.Answers[s.Position]
}

func (s *Session) onLast() bool {
	return s.Position >= len(s.Questions)-1
}

// move shifts the position by delta and restores the full timer. It reports
// false when the target is out of range.
func (s *Session) move(delta, timeLimit int) bool {
	next := s.Position + delta
	if next < 0 || next >= len(s.Questions) {
		return false
	}
	s.Position = next
	s.TimeLeft = timeLimit
	return true
}

// grade scores every slot against its question, regardless of position.
func (s *Session) grade(now time.Time) Result {
	answers := make([]AnswerOutcome, len(s.Questions))
	score := 0
	for i, q := range s.Questions {
		out := AnswerOutcome{QuestionID: q.ID}
		if k := s.Answers[i]; k != OptionNone {
			k := k
			out.UserAnswer = &k
			out.IsCorrect = k == q.Correct
		}
		if out.IsCorrect {
			score++
		}
		answers[i] = out
	}

	elapsed := now.Sub(s.StartedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	return Result{
		Level:          s.Level,
		Score:          score,
		TotalQuestions: len(s.Questions),
		Answers:        answers,
		TimeSpent:      int(elapsed / time.Second),
		CompletedAt:    now.UTC().Truncate(time.Microsecond),
	}
}

// OptionView is one labeled option as shown to the player.
type OptionView struct {
	Key  OptionKey `json:"key"`
	Text string    `json:"text"`
}

// QuestionView hides the correct key unless the session is being reviewed.
type QuestionView struct {
	ID         int          `json:"id"`
	Prompt     string       `json:"question"`
	Options    []OptionView `json:"options"`
	Correct    *OptionKey   `json:"correct_answer,omitempty"`
	UserAnswer *OptionKey   `json:"user_answer"`
}

// SessionView is the read-only snapshot returned to clients.
type SessionView struct {
	State          State          `json:"state"`
	SessionID      string         `json:"session_id,omitempty"`
	Level          Level          `json:"level,omitempty"`
	Position       int            `json:"current_question_index"`
	TotalQuestions int            `json:"total_questions"`
	TimeLeft       int            `json:"time_left"`
	TimeLimit      int            `json:"time_limit"`
	TimerRunning   bool           `json:"timer_running"`
	SelectedAnswer *OptionKey     `json:"selected_answer"`
	UserAnswers    []*OptionKey   `json:"user_answers"`
	Question       *QuestionView  `json:"question,omitempty"`
	Review         []QuestionView `json:"review,omitempty"`
	Result         *Result        `json:"result,omitempty"`
}

func keyPtr(k OptionKey) *OptionKey {
	if k == OptionNone {
		return nil
	}
	return &k
}

func questionView(q Question, answer OptionKey, withCorrect bool) QuestionView {
	v := QuestionView{ID: q.ID, Prompt: q.Prompt, UserAnswer: keyPtr(answer)}
	for _, k := range OptionKeys {
		v.Options = append(v.Options, OptionView{Key: k, Text: q.Options[k]})
	}
	if withCorrect {
		v.Correct = keyPtr(q.Correct)
	}
	return v
}

func (s *Session) view(timeLimit int, timerRunning bool) SessionView {
	v := SessionView{
		State:          s.State,
		SessionID:      s.ID.String(),
		Level:          s.Level,
		Position:       s.Position,
		TotalQuestions: len(s.Questions),
		TimeLeft:       s.TimeLeft,
		TimeLimit:      timeLimit,
		TimerRunning:   timerRunning,
		SelectedAnswer: keyPtr(s.currentAnswer()),
		UserAnswers:    make([]*OptionKey, len(s.Answers)),
	}
	for i, k := range s.Answers {
		v.UserAnswers[i] = keyPtr(k)
	}

	switch s.State {
	case StateInProgress:
		qv := questionView(s.current(), s.currentAnswer(), false)
		v.Question = &qv
	case StateReviewing:
		for i, q := range s.Questions {
			v.Review = append(v.Review, questionView(q, s.Answers[i], true))
		}
		if s.Result != nil {
			r := s.Result.clone()
			v.Result = &r
		}
	}
	return v
}
