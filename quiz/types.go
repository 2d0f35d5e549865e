package quiz

import (
	"errors"
	"fmt"
	"time"
)

// Level is one of the three ordered difficulty tiers.
type Level int

const (
	LevelEasy   Level = 1
	LevelMedium Level = 2
	LevelHard   Level = 3

	MinLevel = LevelEasy
	MaxLevel = LevelHard
)

// AllLevels lists every tier in ascending order.
var AllLevels = []Level{LevelEasy, LevelMedium, LevelHard}

func (l Level) Valid() bool {
	return l >= MinLevel && l <= MaxLevel
}

func (l Level) String() string {
	switch l {
	case LevelEasy:
		return "Easy"
	case LevelMedium:
		return "Medium"
	case LevelHard:
		return "Hard"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// OptionKey labels one of the four answer options. The zero value means unanswered.
type OptionKey string

const (
	OptionNone OptionKey = ""
	OptionA    OptionKey = "a"
	OptionB    OptionKey = "b"
	OptionC    OptionKey = "c"
	OptionD    OptionKey = "d"
)

// OptionKeys is the fixed presentation order of options.
var OptionKeys = []OptionKey{OptionA, OptionB, OptionC, OptionD}

func (k OptionKey) Valid() bool {
	switch k {
	case OptionA, OptionB, OptionC, OptionD:
		return true
	}
	return false
}

// Question is immutable once loaded into a Bank.
type Question struct {
	ID      int                  `json:"id"`
	Prompt  string               `json:"question"`
	Options map[OptionKey]string `json:"options"`
	Correct OptionKey            `json:"correct_answer"`
	Level   Level                `json:"level"`
}

// AnswerOutcome is the per-question line of a Result.
type AnswerOutcome struct {
	QuestionID int        `json:"question_id"`
	UserAnswer *OptionKey `json:"user_answer"`
	IsCorrect  bool       `json:"is_correct"`
}

// Result is produced once by Submit and never mutated afterwards.
type Result struct {
	Level          Level           `json:"level"`
	Score          int             `json:"score"`
	TotalQuestions int             `json:"total_questions"`
	Answers        []AnswerOutcome `json:"answers"`
	TimeSpent      int             `json:"time_spent"`
	CompletedAt    time.Time       `json:"completed_at"`
}

// Percentage is the score rounded to the nearest whole percent.
func (r Result) Percentage() int {
	if r.TotalQuestions == 0 {
		return 0
	}
	return (r.Score*200 + r.TotalQuestions) / (r.TotalQuestions * 2)
}

// Progress is a user's unlock state and latest result per level.
type Progress struct {
	HighestLevel Level            `json:"highest_level"`
	Results      map[Level]Result `json:"results"`
}

// NewProgress returns the starting progress of every account.
func NewProgress() Progress {
	return Progress{HighestLevel: LevelEasy, Results: map[Level]Result{}}
}

// Clone returns a deep copy.
func (p Progress) Clone() Progress {
	out := Progress{HighestLevel: p.HighestLevel, Results: make(map[Level]Result, len(p.Results))}
	for lvl, r := range p.Results {
		out.Results[lvl] = r.clone()
	}
	return out
}

func (r Result) clone() Result {
	out := r
	out.Answers = make([]AnswerOutcome, len(r.Answers))
	for i, a := range r.Answers {
		out.Answers[i] = a
		if a.UserAnswer != nil {
			k := *a.UserAnswer
			out.Answers[i].UserAnswer = &k
		}
	}
	return out
}

// Attempt is the append-only record written for every submission.
type Attempt struct {
	UserID         int       `json:"user_id"`
	Level          Level     `json:"level"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	CompletedAt    time.Time `json:"completed_at"`
}

var (
	ErrInvalidLevel  = errors.New("invalid level")
	ErrLevelLocked   = errors.New("level is locked")
	ErrNoQuestions   = errors.New("level has no questions")
	ErrInvalidOption = errors.New("invalid answer option")
	ErrNotInProgress = errors.New("no quiz in progress")
)
