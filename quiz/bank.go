package quiz

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed questions.yaml
var defaultBankYAML []byte

// LevelInfo describes a tier for level pickers.
type LevelInfo struct {
	Level         Level  `json:"level" yaml:"level"`
	Name          string `json:"name" yaml:"name"`
	Title         string `json:"title" yaml:"title"`
	Description   string `json:"description" yaml:"description"`
	QuestionCount int    `json:"total_questions" yaml:"-"`
}

// Bank is the static, read-only question collection.
type Bank struct {
	levels    []LevelInfo
	questions []Question
}

type bankFile struct {
	Levels    []LevelInfo    `yaml:"levels"`
	Questions []questionFile `yaml:"questions"`
}

type questionFile struct {
	ID      int                  `yaml:"id"`
	Level   int                  `yaml:"level"`
	Prompt  string               `yaml:"prompt"`
	Options map[OptionKey]string `yaml:"options"`
	Correct OptionKey            `yaml:"correct"`
}

// DefaultBank returns the bank compiled into the binary.
func DefaultBank() (*Bank, error) {
	return LoadBank(bytes.NewReader(defaultBankYAML))
}

// LoadBankFile reads a bank from a YAML file on disk.
func LoadBankFile(path string) (*Bank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening question bank: %w", err)
	}
	defer f.Close()
	return LoadBank(f)
}

// LoadBank parses and validates a YAML question bank.
func LoadBank(r io.Reader) (*Bank, error) {
	var file bankFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("error decoding question bank: %w", err)
	}

	seen := make(map[int]bool, len(file.Questions))
	questions := make([]Question, 0, len(file.Questions))
	for _, qf := range file.Questions {
		if seen[qf.ID] {
			return nil, fmt.Errorf("question %d: duplicate id", qf.ID)
		}
		seen[qf.ID] = true

		lvl := Level(qf.Level)
		if !lvl.Valid() {
			return nil, fmt.Errorf("question %d: %w %d", qf.ID, ErrInvalidLevel, qf.Level)
		}
		if len(qf.Options) != len(OptionKeys) {
			return nil, fmt.Errorf("question %d: expected %d options, got %d", qf.ID, len(OptionKeys), len(qf.Options))
		}
		for _, k := range OptionKeys {
			if _, ok := qf.Options[k]; !ok {
				return nil, fmt.Errorf("question %d: missing option %q", qf.ID, k)
			}
		}
		if !qf.Correct.Valid() {
			return nil, fmt.Errorf("question %d: %w %q", qf.ID, ErrInvalidOption, qf.Correct)
		}

		opts := make(map[OptionKey]string, len(qf.Options))
		for k, v := range qf.Options {
			opts[k] = v
		}
		questions = append(questions, Question{
			ID:      qf.ID,
			Prompt:  qf.Prompt,
			Options: opts,
			Correct: qf.Correct,
			Level:   lvl,
		})
	}

	b := &Bank{questions: questions}
	for _, lvl := range AllLevels {
		info := LevelInfo{Level: lvl, Name: lvl.String(), Title: fmt.Sprintf("Level %d: %s", lvl, lvl)}
		for _, li := range file.Levels {
			if li.Level == lvl {
				info.Name, info.Title, info.Description = li.Name, li.Title, li.Description
			}
		}
		info.QuestionCount = len(b.QuestionsForLevel(lvl))
		b.levels = append(b.levels, info)
	}
	return b, nil
}

// QuestionsForLevel returns the level's questions in bank order.
// Unknown levels yield an empty slice.
func (b *Bank) QuestionsForLevel(level Level) []Question {
	out := []Question{}
	for _, q := range b.questions {
		if q.Level == level {
			out = append(out, q)
		}
	}
	return out
}

// Levels returns the tier catalogue with question counts.
func (b *Bank) Levels() []LevelInfo {
	out := make([]LevelInfo, len(b.levels))
	copy(out, b.levels)
	return out
}

// Len reports the total number of questions.
func (b *Bank) Len() int {
	return len(b.questions)
}
