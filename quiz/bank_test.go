package quiz

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBank(t *testing.T) {
	b, err := DefaultBank()
	require.NoError(t, err)
	assert.Equal(t, 30, b.Len())

	for _, lvl := range AllLevels {
		qs := b.QuestionsForLevel(lvl)
		require.Len(t, qs, 10, "level %d", lvl)
		for i, q := range qs {
			assert.Equal(t, lvl, q.Level)
			assert.Equal(t, int(lvl-1)*10+i+1, q.ID, "bank order must be preserved")
			assert.True(t, q.Correct.Valid())
			assert.Len(t, q.Options, 4)
		}
	}

	first := b.QuestionsForLevel(LevelEasy)[0]
	assert.Equal(t, "What is the capital of India?", first.Prompt)
	assert.Equal(t, OptionB, first.Correct)
	assert.Equal(t, "New Delhi", first.Options[OptionB])
}

func TestQuestionsForUnknownLevel(t *testing.T) {
	b, err := DefaultBank()
	require.NoError(t, err)

	assert.Empty(t, b.QuestionsForLevel(0))
	assert.Empty(t, b.QuestionsForLevel(4))
	assert.NotNil(t, b.QuestionsForLevel(7))
}

func TestQuestionsForLevelReturnsCopy(t *testing.T) {
	b, err := DefaultBank()
	require.NoError(t, err)

	qs := b.QuestionsForLevel(LevelEasy)
	qs[0] = Question{ID: 999}
	assert.Equal(t, 1, b.QuestionsForLevel(LevelEasy)[0].ID)
}

func TestLevelsCatalogue(t *testing.T) {
	b, err := DefaultBank()
	require.NoError(t, err)

	levels := b.Levels()
	require.Len(t, levels, 3)
	assert.Equal(t, "Level 1: Easy", levels[0].Title)
	assert.Equal(t, "Medium", levels[1].Name)
	assert.Equal(t, 10, levels[2].QuestionCount)
}

func TestLoadBankValidation(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name: "duplicate id",
			doc: `
questions:
  - {id: 1, level: 1, prompt: x, correct: a, options: {a: "1", b: "2", c: "3", d: "4"}}
  - {id: 1, level: 1, prompt: y, correct: a, options: {a: "1", b: "2", c: "3", d: "4"}}
`,
			wantErr: "duplicate id",
		},
		{
			name: "level out of range",
			doc: `
questions:
  - {id: 1, level: 4, prompt: x, correct: a, options: {a: "1", b: "2", c: "3", d: "4"}}
`,
			wantErr: "invalid level",
		},
		{
			name: "missing option",
			doc: `
questions:
  - {id: 1, level: 1, prompt: x, correct: a, options: {a: "1", b: "2", c: "3", e: "4"}}
`,
			wantErr: "missing option",
		},
		{
			name: "correct key not an option",
			doc: `
questions:
  - {id: 1, level: 1, prompt: x, correct: e, options: {a: "1", b: "2", c: "3", d: "4"}}
`,
			wantErr: "invalid answer option",
		},
		{
			name:    "malformed yaml",
			doc:     "questions: [",
			wantErr: "error decoding question bank",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadBank(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadBankWithoutLevelCatalogue(t *testing.T) {
	b := bankFromYAML(t, `
questions:
  - {id: 5, level: 2, prompt: x, correct: c, options: {a: "1", b: "2", c: "3", d: "4"}}
`)
	levels := b.Levels()
	require.Len(t, levels, 3)
	assert.Equal(t, "Level 2: Medium", levels[1].Title)
	assert.Equal(t, 1, levels[1].QuestionCount)
	assert.Equal(t, 0, levels[0].QuestionCount)
}
