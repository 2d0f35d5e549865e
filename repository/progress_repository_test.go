package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz_app_backend/quiz"
)

var completedAt = time.Date(2025, 5, 18, 10, 2, 0, 0, time.UTC)

func TestGetProgress(t *testing.T) {
	resultCols := []string{"level", "score", "total_questions", "answers", "time_spent", "completed_at"}

	tests := []struct {
		name        string
		setupMock   func(sqlmock.Sqlmock)
		expectError bool
		wantHighest quiz.Level
		wantResults int
	}{
		{
			name: "new user gets the default progress",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT highest_level FROM user_progress`).
					WithArgs(5).
					WillReturnRows(sqlmock.NewRows([]string{"highest_level"}))
				mock.ExpectQuery(`FROM level_results`).
					WithArgs(5).
					WillReturnRows(sqlmock.NewRows(resultCols))
			},
			wantHighest: quiz.LevelEasy,
		},
		{
			name: "stored progress with one result",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT highest_level FROM user_progress`).
					WithArgs(5).
					WillReturnRows(sqlmock.NewRows([]string{"highest_level"}).AddRow(2))
				mock.ExpectQuery(`FROM level_results`).
					WithArgs(5).
					WillReturnRows(sqlmock.NewRows(resultCols).AddRow(
						1, 8, 10,
						[]byte(`[{"question_id":1,"user_answer":"b","is_correct":true},{"question_id":2,"user_answer":null,"is_correct":false}]`),
						95, completedAt,
					))
			},
			wantHighest: quiz.LevelMedium,
			wantResults: 1,
		},
		{
			name: "out of range level falls back to the first tier",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT highest_level FROM user_progress`).
					WithArgs(5).
					WillReturnRows(sqlmock.NewRows([]string{"highest_level"}).AddRow(9))
				mock.ExpectQuery(`FROM level_results`).
					WithArgs(5).
					WillReturnRows(sqlmock.NewRows(resultCols))
			},
			wantHighest: quiz.LevelEasy,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT highest_level FROM user_progress`).
					WillReturnError(sql.ErrConnDone)
			},
			expectError: true,
		},
		{
			name: "corrupt answers column",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT highest_level FROM user_progress`).
					WithArgs(5).
					WillReturnRows(sqlmock.NewRows([]string{"highest_level"}).AddRow(1))
				mock.ExpectQuery(`FROM level_results`).
					WithArgs(5).
					WillReturnRows(sqlmock.NewRows(resultCols).AddRow(1, 8, 10, []byte(`{`), 95, completedAt))
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			repo := NewProgressRepository(db)

			tt.setupMock(mock)

			p, err := repo.GetProgress(context.Background(), 5)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantHighest, p.HighestLevel)
				assert.Len(t, p.Results, tt.wantResults)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGetProgressDecodesAnswers(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT highest_level FROM user_progress`).
		WillReturnRows(sqlmock.NewRows([]string{"highest_level"}).AddRow(1))
	mock.ExpectQuery(`FROM level_results`).
		WillReturnRows(sqlmock.NewRows([]string{"level", "score", "total_questions", "answers", "time_spent", "completed_at"}).
			AddRow(1, 1, 2, []byte(`[{"question_id":1,"user_answer":"b","is_correct":true},{"question_id":2,"user_answer":null,"is_correct":false}]`), 42, completedAt))

	p, err := NewProgressRepository(db).GetProgress(context.Background(), 5)
	require.NoError(t, err)

	r := p.Results[quiz.LevelEasy]
	assert.Equal(t, 1, r.Score)
	assert.Equal(t, 42, r.TimeSpent)
	assert.True(t, r.CompletedAt.Equal(completedAt))
	require.Len(t, r.Answers, 2)
	require.NotNil(t, r.Answers[0].UserAnswer)
	assert.Equal(t, quiz.OptionB, *r.Answers[0].UserAnswer)
	assert.Nil(t, r.Answers[1].UserAnswer)
}

func TestSaveProgress(t *testing.T) {
	progress := quiz.NewProgress()
	progress.HighestLevel = quiz.LevelMedium
	progress.Results[quiz.LevelEasy] = quiz.Result{
		Level:          quiz.LevelEasy,
		Score:          8,
		TotalQuestions: 10,
		TimeSpent:      120,
		CompletedAt:    completedAt,
	}

	tests := []struct {
		name        string
		setupMock   func(sqlmock.Sqlmock)
		expectError bool
	}{
		{
			name: "successful upsert",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`INSERT INTO user_progress .* GREATEST`).
					WithArgs(5, 2).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(`INSERT INTO level_results`).
					WithArgs(5, 1, 8, 10, sqlmock.AnyArg(), 120, completedAt).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "failed result write rolls back",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`INSERT INTO user_progress`).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(`INSERT INTO level_results`).
					WillReturnError(sql.ErrConnDone)
				mock.ExpectRollback()
			},
			expectError: true,
		},
		{
			name: "begin fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(sql.ErrConnDone)
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			repo := NewProgressRepository(db)

			tt.setupMock(mock)

			err = repo.SaveProgress(context.Background(), 5, progress)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAppendAttempt(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO quiz_attempts`).
		WithArgs(5, 3, 7, 10, completedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = NewProgressRepository(db).AppendAttempt(context.Background(), quiz.Attempt{
		UserID:         5,
		Level:          quiz.LevelHard,
		Score:          7,
		TotalQuestions: 10,
		CompletedAt:    completedAt,
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendAttemptError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO quiz_attempts`).WillReturnError(sql.ErrConnDone)

	err = NewProgressRepository(db).AppendAttempt(context.Background(), quiz.Attempt{UserID: 5, Level: quiz.LevelEasy})
	assert.ErrorIs(t, err, sql.ErrConnDone)
}
