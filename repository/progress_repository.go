package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"quiz_app_backend/quiz"
)

// ProgressRepository stores quiz progress in Postgres. It satisfies quiz.ProgressStore.
type ProgressRepository struct {
	db *sql.DB
}

func NewProgressRepository(db *sql.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// GetProgress returns the default progress for users that never submitted a quiz.
func (r *ProgressRepository) GetProgress(ctx context.Context, userID int) (quiz.Progress, error) {
	p := quiz.NewProgress()

	var highest int
	err := r.db.QueryRowContext(ctx,
		"SELECT highest_level FROM user_progress WHERE user_id = $1",
		userID,
	).Scan(&highest)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return quiz.Progress{}, fmt.Errorf("error fetching highest level: %w", err)
	default:
		if lvl := quiz.Level(highest); lvl.Valid() {
			p.HighestLevel = lvl
		}
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT level, score, total_questions, answers, time_spent, completed_at
		FROM level_results
		WHERE user_id = $1
		ORDER BY level
	`, userID)
	if err != nil {
		return quiz.Progress{}, fmt.Errorf("error fetching level results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			res     quiz.Result
			level   int
			answers []byte
		)
		if err := rows.Scan(&level, &res.Score, &res.TotalQuestions, &answers, &res.TimeSpent, &res.CompletedAt); err != nil {
			return quiz.Progress{}, fmt.Errorf("error scanning level result: %w", err)
		}
		res.Level = quiz.Level(level)
		if len(answers) > 0 {
			if err := json.Unmarshal(answers, &res.Answers); err != nil {
				return quiz.Progress{}, fmt.Errorf("error decoding answers for level %d: %w", level, err)
			}
		}
		res.CompletedAt = res.CompletedAt.UTC()
		p.Results[res.Level] = res
	}
	if err := rows.Err(); err != nil {
		return quiz.Progress{}, fmt.Errorf("error iterating level results: %w", err)
	}
	return p, nil
}

// SaveProgress upserts the highest level and every level result in one
// transaction. The stored highest level only moves up, and a result is only
// replaced by one completed at the same time or later, so a late write from
// the queue cannot roll progress back.
func (r *ProgressRepository) SaveProgress(ctx context.Context, userID int, p quiz.Progress) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_progress (user_id, highest_level, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id) DO UPDATE
		SET highest_level = GREATEST(user_progress.highest_level, EXCLUDED.highest_level),
		    updated_at = CURRENT_TIMESTAMP
	`, userID, int(p.HighestLevel))
	if err != nil {
		return fmt.Errorf("error saving highest level: %w", err)
	}

	levels := make([]quiz.Level, 0, len(p.Results))
	for lvl := range p.Results {
		levels = append(levels, lvl)
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })

	for _, lvl := range levels {
		res := p.Results[lvl]
		answers, err := json.Marshal(res.Answers)
		if err != nil {
			return fmt.Errorf("error encoding answers for level %d: %w", lvl, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO level_results (user_id, level, score, total_questions, answers, time_spent, completed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (user_id, level) DO UPDATE
			SET score = EXCLUDED.score,
			    total_questions = EXCLUDED.total_questions,
			    answers = EXCLUDED.answers,
			    time_spent = EXCLUDED.time_spent,
			    completed_at = EXCLUDED.completed_at
			WHERE level_results.completed_at <= EXCLUDED.completed_at
		`, userID, int(lvl), res.Score, res.TotalQuestions, answers, res.TimeSpent, res.CompletedAt)
		if err != nil {
			return fmt.Errorf("error saving level %d result: %w", lvl, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("error committing progress: %w", err)
	}
	return nil
}

// AppendAttempt records one submission in the attempt history.
func (r *ProgressRepository) AppendAttempt(ctx context.Context, a quiz.Attempt) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO quiz_attempts (user_id, level, score, total_questions, completed_at)
		VALUES ($1, $2, $3, $4, $5)
	`, a.UserID, int(a.Level), a.Score, a.TotalQuestions, a.CompletedAt)
	if err != nil {
		return fmt.Errorf("error saving quiz attempt: %w", err)
	}
	return nil
}
