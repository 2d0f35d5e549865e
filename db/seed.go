package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type demoStudent struct {
	name   string
	email  string
	scores [3]int
	last   time.Time
}

// Demo class shown on the teacher dashboard of a fresh development database.
var demoStudents = []demoStudent{
	{"Alex Johnson", "alex@example.com", [3]int{8, 7, 6}, time.Date(2025, 5, 18, 0, 0, 0, 0, time.UTC)},
	{"Priya Sharma", "priya@example.com", [3]int{9, 8, 7}, time.Date(2025, 5, 17, 0, 0, 0, 0, time.UTC)},
	{"Mohammed Ali", "mohammed@example.com", [3]int{7, 6, 5}, time.Date(2025, 5, 16, 0, 0, 0, 0, time.UTC)},
	{"Sarah Green", "sarah@example.com", [3]int{10, 9, 8}, time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC)},
	{"John Smith", "john@example.com", [3]int{6, 7, 9}, time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC)},
}

const (
	demoTeacherName  = "Demo Teacher"
	demoTeacherEmail = "teacher@example.com"
	demoTotal        = 10
)

// SeedDemoData creates a demo teacher and a class of students with finished
// quizzes. Accounts that already exist are left untouched, so running it on
// every start is safe. All accounts share passwordHash.
func SeedDemoData(ctx context.Context, db *sql.DB, passwordHash string) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, role) VALUES ($1, $2, $3, 'teacher') ON CONFLICT (email) DO NOTHING`,
		demoTeacherName, demoTeacherEmail, passwordHash,
	); err != nil {
		return 0, fmt.Errorf("error seeding teacher: %w", err)
	}

	seeded := 0
	for _, s := range demoStudents {
		var userID int
		err := tx.QueryRowContext(ctx,
			`INSERT INTO users (name, email, password_hash, role) VALUES ($1, $2, $3, 'student') ON CONFLICT (email) DO NOTHING RETURNING id`,
			s.name, s.email, passwordHash,
		).Scan(&userID)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("error seeding student %s: %w", s.name, err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_progress (user_id, highest_level) VALUES ($1, 3)`, userID,
		); err != nil {
			return 0, fmt.Errorf("error seeding progress: %w", err)
		}
		for i, score := range s.scores {
			level := i + 1
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO level_results (user_id, level, score, total_questions, completed_at) VALUES ($1, $2, $3, $4, $5)`,
				userID, level, score, demoTotal, s.last,
			); err != nil {
				return 0, fmt.Errorf("error seeding level result: %w", err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO quiz_attempts (user_id, level, score, total_questions, completed_at) VALUES ($1, $2, $3, $4, $5)`,
				userID, level, score, demoTotal, s.last,
			); err != nil {
				return 0, fmt.Errorf("error seeding attempt: %w", err)
			}
		}
		seeded++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("error committing transaction: %w", err)
	}
	return seeded, nil
}
