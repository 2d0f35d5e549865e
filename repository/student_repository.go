package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"quiz_app_backend/models"
)

var ErrInvalidSort = errors.New("invalid sort key")

// Only these ORDER BY clauses are ever interpolated into the query.
var studentOrder = map[string]string{
	"":             "u.name ASC, u.id ASC",
	"name":         "u.name ASC, u.id ASC",
	"email":        "u.email ASC, u.id ASC",
	"overallScore": "overall_score DESC, u.name ASC",
	"lastAttempt":  "last_attempt DESC NULLS LAST, u.name ASC",
}

const studentResultsQuery = `
	WITH best AS (
		SELECT user_id, level, MAX(score) AS best_score, MAX(completed_at) AS last_attempt
		FROM quiz_attempts
		GROUP BY user_id, level
	)
	SELECT u.id, u.name, u.email,
		COALESCE(MAX(b.best_score) FILTER (WHERE b.level = 1), 0) AS level1_score,
		COALESCE(MAX(b.best_score) FILTER (WHERE b.level = 2), 0) AS level2_score,
		COALESCE(MAX(b.best_score) FILTER (WHERE b.level = 3), 0) AS level3_score,
		COALESCE(SUM(b.best_score), 0) AS overall_score,
		MAX(b.last_attempt) AS last_attempt
	FROM users u
	LEFT JOIN best b ON b.user_id = u.id
	WHERE u.role = 'student'`

// StudentRepository serves the teacher dashboard aggregates.
type StudentRepository struct {
	db *sql.DB
}

func NewStudentRepository(db *sql.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// ListStudents returns every student with their best scores, optionally
// filtered by a case-insensitive name or email match.
func (r *StudentRepository) ListStudents(ctx context.Context, f models.StudentFilter) ([]models.StudentResult, error) {
	order, ok := studentOrder[f.Sort]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSort, f.Sort)
	}

	query := studentResultsQuery
	var args []interface{}
	if term := strings.TrimSpace(f.Search); term != "" {
		query += " AND (u.name ILIKE $1 OR u.email ILIKE $1)"
		args = append(args, "%"+escapeLike(term)+"%")
	}
	query += " GROUP BY u.id, u.name, u.email ORDER BY " + order

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error fetching student results: %w", err)
	}
	defer rows.Close()

	results := []models.StudentResult{}
	for rows.Next() {
		var (
			s    models.StudentResult
			last sql.NullTime
		)
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Level1Score, &s.Level2Score, &s.Level3Score, &s.OverallScore, &last); err != nil {
			return nil, fmt.Errorf("error scanning student result: %w", err)
		}
		if last.Valid {
			t := last.Time.UTC()
			s.LastAttempt = &t
		}
		results = append(results, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating student results: %w", err)
	}
	return results, nil
}

// Summary aggregates the overall scores of all students.
func (r *StudentRepository) Summary(ctx context.Context) (models.ClassSummary, error) {
	results, err := r.ListStudents(ctx, models.StudentFilter{})
	if err != nil {
		return models.ClassSummary{}, err
	}
	return models.Summarize(results), nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
