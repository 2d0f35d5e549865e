package models

import "time"

// StudentResult is one row of the teacher dashboard: best score per level,
// the sum of those bests and the time of the latest attempt.
type StudentResult struct {
	ID           int        `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Level1Score  int        `json:"level1_score"`
	Level2Score  int        `json:"level2_score"`
	Level3Score  int        `json:"level3_score"`
	OverallScore int        `json:"overall_score"`
	LastAttempt  *time.Time `json:"last_attempt"`
}

type StudentFilter struct {
	Search string `form:"search" binding:"max=100"`
	Sort   string `form:"sort" binding:"omitempty,oneof=name email overallScore lastAttempt"`
}

type ClassSummary struct {
	TotalStudents  int `json:"total_students"`
	AverageOverall int `json:"average_overall"`
	HighestOverall int `json:"highest_overall"`
	LowestOverall  int `json:"lowest_overall"`
}

// Summarize aggregates overall scores. The average is rounded half up.
func Summarize(results []StudentResult) ClassSummary {
	s := ClassSummary{TotalStudents: len(results)}
	if len(results) == 0 {
		return s
	}
	sum := 0
	s.HighestOverall = results[0].OverallScore
	s.LowestOverall = results[0].OverallScore
	for _, r := range results {
		sum += r.OverallScore
		if r.OverallScore > s.HighestOverall {
			s.HighestOverall = r.OverallScore
		}
		if r.OverallScore < s.LowestOverall {
			s.LowestOverall = r.OverallScore
		}
	}
	n := len(results)
	s.AverageOverall = (sum*2 + n) / (2 * n)
	return s
}
