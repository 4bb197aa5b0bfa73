// Package repository defines the leaderboard store interface and its
// in-memory implementation.
package repository

import "context"

// Entry represents a leaderboard row: an athlete's best graded run.
type Entry struct {
	Rank        int     `json:"rank"`
	AthleteID   string  `json:"athlete_id"`
	Score       float64 `json:"score"`
	ActivityID  string  `json:"activity_id"`
	Shape       string  `json:"shape"`
	Algorithm   string  `json:"algorithm"`
	LetterGrade string  `json:"letter_grade"`
}

// Best is the score and metadata recorded when an athlete improves.
type Best struct {
	AthleteID   string
	Score       float64
	ActivityID  string
	Shape       string
	Algorithm   string
	LetterGrade string
}

// Store provides read/write access to the leaderboard state.
type Store interface {
	// UpdateBest records a new best for the athlete when the score improves
	// on the existing one. Returns true if the store updated.
	UpdateBest(ctx context.Context, best Best) (bool, error)

	// Rank returns the current rank and best entry for an athlete.
	// Returns ErrNotFound for an unknown athlete.
	Rank(ctx context.Context, athleteID string) (Entry, error)

	// TopN returns the top-N entries ordered by score descending.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of athletes on the leaderboard.
	Count(ctx context.Context) int
}
