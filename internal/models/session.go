package models

import "time"

// SessionSummary is the result of ending a review session.
type SessionSummary struct {
	RatingCounts map[int]int   `json:"rating_counts"`
	Rated        int           `json:"rated"`
	RetentionPct int           `json:"retention_pct"`
	BestStreak   int           `json:"best_streak"`
	Elapsed      time.Duration `json:"elapsed"`
	StartedAt    time.Time     `json:"started_at"`
	EndedAt      time.Time     `json:"ended_at"`
}

// ReviewStat aggregates an item's rating history: how many times it has
// been reviewed and when the most recent review happened.
type ReviewStat struct {
	Revisions    int       `json:"revisions"`
	LastReviewed time.Time `json:"last_reviewed"`
}

// RetentionPoint is one sample of a projected retention curve.
type RetentionPoint struct {
	Date         time.Time `json:"date"`
	RetentionPct float64   `json:"retention_pct"`
}
