package srs

import (
	"fmt"
	"math"
	"time"

	"github.com/mfreitas/memflash/internal/models"
)

// Ease factor bounds. Every transition clamps into this range.
const (
	MinEase = 1.3
	MaxEase = 3.0
)

// ApplyRating computes the next scheduling state for an item given a
// rating, using an SM-2 variant. Pure: no clock access, no side effects.
// today is truncated to a calendar date before the next review date is
// derived from it.
func ApplyRating(st models.ReviewState, r Rating, today time.Time) (models.ReviewState, error) {
	if !r.IsValid() {
		return models.ReviewState{}, fmt.Errorf("%w: %d", ErrInvalidRating, int(r))
	}

	ease := st.EaseFactor
	interval := st.IntervalDays

	switch r {
	case Again:
		interval = 0
	case Hard:
		interval = int(math.Floor(float64(interval) * 1.2))
		if interval < 1 {
			interval = 1
		}
		ease = math.Max(MinEase, ease-0.15)
	case Good:
		if interval < 1 {
			interval = 1
		} else {
			interval = int(math.Round(float64(interval) * ease))
		}
	case Easy:
		if interval < 1 {
			interval = 4
		} else {
			interval = int(math.Round(float64(interval) * ease * 1.3))
		}
		ease = math.Min(MaxEase, ease+0.1)
	}

	// Round to 4 decimals so the ease factor doesn't accumulate float
	// drift across hundreds of reviews.
	ease = math.Round(ease*10000) / 10000

	return models.ReviewState{
		EaseFactor:     ease,
		IntervalDays:   interval,
		NextReviewDate: Date(today).AddDate(0, 0, interval),
	}, nil
}

// Date truncates t to midnight UTC. Review scheduling is calendar-date
// granular; times of day never participate in due comparisons.
func Date(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
