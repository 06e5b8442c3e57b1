// Package retention projects future recall probability for a set of
// reviewed items using an exponential (Ebbinghaus-style) decay curve.
package retention

import (
	"math"
	"time"

	"github.com/mfreitas/memflash/internal/models"
	"github.com/mfreitas/memflash/internal/srs"
)

// DecayProfile is the per-item input to the projector: when the item was
// last reviewed and how slowly its memory trace decays.
type DecayProfile struct {
	LastReviewedOn time.Time
	Stability      float64
}

// ProfileFromItem derives a decay profile from an item's current ease
// factor and its review history. Items never reviewed have no profile
// and are excluded from projections.
func ProfileFromItem(item models.Item, revisions int, lastReviewed time.Time) (DecayProfile, bool) {
	if revisions <= 0 {
		return DecayProfile{}, false
	}
	return DecayProfile{
		LastReviewedOn: srs.Date(lastReviewed),
		Stability:      Stability(item.EaseFactor, revisions),
	}, true
}

// Stability converts an ease factor and revision count into the decay
// time constant, in days. More revisions and a higher ease factor both
// slow forgetting.
func Stability(easeFactor float64, revisions int) float64 {
	return easeFactor * 10 * (1 + float64(revisions)*0.5)
}

// At returns the modeled retention percentage for a single profile at
// the given date, in [0, 100].
func (p DecayProfile) At(t time.Time) float64 {
	daysSince := srs.Date(t).Sub(srs.Date(p.LastReviewedOn)).Hours() / 24
	if daysSince < 0 {
		daysSince = 0
	}
	r := 100 * math.Exp(-daysSince/p.Stability)
	return math.Min(100, math.Max(0, r))
}

// Project computes the aggregate retention curve from the given date for
// the given number of days (inclusive of day zero). The curve is the
// arithmetic mean of each profile's retention; with no profiles it is
// flat zero. Deterministic and pure for a fixed from date.
func Project(profiles []DecayProfile, from time.Time, days int) []models.RetentionPoint {
	if days < 0 {
		days = 0
	}
	start := srs.Date(from)
	curve := make([]models.RetentionPoint, 0, days+1)
	for d := 0; d <= days; d++ {
		date := start.AddDate(0, 0, d)
		var sum float64
		for _, p := range profiles {
			sum += p.At(date)
		}
		pct := 0.0
		if len(profiles) > 0 {
			pct = sum / float64(len(profiles))
		}
		curve = append(curve, models.RetentionPoint{Date: date, RetentionPct: pct})
	}
	return curve
}
