package retention_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/mfreitas/memflash/internal/models"
	"github.com/mfreitas/memflash/internal/retention"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestStability(t *testing.T) {
	// ease 2.5, one revision: 2.5 * 10 * 1.5 = 37.5
	assert.Equal(t, 37.5, retention.Stability(2.5, 1))
	assert.Equal(t, 25.0, retention.Stability(2.5, 0))
}

func TestDecayProfile_At(t *testing.T) {
	p := retention.DecayProfile{
		LastReviewedOn: now.AddDate(0, 0, -10),
		Stability:      37.5,
	}

	// 100 * e^(-10/37.5) ≈ 76.6%
	assert.InDelta(t, 76.59, p.At(now), 0.01)
}

func TestDecayProfile_At_FutureLastReviewClamps(t *testing.T) {
	p := retention.DecayProfile{
		LastReviewedOn: now.AddDate(0, 0, 3),
		Stability:      20,
	}

	assert.Equal(t, 100.0, p.At(now), "days since clamps at zero")
}

func TestProject_NonIncreasing(t *testing.T) {
	profiles := []retention.DecayProfile{
		{LastReviewedOn: now.AddDate(0, 0, -1), Stability: 25},
		{LastReviewedOn: now.AddDate(0, 0, -20), Stability: 40},
		{LastReviewedOn: now.AddDate(0, 0, -5), Stability: 60},
	}

	curve := retention.Project(profiles, now, 60)

	require.Len(t, curve, 61)
	for i := 1; i < len(curve); i++ {
		assert.LessOrEqual(t, curve[i].RetentionPct, curve[i-1].RetentionPct,
			"retention must not increase between day %d and %d", i-1, i)
	}
	assert.Greater(t, curve[0].RetentionPct, 0.0)
	assert.LessOrEqual(t, curve[0].RetentionPct, 100.0)
}

func TestProject_MeanOfProfiles(t *testing.T) {
	profiles := []retention.DecayProfile{
		{LastReviewedOn: now, Stability: 25},
		{LastReviewedOn: now, Stability: 25},
	}

	curve := retention.Project(profiles, now, 0)

	require.Len(t, curve, 1)
	assert.InDelta(t, 100.0, curve[0].RetentionPct, 1e-9, "freshly reviewed items start at full retention")
}

func TestProject_EmptyInputGivesFlatZero(t *testing.T) {
	curve := retention.Project(nil, now, 7)

	require.Len(t, curve, 8)
	for _, pt := range curve {
		assert.Zero(t, pt.RetentionPct)
	}
}

func TestProject_Dates(t *testing.T) {
	curve := retention.Project(nil, now, 2)

	require.Len(t, curve, 3)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), curve[0].Date)
	assert.Equal(t, time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), curve[2].Date)
}

func TestProfileFromItem(t *testing.T) {
	item := models.Item{ID: "a", EaseFactor: 2.5}

	p, ok := retention.ProfileFromItem(item, 1, now.AddDate(0, 0, -10))
	require.True(t, ok)
	assert.Equal(t, 37.5, p.Stability)
	assert.InDelta(t, 76.59, p.At(now), 0.01)

	_, ok = retention.ProfileFromItem(item, 0, time.Time{})
	assert.False(t, ok, "never-reviewed items have no decay profile")
}
