package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/mfreitas/memflash/internal/models"
	"github.com/mfreitas/memflash/internal/session"
	"github.com/mfreitas/memflash/internal/srs"
)

// fakePersister records the engine's fire-and-forget persistence calls.
type fakePersister struct {
	persisted []string
	restored  []string
}

func (f *fakePersister) PersistRating(itemID string, ev models.RatingEvent, st models.ReviewState) {
	f.persisted = append(f.persisted, itemID)
}

func (f *fakePersister) RestoreState(itemID string, st models.ReviewState) {
	f.restored = append(f.restored, itemID)
}

func entry(id string, interval int) models.QueueEntry {
	return models.QueueEntry{
		Item: models.Item{
			ID:             id,
			EaseFactor:     2.5,
			IntervalDays:   interval,
			NextReviewDate: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		},
	}
}

func newEngine(t *testing.T, entries ...models.QueueEntry) (*session.Engine, *fakePersister) {
	t.Helper()
	p := &fakePersister{}
	clock := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	e := session.New(p, session.WithClock(func() time.Time { return clock }))
	if len(entries) > 0 {
		require.NoError(t, e.Start(entries))
	}
	return e, p
}

func rateCurrent(t *testing.T, e *session.Engine, r srs.Rating) {
	t.Helper()
	require.NoError(t, e.Flip())
	require.NoError(t, e.Rate(r))
}

func TestStart_EmptyQueueRejected(t *testing.T) {
	e, _ := newEngine(t)

	err := e.Start(nil)

	assert.Error(t, err)
	assert.False(t, e.Active())
}

func TestRate_BeforeFlipRejected(t *testing.T) {
	e, p := newEngine(t, entry("a", 2))

	err := e.Rate(srs.Good)

	assert.Error(t, err)
	assert.Empty(t, e.RatingCounts(), "rating counts must be untouched")
	assert.Empty(t, p.persisted, "nothing may be persisted")
	index, _ := e.Progress()
	assert.Equal(t, 0, index, "cursor must not advance")
}

func TestRate_InvalidRatingRejected(t *testing.T) {
	e, _ := newEngine(t, entry("a", 2))
	require.NoError(t, e.Flip())

	err := e.Rate(srs.Rating(9))

	assert.Error(t, err)
	assert.Empty(t, e.RatingCounts())
	assert.True(t, e.Flipped(), "card stays flipped after a rejected rating")
}

func TestFlip_Toggles(t *testing.T) {
	e, _ := newEngine(t, entry("a", 2))

	require.NoError(t, e.Flip())
	assert.True(t, e.Flipped())
	require.NoError(t, e.Flip())
	assert.False(t, e.Flipped())
}

func TestRate_AdvancesAndPersists(t *testing.T) {
	e, p := newEngine(t, entry("a", 6), entry("b", 2))

	rateCurrent(t, e, srs.Good)

	index, total := e.Progress()
	assert.Equal(t, 1, index)
	assert.Equal(t, 2, total)
	assert.False(t, e.Flipped(), "next card starts on its front")
	assert.Equal(t, map[srs.Rating]int{srs.Good: 1}, e.RatingCounts())
	assert.Equal(t, 1, e.Streak())
	assert.Equal(t, []string{"a"}, p.persisted)

	queue := e.Queue()
	assert.Equal(t, 15, queue[0].Item.IntervalDays, "scheduler output is written back to the queue entry")
}

func TestRate_AgainRequeuesOnce(t *testing.T) {
	e, _ := newEngine(t, entry("a", 3), entry("b", 2), entry("c", 1))

	rateCurrent(t, e, srs.Again)

	queue := e.Queue()
	require.Len(t, queue, 4, "exactly one synthetic duplicate is appended")
	last := queue[3]
	assert.Equal(t, "a", last.Item.ID)
	assert.True(t, last.Requeued)
	assert.Equal(t, 0, last.Item.IntervalDays, "duplicate carries the reset state")

	index, _ := e.Progress()
	assert.Equal(t, 1, index, "cursor points at b")
	current, ok := e.Current()
	require.True(t, ok)
	assert.Equal(t, "b", current.Item.ID)
	assert.Equal(t, 0, e.Streak(), "again resets the streak")
}

func TestStreak_Accounting(t *testing.T) {
	e, _ := newEngine(t, entry("a", 1), entry("b", 1), entry("c", 1), entry("d", 1))

	rateCurrent(t, e, srs.Good)
	rateCurrent(t, e, srs.Easy)
	assert.Equal(t, 2, e.Streak())

	rateCurrent(t, e, srs.Hard)
	assert.Equal(t, 0, e.Streak(), "hard breaks the streak")

	rateCurrent(t, e, srs.Good)
	assert.Equal(t, 1, e.Streak())
}

func TestUndo_RevertsEverything(t *testing.T) {
	e, p := newEngine(t, entry("a", 3), entry("b", 2))

	rateCurrent(t, e, srs.Good)
	before := snapshot(e)

	rateCurrent(t, e, srs.Again)
	require.NoError(t, e.Undo())

	assert.Equal(t, before, snapshot(e), "undo must restore the exact pre-rating state")
	assert.Equal(t, []string{"b"}, p.restored, "a corrective restore is dispatched")
	assert.False(t, e.Flipped())
}

func TestUndo_RemovesRequeuedDuplicate(t *testing.T) {
	e, _ := newEngine(t, entry("a", 3), entry("b", 2))

	rateCurrent(t, e, srs.Again)
	require.Len(t, e.Queue(), 3)

	require.NoError(t, e.Undo())

	queue := e.Queue()
	require.Len(t, queue, 2, "the synthetic duplicate is gone")
	for _, en := range queue {
		assert.False(t, en.Requeued)
	}
	assert.Equal(t, 3, queue[0].Item.IntervalDays, "item state is restored")
}

func TestUndo_EmptyStackIsNoop(t *testing.T) {
	e, p := newEngine(t, entry("a", 1))

	require.NoError(t, e.Undo())

	assert.Empty(t, p.restored)
	index, _ := e.Progress()
	assert.Equal(t, 0, index)
}

func TestRedo_RestoresPreUndoState(t *testing.T) {
	e, p := newEngine(t, entry("a", 3), entry("b", 2), entry("c", 1))

	rateCurrent(t, e, srs.Again)
	rateCurrent(t, e, srs.Good)
	after := snapshot(e)

	require.NoError(t, e.Undo())
	require.NoError(t, e.Undo())
	require.NoError(t, e.Redo())
	require.NoError(t, e.Redo())

	assert.Equal(t, after, snapshot(e), "undo/undo/redo/redo must round-trip exactly")
	// Two ratings, each persisted twice (original + replay).
	assert.Equal(t, []string{"a", "b", "a", "b"}, p.persisted)
}

func TestRedo_ClearedByNewRating(t *testing.T) {
	e, _ := newEngine(t, entry("a", 3), entry("b", 2))

	rateCurrent(t, e, srs.Good)
	require.NoError(t, e.Undo())
	rateCurrent(t, e, srs.Hard)

	require.NoError(t, e.Redo())
	assert.Equal(t, map[srs.Rating]int{srs.Hard: 1}, e.RatingCounts(), "redo after a fresh rating is a no-op")
}

func TestComplete_RejectsFlipAndRate(t *testing.T) {
	e, _ := newEngine(t, entry("a", 2))

	rateCurrent(t, e, srs.Good)
	assert.True(t, e.Completed())

	assert.Error(t, e.Flip())
	assert.Error(t, e.Rate(srs.Good))
}

func TestRemove_CurrentItem(t *testing.T) {
	e, _ := newEngine(t, entry("a", 3), entry("b", 2), entry("c", 1))

	require.NoError(t, e.Remove("a"))

	index, total := e.Progress()
	assert.Equal(t, 0, index)
	assert.Equal(t, 2, total)
	current, ok := e.Current()
	require.True(t, ok)
	assert.Equal(t, "b", current.Item.ID)
}

func TestRemove_BeforeCursorClampsIndex(t *testing.T) {
	e, _ := newEngine(t, entry("a", 3), entry("b", 2), entry("c", 1))

	rateCurrent(t, e, srs.Good)
	require.NoError(t, e.Remove("a"))

	index, total := e.Progress()
	assert.Equal(t, 0, index, "cursor shifts back with the removed predecessor")
	assert.Equal(t, 2, total)
	current, ok := e.Current()
	require.True(t, ok)
	assert.Equal(t, "b", current.Item.ID, "still pointing at the same card")
}

func TestRemove_AlsoDropsRequeuedDuplicate(t *testing.T) {
	e, _ := newEngine(t, entry("a", 3), entry("b", 2))

	rateCurrent(t, e, srs.Again)
	require.NoError(t, e.Remove("a"))

	queue := e.Queue()
	require.Len(t, queue, 1)
	assert.Equal(t, "b", queue[0].Item.ID)
}

func TestRemove_LastItemCompletesSession(t *testing.T) {
	e, _ := newEngine(t, entry("a", 3))

	require.NoError(t, e.Remove("a"))

	assert.True(t, e.Completed())
}

func TestRemove_UnknownItem(t *testing.T) {
	e, _ := newEngine(t, entry("a", 3))

	assert.Error(t, e.Remove("zzz"))
}

func TestEnd_Summary(t *testing.T) {
	p := &fakePersister{}
	clock := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	e := session.New(p, session.WithClock(func() time.Time { return clock }))
	require.NoError(t, e.Start([]models.QueueEntry{entry("a", 3), entry("b", 2), entry("c", 1)}))

	rateCurrent(t, e, srs.Again) // a, requeued
	rateCurrent(t, e, srs.Good)  // b
	rateCurrent(t, e, srs.Easy)  // c
	rateCurrent(t, e, srs.Good)  // a again (requeued entry)

	clock = clock.Add(4 * time.Minute)
	summary, err := e.End()
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Rated)
	assert.Equal(t, map[int]int{1: 1, 3: 2, 4: 1}, summary.RatingCounts)
	// 3 Good/Easy ratings over 3 unique original entries.
	assert.Equal(t, 100, summary.RetentionPct)
	assert.Equal(t, 3, summary.BestStreak)
	assert.Equal(t, 4*time.Minute, summary.Elapsed)
	assert.False(t, e.Active())
}

func TestEnd_RetentionDenominatorExcludesRequeues(t *testing.T) {
	e, _ := newEngine(t, entry("a", 3), entry("b", 2))

	rateCurrent(t, e, srs.Again) // a fails
	rateCurrent(t, e, srs.Good)  // b
	rateCurrent(t, e, srs.Good)  // a's requeued duplicate

	summary, err := e.End()
	require.NoError(t, err)

	// 2 Good ratings over 2 original entries; the requeued duplicate
	// does not inflate the denominator.
	assert.Equal(t, 100, summary.RetentionPct)
}

func TestEnd_NothingRated(t *testing.T) {
	e, _ := newEngine(t, entry("a", 3))

	summary, err := e.End()
	require.NoError(t, err)

	assert.Equal(t, 0, summary.RetentionPct)
	assert.Equal(t, 0, summary.Rated)
}

func TestEnd_TwiceRejected(t *testing.T) {
	e, _ := newEngine(t, entry("a", 3))

	_, err := e.End()
	require.NoError(t, err)
	_, err = e.End()
	assert.Error(t, err)
}

// engineState captures everything undo/redo must round-trip.
type engineState struct {
	index   int
	total   int
	counts  map[srs.Rating]int
	streak  int
	queue   []models.QueueEntry
	flipped bool
}

func snapshot(e *session.Engine) engineState {
	index, total := e.Progress()
	return engineState{
		index:   index,
		total:   total,
		counts:  e.RatingCounts(),
		streak:  e.Streak(),
		queue:   e.Queue(),
		flipped: e.Flipped(),
	}
}
