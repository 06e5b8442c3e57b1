// Package session implements the review-session state machine: an
// ordered queue of items walked front-to-back, with flip/rate
// transitions, fail-requeue, command-based undo/redo and summary stats.
package session

import (
	"math"
	"time"

	"github.com/mfreitas/memflash/internal/errors"
	"github.com/mfreitas/memflash/internal/logger"
	"github.com/mfreitas/memflash/internal/models"
	"github.com/mfreitas/memflash/internal/srs"
)

// Persister receives the engine's outbound persistence requests. Calls
// must not block: the engine treats them as fire-and-forget and never
// waits for or reacts to their outcome. Failures are the implementation's
// responsibility to report (error sink, log).
type Persister interface {
	PersistRating(itemID string, ev models.RatingEvent, st models.ReviewState)
	RestoreState(itemID string, st models.ReviewState)
}

// Engine drives a single review session. It is single-writer by design:
// one goroutine owns an Engine at a time and no internal locking is
// performed. Concurrent access must be serialized by the caller (see
// Manager.With).
type Engine struct {
	queue      []models.QueueEntry
	index      int
	flipped    bool
	counts     map[srs.Rating]int
	streak     int
	bestStreak int
	undoStack  []command
	redoStack  []command
	startedAt  time.Time
	active     bool

	persist Persister
	now     func() time.Time
	log     *logger.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine's time source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithLogger sets the engine's logger.
func WithLogger(log *logger.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// New creates an Engine that reports ratings to the given persister.
func New(persist Persister, opts ...Option) *Engine {
	e := &Engine{
		persist: persist,
		now:     time.Now,
		log:     logger.Default().WithPrefix("session"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start begins a session over the given queue. The queue must be
// non-empty; callers are expected to present an "empty" state themselves
// rather than start a session with nothing to review.
func (e *Engine) Start(queue []models.QueueEntry) error {
	if len(queue) == 0 {
		return errors.NewInvalidOperationError("start", "queue is empty")
	}
	e.queue = append([]models.QueueEntry(nil), queue...)
	e.index = 0
	e.flipped = false
	e.counts = make(map[srs.Rating]int)
	e.streak = 0
	e.bestStreak = 0
	e.undoStack = nil
	e.redoStack = nil
	e.startedAt = e.now()
	e.active = true
	e.log.Debug("session started: %d entries", len(e.queue))
	return nil
}

// Active reports whether Start has been called and End has not.
func (e *Engine) Active() bool {
	return e.active
}

// Completed reports whether the cursor has passed the last queue entry.
func (e *Engine) Completed() bool {
	return e.active && e.index >= len(e.queue)
}

// Current returns the entry under the cursor.
func (e *Engine) Current() (models.QueueEntry, bool) {
	if !e.active || e.index >= len(e.queue) {
		return models.QueueEntry{}, false
	}
	return e.queue[e.index], true
}

// Flipped reports whether the current entry's back is showing.
func (e *Engine) Flipped() bool {
	return e.flipped
}

// Streak returns the current run of consecutive Good/Easy ratings.
func (e *Engine) Streak() int {
	return e.streak
}

// Progress returns the cursor position and total queue length.
func (e *Engine) Progress() (int, int) {
	return e.index, len(e.queue)
}

// RatingCounts returns a copy of the per-rating tallies.
func (e *Engine) RatingCounts() map[srs.Rating]int {
	out := make(map[srs.Rating]int, len(e.counts))
	for r, n := range e.counts {
		out[r] = n
	}
	return out
}

// Queue returns a copy of the session queue.
func (e *Engine) Queue() []models.QueueEntry {
	return append([]models.QueueEntry(nil), e.queue...)
}

// Flip toggles between the front and back of the current entry. It may
// be called repeatedly before rating.
func (e *Engine) Flip() error {
	if !e.active {
		return errors.NewInvalidOperationError("flip", "no active session")
	}
	if e.Completed() {
		return errors.NewInvalidOperationError("flip", "session is complete")
	}
	e.flipped = !e.flipped
	return nil
}

// Rate scores the current entry and advances the cursor. Valid only
// while the back is showing; calls in any other state are rejected and
// leave the session untouched. An Again rating appends exactly one
// requeued duplicate of the item to the end of the queue.
func (e *Engine) Rate(r srs.Rating) error {
	if !e.active {
		return errors.NewInvalidOperationError("rate", "no active session")
	}
	if e.Completed() {
		return errors.NewInvalidOperationError("rate", "session is complete")
	}
	if !e.flipped {
		return errors.NewInvalidOperationError("rate", "card has not been flipped")
	}
	if !r.IsValid() {
		return errors.NewInvalidOperationError("rate", srs.ErrInvalidRating.Error())
	}

	now := e.now()
	entry := &e.queue[e.index]
	prevState := entry.Item.State()

	newState, err := srs.ApplyRating(prevState, r, now)
	if err != nil {
		return errors.NewInvalidOperationError("rate", err.Error())
	}

	ev := models.RatingEvent{
		ItemID:             entry.Item.ID,
		Rating:             int(r),
		ResultingEase:      newState.EaseFactor,
		ResultingInterval:  newState.IntervalDays,
		ResultingReviewDue: newState.NextReviewDate,
		Timestamp:          now,
	}

	cmd := command{
		index:      e.index,
		itemID:     entry.Item.ID,
		prevState:  prevState,
		newState:   newState,
		event:      ev,
		rating:     r,
		prevStreak: e.streak,
		didRequeue: r == srs.Again,
	}

	e.applyForward(cmd)
	e.undoStack = append(e.undoStack, cmd)
	e.redoStack = nil

	e.log.Debug("rated %s: item=%s interval=%d ease=%.4f streak=%d",
		r, entry.Item.ID, newState.IntervalDays, newState.EaseFactor, e.streak)
	return nil
}

// applyForward performs the forward effect of a rating command. Rate
// and Redo share it so redo replays exactly what rate did.
func (e *Engine) applyForward(cmd command) {
	entry := &e.queue[cmd.index]
	entry.Item.ApplyState(cmd.newState)

	e.persist.PersistRating(cmd.itemID, cmd.event, cmd.newState)

	e.counts[cmd.rating]++
	if cmd.rating.Correct() {
		e.streak = cmd.prevStreak + 1
		if e.streak > e.bestStreak {
			e.bestStreak = e.streak
		}
	} else {
		e.streak = 0
	}

	if cmd.didRequeue {
		dup := models.QueueEntry{Item: entry.Item, Requeued: true}
		e.queue = append(e.queue, dup)
	}

	e.index = cmd.index + 1
	e.flipped = false
}

// Undo reverts the most recent rating: tallies, streak, cursor, the
// item's in-queue state and any requeued duplicate. A corrective
// restore of the previously persisted state is dispatched
// fire-and-forget. No-op when there is nothing to undo.
func (e *Engine) Undo() error {
	if !e.active {
		return errors.NewInvalidOperationError("undo", "no active session")
	}
	if len(e.undoStack) == 0 {
		return nil
	}
	cmd := e.undoStack[len(e.undoStack)-1]
	e.undoStack = e.undoStack[:len(e.undoStack)-1]
	e.redoStack = append(e.redoStack, cmd)

	e.counts[cmd.rating]--
	if e.counts[cmd.rating] == 0 {
		delete(e.counts, cmd.rating)
	}
	e.streak = cmd.prevStreak
	e.index = cmd.index
	e.flipped = false

	if cmd.didRequeue {
		// Again appends at most one duplicate per rating, so the first
		// match scanning from the end is the one this command created.
		for i := len(e.queue) - 1; i > cmd.index; i-- {
			if e.queue[i].Requeued && e.queue[i].Item.ID == cmd.itemID {
				e.queue = append(e.queue[:i], e.queue[i+1:]...)
				break
			}
		}
	}

	e.queue[cmd.index].Item.ApplyState(cmd.prevState)
	e.persist.RestoreState(cmd.itemID, cmd.prevState)

	e.log.Debug("undo: item=%s rating=%s index=%d", cmd.itemID, cmd.rating, cmd.index)
	return nil
}

// Redo replays the most recently undone rating, re-deriving the forward
// effect from the captured command. No-op when there is nothing to redo.
func (e *Engine) Redo() error {
	if !e.active {
		return errors.NewInvalidOperationError("redo", "no active session")
	}
	if len(e.redoStack) == 0 {
		return nil
	}
	cmd := e.redoStack[len(e.redoStack)-1]
	e.redoStack = e.redoStack[:len(e.redoStack)-1]
	e.undoStack = append(e.undoStack, cmd)

	e.applyForward(cmd)

	e.log.Debug("redo: item=%s rating=%s index=%d", cmd.itemID, cmd.rating, cmd.index)
	return nil
}

// Remove splices every queue entry for the given item out of the
// session, clamping the cursor so it stays in bounds. Undo/redo history
// is discarded: commands may reference positions that no longer exist.
// An emptied queue completes the session.
func (e *Engine) Remove(itemID string) error {
	if !e.active {
		return errors.NewInvalidOperationError("remove", "no active session")
	}
	kept := e.queue[:0]
	removedBefore := 0
	removedCurrent := false
	for i := range e.queue {
		if e.queue[i].Item.ID == itemID {
			if i < e.index {
				removedBefore++
			} else if i == e.index {
				removedCurrent = true
			}
			continue
		}
		kept = append(kept, e.queue[i])
	}
	if len(kept) == len(e.queue) {
		return errors.NewNotFoundError("queue entry", itemID)
	}
	e.queue = kept
	e.index -= removedBefore
	if e.index > len(e.queue) {
		e.index = len(e.queue)
	}
	if removedCurrent {
		e.flipped = false
	}
	e.undoStack = nil
	e.redoStack = nil
	e.log.Debug("removed item %s from queue: %d entries remain", itemID, len(e.queue))
	return nil
}

// End closes the session and reports its summary. Retention is the
// share of Good/Easy ratings over distinct original (non-requeued)
// entries that reached a rating.
func (e *Engine) End() (models.SessionSummary, error) {
	if !e.active {
		return models.SessionSummary{}, errors.NewInvalidOperationError("end", "no active session")
	}
	now := e.now()

	uniqueRated := 0
	for i := 0; i < e.index && i < len(e.queue); i++ {
		if !e.queue[i].Requeued {
			uniqueRated++
		}
	}
	retention := 0
	if uniqueRated > 0 {
		correct := e.counts[srs.Good] + e.counts[srs.Easy]
		retention = int(math.Round(100 * float64(correct) / float64(uniqueRated)))
	}

	counts := make(map[int]int, len(e.counts))
	rated := 0
	for r, n := range e.counts {
		counts[int(r)] = n
		rated += n
	}

	summary := models.SessionSummary{
		RatingCounts: counts,
		Rated:        rated,
		RetentionPct: retention,
		BestStreak:   e.bestStreak,
		Elapsed:      now.Sub(e.startedAt),
		StartedAt:    e.startedAt,
		EndedAt:      now,
	}

	e.active = false
	e.log.Info("session ended: rated=%d retention=%d%% elapsed=%v", rated, retention, summary.Elapsed)
	return summary, nil
}
