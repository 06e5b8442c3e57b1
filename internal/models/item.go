package models

import "time"

// ReviewState is the scheduling portion of an Item, the part the
// spaced-repetition algorithm reads and writes.
type ReviewState struct {
	EaseFactor     float64   `json:"ease_factor"`
	IntervalDays   int       `json:"interval_days"`
	NextReviewDate time.Time `json:"next_review_date"`
}

type Item struct {
	ID             string    `json:"id"`
	Front          string    `json:"front"`
	Back           string    `json:"back"`
	EaseFactor     float64   `json:"ease_factor"`
	IntervalDays   int       `json:"interval_days"`
	NextReviewDate time.Time `json:"next_review_date"`
	Suspended      bool      `json:"suspended"`
	CreatedAt      time.Time `json:"created_at"`
}

// DefaultEaseFactor is the scheduling multiplier assigned to brand-new items.
const DefaultEaseFactor = 2.5

// State extracts the scheduling fields of the item.
func (i Item) State() ReviewState {
	return ReviewState{
		EaseFactor:     i.EaseFactor,
		IntervalDays:   i.IntervalDays,
		NextReviewDate: i.NextReviewDate,
	}
}

// ApplyState copies a scheduling state back onto the item.
func (i *Item) ApplyState(st ReviewState) {
	i.EaseFactor = st.EaseFactor
	i.IntervalDays = st.IntervalDays
	i.NextReviewDate = st.NextReviewDate
}

// IsNew reports whether the item has never been successfully reviewed
// (or was just reset by an Again rating).
func (i Item) IsNew() bool {
	return i.IntervalDays == 0
}

// RatingEvent is an append-only log record of a single review outcome.
type RatingEvent struct {
	ID                 int64     `json:"id"`
	ItemID             string    `json:"item_id"`
	Rating             int       `json:"rating"`
	ResultingEase      float64   `json:"resulting_ease_factor"`
	ResultingInterval  int       `json:"resulting_interval_days"`
	ResultingReviewDue time.Time `json:"resulting_next_review_date"`
	Timestamp          time.Time `json:"timestamp"`
}

// QueueEntry is a reference to an Item placed in a session queue.
// Requeued marks synthetic duplicates appended after an Again rating.
type QueueEntry struct {
	Item     Item `json:"item"`
	Requeued bool `json:"requeued"`
}

// ItemFilter narrows List queries.
type ItemFilter struct {
	Suspended *bool
	DueBefore *time.Time
	Limit     int
}
