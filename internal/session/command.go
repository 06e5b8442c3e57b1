package session

import (
	"github.com/mfreitas/memflash/internal/models"
	"github.com/mfreitas/memflash/internal/srs"
)

// command is an immutable record of one rating, carrying everything
// needed to revert it and to replay it without re-running the scheduler.
type command struct {
	index      int
	itemID     string
	prevState  models.ReviewState
	newState   models.ReviewState
	event      models.RatingEvent
	rating     srs.Rating
	prevStreak int
	didRequeue bool
}
