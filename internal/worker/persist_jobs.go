package worker

import (
	"context"
	"fmt"

	"github.com/mfreitas/memflash/internal/models"
	"github.com/mfreitas/memflash/internal/repository"
)

// PersistRatingJob writes one rating outcome to the store: the appended
// rating event and the item's new scheduling state.
type PersistRatingJob struct {
	Store   repository.ItemStore
	ItemID  string
	Event   models.RatingEvent
	State   models.ReviewState
	OnError func(error)
}

func (j *PersistRatingJob) Name() string {
	return fmt.Sprintf("persist-rating:%s", j.ItemID)
}

func (j *PersistRatingJob) Run(ctx context.Context) error {
	if err := j.Store.PersistRating(ctx, j.ItemID, j.Event, j.State); err != nil {
		if j.OnError != nil {
			j.OnError(err)
		}
		return err
	}
	return nil
}

// RestoreStateJob writes an item's prior scheduling state back to the
// store after an undo.
type RestoreStateJob struct {
	Store   repository.ItemStore
	ItemID  string
	State   models.ReviewState
	OnError func(error)
}

func (j *RestoreStateJob) Name() string {
	return fmt.Sprintf("restore-state:%s", j.ItemID)
}

func (j *RestoreStateJob) Run(ctx context.Context) error {
	if err := j.Store.RestoreState(ctx, j.ItemID, j.State); err != nil {
		if j.OnError != nil {
			j.OnError(err)
		}
		return err
	}
	return nil
}
