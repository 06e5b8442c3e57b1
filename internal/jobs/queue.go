package jobs

import "github.com/mfreitas/memflash/internal/models"

// JobQueue provides an abstraction for enqueueing background persistence jobs
type JobQueue interface {
	EnqueuePersist(itemID string, ev models.RatingEvent, st models.ReviewState) error
	EnqueueRestore(itemID string, st models.ReviewState) error
}
