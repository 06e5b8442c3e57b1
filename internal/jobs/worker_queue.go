package jobs

import (
	"github.com/mfreitas/memflash/internal/models"
	"github.com/mfreitas/memflash/internal/repository"
	"github.com/mfreitas/memflash/internal/worker"
)

// WorkerQueue implements JobQueue using a worker pool
type WorkerQueue struct {
	pool    *worker.Pool
	store   repository.ItemStore
	onError func(error)
}

// NewWorkerQueue creates a new WorkerQueue implementation. onError
// receives persistence failures; it may be nil.
func NewWorkerQueue(pool *worker.Pool, store repository.ItemStore, onError func(error)) JobQueue {
	return &WorkerQueue{
		pool:    pool,
		store:   store,
		onError: onError,
	}
}

func (q *WorkerQueue) EnqueuePersist(itemID string, ev models.RatingEvent, st models.ReviewState) error {
	return q.pool.Submit(&worker.PersistRatingJob{
		Store:   q.store,
		ItemID:  itemID,
		Event:   ev,
		State:   st,
		OnError: q.onError,
	})
}

func (q *WorkerQueue) EnqueueRestore(itemID string, st models.ReviewState) error {
	return q.pool.Submit(&worker.RestoreStateJob{
		Store:   q.store,
		ItemID:  itemID,
		State:   st,
		OnError: q.onError,
	})
}
