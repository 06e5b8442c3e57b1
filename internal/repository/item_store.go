package repository

import (
	"context"
	"time"

	"github.com/mfreitas/memflash/internal/models"
)

// ItemStore handles item and review-log data access.
//
// PersistRating and RestoreState must be idempotent per item: item state
// is last-write-wins and the rating log is append-only, so requests that
// complete out of order or are retried remain correct.
type ItemStore interface {
	Insert(ctx context.Context, item models.Item) error
	Get(ctx context.Context, id string) (*models.Item, error)
	List(ctx context.Context, filter models.ItemFilter) ([]models.Item, error)
	FetchDue(ctx context.Context, asOf time.Time) ([]models.Item, error)
	FetchByIDs(ctx context.Context, ids []string) ([]models.Item, error)
	PersistRating(ctx context.Context, itemID string, ev models.RatingEvent, st models.ReviewState) error
	RestoreState(ctx context.Context, itemID string, st models.ReviewState) error
	SetSuspended(ctx context.Context, id string, suspended bool) error
	Delete(ctx context.Context, id string) error
	RatingEvents(ctx context.Context, itemID string) ([]models.RatingEvent, error)
	ReviewStats(ctx context.Context) (map[string]models.ReviewStat, error)
}
