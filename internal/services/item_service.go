package services

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mfreitas/memflash/internal/errors"
	"github.com/mfreitas/memflash/internal/logger"
	"github.com/mfreitas/memflash/internal/models"
	"github.com/mfreitas/memflash/internal/repository"
	"github.com/mfreitas/memflash/internal/srs"
)

// ItemService handles item-related business logic
type ItemService interface {
	Create(ctx context.Context, front, back string) (*models.Item, error)
	Get(ctx context.Context, id string) (*models.Item, error)
	List(ctx context.Context, filter models.ItemFilter) ([]models.Item, error)
	SetSuspended(ctx context.Context, id string, suspended bool) error
	Delete(ctx context.Context, id string) error
	History(ctx context.Context, id string) ([]models.RatingEvent, error)
}

type itemService struct {
	store repository.ItemStore
}

// NewItemService creates a new ItemService
func NewItemService(store repository.ItemStore) ItemService {
	return &itemService{store: store}
}

func (s *itemService) Create(ctx context.Context, front, back string) (*models.Item, error) {
	log := logger.FromContext(ctx)

	if strings.TrimSpace(front) == "" {
		return nil, errors.NewValidationError("front", "must not be empty")
	}

	item := models.Item{
		ID:             uuid.NewString(),
		Front:          front,
		Back:           back,
		EaseFactor:     models.DefaultEaseFactor,
		IntervalDays:   0,
		NextReviewDate: srs.Date(time.Now()), // new items are due immediately
	}
	if err := s.store.Insert(ctx, item); err != nil {
		log.Error("failed to insert item: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Debug("item created: id=%s", item.ID)
	return &item, nil
}

func (s *itemService) Get(ctx context.Context, id string) (*models.Item, error) {
	item, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if item == nil {
		return nil, errors.NewNotFoundError("item", id)
	}
	return item, nil
}

func (s *itemService) List(ctx context.Context, filter models.ItemFilter) ([]models.Item, error) {
	items, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	return items, nil
}

func (s *itemService) SetSuspended(ctx context.Context, id string, suspended bool) error {
	log := logger.FromContext(ctx)
	log.Debug("setting suspended: id=%s suspended=%v", id, suspended)

	if err := s.store.SetSuspended(ctx, id, suspended); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return errors.NewNotFoundError("item", id)
		}
		return errors.NewInternalError(err)
	}
	return nil
}

func (s *itemService) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)
	log.Debug("deleting item: id=%s", id)

	if err := s.store.Delete(ctx, id); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return errors.NewNotFoundError("item", id)
		}
		return errors.NewInternalError(err)
	}
	return nil
}

func (s *itemService) History(ctx context.Context, id string) ([]models.RatingEvent, error) {
	item, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if item == nil {
		return nil, errors.NewNotFoundError("item", id)
	}
	events, err := s.store.RatingEvents(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	return events, nil
}
