package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/mfreitas/memflash/internal/models"
)

// MockItemStore is a mock implementation of repository.ItemStore
type MockItemStore struct {
	mock.Mock
}

func (m *MockItemStore) Insert(ctx context.Context, item models.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemStore) Get(ctx context.Context, id string) (*models.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockItemStore) List(ctx context.Context, filter models.ItemFilter) ([]models.Item, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Item), args.Error(1)
}

func (m *MockItemStore) FetchDue(ctx context.Context, asOf time.Time) ([]models.Item, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Item), args.Error(1)
}

func (m *MockItemStore) FetchByIDs(ctx context.Context, ids []string) ([]models.Item, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Item), args.Error(1)
}

func (m *MockItemStore) PersistRating(ctx context.Context, itemID string, ev models.RatingEvent, st models.ReviewState) error {
	args := m.Called(ctx, itemID, ev, st)
	return args.Error(0)
}

func (m *MockItemStore) RestoreState(ctx context.Context, itemID string, st models.ReviewState) error {
	args := m.Called(ctx, itemID, st)
	return args.Error(0)
}

func (m *MockItemStore) SetSuspended(ctx context.Context, id string, suspended bool) error {
	args := m.Called(ctx, id, suspended)
	return args.Error(0)
}

func (m *MockItemStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockItemStore) RatingEvents(ctx context.Context, itemID string) ([]models.RatingEvent, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RatingEvent), args.Error(1)
}

func (m *MockItemStore) ReviewStats(ctx context.Context) (map[string]models.ReviewStat, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]models.ReviewStat), args.Error(1)
}
