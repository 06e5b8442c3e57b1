package mocks

import (
	"github.com/stretchr/testify/mock"
	"github.com/mfreitas/memflash/internal/models"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueuePersist(itemID string, ev models.RatingEvent, st models.ReviewState) error {
	args := m.Called(itemID, ev, st)
	return args.Error(0)
}

func (m *MockJobQueue) EnqueueRestore(itemID string, st models.ReviewState) error {
	args := m.Called(itemID, st)
	return args.Error(0)
}
