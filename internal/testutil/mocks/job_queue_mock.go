package mocks

import (
	"github.com/stretchr/testify/mock"
	"github.com/studyflow/studyflow/internal/models"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueReminder(due models.UserDueCount) error {
	args := m.Called(due)
	return args.Error(0)
}

func (m *MockJobQueue) EnqueueTokenPurge() error {
	args := m.Called()
	return args.Error(0)
}
