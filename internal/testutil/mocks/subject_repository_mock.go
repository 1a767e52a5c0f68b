package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/studyflow/studyflow/internal/models"
)

// MockSubjectRepository is a mock implementation of repository.SubjectRepository
type MockSubjectRepository struct {
	mock.Mock
}

func (m *MockSubjectRepository) Create(ctx context.Context, subject models.Subject) (int64, error) {
	args := m.Called(ctx, subject)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSubjectRepository) Get(ctx context.Context, id, userID int64) (*models.Subject, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subject), args.Error(1)
}

func (m *MockSubjectRepository) GetByName(ctx context.Context, userID int64, name string) (*models.Subject, error) {
	args := m.Called(ctx, userID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subject), args.Error(1)
}

func (m *MockSubjectRepository) List(ctx context.Context, userID int64) ([]models.Subject, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Subject), args.Error(1)
}

func (m *MockSubjectRepository) Update(ctx context.Context, subject models.Subject) error {
	args := m.Called(ctx, subject)
	return args.Error(0)
}

func (m *MockSubjectRepository) Delete(ctx context.Context, id, userID int64) (bool, error) {
	args := m.Called(ctx, id, userID)
	return args.Bool(0), args.Error(1)
}
