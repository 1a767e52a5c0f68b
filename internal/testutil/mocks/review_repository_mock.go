package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/studyflow/studyflow/internal/models"
)

// MockReviewRepository is a mock implementation of repository.ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, item models.ReviewItem) (int64, error) {
	args := m.Called(ctx, item)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReviewRepository) Get(ctx context.Context, id, userID int64) (*models.ReviewItem, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReviewItem), args.Error(1)
}

func (m *MockReviewRepository) List(ctx context.Context, filter models.ReviewFilter) ([]models.ReviewItem, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReviewItem), args.Error(1)
}

func (m *MockReviewRepository) Update(ctx context.Context, item models.ReviewItem) (bool, error) {
	args := m.Called(ctx, item)
	return args.Bool(0), args.Error(1)
}

func (m *MockReviewRepository) RecordReview(ctx context.Context, item models.ReviewItem, history models.ReviewHistory) (bool, error) {
	args := m.Called(ctx, item, history)
	return args.Bool(0), args.Error(1)
}

func (m *MockReviewRepository) Delete(ctx context.Context, id, userID int64) (bool, error) {
	args := m.Called(ctx, id, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReviewRepository) History(ctx context.Context, reviewID int64) ([]models.ReviewHistory, error) {
	args := m.Called(ctx, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReviewHistory), args.Error(1)
}
