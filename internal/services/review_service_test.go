package services_test

import (
	"bytes"
	"context"
	stderrors "errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apperrors "github.com/studyflow/studyflow/internal/errors"
	"github.com/studyflow/studyflow/internal/models"
	"github.com/studyflow/studyflow/internal/services"
	"github.com/studyflow/studyflow/internal/testutil/mocks"
	"github.com/xuri/excelize/v2"
)

var reviewNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newReviewService() (services.ReviewService, *mocks.MockReviewRepository, *mocks.MockSubjectRepository) {
	reviews := new(mocks.MockReviewRepository)
	subjects := new(mocks.MockSubjectRepository)
	return services.NewReviewService(reviews, subjects, time.UTC), reviews, subjects
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, status, apperrors.As(err).Status)
}

func TestCreateReview(t *testing.T) {
	svc, reviews, subjects := newReviewService()
	ctx := context.Background()

	subjects.On("Get", mock.Anything, int64(3), int64(1)).Return(&models.Subject{ID: 3, UserID: 1}, nil)
	reviews.On("Create", mock.Anything, mock.MatchedBy(func(r models.ReviewItem) bool {
		return r.Topic == "Limits" && r.IntervalDays == 1 && r.EaseFactor == 2.5 && r.RepetitionCount == 0 &&
			r.NextDueAt.Equal(reviewNow.AddDate(0, 0, 1)) && r.LastReviewedAt.Equal(reviewNow)
	})).Return(int64(10), nil)

	item, err := svc.CreateReview(ctx, 1, 3, "  Limits ", reviewNow)
	require.NoError(t, err)
	assert.Equal(t, int64(10), item.ID)
	assert.Equal(t, 1, item.Version)
	reviews.AssertExpectations(t)
}

func TestCreateReview_Validation(t *testing.T) {
	svc, _, subjects := newReviewService()
	ctx := context.Background()

	_, err := svc.CreateReview(ctx, 1, 3, "   ", reviewNow)
	requireStatus(t, err, http.StatusBadRequest)

	subjects.On("Get", mock.Anything, int64(9), int64(1)).Return(nil, nil)
	_, err = svc.CreateReview(ctx, 1, 9, "Topic", reviewNow)
	requireStatus(t, err, http.StatusNotFound)
}

func TestCompleteReview(t *testing.T) {
	svc, reviews, _ := newReviewService()
	ctx := context.Background()

	stored := &models.ReviewItem{ID: 5, UserID: 1, SubjectID: 3, IntervalDays: 6, EaseFactor: 2.6, RepetitionCount: 2, Version: 4}
	reviews.On("Get", mock.Anything, int64(5), int64(1)).Return(stored, nil)
	reviews.On("RecordReview", mock.Anything,
		mock.MatchedBy(func(r models.ReviewItem) bool {
			return r.IntervalDays == 16 && r.EaseFactor == 2.7 && r.RepetitionCount == 3 && r.Version == 4 &&
				r.NextDueAt.Equal(reviewNow.AddDate(0, 0, 16))
		}),
		models.ReviewHistory{
			ReviewID: 5, Quality: 5,
			PrevIntervalDays: 6, NewIntervalDays: 16,
			PrevEaseFactor: 2.6, NewEaseFactor: 2.7,
			ReviewedAt: reviewNow,
		},
	).Return(true, nil)

	item, err := svc.CompleteReview(ctx, 1, 5, 5, reviewNow)
	require.NoError(t, err)
	assert.Equal(t, 16, item.IntervalDays)
	assert.Equal(t, 5, item.Version)
	reviews.AssertExpectations(t)
}

func TestCompleteReview_FailureResets(t *testing.T) {
	svc, reviews, _ := newReviewService()

	reviews.On("Get", mock.Anything, int64(5), int64(1)).
		Return(&models.ReviewItem{ID: 5, UserID: 1, IntervalDays: 15, EaseFactor: 2.5, RepetitionCount: 3, Version: 1}, nil)
	reviews.On("RecordReview", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)

	item, err := svc.CompleteReview(context.Background(), 1, 5, 2, reviewNow)
	require.NoError(t, err)
	assert.Equal(t, 1, item.IntervalDays)
	assert.Equal(t, 0, item.RepetitionCount)
	assert.Equal(t, 2.18, item.EaseFactor)
}

func TestCompleteReview_InvalidQuality(t *testing.T) {
	svc, reviews, _ := newReviewService()

	for _, q := range []int{0, 6, -1} {
		_, err := svc.CompleteReview(context.Background(), 1, 5, q, reviewNow)
		requireStatus(t, err, http.StatusBadRequest)
	}
	reviews.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestCompleteReview_Conflict(t *testing.T) {
	svc, reviews, _ := newReviewService()

	reviews.On("Get", mock.Anything, int64(5), int64(1)).Return(&models.ReviewItem{ID: 5, UserID: 1, IntervalDays: 1, EaseFactor: 2.5, Version: 2}, nil)
	reviews.On("RecordReview", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)

	_, err := svc.CompleteReview(context.Background(), 1, 5, 4, reviewNow)
	requireStatus(t, err, http.StatusConflict)
}

func TestCompleteReview_NotFoundAndStorageErrors(t *testing.T) {
	svc, reviews, _ := newReviewService()

	reviews.On("Get", mock.Anything, int64(404), int64(1)).Return(nil, nil)
	_, err := svc.CompleteReview(context.Background(), 1, 404, 4, reviewNow)
	requireStatus(t, err, http.StatusNotFound)

	reviews.On("Get", mock.Anything, int64(500), int64(1)).Return(nil, stderrors.New("disk I/O error"))
	_, err = svc.CompleteReview(context.Background(), 1, 500, 4, reviewNow)
	requireStatus(t, err, http.StatusInternalServerError)
}

func TestUpdateReview_CoercesTextFields(t *testing.T) {
	svc, reviews, _ := newReviewService()
	last := reviewNow.AddDate(0, 0, -2)

	reviews.On("Get", mock.Anything, int64(5), int64(1)).
		Return(&models.ReviewItem{ID: 5, UserID: 1, Topic: "Old", LastReviewedAt: last, NextDueAt: last.AddDate(0, 0, 1), IntervalDays: 1, EaseFactor: 2.5, Version: 3}, nil)
	reviews.On("Update", mock.Anything, mock.MatchedBy(func(r models.ReviewItem) bool {
		return r.Topic == "New" && r.IntervalDays == 6 && r.EaseFactor == 1.3 && r.RepetitionCount == 2 &&
			r.NextDueAt.Equal(last.AddDate(0, 0, 6))
	})).Return(true, nil)

	topic := "New"
	item, err := svc.UpdateReview(context.Background(), 1, 5, services.ReviewPatch{
		Topic:           &topic,
		IntervalDays:    "6",
		EaseFactor:      "0.9",
		RepetitionCount: 2.0,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, item.Version)
	reviews.AssertExpectations(t)
}

func TestUpdateReview_VersionMismatch(t *testing.T) {
	svc, reviews, _ := newReviewService()

	reviews.On("Get", mock.Anything, int64(5), int64(1)).Return(&models.ReviewItem{ID: 5, UserID: 1, Version: 3}, nil)

	stale := 2
	_, err := svc.UpdateReview(context.Background(), 1, 5, services.ReviewPatch{Version: &stale})
	requireStatus(t, err, http.StatusConflict)
	reviews.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateReview_RejectsNonNumericSchedule(t *testing.T) {
	svc, reviews, _ := newReviewService()

	reviews.On("Get", mock.Anything, int64(5), int64(1)).
		Return(&models.ReviewItem{ID: 5, UserID: 1, IntervalDays: 6, EaseFactor: 2.5, Version: 3}, nil)

	for _, patch := range []services.ReviewPatch{
		{IntervalDays: "abc"},
		{EaseFactor: true},
		{RepetitionCount: "NaN"},
	} {
		_, err := svc.UpdateReview(context.Background(), 1, 5, patch)
		requireStatus(t, err, http.StatusBadRequest)
	}
	reviews.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

// Spring-forward night in New York: 23:30 local on March 7 is 04:30 UTC on March 8.
func newYorkReviewService(t *testing.T) (services.ReviewService, *mocks.MockReviewRepository, *time.Location) {
	t.Helper()
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	reviews := new(mocks.MockReviewRepository)
	return services.NewReviewService(reviews, new(mocks.MockSubjectRepository), ny), reviews, ny
}

func TestCompleteReview_DueDateFollowsLocalCalendar(t *testing.T) {
	svc, reviews, ny := newYorkReviewService(t)
	now := time.Date(2026, time.March, 7, 23, 30, 0, 0, ny).UTC()

	reviews.On("Get", mock.Anything, int64(5), int64(1)).
		Return(&models.ReviewItem{ID: 5, UserID: 1, IntervalDays: 1, EaseFactor: 2.5, Version: 1}, nil)
	reviews.On("RecordReview", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)

	item, err := svc.CompleteReview(context.Background(), 1, 5, 5, now)
	require.NoError(t, err)

	due := item.NextDueAt.In(ny)
	assert.Equal(t, "2026-03-08", due.Format("2006-01-02"))
	assert.Equal(t, 23, due.Hour())
	assert.True(t, item.LastReviewedAt.Equal(now))
}

func TestUpdateReview_DueDateFollowsLocalCalendar(t *testing.T) {
	svc, reviews, ny := newYorkReviewService(t)
	// As read back from storage.
	last := time.Date(2026, time.March, 7, 23, 30, 0, 0, ny).UTC()

	reviews.On("Get", mock.Anything, int64(5), int64(1)).
		Return(&models.ReviewItem{ID: 5, UserID: 1, LastReviewedAt: last, IntervalDays: 1, EaseFactor: 2.5, Version: 1}, nil)
	reviews.On("Update", mock.Anything, mock.Anything).Return(true, nil)

	item, err := svc.UpdateReview(context.Background(), 1, 5, services.ReviewPatch{IntervalDays: "2"})
	require.NoError(t, err)

	due := item.NextDueAt.In(ny)
	assert.Equal(t, "2026-03-09", due.Format("2006-01-02"))
	assert.Equal(t, 23, due.Hour())
}

func TestListReviews_InvalidStatus(t *testing.T) {
	svc, _, _ := newReviewService()

	_, err := svc.ListReviews(context.Background(), models.ReviewFilter{UserID: 1, Status: "overdue"})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestDeleteReview(t *testing.T) {
	svc, reviews, _ := newReviewService()

	reviews.On("Delete", mock.Anything, int64(5), int64(1)).Return(true, nil)
	reviews.On("Delete", mock.Anything, int64(6), int64(1)).Return(false, nil)

	assert.NoError(t, svc.DeleteReview(context.Background(), 1, 5))
	requireStatus(t, svc.DeleteReview(context.Background(), 1, 6), http.StatusNotFound)
}

func TestImportReviews(t *testing.T) {
	svc, reviews, subjects := newReviewService()

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Subject", "Topic", "Interval", "Ease", "Reps"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"Calculus", "Limits"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"calculus", "Series", "6", "2.4", "2"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A4", &[]interface{}{"Physics", "Optics"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A5", &[]interface{}{"Physics", ""}))
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)

	subjects.On("GetByName", mock.Anything, int64(1), "Calculus").Return(&models.Subject{ID: 3, UserID: 1, Name: "Calculus"}, nil)
	subjects.On("GetByName", mock.Anything, int64(1), "Physics").Return(nil, nil)
	subjects.On("Create", mock.Anything, mock.MatchedBy(func(s models.Subject) bool {
		return s.Name == "Physics" && s.Color == models.DefaultSubjectColor
	})).Return(int64(4), nil)

	reviews.On("Create", mock.Anything, mock.MatchedBy(func(r models.ReviewItem) bool {
		return r.Topic == "Series" && r.SubjectID == 3 && r.IntervalDays == 6 && r.EaseFactor == 2.4 &&
			r.NextDueAt.Equal(reviewNow.AddDate(0, 0, 6))
	})).Return(int64(11), nil).Once()
	reviews.On("Create", mock.Anything, mock.Anything).Return(int64(12), nil)

	result, err := svc.ImportReviews(context.Background(), 1, &buf, reviewNow)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Imported)
	assert.Equal(t, 1, result.SubjectsCreated)
	assert.Equal(t, 1, result.Skipped)
	subjects.AssertNumberOfCalls(t, "GetByName", 2)
	reviews.AssertNumberOfCalls(t, "Create", 3)
}

func TestImportReviews_BadWorkbook(t *testing.T) {
	svc, _, _ := newReviewService()

	_, err := svc.ImportReviews(context.Background(), 1, bytes.NewBufferString("not xlsx"), reviewNow)
	requireStatus(t, err, http.StatusBadRequest)
}
