package services_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/studyflow/studyflow/internal/models"
	"github.com/studyflow/studyflow/internal/services"
	"github.com/studyflow/studyflow/internal/testutil/mocks"
	"github.com/xuri/excelize/v2"
)

func TestStatsService(t *testing.T) {
	sessions := new(mocks.MockSessionRepository)
	subjects := new(mocks.MockSubjectRepository)
	reviews := new(mocks.MockReviewRepository)
	svc := services.NewStatsService(sessions, subjects, reviews, time.UTC)
	ctx := context.Background()
	now := time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC)

	sessions.On("List", mock.Anything, models.SessionFilter{UserID: 1}).Return([]models.StudySession{
		{SubjectID: 3, StartedAt: now.Add(-2 * time.Hour), EndedAt: now.Add(-time.Hour), DurationSeconds: 3600},
	}, nil)
	subjects.On("List", mock.Anything, int64(1)).Return([]models.Subject{{ID: 3, Name: "Calculus", WeeklyGoalHours: 10}}, nil)
	reviews.On("List", mock.Anything, models.ReviewFilter{UserID: 1, Status: models.ReviewStatusPending, Now: now}).
		Return([]models.ReviewItem{{NextDueAt: now.Add(-time.Hour)}}, nil)
	reviews.On("List", mock.Anything, models.ReviewFilter{UserID: 1}).
		Return([]models.ReviewItem{models.NewReviewItem(1, 3, "Limits", now)}, nil)

	t.Run("dashboard", func(t *testing.T) {
		d, err := svc.Dashboard(ctx, 1, now)
		require.NoError(t, err)
		assert.Equal(t, 1.0, d.HoursToday)
		assert.Equal(t, 1, d.Subjects)
		assert.Equal(t, 1, d.ReviewsToday)
		assert.Equal(t, 1, d.CurrentStreak)
	})

	t.Run("report", func(t *testing.T) {
		r, err := svc.Report(ctx, 1, now)
		require.NoError(t, err)
		require.Len(t, r.Subjects, 1)
		assert.Equal(t, 10.0, r.Subjects[0].GoalProgress)
	})

	t.Run("export", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, svc.Export(ctx, 1, &buf))

		f, err := excelize.OpenReader(&buf)
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows("Reviews")
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "Calculus", rows[1][0])
		assert.Equal(t, "Limits", rows[1][1])
	})
}
