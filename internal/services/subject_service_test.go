package services_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/studyflow/studyflow/internal/models"
	"github.com/studyflow/studyflow/internal/services"
	"github.com/studyflow/studyflow/internal/testutil/mocks"
)

func TestCreateSubject_Defaults(t *testing.T) {
	subjects := new(mocks.MockSubjectRepository)
	svc := services.NewSubjectService(subjects)

	subjects.On("Create", mock.Anything, models.Subject{
		UserID:          1,
		Name:            "Calculus",
		Color:           "#3b82f6",
		WeeklyGoalHours: 10,
	}).Return(int64(3), nil)

	subject, err := svc.CreateSubject(context.Background(), 1, services.SubjectInput{Name: " Calculus "})
	require.NoError(t, err)
	assert.Equal(t, int64(3), subject.ID)
	subjects.AssertExpectations(t)
}

func TestCreateSubject_Validation(t *testing.T) {
	svc := services.NewSubjectService(new(mocks.MockSubjectRepository))
	ctx := context.Background()
	negative := -1

	tests := []struct {
		name string
		in   services.SubjectInput
	}{
		{"empty name", services.SubjectInput{Name: "  "}},
		{"bad color", services.SubjectInput{Name: "Math", Color: "blue"}},
		{"short color", services.SubjectInput{Name: "Math", Color: "#fff"}},
		{"negative goal", services.SubjectInput{Name: "Math", WeeklyGoalHours: &negative}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateSubject(ctx, 1, tt.in)
			requireStatus(t, err, http.StatusBadRequest)
		})
	}
}

func TestUpdateSubject_KeepsUnsetFields(t *testing.T) {
	subjects := new(mocks.MockSubjectRepository)
	svc := services.NewSubjectService(subjects)

	subjects.On("Get", mock.Anything, int64(3), int64(1)).
		Return(&models.Subject{ID: 3, UserID: 1, Name: "Calc", Color: "#ff0000", WeeklyGoalHours: 4}, nil)
	subjects.On("Update", mock.Anything, models.Subject{ID: 3, UserID: 1, Name: "Calculus", Color: "#ff0000", WeeklyGoalHours: 4}).Return(nil)

	_, err := svc.UpdateSubject(context.Background(), 1, 3, services.SubjectInput{Name: "Calculus"})
	require.NoError(t, err)
	subjects.AssertExpectations(t)
}

func TestDeleteSubject_NotFound(t *testing.T) {
	subjects := new(mocks.MockSubjectRepository)
	svc := services.NewSubjectService(subjects)

	subjects.On("Delete", mock.Anything, int64(3), int64(1)).Return(false, nil)
	requireStatus(t, svc.DeleteSubject(context.Background(), 1, 3), http.StatusNotFound)
}

func TestCreateSession(t *testing.T) {
	sessions := new(mocks.MockSessionRepository)
	subjects := new(mocks.MockSubjectRepository)
	svc := services.NewSessionService(sessions, subjects)
	start := time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC)
	end := start.Add(95 * time.Minute)

	subjects.On("Get", mock.Anything, int64(3), int64(1)).Return(&models.Subject{ID: 3, UserID: 1}, nil)
	sessions.On("Create", mock.Anything, mock.MatchedBy(func(s models.StudySession) bool {
		return s.DurationSeconds == 5700 && s.EndedAt.Equal(end) && s.Notes == "ch. 4"
	})).Return(int64(20), nil)

	session, err := svc.CreateSession(context.Background(), 1, services.SessionInput{
		SubjectID: 3, StartedAt: start, EndedAt: &end, Notes: " ch. 4 ",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(20), session.ID)
	assert.Equal(t, 1.5833, session.Hours())
}

func TestCreateSession_Validation(t *testing.T) {
	sessions := new(mocks.MockSessionRepository)
	subjects := new(mocks.MockSubjectRepository)
	svc := services.NewSessionService(sessions, subjects)
	ctx := context.Background()
	start := time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC)
	before := start.Add(-time.Minute)
	zero := int64(0)

	_, err := svc.CreateSession(ctx, 1, services.SessionInput{SubjectID: 3, StartedAt: start})
	requireStatus(t, err, http.StatusBadRequest)

	_, err = svc.CreateSession(ctx, 1, services.SessionInput{SubjectID: 3, StartedAt: start, EndedAt: &before})
	requireStatus(t, err, http.StatusBadRequest)

	_, err = svc.CreateSession(ctx, 1, services.SessionInput{SubjectID: 3, StartedAt: start, DurationSeconds: &zero})
	requireStatus(t, err, http.StatusBadRequest)

	huge := int64(9_300_000_000)
	_, err = svc.CreateSession(ctx, 1, services.SessionInput{SubjectID: 3, StartedAt: start, DurationSeconds: &huge})
	requireStatus(t, err, http.StatusBadRequest)

	dayAndASecond := int64(24*60*60 + 1)
	_, err = svc.CreateSession(ctx, 1, services.SessionInput{SubjectID: 3, StartedAt: start, DurationSeconds: &dayAndASecond})
	requireStatus(t, err, http.StatusBadRequest)

	twoDaysLater := start.AddDate(0, 0, 2)
	_, err = svc.CreateSession(ctx, 1, services.SessionInput{SubjectID: 3, StartedAt: start, EndedAt: &twoDaysLater})
	requireStatus(t, err, http.StatusBadRequest)

	// Someone else's subject.
	subjects.On("Get", mock.Anything, int64(4), int64(1)).Return(nil, nil)
	seconds := int64(600)
	_, err = svc.CreateSession(ctx, 1, services.SessionInput{SubjectID: 4, StartedAt: start, DurationSeconds: &seconds})
	requireStatus(t, err, http.StatusNotFound)

	sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestListSessions_BadRange(t *testing.T) {
	svc := services.NewSessionService(new(mocks.MockSessionRepository), new(mocks.MockSubjectRepository))
	from := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, -1)

	_, err := svc.ListSessions(context.Background(), models.SessionFilter{UserID: 1, From: &from, To: &to})
	requireStatus(t, err, http.StatusBadRequest)
}
