package services

import (
	"context"
	"io"
	"time"

	"github.com/studyflow/studyflow/internal/analytics"
	"github.com/studyflow/studyflow/internal/errors"
	"github.com/studyflow/studyflow/internal/logger"
	"github.com/studyflow/studyflow/internal/models"
	"github.com/studyflow/studyflow/internal/repository"
	"github.com/studyflow/studyflow/internal/workbook"
)

// StatsService handles dashboard, analytics and export business logic
type StatsService interface {
	Dashboard(ctx context.Context, userID int64, now time.Time) (*analytics.Dashboard, error)
	Report(ctx context.Context, userID int64, now time.Time) (*analytics.Report, error)
	Export(ctx context.Context, userID int64, w io.Writer) error
}

type statsService struct {
	sessionRepo repository.SessionRepository
	subjectRepo repository.SubjectRepository
	reviewRepo  repository.ReviewRepository
	loc         *time.Location
}

// NewStatsService creates a new StatsService. Day boundaries follow loc.
func NewStatsService(sessionRepo repository.SessionRepository, subjectRepo repository.SubjectRepository, reviewRepo repository.ReviewRepository, loc *time.Location) StatsService {
	if loc == nil {
		loc = time.UTC
	}
	return &statsService{
		sessionRepo: sessionRepo,
		subjectRepo: subjectRepo,
		reviewRepo:  reviewRepo,
		loc:         loc,
	}
}

func (s *statsService) Dashboard(ctx context.Context, userID int64, now time.Time) (*analytics.Dashboard, error) {
	log := logger.FromContext(ctx)
	log.Debug("building dashboard: user_id=%d", userID)

	sessions, subjects, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviewRepo.List(ctx, models.ReviewFilter{UserID: userID, Status: models.ReviewStatusPending, Now: now})
	if err != nil {
		log.Error("failed to list reviews: %v", err)
		return nil, errors.NewInternalError(err)
	}

	dashboard := analytics.BuildDashboard(sessions, reviews, len(subjects), now, s.loc)
	return &dashboard, nil
}

func (s *statsService) Report(ctx context.Context, userID int64, now time.Time) (*analytics.Report, error) {
	logger.FromContext(ctx).Debug("building report: user_id=%d", userID)

	sessions, subjects, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	report := analytics.BuildReport(sessions, subjects, now, s.loc)
	return &report, nil
}

func (s *statsService) Export(ctx context.Context, userID int64, w io.Writer) error {
	log := logger.FromContext(ctx)
	log.Info("exporting workbook: user_id=%d", userID)

	sessions, subjects, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	reviews, err := s.reviewRepo.List(ctx, models.ReviewFilter{UserID: userID})
	if err != nil {
		log.Error("failed to list reviews: %v", err)
		return errors.NewInternalError(err)
	}

	names := make(map[int64]string, len(subjects))
	for _, subj := range subjects {
		names[subj.ID] = subj.Name
	}

	err = workbook.Write(w, workbook.Export{
		Sessions:     sessions,
		Reviews:      reviews,
		SubjectNames: names,
		Location:     s.loc,
	})
	if err != nil {
		log.Error("failed to write workbook: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

func (s *statsService) load(ctx context.Context, userID int64) ([]models.StudySession, []models.Subject, error) {
	log := logger.FromContext(ctx)

	sessions, err := s.sessionRepo.List(ctx, models.SessionFilter{UserID: userID})
	if err != nil {
		log.Error("failed to list sessions: %v", err)
		return nil, nil, errors.NewInternalError(err)
	}
	subjects, err := s.subjectRepo.List(ctx, userID)
	if err != nil {
		log.Error("failed to list subjects: %v", err)
		return nil, nil, errors.NewInternalError(err)
	}
	return sessions, subjects, nil
}
