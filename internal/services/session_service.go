package services

import (
	"context"
	"strings"
	"time"

	"github.com/studyflow/studyflow/internal/errors"
	"github.com/studyflow/studyflow/internal/logger"
	"github.com/studyflow/studyflow/internal/models"
	"github.com/studyflow/studyflow/internal/repository"
)

// maxSessionSeconds bounds a single session to one day.
const maxSessionSeconds = 24 * 60 * 60

// SessionInput describes a finished study session. DurationSeconds wins over
// the EndedAt - StartedAt difference when both are given.
type SessionInput struct {
	SubjectID       int64
	StartedAt       time.Time
	EndedAt         *time.Time
	DurationSeconds *int64
	Notes           string
}

// SessionService handles study session business logic
type SessionService interface {
	CreateSession(ctx context.Context, userID int64, in SessionInput) (*models.StudySession, error)
	ListSessions(ctx context.Context, filter models.SessionFilter) ([]models.StudySession, error)
	DeleteSession(ctx context.Context, userID, id int64) error
}

type sessionService struct {
	sessionRepo repository.SessionRepository
	subjectRepo repository.SubjectRepository
}

// NewSessionService creates a new SessionService
func NewSessionService(sessionRepo repository.SessionRepository, subjectRepo repository.SubjectRepository) SessionService {
	return &sessionService{sessionRepo: sessionRepo, subjectRepo: subjectRepo}
}

func (s *sessionService) CreateSession(ctx context.Context, userID int64, in SessionInput) (*models.StudySession, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating session: user_id=%d, subject_id=%d", userID, in.SubjectID)

	if in.StartedAt.IsZero() {
		return nil, errors.NewValidationError("started_at", "is required")
	}

	var duration int64
	switch {
	case in.DurationSeconds != nil:
		duration = *in.DurationSeconds
	case in.EndedAt != nil:
		duration = int64(in.EndedAt.Sub(in.StartedAt) / time.Second)
	default:
		return nil, errors.NewValidationError("duration_seconds", "or ended_at is required")
	}
	if duration <= 0 {
		return nil, errors.NewValidationError("duration_seconds", "must be positive")
	}
	if duration > maxSessionSeconds {
		return nil, errors.NewValidationError("duration_seconds", "cannot exceed 24 hours")
	}

	endedAt := in.StartedAt.Add(time.Duration(duration) * time.Second)
	if in.EndedAt != nil {
		endedAt = *in.EndedAt
	}

	subject, err := s.subjectRepo.Get(ctx, in.SubjectID, userID)
	if err != nil {
		log.Error("failed to get subject: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if subject == nil {
		return nil, errors.NewNotFoundError("subject", in.SubjectID)
	}

	session := models.StudySession{
		UserID:          userID,
		SubjectID:       subject.ID,
		StartedAt:       in.StartedAt,
		EndedAt:         endedAt,
		DurationSeconds: duration,
		Notes:           strings.TrimSpace(in.Notes),
	}
	id, err := s.sessionRepo.Create(ctx, session)
	if err != nil {
		log.Error("failed to create session: %v", err)
		return nil, errors.NewInternalError(err)
	}
	session.ID = id
	log.Debug("session created: id=%d, hours=%.4f", id, session.Hours())
	return &session, nil
}

func (s *sessionService) ListSessions(ctx context.Context, filter models.SessionFilter) ([]models.StudySession, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing sessions: user_id=%d", filter.UserID)

	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		return nil, errors.NewValidationError("from", "must be before to")
	}

	sessions, err := s.sessionRepo.List(ctx, filter)
	if err != nil {
		log.Error("failed to list sessions: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return sessions, nil
}

func (s *sessionService) DeleteSession(ctx context.Context, userID, id int64) error {
	log := logger.FromContext(ctx)
	log.Debug("deleting session: id=%d, user_id=%d", id, userID)

	deleted, err := s.sessionRepo.Delete(ctx, id, userID)
	if err != nil {
		log.Error("failed to delete session: %v", err)
		return errors.NewInternalError(err)
	}
	if !deleted {
		return errors.NewNotFoundError("session", id)
	}
	return nil
}
