package services

import (
	"context"
	"regexp"
	"strings"

	"github.com/studyflow/studyflow/internal/errors"
	"github.com/studyflow/studyflow/internal/logger"
	"github.com/studyflow/studyflow/internal/models"
	"github.com/studyflow/studyflow/internal/repository"
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// SubjectInput is the writable part of a subject. Empty Color and nil
// WeeklyGoalHours take the defaults on create and keep the stored value on update.
type SubjectInput struct {
	Name            string
	Color           string
	WeeklyGoalHours *int
}

// SubjectService handles subject business logic
type SubjectService interface {
	ListSubjects(ctx context.Context, userID int64) ([]models.Subject, error)
	GetSubject(ctx context.Context, userID, id int64) (*models.Subject, error)
	CreateSubject(ctx context.Context, userID int64, in SubjectInput) (*models.Subject, error)
	UpdateSubject(ctx context.Context, userID, id int64, in SubjectInput) (*models.Subject, error)
	DeleteSubject(ctx context.Context, userID, id int64) error
}

type subjectService struct {
	subjectRepo repository.SubjectRepository
}

// NewSubjectService creates a new SubjectService
func NewSubjectService(subjectRepo repository.SubjectRepository) SubjectService {
	return &subjectService{subjectRepo: subjectRepo}
}

func (s *subjectService) ListSubjects(ctx context.Context, userID int64) ([]models.Subject, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing subjects: user_id=%d", userID)

	subjects, err := s.subjectRepo.List(ctx, userID)
	if err != nil {
		log.Error("failed to list subjects: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return subjects, nil
}

func (s *subjectService) GetSubject(ctx context.Context, userID, id int64) (*models.Subject, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting subject: id=%d, user_id=%d", id, userID)

	subject, err := s.subjectRepo.Get(ctx, id, userID)
	if err != nil {
		log.Error("failed to get subject: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if subject == nil {
		return nil, errors.NewNotFoundError("subject", id)
	}
	return subject, nil
}

func (s *subjectService) CreateSubject(ctx context.Context, userID int64, in SubjectInput) (*models.Subject, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating subject: user_id=%d, name=%s", userID, in.Name)

	subject := models.Subject{
		UserID:          userID,
		Color:           models.DefaultSubjectColor,
		WeeklyGoalHours: models.DefaultWeeklyGoalHours,
	}
	if err := applySubjectInput(&subject, in); err != nil {
		return nil, err
	}

	id, err := s.subjectRepo.Create(ctx, subject)
	if err != nil {
		log.Error("failed to create subject: %v", err)
		return nil, errors.NewInternalError(err)
	}
	subject.ID = id
	return &subject, nil
}

func (s *subjectService) UpdateSubject(ctx context.Context, userID, id int64, in SubjectInput) (*models.Subject, error) {
	log := logger.FromContext(ctx)
	log.Debug("updating subject: id=%d, user_id=%d", id, userID)

	subject, err := s.GetSubject(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := applySubjectInput(subject, in); err != nil {
		return nil, err
	}
	if err := s.subjectRepo.Update(ctx, *subject); err != nil {
		log.Error("failed to update subject: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return subject, nil
}

func (s *subjectService) DeleteSubject(ctx context.Context, userID, id int64) error {
	log := logger.FromContext(ctx)
	log.Debug("deleting subject: id=%d, user_id=%d", id, userID)

	deleted, err := s.subjectRepo.Delete(ctx, id, userID)
	if err != nil {
		log.Error("failed to delete subject: %v", err)
		return errors.NewInternalError(err)
	}
	if !deleted {
		return errors.NewNotFoundError("subject", id)
	}
	return nil
}

func applySubjectInput(subject *models.Subject, in SubjectInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return errors.NewValidationError("name", "cannot be empty")
	}
	subject.Name = name

	if in.Color != "" {
		if !colorPattern.MatchString(in.Color) {
			return errors.NewValidationError("color", "must look like #rrggbb")
		}
		subject.Color = strings.ToLower(in.Color)
	}
	if in.WeeklyGoalHours != nil {
		if *in.WeeklyGoalHours < 0 {
			return errors.NewValidationError("weekly_goal_hours", "cannot be negative")
		}
		subject.WeeklyGoalHours = *in.WeeklyGoalHours
	}
	return nil
}
