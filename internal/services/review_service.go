package services

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/studyflow/studyflow/internal/errors"
	"github.com/studyflow/studyflow/internal/logger"
	"github.com/studyflow/studyflow/internal/models"
	"github.com/studyflow/studyflow/internal/repository"
	"github.com/studyflow/studyflow/internal/schedule"
	"github.com/studyflow/studyflow/internal/workbook"
)

// ReviewPatch holds a partial update. Scheduling fields are untyped so that
// clients may send numbers encoded as text; they go through schedule.FromRaw.
type ReviewPatch struct {
	Topic           *string
	SubjectID       *int64
	IntervalDays    any
	EaseFactor      any
	RepetitionCount any
	NextDueAt       *time.Time
	// Version, when set, must match the stored version.
	Version *int
}

func (p ReviewPatch) touchesSchedule() bool {
	return p.IntervalDays != nil || p.EaseFactor != nil || p.RepetitionCount != nil
}

// ImportResult summarizes a topic import.
type ImportResult struct {
	Imported        int      `json:"imported"`
	SubjectsCreated int      `json:"subjects_created"`
	Skipped         int      `json:"skipped"`
	Errors          []string `json:"errors"`
}

// ReviewService handles review items and their spaced repetition schedule
type ReviewService interface {
	CreateReview(ctx context.Context, userID, subjectID int64, topic string, now time.Time) (*models.ReviewItem, error)
	ListReviews(ctx context.Context, filter models.ReviewFilter) ([]models.ReviewItem, error)
	GetReview(ctx context.Context, userID, id int64) (*models.ReviewItem, error)
	CompleteReview(ctx context.Context, userID, id int64, quality int, now time.Time) (*models.ReviewItem, error)
	UpdateReview(ctx context.Context, userID, id int64, patch ReviewPatch) (*models.ReviewItem, error)
	DeleteReview(ctx context.Context, userID, id int64) error
	History(ctx context.Context, userID, id int64) ([]models.ReviewHistory, error)
	ImportReviews(ctx context.Context, userID int64, r io.Reader, now time.Time) (*ImportResult, error)
}

type reviewService struct {
	reviewRepo  repository.ReviewRepository
	subjectRepo repository.SubjectRepository
	loc         *time.Location
}

// NewReviewService creates a new ReviewService. Due dates are counted in
// calendar days of loc; nil means UTC.
func NewReviewService(reviewRepo repository.ReviewRepository, subjectRepo repository.SubjectRepository, loc *time.Location) ReviewService {
	if loc == nil {
		loc = time.UTC
	}
	return &reviewService{reviewRepo: reviewRepo, subjectRepo: subjectRepo, loc: loc}
}

// local moves t into the configured zone so AddDate steps over local days.
func (s *reviewService) local(t time.Time) time.Time {
	return t.In(s.loc)
}

func (s *reviewService) CreateReview(ctx context.Context, userID, subjectID int64, topic string, now time.Time) (*models.ReviewItem, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating review: user_id=%d, subject_id=%d", userID, subjectID)

	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, errors.NewValidationError("topic", "cannot be empty")
	}
	if err := s.requireSubject(ctx, userID, subjectID); err != nil {
		return nil, err
	}

	item := models.NewReviewItem(userID, subjectID, topic, s.local(now))
	id, err := s.reviewRepo.Create(ctx, item)
	if err != nil {
		log.Error("failed to create review: %v", err)
		return nil, errors.NewInternalError(err)
	}
	item.ID = id
	return &item, nil
}

func (s *reviewService) ListReviews(ctx context.Context, filter models.ReviewFilter) ([]models.ReviewItem, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing reviews: user_id=%d, status=%s", filter.UserID, filter.Status)

	switch filter.Status {
	case "", models.ReviewStatusPending, models.ReviewStatusUpcoming:
	default:
		return nil, errors.NewValidationError("status", "must be pending or upcoming")
	}

	items, err := s.reviewRepo.List(ctx, filter)
	if err != nil {
		log.Error("failed to list reviews: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return items, nil
}

func (s *reviewService) GetReview(ctx context.Context, userID, id int64) (*models.ReviewItem, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting review: id=%d, user_id=%d", id, userID)

	item, err := s.reviewRepo.Get(ctx, id, userID)
	if err != nil {
		log.Error("failed to get review: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if item == nil {
		return nil, errors.NewNotFoundError("review", id)
	}
	return item, nil
}

func (s *reviewService) CompleteReview(ctx context.Context, userID, id int64, quality int, now time.Time) (*models.ReviewItem, error) {
	log := logger.FromContext(ctx)
	log.Debug("completing review: id=%d, quality=%d", id, quality)

	if !schedule.ValidQuality(quality) {
		return nil, errors.NewValidationError("quality", "must be between 1 and 5")
	}

	item, err := s.GetReview(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	prev := item.State()
	next := schedule.ComputeNextSchedule(prev, quality)
	updated := item.WithState(next, s.local(now))

	log.Debug("applied review, new interval=%d days, ease_factor=%.2f, repetitions=%d",
		next.IntervalDays, next.EaseFactor, next.RepetitionCount)

	applied, err := s.reviewRepo.RecordReview(ctx, updated, models.ReviewHistory{
		ReviewID:         item.ID,
		Quality:          quality,
		PrevIntervalDays: prev.IntervalDays,
		NewIntervalDays:  next.IntervalDays,
		PrevEaseFactor:   prev.EaseFactor,
		NewEaseFactor:    next.EaseFactor,
		ReviewedAt:       now,
	})
	if err != nil {
		log.Error("failed to record review: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if !applied {
		return nil, errors.NewConflictError("review was modified concurrently, reload and try again")
	}

	updated.Version++
	return &updated, nil
}

func (s *reviewService) UpdateReview(ctx context.Context, userID, id int64, patch ReviewPatch) (*models.ReviewItem, error) {
	log := logger.FromContext(ctx)
	log.Debug("updating review: id=%d, user_id=%d", id, userID)

	item, err := s.GetReview(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if patch.Version != nil && *patch.Version != item.Version {
		return nil, errors.NewConflictError("review was modified concurrently, reload and try again")
	}

	if patch.Topic != nil {
		topic := strings.TrimSpace(*patch.Topic)
		if topic == "" {
			return nil, errors.NewValidationError("topic", "cannot be empty")
		}
		item.Topic = topic
	}
	if patch.SubjectID != nil && *patch.SubjectID != item.SubjectID {
		if err := s.requireSubject(ctx, userID, *patch.SubjectID); err != nil {
			return nil, err
		}
		item.SubjectID = *patch.SubjectID
	}

	if patch.touchesSchedule() {
		if field := (schedule.Raw{
			IntervalDays:    patch.IntervalDays,
			EaseFactor:      patch.EaseFactor,
			RepetitionCount: patch.RepetitionCount,
		}).InvalidField(); field != "" {
			return nil, errors.NewValidationError(field, "must be a number")
		}

		current := item.State()
		raw := schedule.Raw{
			IntervalDays:    orValue(patch.IntervalDays, current.IntervalDays),
			EaseFactor:      orValue(patch.EaseFactor, current.EaseFactor),
			RepetitionCount: orValue(patch.RepetitionCount, current.RepetitionCount),
		}
		state := schedule.FromRaw(raw)
		item.IntervalDays = state.IntervalDays
		item.EaseFactor = state.EaseFactor
		item.RepetitionCount = state.RepetitionCount
		if patch.NextDueAt == nil && state.IntervalDays != current.IntervalDays {
			item.NextDueAt = schedule.DueAt(s.local(item.LastReviewedAt), state.IntervalDays)
		}
	}
	if patch.NextDueAt != nil {
		item.NextDueAt = *patch.NextDueAt
	}

	applied, err := s.reviewRepo.Update(ctx, *item)
	if err != nil {
		log.Error("failed to update review: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if !applied {
		return nil, errors.NewConflictError("review was modified concurrently, reload and try again")
	}
	item.Version++
	return item, nil
}

func (s *reviewService) DeleteReview(ctx context.Context, userID, id int64) error {
	log := logger.FromContext(ctx)
	log.Debug("deleting review: id=%d, user_id=%d", id, userID)

	deleted, err := s.reviewRepo.Delete(ctx, id, userID)
	if err != nil {
		log.Error("failed to delete review: %v", err)
		return errors.NewInternalError(err)
	}
	if !deleted {
		return errors.NewNotFoundError("review", id)
	}
	return nil
}

func (s *reviewService) History(ctx context.Context, userID, id int64) ([]models.ReviewHistory, error) {
	log := logger.FromContext(ctx)

	if _, err := s.GetReview(ctx, userID, id); err != nil {
		return nil, err
	}
	history, err := s.reviewRepo.History(ctx, id)
	if err != nil {
		log.Error("failed to get review history: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return history, nil
}

func (s *reviewService) ImportReviews(ctx context.Context, userID int64, r io.Reader, now time.Time) (*ImportResult, error) {
	log := logger.FromContext(ctx)
	log.Info("importing reviews: user_id=%d", userID)

	parsed, err := workbook.ReadTopics(r)
	if err != nil {
		log.Warn("failed to read import workbook: %v", err)
		return nil, errors.NewBadRequestError(err.Error())
	}

	result := &ImportResult{Errors: parsed.Errors, Skipped: len(parsed.Errors)}
	subjects := make(map[string]int64)

	for _, row := range parsed.Rows {
		key := strings.ToLower(row.Subject)
		subjectID, ok := subjects[key]
		if !ok {
			subjectID, err = s.findOrCreateSubject(ctx, userID, row.Subject, result)
			if err != nil {
				return nil, err
			}
			subjects[key] = subjectID
		}

		item := models.NewReviewItem(userID, subjectID, row.Topic, s.local(now))
		if row.HasSchedule {
			item = item.WithState(schedule.FromRaw(row.Schedule), s.local(now))
		}
		if _, err := s.reviewRepo.Create(ctx, item); err != nil {
			log.Error("failed to import row %d: %v", row.Line, err)
			return nil, errors.NewInternalError(err)
		}
		result.Imported++
	}

	log.Info("import finished: imported=%d, skipped=%d, subjects_created=%d",
		result.Imported, result.Skipped, result.SubjectsCreated)
	return result, nil
}

func (s *reviewService) findOrCreateSubject(ctx context.Context, userID int64, name string, result *ImportResult) (int64, error) {
	existing, err := s.subjectRepo.GetByName(ctx, userID, name)
	if err != nil {
		logger.FromContext(ctx).Error("failed to look up subject: %v", err)
		return 0, errors.NewInternalError(err)
	}
	if existing != nil {
		return existing.ID, nil
	}

	id, err := s.subjectRepo.Create(ctx, models.Subject{
		UserID:          userID,
		Name:            name,
		Color:           models.DefaultSubjectColor,
		WeeklyGoalHours: models.DefaultWeeklyGoalHours,
	})
	if err != nil {
		logger.FromContext(ctx).Error("failed to create subject: %v", err)
		return 0, errors.NewInternalError(err)
	}
	result.SubjectsCreated++
	return id, nil
}

func (s *reviewService) requireSubject(ctx context.Context, userID, subjectID int64) error {
	subject, err := s.subjectRepo.Get(ctx, subjectID, userID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to get subject: %v", err)
		return errors.NewInternalError(err)
	}
	if subject == nil {
		return errors.NewNotFoundError("subject", subjectID)
	}
	return nil
}

func orValue(v any, fallback any) any {
	if v == nil {
		return fallback
	}
	return v
}
