package repository

import (
	"context"
	"time"

	"github.com/studyflow/studyflow/internal/models"
)

// Lookups return (nil, nil) when the row does not exist or belongs to another user.

// UserRepository handles user data access
type UserRepository interface {
	Create(ctx context.Context, user models.User) (int64, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user models.User) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	DueCounts(ctx context.Context, now time.Time) ([]models.UserDueCount, error)
}

// TokenRepository handles auth token data access
type TokenRepository interface {
	Create(ctx context.Context, token models.AuthToken) error
	Get(ctx context.Context, tokenHash string) (*models.AuthToken, error)
	Delete(ctx context.Context, tokenHash string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// SubjectRepository handles subject data access
type SubjectRepository interface {
	Create(ctx context.Context, subject models.Subject) (int64, error)
	Get(ctx context.Context, id, userID int64) (*models.Subject, error)
	GetByName(ctx context.Context, userID int64, name string) (*models.Subject, error)
	List(ctx context.Context, userID int64) ([]models.Subject, error)
	Update(ctx context.Context, subject models.Subject) error
	Delete(ctx context.Context, id, userID int64) (bool, error)
}

// SessionRepository handles study session data access
type SessionRepository interface {
	Create(ctx context.Context, session models.StudySession) (int64, error)
	Get(ctx context.Context, id, userID int64) (*models.StudySession, error)
	List(ctx context.Context, filter models.SessionFilter) ([]models.StudySession, error)
	Delete(ctx context.Context, id, userID int64) (bool, error)
}

// ReviewRepository handles review item data access. Updates are optimistic:
// they only apply when the stored version equals item.Version and report
// false otherwise.
type ReviewRepository interface {
	Create(ctx context.Context, item models.ReviewItem) (int64, error)
	Get(ctx context.Context, id, userID int64) (*models.ReviewItem, error)
	List(ctx context.Context, filter models.ReviewFilter) ([]models.ReviewItem, error)
	Update(ctx context.Context, item models.ReviewItem) (bool, error)
	RecordReview(ctx context.Context, item models.ReviewItem, history models.ReviewHistory) (bool, error)
	Delete(ctx context.Context, id, userID int64) (bool, error)
	History(ctx context.Context, reviewID int64) ([]models.ReviewHistory, error)
}
