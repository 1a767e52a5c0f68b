package services

import (
	"context"
	"strings"

	"github.com/studyflow/studyflow/internal/db"
	"github.com/studyflow/studyflow/internal/errors"
	"github.com/studyflow/studyflow/internal/logger"
	"github.com/studyflow/studyflow/internal/models"
	"github.com/studyflow/studyflow/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// UserUpdate carries the profile fields a user may change. Nil fields are left as they are.
type UserUpdate struct {
	Name           *string
	Email          *string
	TelegramChatID *int64
}

// UserService handles profile business logic for the signed-in user
type UserService interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	UpdateProfile(ctx context.Context, id int64, update UserUpdate) (*models.User, error)
	ChangePassword(ctx context.Context, id int64, oldPassword, newPassword string) error
}

type userService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting user: id=%d", id)

	user, err := s.userRepo.Get(ctx, id)
	if err != nil {
		log.Error("failed to get user: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if user == nil {
		return nil, errors.NewNotFoundError("user", id)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id int64, update UserUpdate) (*models.User, error) {
	log := logger.FromContext(ctx)
	log.Debug("updating profile: id=%d", id)

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, errors.NewValidationError("name", "cannot be empty")
		}
		user.Name = name
	}
	if update.Email != nil {
		email := normalizeEmail(*update.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		if email != user.Email {
			other, err := s.userRepo.GetByEmail(ctx, email)
			if err != nil {
				log.Error("failed to look up email: %v", err)
				return nil, errors.NewInternalError(err)
			}
			if other != nil {
				return nil, errors.NewConflictError("email already registered")
			}
		}
		user.Email = email
	}
	if update.TelegramChatID != nil {
		chatID := *update.TelegramChatID
		if chatID == 0 {
			user.TelegramChatID = nil
		} else {
			user.TelegramChatID = &chatID
		}
	}

	if err := s.userRepo.Update(ctx, *user); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, errors.NewConflictError("email already registered")
		}
		log.Error("failed to update user: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return user, nil
}

func (s *userService) ChangePassword(ctx context.Context, id int64, oldPassword, newPassword string) error {
	log := logger.FromContext(ctx)
	log.Debug("changing password: id=%d", id)

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return errors.NewBadRequestError("current password is incorrect")
	}
	if len(newPassword) < minPasswordLength {
		return errors.NewValidationError("new_password", "must be at least 8 characters")
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		log.Error("failed to hash password: %v", err)
		return errors.NewInternalError(err)
	}
	if err := s.userRepo.UpdatePassword(ctx, id, hash); err != nil {
		log.Error("failed to update password: %v", err)
		return errors.NewInternalError(err)
	}
	log.Info("password changed: id=%d", id)
	return nil
}
