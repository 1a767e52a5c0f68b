package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/studyflow/studyflow/internal/db"
	"github.com/studyflow/studyflow/internal/errors"
	"github.com/studyflow/studyflow/internal/logger"
	"github.com/studyflow/studyflow/internal/models"
	"github.com/studyflow/studyflow/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// AuthService handles registration and bearer-token sessions
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*models.User, error)
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

type authService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewAuthService creates a new AuthService. Tokens expire after tokenTTL.
func NewAuthService(userRepo repository.UserRepository, tokenRepo repository.TokenRepository, tokenTTL time.Duration) AuthService {
	return &authService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		tokenTTL:  tokenTTL,
		now:       time.Now,
	}
}

func (s *authService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	log := logger.FromContext(ctx)

	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	log.Debug("registering user: email=%s", email)

	if name == "" {
		return nil, errors.NewValidationError("name", "cannot be empty")
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, errors.NewValidationError("password", "must be at least 8 characters")
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		log.Error("failed to look up email: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if existing != nil {
		return nil, errors.NewConflictError("email already registered")
	}

	hash, err := hashPassword(password)
	if err != nil {
		log.Error("failed to hash password: %v", err)
		return nil, errors.NewInternalError(err)
	}

	user := models.User{Name: name, Email: email, PasswordHash: hash}
	id, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, errors.NewConflictError("email already registered")
		}
		log.Error("failed to create user: %v", err)
		return nil, errors.NewInternalError(err)
	}
	user.ID = id
	user.CreatedAt = s.now()

	log.Info("user registered: id=%d", id)
	return &user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	log := logger.FromContext(ctx)
	email = normalizeEmail(email)
	log.Debug("login attempt: email=%s", email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		log.Error("failed to look up user: %v", err)
		return "", nil, errors.NewInternalError(err)
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		log.Debug("invalid credentials: email=%s", email)
		return "", nil, errors.NewUnauthorizedError("invalid email or password")
	}

	token := uuid.NewString()
	err = s.tokenRepo.Create(ctx, models.AuthToken{
		TokenHash: hashToken(token),
		UserID:    user.ID,
		ExpiresAt: s.now().Add(s.tokenTTL),
	})
	if err != nil {
		log.Error("failed to store token: %v", err)
		return "", nil, errors.NewInternalError(err)
	}

	log.Info("user logged in: id=%d", user.ID)
	return token, user, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if err := s.tokenRepo.Delete(ctx, hashToken(token)); err != nil {
		logger.FromContext(ctx).Error("failed to delete token: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	log := logger.FromContext(ctx)

	if token == "" {
		return nil, errors.NewUnauthorizedError("missing bearer token")
	}

	stored, err := s.tokenRepo.Get(ctx, hashToken(token))
	if err != nil {
		log.Error("failed to get token: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if stored == nil {
		return nil, errors.NewUnauthorizedError("invalid token")
	}
	if !s.now().Before(stored.ExpiresAt) {
		log.Debug("token expired: user_id=%d", stored.UserID)
		return nil, errors.NewUnauthorizedError("token expired")
	}

	user, err := s.userRepo.Get(ctx, stored.UserID)
	if err != nil {
		log.Error("failed to get user: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if user == nil {
		return nil, errors.NewUnauthorizedError("invalid token")
	}
	return user, nil
}

func (s *authService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	n, err := s.tokenRepo.DeleteExpired(ctx, s.now())
	if err != nil {
		logger.FromContext(ctx).Error("failed to purge expired tokens: %v", err)
		return 0, errors.NewInternalError(err)
	}
	return n, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return errors.NewValidationError("email", "cannot be empty")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.NewValidationError("email", "is not a valid address")
	}
	return nil
}
