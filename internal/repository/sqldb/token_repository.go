package sqldb

import (
	"context"
	"time"

	"github.com/studyflow/studyflow/internal/db"
	"github.com/studyflow/studyflow/internal/logger"
	"github.com/studyflow/studyflow/internal/models"
	"github.com/studyflow/studyflow/internal/repository"
)

type tokenRepository struct {
	db *db.DB
}

// NewTokenRepository creates a new TokenRepository implementation
func NewTokenRepository(db *db.DB) repository.TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(ctx context.Context, t models.AuthToken) error {
	log := logger.FromContext(ctx).WithPrefix("token_repo")
	log.Debug("inserting token: user_id=%d", t.UserID)

	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
INSERT INTO auth_tokens (token_hash, user_id, expires_at, created_at) VALUES (?, ?, ?, ?)
`), t.TokenHash, t.UserID, utc(t.ExpiresAt), utc(time.Now()))
	if err != nil {
		log.Error("failed to insert token: %v", err)
	}
	return err
}

func (r *tokenRepository) Get(ctx context.Context, tokenHash string) (*models.AuthToken, error) {
	t, err := getOne[models.AuthToken](ctx, r.db, r.db.Rebind(`
SELECT token_hash, user_id, expires_at, created_at FROM auth_tokens WHERE token_hash = ?
`), tokenHash)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("token_repo").Error("failed to get token: %v", err)
	}
	return t, err
}

func (r *tokenRepository) Delete(ctx context.Context, tokenHash string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM auth_tokens WHERE token_hash = ?`), tokenHash)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("token_repo").Error("failed to delete token: %v", err)
	}
	return err
}

func (r *tokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("token_repo")

	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM auth_tokens WHERE expires_at <= ?`), utc(now))
	if err != nil {
		log.Error("failed to delete expired tokens: %v", err)
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	log.Debug("deleted %d expired tokens", n)
	return n, nil
}
