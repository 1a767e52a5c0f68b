package sqldb

import (
	"context"
	"time"

	"github.com/studyflow/studyflow/internal/db"
	"github.com/studyflow/studyflow/internal/logger"
	"github.com/studyflow/studyflow/internal/models"
	"github.com/studyflow/studyflow/internal/repository"
)

const userColumns = `id, name, email, password_hash, telegram_chat_id, created_at`

type userRepository struct {
	db *db.DB
}

// NewUserRepository creates a new UserRepository implementation
func NewUserRepository(db *db.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u models.User) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("inserting user: email=%s", u.Email)

	var id int64
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(`
INSERT INTO users (name, email, password_hash, telegram_chat_id, created_at)
VALUES (?, ?, ?, ?, ?)
RETURNING id
`), u.Name, u.Email, u.PasswordHash, u.TelegramChatID, utc(time.Now())).Scan(&id)
	if err != nil {
		log.Error("failed to insert user: %v", err)
		return 0, err
	}
	log.Debug("user inserted: id=%d", id)
	return id, nil
}

func (r *userRepository) Get(ctx context.Context, id int64) (*models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("getting user: id=%d", id)

	u, err := getOne[models.User](ctx, r.db, r.db.Rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	if err != nil {
		log.Error("failed to get user: %v", err)
	}
	return u, err
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("getting user by email: %s", email)

	u, err := getOne[models.User](ctx, r.db, r.db.Rebind(`SELECT `+userColumns+` FROM users WHERE email = ?`), email)
	if err != nil {
		log.Error("failed to get user by email: %v", err)
	}
	return u, err
}

func (r *userRepository) Update(ctx context.Context, u models.User) error {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("updating user: id=%d", u.ID)

	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
UPDATE users SET name = ?, email = ?, telegram_chat_id = ? WHERE id = ?
`), u.Name, u.Email, u.TelegramChatID, u.ID)
	if err != nil {
		log.Error("failed to update user: %v", err)
	}
	return err
}

func (r *userRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("updating password: user_id=%d", id)

	_, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE users SET password_hash = ? WHERE id = ?`), passwordHash, id)
	if err != nil {
		log.Error("failed to update password: %v", err)
	}
	return err
}

func (r *userRepository) DueCounts(ctx context.Context, now time.Time) ([]models.UserDueCount, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("counting due reviews per user")

	query, args, err := r.db.Builder().
		Select("u.id AS user_id", "u.name", "u.telegram_chat_id", "COUNT(r.id) AS due").
		From("users u").
		Join("review_items r ON r.user_id = u.id").
		Where("r.next_due_at <= ?", utc(now)).
		GroupBy("u.id", "u.name", "u.telegram_chat_id").
		OrderBy("u.id").
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	var counts []models.UserDueCount
	if err := r.db.SelectContext(ctx, &counts, query, args...); err != nil {
		log.Error("failed to count due reviews: %v", err)
		return nil, err
	}
	log.Debug("found %d users with due reviews", len(counts))
	return counts, nil
}
