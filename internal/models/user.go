package models

import "time"

type User struct {
	ID             int64     `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Email          string    `db:"email" json:"email"`
	PasswordHash   string    `db:"password_hash" json:"-"`
	TelegramChatID *int64    `db:"telegram_chat_id" json:"telegram_chat_id,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// AuthToken is a login session. Only the SHA-256 of the bearer token is stored.
type AuthToken struct {
	TokenHash string    `db:"token_hash"`
	UserID    int64     `db:"user_id"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

// UserDueCount is the number of due review items a user has.
type UserDueCount struct {
	UserID         int64  `db:"user_id"`
	Name           string `db:"name"`
	TelegramChatID *int64 `db:"telegram_chat_id"`
	Due            int    `db:"due"`
}
