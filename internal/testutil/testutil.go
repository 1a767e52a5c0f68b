package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/studyflow/studyflow/internal/db"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// The pool is capped at one connection so every query sees the same database.
func NewTestDB(t *testing.T) *db.DB {
	database, err := db.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	return database
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// SeedUser inserts a user and returns its id.
func SeedUser(t *testing.T, d *db.DB, email string) int64 {
	var id int64
	err := d.QueryRowxContext(context.Background(), d.Rebind(`
INSERT INTO users (name, email, password_hash, created_at) VALUES (?, ?, ?, ?) RETURNING id
`), "Test User", email, "x", time.Now().UTC()).Scan(&id)
	require.NoError(t, err)
	return id
}

// SeedSubject inserts a subject owned by userID and returns its id.
func SeedSubject(t *testing.T, d *db.DB, userID int64, name string) int64 {
	var id int64
	err := d.QueryRowxContext(context.Background(), d.Rebind(`
INSERT INTO subjects (user_id, name, color, weekly_goal_hours, created_at) VALUES (?, ?, ?, ?, ?) RETURNING id
`), userID, name, "#3b82f6", 10, time.Now().UTC()).Scan(&id)
	require.NoError(t, err)
	return id
}
