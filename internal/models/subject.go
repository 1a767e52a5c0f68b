package models

import (
	"math"
	"time"
)

const (
	DefaultSubjectColor    = "#3b82f6"
	DefaultWeeklyGoalHours = 10
)

// Subject is a discipline the user studies, e.g. "Calculus".
type Subject struct {
	ID              int64     `db:"id" json:"id"`
	UserID          int64     `db:"user_id" json:"user_id"`
	Name            string    `db:"name" json:"name"`
	Color           string    `db:"color" json:"color"`
	WeeklyGoalHours int       `db:"weekly_goal_hours" json:"weekly_goal_hours"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

type StudySession struct {
	ID              int64     `db:"id" json:"id"`
	UserID          int64     `db:"user_id" json:"user_id"`
	SubjectID       int64     `db:"subject_id" json:"subject_id"`
	StartedAt       time.Time `db:"started_at" json:"started_at"`
	EndedAt         time.Time `db:"ended_at" json:"ended_at"`
	DurationSeconds int64     `db:"duration_seconds" json:"duration_seconds"`
	Notes           string    `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// Hours returns the session length in hours rounded to four decimals.
func (s StudySession) Hours() float64 {
	return math.Round(float64(s.DurationSeconds)/3600*10000) / 10000
}

type SessionFilter struct {
	UserID    int64
	SubjectID int64
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}
