package models

import (
	"time"

	"github.com/studyflow/studyflow/internal/schedule"
)

type ReviewItem struct {
	ID              int64     `db:"id" json:"id"`
	UserID          int64     `db:"user_id" json:"user_id"`
	SubjectID       int64     `db:"subject_id" json:"subject_id"`
	Topic           string    `db:"topic" json:"topic"`
	LastReviewedAt  time.Time `db:"last_reviewed_at" json:"last_reviewed_at"`
	NextDueAt       time.Time `db:"next_due_at" json:"next_due_at"`
	IntervalDays    int       `db:"interval_days" json:"interval_days"`
	EaseFactor      float64   `db:"ease_factor" json:"ease_factor"`
	RepetitionCount int       `db:"repetition_count" json:"repetition_count"`
	Version         int       `db:"version" json:"version"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// State returns the scheduling fields of the item.
func (r ReviewItem) State() schedule.State {
	return schedule.State{
		IntervalDays:    r.IntervalDays,
		EaseFactor:      r.EaseFactor,
		RepetitionCount: r.RepetitionCount,
	}
}

// WithState returns a copy of r carrying s, reviewed at reviewedAt.
func (r ReviewItem) WithState(s schedule.State, reviewedAt time.Time) ReviewItem {
	r.IntervalDays = s.IntervalDays
	r.EaseFactor = s.EaseFactor
	r.RepetitionCount = s.RepetitionCount
	r.LastReviewedAt = reviewedAt
	r.NextDueAt = schedule.DueAt(reviewedAt, s.IntervalDays)
	return r
}

// NewReviewItem returns an item in the initial scheduling state, due one day after now.
func NewReviewItem(userID, subjectID int64, topic string, now time.Time) ReviewItem {
	return ReviewItem{
		UserID:    userID,
		SubjectID: subjectID,
		Topic:     topic,
		Version:   1,
	}.WithState(schedule.Initial(), now)
}

type ReviewHistory struct {
	ID               int64     `db:"id" json:"id"`
	ReviewID         int64     `db:"review_id" json:"review_id"`
	Quality          int       `db:"quality" json:"quality"`
	PrevIntervalDays int       `db:"prev_interval_days" json:"prev_interval_days"`
	NewIntervalDays  int       `db:"new_interval_days" json:"new_interval_days"`
	PrevEaseFactor   float64   `db:"prev_ease_factor" json:"prev_ease_factor"`
	NewEaseFactor    float64   `db:"new_ease_factor" json:"new_ease_factor"`
	ReviewedAt       time.Time `db:"reviewed_at" json:"reviewed_at"`
}

const (
	ReviewStatusPending  = "pending"
	ReviewStatusUpcoming = "upcoming"
)

type ReviewFilter struct {
	UserID    int64
	SubjectID int64
	Status    string
	Now       time.Time
}
