package jobs

import "github.com/studyflow/studyflow/internal/models"

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	EnqueueReminder(due models.UserDueCount) error
	EnqueueTokenPurge() error
}
