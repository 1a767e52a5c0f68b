package jobs

import (
	"github.com/studyflow/studyflow/internal/models"
	"github.com/studyflow/studyflow/internal/worker"
)

// WorkerQueue implements JobQueue using a worker pool
type WorkerQueue struct {
	pool     *worker.Pool
	notifier worker.Notifier
	purger   worker.TokenPurger
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(pool *worker.Pool, notifier worker.Notifier, purger worker.TokenPurger) JobQueue {
	return &WorkerQueue{
		pool:     pool,
		notifier: notifier,
		purger:   purger,
	}
}

func (q *WorkerQueue) EnqueueReminder(due models.UserDueCount) error {
	return q.pool.Submit(&worker.ReminderJob{
		Notifier: q.notifier,
		Due:      due,
	})
}

func (q *WorkerQueue) EnqueueTokenPurge() error {
	return q.pool.Submit(&worker.PurgeTokensJob{Purger: q.purger})
}
