package worker

import (
	"context"
	"fmt"

	"github.com/studyflow/studyflow/internal/logger"
	"github.com/studyflow/studyflow/internal/models"
)

// Notifier delivers a due-review reminder to one user. Defined here so the
// worker package does not import the reminder package.
type Notifier interface {
	Notify(ctx context.Context, due models.UserDueCount) error
}

// TokenPurger removes expired login tokens.
type TokenPurger interface {
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

// ReminderJob tells one user how many reviews are waiting.
type ReminderJob struct {
	Notifier Notifier
	Due      models.UserDueCount
}

func (j *ReminderJob) Name() string { return fmt.Sprintf("reminder:user_%d", j.Due.UserID) }

func (j *ReminderJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"user_id": j.Due.UserID,
		"due":     j.Due.Due,
	})
	log.Debug("sending reminder")
	return j.Notifier.Notify(logger.NewContext(ctx, log), j.Due)
}

// PurgeTokensJob deletes expired auth tokens.
type PurgeTokensJob struct {
	Purger TokenPurger
}

func (j *PurgeTokensJob) Name() string { return "purge_tokens" }

func (j *PurgeTokensJob) Run(ctx context.Context) error {
	n, err := j.Purger.PurgeExpiredTokens(ctx)
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Debug("purged %d expired tokens", n)
	return nil
}
