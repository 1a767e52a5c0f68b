// Package reminder periodically looks for users with due reviews and queues
// a notification for each of them.
package reminder

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/studyflow/studyflow/internal/jobs"
	"github.com/studyflow/studyflow/internal/logger"
	"github.com/studyflow/studyflow/internal/models"
)

const tokenPurgeInterval = 6 * time.Hour

// DueCounter reports due review counts per user.
type DueCounter interface {
	DueCounts(ctx context.Context, now time.Time) ([]models.UserDueCount, error)
}

type Config struct {
	Interval  time.Duration
	StartHour int
	EndHour   int
	Location  *time.Location
}

// Scheduler manages the periodic reminder sweep and token cleanup
type Scheduler struct {
	cron  *gocron.Scheduler
	users DueCounter
	queue jobs.JobQueue
	cfg   Config
	now   func() time.Time
	log   *logger.Logger
}

// New creates a new scheduler. Nothing runs until Start is called.
func New(cfg Config, users DueCounter, queue jobs.JobQueue) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	cron := gocron.NewScheduler(cfg.Location)
	cron.SingletonModeAll()
	return &Scheduler{
		cron:  cron,
		users: users,
		queue: queue,
		cfg:   cfg,
		now:   time.Now,
		log:   logger.Default().WithPrefix("reminder"),
	}
}

// Start registers the periodic tasks and runs them in the background.
// A zero Interval disables reminders but keeps token cleanup.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.cfg.Interval > 0 {
		if _, err := s.cron.Every(s.cfg.Interval).Do(s.runSweep, ctx); err != nil {
			return err
		}
		s.log.Info("reminder sweep every %v between %02d:00 and %02d:59", s.cfg.Interval, s.cfg.StartHour, s.cfg.EndHour)
	} else {
		s.log.Info("reminders disabled")
	}

	if _, err := s.cron.Every(tokenPurgeInterval).Do(s.runPurge); err != nil {
		return err
	}
	s.cron.StartAsync()
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) runSweep(ctx context.Context) {
	if _, err := s.Sweep(ctx); err != nil {
		s.log.Error("reminder sweep failed: %v", err)
	}
}

func (s *Scheduler) runPurge() {
	if err := s.queue.EnqueueTokenPurge(); err != nil {
		s.log.Warn("failed to queue token purge: %v", err)
	}
}

// Sweep queues one reminder per user with due reviews and returns how many
// were queued. Outside the configured hours it does nothing.
func (s *Scheduler) Sweep(ctx context.Context) (int, error) {
	now := s.now().In(s.cfg.Location)
	if !InWindow(now.Hour(), s.cfg.StartHour, s.cfg.EndHour) {
		s.log.Debug("hour %d is outside reminder hours (%d-%d), skipping", now.Hour(), s.cfg.StartHour, s.cfg.EndHour)
		return 0, nil
	}

	counts, err := s.users.DueCounts(logger.NewContext(ctx, s.log), now)
	if err != nil {
		return 0, err
	}

	queued := 0
	for _, due := range counts {
		if due.Due <= 0 {
			continue
		}
		if err := s.queue.EnqueueReminder(due); err != nil {
			s.log.Warn("failed to queue reminder for user %d: %v", due.UserID, err)
			continue
		}
		queued++
	}
	s.log.Info("queued %d reminders", queued)
	return queued, nil
}

// InWindow reports whether hour lies in [start, end]. A window with
// start > end wraps past midnight.
func InWindow(hour, start, end int) bool {
	if start <= end {
		return hour >= start && hour <= end
	}
	return hour >= start || hour <= end
}
