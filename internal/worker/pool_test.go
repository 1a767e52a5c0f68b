package worker_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyflow/studyflow/internal/models"
	"github.com/studyflow/studyflow/internal/worker"
)

type countingJob struct {
	runs *atomic.Int32
	err  error
	wg   *sync.WaitGroup
}

func (j countingJob) Name() string { return "counting" }

func (j countingJob) Run(context.Context) error {
	defer j.wg.Done()
	j.runs.Add(1)
	return j.err
}

type panicJob struct{ wg *sync.WaitGroup }

func (j panicJob) Name() string { return "panic" }

func (j panicJob) Run(context.Context) error {
	defer j.wg.Done()
	panic("boom")
}

func TestPool_RunsSubmittedJobs(t *testing.T) {
	pool := worker.NewPool(3, 16)
	pool.Start(context.Background())

	var runs atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		var err error
		if i%2 == 0 {
			err = errors.New("failed")
		}
		require.NoError(t, pool.Submit(countingJob{runs: &runs, err: err, wg: &wg}))
	}
	wg.Add(1)
	require.NoError(t, pool.Submit(panicJob{wg: &wg}))

	wg.Wait()
	pool.Stop()
	assert.Equal(t, int32(10), runs.Load())
}

func TestPool_SubmitAfterStop(t *testing.T) {
	pool := worker.NewPool(1, 1)
	pool.Start(context.Background())
	pool.Stop()
	pool.Stop()

	err := pool.Submit(countingJob{})
	assert.ErrorIs(t, err, worker.ErrPoolStopped)
}

func TestPool_QueueFull(t *testing.T) {
	// Not started, so nothing drains the queue.
	pool := worker.NewPool(1, 1)

	require.NoError(t, pool.Submit(countingJob{}))
	assert.ErrorIs(t, pool.Submit(countingJob{}), worker.ErrQueueFull)
	assert.Equal(t, 1, pool.QueueSize())
}

type recordingNotifier struct {
	got []models.UserDueCount
}

func (n *recordingNotifier) Notify(_ context.Context, due models.UserDueCount) error {
	n.got = append(n.got, due)
	return nil
}

func TestReminderJob(t *testing.T) {
	n := &recordingNotifier{}
	job := &worker.ReminderJob{Notifier: n, Due: models.UserDueCount{UserID: 4, Due: 3}}

	assert.Equal(t, "reminder:user_4", job.Name())
	require.NoError(t, job.Run(context.Background()))
	require.Len(t, n.got, 1)
	assert.Equal(t, 3, n.got[0].Due)
}
