package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/lighthorse/backend/pkg/logger"
)

func newTestScheduler() *Scheduler {
	return New(logger.Nop()).WithRetry(2, time.Millisecond)
}

func TestAddJob(t *testing.T) {
	s := newTestScheduler()
	job := FuncJob{JobName: "prewarm", Spec: "0 0 * * * *", Fn: func(context.Context) error { return nil }}

	require.NoError(t, s.AddJob(job))
	assert.Error(t, s.AddJob(job), "duplicate name")
	assert.Equal(t, []string{"prewarm"}, s.GetAllJobs())

	bad := FuncJob{JobName: "bad", Spec: "every now and then", Fn: job.Fn}
	assert.Error(t, s.AddJob(bad))
}

func TestRemoveJob(t *testing.T) {
	s := newTestScheduler()
	job := FuncJob{JobName: "a", Spec: "@hourly", Fn: func(context.Context) error { return nil }}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RemoveJob("a"))
	assert.Empty(t, s.GetAllJobs())
	assert.Empty(t, s.cron.Entries())
	assert.Error(t, s.RemoveJob("a"))
}

func TestRunJob_RetriesThenSucceeds(t *testing.T) {
	s := newTestScheduler()
	var calls int32
	job := FuncJob{JobName: "flaky", Spec: "@hourly", Fn: func(context.Context) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return errors.New("upstream down")
		}
		return nil
	}}
	require.NoError(t, s.AddJob(job))

	result := s.runJob(job)
	assert.True(t, result.Success)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	history, err := s.GetJobHistory("flaky")
	require.NoError(t, err)
	require.Len(t, history.Results, 1)
	assert.Equal(t, 1.0, history.GetSuccessRate())
}

func TestRunJob_FailsAfterRetries(t *testing.T) {
	s := newTestScheduler()
	var calls int32
	job := FuncJob{JobName: "broken", Spec: "@hourly", Fn: func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("boom")
	}}
	require.NoError(t, s.AddJob(job))

	result := s.runJob(job)
	assert.False(t, result.Success)
	assert.Equal(t, "boom", result.Error)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	stats := s.GetJobStats()["broken"]
	assert.Equal(t, 1, stats.TotalRuns)
	assert.Equal(t, 1, stats.FailureCount)
	assert.NotNil(t, stats.LastFailure)
	assert.Nil(t, stats.LastSuccess)
}

func TestRunJob_Async(t *testing.T) {
	s := newTestScheduler()
	done := make(chan struct{})
	job := FuncJob{JobName: "once", Spec: "@hourly", Fn: func(context.Context) error {
		close(done)
		return nil
	}}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("once"))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not run")
	}
	assert.Error(t, s.RunJob("missing"))

	s.Stop()
	history, err := s.GetJobHistory("once")
	require.NoError(t, err)
	assert.Len(t, history.Results, 1)
}

func TestStop_CancelsRunningJob(t *testing.T) {
	s := newTestScheduler()
	started := make(chan struct{})
	job := FuncJob{JobName: "slow", Spec: "@hourly", Fn: func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}}
	require.NoError(t, s.AddJob(job))
	require.NoError(t, s.RunJob("slow"))
	<-started

	s.Stop()

	history, err := s.GetJobHistory("slow")
	require.NoError(t, err)
	require.Len(t, history.Results, 1)
	assert.False(t, history.Results[0].Success)
}

func TestGetJobStats_NextRun(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.AddJob(FuncJob{JobName: "hourly", Spec: "0 0 * * * *", Fn: func(context.Context) error { return nil }}))

	s.Start()
	defer s.Stop()

	stats := s.GetJobStats()["hourly"]
	require.NotNil(t, stats.NextRun)
	assert.True(t, stats.NextRun.After(time.Now()))
	assert.Equal(t, "0 0 * * * *", stats.Schedule)
}

func TestJobHistory(t *testing.T) {
	var h JobHistory
	assert.Equal(t, 0.0, h.GetSuccessRate())
	assert.Empty(t, h.GetLatestResults(5))

	for i := 0; i < maxHistory+10; i++ {
		h.AddResult(JobResult{JobName: "x", Success: i%2 == 0})
	}
	assert.Len(t, h.Results, maxHistory)
	assert.Len(t, h.GetLatestResults(3), 3)
	assert.Len(t, h.GetFailedResults(), maxHistory/2)
	assert.InDelta(t, 0.5, h.GetSuccessRate(), 1e-9)
}
