package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubJob struct {
	name string
	err  error
	runs int
}

func (j *stubJob) Name() string        { return j.name }
func (j *stubJob) Description() string { return "stub job" }

func (j *stubJob) Run(_ context.Context) error {
	j.runs++
	return j.err
}

func TestRegister_DuplicateRejected(t *testing.T) {
	s := NewScheduler(DefaultSchedulerConfig())
	job := &stubJob{name: "sweep"}

	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Minute)))
	err := s.Register(job, NewIntervalSchedule(time.Minute))
	assert.ErrorIs(t, err, ErrJobAlreadyExists)
}

func TestRegister_NilGuards(t *testing.T) {
	s := NewScheduler(DefaultSchedulerConfig())

	assert.ErrorIs(t, s.Register(nil, NewIntervalSchedule(time.Minute)), ErrNilJob)
	assert.ErrorIs(t, s.Register(&stubJob{name: "sweep"}, nil), ErrNilSchedule)
}

func TestRunNow_RecordsResult(t *testing.T) {
	s := NewScheduler(DefaultSchedulerConfig())
	job := &stubJob{name: "sweep"}
	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Hour)))

	res, err := s.RunNow(context.Background(), "sweep")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 1, job.runs)

	jobs := s.ListJobs()
	require.Len(t, jobs, 1)
	require.NotNil(t, jobs[0].LastResult)
	assert.True(t, jobs[0].LastResult.Success)
}

func TestRunNow_FailureCountsInMetrics(t *testing.T) {
	s := NewScheduler(DefaultSchedulerConfig())
	job := &stubJob{name: "sweep", err: errors.New("db down")}
	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Hour)))

	_, err := s.RunNow(context.Background(), "sweep")
	require.Error(t, err)

	snap := s.GetMetrics().Snapshot()
	assert.Equal(t, int64(1), snap.TotalExecutions)
	assert.Equal(t, int64(1), snap.TotalFailures)
}

func TestRunNow_UnknownJob(t *testing.T) {
	s := NewScheduler(DefaultSchedulerConfig())
	_, err := s.RunNow(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestHistoryTrimmedToConfiguredSize(t *testing.T) {
	cfg := DefaultSchedulerConfig()
	cfg.MaxHistorySize = 3
	s := NewScheduler(cfg)
	job := &stubJob{name: "sweep"}
	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Hour)))

	for i := 0; i < 5; i++ {
		_, err := s.RunNow(context.Background(), "sweep")
		require.NoError(t, err)
	}

	assert.Len(t, s.runHistory, 3)
	assert.Equal(t, 5, job.runs)
}

func TestIntervalSchedule(t *testing.T) {
	sched := NewIntervalSchedule(15 * time.Minute)
	base := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, base.Add(15*time.Minute), sched.Next(base))
	assert.Equal(t, "@every 15m0s", sched.String())

	// интервал короче тика поднимается до секунды
	assert.Equal(t, time.Second, NewIntervalSchedule(0).Interval)
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(DefaultSchedulerConfig())
	require.NoError(t, s.Register(&stubJob{name: "sweep"}, NewIntervalSchedule(time.Hour)))

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	assert.ErrorIs(t, s.Start(context.Background()), ErrSchedulerAlreadyRunning)

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	assert.ErrorIs(t, s.Stop(), ErrSchedulerNotRunning)
}

func TestCronExpression_Next(t *testing.T) {
	expr, err := ParseCronExpression("0 2 * * *")
	require.NoError(t, err)

	after := time.Date(2024, time.March, 1, 3, 0, 0, 0, time.UTC)
	next := expr.Next(after)
	assert.Equal(t, time.Date(2024, time.March, 2, 2, 0, 0, 0, time.UTC), next)
	assert.Equal(t, "0 2 * * *", expr.String())
}
