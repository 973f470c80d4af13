package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/payroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_AddJobRejectsInvalid(t *testing.T) {
	s := NewScheduler()
	noop := func(context.Context) error { return nil }

	require.NoError(t, s.AddJob("a", time.Minute, noop))
	assert.Error(t, s.AddJob("a", time.Minute, noop))
	assert.Error(t, s.AddJob("b", 0, noop))
}

func TestScheduler_StartRunsImmediatelyAndStops(t *testing.T) {
	s := NewScheduler()
	var runs atomic.Int32
	require.NoError(t, s.AddJob("count", time.Hour, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}))

	s.Start()
	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 10*time.Millisecond)
	s.Stop()

	assert.Error(t, s.AddJob("late", time.Hour, func(context.Context) error { return nil }))
}

func TestScheduler_RunOnceContinuesAfterFailure(t *testing.T) {
	s := NewScheduler()
	var second bool
	require.NoError(t, s.AddJob("fails", time.Hour, func(context.Context) error { return errors.New("boom") }))
	require.NoError(t, s.AddJob("second", time.Hour, func(context.Context) error { second = true; return nil }))

	s.RunOnce(context.Background())
	assert.True(t, second)
}

type stubPayslipService struct {
	payroll.PayslipService
	sent int
	err  error
}

func (s *stubPayslipService) RetryFailed(ctx context.Context) (int, error) {
	return s.sent, s.err
}

func TestPayslipJobs(t *testing.T) {
	s := NewScheduler()
	jobs := NewPayslipJobs(&stubPayslipService{sent: 2}, time.Minute)
	require.NoError(t, jobs.RegisterJobs(s))
	assert.Error(t, jobs.RegisterJobs(s))

	assert.NoError(t, jobs.RetryFailedPayslips(context.Background()))

	failing := NewPayslipJobs(&stubPayslipService{err: errors.New("db down")}, time.Minute)
	assert.ErrorContains(t, failing.RetryFailedPayslips(context.Background()), "db down")
}
