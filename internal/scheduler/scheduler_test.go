package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/malkhana/internal/logging"
	"github.com/example/malkhana/internal/ports/primary"
)

type countingJobs struct {
	sweeps     atomic.Int32
	reconciles atomic.Int32
	threshold  atomic.Int64
	fail       bool
}

func (c *countingJobs) Sweep(ctx context.Context, threshold time.Duration) (*primary.SweepResult, error) {
	c.sweeps.Add(1)
	c.threshold.Store(int64(threshold))
	if c.fail {
		return nil, errors.New("store locked")
	}
	return &primary.SweepResult{}, nil
}

func (c *countingJobs) ReconcileClosures(ctx context.Context) (int, error) {
	c.reconciles.Add(1)
	return 0, nil
}

func TestRun_TicksUntilCancelled(t *testing.T) {
	jobs := &countingJobs{fail: true}
	s := New(jobs, jobs, 5*time.Millisecond, 24*time.Hour, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return jobs.sweeps.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}

	assert.GreaterOrEqual(t, jobs.reconciles.Load(), int32(3), "a failed sweep must not skip the reconcile")
	assert.Equal(t, int64(24*time.Hour), jobs.threshold.Load())
}

func TestRun_DisabledInterval(t *testing.T) {
	jobs := &countingJobs{}
	s := New(jobs, jobs, 0, time.Hour, logging.Discard())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	require.NoError(t, s.Run(ctx))
	assert.Zero(t, jobs.sweeps.Load())
}
