// Package scheduler runs the periodic ledger jobs inside `serve`.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/malkhana/internal/ports/primary"
)

// Sweeper is the notification operation the scheduler drives.
type Sweeper interface {
	Sweep(ctx context.Context, threshold time.Duration) (*primary.SweepResult, error)
}

// Reconciler closes cases whose closure was missed.
type Reconciler interface {
	ReconcileClosures(ctx context.Context) (int, error)
}

// Scheduler runs a sweep followed by a closure reconcile on every tick.
type Scheduler struct {
	sweeper    Sweeper
	reconciler Reconciler
	interval   time.Duration
	threshold  time.Duration
	logger     *slog.Logger
}

// New creates a Scheduler.
func New(sweeper Sweeper, reconciler Reconciler, interval, threshold time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		sweeper:    sweeper,
		reconciler: reconciler,
		interval:   interval,
		threshold:  threshold,
		logger:     logger,
	}
}

// Run ticks until ctx is done. The first run happens immediately. A
// non-positive interval disables the loop. Job failures are logged and do
// not stop the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		s.logger.InfoContext(ctx, "scheduler disabled")
		<-ctx.Done()
		return nil
	}

	s.logger.InfoContext(ctx, "scheduler started", "interval", s.interval, "threshold", s.threshold)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.RunOnce(ctx)
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "scheduler stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce performs one sweep and one reconcile.
func (s *Scheduler) RunOnce(ctx context.Context) {
	if _, err := s.sweeper.Sweep(ctx, s.threshold); err != nil && ctx.Err() == nil {
		s.logger.ErrorContext(ctx, "scheduled sweep failed", "error", err)
	}
	if _, err := s.reconciler.ReconcileClosures(ctx); err != nil && ctx.Err() == nil {
		s.logger.ErrorContext(ctx, "scheduled reconcile failed", "error", err)
	}
}
