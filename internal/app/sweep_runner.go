package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/teamsuite/workflow-core/internal/ports"
)

// SweepRunner drives the Sweeper on a fixed interval. Both scans run once at
// startup and then on every tick until the context is cancelled. Scan errors
// are logged and the runner keeps going; a failed run is retried naturally on
// the next tick.
type SweepRunner struct {
	sweeper  ports.Sweeper
	interval time.Duration
	logger   *slog.Logger
}

// NewSweepRunner creates a SweepRunner. A nil logger defaults to a no-op
// logger.
func NewSweepRunner(sweeper ports.Sweeper, interval time.Duration, logger *slog.Logger) *SweepRunner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SweepRunner{
		sweeper:  sweeper,
		interval: interval,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled.
func (r *SweepRunner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("sweep runner stopped")
			return
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

func (r *SweepRunner) runOnce(ctx context.Context) {
	now := time.Now()

	if _, err := r.sweeper.SweepOverdue(ctx, now); err != nil {
		r.logger.ErrorContext(ctx, "overdue sweep failed", slog.Any("error", err))
	}
	if _, err := r.sweeper.SweepEndingSprints(ctx, now); err != nil {
		r.logger.ErrorContext(ctx, "sprint-ending sweep failed", slog.Any("error", err))
	}
}
