package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/lmeyer/fedidigest/internal/builder"
)

// Scheduler rebuilds the digest on a fixed interval in daemon mode.
// Runs never overlap: the loop is strictly sequential.
type Scheduler struct {
	builder  *builder.Builder
	interval time.Duration
}

// New creates a scheduler.
func New(b *builder.Builder, interval time.Duration) *Scheduler {
	if interval == 0 {
		interval = 6 * time.Hour
	}
	return &Scheduler{builder: b, interval: interval}
}

// Run starts the build loop. Blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Build immediately on start.
	slog.Info("scheduler: initial build")
	s.build(ctx)

	slog.Info("scheduler: running", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("scheduler: stopped")
			return ctx.Err()
		case <-ticker.C:
			slog.Info("scheduler: building digest")
			s.build(ctx)
		}
	}
}

func (s *Scheduler) build(ctx context.Context) {
	if _, err := s.builder.Build(ctx); err != nil {
		// Previous digest stays published; try again next tick.
		slog.Error("scheduler: build failed", "err", err)
	}
}
