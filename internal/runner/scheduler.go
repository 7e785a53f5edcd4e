package runner

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Validator executes a single validation pass.
type Validator interface {
	RunOnce(context.Context) error
}

// Scheduler re-validates at a fixed interval and whenever the reloads
// channel fires. A nil Reloads channel and a zero Interval each disable
// that trigger.
type Scheduler struct {
	Runner   Validator
	Interval time.Duration
	Reloads  <-chan struct{}
	Logger   *slog.Logger
}

func (s *Scheduler) Run(ctx context.Context) {
	if s.Runner == nil {
		return
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Run immediately at startup.
	s.runOnce(ctx, logger, "initial")

	var tick <-chan time.Time
	if s.Interval > 0 {
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			s.runOnce(ctx, logger, "scheduled")
		case <-s.Reloads:
			logger.Info("rule table changed, revalidating")
			s.runOnce(ctx, logger, "reload")
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, logger *slog.Logger, trigger string) {
	err := s.Runner.RunOnce(ctx)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
	case errors.Is(err, ErrRunInProgress):
		logger.Info("validation already running, skipping", "trigger", trigger)
	default:
		logger.Error("validation run failed", "trigger", trigger, "error", err)
	}
}
