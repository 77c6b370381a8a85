package usecase

import (
	"context"
	"log/slog"
	"time"

	"FinNewsAnalyzer/internal/ports"
)

// Scheduler wires the ticking driver with the batch use case.
type Scheduler struct {
	driver ports.Scheduler
	runner *BatchRunner
	window time.Duration
	logger *slog.Logger
}

// NewScheduler returns a helper to start and stop recurring batches. Each
// run fetches articles published within window before the trigger time.
func NewScheduler(driver ports.Scheduler, runner *BatchRunner, window time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{driver: driver, runner: runner, window: window, logger: logger}
}

// Start registers the batch runner with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.runner == nil {
		return nil
	}

	job := func(trigger time.Time) {
		rep, err := s.runner.Run(ctx, trigger.Add(-s.window))
		if err != nil {
			s.logger.Error("scheduled batch failed", "error", err, "batch_id", rep.BatchID)
			return
		}
		s.logger.Info("scheduled batch done", "batch_id", rep.BatchID,
			"processed", rep.ProcessedCount, "failed", rep.FailedCount)
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
