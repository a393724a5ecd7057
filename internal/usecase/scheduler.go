package usecase

import (
	"context"
	"time"

	"GameScanner/internal/ports"
)

// Scheduler binds the cron driver to a full rescan job for watch mode.
type Scheduler struct {
	driver ports.Scheduler
	run    func(context.Context, time.Time)
}

// NewScheduler returns a helper to start/stop recurring rescans.
func NewScheduler(driver ports.Scheduler, run func(context.Context, time.Time)) *Scheduler {
	return &Scheduler{driver: driver, run: run}
}

// Start registers the rescan job with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.run == nil {
		return nil
	}

	job := func(trigger time.Time) {
		s.run(ctx, trigger)
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
