package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Submitter accepts jobs for asynchronous execution.
type Submitter interface {
	Submit(ctx context.Context, job Job) error
}

// Scheduler submits a fresh job from factory every interval until its
// context is cancelled.
type Scheduler struct {
	interval  time.Duration
	factory   func() Job
	submitter Submitter
	logger    *slog.Logger
}

// NewScheduler creates a Scheduler. interval must be positive.
func NewScheduler(interval time.Duration, factory func() Job, submitter Submitter, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		interval:  interval,
		factory:   factory,
		submitter: submitter,
		logger:    logger.With("component", "job_scheduler"),
	}
}

// Run blocks until ctx is done. A tick that finds the queue full or closed
// is skipped with a warning.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		return errors.New("scheduler interval must be positive")
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("scheduler started", "interval", s.interval.String())
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return nil
		case <-ticker.C:
			job := s.factory()
			if err := s.submitter.Submit(ctx, job); err != nil {
				s.logger.Warn("failed to submit scheduled job",
					"job_type", job.Type(),
					"error", err)
			}
		}
	}
}
