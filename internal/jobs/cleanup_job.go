package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// JobTypeTaskCleanup identifies the retention sweep.
const JobTypeTaskCleanup = "task_cleanup"

// TaskCleaner deletes tasks older than the retention window.
type TaskCleaner interface {
	CleanupOldTasks(ctx context.Context, days int) (int64, error)
}

// CleanupJob deletes tasks created more than RetentionDays ago.
type CleanupJob struct {
	id            uuid.UUID
	cleaner       TaskCleaner
	retentionDays int
	logger        *slog.Logger
}

var _ Job = (*CleanupJob)(nil)

// NewCleanupJob creates a single run of the retention sweep.
func NewCleanupJob(cleaner TaskCleaner, retentionDays int, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		id:            uuid.New(),
		cleaner:       cleaner,
		retentionDays: retentionDays,
		logger:        logger,
	}
}

func (j *CleanupJob) ID() uuid.UUID { return j.id }

func (j *CleanupJob) Type() string { return JobTypeTaskCleanup }

// Execute implements Job.
func (j *CleanupJob) Execute(ctx context.Context) error {
	deleted, err := j.cleaner.CleanupOldTasks(ctx, j.retentionDays)
	if err != nil {
		return fmt.Errorf("task cleanup: %w", err)
	}
	j.logger.Info("old tasks cleaned up",
		"job_id", j.id,
		"retention_days", j.retentionDays,
		"deleted", deleted)
	return nil
}

// CleanupJobFactory returns a factory for Scheduler.
func CleanupJobFactory(cleaner TaskCleaner, retentionDays int, logger *slog.Logger) func() Job {
	return func() Job {
		return NewCleanupJob(cleaner, retentionDays, logger)
	}
}
