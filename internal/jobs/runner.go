package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// RunnerConfig holds configuration for the job runner
type RunnerConfig struct {
	// WorkerCount determines how many concurrent workers process jobs
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory job queue
	QueueSize int
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount: 2,
		QueueSize:   100,
	}
}

// Runner owns a job queue and the worker pool draining it.
type Runner struct {
	queue   *JobQueue
	pool    *WorkerPool
	logger  *slog.Logger
	startMu sync.Mutex
	started bool
}

// NewRunner creates a Runner. Call Start before submitting work.
func NewRunner(config RunnerConfig, logger *slog.Logger) *Runner {
	logger = logger.With("component", "job_runner")
	queue := NewJobQueue(config.QueueSize, logger)
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: config.WorkerCount}, logger)
	pool.SetErrorHandler(func(job Job, err error) {
		logger.Warn("background job failed",
			"job_id", job.ID(),
			"job_type", job.Type(),
			"error", err)
	})

	return &Runner{
		queue:  queue,
		pool:   pool,
		logger: logger,
	}
}

// Start launches the workers. Calling it twice is an error.
func (r *Runner) Start() error {
	r.startMu.Lock()
	defer r.startMu.Unlock()

	if r.started {
		return fmt.Errorf("job runner already started")
	}
	r.started = true
	r.pool.Start()
	return nil
}

// Submit queues a job. It returns ErrQueueFull or ErrQueueClosed rather
// than blocking.
func (r *Runner) Submit(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.queue.Enqueue(job)
}

// Stop closes the queue and waits for queued jobs to finish. If ctx
// expires first, running jobs are cancelled and Stop returns ctx.Err()
// once the workers have exited.
func (r *Runner) Stop(ctx context.Context) error {
	r.queue.Close()

	done := make(chan struct{})
	go func() {
		r.pool.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("job runner stopped")
		return nil
	case <-ctx.Done():
		r.logger.Warn("job runner stop timed out, cancelling running jobs")
		r.pool.Abort()
		<-done
		return ctx.Err()
	}
}
