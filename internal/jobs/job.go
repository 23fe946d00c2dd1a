package jobs

import (
	"context"

	"github.com/google/uuid"
)

// Job represents a unit of background work to be processed
type Job interface {
	// ID returns the job's unique identifier
	ID() uuid.UUID

	// Type returns the job type identifier
	Type() string

	// Execute runs the job logic
	Execute(ctx context.Context) error
}

// JobQueueReader provides read-only access to the job channel
// allowing workers to consume jobs without the ability to enqueue
type JobQueueReader interface {
	// GetChannel returns a read-only channel for consuming jobs
	GetChannel() <-chan Job
}

// JobQueueWriter provides write access to the job queue
// allowing services to enqueue jobs for processing
type JobQueueWriter interface {
	// Enqueue adds a job to the queue for processing
	// Returns an error if the queue is full or closed
	Enqueue(job Job) error

	// Close closes the job queue, preventing further job submission
	Close()
}

// FuncJob adapts a function to Job.
type FuncJob struct {
	id      uuid.UUID
	jobType string
	fn      func(ctx context.Context) error
}

// NewFuncJob creates a job of the given type running fn.
func NewFuncJob(jobType string, fn func(ctx context.Context) error) *FuncJob {
	return &FuncJob{id: uuid.New(), jobType: jobType, fn: fn}
}

func (j *FuncJob) ID() uuid.UUID                     { return j.id }
func (j *FuncJob) Type() string                      { return j.jobType }
func (j *FuncJob) Execute(ctx context.Context) error { return j.fn(ctx) }
