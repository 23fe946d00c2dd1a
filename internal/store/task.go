package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/taskboard/taskboard-api/internal/domain"
)

// TaskStore defines the interface for task data persistence.
// Every listing is scoped to a single owner.
type TaskStore interface {
	// Create saves a new task with the order it already carries.
	// Returns validation errors from the domain Task if data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// Append saves a new task at the end of its owner's list, setting
	// task.Order to one past the owner's current maximum.
	Append(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Update persists every mutable field of the task and refreshes
	// task.UpdatedAt.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns every task of the user matching the filter, ignoring
	// its pagination fields.
	List(ctx context.Context, userID uuid.UUID, filter domain.TaskFilter) ([]domain.Task, error)

	// ListPage returns one page of the user's tasks matching the filter.
	ListPage(ctx context.Context, userID uuid.UUID, filter domain.TaskFilter) (*domain.Page[domain.Task], error)

	// Owners maps each existing task among ids to its owner. IDs that do
	// not exist are absent from the result.
	Owners(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]uuid.UUID, error)

	// Reorder sets the order of ids[i] to i+1 for tasks owned by userID.
	// Callers run it inside a transaction so the new sequence is applied
	// atomically.
	Reorder(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error

	// Statistics summarises the user's tasks. CompletionRate is left to
	// the caller.
	Statistics(ctx context.Context, userID uuid.UUID) (*domain.TaskStatistics, error)

	// MatchingTitles returns up to limit distinct titles of the user's tasks
	// containing query, case-insensitively, in alphabetical order.
	MatchingTitles(ctx context.Context, userID uuid.UUID, query string, limit int) ([]string, error)

	// MatchingDescriptions returns the non-empty descriptions of the user's
	// tasks containing query, case-insensitively.
	MatchingDescriptions(ctx context.Context, userID uuid.UUID, query string) ([]string, error)

	// DeleteOlderThan removes every task created before cutoff and returns
	// the number removed together with the distinct owners affected.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, []uuid.UUID, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
