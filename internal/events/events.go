package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType names what happened to a user's tasks.
type EventType string

const (
	TaskCreated   EventType = "task.created"
	TaskUpdated   EventType = "task.updated"
	TaskDeleted   EventType = "task.deleted"
	TaskReordered EventType = "task.reordered"
	TaskCleanup   EventType = "task.cleanup"
)

// TaskEvent records a change to one user's tasks.
type TaskEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	Type EventType `json:"type"`

	// UserID owns every task in TaskIDs.
	UserID uuid.UUID `json:"user_id"`

	TaskIDs []uuid.UUID `json:"task_ids,omitempty"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// NewTaskEvent creates a TaskEvent stamped with a fresh ID and the current time.
func NewTaskEvent(eventType EventType, userID uuid.UUID, taskIDs ...uuid.UUID) *TaskEvent {
	return &TaskEvent{
		ID:        uuid.New(),
		Type:      eventType,
		UserID:    userID,
		TaskIDs:   taskIDs,
		CreatedAt: time.Now().UTC(),
	}
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *TaskEvent) error
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(ctx context.Context, event *TaskEvent) error

// HandleEvent calls f(ctx, event).
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *TaskEvent) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *TaskEvent) error
}
