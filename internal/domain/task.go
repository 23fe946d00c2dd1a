package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Task validation errors
var (
	ErrTaskIDEmpty          = errors.New("task ID cannot be empty")
	ErrTaskUserIDEmpty      = errors.New("task user ID cannot be empty")
	ErrTaskTitleEmpty       = errors.New("task title cannot be empty")
	ErrTaskTitleTooLong     = errors.New("task title must not exceed 255 characters")
	ErrTaskDescriptionLong  = errors.New("task description must not exceed 1000 characters")
	ErrInvalidTaskStatus    = errors.New("status must be either pending or completed")
	ErrInvalidTaskPriority  = errors.New("priority must be low, medium, or high")
	ErrInvalidTaskOrder     = errors.New("order must be 0 or greater")
	ErrEmptyPriorityList    = errors.New("priority list cannot be empty")
	ErrInvalidSortField     = errors.New("invalid sort field")
	ErrInvalidSortDirection = errors.New("sort direction must be asc or desc")
)

const (
	// MaxTitleLength is the maximum number of characters in a task title.
	MaxTitleLength = 255

	// MaxDescriptionLength is the maximum number of characters in a task description.
	MaxDescriptionLength = 1000
)

// TaskStatus is the completion state of a task.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

// IsValid reports whether s is a known status.
func (s TaskStatus) IsValid() bool {
	return s == TaskStatusPending || s == TaskStatusCompleted
}

// TaskPriority is the urgency of a task.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// IsValid reports whether p is a known priority.
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// Rank orders priorities from most to least urgent: high=1, medium=2, low=3.
func (p TaskPriority) Rank() int {
	switch p {
	case TaskPriorityHigh:
		return 1
	case TaskPriorityMedium:
		return 2
	case TaskPriorityLow:
		return 3
	}
	return 4
}

// ParseTaskPriorities parses a single priority or a comma separated list
// such as "high, low". Blank entries are ignored; duplicates are dropped.
func ParseTaskPriorities(raw string) ([]TaskPriority, error) {
	var out []TaskPriority
	seen := make(map[TaskPriority]bool)
	for _, part := range strings.Split(raw, ",") {
		p := TaskPriority(strings.ToLower(strings.TrimSpace(part)))
		if p == "" {
			continue
		}
		if !p.IsValid() {
			return nil, NewValidationError("priority", "must be one of: low, medium, high", ErrInvalidTaskPriority)
		}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, NewValidationError("priority", "cannot be empty", ErrEmptyPriorityList)
	}
	return out, nil
}

// Task is a user-owned to-do item. Order is the position of the task in
// its owner's list; lists are displayed in ascending order.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	UserID      uuid.UUID    `json:"user_id"`
	Title       string       `json:"title"`
	Description *string      `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	Order       int          `json:"order"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// NewTask creates a pending, medium-priority task for userID. The order is
// left at zero; the store appends the task at the end of the owner's list.
func NewTask(userID uuid.UUID, title string) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     strings.TrimSpace(title),
		Status:    TaskStatusPending,
		Priority:  TaskPriorityMedium,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}
	if t.UserID == uuid.Nil {
		return ErrTaskUserIDEmpty
	}
	if t.Title == "" {
		return NewValidationError("title", "is required", ErrTaskTitleEmpty)
	}
	if utf8.RuneCountInString(t.Title) > MaxTitleLength {
		return NewValidationError("title", "must not exceed 255 characters", ErrTaskTitleTooLong)
	}
	if t.Description != nil && utf8.RuneCountInString(*t.Description) > MaxDescriptionLength {
		return NewValidationError("description", "must not exceed 1000 characters", ErrTaskDescriptionLong)
	}
	if !t.Status.IsValid() {
		return NewValidationError("status", "must be either pending or completed", ErrInvalidTaskStatus)
	}
	if !t.Priority.IsValid() {
		return NewValidationError("priority", "must be low, medium, or high", ErrInvalidTaskPriority)
	}
	if t.Order < 0 {
		return NewValidationError("order", "must be 0 or greater", ErrInvalidTaskOrder)
	}
	return nil
}

// IsOwnedBy reports whether userID owns the task.
func (t *Task) IsOwnedBy(userID uuid.UUID) bool {
	return t.UserID == userID
}

// ToggleStatus flips the task between pending and completed.
func (t *Task) ToggleStatus() {
	if t.Status == TaskStatusPending {
		t.Status = TaskStatusCompleted
	} else {
		t.Status = TaskStatusPending
	}
	t.UpdatedAt = time.Now().UTC()
}

// TaskUpdate is a partial update of a task. Nil fields are left untouched.
// ClearDescription sets the description to NULL.
type TaskUpdate struct {
	Title            *string
	Description      *string
	ClearDescription bool
	Status           *TaskStatus
	Priority         *TaskPriority
	Order            *int
}

// IsEmpty reports whether the update would change nothing.
func (u TaskUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && !u.ClearDescription &&
		u.Status == nil && u.Priority == nil && u.Order == nil
}

// Apply copies the set fields onto t and validates the result. On
// validation failure t is left unchanged.
func (u TaskUpdate) Apply(t *Task) error {
	next := *t
	if u.Title != nil {
		next.Title = strings.TrimSpace(*u.Title)
	}
	if u.ClearDescription {
		next.Description = nil
	} else if u.Description != nil {
		d := *u.Description
		next.Description = &d
	}
	if u.Status != nil {
		next.Status = *u.Status
	}
	if u.Priority != nil {
		next.Priority = *u.Priority
	}
	if u.Order != nil {
		next.Order = *u.Order
	}
	if err := next.Validate(); err != nil {
		return err
	}
	next.UpdatedAt = time.Now().UTC()
	*t = next
	return nil
}
