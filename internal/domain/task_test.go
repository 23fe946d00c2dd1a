package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewTask(t *testing.T) {
	userID := uuid.New()
	task, err := NewTask(userID, "  Buy milk ")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if task.Title != "Buy milk" {
		t.Errorf("Expected trimmed title, got %q", task.Title)
	}
	if task.Status != TaskStatusPending {
		t.Errorf("Expected pending status, got %s", task.Status)
	}
	if task.Priority != TaskPriorityMedium {
		t.Errorf("Expected medium priority, got %s", task.Priority)
	}
	if !task.IsOwnedBy(userID) || task.IsOwnedBy(uuid.New()) {
		t.Error("Ownership check is wrong")
	}

	if _, err := NewTask(userID, "   "); !errors.Is(err, ErrTaskTitleEmpty) {
		t.Errorf("Expected %v, got %v", ErrTaskTitleEmpty, err)
	}
	if _, err := NewTask(uuid.Nil, "x"); !errors.Is(err, ErrTaskUserIDEmpty) {
		t.Errorf("Expected %v, got %v", ErrTaskUserIDEmpty, err)
	}
}

func TestTaskValidate(t *testing.T) {
	long := strings.Repeat("d", MaxDescriptionLength+1)
	base := func() Task {
		return Task{
			ID:       uuid.New(),
			UserID:   uuid.New(),
			Title:    "Title",
			Status:   TaskStatusPending,
			Priority: TaskPriorityLow,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Task)
		wantErr error
		field   string
	}{
		{"valid", func(*Task) {}, nil, ""},
		{"title too long", func(t *Task) { t.Title = strings.Repeat("t", 256) }, ErrTaskTitleTooLong, "title"},
		{"description too long", func(t *Task) { t.Description = &long }, ErrTaskDescriptionLong, "description"},
		{"bad status", func(t *Task) { t.Status = "done" }, ErrInvalidTaskStatus, "status"},
		{"bad priority", func(t *Task) { t.Priority = "urgent" }, ErrInvalidTaskPriority, "priority"},
		{"negative order", func(t *Task) { t.Order = -1 }, ErrInvalidTaskOrder, "order"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := base()
			tt.mutate(&task)
			err := task.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got %v", tt.wantErr, err)
			}
			if !errors.Is(err, ErrValidation) {
				t.Errorf("Expected error to match ErrValidation")
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) || vErr.Field != tt.field {
				t.Errorf("Expected validation error on field %q, got %v", tt.field, err)
			}
		})
	}
}

func TestToggleStatus(t *testing.T) {
	task, err := NewTask(uuid.New(), "toggle me")
	if err != nil {
		t.Fatal(err)
	}
	task.ToggleStatus()
	if task.Status != TaskStatusCompleted {
		t.Errorf("Expected completed, got %s", task.Status)
	}
	task.ToggleStatus()
	if task.Status != TaskStatusPending {
		t.Errorf("Expected pending, got %s", task.Status)
	}
}

func TestTaskUpdateApply(t *testing.T) {
	desc := "original"
	task := &Task{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		Title:       "Original",
		Description: &desc,
		Status:      TaskStatusPending,
		Priority:    TaskPriorityLow,
		Order:       3,
	}

	title := " Renamed "
	status := TaskStatusCompleted
	order := 7
	update := TaskUpdate{Title: &title, Status: &status, Order: &order}
	if update.IsEmpty() {
		t.Fatal("Expected update to be non-empty")
	}
	if err := update.Apply(task); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if task.Title != "Renamed" || task.Status != TaskStatusCompleted || task.Order != 7 {
		t.Errorf("Update not applied: %+v", task)
	}
	if task.Description == nil || *task.Description != "original" {
		t.Error("Expected description to be untouched")
	}
	if task.Priority != TaskPriorityLow {
		t.Error("Expected priority to be untouched")
	}

	if err := (TaskUpdate{ClearDescription: true}).Apply(task); err != nil {
		t.Fatal(err)
	}
	if task.Description != nil {
		t.Error("Expected description to be cleared")
	}

	bad := TaskPriority("urgent")
	before := *task
	if err := (TaskUpdate{Priority: &bad}).Apply(task); !errors.Is(err, ErrInvalidTaskPriority) {
		t.Fatalf("Expected %v, got %v", ErrInvalidTaskPriority, err)
	}
	if *task != before {
		t.Error("Expected task to be unchanged after failed update")
	}

	if !(TaskUpdate{}).IsEmpty() {
		t.Error("Expected zero update to be empty")
	}
}

func TestParseTaskPriorities(t *testing.T) {
	got, err := ParseTaskPriorities("high, LOW,high")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(got) != 2 || got[0] != TaskPriorityHigh || got[1] != TaskPriorityLow {
		t.Errorf("Unexpected priorities %v", got)
	}

	if _, err := ParseTaskPriorities("high,urgent"); !errors.Is(err, ErrInvalidTaskPriority) {
		t.Errorf("Expected %v, got %v", ErrInvalidTaskPriority, err)
	}
	if _, err := ParseTaskPriorities(" , "); !errors.Is(err, ErrEmptyPriorityList) {
		t.Errorf("Expected %v, got %v", ErrEmptyPriorityList, err)
	}
}

func TestPriorityRank(t *testing.T) {
	if !(TaskPriorityHigh.Rank() < TaskPriorityMedium.Rank() && TaskPriorityMedium.Rank() < TaskPriorityLow.Rank()) {
		t.Error("Expected high < medium < low rank")
	}
}
