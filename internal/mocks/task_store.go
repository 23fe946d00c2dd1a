package mocks

import (
	"context"
	"database/sql"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/taskboard/taskboard-api/internal/domain"
	"github.com/taskboard/taskboard-api/internal/store"
)

// MockTaskStore implements store.TaskStore for testing. The default
// implementation keeps tasks in memory; List and ListPage honour only the
// status filter and return tasks in order.
type MockTaskStore struct {
	CreateFn               func(ctx context.Context, task *domain.Task) error
	AppendFn               func(ctx context.Context, task *domain.Task) error
	GetByIDFn              func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	UpdateFn               func(ctx context.Context, task *domain.Task) error
	DeleteFn               func(ctx context.Context, id uuid.UUID) error
	ListFn                 func(ctx context.Context, userID uuid.UUID, filter domain.TaskFilter) ([]domain.Task, error)
	ListPageFn             func(ctx context.Context, userID uuid.UUID, filter domain.TaskFilter) (*domain.Page[domain.Task], error)
	OwnersFn               func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]uuid.UUID, error)
	ReorderFn              func(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error
	StatisticsFn           func(ctx context.Context, userID uuid.UUID) (*domain.TaskStatistics, error)
	MatchingTitlesFn       func(ctx context.Context, userID uuid.UUID, query string, limit int) ([]string, error)
	MatchingDescriptionsFn func(ctx context.Context, userID uuid.UUID, query string) ([]string, error)
	DeleteOlderThanFn      func(ctx context.Context, cutoff time.Time) (int64, []uuid.UUID, error)

	mu    sync.Mutex
	Tasks map[uuid.UUID]*domain.Task
	// Calls counts invocations per method name.
	Calls map[string]int
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// NewMockTaskStore creates a mock seeded with tasks.
func NewMockTaskStore(tasks ...*domain.Task) *MockTaskStore {
	m := &MockTaskStore{
		Tasks: make(map[uuid.UUID]*domain.Task),
		Calls: make(map[string]int),
	}
	for _, t := range tasks {
		m.Tasks[t.ID] = t
	}
	return m
}

func (m *MockTaskStore) record(name string) {
	m.mu.Lock()
	m.Calls[name]++
	m.mu.Unlock()
}

// CallCount returns how many times the named method ran.
func (m *MockTaskStore) CallCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[name]
}

func (m *MockTaskStore) userTasks(userID uuid.UUID, filter domain.TaskFilter) []domain.Task {
	out := make([]domain.Task, 0)
	for _, t := range m.Tasks {
		if t.UserID != userID {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, t.Status) {
			continue
		}
		out = append(out, *t)
	}
	slices.SortFunc(out, func(a, b domain.Task) int {
		if a.Order != b.Order {
			return a.Order - b.Order
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return out
}

// Create implements store.TaskStore
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	m.record("Create")
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}
	if err := task.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Tasks[task.ID] = task
	return nil
}

// Append implements store.TaskStore
func (m *MockTaskStore) Append(ctx context.Context, task *domain.Task) error {
	m.record("Append")
	if m.AppendFn != nil {
		return m.AppendFn(ctx, task)
	}
	if err := task.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	maxOrder := 0
	for _, t := range m.Tasks {
		if t.UserID == task.UserID && t.Order > maxOrder {
			maxOrder = t.Order
		}
	}
	task.Order = maxOrder + 1
	m.Tasks[task.ID] = task
	return nil
}

// GetByID implements store.TaskStore
func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	m.record("GetByID")
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.Tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	cp := *t
	return &cp, nil
}

// Update implements store.TaskStore
func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	m.record("Update")
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	cp := *task
	m.Tasks[task.ID] = &cp
	return nil
}

// Delete implements store.TaskStore
func (m *MockTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.record("Delete")
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(m.Tasks, id)
	return nil
}

// List implements store.TaskStore
func (m *MockTaskStore) List(ctx context.Context, userID uuid.UUID, filter domain.TaskFilter) ([]domain.Task, error) {
	m.record("List")
	if m.ListFn != nil {
		return m.ListFn(ctx, userID, filter)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userTasks(userID, filter), nil
}

// ListPage implements store.TaskStore
func (m *MockTaskStore) ListPage(
	ctx context.Context,
	userID uuid.UUID,
	filter domain.TaskFilter,
) (*domain.Page[domain.Task], error) {
	m.record("ListPage")
	if m.ListPageFn != nil {
		return m.ListPageFn(ctx, userID, filter)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	all := m.userTasks(userID, filter)
	start := min(filter.Offset(), len(all))
	end := min(start+filter.PerPage, len(all))
	items := all[start:end]
	return &domain.Page[domain.Task]{
		Items: items,
		Meta:  domain.NewPageMeta(filter.Page, filter.PerPage, len(all), len(items)),
	}, nil
}

// Owners implements store.TaskStore
func (m *MockTaskStore) Owners(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	m.record("Owners")
	if m.OwnersFn != nil {
		return m.OwnersFn(ctx, ids)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[uuid.UUID]uuid.UUID, len(ids))
	for _, id := range ids {
		if t, ok := m.Tasks[id]; ok {
			out[id] = t.UserID
		}
	}
	return out, nil
}

// Reorder implements store.TaskStore
func (m *MockTaskStore) Reorder(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	m.record("Reorder")
	if m.ReorderFn != nil {
		return m.ReorderFn(ctx, userID, ids)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, id := range ids {
		if t, ok := m.Tasks[id]; ok && t.UserID == userID {
			t.Order = i + 1
		}
	}
	return nil
}

// Statistics implements store.TaskStore
func (m *MockTaskStore) Statistics(ctx context.Context, userID uuid.UUID) (*domain.TaskStatistics, error) {
	m.record("Statistics")
	if m.StatisticsFn != nil {
		return m.StatisticsFn(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var s domain.TaskStatistics
	for _, t := range m.Tasks {
		if t.UserID != userID {
			continue
		}
		s.Total++
		if t.Status == domain.TaskStatusCompleted {
			s.Completed++
		} else {
			s.Pending++
		}
		switch t.Priority {
		case domain.TaskPriorityHigh:
			s.HighPriority++
		case domain.TaskPriorityMedium:
			s.MediumPriority++
		case domain.TaskPriorityLow:
			s.LowPriority++
		}
	}
	return &s, nil
}

// MatchingTitles implements store.TaskStore
func (m *MockTaskStore) MatchingTitles(
	ctx context.Context,
	userID uuid.UUID,
	query string,
	limit int,
) ([]string, error) {
	m.record("MatchingTitles")
	if m.MatchingTitlesFn != nil {
		return m.MatchingTitlesFn(ctx, userID, query, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	needle := strings.ToLower(query)
	var titles []string
	for _, t := range m.Tasks {
		if t.UserID == userID && strings.Contains(strings.ToLower(t.Title), needle) &&
			!slices.Contains(titles, t.Title) {
			titles = append(titles, t.Title)
		}
	}
	slices.Sort(titles)
	if len(titles) > limit {
		titles = titles[:limit]
	}
	return titles, nil
}

// MatchingDescriptions implements store.TaskStore
func (m *MockTaskStore) MatchingDescriptions(ctx context.Context, userID uuid.UUID, query string) ([]string, error) {
	m.record("MatchingDescriptions")
	if m.MatchingDescriptionsFn != nil {
		return m.MatchingDescriptionsFn(ctx, userID, query)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	needle := strings.ToLower(query)
	var out []string
	for _, t := range m.Tasks {
		if t.UserID == userID && t.Description != nil && *t.Description != "" &&
			strings.Contains(strings.ToLower(*t.Description), needle) {
			out = append(out, *t.Description)
		}
	}
	return out, nil
}

// DeleteOlderThan implements store.TaskStore
func (m *MockTaskStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, []uuid.UUID, error) {
	m.record("DeleteOlderThan")
	if m.DeleteOlderThanFn != nil {
		return m.DeleteOlderThanFn(ctx, cutoff)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	var owners []uuid.UUID
	for id, t := range m.Tasks {
		if t.CreatedAt.Before(cutoff) {
			delete(m.Tasks, id)
			n++
			if !slices.Contains(owners, t.UserID) {
				owners = append(owners, t.UserID)
			}
		}
	}
	return n, owners, nil
}

// WithTx implements store.TaskStore. The mock ignores the transaction.
func (m *MockTaskStore) WithTx(_ *sql.Tx) store.TaskStore {
	m.record("WithTx")
	return m
}
