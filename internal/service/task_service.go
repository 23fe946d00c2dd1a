package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/taskboard/taskboard-api/internal/cache"
	"github.com/taskboard/taskboard-api/internal/domain"
	"github.com/taskboard/taskboard-api/internal/events"
	"github.com/taskboard/taskboard-api/internal/store"
)

const (
	// MaxSuggestionQueryLength bounds the search suggestion query.
	MaxSuggestionQueryLength = 100

	maxTitleSuggestions = 10
	maxWordSuggestions  = 5
	minSuggestedWordLen = 3
)

// CreateTaskInput carries the fields of a new task. Nil fields take the
// task defaults; a nil Order appends the task to the end of the list.
type CreateTaskInput struct {
	Title       string
	Description *string
	Status      *domain.TaskStatus
	Priority    *domain.TaskPriority
	Order       *int
}

// Option is one selectable value in FilterOptions.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FilterOptions lists the values the task list can be filtered and sorted by.
type FilterOptions struct {
	Statuses    []Option `json:"statuses"`
	Priorities  []Option `json:"priorities"`
	SortOptions []Option `json:"sort_options"`
}

// TaskService manages a user's own tasks.
type TaskService interface {
	// ListTasks returns every task of the user matching the filter.
	ListTasks(ctx context.Context, user *domain.User, filter domain.TaskFilter) ([]domain.Task, error)

	// ListTasksPage returns one page of the user's tasks matching the filter.
	ListTasksPage(ctx context.Context, user *domain.User, filter domain.TaskFilter) (*domain.Page[domain.Task], error)

	// GetTask returns a task its owner or an administrator may view.
	GetTask(ctx context.Context, user *domain.User, id uuid.UUID) (*domain.Task, error)

	// CreateTask creates a task owned by user.
	CreateTask(ctx context.Context, user *domain.User, input CreateTaskInput) (*domain.Task, error)

	// UpdateTask applies a partial update. Only the owner may update.
	UpdateTask(ctx context.Context, user *domain.User, id uuid.UUID, update domain.TaskUpdate) (*domain.Task, error)

	// DeleteTask removes a task. The owner or an administrator may delete.
	DeleteTask(ctx context.Context, user *domain.User, id uuid.UUID) error

	// ToggleStatus flips a task between pending and completed. Only the
	// owner may toggle.
	ToggleStatus(ctx context.Context, user *domain.User, id uuid.UUID) (*domain.Task, error)

	// Reorder assigns order i+1 to ids[i]. Every id must exist and belong to
	// user; the new order is applied atomically.
	Reorder(ctx context.Context, user *domain.User, ids []uuid.UUID) error

	// Statistics summarises the user's tasks.
	Statistics(ctx context.Context, user *domain.User) (*domain.TaskStatistics, error)

	// SearchSuggestions proposes search terms from the user's task titles
	// and descriptions.
	SearchSuggestions(ctx context.Context, user *domain.User, query string) ([]string, error)

	// FilterOptions lists the accepted filter and sort values.
	FilterOptions() FilterOptions

	// CleanupOldTasks deletes every task created more than days ago and
	// returns how many were removed.
	CleanupOldTasks(ctx context.Context, days int) (int64, error)
}

type taskService struct {
	taskStore store.TaskStore
	cache     *cache.TaskCache
	emitter   events.EventEmitter
	db        *sql.DB
	logger    *slog.Logger
	now       func() time.Time
}

// NewTaskService creates a TaskService.
func NewTaskService(
	taskStore store.TaskStore,
	taskCache *cache.TaskCache,
	emitter events.EventEmitter,
	db *sql.DB,
	logger *slog.Logger,
) TaskService {
	return &taskService{
		taskStore: taskStore,
		cache:     taskCache,
		emitter:   emitter,
		db:        db,
		logger:    logger.With("component", "task_service"),
		now:       time.Now,
	}
}

// CanAccess reports whether user may view task.
func CanAccess(user *domain.User, task *domain.Task) bool {
	return task.IsOwnedBy(user.ID) || user.IsAdmin
}

// CanModify reports whether user may update or toggle task.
func CanModify(user *domain.User, task *domain.Task) bool {
	return task.IsOwnedBy(user.ID)
}

// CanDelete reports whether user may delete task.
func CanDelete(user *domain.User, task *domain.Task) bool {
	return task.IsOwnedBy(user.ID) || user.IsAdmin
}

// emit publishes a change event. Handler failures are logged; the change
// itself has already been committed.
func (s *taskService) emit(ctx context.Context, event *events.TaskEvent) {
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.logger.Warn("task event handler failed",
			"error", err,
			"event_type", event.Type,
			"user_id", event.UserID)
	}
}

// ListTasks implements TaskService.ListTasks
func (s *taskService) ListTasks(
	ctx context.Context,
	user *domain.User,
	filter domain.TaskFilter,
) ([]domain.Task, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	filter = filter.Normalized()
	filter.Page, filter.PerPage = 0, 0
	key := filter.CacheKey()

	cached, gen, ok := s.cache.LoadList(ctx, user.ID, key)
	if ok {
		return cached.Items, nil
	}

	tasks, err := s.taskStore.List(ctx, user.ID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	s.cache.StoreList(ctx, user.ID, gen, key, &domain.Page[domain.Task]{Items: tasks})
	return tasks, nil
}

// ListTasksPage implements TaskService.ListTasksPage
func (s *taskService) ListTasksPage(
	ctx context.Context,
	user *domain.User,
	filter domain.TaskFilter,
) (*domain.Page[domain.Task], error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	filter = filter.Normalized()
	if !filter.Paginated() {
		filter.Page, filter.PerPage = 1, domain.DefaultTaskPerPage
	}
	key := filter.CacheKey()

	cached, gen, ok := s.cache.LoadList(ctx, user.ID, key)
	if ok {
		return cached, nil
	}

	page, err := s.taskStore.ListPage(ctx, user.ID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	s.cache.StoreList(ctx, user.ID, gen, key, page)
	return page, nil
}

// GetTask implements TaskService.GetTask
func (s *taskService) GetTask(ctx context.Context, user *domain.User, id uuid.UUID) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve task: %w", err)
	}
	if !CanAccess(user, task) {
		return nil, ErrForbidden
	}
	return task, nil
}

// CreateTask implements TaskService.CreateTask
func (s *taskService) CreateTask(
	ctx context.Context,
	user *domain.User,
	input CreateTaskInput,
) (*domain.Task, error) {
	task, err := domain.NewTask(user.ID, input.Title)
	if err != nil {
		return nil, err
	}
	task.Description = input.Description
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.Order != nil {
		task.Order = *input.Order
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}

	if input.Order != nil {
		err = s.taskStore.Create(ctx, task)
	} else {
		err = s.taskStore.Append(ctx, task)
	}
	if err != nil {
		s.logger.Error("failed to save task", "error", err, "user_id", user.ID)
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Info("task created", "task_id", task.ID, "user_id", user.ID)
	s.emit(ctx, events.NewTaskEvent(events.TaskCreated, user.ID, task.ID))
	return task, nil
}

// loadForModification fetches a task and applies the owner-only rule.
func (s *taskService) loadForModification(
	ctx context.Context,
	user *domain.User,
	id uuid.UUID,
) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve task: %w", err)
	}
	if !CanModify(user, task) {
		s.logger.Warn("attempt to modify task owned by another user",
			"task_id", id,
			"user_id", user.ID,
			"owner_id", task.UserID)
		return nil, ErrForbidden
	}
	return task, nil
}

// UpdateTask implements TaskService.UpdateTask
func (s *taskService) UpdateTask(
	ctx context.Context,
	user *domain.User,
	id uuid.UUID,
	update domain.TaskUpdate,
) (*domain.Task, error) {
	task, err := s.loadForModification(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if update.IsEmpty() {
		return task, nil
	}
	if err := update.Apply(task); err != nil {
		return nil, err
	}
	if err := s.taskStore.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.emit(ctx, events.NewTaskEvent(events.TaskUpdated, task.UserID, task.ID))
	return task, nil
}

// DeleteTask implements TaskService.DeleteTask
func (s *taskService) DeleteTask(ctx context.Context, user *domain.User, id uuid.UUID) error {
	task, err := s.taskStore.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to retrieve task: %w", err)
	}
	if !CanDelete(user, task) {
		return ErrForbidden
	}
	if err := s.taskStore.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.logger.Info("task deleted", "task_id", id, "user_id", user.ID, "owner_id", task.UserID)
	s.emit(ctx, events.NewTaskEvent(events.TaskDeleted, task.UserID, task.ID))
	return nil
}

// ToggleStatus implements TaskService.ToggleStatus
func (s *taskService) ToggleStatus(ctx context.Context, user *domain.User, id uuid.UUID) (*domain.Task, error) {
	task, err := s.loadForModification(ctx, user, id)
	if err != nil {
		return nil, err
	}
	task.ToggleStatus()
	if err := s.taskStore.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to toggle task status: %w", err)
	}

	s.emit(ctx, events.NewTaskEvent(events.TaskUpdated, task.UserID, task.ID))
	return task, nil
}

// Reorder implements TaskService.Reorder
func (s *taskService) Reorder(ctx context.Context, user *domain.User, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return domain.NewValidationError("tasks", "is required", nil)
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.taskStore.WithTx(tx)

		owners, err := txStore.Owners(ctx, ids)
		if err != nil {
			return fmt.Errorf("failed to look up task owners: %w", err)
		}
		for _, id := range ids {
			if _, ok := owners[id]; !ok {
				return domain.NewValidationError("tasks", "contains tasks that do not exist", ErrUnknownTasks)
			}
		}
		for _, id := range ids {
			if owners[id] != user.ID {
				return ErrTaskNotOwned
			}
		}

		return txStore.Reorder(ctx, user.ID, ids)
	})
	if err != nil {
		if !errors.Is(err, ErrTaskNotOwned) && !errors.Is(err, domain.ErrValidation) {
			s.logger.Error("failed to reorder tasks", "error", err, "user_id", user.ID)
		}
		return err
	}

	s.emit(ctx, events.NewTaskEvent(events.TaskReordered, user.ID, ids...))
	return nil
}

// Statistics implements TaskService.Statistics
func (s *taskService) Statistics(ctx context.Context, user *domain.User) (*domain.TaskStatistics, error) {
	cached, gen, ok := s.cache.LoadStats(ctx, user.ID)
	if ok {
		return cached, nil
	}

	stats, err := s.taskStore.Statistics(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute task statistics: %w", err)
	}
	stats.CompletionRate = domain.CompletionRate(stats.Completed, stats.Total, 2)

	s.cache.StoreStats(ctx, user.ID, gen, stats)
	return stats, nil
}

// SearchSuggestions implements TaskService.SearchSuggestions
func (s *taskService) SearchSuggestions(ctx context.Context, user *domain.User, query string) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.NewValidationError("query", "is required", nil)
	}
	if utf8.RuneCountInString(query) > MaxSuggestionQueryLength {
		return nil, domain.NewValidationError("query", "must not exceed 100 characters", nil)
	}

	titles, err := s.taskStore.MatchingTitles(ctx, user.ID, query, maxTitleSuggestions)
	if err != nil {
		return nil, fmt.Errorf("failed to search task titles: %w", err)
	}
	descriptions, err := s.taskStore.MatchingDescriptions(ctx, user.ID, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search task descriptions: %w", err)
	}

	suggestions := make([]string, 0, len(titles)+maxWordSuggestions)
	seen := make(map[string]bool, len(titles)+maxWordSuggestions)
	for _, t := range append(titles, descriptionWords(descriptions, query)...) {
		if !seen[t] {
			seen[t] = true
			suggestions = append(suggestions, t)
		}
	}
	return suggestions, nil
}

// descriptionWords returns up to maxWordSuggestions distinct lower-case
// words longer than two letters that contain query, in alphabetical order.
func descriptionWords(descriptions []string, query string) []string {
	needle := strings.ToLower(query)
	set := make(map[string]bool)
	for _, d := range descriptions {
		words := strings.FieldsFunc(strings.ToLower(d), func(r rune) bool {
			return !unicode.IsLetter(r) && r != '\'' && r != '-'
		})
		for _, w := range words {
			if utf8.RuneCountInString(w) >= minSuggestedWordLen && strings.Contains(w, needle) {
				set[w] = true
			}
		}
	}

	words := make([]string, 0, len(set))
	for w := range set {
		words = append(words, w)
	}
	slices.Sort(words)
	if len(words) > maxWordSuggestions {
		words = words[:maxWordSuggestions]
	}
	return words
}

// FilterOptions implements TaskService.FilterOptions
func (s *taskService) FilterOptions() FilterOptions {
	return FilterOptions{
		Statuses: []Option{
			{Value: string(domain.TaskStatusPending), Label: "Pending"},
			{Value: string(domain.TaskStatusCompleted), Label: "Completed"},
		},
		Priorities: []Option{
			{Value: string(domain.TaskPriorityLow), Label: "Low Priority"},
			{Value: string(domain.TaskPriorityMedium), Label: "Medium Priority"},
			{Value: string(domain.TaskPriorityHigh), Label: "High Priority"},
		},
		SortOptions: []Option{
			{Value: string(domain.SortByCreatedAt), Label: "Date Created"},
			{Value: string(domain.SortByUpdatedAt), Label: "Last Updated"},
			{Value: string(domain.SortByTitle), Label: "Title"},
			{Value: string(domain.SortByPriority), Label: "Priority"},
			{Value: string(domain.SortByStatus), Label: "Status"},
			{Value: string(domain.SortByOrder), Label: "Custom Order"},
		},
	}
}

// CleanupOldTasks implements TaskService.CleanupOldTasks
func (s *taskService) CleanupOldTasks(ctx context.Context, days int) (int64, error) {
	if days < 1 {
		return 0, domain.NewValidationError("days", "must be at least 1", nil)
	}
	cutoff := s.now().UTC().AddDate(0, 0, -days)

	deleted, owners, err := s.taskStore.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old tasks: %w", err)
	}
	for _, owner := range owners {
		s.emit(ctx, events.NewTaskEvent(events.TaskCleanup, owner))
	}

	s.logger.Info("deleted old tasks",
		"deleted", deleted,
		"affected_users", len(owners),
		"cutoff", cutoff)
	return deleted, nil
}
