package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/taskboard/taskboard-api/internal/domain"
	"github.com/taskboard/taskboard-api/internal/events"
	"github.com/taskboard/taskboard-api/internal/store"
	"golang.org/x/sync/errgroup"
)

// TopPerformersLimit is the size of the top performers board.
const TopPerformersLimit = 10

// UserDetails is the administrator's view of one user.
type UserDetails struct {
	User       *domain.User                 `json:"user"`
	Statistics *domain.UserDetailStatistics `json:"statistics"`
	Tasks      *domain.Page[domain.Task]    `json:"-"`
}

// DeletedTask describes a task removed by an administrator.
type DeletedTask struct {
	Title     string
	OwnerName string
}

// AdminService serves the administrator views. Callers are responsible for
// checking that the acting user is an administrator.
type AdminService interface {
	// Dashboard returns the headline user and task counts.
	Dashboard(ctx context.Context) (*domain.DashboardStats, error)

	// TaskStatistics returns the detailed cross-user task report.
	TaskStatistics(ctx context.Context) (*domain.GlobalTaskStatistics, error)

	// TopPerformers returns the users with the most completed tasks.
	TopPerformers(ctx context.Context) ([]domain.UserSummary, error)

	// ListUsers returns one page of users with their task counts.
	ListUsers(ctx context.Context, filter domain.UserListFilter) (*domain.Page[domain.UserSummary], error)

	// UserDetails returns a user's statistics and one page of their tasks.
	UserDetails(ctx context.Context, filter domain.UserTaskFilter) (*UserDetails, error)

	// UpdateUserRole grants or revokes administrator rights.
	UpdateUserRole(ctx context.Context, userID uuid.UUID, isAdmin bool) (*domain.User, error)

	// DeleteTask removes any user's task.
	DeleteTask(ctx context.Context, taskID uuid.UUID) (*DeletedTask, error)
}

type adminService struct {
	statsStore store.StatsStore
	userStore  store.UserStore
	taskStore  store.TaskStore
	emitter    events.EventEmitter
	db         *sql.DB
	logger     *slog.Logger
	now        func() time.Time
}

// NewAdminService creates an AdminService.
func NewAdminService(
	statsStore store.StatsStore,
	userStore store.UserStore,
	taskStore store.TaskStore,
	emitter events.EventEmitter,
	db *sql.DB,
	logger *slog.Logger,
) AdminService {
	return &adminService{
		statsStore: statsStore,
		userStore:  userStore,
		taskStore:  taskStore,
		emitter:    emitter,
		db:         db,
		logger:     logger.With("component", "admin_service"),
		now:        time.Now,
	}
}

func (s *adminService) calendar() domain.Calendar {
	return domain.NewCalendar(s.now())
}

// Dashboard implements AdminService.Dashboard
func (s *adminService) Dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	stats, err := s.statsStore.Dashboard(ctx, s.calendar())
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard statistics: %w", err)
	}
	return stats, nil
}

// TaskStatistics implements AdminService.TaskStatistics
func (s *adminService) TaskStatistics(ctx context.Context) (*domain.GlobalTaskStatistics, error) {
	stats, err := s.statsStore.TaskStatistics(ctx, s.calendar())
	if err != nil {
		return nil, fmt.Errorf("failed to load task statistics: %w", err)
	}
	return stats, nil
}

// TopPerformers implements AdminService.TopPerformers
func (s *adminService) TopPerformers(ctx context.Context) ([]domain.UserSummary, error) {
	top, err := s.statsStore.TopPerformers(ctx, TopPerformersLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load top performers: %w", err)
	}
	return top, nil
}

func validateAdminPage(page, perPage int) error {
	if page < 0 {
		return domain.NewValidationError("page", "must be at least 1", nil)
	}
	if perPage != 0 && (perPage < domain.MinPerPage || perPage > domain.MaxPerPage) {
		return domain.NewValidationError("per_page",
			fmt.Sprintf("must be between %d and %d", domain.MinPerPage, domain.MaxPerPage), nil)
	}
	return nil
}

// ListUsers implements AdminService.ListUsers
func (s *adminService) ListUsers(
	ctx context.Context,
	filter domain.UserListFilter,
) (*domain.Page[domain.UserSummary], error) {
	if err := validateAdminPage(filter.Page, filter.PerPage); err != nil {
		return nil, err
	}
	filter.Search = strings.TrimSpace(filter.Search)
	if utf8.RuneCountInString(filter.Search) > domain.MaxSearchLength {
		return nil, domain.NewValidationError("search", "must not exceed 255 characters", nil)
	}
	if filter.Role == "" {
		filter.Role = domain.RoleAll
	}
	if !filter.Role.IsValid() {
		return nil, domain.NewValidationError("role", "must be one of: all, admin, user", nil)
	}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PerPage == 0 {
		filter.PerPage = domain.DefaultAdminPerPage
	}
	if filter.RecentSince.IsZero() {
		filter.RecentSince = s.calendar().RecentStart
	}

	page, err := s.statsStore.ListUsers(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return page, nil
}

// UserDetails implements AdminService.UserDetails
func (s *adminService) UserDetails(ctx context.Context, filter domain.UserTaskFilter) (*UserDetails, error) {
	if err := validateAdminPage(filter.Page, filter.PerPage); err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, domain.NewValidationError("status", "must be one of: all, pending, completed", domain.ErrInvalidTaskStatus)
	}
	if filter.Priority != "" && !filter.Priority.IsValid() {
		return nil, domain.NewValidationError("priority", "must be one of: all, low, medium, high", domain.ErrInvalidTaskPriority)
	}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PerPage == 0 {
		filter.PerPage = domain.DefaultAdminPerPage
	}

	user, err := s.userStore.GetByID(ctx, filter.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	details := &UserDetails{User: user}
	cal := s.calendar()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := s.statsStore.UserStatistics(gctx, user.ID, cal)
		if err != nil {
			return fmt.Errorf("failed to load user statistics: %w", err)
		}
		details.Statistics = stats
		return nil
	})
	g.Go(func() error {
		tasks, err := s.statsStore.UserTasks(gctx, filter)
		if err != nil {
			return fmt.Errorf("failed to load user tasks: %w", err)
		}
		details.Tasks = tasks
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return details, nil
}

// UpdateUserRole implements AdminService.UpdateUserRole
func (s *adminService) UpdateUserRole(ctx context.Context, userID uuid.UUID, isAdmin bool) (*domain.User, error) {
	var updated *domain.User
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		u, err := s.userStore.WithTx(tx).SetAdmin(ctx, userID, isAdmin)
		if err != nil {
			return err
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update user role: %w", err)
	}

	s.logger.Info("user role updated", "user_id", userID, "is_admin", isAdmin)
	return updated, nil
}

// DeleteTask implements AdminService.DeleteTask
func (s *adminService) DeleteTask(ctx context.Context, taskID uuid.UUID) (*DeletedTask, error) {
	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve task: %w", err)
	}
	owner, err := s.userStore.GetByID(ctx, task.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve task owner: %w", err)
	}
	if err := s.taskStore.Delete(ctx, taskID); err != nil {
		return nil, fmt.Errorf("failed to delete task: %w", err)
	}

	s.logger.Info("task deleted by administrator", "task_id", taskID, "owner_id", owner.ID)
	if err := s.emitter.EmitEvent(ctx, events.NewTaskEvent(events.TaskDeleted, owner.ID, taskID)); err != nil {
		s.logger.Warn("task event handler failed", "error", err, "task_id", taskID)
	}
	return &DeletedTask{Title: task.Title, OwnerName: owner.Name}, nil
}
