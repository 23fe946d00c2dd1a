package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/taskboard/taskboard-api/internal/domain"
)

// StatsStore answers the cross-user aggregate queries behind the
// administrator views. Time windows come from the supplied calendar so
// results are reproducible.
type StatsStore interface {
	// Dashboard returns headline user and task counts.
	Dashboard(ctx context.Context, cal domain.Calendar) (*domain.DashboardStats, error)

	// TaskStatistics returns the detailed task report. Completion trends
	// cover tasks created since cal.TrendStart, one entry per day, oldest
	// first.
	TaskStatistics(ctx context.Context, cal domain.Calendar) (*domain.GlobalTaskStatistics, error)

	// TopPerformers returns up to limit users having at least one task,
	// ordered by completed task count descending.
	TopPerformers(ctx context.Context, limit int) ([]domain.UserSummary, error)

	// ListUsers returns one page of users with their task counts, newest
	// first.
	ListUsers(ctx context.Context, filter domain.UserListFilter) (*domain.Page[domain.UserSummary], error)

	// UserStatistics returns the breakdown of one user's tasks.
	UserStatistics(ctx context.Context, userID uuid.UUID, cal domain.Calendar) (*domain.UserDetailStatistics, error)

	// UserTasks returns one page of a user's tasks, newest first.
	UserTasks(ctx context.Context, filter domain.UserTaskFilter) (*domain.Page[domain.Task], error)
}
