package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/taskboard/taskboard-api/internal/domain"
	"github.com/taskboard/taskboard-api/internal/store"
)

// TestifyMockStatsStore is a mock of store.StatsStore for use with testify/mock
type TestifyMockStatsStore struct {
	mock.Mock
}

var _ store.StatsStore = (*TestifyMockStatsStore)(nil)

// Dashboard is a mock implementation of store.StatsStore.Dashboard
func (m *TestifyMockStatsStore) Dashboard(ctx context.Context, cal domain.Calendar) (*domain.DashboardStats, error) {
	args := m.Called(ctx, cal)
	if v, ok := args.Get(0).(*domain.DashboardStats); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

// TaskStatistics is a mock implementation of store.StatsStore.TaskStatistics
func (m *TestifyMockStatsStore) TaskStatistics(
	ctx context.Context,
	cal domain.Calendar,
) (*domain.GlobalTaskStatistics, error) {
	args := m.Called(ctx, cal)
	if v, ok := args.Get(0).(*domain.GlobalTaskStatistics); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

// TopPerformers is a mock implementation of store.StatsStore.TopPerformers
func (m *TestifyMockStatsStore) TopPerformers(ctx context.Context, limit int) ([]domain.UserSummary, error) {
	args := m.Called(ctx, limit)
	if v, ok := args.Get(0).([]domain.UserSummary); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

// ListUsers is a mock implementation of store.StatsStore.ListUsers
func (m *TestifyMockStatsStore) ListUsers(
	ctx context.Context,
	filter domain.UserListFilter,
) (*domain.Page[domain.UserSummary], error) {
	args := m.Called(ctx, filter)
	if v, ok := args.Get(0).(*domain.Page[domain.UserSummary]); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

// UserStatistics is a mock implementation of store.StatsStore.UserStatistics
func (m *TestifyMockStatsStore) UserStatistics(
	ctx context.Context,
	userID uuid.UUID,
	cal domain.Calendar,
) (*domain.UserDetailStatistics, error) {
	args := m.Called(ctx, userID, cal)
	if v, ok := args.Get(0).(*domain.UserDetailStatistics); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

// UserTasks is a mock implementation of store.StatsStore.UserTasks
func (m *TestifyMockStatsStore) UserTasks(
	ctx context.Context,
	filter domain.UserTaskFilter,
) (*domain.Page[domain.Task], error) {
	args := m.Called(ctx, filter)
	if v, ok := args.Get(0).(*domain.Page[domain.Task]); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
