package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taskboard/taskboard-api/internal/domain"
	"github.com/taskboard/taskboard-api/internal/store"
)

// PostgresStatsStore implements the store.StatsStore interface.
type PostgresStatsStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresStatsStore creates a new PostgreSQL implementation of the StatsStore interface.
func NewPostgresStatsStore(db store.DBTX, logger *slog.Logger) *PostgresStatsStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStatsStore{
		db:     db,
		logger: logger.With(slog.String("component", "stats_store")),
	}
}

var _ store.StatsStore = (*PostgresStatsStore)(nil)

// Dashboard implements store.StatsStore.Dashboard
func (s *PostgresStatsStore) Dashboard(ctx context.Context, cal domain.Calendar) (*domain.DashboardStats, error) {
	var d domain.DashboardStats
	err := s.db.QueryRowContext(ctx,
		`SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM users WHERE is_admin),
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE priority = 'high'),
			COUNT(*) FILTER (WHERE created_at >= $1),
			COUNT(*) FILTER (WHERE created_at >= $2 AND created_at < $3),
			COUNT(*) FILTER (WHERE created_at >= $4)
		FROM tasks`,
		cal.TodayStart, cal.WeekStart, cal.WeekEnd(), cal.MonthStart,
	).Scan(
		&d.TotalUsers, &d.AdminUsers,
		&d.TotalTasks, &d.CompletedTasks, &d.PendingTasks, &d.HighPriorityTasks,
		&d.TasksCreatedToday, &d.TasksCreatedThisWeek, &d.TasksCreatedThisMonth,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute dashboard stats: %w", MapError(err))
	}
	d.RegularUsers = d.TotalUsers - d.AdminUsers
	return &d, nil
}

// TaskStatistics implements store.StatsStore.TaskStatistics
func (s *PostgresStatsStore) TaskStatistics(
	ctx context.Context,
	cal domain.Calendar,
) (*domain.GlobalTaskStatistics, error) {
	stats := domain.GlobalTaskStatistics{
		ByStatusAndPriority: make(map[domain.TaskStatus][]domain.StatusPriorityCount),
		CompletionTrends:    make([]domain.CompletionTrend, 0),
	}

	err := s.db.QueryRowContext(ctx,
		`SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE priority = 'high'),
			COUNT(*) FILTER (WHERE priority = 'medium'),
			COUNT(*) FILTER (WHERE priority = 'low'),
			COUNT(*) FILTER (WHERE created_at >= $1),
			COUNT(*) FILTER (WHERE created_at >= $2 AND created_at < $1),
			COUNT(*) FILTER (WHERE created_at >= $3 AND created_at < $4),
			COUNT(*) FILTER (WHERE created_at >= $5 AND created_at < $3),
			COUNT(*) FILTER (WHERE created_at >= $6)
		FROM tasks`,
		cal.TodayStart, cal.YesterdayStart, cal.WeekStart, cal.WeekEnd(), cal.LastWeekStart, cal.MonthStart,
	).Scan(
		&stats.Overview.TotalTasks, &stats.Overview.CompletedTasks, &stats.Overview.PendingTasks,
		&stats.ByPriority.High, &stats.ByPriority.Medium, &stats.ByPriority.Low,
		&stats.RecentActivity.Today, &stats.RecentActivity.Yesterday,
		&stats.RecentActivity.ThisWeek, &stats.RecentActivity.LastWeek,
		&stats.RecentActivity.ThisMonth,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute task overview: %w", MapError(err))
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT status, priority, COUNT(*) FROM tasks GROUP BY status, priority ORDER BY status, priority`)
	if err != nil {
		return nil, fmt.Errorf("failed to group tasks: %w", MapError(err))
	}
	for rows.Next() {
		var c domain.StatusPriorityCount
		if err := rows.Scan(&c.Status, &c.Priority, &c.Count); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan task group: %w", err)
		}
		stats.ByStatusAndPriority[c.Status] = append(stats.ByStatusAndPriority[c.Status], c)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("failed to iterate task groups: %w", err)
	}
	_ = rows.Close()

	rows, err = s.db.QueryContext(ctx,
		`SELECT
			(created_at AT TIME ZONE 'UTC')::date AS day,
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'completed')
		FROM tasks
		WHERE created_at >= $1
		GROUP BY day
		ORDER BY day`,
		cal.TrendStart,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute completion trends: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var (
			day   time.Time
			trend domain.CompletionTrend
		)
		if err := rows.Scan(&day, &trend.TotalTasks, &trend.CompletedTasks); err != nil {
			return nil, fmt.Errorf("failed to scan completion trend: %w", err)
		}
		trend.Date = day.Format(domain.DateLayout)
		stats.CompletionTrends = append(stats.CompletionTrends, trend)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate completion trends: %w", err)
	}

	return &stats, nil
}

// userSummaryColumns prefixes the user columns for joins with tasks.
var userSummaryColumns = "u." + strings.ReplaceAll(userColumns, ", ", ", u.")

func scanUserSummary(row rowScanner, extra ...any) (*domain.UserSummary, error) {
	var u domain.UserSummary
	dest := []any{
		&u.ID, &u.Name, &u.Email, &u.HashedPassword, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt,
		&u.TasksCount, &u.CompletedTasksCount,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &u, nil
}

// TopPerformers implements store.StatsStore.TopPerformers
func (s *PostgresStatsStore) TopPerformers(ctx context.Context, limit int) ([]domain.UserSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userSummaryColumns+`,
			COUNT(t.id) AS tasks_count,
			COUNT(t.id) FILTER (WHERE t.status = 'completed') AS completed_tasks_count
		FROM users u
		JOIN tasks t ON t.user_id = u.id
		GROUP BY u.id
		ORDER BY completed_tasks_count DESC, tasks_count DESC, u.id
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query top performers: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	out := make([]domain.UserSummary, 0, limit)
	for rows.Next() {
		u, err := scanUserSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan top performer: %w", err)
		}
		u.PendingTasksCount = u.TasksCount - u.CompletedTasksCount
		u.CompletionRate = domain.CompletionRate(u.CompletedTasksCount, u.TasksCount, 1)
		out = append(out, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate top performers: %w", err)
	}
	return out, nil
}

func buildUserListWhere(f domain.UserListFilter, a *argList) string {
	conds := []string{"TRUE"}
	if search := strings.TrimSpace(f.Search); search != "" {
		p := a.add(containsPattern(search))
		conds = append(conds, "(u.name ILIKE "+p+" OR u.email ILIKE "+p+")")
	}
	switch f.Role {
	case domain.RoleAdmin:
		conds = append(conds, "u.is_admin")
	case domain.RoleUser:
		conds = append(conds, "NOT u.is_admin")
	}
	return strings.Join(conds, " AND ")
}

// ListUsers implements store.StatsStore.ListUsers
func (s *PostgresStatsStore) ListUsers(
	ctx context.Context,
	f domain.UserListFilter,
) (*domain.Page[domain.UserSummary], error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = domain.DefaultAdminPerPage
	}

	var countArgs argList
	where := buildUserListWhere(f, &countArgs)
	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users u WHERE `+where, countArgs.args...,
	).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", MapError(err))
	}

	var a argList
	recent := a.add(f.RecentSince)
	where = buildUserListWhere(f, &a)
	limit, offset := a.add(f.PerPage), a.add((f.Page-1)*f.PerPage)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userSummaryColumns+`,
			COUNT(t.id),
			COUNT(t.id) FILTER (WHERE t.status = 'completed'),
			COUNT(t.id) FILTER (WHERE t.status = 'pending'),
			COUNT(t.id) FILTER (WHERE t.priority = 'high'),
			COUNT(t.id) FILTER (WHERE t.created_at >= `+recent+`)
		FROM users u
		LEFT JOIN tasks t ON t.user_id = u.id
		WHERE `+where+`
		GROUP BY u.id
		ORDER BY u.created_at DESC, u.id
		LIMIT `+limit+` OFFSET `+offset,
		a.args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	users := make([]domain.UserSummary, 0, f.PerPage)
	for rows.Next() {
		var pending, high, recentCount int
		u, err := scanUserSummary(rows, &pending, &high, &recentCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user summary: %w", err)
		}
		u.PendingTasksCount = pending
		u.HighPriorityTasksCount = high
		u.RecentActivity = recentCount
		u.CompletionRate = domain.CompletionRate(u.CompletedTasksCount, u.TasksCount, 1)
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return &domain.Page[domain.UserSummary]{
		Items: users,
		Meta:  domain.NewPageMeta(f.Page, f.PerPage, total, len(users)),
	}, nil
}

// UserStatistics implements store.StatsStore.UserStatistics
func (s *PostgresStatsStore) UserStatistics(
	ctx context.Context,
	userID uuid.UUID,
	cal domain.Calendar,
) (*domain.UserDetailStatistics, error) {
	var st domain.UserDetailStatistics
	err := s.db.QueryRowContext(ctx,
		`SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE priority = 'high'),
			COUNT(*) FILTER (WHERE priority = 'medium'),
			COUNT(*) FILTER (WHERE priority = 'low'),
			COUNT(*) FILTER (WHERE created_at >= $2 AND created_at < $3)
		FROM tasks WHERE user_id = $1`,
		userID, cal.WeekStart, cal.WeekEnd(),
	).Scan(
		&st.TotalTasks, &st.CompletedTasks, &st.PendingTasks,
		&st.HighPriorityTasks, &st.MediumPriorityTasks, &st.LowPriorityTasks,
		&st.TasksThisWeek,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute user statistics: %w", MapError(err))
	}
	st.CompletionRate = domain.CompletionRate(st.CompletedTasks, st.TotalTasks, 1)
	return &st, nil
}

// UserTasks implements store.StatsStore.UserTasks
func (s *PostgresStatsStore) UserTasks(
	ctx context.Context,
	f domain.UserTaskFilter,
) (*domain.Page[domain.Task], error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = domain.DefaultAdminPerPage
	}

	var a argList
	conds := []string{"user_id = " + a.add(f.UserID)}
	if f.Status != "" {
		conds = append(conds, "status = "+a.add(string(f.Status)))
	}
	if f.Priority != "" {
		conds = append(conds, "priority = "+a.add(string(f.Priority)))
	}
	where := strings.Join(conds, " AND ")

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE `+where, a.args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count user tasks: %w", MapError(err))
	}

	limit, offset := a.add(f.PerPage), a.add((f.Page-1)*f.PerPage)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE `+where+
			` ORDER BY created_at DESC, id LIMIT `+limit+` OFFSET `+offset,
		a.args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list user tasks: %w", MapError(err))
	}
	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, err
	}

	return &domain.Page[domain.Task]{
		Items: tasks,
		Meta:  domain.NewPageMeta(f.Page, f.PerPage, total, len(tasks)),
	}, nil
}
