package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// TaskStatistics summarises one user's tasks.
type TaskStatistics struct {
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	Pending        int     `json:"pending"`
	HighPriority   int     `json:"high_priority"`
	MediumPriority int     `json:"medium_priority"`
	LowPriority    int     `json:"low_priority"`
	CompletionRate float64 `json:"completion_rate"`
}

// CompletionRate returns completed/total as a percentage rounded to the
// given number of decimals, or 0 when there are no tasks.
func CompletionRate(completed, total, decimals int) float64 {
	if total <= 0 {
		return 0
	}
	scale := math.Pow(10, float64(decimals))
	return math.Round(float64(completed)/float64(total)*100*scale) / scale
}

// DashboardStats is the administrator's headline view of the system.
type DashboardStats struct {
	TotalUsers            int `json:"total_users"`
	AdminUsers            int `json:"admin_users"`
	RegularUsers          int `json:"regular_users"`
	TotalTasks            int `json:"total_tasks"`
	CompletedTasks        int `json:"completed_tasks"`
	PendingTasks          int `json:"pending_tasks"`
	HighPriorityTasks     int `json:"high_priority_tasks"`
	TasksCreatedToday     int `json:"tasks_created_today"`
	TasksCreatedThisWeek  int `json:"tasks_created_this_week"`
	TasksCreatedThisMonth int `json:"tasks_created_this_month"`
}

// TaskOverview counts tasks by status across all users.
type TaskOverview struct {
	TotalTasks     int `json:"total_tasks"`
	CompletedTasks int `json:"completed_tasks"`
	PendingTasks   int `json:"pending_tasks"`
}

// PriorityBreakdown counts tasks by priority.
type PriorityBreakdown struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// StatusPriorityCount is one cell of the status x priority matrix.
type StatusPriorityCount struct {
	Status   TaskStatus   `json:"status"`
	Priority TaskPriority `json:"priority"`
	Count    int          `json:"count"`
}

// RecentActivity counts tasks created in recent calendar windows.
type RecentActivity struct {
	Today     int `json:"today"`
	Yesterday int `json:"yesterday"`
	ThisWeek  int `json:"this_week"`
	LastWeek  int `json:"last_week"`
	ThisMonth int `json:"this_month"`
}

// CompletionTrend is the number of tasks created on Date and how many of
// those are completed now.
type CompletionTrend struct {
	Date           string `json:"date"`
	TotalTasks     int    `json:"total_tasks"`
	CompletedTasks int    `json:"completed_tasks"`
}

// GlobalTaskStatistics is the administrator's detailed task report.
// ByStatusAndPriority is keyed by status.
type GlobalTaskStatistics struct {
	Overview            TaskOverview                         `json:"overview"`
	ByPriority          PriorityBreakdown                    `json:"by_priority"`
	ByStatusAndPriority map[TaskStatus][]StatusPriorityCount `json:"by_status_and_priority"`
	RecentActivity      RecentActivity                       `json:"recent_activity"`
	CompletionTrends    []CompletionTrend                    `json:"completion_trends"`
}

// UserSummary is a user together with aggregate counts of their tasks, as
// shown in administrator listings.
type UserSummary struct {
	User
	TasksCount             int     `json:"tasks_count"`
	CompletedTasksCount    int     `json:"completed_tasks_count"`
	PendingTasksCount      int     `json:"pending_tasks_count"`
	HighPriorityTasksCount int     `json:"high_priority_tasks_count"`
	CompletionRate         float64 `json:"completion_rate"`
	RecentActivity         int     `json:"recent_activity"`
}

// UserDetailStatistics is the per-user breakdown on the administrator's
// user detail page.
type UserDetailStatistics struct {
	TotalTasks          int     `json:"total_tasks"`
	CompletedTasks      int     `json:"completed_tasks"`
	PendingTasks        int     `json:"pending_tasks"`
	HighPriorityTasks   int     `json:"high_priority_tasks"`
	MediumPriorityTasks int     `json:"medium_priority_tasks"`
	LowPriorityTasks    int     `json:"low_priority_tasks"`
	TasksThisWeek       int     `json:"tasks_this_week"`
	CompletionRate      float64 `json:"completion_rate"`
}

// RoleFilter restricts user listings by role.
type RoleFilter string

const (
	RoleAll   RoleFilter = "all"
	RoleAdmin RoleFilter = "admin"
	RoleUser  RoleFilter = "user"
)

// IsValid reports whether r is a known role filter.
func (r RoleFilter) IsValid() bool {
	return r == RoleAll || r == RoleAdmin || r == RoleUser
}

// DefaultAdminPerPage is the page size of administrator listings.
const DefaultAdminPerPage = 15

// UserListFilter selects users for the administrator listing.
type UserListFilter struct {
	Search  string
	Role    RoleFilter
	Page    int
	PerPage int
	// RecentSince bounds the recent_activity count of each row.
	RecentSince time.Time
}

// UserTaskFilter selects one user's tasks on the administrator's detail
// page. Empty Status/Priority mean "all".
type UserTaskFilter struct {
	UserID   uuid.UUID
	Status   TaskStatus
	Priority TaskPriority
	Page     int
	PerPage  int
}

// Calendar is the set of time windows statistics are computed over. All
// boundaries are UTC; weeks start on Monday.
type Calendar struct {
	Now            time.Time
	TodayStart     time.Time
	YesterdayStart time.Time
	WeekStart      time.Time
	LastWeekStart  time.Time
	MonthStart     time.Time
	TrendStart     time.Time // start of the 30 day completion trend window
	RecentStart    time.Time // start of the 7 day recent-activity window
}

// NewCalendar derives the statistics windows from now.
func NewCalendar(now time.Time) Calendar {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	// time.Weekday counts from Sunday; shift so Monday is 0.
	offset := (int(today.Weekday()) + 6) % 7
	weekStart := today.AddDate(0, 0, -offset)

	return Calendar{
		Now:            now,
		TodayStart:     today,
		YesterdayStart: today.AddDate(0, 0, -1),
		WeekStart:      weekStart,
		LastWeekStart:  weekStart.AddDate(0, 0, -7),
		MonthStart:     time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC),
		TrendStart:     now.AddDate(0, 0, -30),
		RecentStart:    today.AddDate(0, 0, -7),
	}
}

// WeekEnd is the exclusive end of the current week.
func (c Calendar) WeekEnd() time.Time {
	return c.WeekStart.AddDate(0, 0, 7)
}
