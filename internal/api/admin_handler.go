package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/taskboard/taskboard-api/internal/api/shared"
	"github.com/taskboard/taskboard-api/internal/domain"
	"github.com/taskboard/taskboard-api/internal/platform/logger"
	"github.com/taskboard/taskboard-api/internal/service"
)

// AdminHandler serves the /api/admin endpoints. Routes are expected to sit
// behind the admin middleware.
type AdminHandler struct {
	adminService service.AdminService
	logger       *slog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(adminService service.AdminService, logger *slog.Logger) *AdminHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AdminHandler")
	}
	return &AdminHandler{
		adminService: adminService,
		logger:       logger.With(slog.String("component", "admin_handler")),
	}
}

// DashboardStats handles GET /api/admin/dashboard-stats.
func (h *AdminHandler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminService.Dashboard(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve dashboard statistics")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, MessageDataResponse{
		Message: "Dashboard statistics retrieved successfully",
		Data:    stats,
	})
}

// TaskStatistics handles GET /api/admin/task-statistics.
func (h *AdminHandler) TaskStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminService.TaskStatistics(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve task statistics")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, MessageDataResponse{
		Message: "Task statistics retrieved successfully",
		Data:    stats,
	})
}

// TopPerformers handles GET /api/admin/top-performers.
func (h *AdminHandler) TopPerformers(w http.ResponseWriter, r *http.Request) {
	top, err := h.adminService.TopPerformers(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve top performers")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, MessageDataResponse{
		Message: "Top performers retrieved successfully",
		Data:    nonNil(top),
	})
}

// ListUsers handles GET /api/admin/users?search=&role=&page=&per_page=.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	filter := domain.UserListFilter{
		Search: r.URL.Query().Get("search"),
		Role:   domain.RoleFilter(r.URL.Query().Get("role")),
	}
	var err error
	if filter.Page, err = queryInt(r, "page"); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if filter.PerPage, err = queryInt(r, "per_page"); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	page, err := h.adminService.ListUsers(r.Context(), filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve users")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, PaginatedResponse[domain.UserSummary]{
		Message: "Users retrieved successfully",
		Data:    nonNil(page.Items),
		Meta:    page.Meta,
	})
}

// UserDetails handles GET /api/admin/users/{id}?status=&priority=&page=&per_page=.
func (h *AdminHandler) UserDetails(w http.ResponseWriter, r *http.Request) {
	userID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	q := r.URL.Query()
	filter := domain.UserTaskFilter{UserID: userID}
	if s := q.Get("status"); s != "" && s != "all" {
		filter.Status = domain.TaskStatus(s)
	}
	if p := q.Get("priority"); p != "" && p != "all" {
		filter.Priority = domain.TaskPriority(p)
	}
	if filter.Page, err = queryInt(r, "page"); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if filter.PerPage, err = queryInt(r, "per_page"); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	details, err := h.adminService.UserDetails(r.Context(), filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve user details")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, MessageDataResponse{
		Message: "User details retrieved successfully",
		Data: UserDetailsResponse{
			User:       details.User,
			Statistics: details.Statistics,
			Tasks:      nonNil(details.Tasks.Items),
			Meta:       details.Tasks.Meta,
		},
	})
}

// UpdateUserRole handles PATCH /api/admin/users/{id}/role.
func (h *AdminHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	userID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req UpdateRoleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.adminService.UpdateUserRole(r.Context(), userID, *req.IsAdmin)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update user role")
		return
	}

	role := "user"
	if user.IsAdmin {
		role = "admin"
	}
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	if actor, ok := shared.UserFromContext(r.Context()); ok {
		log = log.With(slog.String("actor_id", actor.ID.String()))
	}
	log.Info("user role changed", slog.String("user_id", user.ID.String()), slog.String("role", role))
	shared.RespondWithJSON(w, r, http.StatusOK, MessageDataResponse{
		Message: fmt.Sprintf("User %s has been updated to %s role successfully", user.Name, role),
		Data:    user,
	})
}

// DeleteTask handles DELETE /api/admin/tasks/{id}.
func (h *AdminHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	deleted, err := h.adminService.DeleteTask(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}
	shared.RespondWithMessage(w, r, http.StatusOK,
		fmt.Sprintf("Task '%s' owned by %s has been deleted successfully", deleted.Title, deleted.OwnerName))
}
