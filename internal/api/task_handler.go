package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/taskboard/taskboard-api/internal/api/shared"
	"github.com/taskboard/taskboard-api/internal/domain"
	"github.com/taskboard/taskboard-api/internal/platform/logger"
	"github.com/taskboard/taskboard-api/internal/service"
)

// TaskHandler serves the authenticated user's task endpoints.
type TaskHandler struct {
	taskService service.TaskService
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService service.TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}
	return &TaskHandler{
		taskService: taskService,
		logger:      logger.With(slog.String("component", "task_handler")),
	}
}

// ListTasks handles GET /api/tasks. A page or per_page parameter selects
// the paginated form {data, meta}; otherwise every matching task is
// returned as {data}.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	filter, err := parseTaskFilter(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if filter.Paginated() {
		page, err := h.taskService.ListTasksPage(r.Context(), user, filter)
		if err != nil {
			HandleAPIError(w, r, err, "Failed to retrieve tasks")
			return
		}
		shared.RespondWithJSON(w, r, http.StatusOK, PaginatedResponse[domain.Task]{
			Data: nonNil(page.Items),
			Meta: page.Meta,
		})
		return
	}

	tasks, err := h.taskService.ListTasks(r.Context(), user, filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve tasks")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, DataResponse{Data: nonNil(tasks)})
}

// CreateTask handles POST /api/tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	input := service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Order:       req.Order,
	}
	if req.Status != nil {
		s := domain.TaskStatus(*req.Status)
		input.Status = &s
	}
	if req.Priority != nil {
		p := domain.TaskPriority(*req.Priority)
		input.Priority = &p
	}

	task, err := h.taskService.CreateTask(r.Context(), user, input)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, DataResponse{Data: task})
}

// taskRequest resolves the current user and the {id} path parameter.
func taskRequest(w http.ResponseWriter, r *http.Request) (*domain.User, uuid.UUID, bool) {
	user, ok := currentUser(w, r)
	if !ok {
		return nil, uuid.Nil, false
	}
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return nil, uuid.Nil, false
	}
	return user, id, true
}

// GetTask handles GET /api/tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	user, id, ok := taskRequest(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(r.Context(), user, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, DataResponse{Data: task})
}

// UpdateTask handles PUT and PATCH /api/tasks/{id}.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	user, id, ok := taskRequest(w, r)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.taskService.UpdateTask(r.Context(), user, id, req.ToUpdate())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, DataResponse{Data: task})
}

// DeleteTask handles DELETE /api/tasks/{id}.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	user, id, ok := taskRequest(w, r)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), user, id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}
	shared.RespondWithMessage(w, r, http.StatusOK, "Task deleted successfully")
}

// ToggleStatus handles PATCH /api/tasks/{id}/toggle-status.
func (h *TaskHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	user, id, ok := taskRequest(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.ToggleStatus(r.Context(), user, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task status")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, DataResponse{Data: task})
}

// Reorder handles POST /api/tasks/reorder.
func (h *TaskHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req ReorderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ids := make([]uuid.UUID, len(req.Tasks))
	for i, raw := range req.Tasks {
		// Already validated as UUIDs.
		ids[i] = uuid.MustParse(raw)
	}

	if err := h.taskService.Reorder(r.Context(), user, ids); err != nil {
		HandleAPIError(w, r, err, "Failed to reorder tasks")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("tasks reordered",
		slog.String("user_id", user.ID.String()),
		slog.Int("count", len(ids)))
	shared.RespondWithMessage(w, r, http.StatusOK, "Tasks reordered successfully")
}

// Statistics handles GET /api/tasks-statistics.
func (h *TaskHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	stats, err := h.taskService.Statistics(r.Context(), user)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve task statistics")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, DataResponse{Data: stats})
}

// SearchSuggestions handles GET /api/tasks-search-suggestions?query=.
func (h *TaskHandler) SearchSuggestions(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	suggestions, err := h.taskService.SearchSuggestions(r.Context(), user, r.URL.Query().Get("query"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve search suggestions")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, DataResponse{Data: nonNil(suggestions)})
}

// FilterOptions handles GET /api/tasks-filter-options.
func (h *TaskHandler) FilterOptions(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, DataResponse{Data: h.taskService.FilterOptions()})
}
