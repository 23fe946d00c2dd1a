package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/taskboard/taskboard-api/internal/api/shared"
	"github.com/taskboard/taskboard-api/internal/domain"
)

// currentUser returns the authenticated user placed in the context by the
// auth middleware, writing a 401 response when it is missing.
func currentUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user, ok := shared.UserFromContext(r.Context())
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return nil, false
	}
	return user, true
}

// getPathUUID extracts a UUID from the URL path parameters.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.ErrInvalidID
	}

	return id, nil
}

// decodeAndValidate parses the JSON body into req and runs struct
// validation. It writes the error response and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := shared.DecodeJSON(r, req); err != nil {
		handleDecodeError(w, r, err)
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, err, "")
		return false
	}
	return true
}

// queryInt parses an optional integer query parameter. Absent parameters
// yield zero.
func queryInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer", nil)
	}
	if n < 1 {
		return 0, domain.NewValidationError(name, "must be at least 1", nil)
	}
	return n, nil
}

// parseStatuses accepts a single status or a comma separated list. "all"
// places no restriction.
func parseStatuses(raw string) ([]domain.TaskStatus, error) {
	var out []domain.TaskStatus
	for _, part := range strings.Split(raw, ",") {
		s := domain.TaskStatus(strings.ToLower(strings.TrimSpace(part)))
		if s == "" || s == "all" {
			continue
		}
		if !s.IsValid() {
			return nil, domain.NewValidationError("status", "must be either pending or completed", domain.ErrInvalidTaskStatus)
		}
		out = append(out, s)
	}
	return out, nil
}

// parseTaskFilter reads the task list query string.
func parseTaskFilter(r *http.Request) (domain.TaskFilter, error) {
	q := r.URL.Query()
	var filter domain.TaskFilter
	var err error

	if raw := q.Get("status"); raw != "" {
		if filter.Statuses, err = parseStatuses(raw); err != nil {
			return filter, err
		}
	}
	if raw := strings.TrimSpace(q.Get("priority")); raw != "" && raw != "all" {
		if filter.Priorities, err = domain.ParseTaskPriorities(raw); err != nil {
			return filter, err
		}
	}
	filter.Search = q.Get("search")
	if raw := q.Get("date_from"); raw != "" {
		if filter.DateFrom, err = domain.ParseDate("date_from", raw); err != nil {
			return filter, err
		}
	}
	if raw := q.Get("date_to"); raw != "" {
		if filter.DateTo, err = domain.ParseDate("date_to", raw); err != nil {
			return filter, err
		}
	}
	filter.SortBy = domain.SortField(q.Get("sort_by"))
	filter.SortDirection = domain.SortDirection(strings.ToLower(q.Get("sort_direction")))

	if filter.Page, err = queryInt(r, "page"); err != nil {
		return filter, err
	}
	if filter.PerPage, err = queryInt(r, "per_page"); err != nil {
		return filter, err
	}
	return filter, filter.Validate()
}
