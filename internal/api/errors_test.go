package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskboard/taskboard-api/internal/api/shared"
	"github.com/taskboard/taskboard-api/internal/domain"
	"github.com/taskboard/taskboard-api/internal/service"
	"github.com/taskboard/taskboard-api/internal/service/auth"
	"github.com/taskboard/taskboard-api/internal/store"
)

func TestMapErrorToStatusCodeAndMessage(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", domain.NewValidationError("title", "is required", domain.ErrTaskTitleEmpty), http.StatusUnprocessableEntity, "The given data was invalid"},
		{"wrapped validation", fmt.Errorf("create: %w", domain.NewValidationError("priority", "bad", nil)), http.StatusUnprocessableEntity, "The given data was invalid"},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized, "Token expired"},
		{"revoked token", auth.ErrRevokedToken, http.StatusUnauthorized, "Token has been revoked"},
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized, "Unauthenticated"},
		{"refresh token", fmt.Errorf("refresh: %w", auth.ErrInvalidRefreshToken), http.StatusUnauthorized, "Invalid refresh token"},
		{"credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, "The provided credentials are incorrect"},
		{"forbidden", service.ErrForbidden, http.StatusForbidden, "This action is unauthorized"},
		{"not owned", service.ErrTaskNotOwned, http.StatusForbidden, "You can only reorder your own tasks"},
		{"task not found", fmt.Errorf("get: %w", store.ErrTaskNotFound), http.StatusNotFound, "Task not found"},
		{"user not found", store.ErrUserNotFound, http.StatusNotFound, "User not found"},
		{"generic not found", store.ErrNotFound, http.StatusNotFound, "Resource not found"},
		{"email taken", store.ErrEmailExists, http.StatusConflict, "The email has already been taken"},
		{"empty body", shared.ErrEmptyBody, http.StatusBadRequest, "Request body is required"},
		{"bad id", domain.ErrInvalidID, http.StatusBadRequest, "Invalid identifier"},
		{"unknown", errors.New("pq: relation does not exist"), http.StatusInternalServerError, "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, MapErrorToStatusCode(tt.err))
			assert.Equal(t, tt.message, GetSafeErrorMessage(tt.err))
		})
	}
}

func TestMapErrorToStatusCode_ValidatorErrors(t *testing.T) {
	err := shared.ValidateRequest(&LoginRequest{})
	require.Error(t, err)

	assert.Equal(t, http.StatusUnprocessableEntity, MapErrorToStatusCode(err))
	assert.Equal(t, "The given data was invalid", GetSafeErrorMessage(err))
}

func TestHandleAPIError(t *testing.T) {
	t.Run("validation errors carry fields", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/tasks", nil)

		HandleAPIError(rec, req, domain.NewValidationError("title", "is required", nil), "")

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.JSONEq(t, `{"error":"The given data was invalid","fields":{"title":"is required"}}`, rec.Body.String())
	})

	t.Run("fallback replaces generic message", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)

		HandleAPIError(rec, req, errors.New("timeout"), "Failed to retrieve tasks")

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"Failed to retrieve tasks"}`, rec.Body.String())
	})

	t.Run("fallback ignored for mapped errors", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)

		HandleAPIError(rec, req, store.ErrTaskNotFound, "Failed to retrieve task")

		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"Task not found"}`, rec.Body.String())
	})
}
