package api

import (
	"bytes"
	"encoding/json"

	"github.com/taskboard/taskboard-api/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Name                 string `json:"name"                  validate:"required,max=255"`
	Email                string `json:"email"                 validate:"required,email,max=255"`
	Password             string `json:"password"              validate:"required,min=8,max=72"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	// RefreshToken is the JWT refresh token to be used to obtain a new token pair
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`

	// Token is the JWT used for API authorization
	Token string `json:"token"`

	// RefreshToken is the JWT used to obtain new access tokens
	RefreshToken string `json:"refresh_token"`

	// ExpiresAt is the RFC 3339 timestamp when Token expires
	ExpiresAt string `json:"expires_at"`
}

// UserResponse wraps the authenticated user.
type UserResponse struct {
	User *domain.User `json:"user"`
}

// CreateTaskRequest defines the payload for creating a task.
type CreateTaskRequest struct {
	Title       string  `json:"title"       validate:"required,max=255"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Status      *string `json:"status"      validate:"omitempty,oneof=pending completed"`
	Priority    *string `json:"priority"    validate:"omitempty,oneof=low medium high"`
	Order       *int    `json:"order"       validate:"omitempty,gte=0"`
}

// OptionalString distinguishes an absent JSON field from an explicit null.
type OptionalString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// UpdateTaskRequest defines the payload for PUT and PATCH on a task. Absent
// fields are left untouched; "description": null clears the description.
type UpdateTaskRequest struct {
	Title       *string        `json:"title"       validate:"omitempty,max=255"`
	Description OptionalString `json:"description"`
	Status      *string        `json:"status"      validate:"omitempty,oneof=pending completed"`
	Priority    *string        `json:"priority"    validate:"omitempty,oneof=low medium high"`
	Order       *int           `json:"order"       validate:"omitempty,gte=0"`
}

// ToUpdate converts the request into a domain.TaskUpdate.
func (req UpdateTaskRequest) ToUpdate() domain.TaskUpdate {
	update := domain.TaskUpdate{
		Title: req.Title,
		Order: req.Order,
	}
	if req.Description.Set {
		if req.Description.Value == nil {
			update.ClearDescription = true
		} else {
			update.Description = req.Description.Value
		}
	}
	if req.Status != nil {
		s := domain.TaskStatus(*req.Status)
		update.Status = &s
	}
	if req.Priority != nil {
		p := domain.TaskPriority(*req.Priority)
		update.Priority = &p
	}
	return update
}

// ReorderRequest lists task IDs in their new display order.
type ReorderRequest struct {
	Tasks []string `json:"tasks" validate:"required,min=1,dive,uuid"`
}

// UpdateRoleRequest grants or revokes administrator rights.
type UpdateRoleRequest struct {
	IsAdmin *bool `json:"is_admin" validate:"required"`
}

// DataResponse wraps a single payload.
type DataResponse struct {
	Data any `json:"data"`
}

// PaginatedResponse is one page of results with its metadata.
type PaginatedResponse[T any] struct {
	Message string          `json:"message,omitempty"`
	Data    []T             `json:"data"`
	Meta    domain.PageMeta `json:"meta"`
}

// MessageDataResponse carries a confirmation message alongside the payload.
type MessageDataResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// UserDetailsResponse is the administrator's view of one user.
type UserDetailsResponse struct {
	User       *domain.User                 `json:"user"`
	Statistics *domain.UserDetailStatistics `json:"statistics"`
	Tasks      []domain.Task                `json:"tasks"`
	Meta       domain.PageMeta              `json:"meta"`
}

// nonNil keeps empty lists serialised as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
