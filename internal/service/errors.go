package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Input problems are returned as *domain.ValidationError
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrForbidden indicates the acting user may not touch the resource.
	// API layer should map this to HTTP 403 Forbidden.
	ErrForbidden = errors.New("not authorized to perform this action")

	// ErrTaskNotOwned indicates a reorder request named a task owned by
	// someone else.
	// API layer should map this to HTTP 403 Forbidden.
	ErrTaskNotOwned = errors.New("you can only reorder your own tasks")

	// ErrUnknownTasks indicates a reorder request named tasks that do not
	// exist. It is always wrapped in a *domain.ValidationError.
	ErrUnknownTasks = errors.New("one or more tasks do not exist")

	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password so callers cannot probe for accounts.
	// API layer should map this to HTTP 401 Unauthorized.
	ErrInvalidCredentials = errors.New("the provided credentials are incorrect")
)
