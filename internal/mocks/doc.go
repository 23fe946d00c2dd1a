// Package mocks provides centralized mock implementations for testing.
//
// Store mocks keep an in-memory default behaviour so most tests only seed
// data; every method can be overridden through its Fn field. Service mocks
// used by the HTTP handler tests are function-field only: calling an
// unconfigured method returns ErrNotConfigured.
//
// Usage:
//
//	tasks := mocks.NewMockTaskStore()
//	tasks.GetByIDFn = func(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
//	    return nil, store.ErrTaskNotFound
//	}
package mocks

import "errors"

// ErrNotConfigured is returned by service mocks whose Fn field is unset.
var ErrNotConfigured = errors.New("mock method not configured")
