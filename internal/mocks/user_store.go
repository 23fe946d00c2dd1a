package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"github.com/taskboard/taskboard-api/internal/domain"
	"github.com/taskboard/taskboard-api/internal/store"
)

// MockUserStore implements store.UserStore for testing
type MockUserStore struct {
	// Function fields for customizable behavior
	CreateFn     func(ctx context.Context, user *domain.User) error
	GetByEmailFn func(ctx context.Context, email string) (*domain.User, error)
	GetByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateFn     func(ctx context.Context, user *domain.User) error
	SetAdminFn   func(ctx context.Context, id uuid.UUID, isAdmin bool) (*domain.User, error)

	mu sync.Mutex
	// Users is keyed by email for the default implementation
	Users       map[string]*domain.User
	LastUserID  uuid.UUID
	CreateError error
	// TxCount counts WithTx calls
	TxCount int
}

var _ store.UserStore = (*MockUserStore)(nil)

// NewMockUserStore creates a new mock store with initialized defaults
func NewMockUserStore(users ...*domain.User) *MockUserStore {
	m := &MockUserStore{Users: make(map[string]*domain.User)}
	for _, u := range users {
		m.Users[u.Email] = u
	}
	return m
}

// Create implements the UserStore interface
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateError != nil {
		return m.CreateError
	}
	if user.Password != "" || user.HashedPassword == "" {
		return store.ErrInvalidEntity
	}
	if _, exists := m.Users[user.Email]; exists {
		return store.ErrEmailExists
	}

	m.Users[user.Email] = user
	m.LastUserID = user.ID
	return nil
}

// GetByEmail implements the UserStore interface
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	user, exists := m.Users[domain.NormalizeEmail(email)]
	if !exists {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

// GetByID implements the UserStore interface
func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.Users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// Update implements the UserStore interface
func (m *MockUserStore) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for email, existing := range m.Users {
		if existing.ID == user.ID {
			delete(m.Users, email)
			m.Users[user.Email] = user
			return nil
		}
	}
	return store.ErrUserNotFound
}

// SetAdmin implements the UserStore interface
func (m *MockUserStore) SetAdmin(ctx context.Context, id uuid.UUID, isAdmin bool) (*domain.User, error) {
	if m.SetAdminFn != nil {
		return m.SetAdminFn(ctx, id, isAdmin)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.Users {
		if user.ID == id {
			user.IsAdmin = isAdmin
			return user, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// WithTx implements the UserStore interface. The mock ignores the
// transaction and returns itself.
func (m *MockUserStore) WithTx(_ *sql.Tx) store.UserStore {
	m.mu.Lock()
	m.TxCount++
	m.mu.Unlock()
	return m
}
