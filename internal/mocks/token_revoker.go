package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/taskboard/taskboard-api/internal/service/auth"
)

// MockTokenRevoker implements auth.TokenRevoker in memory.
type MockTokenRevoker struct {
	mu        sync.Mutex
	Revoked   map[string]time.Time
	Sessions  map[string]time.Time
	RevokeErr error
	CheckErr  error
}

var _ auth.TokenRevoker = (*MockTokenRevoker)(nil)

// NewMockTokenRevoker creates an empty revocation list.
func NewMockTokenRevoker() *MockTokenRevoker {
	return &MockTokenRevoker{
		Revoked:  make(map[string]time.Time),
		Sessions: make(map[string]time.Time),
	}
}

// Revoke implements auth.TokenRevoker
func (m *MockTokenRevoker) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	if m.RevokeErr != nil {
		return m.RevokeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Revoked[jti] = expiresAt
	return nil
}

// IsRevoked implements auth.TokenRevoker
func (m *MockTokenRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	if m.CheckErr != nil {
		return false, m.CheckErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Revoked[jti]
	return ok, nil
}

// RevokeSession implements auth.TokenRevoker
func (m *MockTokenRevoker) RevokeSession(_ context.Context, sessionID string, until time.Time) error {
	if m.RevokeErr != nil {
		return m.RevokeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sessions[sessionID] = until
	return nil
}

// IsSessionRevoked implements auth.TokenRevoker
func (m *MockTokenRevoker) IsSessionRevoked(_ context.Context, sessionID string) (bool, error) {
	if m.CheckErr != nil {
		return false, m.CheckErr
	}
	if sessionID == "" {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Sessions[sessionID]
	return ok, nil
}
