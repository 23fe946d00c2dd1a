package service_test

import (
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/taskboard/taskboard-api/internal/cache"
	"github.com/taskboard/taskboard-api/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTxDB returns a sqlmock-backed *sql.DB for services that open
// transactions. The mock stores ignore the *sql.Tx they receive.
func newTxDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func newTestTaskCache() *cache.TaskCache {
	return cache.NewTaskCache(cache.NewMemoryCache(), testLogger(), time.Minute, time.Minute)
}

func newUser(name string, isAdmin bool) *domain.User {
	now := time.Now().UTC()
	return &domain.User{
		ID:             uuid.New(),
		Name:           name,
		Email:          name + "@example.com",
		HashedPassword: "hashed:password123",
		IsAdmin:        isAdmin,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func newTask(owner uuid.UUID, title string, order int) *domain.Task {
	now := time.Now().UTC()
	return &domain.Task{
		ID:        uuid.New(),
		UserID:    owner,
		Title:     title,
		Status:    domain.TaskStatusPending,
		Priority:  domain.TaskPriorityMedium,
		Order:     order,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func ptr[T any](v T) *T {
	return &v
}
