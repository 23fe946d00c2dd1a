package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/taskboard/taskboard-api/internal/api/middleware"
	"github.com/taskboard/taskboard-api/internal/cache"
	"github.com/taskboard/taskboard-api/internal/config"
	"github.com/taskboard/taskboard-api/internal/domain"
	"github.com/taskboard/taskboard-api/internal/events"
	"github.com/taskboard/taskboard-api/internal/mocks"
	"github.com/taskboard/taskboard-api/internal/service"
	"github.com/taskboard/taskboard-api/internal/service/auth"
)

const testJWTSecret = "api-test-secret-that-is-at-least-32-chars"

// testServer wires the real router, handlers and services over in-memory
// mock stores.
type testServer struct {
	handler http.Handler
	users   *mocks.MockUserStore
	tasks   *mocks.MockTaskStore
	stats   *mocks.TestifyMockStatsStore
	jwt     auth.JWTService
	revoker *mocks.MockTokenRevoker
	sqlMock sqlmock.Sqlmock
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:                   testJWTSecret,
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 1440,
	})
	require.NoError(t, err)

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := &testServer{
		users:   mocks.NewMockUserStore(),
		tasks:   mocks.NewMockTaskStore(),
		stats:   &mocks.TestifyMockStatsStore{},
		jwt:     jwtService,
		revoker: mocks.NewMockTokenRevoker(),
		sqlMock: sqlMock,
	}

	taskCache := cache.NewTaskCache(cache.NewMemoryCache(), log, time.Minute, time.Minute)
	emitter := events.NewInMemoryEventEmitter(log)
	emitter.RegisterHandler(events.NewCacheInvalidationHandler(taskCache))

	verifier := &mocks.MockPasswordVerifier{}
	authService := service.NewAuthService(s.users, jwtService, verifier, verifier, s.revoker, db, log)
	taskService := service.NewTaskService(s.tasks, taskCache, emitter, db, log)
	adminService := service.NewAdminService(s.stats, s.users, s.tasks, emitter, db, log)

	s.handler = NewRouter(RouterConfig{
		Auth:           NewAuthHandler(authService, log),
		Tasks:          NewTaskHandler(taskService, log),
		Admin:          NewAdminHandler(adminService, log),
		AuthMiddleware: middleware.NewAuthMiddleware(authService),
		Logger:         log,
	})
	return s
}

// expectTx registers a begin followed by a commit or rollback.
func (s *testServer) expectTx(commit bool) {
	s.sqlMock.ExpectBegin()
	if commit {
		s.sqlMock.ExpectCommit()
	} else {
		s.sqlMock.ExpectRollback()
	}
}

// addUser stores a user whose password is "password123".
func (s *testServer) addUser(name string, isAdmin bool) *domain.User {
	now := time.Now().UTC()
	u := &domain.User{
		ID:             uuid.New(),
		Name:           name,
		Email:          name + "@example.com",
		HashedPassword: "hashed:password123",
		IsAdmin:        isAdmin,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.users.Users[u.Email] = u
	return u
}

func (s *testServer) addTask(owner *domain.User, title string) *domain.Task {
	task, err := domain.NewTask(owner.ID, title)
	if err != nil {
		panic(err)
	}
	if err := s.tasks.Append(context.Background(), task); err != nil {
		panic(err)
	}
	return task
}

func (s *testServer) token(t *testing.T, user *domain.User) string {
	t.Helper()
	token, err := s.jwt.GenerateToken(context.Background(), user.ID, uuid.NewString())
	require.NoError(t, err)
	return token
}

// do sends a request through the router. body may be nil, a string (sent
// verbatim) or any value to be JSON encoded.
func (s *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

type errorBody struct {
	Error   string            `json:"error"`
	Fields  map[string]string `json:"fields"`
	TraceID string            `json:"trace_id"`
}
