package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/taskboard/taskboard-api/internal/api"
	"github.com/taskboard/taskboard-api/internal/api/middleware"
	"github.com/taskboard/taskboard-api/internal/cache"
	"github.com/taskboard/taskboard-api/internal/config"
	"github.com/taskboard/taskboard-api/internal/events"
	"github.com/taskboard/taskboard-api/internal/jobs"
	"github.com/taskboard/taskboard-api/internal/platform/postgres"
	"github.com/taskboard/taskboard-api/internal/service"
	"github.com/taskboard/taskboard-api/internal/service/auth"
	"github.com/taskboard/taskboard-api/internal/store"
)

// application holds the shared dependencies of the server and the
// maintenance commands so they can be released together.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	cache  cache.Cache

	userStore  store.UserStore
	taskStore  store.TaskStore
	statsStore store.StatsStore

	authService  service.AuthService
	taskService  service.TaskService
	adminService service.AdminService

	eventEmitter *events.InMemoryEventEmitter
	jobRunner    *jobs.Runner
}

// newApplication wires stores, cache, services and the job runner. The
// runner is started by Run, not here.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	hasher, err := auth.NewBcryptHasher(cfg.Auth.BCryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize password hasher: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.cache, err = newCacheBackend(ctx, cfg.Cache, logger)
	if err != nil {
		return nil, err
	}
	taskCache := cache.NewTaskCache(app.cache, logger, cfg.Cache.TaskListTTL(), cfg.Cache.StatsTTL())

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	app.statsStore = postgres.NewPostgresStatsStore(db, logger)

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(events.NewCacheInvalidationHandler(taskCache))

	app.authService = service.NewAuthService(
		app.userStore, jwtService, hasher, hasher, auth.NewCacheRevoker(app.cache), db, logger)
	app.taskService = service.NewTaskService(app.taskStore, taskCache, app.eventEmitter, db, logger)
	app.adminService = service.NewAdminService(
		app.statsStore, app.userStore, app.taskStore, app.eventEmitter, db, logger)

	app.jobRunner = jobs.NewRunner(jobs.RunnerConfig{
		WorkerCount: cfg.Jobs.WorkerCount,
		QueueSize:   cfg.Jobs.QueueSize,
	}, logger)

	logger.Info("application initialized")
	return app, nil
}

// newCacheBackend connects to Redis when a URL is configured and falls
// back to the in-process cache otherwise.
func newCacheBackend(ctx context.Context, cfg config.CacheConfig, logger *slog.Logger) (cache.Cache, error) {
	if cfg.RedisURL == "" {
		logger.Info("using in-memory cache")
		return cache.NewMemoryCache(), nil
	}
	rc, err := cache.OpenRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Info("using redis cache")
	return rc, nil
}

// router builds the HTTP handler tree.
func (app *application) router() http.Handler {
	return api.NewRouter(api.RouterConfig{
		Auth:           api.NewAuthHandler(app.authService, app.logger),
		Tasks:          api.NewTaskHandler(app.taskService, app.logger),
		Admin:          api.NewAdminHandler(app.adminService, app.logger),
		AuthMiddleware: middleware.NewAuthMiddleware(app.authService),
		Logger:         app.logger,
	})
}

// cleanup releases the cache and the database pool.
func (app *application) cleanup() {
	if app.cache != nil {
		if err := app.cache.Close(); err != nil {
			app.logger.Error("error closing cache", "error", err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
	app.logger.Info("application shutdown completed")
}
