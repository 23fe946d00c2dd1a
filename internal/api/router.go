package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/taskboard/taskboard-api/internal/api/middleware"
)

// RouterConfig carries the handlers and middleware the router mounts.
type RouterConfig struct {
	Auth           *AuthHandler
	Tasks          *TaskHandler
	Admin          *AdminHandler
	AuthMiddleware *middleware.AuthMiddleware
	Logger         *slog.Logger
}

// NewRouter builds the HTTP routes of the API.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.NewTraceMiddleware(cfg.Logger))
	r.Use(middleware.RequestLogger)

	r.Route("/api", func(r chi.Router) {
		// Public
		r.Post("/register", cfg.Auth.Register)
		r.Post("/login", cfg.Auth.Login)
		r.Post("/refresh", cfg.Auth.RefreshToken)

		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthMiddleware.Authenticate)

			r.Post("/logout", cfg.Auth.Logout)
			r.Get("/user", cfg.Auth.CurrentUser)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", cfg.Tasks.ListTasks)
				r.Post("/", cfg.Tasks.CreateTask)
				r.Post("/reorder", cfg.Tasks.Reorder)
				r.Get("/{id}", cfg.Tasks.GetTask)
				r.Put("/{id}", cfg.Tasks.UpdateTask)
				r.Patch("/{id}", cfg.Tasks.UpdateTask)
				r.Delete("/{id}", cfg.Tasks.DeleteTask)
				r.Patch("/{id}/toggle-status", cfg.Tasks.ToggleStatus)
			})
			r.Get("/tasks-statistics", cfg.Tasks.Statistics)
			r.Get("/tasks-search-suggestions", cfg.Tasks.SearchSuggestions)
			r.Get("/tasks-filter-options", cfg.Tasks.FilterOptions)

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Get("/dashboard-stats", cfg.Admin.DashboardStats)
				r.Get("/task-statistics", cfg.Admin.TaskStatistics)
				r.Get("/top-performers", cfg.Admin.TopPerformers)
				r.Get("/users", cfg.Admin.ListUsers)
				r.Get("/users/{id}", cfg.Admin.UserDetails)
				r.Patch("/users/{id}/role", cfg.Admin.UpdateUserRole)
				r.Delete("/tasks/{id}", cfg.Admin.DeleteTask)
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			cfg.Logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
