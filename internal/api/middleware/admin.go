package middleware

import (
	"net/http"

	"github.com/taskboard/taskboard-api/internal/api/shared"
	"github.com/taskboard/taskboard-api/internal/platform/logger"
)

// RequireAdmin rejects requests whose authenticated user is not an
// administrator. It must run after AuthMiddleware.Authenticate, which loads
// the user from the store so role changes apply immediately.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := shared.UserFromContext(r.Context())
		if !ok {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Unauthenticated")
			return
		}
		if !user.IsAdmin {
			logger.FromContext(r.Context()).Warn("non-admin user attempted admin access",
				"path", r.URL.Path)
			shared.RespondWithError(w, r, http.StatusForbidden, "Access denied. Admin privileges required.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
