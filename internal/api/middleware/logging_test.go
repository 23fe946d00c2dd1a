package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskboard/taskboard-api/internal/platform/logger"
)

func TestRequestLogger(t *testing.T) {
	tests := []struct {
		name   string
		status int
		level  string
	}{
		{"implicit ok", 0, "INFO"},
		{"client error", http.StatusNotFound, "INFO"},
		{"server error", http.StatusInternalServerError, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, buf := logger.NewTestLogger(t)
			handler := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.status != 0 {
					w.WriteHeader(tt.status)
				}
				_, _ = w.Write([]byte("body"))
			}))

			req := httptest.NewRequest(http.MethodPost, "/api/tasks", nil)
			req = req.WithContext(logger.WithLogger(req.Context(), log))
			handler.ServeHTTP(httptest.NewRecorder(), req)

			entries, err := buf.GetLogEntries()
			require.NoError(t, err)
			require.Len(t, entries, 1)
			entry := entries[0]

			want := tt.status
			if want == 0 {
				want = http.StatusOK
			}
			assert.Equal(t, "request completed", entry["msg"])
			assert.Equal(t, tt.level, entry["level"])
			assert.Equal(t, "POST", entry["method"])
			assert.Equal(t, "/api/tasks", entry["path"])
			assert.EqualValues(t, want, entry["status"])
			assert.EqualValues(t, 4, entry["bytes"])
		})
	}
}
