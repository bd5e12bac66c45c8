package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/meterly/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler_Check(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name           string
		checks         map[string]HealthCheck
		expectedStatus int
		expectedChecks map[string]string
	}{
		{
			name:           "all healthy",
			checks:         map[string]HealthCheck{"database": ok, "redis": ok},
			expectedStatus: http.StatusOK,
			expectedChecks: map[string]string{"database": "ok", "redis": "ok"},
		},
		{
			name:           "database down",
			checks:         map[string]HealthCheck{"database": down, "redis": ok},
			expectedStatus: http.StatusServiceUnavailable,
			expectedChecks: map[string]string{"database": "error", "redis": "ok"},
		},
		{
			name:           "nil checks ignored",
			checks:         map[string]HealthCheck{"database": ok, "redis": nil},
			expectedStatus: http.StatusOK,
			expectedChecks: map[string]string{"database": "ok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.checks)
			r := newTestRouter()
			r.GET("/health", h.Check)

			w := testutil.ServeJSON(t, r, http.MethodGet, "/health", nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			var resp HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.expectedChecks, resp.Checks)
			assert.NotEmpty(t, resp.Time)
		})
	}
}
