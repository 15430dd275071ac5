package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestProbes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	healthy := func(context.Context) error { return nil }
	failing := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name   string
		checks map[string]Check
		path   string
		status int
		body   string
	}{
		{"live ignores checks", map[string]Check{"db": failing}, "/health/live", http.StatusOK, `{"status":"UP"}`},
		{"ready", map[string]Check{"db": healthy}, "/health/ready", http.StatusOK, `{"status":"UP"}`},
		{"not ready", map[string]Check{"db": healthy, "redis": failing}, "/health/ready", http.StatusServiceUnavailable,
			`{"status":"DOWN","checks":{"redis":"connection refused"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			NewHandler(tt.checks).RegisterRoutes(r.Group("/"))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}
