package app

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinaykumar231/WOFR-Backend/internal/auth"
	"github.com/vinaykumar231/WOFR-Backend/internal/observability"
	"github.com/vinaykumar231/WOFR-Backend/internal/rbac"
	"github.com/vinaykumar231/WOFR-Backend/internal/users"
	"github.com/vinaykumar231/WOFR-Backend/jobs"
	_ "github.com/vinaykumar231/WOFR-Backend/testing"
)

func newTestRouter(t *testing.T) (http.Handler, *auth.TokenService) {
	t.Helper()
	tokens, err := auth.NewTokenService("router-secret", time.Hour)
	require.NoError(t, err)
	logger := slog.Default()
	router := NewRouter(RouterParams{
		Logger:       logger,
		Config:       &Config{AppEnv: "test", RateLimitPerMin: 1000},
		Tokens:       tokens,
		Metrics:      observability.NewMetrics(),
		UsersHandler: users.NewHandler(logger, users.NewService(nil), rbac.Middleware{Logger: logger}),
		JobHandler:   jobs.NewHandler(nil, logger),
	})
	return router, tokens
}

func TestRouterOpsEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, path := range []string{"/healthz", "/metrics", "/jobs/health"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestRouterUnknownRouteIsProblem(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")
}

func TestRouterAuthenticatesBearer(t *testing.T) {
	router, tokens := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/users", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	raw, _, err := tokens.Issue("USR0000002", "employee")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/users", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
