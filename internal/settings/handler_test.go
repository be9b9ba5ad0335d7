package settings

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinaykumar231/WOFR-Backend/internal/rbac"
	"github.com/vinaykumar231/WOFR-Backend/internal/shared"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	svc, err := Open(writeSample(t), nil)
	require.NoError(t, err)
	r := chi.NewRouter()
	r.Route("/v1/config-values", NewHandler(slog.Default(), svc, rbac.Middleware{}).MountRoutes)
	return r
}

func send(router http.Handler, method, body string, actor shared.Actor) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/v1/config-values", strings.NewReader(body))
	req = req.WithContext(shared.ContextWithActor(req.Context(), actor))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSettingsRoutesRequireMasterAdmin(t *testing.T) {
	router := newTestRouter(t)
	master := shared.Actor{UserID: "USR0000001", UserType: "master_admin"}
	admin := shared.Actor{UserID: "USR0000002", UserType: "super_admin"}

	rec := send(router, http.MethodGet, "", admin)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = send(router, http.MethodGet, "", master)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"LOGIN_MAX_OTP_ATTEMPT_COUNT":"5"`)

	rec = send(router, http.MethodPut, `{"key":"LOGIN_MAX_OTP_ATTEMPT_COUNT","value":"6"}`, master)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"LOGIN_MAX_OTP_ATTEMPT_COUNT":"6"`)

	rec = send(router, http.MethodPut, `{"key":"NOPE","value":"6"}`, master)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
