package tenants

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/vinaykumar231/WOFR-Backend/internal/access"
	"github.com/vinaykumar231/WOFR-Backend/internal/rbac"
	"github.com/vinaykumar231/WOFR-Backend/internal/shared"
)

type capabilityStub map[string]bool

func (c capabilityStub) Can(ctx context.Context, subject access.Subject, module, action string) (bool, error) {
	return c[module+":"+action], nil
}

func newTestRouter(repo *mockRepository, caps capabilityStub) http.Handler {
	h := NewHandler(slog.Default(), NewService(repo), rbac.Middleware{Resolver: caps})
	r := chi.NewRouter()
	r.Route("/v1/tenant-users", h.MountTenantUserRoutes)
	return r
}

func request(method, path, body string, actor shared.Actor) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	return req.WithContext(shared.ContextWithActor(req.Context(), actor))
}

func TestTenantUserRoutesAdmitCapabilityHolders(t *testing.T) {
	repo := newMockRepository()
	router := newTestRouter(repo, capabilityStub{"tenant_users:view": true})
	employee := shared.Actor{UserID: "USR0000005", UserType: "employee", TenantID: "TNT0000001"}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, request(http.MethodGet, "/v1/tenant-users?department=ops", "", employee))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, request(http.MethodPost, "/v1/tenant-users", `{"tenant_id":"TNT0000001","name":"A","email":"a@b.co"}`, employee))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateTenantUserValidation(t *testing.T) {
	router := newTestRouter(newMockRepository(), nil)
	owner := shared.Actor{UserID: "USR0000001", UserType: "super_admin"}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, request(http.MethodPost, "/v1/tenant-users", `{"tenant_id":"TNT0000001","name":"A","email":"not-an-email"}`, owner))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_input")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, request(http.MethodPost, "/v1/tenant-users", `{"tenant_id":"TNT0000001","name":"A","email":"a@b.co"}`, owner))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
