package rbac

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vinaykumar231/WOFR-Backend/internal/access"
	"github.com/vinaykumar231/WOFR-Backend/internal/shared"
)

type stubChecker struct {
	granted map[string]bool
	err     error
	seen    access.Subject
}

func (s *stubChecker) Can(ctx context.Context, subject access.Subject, module, action string) (bool, error) {
	s.seen = subject
	if s.err != nil {
		return false, s.err
	}
	return s.granted[module+":"+action], nil
}

func serve(mw func(http.Handler) http.Handler, actor *shared.Actor) int {
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if actor != nil {
		req = req.WithContext(shared.ContextWithActor(req.Context(), *actor))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec.Code
}

func TestAllowedIsMembership(t *testing.T) {
	assert.True(t, Allowed("super_admin", SuperAdmin, Admin))
	assert.True(t, Allowed(" ADMIN ", SuperAdmin, Admin))
	assert.False(t, Allowed("employee", SuperAdmin, Admin))
	assert.False(t, Allowed("super_admin"))
	assert.False(t, Allowed("", MasterAdmin))
}

func TestRequireUserType(t *testing.T) {
	m := Middleware{}
	mw := m.RequireUserType(MasterAdmin)

	assert.Equal(t, http.StatusUnauthorized, serve(mw, nil))
	assert.Equal(t, http.StatusNoContent, serve(mw, &shared.Actor{UserID: "USR0000001", UserType: "master_admin"}))
	assert.Equal(t, http.StatusForbidden, serve(mw, &shared.Actor{UserID: "USR0000002", UserType: "employee"}))
}

func TestRequireFallsBackToCapability(t *testing.T) {
	checker := &stubChecker{granted: map[string]bool{"tenant_users:view": true}}
	m := Middleware{Resolver: checker}

	viewers := m.Require(Policy{UserTypes: []UserType{SuperAdmin}, Capability: &Capability{Module: "tenant_users", Action: "view"}})
	editors := m.Require(Policy{UserTypes: []UserType{SuperAdmin}, Capability: &Capability{Module: "tenant_users", Action: "edit"}})
	employee := &shared.Actor{UserID: "USR0000003", UserType: "employee", TenantID: "TNT0000001"}

	assert.Equal(t, http.StatusNoContent, serve(viewers, employee))
	assert.Equal(t, access.Subject{UserID: "USR0000003", TenantID: "TNT0000001"}, checker.seen)
	assert.Equal(t, http.StatusForbidden, serve(editors, employee))
}

func TestRequireResolverFailure(t *testing.T) {
	m := Middleware{Resolver: &stubChecker{err: errors.New("redis down")}}
	mw := m.Require(Policy{Capability: &Capability{Module: "mappings", Action: "view"}})

	assert.Equal(t, http.StatusInternalServerError, serve(mw, &shared.Actor{UserID: "USR0000001", UserType: "employee"}))
}

func TestAuthenticated(t *testing.T) {
	m := Middleware{}
	assert.Equal(t, http.StatusNoContent, serve(m.Authenticated(), &shared.Actor{UserID: "USR0000001", UserType: "employee"}))
	assert.Equal(t, http.StatusUnauthorized, serve(m.Authenticated(), nil))
}

type decisionLog []string

func (d *decisionLog) AuthzDecision(outcome string) { *d = append(*d, outcome) }

func TestRequireRecordsDecisions(t *testing.T) {
	var log decisionLog
	m := Middleware{
		Resolver:  &stubChecker{err: errors.New("redis down")},
		Decisions: &log,
	}
	mw := m.Require(Policy{UserTypes: []UserType{MasterAdmin}, Capability: &Capability{Module: "mappings", Action: "view"}})

	serve(mw, nil)
	serve(mw, &shared.Actor{UserID: "USR0000001", UserType: "master_admin"})
	serve(mw, &shared.Actor{UserID: "USR0000002", UserType: "employee"})

	assert.Equal(t, decisionLog{"unauthenticated", "allowed", "error"}, log)
}
