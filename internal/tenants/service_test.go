package tenants

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinaykumar231/WOFR-Backend/internal/shared"
	_ "github.com/vinaykumar231/WOFR-Backend/testing"
)

type mockRepository struct {
	tenants     map[string]Tenant
	tenantUsers map[string]TenantUser
	lastFilter  TenantUserFilter
}

func newMockRepository() *mockRepository {
	return &mockRepository{tenants: make(map[string]Tenant), tenantUsers: make(map[string]TenantUser)}
}

func (m *mockRepository) CreateTenant(ctx context.Context, t Tenant) (Tenant, error) {
	for _, existing := range m.tenants {
		if existing.UserID == t.UserID {
			return Tenant{}, fmt.Errorf("%w: user %s already owns a tenant", shared.ErrConflict, t.UserID)
		}
	}
	m.tenants[t.TenantID] = t
	return t, nil
}

func (m *mockRepository) GetTenant(ctx context.Context, tenantID string) (Tenant, error) {
	for id, t := range m.tenants {
		if strings.EqualFold(id, tenantID) {
			return t, nil
		}
	}
	return Tenant{}, fmt.Errorf("%w: tenant id %s not found", shared.ErrNotFound, tenantID)
}

func (m *mockRepository) ListTenants(ctx context.Context, filter TenantFilter) ([]Tenant, int, error) {
	var out []Tenant
	for _, t := range m.tenants {
		out = append(out, t)
	}
	return out, len(out), nil
}

func (m *mockRepository) TenantExists(ctx context.Context, tenantID string) (bool, error) {
	_, err := m.GetTenant(ctx, tenantID)
	return err == nil, nil
}

func (m *mockRepository) CreateTenantUser(ctx context.Context, u TenantUser) (TenantUser, error) {
	for _, existing := range m.tenantUsers {
		if existing.Email == u.Email {
			return TenantUser{}, fmt.Errorf("%w: email %s is already a tenant user", shared.ErrConflict, u.Email)
		}
	}
	m.tenantUsers[u.TenantUserID] = u
	return u, nil
}

func (m *mockRepository) ListTenantUsers(ctx context.Context, filter TenantUserFilter) ([]TenantUser, int, error) {
	m.lastFilter = filter
	return nil, 0, nil
}

func (m *mockRepository) TenantUserExists(ctx context.Context, tenantUserID string) (bool, error) {
	_, ok := m.tenantUsers[tenantUserID]
	return ok, nil
}

func TestCreateTenantOnePerOwner(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	tenant, err := svc.CreateTenant(ctx, "USR0000001", CreateTenantRequest{Name: " Acme ", Country: "IN"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tenant.TenantID, "TNT"))
	assert.Equal(t, "Acme", tenant.Name)
	assert.Equal(t, shared.StatusActive, tenant.Status)

	_, err = svc.CreateTenant(ctx, "USR0000001", CreateTenantRequest{Name: "Acme Two"})
	assert.True(t, errors.Is(err, shared.ErrConflict))

	_, err = svc.CreateTenant(ctx, "", CreateTenantRequest{Name: "Nobody"})
	assert.True(t, errors.Is(err, shared.ErrUnauthorized))
}

func TestCreateTenantUser(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()
	tenant, err := svc.CreateTenant(ctx, "USR0000001", CreateTenantRequest{Name: "Acme"})
	require.NoError(t, err)

	_, err = svc.CreateTenantUser(ctx, CreateTenantUserRequest{TenantID: "TNT0000404", Name: "Ravi", Email: "ravi@acme.test"})
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	member, err := svc.CreateTenantUser(ctx, CreateTenantUserRequest{
		TenantID: strings.ToLower(tenant.TenantID), Name: "Ravi", Email: "Ravi@Acme.test", Department: "Ops",
	})
	require.NoError(t, err)
	assert.Equal(t, "ravi@acme.test", member.Email)
	assert.Equal(t, shared.StatusActive, member.Status)

	_, err = svc.CreateTenantUser(ctx, CreateTenantUserRequest{TenantID: tenant.TenantID, Name: "Ravi K", Email: "ravi@acme.test"})
	assert.True(t, errors.Is(err, shared.ErrConflict))

	dir := NewDirectory(stubUsers{"USR0000001": true}, repo)
	ok, err := dir.TenantUserExists(ctx, member.TenantUserID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = dir.UserExists(ctx, "USR0000002")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListTenantUsersSort(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	_, _, err := svc.ListTenantUsers(context.Background(), TenantUserListRequest{SortBy: "department", Order: "desc"})
	require.NoError(t, err)
	assert.Equal(t, shared.Sort{Column: "department", Order: shared.SortDesc}, repo.lastFilter.Sort)

	_, _, err = svc.ListTenantUsers(context.Background(), TenantUserListRequest{SortBy: "salary"})
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}

type stubUsers map[string]bool

func (s stubUsers) Exists(ctx context.Context, userID string) (bool, error) {
	return s[userID], nil
}
