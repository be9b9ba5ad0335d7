package tenants

import (
	"context"
	"fmt"
	"strings"

	"github.com/vinaykumar231/WOFR-Backend/internal/shared"
)

// Service handles tenant directory logic.
type Service struct {
	repo Repository
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateTenant registers a tenant owned by ownerID. An owner holds at most one tenant.
func (s *Service) CreateTenant(ctx context.Context, ownerID string, req CreateTenantRequest) (Tenant, error) {
	if ownerID == "" {
		return Tenant{}, shared.ErrUnauthorized
	}
	return s.repo.CreateTenant(ctx, Tenant{
		TenantID:          shared.NewID("TNT"),
		UserID:            ownerID,
		Name:              strings.TrimSpace(req.Name),
		OrganizationType:  req.OrganizationType,
		IndustrySector:    req.IndustrySector,
		RegistrationTaxID: req.RegistrationTaxID,
		Address:           req.Address,
		Country:           req.Country,
		ZipPostalCode:     req.ZipPostalCode,
		Status:            shared.StatusActive,
	})
}

// GetTenant returns one tenant.
func (s *Service) GetTenant(ctx context.Context, tenantID string) (Tenant, error) {
	return s.repo.GetTenant(ctx, tenantID)
}

// ListTenants returns one page of tenants.
func (s *Service) ListTenants(ctx context.Context, req TenantListRequest) ([]Tenant, shared.PageMeta, error) {
	sort, err := shared.ParseSort(req.SortBy, req.Order, "created_at", tenantSortFields)
	if err != nil {
		return nil, shared.PageMeta{}, err
	}
	page := req.Page.Normalize()
	out, total, err := s.repo.ListTenants(ctx, TenantFilter{
		Name: req.Name, Country: req.Country, Status: req.Status, Sort: sort, Page: page,
	})
	if err != nil {
		return nil, shared.PageMeta{}, err
	}
	return out, shared.NewPageMeta(page, total), nil
}

// CreateTenantUser adds a member to an existing tenant.
func (s *Service) CreateTenantUser(ctx context.Context, req CreateTenantUserRequest) (TenantUser, error) {
	ok, err := s.repo.TenantExists(ctx, req.TenantID)
	if err != nil {
		return TenantUser{}, err
	}
	if !ok {
		return TenantUser{}, fmt.Errorf("%w: tenant id %s not found", shared.ErrNotFound, req.TenantID)
	}
	status := shared.StatusActive
	if req.Status != "" {
		if status, err = shared.ParseStatus(req.Status); err != nil {
			return TenantUser{}, err
		}
	}
	return s.repo.CreateTenantUser(ctx, TenantUser{
		TenantUserID:  shared.NewID("TUS"),
		TenantID:      req.TenantID,
		Name:          strings.TrimSpace(req.Name),
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		Position:      req.Position,
		Department:    req.Department,
		ContactNumber: req.ContactNumber,
		Address:       req.Address,
		Status:        status,
	})
}

// ListTenantUsers returns one page of tenant users.
func (s *Service) ListTenantUsers(ctx context.Context, req TenantUserListRequest) ([]TenantUser, shared.PageMeta, error) {
	sort, err := shared.ParseSort(req.SortBy, req.Order, "created_at", tenantUserSortFields)
	if err != nil {
		return nil, shared.PageMeta{}, err
	}
	page := req.Page.Normalize()
	out, total, err := s.repo.ListTenantUsers(ctx, TenantUserFilter{
		TenantID: req.TenantID, Department: req.Department, Status: req.Status, Sort: sort, Page: page,
	})
	if err != nil {
		return nil, shared.PageMeta{}, err
	}
	return out, shared.NewPageMeta(page, total), nil
}
