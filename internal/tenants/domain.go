package tenants

import (
	"time"

	"github.com/vinaykumar231/WOFR-Backend/internal/shared"
)

// Tenant is an organisation owned by one user.
type Tenant struct {
	TenantID          string        `json:"tenant_id"`
	UserID            string        `json:"user_id"`
	Name              string        `json:"name"`
	OrganizationType  string        `json:"organization_type,omitempty"`
	IndustrySector    string        `json:"industry_sector,omitempty"`
	RegistrationTaxID string        `json:"registration_tax_id,omitempty"`
	Address           string        `json:"address,omitempty"`
	Country           string        `json:"country,omitempty"`
	ZipPostalCode     string        `json:"zip_postal_code,omitempty"`
	Status            shared.Status `json:"status"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// TenantUser is a member of a tenant's organisation.
type TenantUser struct {
	TenantUserID  string        `json:"tenant_user_id"`
	TenantID      string        `json:"tenant_id"`
	Name          string        `json:"name"`
	Email         string        `json:"email"`
	Position      string        `json:"position,omitempty"`
	Department    string        `json:"department,omitempty"`
	ContactNumber string        `json:"contact_number,omitempty"`
	Address       string        `json:"address,omitempty"`
	Status        shared.Status `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// CreateTenantRequest registers a tenant for the calling user.
type CreateTenantRequest struct {
	Name              string `json:"name" validate:"required,max=255"`
	OrganizationType  string `json:"organization_type" validate:"max=255"`
	IndustrySector    string `json:"industry_sector" validate:"max=255"`
	RegistrationTaxID string `json:"registration_tax_id" validate:"max=255"`
	Address           string `json:"address"`
	Country           string `json:"country" validate:"max=128"`
	ZipPostalCode     string `json:"zip_postal_code" validate:"max=32"`
}

// CreateTenantUserRequest adds a member to a tenant.
type CreateTenantUserRequest struct {
	TenantID      string `json:"tenant_id" validate:"required,max=10"`
	Name          string `json:"name" validate:"required,max=255"`
	Email         string `json:"email" validate:"required,email,max=255"`
	Position      string `json:"position" validate:"max=255"`
	Department    string `json:"department" validate:"max=255"`
	ContactNumber string `json:"contact_number" validate:"max=32"`
	Address       string `json:"address"`
	Status        string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// TenantListRequest filters tenant listings.
type TenantListRequest struct {
	Name    *string
	Country *string
	Status  *shared.Status
	SortBy  string
	Order   string
	Page    shared.PageRequest
}

// TenantUserListRequest filters tenant user listings.
type TenantUserListRequest struct {
	TenantID   *string
	Department *string
	Status     *shared.Status
	SortBy     string
	Order      string
	Page       shared.PageRequest
}

// TenantFilter is the validated tenant listing query.
type TenantFilter struct {
	Name    *string
	Country *string
	Status  *shared.Status
	Sort    shared.Sort
	Page    shared.PageRequest
}

// TenantUserFilter is the validated tenant user listing query.
type TenantUserFilter struct {
	TenantID   *string
	Department *string
	Status     *shared.Status
	Sort       shared.Sort
	Page       shared.PageRequest
}

var tenantSortFields = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"name":       "name",
	"country":    "country",
}

var tenantUserSortFields = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"name":       "name",
	"email":      "email",
	"department": "department",
}
