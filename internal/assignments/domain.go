package assignments

import (
	"time"

	"github.com/vinaykumar231/WOFR-Backend/internal/shared"
)

// UserAssignment binds a platform user to a mapping, optionally under a tenant.
type UserAssignment struct {
	ID             int64     `json:"id"`
	UserID         string    `json:"user_id"`
	TenantID       *string   `json:"tenant_id"`
	MappingID      int64     `json:"mapping_id"`
	AssignedBy     string    `json:"assigned_by,omitempty"`
	AssignmentDate time.Time `json:"assignment_date"`
}

// TenantUserAssignment binds a tenant user to a mapping.
type TenantUserAssignment struct {
	ID             int64     `json:"id"`
	TenantUserID   string    `json:"tenant_user_id"`
	TenantID       string    `json:"tenant_id"`
	MappingID      int64     `json:"mapping_id"`
	AssignmentDate time.Time `json:"assignment_date"`
}

// ModuleRequest assigns every mapping of a module to a user.
type ModuleRequest struct {
	UserID   string  `json:"user_id" validate:"required,max=10"`
	TenantID *string `json:"tenant_id" validate:"omitempty,max=10"`
	ModuleID int64   `json:"module_id" validate:"required,gt=0"`
}

// MappingsRequest assigns explicit mappings to a user.
type MappingsRequest struct {
	UserID     string  `json:"user_id" validate:"required,max=10"`
	TenantID   *string `json:"tenant_id" validate:"omitempty,max=10"`
	MappingIDs []int64 `json:"mapping_ids" validate:"required,min=1,dive,gt=0"`
}

// UserResult reports the assignments a request created.
type UserResult struct {
	CreatedIDs []int64 `json:"created_assignment_ids"`
	UserID     string  `json:"user_id"`
	TenantID   *string `json:"tenant_id"`
	ModuleID   int64   `json:"module_id,omitempty"`
	MappingIDs []int64 `json:"mapping_ids,omitempty"`
}

// TenantUserRequest assigns one mapping to a tenant user.
type TenantUserRequest struct {
	TenantUserID string `json:"tenant_user_id" validate:"required,max=10"`
	TenantID     string `json:"tenant_id" validate:"required,max=10"`
	MappingID    int64  `json:"mapping_id" validate:"required,gt=0"`
}

// UserAssignmentView is an assignment joined through its mapping chain.
type UserAssignmentView struct {
	AssignmentID   int64         `json:"assignment_id"`
	UserID         string        `json:"user_id"`
	Username       string        `json:"username"`
	TenantID       string        `json:"tenant_id,omitempty"`
	TenantName     string        `json:"tenant_name,omitempty"`
	AssignedBy     string        `json:"assigned_by,omitempty"`
	AssignmentDate time.Time     `json:"assignment_date"`
	MappingID      int64         `json:"mapping_id"`
	ModuleID       int64         `json:"module_id"`
	ModuleName     string        `json:"module_name"`
	ActionID       int64         `json:"action_id"`
	ActionName     string        `json:"action_name"`
	RoleID         int64         `json:"role_id"`
	RoleName       string        `json:"role_name"`
	MappingStatus  shared.Status `json:"mapping_status"`
}

// TenantUserAssignmentView is a tenant user assignment joined through its mapping chain.
type TenantUserAssignmentView struct {
	AssignmentID   int64     `json:"assignment_id"`
	TenantUserID   string    `json:"tenant_user_id"`
	TenantUserName string    `json:"tenant_user_name"`
	TenantID       string    `json:"tenant_id"`
	MappingID      int64     `json:"mapping_id"`
	ModuleID       int64     `json:"module_id"`
	ModuleName     string    `json:"module_name"`
	ActionID       int64     `json:"action_id"`
	ActionName     string    `json:"action_name"`
	RoleID         int64     `json:"role_id"`
	RoleName       string    `json:"role_name"`
	AssignmentDate time.Time `json:"assignment_date"`
}

// NameFilters narrows listings by the names along the mapping chain.
type NameFilters struct {
	ModuleName *string
	ActionName *string
	RoleName   *string
}

// UserListRequest filters user assignment listings.
type UserListRequest struct {
	UserID          *string
	TenantID        *string
	Names           NameFilters
	IncludeInactive bool
	SortBy          string
	Order           string
	Page            shared.PageRequest
}

// TenantUserListRequest filters tenant user assignment listings.
type TenantUserListRequest struct {
	TenantUserID    *string
	TenantID        *string
	MappingID       *int64
	Names           NameFilters
	IncludeInactive bool
	SortBy          string
	Order           string
	Page            shared.PageRequest
}

// UserListFilter is the validated user listing query.
type UserListFilter struct {
	UserID          *string
	TenantID        *string
	Names           NameFilters
	IncludeInactive bool
	Sort            shared.Sort
	Page            shared.PageRequest
}

// TenantUserListFilter is the validated tenant user listing query.
type TenantUserListFilter struct {
	TenantUserID    *string
	TenantID        *string
	MappingID       *int64
	Names           NameFilters
	IncludeInactive bool
	Sort            shared.Sort
	Page            shared.PageRequest
}

var userSortFields = map[string]string{
	"assignment_date": "ura.assignment_date",
	"module_name":     "mo.name",
	"action_name":     "a.name",
	"role_name":       "r.name",
}

var tenantUserSortFields = map[string]string{
	"assignment_date": "tura.assignment_date",
	"module_name":     "mo.name",
	"action_name":     "a.name",
	"role_name":       "r.name",
}
