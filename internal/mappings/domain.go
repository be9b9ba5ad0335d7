package mappings

import (
	"time"

	"github.com/vinaykumar231/WOFR-Backend/internal/shared"
)

// Mapping binds one (role, module, action) triple.
type Mapping struct {
	ID             int64         `json:"id"`
	RoleID         int64         `json:"role_id"`
	ModuleID       int64         `json:"module_id"`
	ActionID       int64         `json:"action_id"`
	Status         shared.Status `json:"status"`
	AssignedBy     string        `json:"assigned_by,omitempty"`
	AssignmentDate time.Time     `json:"assignment_date"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// AssignmentGroup expands into the cross product of its roles and actions.
type AssignmentGroup struct {
	RoleIDs   []int64 `json:"role_ids" validate:"required,min=1,dive,gt=0"`
	ActionIDs []int64 `json:"action_ids" validate:"required,min=1,dive,gt=0"`
	Status    string  `json:"status" validate:"omitempty,oneof=active inactive"`
}

// BulkCreateRequest creates mappings under one module.
type BulkCreateRequest struct {
	ModuleID    int64             `json:"module_id" validate:"required,gt=0"`
	Assignments []AssignmentGroup `json:"assignments" validate:"required,min=1,dive"`
}

// ExistingMapping reports a triple that was already mapped.
type ExistingMapping struct {
	RoleID    int64 `json:"role_id"`
	ActionID  int64 `json:"action_id"`
	MappingID int64 `json:"mapping_id"`
}

// BulkCreateResult summarises a bulk create.
type BulkCreateResult struct {
	CreatedMappingIDs []int64           `json:"created_mapping_ids"`
	ModuleID          int64             `json:"module_id"`
	ActionIDs         []int64           `json:"action_ids"`
	RoleIDs           []int64           `json:"role_ids"`
	AssignedBy        string            `json:"assigned_by"`
	AssignmentDate    time.Time         `json:"assignment_date"`
	ExistingMappings  []ExistingMapping `json:"existing_mappings"`
}

// Patch overwrites the non-nil columns of a mapping.
type Patch struct {
	RoleID     *int64  `json:"role_id" validate:"omitempty,gt=0"`
	ActionIDs  []int64 `json:"action_ids" validate:"omitempty,dive,gt=0"`
	AssignedBy *string `json:"assigned_by"`
	Status     *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// UpdateRequest patches one mapping.
type UpdateRequest struct {
	ModuleID    int64   `json:"module_id" validate:"required,gt=0"`
	Assignments []Patch `json:"assignments" validate:"required,min=1,dive"`
}

// StatusBulkRequest sets one status across many mappings.
type StatusBulkRequest struct {
	MappingIDs []int64 `json:"mapping_ids" validate:"required,min=1,dive,gt=0"`
	Status     string  `json:"status" validate:"required"`
}

// StatusBulkResult lists the mappings that changed.
type StatusBulkResult struct {
	UpdatedMappingIDs []int64       `json:"updated_mapping_ids"`
	NewStatus         shared.Status `json:"new_status"`
}

// MappingView is a mapping joined with its names and mapper.
type MappingView struct {
	ID             int64         `json:"id"`
	ModuleID       int64         `json:"module_id"`
	ModuleName     string        `json:"module_name"`
	ActionID       int64         `json:"action_id"`
	ActionName     string        `json:"action_name"`
	RoleID         int64         `json:"role_id"`
	RoleName       string        `json:"role_name"`
	Status         shared.Status `json:"status"`
	MapperID       string        `json:"mapper_id"`
	MapperName     string        `json:"mapper_name"`
	AssignmentDate time.Time     `json:"assignment_date"`
}

// ListRequest filters mapping listings by joined names.
type ListRequest struct {
	ModuleName *string
	ActionName *string
	RoleName   *string
	SortBy     string
	Order      string
	Page       shared.PageRequest
}

// ListFilter is the validated listing query.
type ListFilter struct {
	ModuleName *string
	ActionName *string
	RoleName   *string
	Sort       shared.Sort
	Page       shared.PageRequest
}

var sortFields = map[string]string{
	"assignment_date": "m.assignment_date",
	"module_name":     "mo.name",
	"action_name":     "a.name",
	"role_name":       "r.name",
}
