package catalog

import (
	"time"

	"github.com/vinaykumar231/WOFR-Backend/internal/shared"
)

// Kind selects which catalog table a service manages.
type Kind string

const (
	KindRole   Kind = "role"
	KindModule Kind = "module"
	KindAction Kind = "action"
)

// Table returns the storage table of the kind.
func (k Kind) Table() string {
	return string(k) + "s"
}

// Entity is the shape shared by roles, modules and actions.
type Entity struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Status      shared.Status `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// ListRequest filters and sorts a catalog listing.
type ListRequest struct {
	Status *shared.Status
	Name   *string
	SortBy string
	Order  string
	Page   shared.PageRequest
}

// ListFilter is the validated listing query handed to the repository.
type ListFilter struct {
	Status *shared.Status
	Name   *string
	Sort   shared.Sort
	Page   shared.PageRequest
}

// CreateRequest carries a new catalog entry.
type CreateRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
	Status      string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// UpdateRequest patches name and description. Nil fields are left unchanged.
type UpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
}

// StatusRequest changes the lifecycle status.
type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

var sortFields = map[string]string{
	"id":   "id",
	"name": "name",
}
