package users

import (
	"time"

	"github.com/vinaykumar231/WOFR-Backend/internal/shared"
)

// User is a platform account.
type User struct {
	UserID           string        `json:"user_id"`
	Username         string        `json:"username"`
	Email            string        `json:"email"`
	PhoneNumber      string        `json:"phone_number,omitempty"`
	OrganizationName string        `json:"organization_name,omitempty"`
	PasswordHash     string        `json:"-"`
	Status           shared.Status `json:"status"`
	UserType         string        `json:"user_type"`
	IsVerified       bool          `json:"is_verified"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// ListRequest filters user listings.
type ListRequest struct {
	UserType *string
	Status   *shared.Status
	SortBy   string
	Order    string
	Page     shared.PageRequest
}

// ListFilter is the validated listing query.
type ListFilter struct {
	UserType *string
	Status   *shared.Status
	Sort     shared.Sort
	Page     shared.PageRequest
}

var sortFields = map[string]string{
	"created_at": "created_at",
	"username":   "username",
	"email":      "email",
}
