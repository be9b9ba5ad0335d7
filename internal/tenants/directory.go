package tenants

import "context"

// UserChecker reports whether a platform user exists.
type UserChecker interface {
	Exists(ctx context.Context, userID string) (bool, error)
}

// Directory answers existence checks for the assignment engine.
type Directory struct {
	users UserChecker
	repo  Repository
}

// NewDirectory builds Directory instance.
func NewDirectory(users UserChecker, repo Repository) *Directory {
	return &Directory{users: users, repo: repo}
}

func (d *Directory) UserExists(ctx context.Context, userID string) (bool, error) {
	return d.users.Exists(ctx, userID)
}

func (d *Directory) TenantExists(ctx context.Context, tenantID string) (bool, error) {
	return d.repo.TenantExists(ctx, tenantID)
}

func (d *Directory) TenantUserExists(ctx context.Context, tenantUserID string) (bool, error) {
	return d.repo.TenantUserExists(ctx, tenantUserID)
}
