package tenants

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/vinaykumar231/WOFR-Backend/internal/platform/db"
	"github.com/vinaykumar231/WOFR-Backend/internal/shared"
)

// Repository persists tenants and their users.
type Repository interface {
	CreateTenant(ctx context.Context, t Tenant) (Tenant, error)
	GetTenant(ctx context.Context, tenantID string) (Tenant, error)
	ListTenants(ctx context.Context, filter TenantFilter) ([]Tenant, int, error)
	TenantExists(ctx context.Context, tenantID string) (bool, error)
	CreateTenantUser(ctx context.Context, u TenantUser) (TenantUser, error)
	ListTenantUsers(ctx context.Context, filter TenantUserFilter) ([]TenantUser, int, error)
	TenantUserExists(ctx context.Context, tenantUserID string) (bool, error)
}

type repository struct {
	db      db.Querier
	builder squirrel.StatementBuilderType
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(pool db.Querier) Repository {
	return &repository{
		db:      pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var tenantColumns = []string{
	"tenant_id", "user_id", "name", "COALESCE(organization_type, '')", "COALESCE(industry_sector, '')",
	"COALESCE(registration_tax_id, '')", "COALESCE(address, '')", "COALESCE(country, '')",
	"COALESCE(zip_postal_code, '')", "status", "created_at", "updated_at",
}

var tenantUserColumns = []string{
	"tenant_user_id", "tenant_id", "name", "email", "COALESCE(position, '')", "COALESCE(department, '')",
	"COALESCE(contact_number, '')", "COALESCE(address, '')", "status", "created_at", "updated_at",
}

func scanTenant(row pgx.CollectableRow) (Tenant, error) {
	var t Tenant
	err := row.Scan(&t.TenantID, &t.UserID, &t.Name, &t.OrganizationType, &t.IndustrySector,
		&t.RegistrationTaxID, &t.Address, &t.Country, &t.ZipPostalCode, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func scanTenantUser(row pgx.CollectableRow) (TenantUser, error) {
	var u TenantUser
	err := row.Scan(&u.TenantUserID, &u.TenantID, &u.Name, &u.Email, &u.Position, &u.Department,
		&u.ContactNumber, &u.Address, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (r *repository) CreateTenant(ctx context.Context, t Tenant) (Tenant, error) {
	stmt, args, err := r.builder.Insert("tenants").
		Columns("tenant_id", "user_id", "name", "organization_type", "industry_sector",
			"registration_tax_id", "address", "country", "zip_postal_code", "status").
		Values(t.TenantID, t.UserID, t.Name, nullable(t.OrganizationType), nullable(t.IndustrySector),
			nullable(t.RegistrationTaxID), nullable(t.Address), nullable(t.Country), nullable(t.ZipPostalCode), t.Status).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return Tenant{}, fmt.Errorf("tenants: build insert: %w", err)
	}
	if err := r.db.QueryRow(ctx, stmt, args...).Scan(&t.CreatedAt, &t.UpdatedAt); err != nil {
		switch {
		case db.IsUniqueViolation(err):
			return Tenant{}, fmt.Errorf("%w: user %s already owns a tenant", shared.ErrConflict, t.UserID)
		case db.IsForeignKeyViolation(err):
			return Tenant{}, fmt.Errorf("%w: user id %s not found", shared.ErrNotFound, t.UserID)
		}
		return Tenant{}, fmt.Errorf("%w: tenants: insert: %w", shared.ErrStorage, err)
	}
	return t, nil
}

func (r *repository) GetTenant(ctx context.Context, tenantID string) (Tenant, error) {
	stmt, args, err := r.builder.Select(tenantColumns...).From("tenants").
		Where(db.FoldedEq("tenant_id", tenantID)).
		ToSql()
	if err != nil {
		return Tenant{}, fmt.Errorf("tenants: build get: %w", err)
	}
	rows, err := r.db.Query(ctx, stmt, args...)
	if err != nil {
		return Tenant{}, fmt.Errorf("%w: tenants: get: %w", shared.ErrStorage, err)
	}
	t, err := pgx.CollectExactlyOneRow(rows, scanTenant)
	if errors.Is(err, pgx.ErrNoRows) {
		return Tenant{}, fmt.Errorf("%w: tenant id %s not found", shared.ErrNotFound, tenantID)
	}
	if err != nil {
		return Tenant{}, fmt.Errorf("%w: tenants: scan: %w", shared.ErrStorage, err)
	}
	return t, nil
}

func (r *repository) ListTenants(ctx context.Context, filter TenantFilter) ([]Tenant, int, error) {
	conds := squirrel.And{}
	if filter.Name != nil {
		conds = append(conds, db.FoldedEq("name", *filter.Name))
	}
	if filter.Country != nil {
		conds = append(conds, db.FoldedEq("country", *filter.Country))
	}
	if filter.Status != nil {
		conds = append(conds, squirrel.Eq{"status": *filter.Status})
	}
	q := r.builder.Select(tenantColumns...).From("tenants").Where(conds)
	total, err := r.count(ctx, r.builder.Select("COUNT(*)").From("tenants").Where(conds))
	if err != nil {
		return nil, 0, err
	}
	out, err := listPage(ctx, r.db, q, filter.Sort, filter.Page, scanTenant)
	return out, total, err
}

func (r *repository) TenantExists(ctx context.Context, tenantID string) (bool, error) {
	inner, args, err := r.builder.Select("1").From("tenants").Where(db.FoldedEq("tenant_id", tenantID)).ToSql()
	if err != nil {
		return false, fmt.Errorf("tenants: build exists: %w", err)
	}
	var found bool
	if err := r.db.QueryRow(ctx, "SELECT EXISTS ("+inner+")", args...).Scan(&found); err != nil {
		return false, fmt.Errorf("%w: tenants: exists: %w", shared.ErrStorage, err)
	}
	return found, nil
}

func (r *repository) CreateTenantUser(ctx context.Context, u TenantUser) (TenantUser, error) {
	stmt, args, err := r.builder.Insert("tenant_users").
		Columns("tenant_user_id", "tenant_id", "name", "email", "position", "department",
			"contact_number", "address", "status").
		Values(u.TenantUserID, u.TenantID, u.Name, u.Email, nullable(u.Position), nullable(u.Department),
			nullable(u.ContactNumber), nullable(u.Address), u.Status).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return TenantUser{}, fmt.Errorf("tenants: build tenant user insert: %w", err)
	}
	if err := r.db.QueryRow(ctx, stmt, args...).Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		switch {
		case db.IsUniqueViolation(err):
			return TenantUser{}, fmt.Errorf("%w: email %s is already a tenant user", shared.ErrConflict, u.Email)
		case db.IsForeignKeyViolation(err):
			return TenantUser{}, fmt.Errorf("%w: tenant id %s not found", shared.ErrNotFound, u.TenantID)
		}
		return TenantUser{}, fmt.Errorf("%w: tenants: insert tenant user: %w", shared.ErrStorage, err)
	}
	return u, nil
}

func (r *repository) ListTenantUsers(ctx context.Context, filter TenantUserFilter) ([]TenantUser, int, error) {
	conds := squirrel.And{}
	if filter.TenantID != nil {
		conds = append(conds, db.FoldedEq("tenant_id", *filter.TenantID))
	}
	if filter.Department != nil {
		conds = append(conds, db.FoldedEq("department", *filter.Department))
	}
	if filter.Status != nil {
		conds = append(conds, squirrel.Eq{"status": *filter.Status})
	}
	q := r.builder.Select(tenantUserColumns...).From("tenant_users").Where(conds)
	total, err := r.count(ctx, r.builder.Select("COUNT(*)").From("tenant_users").Where(conds))
	if err != nil {
		return nil, 0, err
	}
	out, err := listPage(ctx, r.db, q, filter.Sort, filter.Page, scanTenantUser)
	return out, total, err
}

func (r *repository) TenantUserExists(ctx context.Context, tenantUserID string) (bool, error) {
	var found bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tenant_users WHERE tenant_user_id = $1)`, tenantUserID).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("%w: tenants: tenant user exists: %w", shared.ErrStorage, err)
	}
	return found, nil
}

func (r *repository) count(ctx context.Context, q squirrel.SelectBuilder) (int, error) {
	stmt, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("tenants: build count: %w", err)
	}
	var total int
	if err := r.db.QueryRow(ctx, stmt, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("%w: tenants: count: %w", shared.ErrStorage, err)
	}
	return total, nil
}

func listPage[T any](ctx context.Context, q db.Querier, sel squirrel.SelectBuilder, sort shared.Sort, page shared.PageRequest, scan pgx.RowToFunc[T]) ([]T, error) {
	stmt, args, err := sel.OrderBy(sort.OrderBy()).
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset())).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("tenants: build list: %w", err)
	}
	rows, err := q.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: tenants: list: %w", shared.ErrStorage, err)
	}
	out, err := pgx.CollectRows(rows, scan)
	if err != nil {
		return nil, fmt.Errorf("%w: tenants: scan list: %w", shared.ErrStorage, err)
	}
	return out, nil
}
