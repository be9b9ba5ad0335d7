package access

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/vinaykumar231/WOFR-Backend/internal/platform/db"
	"github.com/vinaykumar231/WOFR-Backend/internal/shared"
)

// Repository reads raw grant rows for the resolver.
type Repository interface {
	UserGrants(ctx context.Context, userID, tenantID string) ([]Grant, error)
	TenantUserGrants(ctx context.Context, tenantUserID, tenantID string) ([]Grant, error)
	Subjects(ctx context.Context) ([]Subject, error)
}

type repository struct {
	db      db.Querier
	builder squirrel.StatementBuilderType
}

// NewRepository constructs the grant reader.
func NewRepository(pool db.Querier) Repository {
	return &repository{
		db:      pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var grantColumns = []string{
	"m.id", "m.status",
	"r.id", "r.name", "r.status",
	"mo.id", "mo.name", "mo.status",
	"a.id", "a.name", "a.status",
}

func (r *repository) grantQuery(from, alias string) squirrel.SelectBuilder {
	return r.builder.Select(grantColumns...).
		From(from + " " + alias).
		Join("role_module_action_mappings m ON m.id = " + alias + ".mapping_id").
		Join("roles r ON r.id = m.role_id").
		Join("modules mo ON mo.id = m.module_id").
		Join("actions a ON a.id = m.action_id")
}

// UserGrants returns direct assignments. With a tenant, only rows under that tenant or
// without any tenant count.
func (r *repository) UserGrants(ctx context.Context, userID, tenantID string) ([]Grant, error) {
	q := r.grantQuery("user_role_assignments", "ura").Where(squirrel.Eq{"ura.user_id": userID})
	if tenantID != "" {
		q = q.Where(squirrel.Or{
			db.FoldedEq("ura.tenant_id", tenantID),
			squirrel.Eq{"ura.tenant_id": nil},
		})
	}
	return r.queryGrants(ctx, q)
}

// TenantUserGrants returns tenant-scoped assignments of a tenant user.
func (r *repository) TenantUserGrants(ctx context.Context, tenantUserID, tenantID string) ([]Grant, error) {
	q := r.grantQuery("tenant_user_role_assignments", "tura").Where(squirrel.Eq{"tura.tenant_user_id": tenantUserID})
	if tenantID != "" {
		q = q.Where(db.FoldedEq("tura.tenant_id", tenantID))
	}
	return r.queryGrants(ctx, q)
}

// Subjects lists every user/tenant and tenant-user/tenant pair that holds assignments.
func (r *repository) Subjects(ctx context.Context) ([]Subject, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT user_id, '' AS tenant_user_id, COALESCE(tenant_id, '') FROM user_role_assignments
		UNION
		SELECT DISTINCT '' AS user_id, tenant_user_id, tenant_id FROM tenant_user_role_assignments`)
	if err != nil {
		return nil, fmt.Errorf("%w: access: query subjects: %w", shared.ErrStorage, err)
	}
	defer rows.Close()

	var subjects []Subject
	for rows.Next() {
		var s Subject
		if err := rows.Scan(&s.UserID, &s.TenantUserID, &s.TenantID); err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

func (r *repository) queryGrants(ctx context.Context, q squirrel.SelectBuilder) ([]Grant, error) {
	stmt, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build grants sql: %w", err)
	}
	rows, err := r.db.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: access: query grants: %w", shared.ErrStorage, err)
	}
	grants, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Grant, error) {
		var g Grant
		err := row.Scan(
			&g.MappingID, &g.MappingStatus,
			&g.RoleID, &g.RoleName, &g.RoleStatus,
			&g.ModuleID, &g.ModuleName, &g.ModuleStatus,
			&g.ActionID, &g.ActionName, &g.ActionStatus,
		)
		return g, err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: access: scan grants: %w", shared.ErrStorage, err)
	}
	return grants, nil
}
