package assignments

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/vinaykumar231/WOFR-Backend/internal/platform/db"
	"github.com/vinaykumar231/WOFR-Backend/internal/shared"
)

// Repository persists user and tenant user assignments.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	MappingIDsByModule(ctx context.Context, moduleID int64) ([]int64, error)
	MappingExists(ctx context.Context, id int64) (bool, error)
	UserAssignmentExists(ctx context.Context, userID string, tenantID *string, mappingID int64) (bool, error)
	InsertUserAssignment(ctx context.Context, a UserAssignment) (int64, error)
	TenantUserAssignmentExists(ctx context.Context, tenantUserID string, mappingID int64) (bool, error)
	InsertTenantUserAssignment(ctx context.Context, a TenantUserAssignment) (TenantUserAssignment, error)
	ListUserAssignments(ctx context.Context, filter UserListFilter) ([]UserAssignmentView, int, error)
	ListTenantUserAssignments(ctx context.Context, filter TenantUserListFilter) ([]TenantUserAssignmentView, int, error)
}

type repository struct {
	db      db.Querier
	pool    db.Pool
	builder squirrel.StatementBuilderType
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(pool db.Pool) Repository {
	return &repository{
		db:      pool,
		pool:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool, builder: r.builder})
	})
}

func (r *repository) MappingIDsByModule(ctx context.Context, moduleID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM role_module_action_mappings WHERE module_id = $1 ORDER BY id`, moduleID)
	if err != nil {
		return nil, fmt.Errorf("%w: assignments: mappings of module: %w", shared.ErrStorage, err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("%w: assignments: scan mapping ids: %w", shared.ErrStorage, err)
	}
	return ids, nil
}

func (r *repository) MappingExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, r.builder.Select("1").From("role_module_action_mappings").Where(squirrel.Eq{"id": id}))
}

func (r *repository) UserAssignmentExists(ctx context.Context, userID string, tenantID *string, mappingID int64) (bool, error) {
	var tenant any
	if tenantID != nil {
		tenant = *tenantID
	}
	return r.exists(ctx, r.builder.Select("1").From("user_role_assignments").Where(squirrel.And{
		squirrel.Eq{"user_id": userID, "mapping_id": mappingID},
		squirrel.Expr("tenant_id IS NOT DISTINCT FROM ?", tenant),
	}))
}

func (r *repository) TenantUserAssignmentExists(ctx context.Context, tenantUserID string, mappingID int64) (bool, error) {
	return r.exists(ctx, r.builder.Select("1").From("tenant_user_role_assignments").
		Where(squirrel.Eq{"tenant_user_id": tenantUserID, "mapping_id": mappingID}))
}

func (r *repository) exists(ctx context.Context, q squirrel.SelectBuilder) (bool, error) {
	inner, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("assignments: build exists: %w", err)
	}
	var found bool
	if err := r.db.QueryRow(ctx, "SELECT EXISTS ("+inner+")", args...).Scan(&found); err != nil {
		return false, fmt.Errorf("%w: assignments: exists: %w", shared.ErrStorage, err)
	}
	return found, nil
}

func (r *repository) InsertUserAssignment(ctx context.Context, a UserAssignment) (int64, error) {
	var assignedBy any
	if a.AssignedBy != "" {
		assignedBy = a.AssignedBy
	}
	var tenant any
	if a.TenantID != nil {
		tenant = *a.TenantID
	}
	stmt, args, err := r.builder.Insert("user_role_assignments").
		Columns("user_id", "tenant_id", "mapping_id", "assigned_by").
		Values(a.UserID, tenant, a.MappingID, assignedBy).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("assignments: build insert: %w", err)
	}
	var id int64
	if err := r.db.QueryRow(ctx, stmt, args...).Scan(&id); err != nil {
		if db.IsForeignKeyViolation(err) {
			return 0, fmt.Errorf("%w: assignment references a missing row (%s)", shared.ErrNotFound, db.ConstraintName(err))
		}
		return 0, fmt.Errorf("%w: assignments: insert user assignment: %w", shared.ErrStorage, err)
	}
	return id, nil
}

func (r *repository) InsertTenantUserAssignment(ctx context.Context, a TenantUserAssignment) (TenantUserAssignment, error) {
	stmt, args, err := r.builder.Insert("tenant_user_role_assignments").
		Columns("tenant_user_id", "tenant_id", "mapping_id").
		Values(a.TenantUserID, a.TenantID, a.MappingID).
		Suffix("RETURNING id, assignment_date").
		ToSql()
	if err != nil {
		return TenantUserAssignment{}, fmt.Errorf("assignments: build insert: %w", err)
	}
	if err := r.db.QueryRow(ctx, stmt, args...).Scan(&a.ID, &a.AssignmentDate); err != nil {
		if db.IsUniqueViolation(err) {
			return TenantUserAssignment{}, fmt.Errorf("%w: tenant user %s already holds mapping %d", shared.ErrConflict, a.TenantUserID, a.MappingID)
		}
		if db.IsForeignKeyViolation(err) {
			return TenantUserAssignment{}, fmt.Errorf("%w: assignment references a missing row (%s)", shared.ErrNotFound, db.ConstraintName(err))
		}
		return TenantUserAssignment{}, fmt.Errorf("%w: assignments: insert tenant user assignment: %w", shared.ErrStorage, err)
	}
	return a, nil
}

func chainConditions(names NameFilters, includeInactive bool) squirrel.And {
	conds := squirrel.And{}
	if names.ModuleName != nil {
		conds = append(conds, db.FoldedEq("mo.name", *names.ModuleName))
	}
	if names.ActionName != nil {
		conds = append(conds, db.FoldedEq("a.name", *names.ActionName))
	}
	if names.RoleName != nil {
		conds = append(conds, db.FoldedEq("r.name", *names.RoleName))
	}
	if !includeInactive {
		conds = append(conds, squirrel.Eq{
			"m.status":  shared.StatusActive,
			"r.status":  shared.StatusActive,
			"mo.status": shared.StatusActive,
			"a.status":  shared.StatusActive,
		})
	}
	return conds
}

func joinChain(q squirrel.SelectBuilder, alias string) squirrel.SelectBuilder {
	return q.Join("role_module_action_mappings m ON m.id = " + alias + ".mapping_id").
		Join("modules mo ON mo.id = m.module_id").
		Join("actions a ON a.id = m.action_id").
		Join("roles r ON r.id = m.role_id")
}

func (r *repository) userBase(columns ...string) squirrel.SelectBuilder {
	q := r.builder.Select(columns...).
		From("user_role_assignments ura").
		Join("users u ON u.user_id = ura.user_id").
		LeftJoin("tenants t ON t.tenant_id = ura.tenant_id")
	return joinChain(q, "ura")
}

func (r *repository) ListUserAssignments(ctx context.Context, filter UserListFilter) ([]UserAssignmentView, int, error) {
	conds := chainConditions(filter.Names, filter.IncludeInactive)
	if filter.UserID != nil {
		conds = append(conds, squirrel.Eq{"ura.user_id": *filter.UserID})
	}
	if filter.TenantID != nil {
		conds = append(conds, db.FoldedEq("ura.tenant_id", *filter.TenantID))
	}

	var total int
	if err := r.count(ctx, r.userBase("COUNT(*)").Where(conds), &total); err != nil {
		return nil, 0, err
	}

	stmt, args, err := r.userBase(
		"ura.id", "ura.user_id", "u.username", "COALESCE(ura.tenant_id, '')", "COALESCE(t.name, '')",
		"COALESCE(ura.assigned_by, '')", "ura.assignment_date", "m.id",
		"mo.id", "mo.name", "a.id", "a.name", "r.id", "r.name", "m.status",
	).
		Where(conds).
		OrderBy(filter.Sort.OrderBy(), "ura.id ASC").
		Limit(uint64(filter.Page.Limit)).
		Offset(uint64(filter.Page.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("assignments: build user list: %w", err)
	}
	rows, err := r.db.Query(ctx, stmt, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: assignments: list user assignments: %w", shared.ErrStorage, err)
	}
	views, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (UserAssignmentView, error) {
		var v UserAssignmentView
		err := row.Scan(&v.AssignmentID, &v.UserID, &v.Username, &v.TenantID, &v.TenantName,
			&v.AssignedBy, &v.AssignmentDate, &v.MappingID,
			&v.ModuleID, &v.ModuleName, &v.ActionID, &v.ActionName, &v.RoleID, &v.RoleName, &v.MappingStatus)
		return v, err
	})
	if err != nil {
		return nil, 0, fmt.Errorf("%w: assignments: scan user assignments: %w", shared.ErrStorage, err)
	}
	return views, total, nil
}

func (r *repository) tenantUserBase(columns ...string) squirrel.SelectBuilder {
	q := r.builder.Select(columns...).
		From("tenant_user_role_assignments tura").
		Join("tenant_users tu ON tu.tenant_user_id = tura.tenant_user_id")
	return joinChain(q, "tura")
}

func (r *repository) ListTenantUserAssignments(ctx context.Context, filter TenantUserListFilter) ([]TenantUserAssignmentView, int, error) {
	conds := chainConditions(filter.Names, filter.IncludeInactive)
	if filter.TenantUserID != nil {
		conds = append(conds, squirrel.Eq{"tura.tenant_user_id": *filter.TenantUserID})
	}
	if filter.TenantID != nil {
		conds = append(conds, db.FoldedEq("tura.tenant_id", *filter.TenantID))
	}
	if filter.MappingID != nil {
		conds = append(conds, squirrel.Eq{"tura.mapping_id": *filter.MappingID})
	}

	var total int
	if err := r.count(ctx, r.tenantUserBase("COUNT(*)").Where(conds), &total); err != nil {
		return nil, 0, err
	}

	stmt, args, err := r.tenantUserBase(
		"tura.id", "tura.tenant_user_id", "tu.name", "tura.tenant_id", "m.id",
		"mo.id", "mo.name", "a.id", "a.name", "r.id", "r.name", "tura.assignment_date",
	).
		Where(conds).
		OrderBy(filter.Sort.OrderBy(), "tura.id ASC").
		Limit(uint64(filter.Page.Limit)).
		Offset(uint64(filter.Page.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("assignments: build tenant user list: %w", err)
	}
	rows, err := r.db.Query(ctx, stmt, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: assignments: list tenant user assignments: %w", shared.ErrStorage, err)
	}
	views, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (TenantUserAssignmentView, error) {
		var v TenantUserAssignmentView
		err := row.Scan(&v.AssignmentID, &v.TenantUserID, &v.TenantUserName, &v.TenantID, &v.MappingID,
			&v.ModuleID, &v.ModuleName, &v.ActionID, &v.ActionName, &v.RoleID, &v.RoleName, &v.AssignmentDate)
		return v, err
	})
	if err != nil {
		return nil, 0, fmt.Errorf("%w: assignments: scan tenant user assignments: %w", shared.ErrStorage, err)
	}
	return views, total, nil
}

func (r *repository) count(ctx context.Context, q squirrel.SelectBuilder, total *int) error {
	stmt, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("assignments: build count: %w", err)
	}
	if err := r.db.QueryRow(ctx, stmt, args...).Scan(total); err != nil {
		return fmt.Errorf("%w: assignments: count: %w", shared.ErrStorage, err)
	}
	return nil
}
