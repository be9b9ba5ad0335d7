package mappings

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/vinaykumar231/WOFR-Backend/internal/platform/db"
	"github.com/vinaykumar231/WOFR-Backend/internal/shared"
)

// Repository persists role module action mappings.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	ModuleExists(ctx context.Context, id int64) (bool, error)
	RoleExists(ctx context.Context, id int64) (bool, error)
	ActionExists(ctx context.Context, id int64) (bool, error)
	FindByTriple(ctx context.Context, roleID, moduleID, actionID int64) (Mapping, bool, error)
	Insert(ctx context.Context, m Mapping) (Mapping, error)
	Get(ctx context.Context, id int64) (Mapping, error)
	Update(ctx context.Context, id int64, fields map[string]any) (Mapping, error)
	ListByModule(ctx context.Context, moduleID int64) ([]Mapping, error)
	List(ctx context.Context, filter ListFilter) ([]MappingView, int, error)
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
		repoTx := &repository{
			db:      tx,
			pool:    r.pool,
			builder: r.builder,
		}
		return fn(ctx, repoTx)
	})
}

func (r *repository) exists(ctx context.Context, table string, id int64) (bool, error) {
	var found bool
	err := r.db.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM "+table+" WHERE id = $1)", id).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("%w: mappings: check %s: %w", shared.ErrStorage, table, err)
	}
	return found, nil
}

func (r *repository) ModuleExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, "modules", id)
}

func (r *repository) RoleExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, "roles", id)
}

func (r *repository) ActionExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, "actions", id)
}

var mappingColumns = []string{
	"id", "role_id", "module_id", "action_id", "status",
	"COALESCE(assigned_by, '')", "assignment_date", "updated_at",
}

const returningMapping = "RETURNING id, role_id, module_id, action_id, status, COALESCE(assigned_by, ''), assignment_date, updated_at"

func (r *repository) FindByTriple(ctx context.Context, roleID, moduleID, actionID int64) (Mapping, bool, error) {
	stmt, args, err := r.builder.Select(mappingColumns...).
		From("role_module_action_mappings").
		Where(squirrel.Eq{"role_id": roleID, "module_id": moduleID, "action_id": actionID}).
		ToSql()
	if err != nil {
		return Mapping{}, false, fmt.Errorf("mappings: build find: %w", err)
	}
	rows, err := r.db.Query(ctx, stmt, args...)
	if err != nil {
		return Mapping{}, false, fmt.Errorf("%w: mappings: find triple: %w", shared.ErrStorage, err)
	}
	m, err := pgx.CollectExactlyOneRow(rows, scanMapping)
	if errors.Is(err, pgx.ErrNoRows) {
		return Mapping{}, false, nil
	}
	if err != nil {
		return Mapping{}, false, fmt.Errorf("%w: mappings: scan triple: %w", shared.ErrStorage, err)
	}
	return m, true, nil
}

func (r *repository) Insert(ctx context.Context, m Mapping) (Mapping, error) {
	var assignedBy any
	if m.AssignedBy != "" {
		assignedBy = m.AssignedBy
	}
	stmt, args, err := r.builder.Insert("role_module_action_mappings").
		Columns("role_id", "module_id", "action_id", "status", "assigned_by").
		Values(m.RoleID, m.ModuleID, m.ActionID, m.Status, assignedBy).
		Suffix(returningMapping).
		ToSql()
	if err != nil {
		return Mapping{}, fmt.Errorf("mappings: build insert: %w", err)
	}
	rows, err := r.db.Query(ctx, stmt, args...)
	if err != nil {
		return Mapping{}, mapWriteError(m.RoleID, m.ModuleID, m.ActionID, err)
	}
	created, err := pgx.CollectExactlyOneRow(rows, scanMapping)
	if err != nil {
		return Mapping{}, mapWriteError(m.RoleID, m.ModuleID, m.ActionID, err)
	}
	return created, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Mapping, error) {
	stmt, args, err := r.builder.Select(mappingColumns...).
		From("role_module_action_mappings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return Mapping{}, fmt.Errorf("mappings: build get: %w", err)
	}
	rows, err := r.db.Query(ctx, stmt, args...)
	if err != nil {
		return Mapping{}, fmt.Errorf("%w: mappings: get: %w", shared.ErrStorage, err)
	}
	m, err := pgx.CollectExactlyOneRow(rows, scanMapping)
	if errors.Is(err, pgx.ErrNoRows) {
		return Mapping{}, fmt.Errorf("%w: mapping id %d not found", shared.ErrNotFound, id)
	}
	if err != nil {
		return Mapping{}, fmt.Errorf("%w: mappings: scan: %w", shared.ErrStorage, err)
	}
	return m, nil
}

func (r *repository) Update(ctx context.Context, id int64, fields map[string]any) (Mapping, error) {
	fields["updated_at"] = squirrel.Expr("NOW()")
	stmt, args, err := r.builder.Update("role_module_action_mappings").
		SetMap(fields).
		Where(squirrel.Eq{"id": id}).
		Suffix(returningMapping).
		ToSql()
	if err != nil {
		return Mapping{}, fmt.Errorf("mappings: build update: %w", err)
	}
	rows, err := r.db.Query(ctx, stmt, args...)
	if err != nil {
		return Mapping{}, mapUpdateError(id, err)
	}
	m, err := pgx.CollectExactlyOneRow(rows, scanMapping)
	if errors.Is(err, pgx.ErrNoRows) {
		return Mapping{}, fmt.Errorf("%w: mapping id %d not found", shared.ErrNotFound, id)
	}
	if err != nil {
		return Mapping{}, mapUpdateError(id, err)
	}
	return m, nil
}

func (r *repository) ListByModule(ctx context.Context, moduleID int64) ([]Mapping, error) {
	stmt, args, err := r.builder.Select(mappingColumns...).
		From("role_module_action_mappings").
		Where(squirrel.Eq{"module_id": moduleID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("mappings: build list by module: %w", err)
	}
	rows, err := r.db.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: mappings: list by module: %w", shared.ErrStorage, err)
	}
	out, err := pgx.CollectRows(rows, scanMapping)
	if err != nil {
		return nil, fmt.Errorf("%w: mappings: scan by module: %w", shared.ErrStorage, err)
	}
	return out, nil
}

func (r *repository) viewFrom(columns ...string) squirrel.SelectBuilder {
	return r.builder.Select(columns...).
		From("role_module_action_mappings m").
		Join("modules mo ON mo.id = m.module_id").
		Join("actions a ON a.id = m.action_id").
		Join("roles r ON r.id = m.role_id").
		LeftJoin("users u ON u.user_id = m.assigned_by")
}

func listConditions(filter ListFilter) squirrel.And {
	conds := squirrel.And{}
	if filter.ModuleName != nil {
		conds = append(conds, db.FoldedEq("mo.name", *filter.ModuleName))
	}
	if filter.ActionName != nil {
		conds = append(conds, db.FoldedEq("a.name", *filter.ActionName))
	}
	if filter.RoleName != nil {
		conds = append(conds, db.FoldedEq("r.name", *filter.RoleName))
	}
	return conds
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]MappingView, int, error) {
	conds := listConditions(filter)

	countSQL, countArgs, err := r.viewFrom("COUNT(*)").Where(conds).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("mappings: build count: %w", err)
	}
	var total int
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%w: mappings: count: %w", shared.ErrStorage, err)
	}

	stmt, args, err := r.viewFrom(
		"m.id", "mo.id", "mo.name", "a.id", "a.name", "r.id", "r.name", "m.status",
		"COALESCE(m.assigned_by, '')", "COALESCE(u.username, '')", "m.assignment_date",
	).
		Where(conds).
		OrderBy(filter.Sort.OrderBy(), "m.id ASC").
		Limit(uint64(filter.Page.Limit)).
		Offset(uint64(filter.Page.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("mappings: build list: %w", err)
	}
	rows, err := r.db.Query(ctx, stmt, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: mappings: list: %w", shared.ErrStorage, err)
	}
	views, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (MappingView, error) {
		var v MappingView
		err := row.Scan(&v.ID, &v.ModuleID, &v.ModuleName, &v.ActionID, &v.ActionName,
			&v.RoleID, &v.RoleName, &v.Status, &v.MapperID, &v.MapperName, &v.AssignmentDate)
		return v, err
	})
	if err != nil {
		return nil, 0, fmt.Errorf("%w: mappings: scan list: %w", shared.ErrStorage, err)
	}
	return views, total, nil
}

func scanMapping(row pgx.CollectableRow) (Mapping, error) {
	var m Mapping
	err := row.Scan(&m.ID, &m.RoleID, &m.ModuleID, &m.ActionID, &m.Status, &m.AssignedBy, &m.AssignmentDate, &m.UpdatedAt)
	return m, err
}

func mapWriteError(roleID, moduleID, actionID int64, err error) error {
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("%w: mapping for role %d, module %d, action %d already exists", shared.ErrConflict, roleID, moduleID, actionID)
	}
	if db.IsForeignKeyViolation(err) {
		return fmt.Errorf("%w: mapping references a missing row (%s)", shared.ErrNotFound, db.ConstraintName(err))
	}
	return fmt.Errorf("%w: mappings: write: %w", shared.ErrStorage, err)
}

func mapUpdateError(id int64, err error) error {
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("%w: mapping id %d would duplicate an existing triple", shared.ErrConflict, id)
	}
	if db.IsForeignKeyViolation(err) {
		return fmt.Errorf("%w: mapping id %d references a missing row (%s)", shared.ErrNotFound, id, db.ConstraintName(err))
	}
	return fmt.Errorf("%w: mappings: update %d: %w", shared.ErrStorage, id, err)
}
