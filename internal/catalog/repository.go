package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/vinaykumar231/WOFR-Backend/internal/platform/db"
	"github.com/vinaykumar231/WOFR-Backend/internal/shared"
)

// Repository persists entities of one kind.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Entity, int, error)
	Get(ctx context.Context, id int64) (Entity, error)
	Create(ctx context.Context, name, description string, status shared.Status) (Entity, error)
	Update(ctx context.Context, id int64, fields map[string]any) (Entity, error)
}

type repository struct {
	db      db.Querier
	kind    Kind
	builder squirrel.StatementBuilderType
}

// NewRepository constructs the PostgreSQL repository for kind.
func NewRepository(pool db.Querier, kind Kind) Repository {
	return &repository{
		db:      pool,
		kind:    kind,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var entityColumns = []string{"id", "name", "COALESCE(description, '')", "status", "created_at", "updated_at"}

func (r *repository) where(filter ListFilter) squirrel.And {
	conds := squirrel.And{}
	if filter.Status != nil {
		conds = append(conds, squirrel.Eq{"status": *filter.Status})
	}
	if filter.Name != nil {
		conds = append(conds, db.FoldedEq("name", *filter.Name))
	}
	return conds
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Entity, int, error) {
	conds := r.where(filter)

	countSQL, countArgs, err := r.builder.Select("COUNT(*)").From(r.kind.Table()).Where(conds).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("catalog: build count: %w", err)
	}
	var total int
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%w: catalog: count %s: %w", shared.ErrStorage, r.kind.Table(), err)
	}

	stmt, args, err := r.builder.Select(entityColumns...).
		From(r.kind.Table()).
		Where(conds).
		OrderBy(filter.Sort.OrderBy()).
		Limit(uint64(filter.Page.Limit)).
		Offset(uint64(filter.Page.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("catalog: build list: %w", err)
	}
	rows, err := r.db.Query(ctx, stmt, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: catalog: list %s: %w", shared.ErrStorage, r.kind.Table(), err)
	}
	entities, err := pgx.CollectRows(rows, scanEntity)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: catalog: scan %s: %w", shared.ErrStorage, r.kind.Table(), err)
	}
	return entities, total, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Entity, error) {
	stmt, args, err := r.builder.Select(entityColumns...).From(r.kind.Table()).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return Entity{}, fmt.Errorf("catalog: build get: %w", err)
	}
	return r.one(ctx, id, stmt, args)
}

func (r *repository) Create(ctx context.Context, name, description string, status shared.Status) (Entity, error) {
	stmt, args, err := r.builder.Insert(r.kind.Table()).
		Columns("name", "description", "status").
		Values(name, description, status).
		Suffix("RETURNING id, name, COALESCE(description, ''), status, created_at, updated_at").
		ToSql()
	if err != nil {
		return Entity{}, fmt.Errorf("catalog: build insert: %w", err)
	}
	row, err := r.db.Query(ctx, stmt, args...)
	if err != nil {
		return Entity{}, r.mapWriteError(name, err)
	}
	entity, err := pgx.CollectExactlyOneRow(row, scanEntity)
	if err != nil {
		return Entity{}, r.mapWriteError(name, err)
	}
	return entity, nil
}

func (r *repository) Update(ctx context.Context, id int64, fields map[string]any) (Entity, error) {
	fields["updated_at"] = squirrel.Expr("NOW()")
	stmt, args, err := r.builder.Update(r.kind.Table()).
		SetMap(fields).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING id, name, COALESCE(description, ''), status, created_at, updated_at").
		ToSql()
	if err != nil {
		return Entity{}, fmt.Errorf("catalog: build update: %w", err)
	}
	name, _ := fields["name"].(string)
	rows, err := r.db.Query(ctx, stmt, args...)
	if err != nil {
		return Entity{}, r.mapWriteError(name, err)
	}
	entity, err := pgx.CollectExactlyOneRow(rows, scanEntity)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entity{}, fmt.Errorf("%w: %s id %d not found", shared.ErrNotFound, r.kind, id)
	}
	if err != nil {
		return Entity{}, r.mapWriteError(name, err)
	}
	return entity, nil
}

func (r *repository) one(ctx context.Context, id int64, stmt string, args []any) (Entity, error) {
	rows, err := r.db.Query(ctx, stmt, args...)
	if err != nil {
		return Entity{}, fmt.Errorf("%w: catalog: get %s: %w", shared.ErrStorage, r.kind, err)
	}
	entity, err := pgx.CollectExactlyOneRow(rows, scanEntity)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entity{}, fmt.Errorf("%w: %s id %d not found", shared.ErrNotFound, r.kind, id)
	}
	if err != nil {
		return Entity{}, fmt.Errorf("%w: catalog: scan %s: %w", shared.ErrStorage, r.kind, err)
	}
	return entity, nil
}

func (r *repository) mapWriteError(name string, err error) error {
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %s name %q already exists", shared.ErrConflict, r.kind, name)
	}
	return fmt.Errorf("%w: catalog: write %s: %w", shared.ErrStorage, r.kind, err)
}

func scanEntity(row pgx.CollectableRow) (Entity, error) {
	var e Entity
	err := row.Scan(&e.ID, &e.Name, &e.Description, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}
