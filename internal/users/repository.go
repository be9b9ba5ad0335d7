package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/vinaykumar231/WOFR-Backend/internal/platform/db"
	"github.com/vinaykumar231/WOFR-Backend/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository interface {
	Get(ctx context.Context, userID string) (User, error)
	List(ctx context.Context, filter ListFilter) ([]User, int, error)
	Exists(ctx context.Context, userID string) (bool, error)
	FindByLogin(ctx context.Context, login string) (User, error)
	Create(ctx context.Context, u User) (User, error)
}

type repository struct {
	db      db.Querier
	builder squirrel.StatementBuilderType
}

// NewRepository constructs a repository.
func NewRepository(pool db.Querier) Repository {
	return &repository{
		db:      pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var userColumns = []string{
	"user_id", "username", "email", "COALESCE(phone_number, '')", "COALESCE(organization_name, '')",
	"password_hash", "status", "user_type", "is_verified", "created_at", "updated_at",
}

func scanUser(row pgx.CollectableRow) (User, error) {
	var u User
	err := row.Scan(&u.UserID, &u.Username, &u.Email, &u.PhoneNumber, &u.OrganizationName,
		&u.PasswordHash, &u.Status, &u.UserType, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *repository) one(ctx context.Context, q squirrel.SelectBuilder, notFound string) (User, error) {
	stmt, args, err := q.ToSql()
	if err != nil {
		return User{}, fmt.Errorf("users: build query: %w", err)
	}
	rows, err := r.db.Query(ctx, stmt, args...)
	if err != nil {
		return User{}, fmt.Errorf("%w: users: query: %w", shared.ErrStorage, err)
	}
	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, fmt.Errorf("%w: %s", shared.ErrNotFound, notFound)
	}
	if err != nil {
		return User{}, fmt.Errorf("%w: users: scan: %w", shared.ErrStorage, err)
	}
	return u, nil
}

func (r *repository) Get(ctx context.Context, userID string) (User, error) {
	q := r.builder.Select(userColumns...).From("users").Where(squirrel.Eq{"user_id": userID})
	return r.one(ctx, q, "user id "+userID+" not found")
}

// FindByLogin matches the email case-insensitively or the phone number exactly.
func (r *repository) FindByLogin(ctx context.Context, login string) (User, error) {
	q := r.builder.Select(userColumns...).From("users").
		Where(squirrel.Or{
			db.FoldedEq("email", login),
			squirrel.Eq{"phone_number": login},
		}).
		OrderBy("created_at ASC").
		Limit(1)
	return r.one(ctx, q, "no user registered with "+login)
}

func (r *repository) Exists(ctx context.Context, userID string) (bool, error) {
	var found bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE user_id = $1)`, userID).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("%w: users: exists: %w", shared.ErrStorage, err)
	}
	return found, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]User, int, error) {
	conds := squirrel.And{}
	if filter.UserType != nil {
		conds = append(conds, squirrel.Eq{"user_type": *filter.UserType})
	}
	if filter.Status != nil {
		conds = append(conds, squirrel.Eq{"status": *filter.Status})
	}

	countSQL, countArgs, err := r.builder.Select("COUNT(*)").From("users").Where(conds).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("users: build count: %w", err)
	}
	var total int
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%w: users: count: %w", shared.ErrStorage, err)
	}

	stmt, args, err := r.builder.Select(userColumns...).From("users").
		Where(conds).
		OrderBy(filter.Sort.OrderBy()).
		Limit(uint64(filter.Page.Limit)).
		Offset(uint64(filter.Page.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("users: build list: %w", err)
	}
	rows, err := r.db.Query(ctx, stmt, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: users: list: %w", shared.ErrStorage, err)
	}
	out, err := pgx.CollectRows(rows, scanUser)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: users: scan list: %w", shared.ErrStorage, err)
	}
	return out, total, nil
}

func (r *repository) Create(ctx context.Context, u User) (User, error) {
	var phone, org any
	if u.PhoneNumber != "" {
		phone = u.PhoneNumber
	}
	if u.OrganizationName != "" {
		org = u.OrganizationName
	}
	stmt, args, err := r.builder.Insert("users").
		Columns("user_id", "username", "email", "phone_number", "organization_name",
			"password_hash", "status", "user_type", "is_verified").
		Values(u.UserID, u.Username, u.Email, phone, org, u.PasswordHash, u.Status, u.UserType, u.IsVerified).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return User{}, fmt.Errorf("users: build insert: %w", err)
	}
	if err := r.db.QueryRow(ctx, stmt, args...).Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		if db.IsUniqueViolation(err) {
			return User{}, fmt.Errorf("%w: email %s is already registered", shared.ErrConflict, u.Email)
		}
		return User{}, fmt.Errorf("%w: users: insert: %w", shared.ErrStorage, err)
	}
	return u, nil
}
