package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinaykumar231/WOFR-Backend/internal/shared"
)

func TestRepositoryFindByLogin(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery(`FROM users WHERE \(lower\(email\) = lower\(\$1\) OR phone_number = \$2\) ORDER BY created_at ASC LIMIT 1`).
		WithArgs("ops@example.com", "ops@example.com").
		WillReturnRows(pgxmock.NewRows([]string{
			"user_id", "username", "email", "phone_number", "organization_name",
			"password_hash", "status", "user_type", "is_verified", "created_at", "updated_at",
		}).AddRow("USR0000001", "ops", "ops@example.com", "", "", "hash", shared.StatusActive, "super_admin", true, now, now))

	u, err := NewRepository(mock).FindByLogin(context.Background(), "ops@example.com")
	require.NoError(t, err)
	assert.Equal(t, "USR0000001", u.UserID)
	assert.Equal(t, "hash", u.PasswordHash)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCreateDuplicateEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("USR0000002", pgxmock.AnyArg(), "ops@example.com", pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err = NewRepository(mock).Create(context.Background(), User{UserID: "USR0000002", Email: "ops@example.com"})
	assert.True(t, errors.Is(err, shared.ErrConflict))
	require.NoError(t, mock.ExpectationsWereMet())
}
