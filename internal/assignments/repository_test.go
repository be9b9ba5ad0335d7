package assignments

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

func TestUserAssignmentExistsComparesNullTenant(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM user_role_assignments WHERE \(mapping_id = \$1 AND user_id = \$2 AND tenant_id IS NOT DISTINCT FROM \$3\)\)`).
		WithArgs(int64(11), "USR0000001", nil).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	found, err := NewRepository(mock).UserAssignmentExists(context.Background(), "USR0000001", nil, 11)
	require.NoError(t, err)
	assert.True(t, found)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertTenantUserAssignmentMapsUniqueViolation(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO tenant_user_role_assignments \(tenant_user_id,tenant_id,mapping_id\) VALUES \(\$1,\$2,\$3\) RETURNING id, assignment_date`).
		WithArgs("TUS0000001", "TNT0000001", int64(12)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "tenant_user_role_assignments_key"})

	_, err = NewRepository(mock).InsertTenantUserAssignment(context.Background(), TenantUserAssignment{
		TenantUserID: "TUS0000001", TenantID: "TNT0000001", MappingID: 12,
	})
	assert.True(t, errors.Is(err, shared.ErrConflict))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertTenantUserAssignmentReturnsRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO tenant_user_role_assignments`).
		WithArgs("TUS0000001", "TNT0000001", int64(12)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "assignment_date"}).AddRow(int64(8), now))

	created, err := NewRepository(mock).InsertTenantUserAssignment(context.Background(), TenantUserAssignment{
		TenantUserID: "TUS0000001", TenantID: "TNT0000001", MappingID: 12,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(8), created.ID)
	assert.Equal(t, now, created.AssignmentDate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListUserAssignmentsHidesInactiveChains(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	active := shared.StatusActive
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM user_role_assignments ura .* WHERE \(a.status = \$1 AND m.status = \$2 AND mo.status = \$3 AND r.status = \$4 AND ura.user_id = \$5\)`).
		WithArgs(active, active, active, active, "USR0000001").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`ORDER BY ura.assignment_date ASC, ura.id ASC LIMIT 10 OFFSET 0`).
		WithArgs(active, active, active, active, "USR0000001").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "user_id", "username", "tenant_id", "tenant_name", "assigned_by", "assignment_date", "mapping_id",
			"module_id", "module_name", "action_id", "action_name", "role_id", "role_name", "status",
		}))

	user := "USR0000001"
	views, total, err := NewRepository(mock).ListUserAssignments(context.Background(), UserListFilter{
		UserID: &user,
		Sort:   shared.Sort{Column: "ura.assignment_date", Order: shared.SortAsc},
		Page:   shared.PageRequest{Page: 1, Limit: 10},
	})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, views)
	require.NoError(t, mock.ExpectationsWereMet())
}
