package access

import (
	"context"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinaykumar231/WOFR-Backend/internal/shared"
)

var grantRowColumns = []string{
	"id", "status", "id", "name", "status", "id", "name", "status", "id", "name", "status",
}

func TestRepositoryUserGrantsScopesTenant(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows(grantRowColumns).
		AddRow(int64(1), shared.StatusActive, int64(10), "Admin", shared.StatusActive,
			int64(3), "Invoices", shared.StatusActive, int64(20), "View", shared.StatusInactive)
	mock.ExpectQuery(`FROM user_role_assignments ura JOIN role_module_action_mappings m ON m.id = ura.mapping_id .* WHERE ura.user_id = \$1 AND \(lower\(ura.tenant_id\) = lower\(\$2\) OR ura.tenant_id IS NULL\)`).
		WithArgs("USR0000001", "TNT0000001").
		WillReturnRows(rows)

	repo := NewRepository(mock)
	grants, err := repo.UserGrants(context.Background(), "USR0000001", "TNT0000001")
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, "Invoices", grants[0].ModuleName)
	assert.Equal(t, shared.StatusInactive, grants[0].ActionStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryTenantUserGrants(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM tenant_user_role_assignments tura .* WHERE tura.tenant_user_id = \$1$`).
		WithArgs("TUS0000001").
		WillReturnRows(pgxmock.NewRows(grantRowColumns))

	repo := NewRepository(mock)
	grants, err := repo.TenantUserGrants(context.Background(), "TUS0000001", "")
	require.NoError(t, err)
	assert.Empty(t, grants)
	assert.NoError(t, mock.ExpectationsWereMet())
}
