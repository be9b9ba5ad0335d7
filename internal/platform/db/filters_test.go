package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoldedEqTrimsValue(t *testing.T) {
	sql, args, err := FoldedEq("mo.name", "  Invoices \t").ToSql()
	require.NoError(t, err)
	assert.Equal(t, "lower(mo.name) = lower(?)", sql)
	assert.Equal(t, []any{"Invoices"}, args)
}
