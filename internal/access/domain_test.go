package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vinaykumar231/WOFR-Backend/internal/shared"
)

func activeGrant(mappingID, roleID, moduleID, actionID int64) Grant {
	return Grant{
		MappingID: mappingID, MappingStatus: shared.StatusActive,
		RoleID: roleID, RoleName: "role", RoleStatus: shared.StatusActive,
		ModuleID: moduleID, ModuleName: "Invoices", ModuleStatus: shared.StatusActive,
		ActionID: actionID, ActionName: "View", ActionStatus: shared.StatusActive,
	}
}

func TestEffectiveDropsInactiveAncestors(t *testing.T) {
	inactiveMapping := activeGrant(2, 10, 1, 21)
	inactiveMapping.MappingStatus = shared.StatusInactive
	inactiveRole := activeGrant(3, 11, 1, 20)
	inactiveRole.RoleStatus = shared.StatusInactive
	inactiveModule := activeGrant(4, 12, 2, 20)
	inactiveModule.ModuleStatus = shared.StatusInactive
	inactiveAction := activeGrant(5, 13, 1, 22)
	inactiveAction.ActionStatus = shared.StatusInactive

	caps := Effective([]Grant{
		activeGrant(1, 10, 1, 20),
		inactiveMapping,
		inactiveRole,
		inactiveModule,
		inactiveAction,
	})

	assert.Len(t, caps, 1)
	assert.Equal(t, int64(10), caps[0].RoleID)
	assert.Equal(t, int64(20), caps[0].ActionID)
}

func TestEffectiveDedupesAndSorts(t *testing.T) {
	caps := Effective([]Grant{
		activeGrant(3, 11, 1, 20),
		activeGrant(1, 10, 1, 21),
		activeGrant(1, 10, 1, 21),
		activeGrant(2, 10, 1, 20),
	})

	assert.Equal(t, []int64{20, 21, 20}, []int64{caps[0].ActionID, caps[1].ActionID, caps[2].ActionID})
	assert.Equal(t, []int64{10, 10, 11}, []int64{caps[0].RoleID, caps[1].RoleID, caps[2].RoleID})
}

func TestCapabilitySetLookups(t *testing.T) {
	set := CapabilitySet{Capabilities: Effective([]Grant{activeGrant(1, 10, 1, 20)})}

	assert.True(t, set.Allows("invoices", "VIEW"))
	assert.False(t, set.Allows("invoices", "delete"))
	assert.True(t, set.HasRole("ROLE"))
	assert.False(t, set.HasRole("auditor"))
	assert.Empty(t, Effective(nil))
}
