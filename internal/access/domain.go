package access

import (
	"sort"
	"strings"

	"github.com/vinaykumar231/WOFR-Backend/internal/shared"
)

// Subject identifies whose capabilities are resolved. Exactly one of UserID and
// TenantUserID is expected; TenantID narrows the scope.
type Subject struct {
	UserID       string `json:"user_id,omitempty"`
	TenantUserID string `json:"tenant_user_id,omitempty"`
	TenantID     string `json:"tenant_id,omitempty"`
}

func (s Subject) cacheParts() []string {
	tenant := strings.ToLower(strings.TrimSpace(s.TenantID))
	if tenant == "" {
		tenant = "-"
	}
	if s.TenantUserID != "" {
		return []string{"access", "caps", "tu", s.TenantUserID, tenant}
	}
	return []string{"access", "caps", "u", s.UserID, tenant}
}

// Grant is one assignment row joined through its mapping, carrying every status in the chain.
type Grant struct {
	MappingID     int64
	MappingStatus shared.Status
	RoleID        int64
	RoleName      string
	RoleStatus    shared.Status
	ModuleID      int64
	ModuleName    string
	ModuleStatus  shared.Status
	ActionID      int64
	ActionName    string
	ActionStatus  shared.Status
}

func (g Grant) active() bool {
	return g.MappingStatus == shared.StatusActive &&
		g.RoleStatus == shared.StatusActive &&
		g.ModuleStatus == shared.StatusActive &&
		g.ActionStatus == shared.StatusActive
}

// Capability is one granted (role, module, action) triple.
type Capability struct {
	RoleID     int64  `json:"role_id"`
	RoleName   string `json:"role_name"`
	ModuleID   int64  `json:"module_id"`
	ModuleName string `json:"module_name"`
	ActionID   int64  `json:"action_id"`
	ActionName string `json:"action_name"`
}

// CapabilitySet is the effective capability set of a subject.
type CapabilitySet struct {
	Subject      Subject      `json:"subject"`
	Capabilities []Capability `json:"capabilities"`
}

// Effective drops grants with any inactive link in the mapping, role, module or
// action chain, then dedupes by triple. The result is ordered by role, module, action id.
func Effective(grants []Grant) []Capability {
	type triple struct{ role, module, action int64 }
	seen := make(map[triple]struct{}, len(grants))
	caps := make([]Capability, 0, len(grants))
	for _, g := range grants {
		if !g.active() {
			continue
		}
		key := triple{g.RoleID, g.ModuleID, g.ActionID}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		caps = append(caps, Capability{
			RoleID:     g.RoleID,
			RoleName:   g.RoleName,
			ModuleID:   g.ModuleID,
			ModuleName: g.ModuleName,
			ActionID:   g.ActionID,
			ActionName: g.ActionName,
		})
	}
	sort.Slice(caps, func(i, j int) bool {
		if caps[i].RoleID != caps[j].RoleID {
			return caps[i].RoleID < caps[j].RoleID
		}
		if caps[i].ModuleID != caps[j].ModuleID {
			return caps[i].ModuleID < caps[j].ModuleID
		}
		return caps[i].ActionID < caps[j].ActionID
	})
	return caps
}

// Allows reports whether any capability grants action on module. Names compare case-insensitively.
func (c CapabilitySet) Allows(module, action string) bool {
	module, action = shared.FoldName(module), shared.FoldName(action)
	for _, cp := range c.Capabilities {
		if shared.FoldName(cp.ModuleName) == module && shared.FoldName(cp.ActionName) == action {
			return true
		}
	}
	return false
}

// HasRole reports whether any capability comes from the named role.
func (c CapabilitySet) HasRole(role string) bool {
	role = shared.FoldName(role)
	for _, cp := range c.Capabilities {
		if shared.FoldName(cp.RoleName) == role {
			return true
		}
	}
	return false
}
