package rbac

import (
	"strings"
)

// UserType is the platform-level role tag carried by every user.
type UserType string

const (
	MasterAdmin UserType = "master_admin"
	SuperAdmin  UserType = "super_admin"
	Admin       UserType = "admin"
	Employee    UserType = "employee"
)

// Valid reports whether t is a known user type.
func (t UserType) Valid() bool {
	switch t {
	case MasterAdmin, SuperAdmin, Admin, Employee:
		return true
	}
	return false
}

// Allowed reports whether userType is a member of permitted.
func Allowed(userType string, permitted ...UserType) bool {
	normalized := UserType(strings.TrimSpace(strings.ToLower(userType)))
	for _, p := range permitted {
		if normalized == p {
			return true
		}
	}
	return false
}

// Capability names a module action granted through role mappings.
type Capability struct {
	Module string
	Action string
}

// Policy admits a caller whose user type is permitted or who holds the capability.
// An empty policy admits any authenticated caller.
type Policy struct {
	UserTypes  []UserType
	Capability *Capability
}

func (p Policy) open() bool {
	return len(p.UserTypes) == 0 && p.Capability == nil
}
