package models

import "errors"

// Role is an application role. The set of roles is fixed; they are not
// database entities of their own but a closed enumeration stored on the user.
type Role string

const (
	// RoleSuperAdmin has full control including user management, AD group
	// mappings, announcements and clearing the activity log.
	RoleSuperAdmin Role = "SuperAdmin"
	// RoleSupervisor manages items and master data and may view logs.
	RoleSupervisor Role = "Supervisor"
	// RoleUser records and searches items.
	RoleUser Role = "User"
)

// ErrUnknownRole is returned when a role name does not match the enumeration.
var ErrUnknownRole = errors.New("unknown role")

// roleRank is the total priority order over roles. A higher rank wins when
// one directory identity is a member of several mapped groups.
var roleRank = map[Role]int{ //nolint:gochecknoglobals
	RoleUser:       1,
	RoleSupervisor: 2,
	RoleSuperAdmin: 3,
}

// AllRoles lists every role, highest priority first.
func AllRoles() []Role {
	return []Role{RoleSuperAdmin, RoleSupervisor, RoleUser}
}

// ParseRole converts a role name into a Role.
func ParseRole(name string) (Role, error) {
	r := Role(name)
	if _, ok := roleRank[r]; !ok {
		return "", ErrUnknownRole
	}

	return r, nil
}

// Rank returns the priority rank of the role. Unknown roles rank lowest.
func (r Role) Rank() int {
	return roleRank[r]
}

// Outranks reports whether r has strictly higher priority than other.
func (r Role) Outranks(other Role) bool {
	return r.Rank() > other.Rank()
}

// Valid reports whether r is one of the fixed roles.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}
