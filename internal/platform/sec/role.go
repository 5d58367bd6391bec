// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import "fmt"

// # Organization Roles

// Role is the privilege level a member holds inside one organization.
//
// The set is closed: only [RoleOwner], [RoleAdmin] and [RoleMember] exist.
// Values read from requests or the database must go through [ParseRole].
type Role string

const (
	// Full control, including deleting the organization and managing owners
	RoleOwner Role = "owner"

	// Manages members and workspace resources
	RoleAdmin Role = "admin"

	// Default role, read access to workspace resources
	RoleMember Role = "member"
)

// Roles lists every valid role from most to least privileged.
var Roles = []Role{RoleOwner, RoleAdmin, RoleMember}

// # Role Hierarchy

// Rank returns the position of the role in the total order owner > admin > member.
//
// It panics for values outside the enumeration. An unknown role reaching an
// authorization decision is a programming error and must never default to
// "allowed".
func (r Role) Rank() int {
	switch r {
	case RoleOwner:
		return 3
	case RoleAdmin:
		return 2
	case RoleMember:
		return 1
	default:
		panic(fmt.Sprintf("sec: unknown role %q", string(r)))
	}
}

// AtLeast reports whether r meets or exceeds the required role.
func (r Role) AtLeast(required Role) bool {
	return r.Rank() >= required.Rank()
}

// Satisfies reports whether a member holding actual may perform an operation
// that requires the given role.
func Satisfies(actual, required Role) bool {
	return actual.AtLeast(required)
}

// IsValid reports whether r belongs to the enumeration.
func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (r Role) String() string { return string(r) }

// ParseRole converts untrusted input into a [Role].
func ParseRole(value string) (Role, error) {
	role := Role(value)
	if !role.IsValid() {
		return "", fmt.Errorf("sec: invalid role %q", value)
	}
	return role, nil
}
