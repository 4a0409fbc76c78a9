package user

import (
	"errors"
	"fmt"
)

var ErrInvalidRole = errors.New("invalid role")

// Role is a tenant-scoped role. Roles form the total order
// viewer < member < admin < owner.
type Role string

const (
	RoleViewer Role = "viewer"
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"
)

var roleRank = map[Role]int{
	RoleViewer: 1,
	RoleMember: 2,
	RoleAdmin:  3,
	RoleOwner:  4,
}

func NewRole(v string) (Role, error) {
	r := Role(v)
	if !r.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, v)
	}
	return r, nil
}

func (r Role) IsValid() bool {
	_, ok := roleRank[r]
	return ok
}

// Rank is 0 for invalid roles so they never satisfy any requirement.
func (r Role) Rank() int {
	return roleRank[r]
}

// AtLeast reports whether r is min or above it in the hierarchy.
func (r Role) AtLeast(min Role) bool {
	return r.IsValid() && min.IsValid() && r.Rank() >= min.Rank()
}

// externalRoles maps identity-provider organization roles to internal roles.
var externalRoles = map[string]Role{
	"org:owner":        RoleOwner,
	"owner":            RoleOwner,
	"org:admin":        RoleAdmin,
	"admin":            RoleAdmin,
	"org:member":       RoleMember,
	"member":           RoleMember,
	"basic_member":     RoleMember,
	"org:basic_member": RoleMember,
	"org:viewer":       RoleViewer,
	"viewer":           RoleViewer,
	"guest":            RoleViewer,
}

// RoleFromExternal maps an organization role issued by the identity provider.
// Unknown roles are rejected rather than defaulted.
func RoleFromExternal(external string) (Role, error) {
	r, ok := externalRoles[external]
	if !ok {
		return "", fmt.Errorf("%w: unmapped organization role %q", ErrInvalidRole, external)
	}
	return r, nil
}
