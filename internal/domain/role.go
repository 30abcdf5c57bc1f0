package domain

import "fmt"

// Role grants a user a level of access within a project. RoleOwner is
// derived from the project's owner reference and never stored as a
// membership row; RoleNone means no access at all.
type Role string

const (
	RoleOwner  Role = "Owner"
	RoleAdmin  Role = "Admin"
	RoleMember Role = "Member"
	RoleViewer Role = "Viewer"
	RoleNone   Role = "None"
)

// ParseMembershipRole validates a wire string as a role assignable to a
// membership or invitation. Owner and None are not assignable.
func ParseMembershipRole(value string) (Role, error) {
	switch Role(value) {
	case RoleAdmin, RoleMember, RoleViewer:
		return Role(value), nil
	default:
		return RoleNone, fmt.Errorf("unknown membership role %q", value)
	}
}
