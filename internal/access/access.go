// Package access computes the role a user holds on a project and the
// permissions that role grants. It is pure: no storage, no side effects.
package access

import "github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/domain"

// RoleFor resolves the acting user's role. Ownership wins over any
// membership row; a user with neither is RoleNone.
func RoleFor(project *domain.Project, userID int64) domain.Role {
	if project == nil {
		return domain.RoleNone
	}
	if project.OwnerID == userID {
		return domain.RoleOwner
	}
	for _, m := range project.Memberships {
		if m.UserID == userID {
			return m.Role
		}
	}
	return domain.RoleNone
}

// CanRead permits any role except RoleNone.
func CanRead(role domain.Role) bool {
	return role == domain.RoleOwner || role == domain.RoleAdmin ||
		role == domain.RoleMember || role == domain.RoleViewer
}

// CanEditContent covers tasks, notes and chat.
func CanEditContent(role domain.Role) bool {
	return role == domain.RoleOwner || role == domain.RoleAdmin || role == domain.RoleMember
}

// CanManageMembers covers inviting, member add/remove and project
// metadata changes.
func CanManageMembers(role domain.Role) bool {
	return role == domain.RoleOwner || role == domain.RoleAdmin
}

// CanDelete permits project deletion.
func CanDelete(role domain.Role) bool {
	return role == domain.RoleOwner
}

// CanManageRoles permits changing existing members' roles.
func CanManageRoles(role domain.Role) bool {
	return role == domain.RoleOwner
}
