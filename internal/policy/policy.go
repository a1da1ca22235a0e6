// Package policy encodes the role-hierarchy rules for user management as a
// pure decision function. Handlers call Decide as the authoritative gate;
// the same reasons are surfaced verbatim to the UI so its controls can
// mirror the server's answer.
package policy

import (
	"fmt"

	"github.com/adelmas/galerie/internal/models"
)

// Action describes the user-management operation being attempted.
type Action string

const (
	ActionDeleteUser    Action = "delete_user"
	ActionBanUser       Action = "ban_user"
	ActionUnbanUser     Action = "unban_user"
	ActionChangeRole    Action = "change_role"
	ActionCreateUser    Action = "create_user"
	ActionUpdateProfile Action = "update_profile"
)

// DenyError carries a human-readable denial reason. It is returned to the
// client verbatim with a 403 status.
type DenyError struct {
	Reason string
}

func (e *DenyError) Error() string { return e.Reason }

// Deny builds a DenyError.
func Deny(reason string) error { return &DenyError{Reason: reason} }

// Decide authorizes action by the acting user against the target user.
// It is a pure function: no storage access, no side effects.
//
// targetRole and targetID describe the user being acted on; for
// ActionCreateUser they are ignored and newRole is the role of the account
// being created. For ActionChangeRole, newRole is the requested role.
//
// Rules are applied in precedence order: self-protection first, then the
// per-action hierarchy rules.
func Decide(actingRole models.Role, actingID string, targetRole models.Role, targetID string, action Action, newRole models.Role) error {
	switch action {
	case ActionDeleteUser, ActionBanUser, ActionUnbanUser, ActionChangeRole:
		if actingID == targetID {
			return Deny("cannot target self")
		}
	}

	switch action {
	case ActionDeleteUser:
		if actingRole != models.RoleSuperadmin {
			return Deny("only superadmins can delete users")
		}
		return nil

	case ActionBanUser, ActionUnbanUser:
		switch actingRole {
		case models.RoleSuperadmin:
			return nil
		case models.RoleAdmin:
			if targetRole != models.RoleUser {
				return Deny("admins cannot ban or unban other admins or superadmins")
			}
			return nil
		}
		return Deny("insufficient role to ban or unban users")

	case ActionChangeRole:
		switch actingRole {
		case models.RoleSuperadmin:
			return nil
		case models.RoleAdmin:
			if targetRole == models.RoleSuperadmin {
				return Deny("admins cannot change the role of superadmins")
			}
			if targetRole == models.RoleUser {
				return Deny("admins cannot promote users")
			}
			// target is an admin: demotion to user is the only move left
			if newRole != models.RoleUser {
				return Deny("admins can only demote admins to user")
			}
			return nil
		}
		return Deny("insufficient role to change roles")

	case ActionCreateUser:
		switch actingRole {
		case models.RoleSuperadmin:
			return nil
		case models.RoleAdmin:
			if newRole != models.RoleUser {
				return Deny("admins can only create users with the user role")
			}
			return nil
		}
		return Deny("insufficient role to create users")

	case ActionUpdateProfile:
		if actingID == targetID {
			return nil
		}
		if actingRole.Rank() >= models.RoleAdmin.Rank() {
			return nil
		}
		return Deny("you can only update your own profile")
	}

	return fmt.Errorf("unknown action %q", action)
}
