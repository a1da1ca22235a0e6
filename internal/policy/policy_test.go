package policy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adelmas/galerie/internal/models"
)

func TestDecideSelfProtection(t *testing.T) {
	for _, action := range []Action{ActionDeleteUser, ActionBanUser, ActionUnbanUser, ActionChangeRole} {
		err := Decide(models.RoleSuperadmin, "u1", models.RoleSuperadmin, "u1", action, models.RoleUser)
		assert.EqualError(t, err, "cannot target self", "action %s", action)
	}
	// editing your own profile is allowed
	assert.NoError(t, Decide(models.RoleUser, "u1", models.RoleUser, "u1", ActionUpdateProfile, ""))
}

func TestDecideDelete(t *testing.T) {
	assert.NoError(t, Decide(models.RoleSuperadmin, "u1", models.RoleAdmin, "u2", ActionDeleteUser, ""))
	assert.Error(t, Decide(models.RoleAdmin, "u1", models.RoleUser, "u2", ActionDeleteUser, ""))
	assert.Error(t, Decide(models.RoleUser, "u1", models.RoleUser, "u2", ActionDeleteUser, ""))
}

func TestDecideBan(t *testing.T) {
	tests := []struct {
		name       string
		acting     models.Role
		target     models.Role
		wantDenied bool
	}{
		{"superadmin bans admin", models.RoleSuperadmin, models.RoleAdmin, false},
		{"superadmin bans user", models.RoleSuperadmin, models.RoleUser, false},
		{"admin bans user", models.RoleAdmin, models.RoleUser, false},
		{"admin bans admin", models.RoleAdmin, models.RoleAdmin, true},
		{"admin bans superadmin", models.RoleAdmin, models.RoleSuperadmin, true},
		{"user bans user", models.RoleUser, models.RoleUser, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, action := range []Action{ActionBanUser, ActionUnbanUser} {
				err := Decide(tt.acting, "u1", tt.target, "u2", action, "")
				if tt.wantDenied {
					var deny *DenyError
					assert.ErrorAs(t, err, &deny)
				} else {
					assert.NoError(t, err)
				}
			}
		})
	}
}

func TestDecideChangeRole(t *testing.T) {
	// superadmin may set any role on any non-self target
	assert.NoError(t, Decide(models.RoleSuperadmin, "u1", models.RoleUser, "u2", ActionChangeRole, models.RoleAdmin))
	assert.NoError(t, Decide(models.RoleSuperadmin, "u1", models.RoleAdmin, "u2", ActionChangeRole, models.RoleSuperadmin))

	// admin may only demote an admin to user
	assert.NoError(t, Decide(models.RoleAdmin, "u1", models.RoleAdmin, "u2", ActionChangeRole, models.RoleUser))
	assert.EqualError(t,
		Decide(models.RoleAdmin, "u1", models.RoleAdmin, "u2", ActionChangeRole, models.RoleSuperadmin),
		"admins can only demote admins to user")
	assert.EqualError(t,
		Decide(models.RoleAdmin, "u1", models.RoleUser, "u2", ActionChangeRole, models.RoleAdmin),
		"admins cannot promote users")
	assert.EqualError(t,
		Decide(models.RoleAdmin, "u1", models.RoleSuperadmin, "u2", ActionChangeRole, models.RoleUser),
		"admins cannot change the role of superadmins")

	assert.Error(t, Decide(models.RoleUser, "u1", models.RoleUser, "u2", ActionChangeRole, models.RoleAdmin))
}

func TestDecideCreate(t *testing.T) {
	assert.NoError(t, Decide(models.RoleSuperadmin, "u1", "", "", ActionCreateUser, models.RoleSuperadmin))
	assert.NoError(t, Decide(models.RoleAdmin, "u1", "", "", ActionCreateUser, models.RoleUser))
	assert.EqualError(t,
		Decide(models.RoleAdmin, "u1", "", "", ActionCreateUser, models.RoleAdmin),
		"admins can only create users with the user role")
	assert.Error(t, Decide(models.RoleUser, "u1", "", "", ActionCreateUser, models.RoleUser))
}

func TestDecideUpdateProfile(t *testing.T) {
	assert.NoError(t, Decide(models.RoleUser, "u1", models.RoleUser, "u1", ActionUpdateProfile, ""))
	assert.NoError(t, Decide(models.RoleAdmin, "u1", models.RoleUser, "u2", ActionUpdateProfile, ""))
	assert.EqualError(t,
		Decide(models.RoleUser, "u1", models.RoleUser, "u2", ActionUpdateProfile, ""),
		"you can only update your own profile")
}

func TestDecideUnknownAction(t *testing.T) {
	err := Decide(models.RoleSuperadmin, "u1", models.RoleUser, "u2", Action("frobnicate"), "")
	assert.Error(t, err)
	var deny *DenyError
	assert.False(t, errors.As(err, &deny), "unknown actions are errors, not denials")
}
