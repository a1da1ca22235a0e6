package models

// Role is the authority level of a user. Roles form a total order for
// authorization purposes: superadmin > admin > user.
type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleUser       Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperadmin, RoleAdmin, RoleUser:
		return true
	}
	return false
}

// Rank maps the role hierarchy onto integers (higher = more authority).
func (r Role) Rank() int {
	switch r {
	case RoleSuperadmin:
		return 3
	case RoleAdmin:
		return 2
	case RoleUser:
		return 1
	}
	return 0
}

// RoleNames lists the accepted role values for validation.
var RoleNames = []string{string(RoleSuperadmin), string(RoleAdmin), string(RoleUser)}

// User represents an account in the back office.
type User struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	Name      string `gorm:"size:255;not null" json:"name"`
	Email     string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string `gorm:"size:255;not null" json:"-"` // bcrypt hash, never exposed in JSON
	Role      Role   `gorm:"size:32;not null" json:"role"`
	Banned    int    `gorm:"not null;default:0" json:"banned"`
	Avatar    string `gorm:"size:512" json:"avatar,omitempty"`
	CreatedAt int64  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt int64  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsBanned reports whether the account is currently banned.
func (u *User) IsBanned() bool { return u.Banned == 1 }
