package models

import "time"

// UserRole separates citizens from government officials. It never changes after registration.
type UserRole string

const (
	RoleCitizen    UserRole = "citizen"
	RoleGovernment UserRole = "government"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	return r == RoleCitizen || r == RoleGovernment
}

// User represents an application user stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Mobile       string     `db:"mobile" json:"mobile"`
	Role         UserRole   `db:"role" json:"role"`
	Aadhaar      *string    `db:"aadhaar" json:"aadhaar,omitempty"`
	Department   *string    `db:"department" json:"department,omitempty"`
	Active       bool       `db:"active" json:"isActive"`
	Verified     bool       `db:"verified" json:"isVerified"`
	LastLogin    *time.Time `db:"last_login" json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

// IsCitizen reports whether the user registered as a citizen.
func (u *User) IsCitizen() bool { return u != nil && u.Role == RoleCitizen }

// IsGovernment reports whether the user is a government official.
func (u *User) IsGovernment() bool { return u != nil && u.Role == RoleGovernment }

// ProfileUpdate carries the mutable profile fields. Nil fields are left untouched.
type ProfileUpdate struct {
	Name       *string `json:"name" validate:"omitempty,min=2,max=50"`
	Mobile     *string `json:"mobile" validate:"omitempty,len=10,numeric"`
	Department *string `json:"department" validate:"omitempty,max=100"`
}
