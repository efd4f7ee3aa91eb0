package domain

import "time"

// Role is the access level of an identity.
type Role string

const (
	RoleSuperAdmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleMember     Role = "member"
)

// IsPrivileged reports whether the role may issue invites and address
// notifications freely.
func (r Role) IsPrivileged() bool {
	return r == RoleSuperAdmin || r == RoleAdmin
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// User is the stored record of a registered member.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Approved     bool      `json:"approved"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity returns the authenticated view of u.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Name: u.Name, Role: u.Role}
}

// Identity is the authenticated principal bound to a request or a live
// connection. It is built from verified credentials only, never from a
// request payload.
type Identity struct {
	ID   string
	Name string
	Role Role
}

// IsPrivileged is a shorthand for i.Role.IsPrivileged().
func (i Identity) IsPrivileged() bool {
	return i.Role.IsPrivileged()
}
