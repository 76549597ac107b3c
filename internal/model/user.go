package model

import "time"

// User represents an application user record as stored in the
// `users` table.  Authentication exists so that bookings and
// template management can be attributed and role-gated; it is not
// a security boundary of the ledger itself.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name.
//  PasswordHash – bcrypt hashed password.
//  Role         – name of the role (ADMIN or MEMBER).
//  CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    `json:"id"`       // users.id
	Username     string    `json:"username"` // users.username
	PasswordHash string    `json:"-"`        // users.password_hash
	Role         string    `json:"role"`     // users.role
	CreatedAt    time.Time `json:"-"`        // users.created_at
}

// Role names.  ADMIN may manage email templates; MEMBER may book,
// cancel and update releases.
const (
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"
)
