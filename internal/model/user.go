package model

import "time"

// Roles stored in users.role.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User represents an account record as stored in the `users` table.
// Handlers never serialize this struct directly; they project it into a
// response type that leaves out the password hash.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – display name given at signup.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hash of the password; never the plaintext.
//  Role         – customer or admin.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
