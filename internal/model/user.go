package model

import "time"

// RoleAdmin is the only role allowed on /admin routes.
const RoleAdmin = "admin"

// User is a row of the users table.  The password hash never leaves the
// server.
type User struct {
    ID           uint64    `json:"id"`
    Email        string    `json:"email"`
    PasswordHash string    `json:"-"`
    Role         string    `json:"role"`
    IsActive     bool      `json:"is_active"`
    CreatedAt    time.Time `json:"created_at"`
}

// CanSignIn reports whether the account may be issued an admin token.
func (u User) CanSignIn() bool {
    return u.IsActive && u.Role == RoleAdmin
}
