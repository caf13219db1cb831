package domain

import "time"

// Role is the coarse authorization tag carried by every account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents an authenticated user of the system.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// IsAdmin reports whether the role is exactly "admin".
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
