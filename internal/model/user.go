package model

import "time"

// User represents an authentication user for the API surface.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Roles. Admins can run destructive lifecycle commands (reset, demo
// load); members get everything else.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// RoleAtLeast checks if role meets or exceeds the minimum required role.
func RoleAtLeast(role, minimum string) bool {
	levels := map[string]int{
		RoleAdmin:  2,
		RoleMember: 1,
	}
	return levels[role] >= levels[minimum]
}
