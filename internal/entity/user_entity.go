package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

type User struct {
	Id           uuid.UUID
	Email        string
	Username     string
	PasswordHash *string
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsPrivileged reports whether the user bypasses rate limits and usage caps.
func (u *User) IsPrivileged() bool {
	return u.Role == UserRoleAdmin
}
