// Package users manages staff accounts: cashiers and admins.
package users

import (
	"time"

	"github.com/toyshop-pos/toyshop/internal/shared"
)

// User is a staff account.
type User struct {
	ID           string
	Username     string
	FullName     string
	PasswordHash string
	Role         shared.Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUserInput carries the fields for creating an account.
type CreateUserInput struct {
	Username string
	FullName string
	Password string
	Role     shared.Role
}

// UpdateUserInput carries the optional fields for updating an account.
// Nil fields stay untouched.
type UpdateUserInput struct {
	FullName *string
	Password *string
	Role     *shared.Role
	Active   *bool
}
