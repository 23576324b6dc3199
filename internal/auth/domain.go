// Package auth implements credential verification and bearer-token issuance
// for store staff.
package auth

import "github.com/toyshop-pos/toyshop/internal/shared"

// User is the authentication-side view of a staff account.
type User struct {
	ID           string
	Username     string
	FullName     string
	PasswordHash string
	Role         shared.Role
	Active       bool
}

// Actor converts the user into the request-scoped actor identity.
func (u User) Actor() shared.Actor {
	return shared.Actor{ID: u.ID, Username: u.Username, Role: u.Role}
}
