// Package users implements user administration: listing accounts with their
// roles, reassigning role sets, and account deletion.
package users

import "time"

// User is the administrative view of an account. The credential hash never
// leaves the auth package.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Roles     []RoleRef `json:"roles"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RoleRef is the resolved view of a role held by a user.
type RoleRef struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
