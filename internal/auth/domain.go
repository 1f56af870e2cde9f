// Package auth is the credential service: account registration, login,
// token issuance and verification, and the bearer middleware that attaches
// the principal to requests.
package auth

import "time"

// User represents an account with its credential hash. Only this package
// ever sees the hash.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
