// Package models defines server-side data models persisted by the
// repositories and passed between services and transports.
package models

import "time"

// User is an account record. PasswordHash never leaves the credential
// store boundary: it is not serialised and List results leave it empty.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the public projection of a User returned by authentication.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// Identity projects u to its public fields.
func (u *User) Identity() *Identity {
	return &Identity{ID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin}
}
