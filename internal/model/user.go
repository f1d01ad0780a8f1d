// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// A user signs up either with email+password or through Google sign-in, so
// both PasswordHash and GoogleID are nullable: a Google-only account has no
// password hash, a password account has no Google ID. An account that started
// with a password can later have a Google ID attached (the resolve-or-create
// flow matches by email).
//
// WHY *string AND NOT string?
// For password_hash and google_id the difference between "absent" and "empty"
// matters — sign-in must refuse password auth for Google-only accounts, and
// the google_id column carries a UNIQUE constraint that must ignore NULLs.
// A pointer maps cleanly onto a nullable column.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash *string   `json:"-"` // never serialized to clients
	GoogleID     *string   `json:"googleId,omitempty"`
	AvatarURL    string    `json:"avatarUrl"`
	CreatedAt    time.Time `json:"createdAt"`
}

// HasPassword reports whether this account can sign in with a password.
// Google-only accounts return false.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
