package domain

import (
	"strings"
	"time"
)

// NormalizeEmail is the canonical stored and looked-up form of an email.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// User is a registered identity. PasswordHash is empty until the user
// completes password setup, and IsPasswordSet is only ever true together
// with a non-empty hash.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name,omitempty"`
	Role          string    `json:"role"`
	PasswordHash  string    `json:"-"`
	IsPasswordSet bool      `json:"is_password_set"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NeedsPasswordSetup reports whether the user must choose a password before
// logging in.
func (u *User) NeedsPasswordSetup() bool {
	return !u.IsPasswordSet || u.PasswordHash == ""
}

// UserSummary is the author view embedded in post listings.
type UserSummary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}
