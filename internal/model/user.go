package model

// GooglePassword is stored in users.password for accounts created through
// Google sign-in.  It is not a bcrypt hash and never verifies.
const GooglePassword = "google"

// User represents a row of the `users` table.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Email        – unique, normalized login handle.
//	PasswordHash – bcrypt hash, or GooglePassword for OAuth-only accounts.
type User struct {
	ID           uint64 // users.id
	Email        string // users.email
	PasswordHash string // users.password
}

// External reports whether the account was created through an external
// identity provider and therefore has no local password.
func (u User) External() bool {
	return u.PasswordHash == GooglePassword
}

// Providers recorded on account events.
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)
