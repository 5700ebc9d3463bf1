package types

import "time"

// User represents an account in the system.
type User struct {
	// Username is the unique login name chosen by the user.
	// Allowed characters are letters, digits and underscore.
	Username string `json:"username" db:"username"`

	// DisplayName is the name printed on reports and shown in the UI.
	DisplayName string `json:"display_name" db:"display_name"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent account update.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
