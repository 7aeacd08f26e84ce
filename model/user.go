package model

import "time"

// User is an account record. Emails are stored lower-cased so uniqueness is
// case-insensitive. External accounts (created via an identity provider) carry
// an empty password hash and are confirmed from the start.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	EmailConfirmed bool      `json:"email_confirmed"`
	IsExternal     bool      `json:"is_external"`
	CreatedAt      time.Time `json:"created_at"`
}

// ExternalLogin links a user to an identity provider account.
type ExternalLogin struct {
	UserID         string    `json:"user_id"`
	Provider       string    `json:"provider"`
	ProviderUserID string    `json:"provider_user_id"`
	CreatedAt      time.Time `json:"created_at"`
}
