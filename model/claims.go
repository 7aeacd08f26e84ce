package model

import "github.com/golang-jwt/jwt/v5"

// AppClaims is the claims set carried by access tokens.
type AppClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenPurpose tags a reset token with the single account-state change it
// authorizes. A token issued for one purpose is never accepted for another.
type TokenPurpose string

const (
	PurposeEmailConfirm  TokenPurpose = "email_confirm"
	PurposePasswordReset TokenPurpose = "password_reset"
)

// ResetClaims is the claims set carried by single-use reset tokens. The jti
// (RegisteredClaims.ID) identifies the token for one-time-consumption
// tracking.
type ResetClaims struct {
	Purpose TokenPurpose `json:"purpose"`
	jwt.RegisteredClaims
}
