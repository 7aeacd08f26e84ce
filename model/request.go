// file: model/request.go

package model

// SignUpRequest defines the payload for creating a new account.
// It includes validation tags to ensure data integrity at the entry point.
type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// SignInRequest defines the payload for password authentication.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest defines the payload for exchanging a refresh token.
type RefreshRequest struct {
	UserID       string `json:"user_id" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ExternalSignInRequest defines the payload for provider-verified sign-in.
// The transport layer is expected to have already verified the triple with
// the identity provider.
type ExternalSignInRequest struct {
	Provider       string `json:"provider" validate:"required,oneof=Google Facebook"`
	ExternalUserID string `json:"external_user_id" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
}

// ForgotPasswordRequest defines the payload for requesting a password reset.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}
