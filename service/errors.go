// file: service/errors.go

package service

import "errors"

// Business error kinds surfaced by the account services. Handlers map these to
// HTTP status codes; callers distinguish them with errors.Is.
var (
	ErrEmailTaken                = errors.New("email is already registered")
	ErrWeakPassword              = errors.New("password must be at least 8 characters long")
	ErrUserNotFound              = errors.New("user not found")
	ErrEmailNotConfirmed         = errors.New("email address has not been confirmed")
	ErrInvalidCredentials        = errors.New("invalid email or password")
	ErrInvalidToken              = errors.New("token is invalid")
	ErrTokenExpired              = errors.New("token has expired")
	ErrTokenAlreadyUsed          = errors.New("token has already been used")
	ErrPurposeMismatch           = errors.New("token was issued for a different purpose")
	ErrInvalidRefreshToken       = errors.New("refresh token is invalid or has been used")
	ErrUserNotFoundOrUnconfirmed = errors.New("no confirmed account exists for this email")
	ErrProviderNotLinked         = errors.New("no external login exists for this provider")
	ErrWrongExternalID           = errors.New("external user id does not match the linked login")
	ErrExternalLinkFailed        = errors.New("could not link external login")
	ErrPasswordLength            = errors.New("temporary password length must be at least 6")

	// ErrStoreUnavailable marks transient persistence failures that survived
	// the bounded retries. It is distinct from every business kind above so
	// callers can tell retryable outages from permanent rejections.
	ErrStoreUnavailable = errors.New("credential store unavailable")
)
