// file: handler/account_handler_test.go

package handler

import (
	"errors"
	"fmt"
	"go-auth-api/service"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToAppError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"email taken", service.ErrEmailTaken, http.StatusConflict},
		{"weak password", service.ErrWeakPassword, http.StatusBadRequest},
		{"user not found", service.ErrUserNotFound, http.StatusNotFound},
		{"email not confirmed", service.ErrEmailNotConfirmed, http.StatusUnauthorized},
		{"invalid credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"invalid token", service.ErrInvalidToken, http.StatusUnauthorized},
		{"expired token", service.ErrTokenExpired, http.StatusUnauthorized},
		{"token already used", service.ErrTokenAlreadyUsed, http.StatusUnauthorized},
		{"purpose mismatch", service.ErrPurposeMismatch, http.StatusUnauthorized},
		{"invalid refresh token", service.ErrInvalidRefreshToken, http.StatusUnauthorized},
		{"forgot password generic", service.ErrUserNotFoundOrUnconfirmed, http.StatusBadRequest},
		{"provider not linked", service.ErrProviderNotLinked, http.StatusBadRequest},
		{"wrong external id", service.ErrWrongExternalID, http.StatusBadRequest},
		{"store unavailable", service.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{"wrapped store unavailable", fmt.Errorf("%w: connection refused", service.ErrStoreUnavailable), http.StatusServiceUnavailable},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := toAppError(tt.err, "fallback message")
			assert.Equal(t, tt.wantCode, appErr.Code)
		})
	}
}
