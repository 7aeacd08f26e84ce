// file: mailer/messages_test.go

package mailer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfirmationMail(t *testing.T) {
	subject, body := ConfirmationMail("http://localhost:8080", "user-1", "tok/with+special")

	assert.Equal(t, "Confirm your account", subject)
	assert.Contains(t, body, "http://localhost:8080/api/auth/confirm/user-1/")
	assert.NotContains(t, body, "tok/with+special", "token must be path-escaped in the link")
}

func TestRecoveryMail(t *testing.T) {
	subject, body := RecoveryMail("http://localhost:8080", "user-1", "token-abc")

	assert.Equal(t, "Recover your password", subject)
	assert.Contains(t, body, "/api/auth/reset-password/user-1/token-abc")
}

func TestNewPasswordMail(t *testing.T) {
	subject, body := NewPasswordMail("aB3$xy9Qw12z")

	assert.Equal(t, "Your new password", subject)
	assert.True(t, strings.HasSuffix(body, "aB3$xy9Qw12z"))
}
