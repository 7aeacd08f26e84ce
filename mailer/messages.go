// file: mailer/messages.go

package mailer

import (
	"fmt"
	"net/url"
)

// ConfirmationMail builds the subject and body of the email-confirmation
// message. The token travels inside the callback link, path-escaped.
func ConfirmationMail(appURL, userID, token string) (subject, body string) {
	callback := fmt.Sprintf("%s/api/auth/confirm/%s/%s", appURL, userID, url.PathEscape(token))
	subject = "Confirm your account"
	body = fmt.Sprintf("Please confirm your account by clicking <a href='%s'>here.</a>", callback)
	return subject, body
}

// RecoveryMail builds the subject and body of the password-recovery message.
func RecoveryMail(appURL, userID, token string) (subject, body string) {
	callback := fmt.Sprintf("%s/api/auth/reset-password/%s/%s", appURL, userID, url.PathEscape(token))
	subject = "Recover your password"
	body = fmt.Sprintf("You can reset your password by clicking <a href='%s'>here.</a>", callback)
	return subject, body
}

// NewPasswordMail builds the message carrying a freshly generated temporary
// password.
func NewPasswordMail(temporaryPassword string) (subject, body string) {
	subject = "Your new password"
	body = fmt.Sprintf("Your new temporary password is: %s", temporaryPassword)
	return subject, body
}
