// file: service/account_service.go

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"go-auth-api/logger"
	"go-auth-api/mailer"
	"go-auth-api/model"
	"go-auth-api/repository"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// WorkflowConfig carries the request-scoped limits and the public base URL
// used in email callback links.
type WorkflowConfig struct {
	StoreTimeout time.Duration
	MaxRetries   int
	AppURL       string
}

// AccountService orchestrates sign-up, sign-in, external login, email
// confirmation and password recovery over the credential store and the token
// services.
type AccountService struct {
	userRepo     repository.IUserRepository
	authService  *AuthService
	resetService *ResetService
	mail         mailer.Mailer
	cfg          WorkflowConfig
}

// NewAccountService creates a new AccountService.
func NewAccountService(userRepo repository.IUserRepository, authService *AuthService, resetService *ResetService, mail mailer.Mailer, cfg WorkflowConfig) *AccountService {
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = 5 * time.Second
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 3
	}
	return &AccountService{
		userRepo:     userRepo,
		authService:  authService,
		resetService: resetService,
		mail:         mail,
		cfg:          cfg,
	}
}

// SignUp creates an unconfirmed account and dispatches the confirmation
// email. The email is normalized to lower case before the uniqueness check so
// two addresses differing only in case cannot create two accounts.
func (s *AccountService) SignUp(ctx context.Context, req model.SignUpRequest) (*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	email := strings.ToLower(req.Email)
	log := logger.Log.WithField("email", email)

	if len(req.Password) < 8 {
		return nil, ErrWeakPassword
	}

	passwordHash, err := s.authService.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("could not hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
	}

	err = withRetry(ctx, s.cfg.MaxRetries, func() error {
		return s.userRepo.CreateUser(ctx, user)
	})
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}

	log.WithField("user_id", user.ID).Info("Account created, dispatching confirmation email")

	token, err := s.resetService.IssueResetToken(user.ID, model.PurposeEmailConfirm)
	if err != nil {
		log.WithError(err).Error("Failed to issue confirmation token")
		return user, nil
	}

	subject, body := mailer.ConfirmationMail(s.cfg.AppURL, user.ID, token)
	s.sendMail(user.Email, subject, body)

	return user, nil
}

// SignIn authenticates an email/password pair and starts a session. The
// service reports ErrUserNotFound and ErrInvalidCredentials as distinct
// kinds; the HTTP layer collapses them so the wire surface does not reveal
// which emails have accounts.
func (s *AccountService) SignIn(ctx context.Context, req model.SignInRequest) (*model.User, string, string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	email := strings.ToLower(req.Email)

	user, err := s.findUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", "", ErrUserNotFound
	}
	if err != nil {
		return nil, "", "", err
	}

	if !user.EmailConfirmed {
		return nil, "", "", ErrEmailNotConfirmed
	}

	// External accounts may carry an empty hash; they can never pass a
	// password check.
	if user.PasswordHash == "" || !s.authService.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, "", "", ErrInvalidCredentials
	}

	accessToken, refreshToken, err := s.authService.StartSession(ctx, user)
	if err != nil {
		return nil, "", "", err
	}

	logger.Log.WithField("user_id", user.ID).Info("User signed in")
	return user, accessToken, refreshToken, nil
}

// Refresh exchanges a refresh token for a new access/refresh pair, consuming
// the old token.
func (s *AccountService) Refresh(ctx context.Context, req model.RefreshRequest) (string, string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	return s.authService.RotateRefreshToken(ctx, req.UserID, req.RefreshToken)
}

// SignOut revokes every refresh token the user holds.
func (s *AccountService) SignOut(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	return s.authService.RevokeAllSessions(ctx, userID)
}

// ExternalSignIn authenticates a provider-verified identity. Account creation
// is idempotent: when no account exists for the email, one is created
// pre-confirmed and linked to the provider; when one exists, a missing link
// for this provider is added, and an existing link must match the external
// user id exactly.
func (s *AccountService) ExternalSignIn(ctx context.Context, req model.ExternalSignInRequest) (*model.User, string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	email := strings.ToLower(req.Email)
	log := logger.Log.WithFields(logrus.Fields{
		"email":    email,
		"provider": req.Provider,
	})

	user, err := s.findUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		user = &model.User{
			ID:             uuid.NewString(),
			Email:          email,
			EmailConfirmed: true,
			IsExternal:     true,
		}
		login := &model.ExternalLogin{
			UserID:         user.ID,
			Provider:       req.Provider,
			ProviderUserID: req.ExternalUserID,
		}

		err = withRetry(ctx, s.cfg.MaxRetries, func() error {
			return s.userRepo.CreateExternalUser(ctx, user, login)
		})
		if errors.Is(err, repository.ErrDuplicateEmail) {
			// Lost a race with a concurrent sign-in for the same email;
			// fall through to the existing-account path.
			user, err = s.findUserByEmail(ctx, email)
		}
		if err != nil {
			return nil, "", err
		}

		log.WithField("user_id", user.ID).Info("External account created")
	} else if err != nil {
		return nil, "", err
	}

	login, err := s.userRepo.GetExternalLogin(ctx, user.ID, req.Provider)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		newLogin := &model.ExternalLogin{
			UserID:         user.ID,
			Provider:       req.Provider,
			ProviderUserID: req.ExternalUserID,
		}
		if err := s.userRepo.LinkExternalLogin(ctx, newLogin); err != nil {
			log.WithError(err).Error("Failed to link external login")
			return nil, "", ErrExternalLinkFailed
		}
		log.WithField("user_id", user.ID).Info("External login linked")
	case err != nil:
		return nil, "", fmt.Errorf("%w: %s", ErrStoreUnavailable, err)
	case login.ProviderUserID != req.ExternalUserID:
		return nil, "", ErrWrongExternalID
	}

	accessToken, err := s.authService.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, "", err
	}

	return user, accessToken, nil
}

// UnlinkExternal removes the user's login link for a provider.
func (s *AccountService) UnlinkExternal(ctx context.Context, userID, provider string) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	rows, err := s.userRepo.UnlinkExternalLogin(ctx, userID, provider)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrStoreUnavailable, err)
	}
	if rows == 0 {
		return ErrProviderNotLinked
	}
	return nil
}

// ConfirmEmail consumes a confirmation token and flips the account's
// confirmed flag. The token must have been issued to this account.
func (s *AccountService) ConfirmEmail(ctx context.Context, userID, token string) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	subject, err := s.resetService.ValidateAndConsume(ctx, token, model.PurposeEmailConfirm)
	if err != nil {
		return err
	}
	if subject != userID {
		return ErrInvalidToken
	}

	err = withRetry(ctx, s.cfg.MaxRetries, func() error {
		return s.userRepo.ConfirmEmail(ctx, userID)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}

	logger.Log.WithField("user_id", userID).Info("Email confirmed")
	return nil
}

// ForgotPassword issues a password-reset token when a confirmed account
// exists for the email. Missing and unconfirmed accounts produce the same
// error kind so the operation does not leak which emails are registered.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	email = strings.ToLower(email)

	user, err := s.findUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFoundOrUnconfirmed
	}
	if err != nil {
		return err
	}
	if !user.EmailConfirmed {
		return ErrUserNotFoundOrUnconfirmed
	}

	token, err := s.resetService.IssueResetToken(user.ID, model.PurposePasswordReset)
	if err != nil {
		return fmt.Errorf("could not issue reset token: %w", err)
	}

	subject, body := mailer.RecoveryMail(s.cfg.AppURL, user.ID, token)
	s.sendMail(user.Email, subject, body)

	logger.Log.WithField("user_id", user.ID).Info("Password recovery email dispatched")
	return nil
}

// ResetPassword consumes a reset token, replaces the account's password with
// a generated temporary one, revokes all sessions and mails the new password.
func (s *AccountService) ResetPassword(ctx context.Context, userID, token string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	subject, err := s.resetService.ValidateAndConsume(ctx, token, model.PurposePasswordReset)
	if err != nil {
		return "", err
	}
	if subject != userID {
		return "", ErrInvalidToken
	}

	user, err := s.findUserByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", err
	}

	temporaryPassword, err := s.resetService.GenerateTemporaryPassword(12)
	if err != nil {
		return "", err
	}

	passwordHash, err := s.authService.HashPassword(temporaryPassword)
	if err != nil {
		return "", fmt.Errorf("could not hash temporary password: %w", err)
	}

	err = withRetry(ctx, s.cfg.MaxRetries, func() error {
		return s.userRepo.UpdateAuth(ctx, userID, passwordHash)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", err
	}

	// The credential changed; every outstanding session is void.
	if err := s.authService.RevokeAllSessions(ctx, userID); err != nil {
		logger.Log.WithField("user_id", userID).WithError(err).Error("Failed to revoke sessions after password reset")
	}

	mailSubject, body := mailer.NewPasswordMail(temporaryPassword)
	s.sendMail(user.Email, mailSubject, body)

	logger.Log.WithField("user_id", userID).Info("Password reset completed")
	return temporaryPassword, nil
}

// findUserByEmail wraps the repository lookup with the bounded retry policy.
func (s *AccountService) findUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user *model.User
	err := withRetry(ctx, s.cfg.MaxRetries, func() error {
		var lookupErr error
		user, lookupErr = s.userRepo.GetUserByEmail(ctx, email)
		return lookupErr
	})
	return user, err
}

func (s *AccountService) findUserByID(ctx context.Context, id string) (*model.User, error) {
	var user *model.User
	err := withRetry(ctx, s.cfg.MaxRetries, func() error {
		var lookupErr error
		user, lookupErr = s.userRepo.GetUserByID(ctx, id)
		return lookupErr
	})
	return user, err
}

// sendMail dispatches an email and logs failures without failing the
// triggering operation: the token is already issued and a resend path can
// recover delivery.
func (s *AccountService) sendMail(to, subject, body string) {
	if err := s.mail.SendMail(to, subject, body); err != nil {
		logger.Log.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).WithError(err).Error("Failed to deliver email")
	}
}
