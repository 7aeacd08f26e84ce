// file: handler/account_handler.go

package handler

import (
	"encoding/json"
	"errors"
	"go-auth-api/common"
	"go-auth-api/model"
	"go-auth-api/service"
	"net/http"
)

// AccountHandler holds dependencies for the account endpoints.
type AccountHandler struct {
	service *service.AccountService
}

// NewAccountHandler creates a new AccountHandler with its dependencies.
func NewAccountHandler(s *service.AccountService) *AccountHandler {
	return &AccountHandler{service: s}
}

// tokenPairResponse is the payload returned by sign-in and refresh.
type tokenPairResponse struct {
	UserID       string `json:"user_id"`
	Email        string `json:"email,omitempty"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// SignUp godoc
// @Summary      Register a new account
// @Description  Creates an unconfirmed account and sends a confirmation email.
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        account body model.SignUpRequest true "Email and password for the new account"
// @Success      201  {object}  model.User
// @Failure      400  {object}  common.AppError "Malformed payload or weak password"
// @Failure      409  {object}  common.AppError "Email already registered"
// @Failure      503  {object}  common.AppError "Credential store unavailable"
// @Router       /api/auth/signup [post]
func (h *AccountHandler) SignUp(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.SignUpRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}

	user, err := h.service.SignUp(r.Context(), req)
	if err != nil {
		return toAppError(err, "Could not create account")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
	return nil
}

// SignIn godoc
// @Summary      Authenticate with email and password
// @Description  Verifies the credentials and returns an access/refresh token pair.
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        credentials body model.SignInRequest true "Account credentials"
// @Success      200  {object}  tokenPairResponse
// @Failure      400  {object}  common.AppError "Malformed payload"
// @Failure      401  {object}  common.AppError "Invalid credentials or unconfirmed email"
// @Failure      503  {object}  common.AppError "Credential store unavailable"
// @Router       /api/auth/signin [post]
func (h *AccountHandler) SignIn(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.SignInRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}

	user, accessToken, refreshToken, err := h.service.SignIn(r.Context(), req)
	if err != nil {
		// A missing account and a wrong password produce the same response
		// so the endpoint cannot be used to enumerate registered emails.
		if errors.Is(err, service.ErrUserNotFound) || errors.Is(err, service.ErrInvalidCredentials) {
			return common.NewAppError(http.StatusUnauthorized, service.ErrInvalidCredentials.Error(), err)
		}
		return toAppError(err, "Could not sign in")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(tokenPairResponse{
		UserID:       user.ID,
		Email:        user.Email,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
	return nil
}

// Refresh godoc
// @Summary      Rotate a refresh token
// @Description  Exchanges a refresh token for a new access/refresh pair. The old token is consumed.
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        tokens body model.RefreshRequest true "User id and current refresh token"
// @Success      200  {object}  tokenPairResponse
// @Failure      400  {object}  common.AppError "Malformed payload"
// @Failure      401  {object}  common.AppError "Refresh token invalid or already used"
// @Failure      503  {object}  common.AppError "Credential store unavailable"
// @Router       /api/auth/refresh [post]
func (h *AccountHandler) Refresh(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RefreshRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}

	accessToken, refreshToken, err := h.service.Refresh(r.Context(), req)
	if err != nil {
		return toAppError(err, "Could not refresh session")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(tokenPairResponse{
		UserID:       req.UserID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
	return nil
}

// SignOut godoc
// @Summary      Sign out everywhere
// @Description  Revokes every refresh token held by the authenticated user.
// @Tags         account
// @Produce      json
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  common.AppError "Unauthorized"
// @Failure      503  {object}  common.AppError "Credential store unavailable"
// @Router       /api/auth/signout [post]
func (h *AccountHandler) SignOut(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := r.Context().Value(UserIDKey).(string)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}

	if err := h.service.SignOut(r.Context(), userID); err != nil {
		return toAppError(err, "Could not sign out")
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

// ExternalSignIn godoc
// @Summary      Authenticate with an external provider
// @Description  Signs in a provider-verified identity, creating and linking the account on first use.
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        identity body model.ExternalSignInRequest true "Provider, external user id and email"
// @Success      200  {object}  tokenPairResponse
// @Failure      400  {object}  common.AppError "Malformed payload or external id mismatch"
// @Failure      503  {object}  common.AppError "Credential store unavailable"
// @Router       /api/auth/external [post]
func (h *AccountHandler) ExternalSignIn(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.ExternalSignInRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}

	user, accessToken, err := h.service.ExternalSignIn(r.Context(), req)
	if err != nil {
		return toAppError(err, "Could not sign in with external provider")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(tokenPairResponse{
		UserID:      user.ID,
		Email:       user.Email,
		AccessToken: accessToken,
	})
	return nil
}

// UnlinkExternal godoc
// @Summary      Unlink an external provider
// @Description  Removes the authenticated user's login link for the given provider.
// @Tags         account
// @Produce      json
// @Security     BearerAuth
// @Param        provider path string true "Provider name"
// @Success      204
// @Failure      400  {object}  common.AppError "No link exists for this provider"
// @Failure      401  {object}  common.AppError "Unauthorized"
// @Router       /api/auth/external/{provider} [delete]
func (h *AccountHandler) UnlinkExternal(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := r.Context().Value(UserIDKey).(string)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}

	provider := r.PathValue("provider")
	if provider == "" {
		return common.NewAppError(http.StatusBadRequest, "Provider is required", nil)
	}

	if err := h.service.UnlinkExternal(r.Context(), userID, provider); err != nil {
		return toAppError(err, "Could not unlink external provider")
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

// ConfirmEmail godoc
// @Summary      Confirm an email address
// @Description  Consumes the confirmation token from the signup email and activates the account.
// @Tags         account
// @Produce      json
// @Param        userId path string true "Account id"
// @Param        token  path string true "Confirmation token"
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  common.AppError "Token invalid, expired or already used"
// @Router       /api/auth/confirm/{userId}/{token} [get]
func (h *AccountHandler) ConfirmEmail(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID := r.PathValue("userId")
	token := r.PathValue("token")

	if err := h.service.ConfirmEmail(r.Context(), userID, token); err != nil {
		return toAppError(err, "Could not confirm email")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "email confirmed"})
	return nil
}

// ForgotPassword godoc
// @Summary      Request a password reset
// @Description  Emails a reset link when a confirmed account exists for the address.
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        email body model.ForgotPasswordRequest true "Account email"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  common.AppError "No confirmed account for this email"
// @Router       /api/auth/forgot-password [post]
func (h *AccountHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.ForgotPasswordRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}

	if err := h.service.ForgotPassword(r.Context(), req.Email); err != nil {
		return toAppError(err, "Could not start password recovery")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "recovery email sent"})
	return nil
}

// ResetPassword godoc
// @Summary      Reset a password
// @Description  Consumes the reset token, replaces the password with a generated temporary one and emails it.
// @Tags         account
// @Produce      json
// @Param        userId path string true "Account id"
// @Param        token  path string true "Reset token"
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  common.AppError "Token invalid, expired or already used"
// @Router       /api/auth/reset-password/{userId}/{token} [post]
func (h *AccountHandler) ResetPassword(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID := r.PathValue("userId")
	token := r.PathValue("token")

	if _, err := h.service.ResetPassword(r.Context(), userID, token); err != nil {
		return toAppError(err, "Could not reset password")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "a new password has been emailed"})
	return nil
}

// toAppError maps service error kinds to HTTP status codes in one place.
func toAppError(err error, fallback string) *common.AppError {
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		return common.NewAppError(http.StatusConflict, err.Error(), err)
	case errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrPasswordLength),
		errors.Is(err, service.ErrUserNotFoundOrUnconfirmed),
		errors.Is(err, service.ErrProviderNotLinked),
		errors.Is(err, service.ErrWrongExternalID),
		errors.Is(err, service.ErrExternalLinkFailed):
		return common.NewAppError(http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, service.ErrUserNotFound):
		return common.NewAppError(http.StatusNotFound, err.Error(), err)
	case errors.Is(err, service.ErrEmailNotConfirmed),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrTokenExpired),
		errors.Is(err, service.ErrTokenAlreadyUsed),
		errors.Is(err, service.ErrPurposeMismatch),
		errors.Is(err, service.ErrInvalidRefreshToken):
		return common.NewAppError(http.StatusUnauthorized, err.Error(), err)
	case errors.Is(err, service.ErrStoreUnavailable):
		return common.NewAppError(http.StatusServiceUnavailable, service.ErrStoreUnavailable.Error(), err)
	default:
		return common.NewAppError(http.StatusInternalServerError, fallback, err)
	}
}
