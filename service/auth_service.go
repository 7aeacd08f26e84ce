// file: service/auth_service.go

package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"go-auth-api/logger"
	"go-auth-api/model"
	"go-auth-api/repository"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const refreshTokenBytes = 32 // 256 bits of entropy per refresh token

// TokenConfig carries the signing key and lifetimes for the token service.
type TokenConfig struct {
	SecretKey       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	Issuer          string
}

// AuthService issues and validates access tokens and manages the rotating
// refresh tokens backing long-lived sessions.
type AuthService struct {
	userRepo  repository.IUserRepository
	tokenRepo repository.ITokenRepository
	secretKey []byte
	cfg       TokenConfig
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.IUserRepository, tokenRepo repository.ITokenRepository, cfg TokenConfig) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		secretKey: []byte(cfg.SecretKey),
		cfg:       cfg,
	}
}

func (s *AuthService) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to hash password")
		return "", err
	}
	return string(bytes), err
}

func (s *AuthService) CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// IssueAccessToken builds and signs a short-lived access token for the user.
func (s *AuthService) IssueAccessToken(userID, email string) (string, error) {
	now := time.Now().UTC()

	claims := &model.AppClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		logger.Log.WithError(err).WithField("email", email).Error("Failed to sign access token")
		return "", fmt.Errorf("failed to sign token string: %w", err)
	}

	return tokenString, nil
}

// ValidateAccessToken verifies the signature and expiry of an access token.
// Any verification failure rejects the token; an expired-but-otherwise-valid
// token is reported as ErrTokenExpired.
func (s *AuthService) ValidateAccessToken(tokenString string) (*model.AppClaims, error) {
	claims := &model.AppClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// GenerateRefreshToken returns a new opaque refresh token: 256 bits from a
// cryptographically secure source, base64-encoded.
func (s *AuthService) GenerateRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// StartSession issues a fresh access/refresh token pair for the user and
// persists the refresh token hash.
func (s *AuthService) StartSession(ctx context.Context, user *model.User) (string, string, error) {
	accessToken, err := s.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		return "", "", err
	}

	refreshToken, err := s.GenerateRefreshToken()
	if err != nil {
		return "", "", err
	}

	record := &model.RefreshToken{
		UserID:    user.ID,
		TokenHash: hashToken(refreshToken),
		ExpiresAt: time.Now().UTC().Add(s.cfg.RefreshTokenTTL),
	}
	if err := s.tokenRepo.Create(ctx, record); err != nil {
		return "", "", fmt.Errorf("could not persist refresh token: %w", err)
	}

	return accessToken, refreshToken, nil
}

// RotateRefreshToken exchanges oldToken for a fresh access/refresh pair. The
// old token is consumed by a conditional delete: if it is absent (already
// rotated, revoked, expired, or forged) the exchange fails, and when two
// concurrent calls race on the same token only the one that deleted the row
// proceeds.
func (s *AuthService) RotateRefreshToken(ctx context.Context, userID, oldToken string) (string, string, error) {
	rows, err := s.tokenRepo.DeleteByUserIDAndHash(ctx, userID, hashToken(oldToken))
	if err != nil {
		return "", "", fmt.Errorf("%w: %s", ErrStoreUnavailable, err)
	}
	if rows == 0 {
		logger.Log.WithField("user_id", userID).Warn("Refresh token rotation rejected: token not found")
		return "", "", ErrInvalidRefreshToken
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return "", "", fmt.Errorf("could not load user for rotation: %w", err)
	}

	return s.StartSession(ctx, user)
}

// RevokeAllSessions deletes every refresh token the user holds, signing the
// user out on all devices.
func (s *AuthService) RevokeAllSessions(ctx context.Context, userID string) error {
	return s.tokenRepo.DeleteByUserID(ctx, userID)
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
