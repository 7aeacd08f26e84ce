// file: service/reset_service.go

package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"go-auth-api/model"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const minTemporaryPasswordLength = 6

// Character classes for temporary passwords. Every generated password
// contains at least one character from each class.
const (
	lowerChars  = "abcdefghijklmnopqrstuvwxyz"
	upperChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars  = "0123456789"
	symbolChars = "!$%&*+-=?@#"
)

// ResetConfig carries the signing key and lifetime for reset tokens.
type ResetConfig struct {
	SecretKey     string
	ResetTokenTTL time.Duration
	Issuer        string
}

// ResetService issues and consumes the single-use tokens that authorize
// email confirmation and password resets.
type ResetService struct {
	consumed  ICacheClient
	secretKey []byte
	cfg       ResetConfig
}

// NewResetService creates a new ResetService. The cache client tracks
// consumed token ids so each token is honored at most once.
func NewResetService(consumed ICacheClient, cfg ResetConfig) *ResetService {
	return &ResetService{
		consumed:  consumed,
		secretKey: []byte(cfg.SecretKey),
		cfg:       cfg,
	}
}

// IssueResetToken builds and signs a short-lived, purpose-tagged token for
// the user. The embedded jti identifies the token for one-time consumption.
func (s *ResetService) IssueResetToken(userID string, purpose model.TokenPurpose) (string, error) {
	now := time.Now().UTC()

	claims := &model.ResetClaims{
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.ResetTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign reset token: %w", err)
	}
	return tokenString, nil
}

// ValidateAndConsume verifies the token's signature, expiry and purpose, then
// marks it consumed. The consumption marker lives exactly as long as the
// token itself, so a second use of the same token fails with
// ErrTokenAlreadyUsed. On success the owning user id is returned.
func (s *ResetService) ValidateAndConsume(ctx context.Context, tokenString string, purpose model.TokenPurpose) (string, error) {
	claims := &model.ResetClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrInvalidToken
	}
	if !token.Valid || claims.ID == "" || claims.Subject == "" || claims.ExpiresAt == nil {
		return "", ErrInvalidToken
	}
	if claims.Purpose != purpose {
		return "", ErrPurposeMismatch
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining <= 0 {
		return "", ErrTokenExpired
	}

	ok, err := s.consumed.SetNX(ctx, consumedKey(claims.ID), 1, remaining).Result()
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrStoreUnavailable, err)
	}
	if !ok {
		return "", ErrTokenAlreadyUsed
	}

	return claims.Subject, nil
}

// GenerateTemporaryPassword returns a random password of the requested length
// containing at least one lowercase letter, one uppercase letter, one digit
// and one symbol. Lengths below 6 are rejected.
func (s *ResetService) GenerateTemporaryPassword(length int) (string, error) {
	if length < minTemporaryPasswordLength {
		return "", ErrPasswordLength
	}

	allChars := lowerChars + upperChars + digitChars + symbolChars

	password := make([]byte, 0, length)
	for _, class := range []string{lowerChars, upperChars, digitChars, symbolChars} {
		c, err := randomChar(class)
		if err != nil {
			return "", err
		}
		password = append(password, c)
	}
	for len(password) < length {
		c, err := randomChar(allChars)
		if err != nil {
			return "", err
		}
		password = append(password, c)
	}

	// Shuffle so the class-guaranteed characters do not sit at fixed
	// positions.
	for i := len(password) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", fmt.Errorf("failed to read random index: %w", err)
		}
		j := n.Int64()
		password[i], password[j] = password[j], password[i]
	}

	return string(password), nil
}

func randomChar(class string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(class))))
	if err != nil {
		return 0, fmt.Errorf("failed to read random index: %w", err)
	}
	return class[n.Int64()], nil
}

func consumedKey(tokenID string) string {
	return "reset_consumed:" + tokenID
}
