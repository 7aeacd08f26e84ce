// file: service/auth_service_test.go

package service

import (
	"context"
	"database/sql"
	"encoding/base64"
	"go-auth-api/model"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTokenConfig(accessTTL time.Duration) TokenConfig {
	return TokenConfig{
		SecretKey:       "test-secret-key-for-unit-tests-only",
		AccessTokenTTL:  accessTTL,
		RefreshTokenTTL: 24 * time.Hour,
		Issuer:          "go-auth-api-test",
	}
}

// TestAuthService_HashAndCheckPassword ensures that password hashing and verification methods work correctly.
func TestAuthService_HashAndCheckPassword(t *testing.T) {
	// HashPassword and CheckPasswordHash don't use any repository
	// dependencies, so nil repositories are fine here.
	authService := NewAuthService(nil, nil, testTokenConfig(time.Hour))
	password := "mySecretPassword123"

	hashedPassword, err := authService.HashPassword(password)
	if err != nil {
		t.Fatalf("authService.HashPassword() returned an unexpected error: %v", err)
	}

	if hashedPassword == password {
		t.Errorf("Hashed password should not be the same as the original password.")
	}

	match := authService.CheckPasswordHash(password, hashedPassword)
	if !match {
		t.Errorf("authService.CheckPasswordHash() should have returned true for a matching password, but got false.")
	}

	wrongPassword := "notMyPassword"
	match = authService.CheckPasswordHash(wrongPassword, hashedPassword)
	if match {
		t.Errorf("authService.CheckPasswordHash() should have returned false for a non-matching password, but got true.")
	}
}

func TestAuthService_AccessTokenRoundTrip(t *testing.T) {
	authService := NewAuthService(nil, nil, testTokenConfig(time.Hour))

	token, err := authService.IssueAccessToken("user-1", "user@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := authService.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestAuthService_AccessTokenZeroTTLExpires(t *testing.T) {
	authService := NewAuthService(nil, nil, testTokenConfig(0))

	token, err := authService.IssueAccessToken("user-1", "user@example.com")
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)

	_, err = authService.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestAuthService_ValidateAccessToken_FailsClosed(t *testing.T) {
	authService := NewAuthService(nil, nil, testTokenConfig(time.Hour))

	t.Run("garbage input", func(t *testing.T) {
		_, err := authService.ValidateAccessToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong key", func(t *testing.T) {
		other := NewAuthService(nil, nil, TokenConfig{
			SecretKey:      "a-completely-different-secret",
			AccessTokenTTL: time.Hour,
			Issuer:         "go-auth-api-test",
		})
		token, err := other.IssueAccessToken("user-1", "user@example.com")
		require.NoError(t, err)

		_, err = authService.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestAuthService_GenerateRefreshToken(t *testing.T) {
	authService := NewAuthService(nil, nil, testTokenConfig(time.Hour))

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := authService.GenerateRefreshToken()
		require.NoError(t, err)

		raw, err := base64.StdEncoding.DecodeString(token)
		require.NoError(t, err)
		assert.Len(t, raw, refreshTokenBytes)

		assert.False(t, seen[token], "refresh tokens must not repeat")
		seen[token] = true
	}
}

// --- In-memory fakes for rotation tests ---

type memoryTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]string // token hash -> user id
}

func newMemoryTokenRepo() *memoryTokenRepo {
	return &memoryTokenRepo{tokens: make(map[string]string)}
}

func (r *memoryTokenRepo) Create(ctx context.Context, token *model.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token.TokenHash] = token.UserID
	return nil
}

func (r *memoryTokenRepo) DeleteByUserIDAndHash(ctx context.Context, userID, tokenHash string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if owner, ok := r.tokens[tokenHash]; ok && owner == userID {
		delete(r.tokens, tokenHash)
		return 1, nil
	}
	return 0, nil
}

func (r *memoryTokenRepo) ListByUserID(ctx context.Context, userID string) ([]*model.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var tokens []*model.RefreshToken
	for hash, owner := range r.tokens {
		if owner == userID {
			tokens = append(tokens, &model.RefreshToken{UserID: owner, TokenHash: hash})
		}
	}
	return tokens, nil
}

func (r *memoryTokenRepo) DeleteByUserID(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for hash, owner := range r.tokens {
		if owner == userID {
			delete(r.tokens, hash)
		}
	}
	return nil
}

type staticUserRepo struct {
	user *model.User
}

func (r *staticUserRepo) CreateUser(ctx context.Context, user *model.User) error { return nil }
func (r *staticUserRepo) CreateExternalUser(ctx context.Context, user *model.User, login *model.ExternalLogin) error {
	return nil
}
func (r *staticUserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if r.user != nil && r.user.Email == email {
		return r.user, nil
	}
	return nil, sql.ErrNoRows
}
func (r *staticUserRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if r.user != nil && r.user.ID == id {
		return r.user, nil
	}
	return nil, sql.ErrNoRows
}
func (r *staticUserRepo) UpdateAuth(ctx context.Context, userID, passwordHash string) error {
	return nil
}
func (r *staticUserRepo) ConfirmEmail(ctx context.Context, userID string) error { return nil }
func (r *staticUserRepo) GetExternalLogin(ctx context.Context, userID, provider string) (*model.ExternalLogin, error) {
	return nil, sql.ErrNoRows
}
func (r *staticUserRepo) LinkExternalLogin(ctx context.Context, login *model.ExternalLogin) error {
	return nil
}
func (r *staticUserRepo) UnlinkExternalLogin(ctx context.Context, userID, provider string) (int64, error) {
	return 0, nil
}

func TestAuthService_RotateRefreshToken_SingleUse(t *testing.T) {
	user := &model.User{ID: "user-1", Email: "user@example.com", EmailConfirmed: true}
	tokenRepo := newMemoryTokenRepo()
	authService := NewAuthService(&staticUserRepo{user: user}, tokenRepo, testTokenConfig(time.Hour))

	_, refreshToken, err := authService.StartSession(context.Background(), user)
	require.NoError(t, err)

	access, newRefresh, err := authService.RotateRefreshToken(context.Background(), user.ID, refreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, newRefresh)
	assert.NotEqual(t, refreshToken, newRefresh)

	// The same old token must be rejected on a second rotation.
	_, _, err = authService.RotateRefreshToken(context.Background(), user.ID, refreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestAuthService_RotateRefreshToken_ConcurrentUse(t *testing.T) {
	user := &model.User{ID: "user-1", Email: "user@example.com", EmailConfirmed: true}
	tokenRepo := newMemoryTokenRepo()
	authService := NewAuthService(&staticUserRepo{user: user}, tokenRepo, testTokenConfig(time.Hour))

	_, refreshToken, err := authService.StartSession(context.Background(), user)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, results[i] = authService.RotateRefreshToken(context.Background(), user.ID, refreshToken)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, ErrInvalidRefreshToken)
		}
	}
	assert.Equal(t, 1, successes, "exactly one of two concurrent rotations must succeed")
}

func TestAuthService_RotateRefreshToken_UnknownToken(t *testing.T) {
	user := &model.User{ID: "user-1", Email: "user@example.com"}
	authService := NewAuthService(&staticUserRepo{user: user}, newMemoryTokenRepo(), testTokenConfig(time.Hour))

	_, _, err := authService.RotateRefreshToken(context.Background(), user.ID, "never-issued")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}
