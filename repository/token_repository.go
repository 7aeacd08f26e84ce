// file: repository/token_repository.go

package repository

import (
	"context"
	"database/sql"
	"go-auth-api/logger"
	"go-auth-api/model"

	"github.com/sirupsen/logrus"
)

// ITokenRepository defines the contract for refresh token database operations.
type ITokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	// DeleteByUserIDAndHash removes a single unexpired token and returns the
	// number of rows deleted. Running as one conditional statement makes it
	// the atomic check-and-consume primitive for rotation: when two calls
	// race on the same token, only one can observe a deleted row.
	DeleteByUserIDAndHash(ctx context.Context, userID, tokenHash string) (int64, error)
	ListByUserID(ctx context.Context, userID string) ([]*model.RefreshToken, error)
	DeleteByUserID(ctx context.Context, userID string) error
}

// TokenRepository implements ITokenRepository.
type TokenRepository struct {
	DB *sql.DB
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{DB: db}
}

// Create inserts a new refresh token record into the database.
func (r *TokenRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":    token.UserID,
		"expires_at": token.ExpiresAt,
	})

	query := `INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES ($1, $2, $3) RETURNING id, created_at`
	err := r.DB.QueryRowContext(ctx, query, token.UserID, token.TokenHash, token.ExpiresAt).Scan(&token.ID, &token.CreatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create refresh token query")
		return err
	}
	return nil
}

func (r *TokenRepository) DeleteByUserIDAndHash(ctx context.Context, userID, tokenHash string) (int64, error) {
	query := `DELETE FROM refresh_tokens WHERE user_id = $1 AND token_hash = $2 AND expires_at > now()`
	result, err := r.DB.ExecContext(ctx, query, userID, tokenHash)
	if err != nil {
		logger.Log.WithField("user_id", userID).WithError(err).Error("Failed to execute delete refresh token query")
		return 0, err
	}
	return result.RowsAffected()
}

// ListByUserID retrieves all stored refresh tokens for a user.
func (r *TokenRepository) ListByUserID(ctx context.Context, userID string) ([]*model.RefreshToken, error) {
	query := `SELECT id, user_id, token_hash, expires_at, created_at FROM refresh_tokens WHERE user_id = $1`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []*model.RefreshToken
	for rows.Next() {
		token := &model.RefreshToken{}
		if err := rows.Scan(&token.ID, &token.UserID, &token.TokenHash, &token.ExpiresAt, &token.CreatedAt); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}

// DeleteByUserID deletes all refresh tokens for a specific user.
// This is used for logging out from all sessions.
func (r *TokenRepository) DeleteByUserID(ctx context.Context, userID string) error {
	log := logger.Log.WithField("user_id", userID)
	log.Info("Executing query to delete all refresh tokens for a user")

	query := `DELETE FROM refresh_tokens WHERE user_id = $1`
	_, err := r.DB.ExecContext(ctx, query, userID)
	if err != nil {
		log.WithError(err).Error("Failed to execute delete refresh tokens query")
		return err
	}
	return nil
}
