// file: repository/token_repository_test.go

package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"go-auth-api/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewTokenRepository(db)
	token := &model.RefreshToken{
		UserID:    "id-1",
		TokenHash: "abc123",
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO refresh_tokens (user_id, token_hash, expires_at)")).
		WithArgs(token.UserID, token.TokenHash, token.ExpiresAt).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, time.Now()))

	require.NoError(t, repo.Create(context.Background(), token))
	assert.Equal(t, 1, token.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepository_DeleteByUserIDAndHash(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewTokenRepository(db)
	query := regexp.QuoteMeta("DELETE FROM refresh_tokens WHERE user_id = $1 AND token_hash = $2 AND expires_at > now()")

	t.Run("token present", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs("id-1", "hash-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		rows, err := repo.DeleteByUserIDAndHash(context.Background(), "id-1", "hash-1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), rows)
	})

	t.Run("token absent or expired", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs("id-1", "hash-2").
			WillReturnResult(sqlmock.NewResult(0, 0))

		rows, err := repo.DeleteByUserIDAndHash(context.Background(), "id-1", "hash-2")
		require.NoError(t, err)
		assert.Equal(t, int64(0), rows)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepository_ListByUserID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewTokenRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, token_hash, expires_at, created_at FROM refresh_tokens")).
		WithArgs("id-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token_hash", "expires_at", "created_at"}).
			AddRow(1, "id-1", "hash-1", time.Now().Add(time.Hour), time.Now()).
			AddRow(2, "id-1", "hash-2", time.Now().Add(time.Hour), time.Now()))

	tokens, err := repo.ListByUserID(context.Background(), "id-1")
	require.NoError(t, err)
	assert.Len(t, tokens, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepository_DeleteByUserID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewTokenRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM refresh_tokens WHERE user_id = $1")).
		WithArgs("id-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.DeleteByUserID(context.Background(), "id-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
