// file: repository/user_repository_test.go

package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"go-auth-api/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(db)
	user := &model.User{
		ID:           "11111111-1111-1111-1111-111111111111",
		Email:        "user@example.com",
		PasswordHash: "hash",
	}

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
			WithArgs(user.ID, user.Email, user.PasswordHash, false, false).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

		err := repo.CreateUser(context.Background(), user)
		assert.NoError(t, err)
		assert.False(t, user.CreatedAt.IsZero())
	})

	t.Run("duplicate email", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
			WithArgs(user.ID, user.Email, user.PasswordHash, false, false).
			WillReturnError(&pq.Error{Code: "23505"})

		err := repo.CreateUser(context.Background(), user)
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetUserByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(db)
	columns := []string{"id", "email", "password_hash", "email_confirmed", "is_external", "created_at"}

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, email_confirmed, is_external, created_at")).
			WithArgs("user@example.com").
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow("id-1", "user@example.com", "hash", true, false, time.Now()))

		user, err := repo.GetUserByEmail(context.Background(), "user@example.com")
		require.NoError(t, err)
		assert.Equal(t, "id-1", user.ID)
		assert.True(t, user.EmailConfirmed)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, email_confirmed, is_external, created_at")).
			WithArgs("ghost@example.com").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetUserByEmail(context.Background(), "ghost@example.com")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateAuth(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(db)

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password_hash = $1 WHERE id = $2")).
			WithArgs("new-hash", "id-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.UpdateAuth(context.Background(), "id-1", "new-hash"))
	})

	t.Run("missing user", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password_hash = $1 WHERE id = $2")).
			WithArgs("new-hash", "ghost").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.UpdateAuth(context.Background(), "ghost", "new-hash"), sql.ErrNoRows)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateExternalUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(db)
	user := &model.User{
		ID:             "id-1",
		Email:          "ext@example.com",
		EmailConfirmed: true,
		IsExternal:     true,
	}
	login := &model.ExternalLogin{UserID: "id-1", Provider: "Google", ProviderUserID: "g-1"}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(user.ID, user.Email, "", true, true).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO external_logins")).
		WithArgs(login.UserID, login.Provider, login.ProviderUserID).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.CreateExternalUser(context.Background(), user, login))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UnlinkExternalLogin(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM external_logins WHERE user_id = $1 AND provider = $2")).
		WithArgs("id-1", "Google").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rows, err := repo.UnlinkExternalLogin(context.Background(), "id-1", "Google")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
