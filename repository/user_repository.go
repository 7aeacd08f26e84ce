package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"go-auth-api/model"

	"github.com/lib/pq"
)

// ErrDuplicateEmail is returned when an insert violates the unique email
// constraint. The service layer maps it to its own error kind.
var ErrDuplicateEmail = errors.New("email already registered")

const uniqueViolationCode = "23505"

// IUserRepository defines the contract for account persistence. Emails handed
// to these methods must already be lower-cased by the caller.
type IUserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	CreateExternalUser(ctx context.Context, user *model.User, login *model.ExternalLogin) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	UpdateAuth(ctx context.Context, userID, passwordHash string) error
	ConfirmEmail(ctx context.Context, userID string) error
	GetExternalLogin(ctx context.Context, userID, provider string) (*model.ExternalLogin, error)
	LinkExternalLogin(ctx context.Context, login *model.ExternalLogin) error
	UnlinkExternalLogin(ctx context.Context, userID, provider string) (int64, error)
}

// UserRepository implements IUserRepository on top of database/sql.
type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) CreateUser(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (id, email, password_hash, email_confirmed, is_external)
			  VALUES ($1, $2, $3, $4, $5) RETURNING created_at`
	err := r.DB.QueryRowContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.EmailConfirmed, user.IsExternal).
		Scan(&user.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

// CreateExternalUser inserts the account and its provider link in a single
// transaction so a crash cannot leave an external account without its link.
func (r *UserRepository) CreateExternalUser(ctx context.Context, user *model.User, login *model.ExternalLogin) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	userQuery := `INSERT INTO users (id, email, password_hash, email_confirmed, is_external)
				  VALUES ($1, $2, $3, $4, $5) RETURNING created_at`
	err = tx.QueryRowContext(ctx, userQuery,
		user.ID, user.Email, user.PasswordHash, user.EmailConfirmed, user.IsExternal).
		Scan(&user.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return err
	}

	loginQuery := `INSERT INTO external_logins (user_id, provider, provider_user_id) VALUES ($1, $2, $3)`
	if _, err := tx.ExecContext(ctx, loginQuery, login.UserID, login.Provider, login.ProviderUserID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT id, email, password_hash, email_confirmed, is_external, created_at
			  FROM users WHERE email = $1`
	err := r.DB.QueryRowContext(ctx, query, email).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.EmailConfirmed, &user.IsExternal, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT id, email, password_hash, email_confirmed, is_external, created_at
			  FROM users WHERE id = $1`
	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.EmailConfirmed, &user.IsExternal, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateAuth replaces the stored password hash for an account.
func (r *UserRepository) UpdateAuth(ctx context.Context, userID, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1 WHERE id = $2`
	result, err := r.DB.ExecContext(ctx, query, passwordHash, userID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *UserRepository) ConfirmEmail(ctx context.Context, userID string) error {
	query := `UPDATE users SET email_confirmed = TRUE WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, userID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *UserRepository) GetExternalLogin(ctx context.Context, userID, provider string) (*model.ExternalLogin, error) {
	login := &model.ExternalLogin{}
	query := `SELECT user_id, provider, provider_user_id, created_at
			  FROM external_logins WHERE user_id = $1 AND provider = $2`
	err := r.DB.QueryRowContext(ctx, query, userID, provider).
		Scan(&login.UserID, &login.Provider, &login.ProviderUserID, &login.CreatedAt)
	if err != nil {
		return nil, err
	}
	return login, nil
}

func (r *UserRepository) LinkExternalLogin(ctx context.Context, login *model.ExternalLogin) error {
	query := `INSERT INTO external_logins (user_id, provider, provider_user_id) VALUES ($1, $2, $3)`
	_, err := r.DB.ExecContext(ctx, query, login.UserID, login.Provider, login.ProviderUserID)
	return err
}

// UnlinkExternalLogin removes a provider link and reports how many rows were
// deleted, so the caller can tell a missing link apart from success.
func (r *UserRepository) UnlinkExternalLogin(ctx context.Context, userID, provider string) (int64, error) {
	query := `DELETE FROM external_logins WHERE user_id = $1 AND provider = $2`
	result, err := r.DB.ExecContext(ctx, query, userID, provider)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolationCode
	}
	return false
}
