package datastore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tdnguyen/novelnest/models"
)

const userColumns = `id, username, email, password_hash, name, avatar, is_active, is_admin, is_author, created_at`

type UserRepository struct {
	db *sql.DB // The actual database connection pool
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.Name, &user.Avatar,
		&user.IsActive, &user.IsAdmin, &user.IsAuthor, &user.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, name, avatar, is_active, is_admin, is_author, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash,
		user.Name, user.Avatar,
		user.IsActive, user.IsAdmin, user.IsAuthor, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUserByUsername retrieves a user by username regardless of the
// active flag. Credential checks want the full record so that a bad
// password and a missing user stay indistinguishable to the caller.
func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, username))
}

// GetActiveUserByUsername retrieves a user by username, filtered on the
// active flag. Token resolution goes through here, so deactivating a
// user invalidates their outstanding tokens immediately.
func (r *UserRepository) GetActiveUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 AND is_active = TRUE`
	return scanUser(r.db.QueryRowContext(ctx, query, username))
}

// GetUserByEmail retrieves a user by email. Used by signup to reject
// duplicate registrations before hashing the password.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) GetUsers(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(
			&user.ID, &user.Username, &user.Email, &user.PasswordHash,
			&user.Name, &user.Avatar,
			&user.IsActive, &user.IsAdmin, &user.IsAuthor, &user.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, user)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// UpdateUserName sets the user's pen name.
func (r *UserRepository) UpdateUserName(ctx context.Context, userID, name string) error {
	query := `UPDATE users SET name = $1 WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, name, userID)
	if err != nil {
		return fmt.Errorf("failed to update user name: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return nil
}

// ToggleUserActive flips the active flag. Already-issued tokens stop
// authenticating as soon as the flag goes false, because token decoding
// re-resolves the user through the active-filtered lookup.
func (r *UserRepository) ToggleUserActive(ctx context.Context, userID string) error {
	query := `UPDATE users SET is_active = NOT is_active WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to toggle user active flag: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return nil
}
