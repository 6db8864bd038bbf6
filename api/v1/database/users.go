package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mwalden2/inkwell/api/v1/models"
)

// UserPatch carries the fields of a merge-patch user update. Nil fields are
// left untouched. The password arrives already hashed.
type UserPatch struct {
	Username       *string
	Email          *string
	HashedPassword *string
	IsActive       *bool
}

// uniqueViolation maps a unique-index violation to the matching sentinel
// error, or nil if err is not a unique violation.
func uniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil
	}
	if strings.Contains(pgErr.ConstraintName, "email") {
		return fmt.Errorf("%w: email became unavailable", ErrEmailExists)
	}
	return fmt.Errorf("%w: username became unavailable", ErrUsernameExists)
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	// check availability first; the unique indexes remain the final guard
	var count int
	err := s.Pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM users WHERE username = $1", user.Username,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("%w: failed to check username availability", ErrDatabaseError)
	}
	if count > 0 {
		return fmt.Errorf("%w: username '%s' is already taken", ErrUsernameExists, user.Username)
	}

	err = s.Pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM users WHERE email = $1", user.Email,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("%w: failed to check email availability", ErrDatabaseError)
	}
	if count > 0 {
		return fmt.Errorf("%w: email '%s' is already registered", ErrEmailExists, user.Email)
	}

	insertQuery := `
		INSERT INTO users (username, email, hashed_password)
		VALUES ($1, $2, $3)
		RETURNING id, is_active, created_at`

	err = s.Pool.QueryRow(ctx, insertQuery,
		user.Username, user.Email, user.HashedPassword,
	).Scan(&user.ID, &user.IsActive, &user.CreatedAt)
	if err != nil {
		// constraint violation as backup (race condition case)
		if conflict := uniqueViolation(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("%w: failed to create user", ErrDatabaseError)
	}

	return nil
}

func (s *Store) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	getQuery := `
		SELECT id, username, email, hashed_password, is_active, created_at
		FROM users
		WHERE id = $1`

	var user models.User
	err := s.Pool.QueryRow(ctx, getQuery, userID).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.HashedPassword,
		&user.IsActive,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user with ID %d not found: %w", userID, ErrNoUser)
		}
		return nil, fmt.Errorf("%w: failed to retrieve user", ErrDatabaseError)
	}

	return &user, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	getQuery := `
		SELECT id, username, email, hashed_password, is_active, created_at
		FROM users
		WHERE username = $1`

	var user models.User
	err := s.Pool.QueryRow(ctx, getQuery, username).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.HashedPassword,
		&user.IsActive,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user '%s' not found: %w", username, ErrNoUser)
		}
		return nil, fmt.Errorf("%w: failed to retrieve user", ErrDatabaseError)
	}

	return &user, nil
}

func (s *Store) ListUsers(ctx context.Context, skip, limit int) ([]models.User, error) {
	listQuery := `
		SELECT id, username, email, hashed_password, is_active, created_at
		FROM users
		ORDER BY id
		LIMIT $1 OFFSET $2`

	rows, err := s.Pool.Query(ctx, listQuery, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get users", ErrDatabaseError)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.HashedPassword,
			&user.IsActive,
			&user.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan user data", ErrDatabaseError)
		}
		users = append(users, user)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate users", ErrDatabaseError)
	}

	return users, nil
}

// UpdateUser applies a merge-patch to a user inside one transaction: the
// current row is read, nil patch fields keep their existing values, and the
// whole operation rolls back on any failure.
func (s *Store) UpdateUser(ctx context.Context, userID int64, patch *UserPatch) (*models.User, error) {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to start transaction", ErrDatabaseError)
	}
	defer tx.Rollback(ctx)

	selectQuery := `
		SELECT id, username, email, hashed_password, is_active, created_at
		FROM users
		WHERE id = $1
		FOR UPDATE`

	var user models.User
	err = tx.QueryRow(ctx, selectQuery, userID).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.HashedPassword,
		&user.IsActive,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user with ID %d not found: %w", userID, ErrNoUser)
		}
		return nil, fmt.Errorf("%w: failed to retrieve user for update", ErrDatabaseError)
	}

	if patch.Username != nil {
		user.Username = *patch.Username
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.HashedPassword != nil {
		user.HashedPassword = *patch.HashedPassword
	}
	if patch.IsActive != nil {
		user.IsActive = *patch.IsActive
	}

	updateQuery := `
		UPDATE users
		SET username = $1, email = $2, hashed_password = $3, is_active = $4
		WHERE id = $5`

	_, err = tx.Exec(ctx, updateQuery,
		user.Username, user.Email, user.HashedPassword, user.IsActive, userID,
	)
	if err != nil {
		if conflict := uniqueViolation(err); conflict != nil {
			return nil, conflict
		}
		return nil, fmt.Errorf("%w: failed to update user", ErrDatabaseError)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: failed to commit transaction", ErrDatabaseError)
	}

	return &user, nil
}

// DeleteUser removes a user and all articles they own in one transaction.
func (s *Store) DeleteUser(ctx context.Context, userID int64) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to start transaction", ErrDatabaseError)
	}
	defer tx.Rollback(ctx)

	// explicit cascade: owned articles go first
	_, err = tx.Exec(ctx, "DELETE FROM articles WHERE author_id = $1", userID)
	if err != nil {
		return fmt.Errorf("%w: failed to delete user's articles", ErrDatabaseError)
	}

	tag, err := tx.Exec(ctx, "DELETE FROM users WHERE id = $1", userID)
	if err != nil {
		return fmt.Errorf("%w: failed to delete user", ErrDatabaseError)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user with ID %d does not exist: %w", userID, ErrNoUser)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: failed to commit transaction", ErrDatabaseError)
	}

	return nil
}
