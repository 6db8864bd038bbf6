package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrUsernameExists = errors.New("username already exists")
	ErrEmailExists    = errors.New("email already exists")
	ErrNoUser         = errors.New("user does not exist")
	ErrNoArticle      = errors.New("article does not exist")
	ErrDatabaseError  = errors.New("database error occurred")
)

func IsUsernameExistsError(err error) bool {
	return errors.Is(err, ErrUsernameExists)
}

func IsEmailExistsError(err error) bool {
	return errors.Is(err, ErrEmailExists)
}

func IsUserNotFoundError(err error) bool {
	return errors.Is(err, ErrNoUser)
}

func IsArticleNotFoundError(err error) bool {
	return errors.Is(err, ErrNoArticle)
}

// Store wraps the connection pool with the repository operations.
type Store struct {
	Pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}

func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	username TEXT NOT NULL,
	email TEXT NOT NULL,
	hashed_password TEXT NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS ix_users_username ON users (username);
CREATE UNIQUE INDEX IF NOT EXISTS ix_users_email ON users (email);

CREATE TABLE IF NOT EXISTS articles (
	id BIGSERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	content TEXT NOT NULL DEFAULT '',
	author_id BIGINT NOT NULL REFERENCES users (id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS ix_articles_author_id ON articles (author_id);
`

// EnsureSchema provisions the tables and unique indexes at startup.
// Article cleanup on user deletion is an explicit transactional step in
// DeleteUser, not an ON DELETE CASCADE.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to provision schema: %w", err)
	}
	return nil
}
