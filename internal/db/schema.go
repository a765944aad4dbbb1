package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema bootstraps the users table on startup. Schema evolution is
// owned by the operator; this only guarantees a fresh database is usable.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id         BIGSERIAL PRIMARY KEY,
			name       VARCHAR(256) NOT NULL DEFAULT '',
			email      VARCHAR(256) NOT NULL,
			password   VARCHAR(256) NOT NULL,
			role       VARCHAR(50)  NOT NULL DEFAULT 'user',
			created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);
		CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (email);
	`)

	return err
}
