package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/userhub/userhub/internal/config"
	"github.com/userhub/userhub/internal/domain/user"
	"github.com/userhub/userhub/internal/security"
)

// EnsureAdminUser creates the bootstrap admin account if it is configured
// and does not already exist.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	// check if the user exists

	var dummy int64

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, cfg.AdminEmail).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO users (name, email, password, role)
		VALUES ($1, $2, $3, $4)
		`,
		cfg.AdminName, cfg.AdminEmail, hash, user.RoleAdmin,
	)

	return err
}
