package db

import (
	"context"
	"errors"
	"time"

	"github.com/beadworks/storeadmin/internal/config"
	"github.com/beadworks/storeadmin/internal/domain/user"
	"github.com/beadworks/storeadmin/internal/security"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureAdminUser creates the bootstrap ADMIN account on first start so
// someone can log in to the fresh deployment.
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

	hash, err := security.HashSecret(cfg.AdminPassword)

	if err != nil {
		return err
	}

	now := time.Now().UTC()

	_, err = pool.Exec(ctx,
		`INSERT INTO users (email, password_hash, first_name, last_name, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		cfg.AdminEmail, hash, cfg.AdminFirstName, cfg.AdminLastName, user.RoleAdmin, now, now,
	)

	return err
}
