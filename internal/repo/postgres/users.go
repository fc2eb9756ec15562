package postgres

import (
	"context"
	"errors"

	"github.com/beadworks/storeadmin/internal/domain/user"
	"github.com/beadworks/storeadmin/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}

func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return true
	}
	return false
}

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const userColumns = `id, email, password_hash, first_name, last_name, role, refresh_token_hash, created_at, updated_at`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.Role,
		&u.RefreshTokenHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_email", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(
			ctx,
			`SELECT `+userColumns+` FROM users WHERE email = $1`,
			email,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, ErrUserNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_id", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(
			ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1`,
			id,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, ErrUserNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	err := r.observe("users.create", func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO users (email, password_hash, first_name, last_name, role, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING id`,
			u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Role, u.CreatedAt, u.UpdatedAt,
		).Scan(&u.ID)
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return user.User{}, ErrEmailTaken
		}

		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) UpdateRefreshTokenHash(ctx context.Context, id int64, hash *string) error {
	var tag pgconn.CommandTag

	err := r.observe("users.update_refresh_hash", func() error {
		var err error
		tag, err = r.pool.Exec(ctx,
			`UPDATE users SET refresh_token_hash = $2, updated_at = NOW() WHERE id = $1`,
			id, hash,
		)
		return err
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Compare-and-swap rotation: the stored hash must still equal oldHash for
// the new one to land, so of two concurrent refreshes only one wins.
func (r *UsersRepo) UpdateRefreshTokenHashIfMatch(ctx context.Context, id int64, oldHash, newHash string) (bool, error) {
	var tag pgconn.CommandTag

	err := r.observe("users.rotate_refresh_hash", func() error {
		var err error
		tag, err = r.pool.Exec(ctx,
			`UPDATE users SET refresh_token_hash = $3, updated_at = NOW()
			 WHERE id = $1 AND refresh_token_hash = $2`,
			id, oldHash, newHash,
		)
		return err
	})

	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *UsersRepo) ClearRefreshTokenHash(ctx context.Context, id int64) error {
	err := r.observe("users.clear_refresh_hash", func() error {
		_, err := r.pool.Exec(ctx,
			`UPDATE users SET refresh_token_hash = NULL, updated_at = NOW() WHERE id = $1`,
			id,
		)
		return err
	})
	return err
}
