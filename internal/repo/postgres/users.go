package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/userhub/userhub/internal/domain/user"
	"github.com/userhub/userhub/internal/observability"
)

const uniqueViolation = "23505"

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

// constructor function; prom may be nil (tests).

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *UsersRepo) observe(op string, start time.Time, err error) {
	if r.prom != nil {
		r.prom.ObserveDB(op, start, err)
	}
}

const viewColumns = `id, name, email, role, created_at, updated_at`

func (r *UsersRepo) Create(ctx context.Context, params user.CreateParams) (user.View, error) {
	start := time.Now()

	var v user.View

	err := r.pool.QueryRow(
		ctx,
		`INSERT INTO users (name, email, password, role)
		VALUES ($1, $2, $3, $4)
		RETURNING `+viewColumns,
		params.Name,
		params.Email,
		params.PasswordHash,
		params.Role,
	).Scan(&v.ID, &v.Name, &v.Email, &v.Role, &v.CreatedAt, &v.UpdatedAt)

	r.observe("users.create", start, err)

	if err != nil {
		// The unique index is the real uniqueness guarantee; the service's
		// pre-check only exists for a friendlier fast path.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return user.View{}, user.ErrEmailTaken
		}

		return user.View{}, err
	}

	return v, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	start := time.Now()

	var u user.User

	err := r.pool.QueryRow(
		ctx,
		`SELECT id, name, email, password, role, created_at, updated_at
		FROM users
		WHERE email = $1`,
		email,
	).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	r.observe("users.get_by_email", start, err)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.View, error) {
	start := time.Now()

	var v user.View

	err := r.pool.QueryRow(
		ctx,
		`SELECT `+viewColumns+` FROM users WHERE id = $1`,
		id,
	).Scan(&v.ID, &v.Name, &v.Email, &v.Role, &v.CreatedAt, &v.UpdatedAt)

	r.observe("users.get_by_id", start, err)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.View{}, user.ErrNotFound
		}

		return user.View{}, err
	}

	return v, nil
}

func (r *UsersRepo) List(ctx context.Context) ([]user.View, error) {
	start := time.Now()

	rows, err := r.pool.Query(
		ctx,
		`SELECT `+viewColumns+` FROM users ORDER BY id ASC`,
	)

	r.observe("users.list", start, err)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	output := make([]user.View, 0)

	for rows.Next() {
		var v user.View

		err = rows.Scan(&v.ID, &v.Name, &v.Email, &v.Role, &v.CreatedAt, &v.UpdatedAt)

		if err != nil {
			return nil, err
		}

		output = append(output, v)
	}

	err = rows.Err()

	if err != nil {
		return nil, err
	}

	return output, nil
}

// Update applies only the supplied fields in a single conditional UPDATE.
// A vanished row surfaces as ErrNotFound, so there is no window between an
// existence check and the write.
func (r *UsersRepo) Update(ctx context.Context, id int64, params user.UpdateParams) (user.View, error) {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{id}

	argsPosition := 2

	if params.Name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", argsPosition))
		args = append(args, *params.Name)
		argsPosition++
	}

	if params.Email != nil {
		sets = append(sets, fmt.Sprintf("email = $%d", argsPosition))
		args = append(args, *params.Email)
		argsPosition++
	}

	if params.PasswordHash != nil {
		sets = append(sets, fmt.Sprintf("password = $%d", argsPosition))
		args = append(args, *params.PasswordHash)
		argsPosition++
	}

	if params.Role != nil {
		sets = append(sets, fmt.Sprintf("role = $%d", argsPosition))
		args = append(args, *params.Role)
		argsPosition++
	}

	query := fmt.Sprintf(
		`UPDATE users SET %s WHERE id = $1 RETURNING `+viewColumns,
		strings.Join(sets, ", "),
	)

	start := time.Now()

	var v user.View

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&v.ID,
		&v.Name,
		&v.Email,
		&v.Role,
		&v.CreatedAt,
		&v.UpdatedAt,
	)

	r.observe("users.update", start, err)

	if err != nil {
		// if there are no rows matching the id
		if errors.Is(err, pgx.ErrNoRows) {
			return user.View{}, user.ErrNotFound
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return user.View{}, user.ErrEmailTaken
		}

		// if it is any other type of error
		return user.View{}, err
	}

	return v, nil
}

func (r *UsersRepo) Delete(ctx context.Context, id int64) error {
	start := time.Now()

	tag, err := r.pool.Exec(ctx, `
		DELETE FROM users WHERE id = $1
	`, id)

	r.observe("users.delete", start, err)

	if err != nil {
		return err
	}

	// if no rows were deleted as a result return a not found error
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}

	return nil
}
