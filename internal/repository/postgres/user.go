package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/montevideo/internal/apperrors"
	"github.com/nkiryanov/montevideo/internal/models"
)

type UserRepo struct {
	DB DBTX
}

const userColumns = `id, created_at, updated_at, first_name, last_name, user_name, age, email, password_hash, refresh_token`

const createUser = `-- name: CreateUser
INSERT INTO users (id, first_name, last_name, user_name, age, email, password_hash)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + userColumns

func (r *UserRepo) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}

	rows, _ := r.DB.Query(ctx, createUser, u.ID, u.FirstName, u.LastName, u.UserName, u.Age, u.Email, u.HashedPassword)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return user, apperrors.ErrUserAlreadyExists
		}

		return user, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

const getUserByEmail = `-- name: GetUserByEmail
SELECT ` + userColumns + ` FROM users
WHERE email = $1
`

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByEmail, email)
	return collectUser(rows)
}

const getUserByRefreshToken = `-- name: GetUserByRefreshToken
SELECT ` + userColumns + ` FROM users
WHERE refresh_token = $1 AND refresh_token <> ''
LIMIT 1
`

// Find user who holds exactly this refresh token
// Empty token never matches: it means 'no active session'
func (r *UserRepo) GetUserByRefreshToken(ctx context.Context, token string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByRefreshToken, token)
	return collectUser(rows)
}

const updateRefreshToken = `-- name: UpdateRefreshToken
WITH updated AS (
	UPDATE users SET refresh_token = $3, updated_at = now()
	WHERE email = $1 AND refresh_token = $2
	RETURNING id
)
SELECT EXISTS (SELECT 1 FROM users WHERE email = $1), EXISTS (SELECT 1 FROM updated)
`

func (r *UserRepo) UpdateRefreshToken(ctx context.Context, email string, expected string, next string) error {
	var found, updated bool

	rows, _ := r.DB.Query(ctx, updateRefreshToken, email, expected, next)
	_, err := pgx.CollectOneRow(rows, func(row pgx.CollectableRow) (struct{}, error) {
		return struct{}{}, row.Scan(&found, &updated)
	})

	switch {
	case err != nil:
		return fmt.Errorf("db error: %w", err)
	case !found:
		return apperrors.ErrUserNotFound
	case !updated:
		return apperrors.ErrRefreshTokenConflict
	default:
		return nil
	}
}

const clearRefreshToken = `-- name: ClearRefreshToken
UPDATE users SET refresh_token = '', updated_at = now()
WHERE email = $1
`

func (r *UserRepo) ClearRefreshToken(ctx context.Context, email string) error {
	tag, err := r.DB.Exec(ctx, clearRefreshToken, email)
	switch {
	case err != nil:
		return fmt.Errorf("db error: %w", err)
	case tag.RowsAffected() == 0:
		return apperrors.ErrUserNotFound
	default:
		return nil
	}
}

func collectUser(rows pgx.Rows) (models.User, error) {
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.CreatedAt, &u.UpdatedAt,
		&u.FirstName, &u.LastName, &u.UserName, &u.Age,
		&u.Email, &u.HashedPassword, &u.RefreshToken,
	)
	return u, err
}
