// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/tubely/internal/platform/apperr"
	"github.com/taibuivan/tubely/internal/platform/database/schema"
	"github.com/taibuivan/tubely/internal/platform/dberr"
)

// # User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
//
// Storage-specific errors (like pgx.ErrNoRows or SQLSTATE 23505) are mapped to
// domain-friendly [apperr.AppError] types through [dberr.Wrap].
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// selectUser is the projection shared by every lookup. The refresh token is
// nullable, so it is coalesced to an empty string.
var selectUser = fmt.Sprintf(`SELECT %s, %s, %s, %s, %s, %s, %s, COALESCE(%s, ''), %s, %s FROM %s`,
	schema.User.ID, schema.User.Username, schema.User.Email, schema.User.Fullname,
	schema.User.Avatar, schema.User.CoverImage, schema.User.PasswordHash,
	schema.User.RefreshToken, schema.User.CreatedAt, schema.User.UpdatedAt,
	schema.User.Table,
)

func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Fullname,
		&user.Avatar,
		&user.CoverImage,
		&user.PasswordHash,
		&user.RefreshToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, MsgUserNotFound)
	}
	return user, nil
}

// FindByID retrieves a user record by its primary key.
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	query := selectUser + fmt.Sprintf(` WHERE %s = $1`, schema.User.ID)
	return scanUser(repository.pool.QueryRow(context, query, id))
}

// FindByUsername retrieves a user record by its unique username.
func (repository *PostgresUserRepository) FindByUsername(context context.Context, username string) (*User, error) {
	query := selectUser + fmt.Sprintf(` WHERE %s = $1`, schema.User.Username)
	return scanUser(repository.pool.QueryRow(context, query, username))
}

// FindByEmail retrieves a user record by its unique email address.
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	query := selectUser + fmt.Sprintf(` WHERE %s = $1`, schema.User.Email)
	return scanUser(repository.pool.QueryRow(context, query, email))
}

// FindByUsernameOrEmail retrieves the first record matching either identifier.
func (repository *PostgresUserRepository) FindByUsernameOrEmail(context context.Context, username, email string) (*User, error) {
	if username == "" && email == "" {
		return nil, apperr.NotFound(MsgUserNotFound)
	}

	// Empty parameters never match because both columns are NOT NULL and non-empty.
	query := selectUser + fmt.Sprintf(` WHERE (%s = $1 AND $1 <> '') OR (%s = $2 AND $2 <> '') LIMIT 1`,
		schema.User.Username, schema.User.Email)
	return scanUser(repository.pool.QueryRow(context, query, username, email))
}

/*
Create persists a new user record into the users table.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: apperr.Conflict on a unique violation, or connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		schema.User.Table,
		schema.User.ID, schema.User.Username, schema.User.Email, schema.User.Fullname,
		schema.User.Avatar, schema.User.CoverImage, schema.User.PasswordHash,
		schema.User.CreatedAt, schema.User.UpdatedAt,
	)

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.Username,
		user.Email,
		user.Fullname,
		user.Avatar,
		user.CoverImage,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, MsgUserNotFound)
	}

	return nil
}

// UpdateDetails writes the provided fields; a nil argument keeps the column.
func (repository *PostgresUserRepository) UpdateDetails(context context.Context, userID string, fullname, email *string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = COALESCE($2, %s), %s = COALESCE($3, %s), %s = $4 WHERE %s = $1`,
		schema.User.Table,
		schema.User.Fullname, schema.User.Fullname,
		schema.User.Email, schema.User.Email,
		schema.User.UpdatedAt, schema.User.ID)
	return repository.execOne(context, query, userID, fullname, email, time.Now().UTC())
}

// SwapImage replaces one image URL with a conditional UPDATE.
func (repository *PostgresUserRepository) SwapImage(context context.Context, userID string, field ImageField, previous, next string) (bool, error) {
	column := schema.User.Avatar
	if field == ImageCover {
		column = schema.User.CoverImage
	}

	query := fmt.Sprintf(`UPDATE %s SET %s = $3, %s = $4 WHERE %s = $1 AND COALESCE(%s, '') = $2`,
		schema.User.Table, column, schema.User.UpdatedAt, schema.User.ID, column)

	tag, err := repository.pool.Exec(context, query, userID, previous, next, time.Now().UTC())
	if err != nil {
		return false, dberr.Wrap(err, MsgUserNotFound)
	}
	return tag.RowsAffected() == 1, nil
}

// UpdatePassword updates only the password hash for a specific user.
func (repository *PostgresUserRepository) UpdatePassword(context context.Context, userID, newHash string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3 WHERE %s = $1`,
		schema.User.Table, schema.User.PasswordHash, schema.User.UpdatedAt, schema.User.ID)
	return repository.execOne(context, query, userID, newHash, time.Now().UTC())
}

// SetRefreshToken stores the account's live refresh token.
func (repository *PostgresUserRepository) SetRefreshToken(context context.Context, userID, token string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2 WHERE %s = $1`,
		schema.User.Table, schema.User.RefreshToken, schema.User.ID)
	return repository.execOne(context, query, userID, token)
}

// SwapRefreshToken rotates the refresh token with a conditional UPDATE.
func (repository *PostgresUserRepository) SwapRefreshToken(context context.Context, userID, presented, next string) (bool, error) {
	if presented == "" {
		return false, nil
	}

	query := fmt.Sprintf(`UPDATE %s SET %s = $3 WHERE %s = $1 AND %s = $2`,
		schema.User.Table, schema.User.RefreshToken, schema.User.ID, schema.User.RefreshToken)

	tag, err := repository.pool.Exec(context, query, userID, presented, next)
	if err != nil {
		return false, dberr.Wrap(err, MsgUserNotFound)
	}
	return tag.RowsAffected() == 1, nil
}

// ClearRefreshToken nulls the stored refresh token.
func (repository *PostgresUserRepository) ClearRefreshToken(context context.Context, userID string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = NULL WHERE %s = $1`,
		schema.User.Table, schema.User.RefreshToken, schema.User.ID)
	return repository.execOne(context, query, userID)
}

// execOne runs a single-row statement and reports a missing row as NOT_FOUND.
func (repository *PostgresUserRepository) execOne(context context.Context, query string, args ...any) error {
	tag, err := repository.pool.Exec(context, query, args...)
	if err != nil {
		return dberr.Wrap(err, MsgUserNotFound)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(MsgUserNotFound)
	}
	return nil
}
