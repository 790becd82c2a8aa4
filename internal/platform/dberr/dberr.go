// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
//
// Both persistence engines are covered: MongoDB driver errors and pgx/PostgreSQL
// errors classify into the same [apperr] codes, so repositories stay backend-neutral
// from the service layer's point of view.
package dberr

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taibuivan/tubely/internal/platform/apperr"
)

// SQLSTATE codes inspected by [Wrap].
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
//
// # Parameters
//   - err: The raw driver error (nil passes through).
//   - notFound: The client-facing message used when the row or document does not exist.
func Wrap(err error, notFound string) error {
	if err == nil {
		return nil
	}

	// Already classified upstream.
	if ae := apperr.As(err); ae != nil {
		return ae
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound(notFound)
	}

	// 2. Uniqueness violations
	if IsDuplicate(err) {
		return apperr.Conflict("Resource already exists")
	}

	// 3. Dangling references behave like a missing parent
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return apperr.NotFound(notFound)
	}

	// 4. Unknown query errors become Internal Server Errors
	return apperr.Internal(err)
}

// IsDuplicate reports whether err is a unique-key violation on either backend.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}

	if mongo.IsDuplicateKeyError(err) {
		return true
	}

	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// IsNoRows reports whether err signals an empty result on either backend.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, mongo.ErrNoDocuments)
}
