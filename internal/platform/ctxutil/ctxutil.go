// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil stores and reads request-scoped values: the request ID, the
// request logger, and the caller identity set by the authentication middleware.
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/tubely/internal/platform/ctxkey"
	"github.com/taibuivan/tubely/internal/platform/sec"
)

func lookup[T any](ctx context.Context, key ctxkey.Key) (T, bool) {
	value, ok := ctx.Value(key).(T)
	return value, ok
}

// WithRequestID attaches the correlation ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID is empty outside the RequestID middleware.
func GetRequestID(ctx context.Context) string {
	id, _ := lookup[string](ctx, ctxkey.KeyRequestID)
	return id
}

// WithLogger attaches a request logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger falls back to [slog.Default].
func GetLogger(ctx context.Context) *slog.Logger {
	if logger, ok := lookup[*slog.Logger](ctx, ctxkey.KeyLogger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// WithIdentity marks the request as authenticated.
func WithIdentity(ctx context.Context, identity *sec.Identity) context.Context {
	return context.WithValue(ctx, ctxkey.KeyIdentity, identity)
}

// GetIdentity is nil for anonymous requests.
func GetIdentity(ctx context.Context) *sec.Identity {
	identity, _ := lookup[*sec.Identity](ctx, ctxkey.KeyIdentity)
	return identity
}

// WithAuthError records why presented credentials were rejected, so routes
// that require a session can report it.
func WithAuthError(ctx context.Context, err error) context.Context {
	return context.WithValue(ctx, ctxkey.KeyAuthError, err)
}

// GetAuthError returns what [WithAuthError] stored, if anything.
func GetAuthError(ctx context.Context) error {
	err, _ := lookup[error](ctx, ctxkey.KeyAuthError)
	return err
}
