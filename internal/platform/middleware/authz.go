// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"net/http"

	"github.com/taibuivan/tubely/internal/platform/apperr"
	"github.com/taibuivan/tubely/internal/platform/constants"
	"github.com/taibuivan/tubely/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/tubely/internal/platform/request"
	"github.com/taibuivan/tubely/internal/platform/respond"
	"github.com/taibuivan/tubely/internal/platform/sec"
)

// Authenticator resolves an access token to the principal it was issued for.
//
// Defining it here decouples the middleware from the users service, so tests
// can inject a stub.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*sec.Identity, error)
}

// Authenticate reads the access token from the session cookie or the
// Authorization header and resolves it to an identity.
//
// # Flow
//  1. Take the 'accessToken' cookie, else 'Authorization: Bearer <token>'.
//  2. If absent, request proceeds as anonymous.
//  3. If present, resolve it through [Authenticator].
//  4. On success inject the [*sec.Identity]; on failure remember the error so
//     [RequireAuth] can report it, and proceed as anonymous.
//
// Public routes therefore never fail because of a stale cookie.
func Authenticate(authenticator Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Token Extraction ───────────────────────────────────────────
			token := requestutil.CookieValue(request, constants.AccessTokenCookieName)
			if token == "" {
				token = requestutil.BearerToken(request)
			}

			// ── 2. Anonymous Access ───────────────────────────────────────────
			if token == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 3. Token Resolution ───────────────────────────────────────────
			ctx := request.Context()
			identity, err := authenticator.Authenticate(ctx, token)
			if err != nil {
				ctxutil.GetLogger(ctx).DebugContext(ctx, "access_token_rejected", "error", err)
				next.ServeHTTP(writer, request.WithContext(ctxutil.WithAuthError(ctx, err)))
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			reportUser(ctx, identity.ID)
			next.ServeHTTP(writer, request.WithContext(ctxutil.WithIdentity(ctx, identity)))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
//
// # Flow
//  1. Check if [*sec.Identity] exists in context.
//  2. If a token was presented but rejected, abort with that error.
//  3. If no token was presented, abort with HTTP 401 "Unauthorized request.".
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx := request.Context()

		if ctxutil.GetIdentity(ctx) != nil {
			next.ServeHTTP(writer, request)
			return
		}

		if err := ctxutil.GetAuthError(ctx); err != nil {
			if apperr.As(err) == nil {
				err = apperr.InvalidCredential("Invalid access token.", err)
			}
			respond.Error(writer, request, err)
			return
		}

		respond.Error(writer, request, apperr.Unauthorized("Unauthorized request."))
	})
}
