// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxkey holds the keys Tubely stores request-scoped values under.
package ctxkey

// Key is the type of every context key set by Tubely.
type Key uint8

const (
	// KeyRequestID holds the X-Request-ID of the current request.
	KeyRequestID Key = iota + 1
	// KeyIdentity holds the *sec.Identity of the authenticated caller.
	KeyIdentity
	// KeyAuthError holds why presented credentials were rejected.
	KeyAuthError
	// KeyLogger holds the request-scoped *slog.Logger.
	KeyLogger
)

var names = [...]string{
	KeyRequestID: "request_id",
	KeyIdentity:  "identity",
	KeyAuthError: "auth_error",
	KeyLogger:    "logger",
}

// String names the key in debug output.
func (key Key) String() string {
	if int(key) < len(names) && names[key] != "" {
		return names[key]
	}
	return "unknown"
}
