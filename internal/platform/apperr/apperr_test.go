// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/tubely/internal/platform/apperr"
)

/*
TestConstructors_StatusMapping verifies every constructor maps to its HTTP status.
*/
func TestConstructors_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    *apperr.AppError
		status int
		code   string
	}{
		{"bad_request", apperr.BadRequest("x"), http.StatusBadRequest, apperr.CodeBadRequest},
		{"validation", apperr.ValidationError("x"), http.StatusBadRequest, apperr.CodeValidation},
		{"unauthorized", apperr.Unauthorized("x"), http.StatusUnauthorized, apperr.CodeUnauthorized},
		{"invalid_credential", apperr.InvalidCredential("x", nil), http.StatusUnauthorized, apperr.CodeInvalidCredential},
		{"reused", apperr.SessionExpiredOrReused(), http.StatusUnauthorized, apperr.CodeSessionExpiredOrReused},
		{"forbidden", apperr.Forbidden("x"), http.StatusForbidden, apperr.CodeForbidden},
		{"not_found", apperr.NotFound("x"), http.StatusNotFound, apperr.CodeNotFound},
		{"conflict", apperr.Conflict("x"), http.StatusConflict, apperr.CodeConflict},
		{"rate_limited", apperr.RateLimited(5), http.StatusTooManyRequests, apperr.CodeRateLimited},
		{"internal", apperr.Internal(errors.New("boom")), http.StatusInternalServerError, apperr.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.Equal(t, tt.code, tt.err.Code)
		})
	}
}

/*
TestAs_TraversesWrappedChain verifies that wrapped AppErrors are recovered.
*/
func TestAs_TraversesWrappedChain(t *testing.T) {
	wrapped := fmt.Errorf("service_failed: %w", apperr.NotFound("User not found"))

	ae := apperr.As(wrapped)
	require.NotNil(t, ae)
	assert.Equal(t, "User not found", ae.Message)
	assert.True(t, apperr.IsNotFound(wrapped))
	assert.False(t, apperr.IsConflict(wrapped))
	assert.Nil(t, apperr.As(errors.New("plain")))
}

/*
TestIs_MatchesByCode verifies sentinel comparison through errors.Is.
*/
func TestIs_MatchesByCode(t *testing.T) {
	err := fmt.Errorf("refresh: %w", apperr.SessionExpiredOrReused())

	assert.ErrorIs(t, err, apperr.SessionExpiredOrReused())
	assert.NotErrorIs(t, err, apperr.Unauthorized("x"))
}

/*
TestInternal_HidesCause verifies the client message never leaks the cause.
*/
func TestInternal_HidesCause(t *testing.T) {
	cause := errors.New("mongo: connection refused")
	err := apperr.Internal(cause)

	assert.NotContains(t, err.Error(), "mongo")
	assert.ErrorIs(t, err, cause)
}
