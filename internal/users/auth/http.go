// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/tubely/internal/platform/apperr"
	"github.com/taibuivan/tubely/internal/platform/constants"
	"github.com/taibuivan/tubely/internal/platform/media"
	"github.com/taibuivan/tubely/internal/platform/middleware"
	requestutil "github.com/taibuivan/tubely/internal/platform/request"
	"github.com/taibuivan/tubely/internal/platform/respond"
	"github.com/taibuivan/tubely/internal/platform/validate"
)

// # Definitions & Constructors

// HandlerConfig carries the transport settings of the account entry points.
type HandlerConfig struct {
	// CookieSecure marks session cookies Secure (HTTPS only).
	CookieSecure bool

	// AccessTTL bounds the lifetime of the accessToken cookie.
	AccessTTL time.Duration

	// UploadTempDir receives spooled multipart files before upload.
	UploadTempDir string

	// Throttle guards register, login and refresh-token. Nil disables it.
	Throttle func(http.Handler) http.Handler
}

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// This handler manages the user lifecycle entry points
// (Registration, Login, Logout, Refresh, Password change).
type Handler struct {
	authService *Service
	config      HandlerConfig
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service, config HandlerConfig) *Handler {
	return &Handler{authService: service, config: config}
}

// RegisterRoutes mounts the session endpoints on the /users router.
//
// # Endpoints
//   - POST /register        : Creates a new account (multipart).
//   - POST /login           : Issues a session.
//   - POST /refresh-token   : Rotates the session.
//   - POST /logout          : Revokes the session (auth).
//   - POST /change-password : Replaces the password (auth).
func (handler *Handler) RegisterRoutes(router chi.Router) {
	throttle := handler.config.Throttle
	if throttle == nil {
		throttle = func(next http.Handler) http.Handler { return next }
	}

	// Public endpoints
	router.Group(func(r chi.Router) {
		r.Use(throttle)
		r.Post("/register", handler.register)
		r.Post("/login", handler.login)
		r.Post("/refresh-token", handler.refresh)
	})

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/logout", handler.logout)
		r.Post("/change-password", handler.changePassword)
	})
}

// # Request Payloads

type registerRequest struct {
	Fullname string `form:"fullname" validate:"notblank"`
	Email    string `form:"email"    validate:"notblank,email"`
	Username string `form:"username" validate:"notblank"`
	Password string `form:"password" validate:"notblank,min=8"`
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"    validate:"omitempty,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

type loginResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

/*
Register handles the creation of a new user account.

POST /api/v1/users/register

Request:
  - Body: multipart form (fullname, email, username, password, avatar, coverImage?)

Response:
  - 201: User: Created user profile (no password, no refresh token)
  - 400: Validation failure, missing or non-image avatar
  - 409: Username or Email already exists
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	request.Body = http.MaxBytesReader(writer, request.Body, constants.MaxMultipartBytes)
	if err := request.ParseMultipartForm(constants.MultipartMemoryBytes); err != nil {
		respond.Error(writer, request, apperr.BadRequest("Invalid multipart payload"))
		return
	}
	defer func() { _ = request.MultipartForm.RemoveAll() }()

	input := registerRequest{
		Fullname: request.FormValue(FieldFullname),
		Email:    request.FormValue(FieldEmail),
		Username: request.FormValue(FieldUsername),
		Password: request.FormValue(FieldPassword),
	}
	if err := validate.Struct(&input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	avatarPath, err := handler.spool(request, FieldAvatar)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	coverPath, err := handler.spool(request, FieldCoverImage)
	if err != nil {
		media.Discard(avatarPath)
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Register(request.Context(), RegisterInput{
		Fullname:       input.Fullname,
		Email:          input.Email,
		Username:       input.Username,
		Password:       input.Password,
		AvatarPath:     avatarPath,
		CoverImagePath: coverPath,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, "user created successfully", user)
}

// spool copies an optional image part to the temp dir. A missing part yields "".
func (handler *Handler) spool(request *http.Request, field string) (string, error) {
	spooled, err := media.SpoolFormFile(request, field, handler.config.UploadTempDir)
	switch {
	case err == nil:
		return spooled, nil
	case errors.Is(err, media.ErrNoFile):
		return "", nil
	case errors.Is(err, media.ErrNotImage):
		return "", apperr.ValidationError(field+" must be an image", apperr.FieldError{Field: field, Message: "must be an image"})
	default:
		return "", apperr.Internal(err)
	}
}

/*
Login authenticates a user and establishes a session.

POST /api/v1/users/login

Request:
  - Body: loginRequest (Username or Email, Password)

Response:
  - 200: {user, accessToken, refreshToken} plus both session cookies
  - 401: Invalid credentials
  - 404: User does not exist
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeAndValidate(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookies(writer, session)
	respond.OK(writer, "User logged in successfully", loginResponse{
		User:         session.User,
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
	})
}

/*
Logout terminates the current user session.

POST /api/v1/users/logout

Response:
  - 200: Session revoked and both cookies cleared
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.Revoke(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.clearSessionCookies(writer)
	respond.OK(writer, "User logged out", struct{}{})
}

/*
Refresh rotates the session.

POST /api/v1/users/refresh-token

Request:
  - Cookie: refreshToken, or Body: refreshRequest

Response:
  - 200: {accessToken, refreshToken} plus both session cookies
  - 401: Missing, invalid, expired or already used refresh token
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	presented := requestutil.CookieValue(request, constants.RefreshTokenCookieName)

	if presented == "" {
		var input refreshRequest
		if err := requestutil.DecodeJSON(writer, request, &input); err != nil && request.ContentLength > 0 {
			respond.Error(writer, request, err)
			return
		}
		presented = input.RefreshToken
	}

	session, err := handler.authService.Refresh(request.Context(), presented)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookies(writer, session)
	respond.OK(writer, "Access token refreshed", refreshResponse{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
	})
}

/*
ChangePassword updates the authenticated user's password.

POST /api/v1/users/change-password

Request:
  - Body: changePasswordRequest (OldPassword, NewPassword)

Response:
  - 200: Password changed
  - 400: Invalid old password or validation failure
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeAndValidate(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ChangePassword(request.Context(), userID, input.OldPassword, input.NewPassword); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Password changed successfully", struct{}{})
}

// # Cookies

func (handler *Handler) setSessionCookies(writer http.ResponseWriter, session *Session) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.AccessTokenCookieName,
		Value:    session.AccessToken,
		Path:     constants.CookiePath,
		MaxAge:   int(handler.config.AccessTTL / time.Second),
		Secure:   handler.config.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    session.RefreshToken,
		Path:     constants.CookiePath,
		Expires:  session.RefreshTokenExpiresAt,
		Secure:   handler.config.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (handler *Handler) clearSessionCookies(writer http.ResponseWriter) {
	for _, name := range []string{constants.AccessTokenCookieName, constants.RefreshTokenCookieName} {
		http.SetCookie(writer, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     constants.CookiePath,
			MaxAge:   -1,
			Secure:   handler.config.CookieSecure,
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})
	}
}
