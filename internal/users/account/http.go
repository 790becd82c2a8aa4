// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/tubely/internal/platform/apperr"
	"github.com/taibuivan/tubely/internal/platform/constants"
	"github.com/taibuivan/tubely/internal/platform/media"
	"github.com/taibuivan/tubely/internal/platform/middleware"
	requestutil "github.com/taibuivan/tubely/internal/platform/request"
	"github.com/taibuivan/tubely/internal/platform/respond"
	"github.com/taibuivan/tubely/internal/users/auth"
	"github.com/taibuivan/tubely/pkg/pointer"
)

// Handler implements the HTTP layer for user account management.
//
// # Security
//
// All endpoints require an active authentication session provided by the
// RequireAuth middleware.
type Handler struct {
	accountService *Service
	uploadTempDir  string
}

// NewHandler constructs a new account [Handler]. Multipart files are spooled into uploadTempDir.
func NewHandler(service *Service, uploadTempDir string) *Handler {
	return &Handler{accountService: service, uploadTempDir: uploadTempDir}
}

// RegisterRoutes mounts the account endpoints on the /users router.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/current-user", handler.currentUser)
		r.Patch("/update-account", handler.updateAccount)
		r.Patch("/change-avatar", handler.changeAvatar)
		r.Patch("/cover-image", handler.changeCoverImage)
	})
}

// # User Profile Endpoints

/*
GET /api/v1/users/current-user.

Description: Retrieves the full private profile of the authenticated user.

Response:
  - 200: User: Fully hydrated user profile
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) currentUser(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.GetCurrentUser(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, MsgCurrentUser, user)
}

// updateAccountRequest defines the expected JSON payload for profile updates.
// Empty fields are treated as absent.
type updateAccountRequest struct {
	Fullname string `json:"fullname" validate:"omitempty,max=100"`
	Email    string `json:"email"    validate:"omitempty,email"`
}

/*
PATCH /api/v1/users/update-account.

Description: Applies partial updates to the authenticated user's profile.

Request:
  - body: updateAccountRequest (Partial JSON)

Response:
  - 200: User: The updated profile
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 409: Email belongs to another account
*/
func (handler *Handler) updateAccount(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateAccountRequest
	if err := requestutil.DecodeAndValidate(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.UpdateAccount(request.Context(), userID, UpdateAccountInput{
		Fullname: pointer.NonZero(input.Fullname),
		Email:    pointer.NonZero(input.Email),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, MsgAccountUpdated, user)
}

// # Image Endpoints

/*
PATCH /api/v1/users/change-avatar.

Request:
  - body: multipart form with an "avatar" file

Response:
  - 200: User: Profile with the new avatar URL
  - 400: Missing, non-image or failed upload
*/
func (handler *Handler) changeAvatar(writer http.ResponseWriter, request *http.Request) {
	handler.replaceImage(writer, request, auth.FieldAvatar, handler.accountService.UpdateAvatar, MsgAvatarUpdated)
}

/*
PATCH /api/v1/users/cover-image.

Request:
  - body: multipart form with a "coverImage" file

Response:
  - 200: User: Profile with the new cover image URL
  - 400: Missing, non-image or failed upload
*/
func (handler *Handler) changeCoverImage(writer http.ResponseWriter, request *http.Request) {
	handler.replaceImage(writer, request, auth.FieldCoverImage, handler.accountService.UpdateCoverImage, MsgCoverUpdated)
}

type replaceFunc func(ctx context.Context, userID, localPath string) (*auth.User, error)

func (handler *Handler) replaceImage(writer http.ResponseWriter, request *http.Request, field string, replace replaceFunc, message string) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	request.Body = http.MaxBytesReader(writer, request.Body, constants.MaxMultipartBytes)
	if err := request.ParseMultipartForm(constants.MultipartMemoryBytes); err != nil {
		respond.Error(writer, request, apperr.BadRequest("Invalid multipart payload"))
		return
	}
	defer func() { _ = request.MultipartForm.RemoveAll() }()

	localPath, err := media.SpoolFormFile(request, field, handler.uploadTempDir)
	switch {
	case errors.Is(err, media.ErrNoFile):
		localPath = ""
	case errors.Is(err, media.ErrNotImage):
		respond.Error(writer, request, apperr.ValidationError(field+" must be an image",
			apperr.FieldError{Field: field, Message: "must be an image"}))
		return
	case err != nil:
		respond.Error(writer, request, apperr.Internal(err))
		return
	}

	user, err := replace(request.Context(), userID, localPath)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, message, user)
}
