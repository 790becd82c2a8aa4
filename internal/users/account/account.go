// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account handles profile management for the authenticated user.

It lets a member read their own profile, change the fullname and email, and
replace the avatar or cover image.

# Architecture

  - Domain: This package depends on the auth package for the User entity.
  - Storage: Any auth.UserRepository satisfies [Repository].
  - Media: A replaced image is removed from the [media.Host] only after the
    conditional write that swapped it out matched.
*/
package account

import (
	"context"

	"github.com/taibuivan/tubely/internal/users/auth"
)

// # Repository Contracts

// Repository defines the persistence contract for account profiles.
type Repository interface {
	/*
		FindByID retrieves a user record by their unique ID.

		Parameters:
		  - context: context.Context
		  - id: string (ObjectID hex)

		Returns:
		  - *User: Loaded account entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*auth.User, error)

	// FindByEmail retrieves a user record by its normalized email.
	FindByEmail(context context.Context, email string) (*auth.User, error)

	// UpdateDetails writes the non-nil fields among fullname and email.
	UpdateDetails(context context.Context, userID string, fullname, email *string) error

	/*
		SwapImage points field at next only while it still holds previous.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - field: auth.ImageField
		  - previous: string (Empty when no image was set)
		  - next: string

		Returns:
		  - bool: false when another request replaced the image first
		  - error: Storage failures
	*/
	SwapImage(context context.Context, userID string, field auth.ImageField, previous, next string) (bool, error)
}

// # User-facing Messages

const (
	MsgCurrentUser        = "Current user fetched successfully"
	MsgAccountUpdated     = "Account details updated successfully"
	MsgAvatarUpdated      = "Avatar image updated successfully"
	MsgCoverUpdated       = "Cover image updated successfully"
	MsgNothingToUpdate    = "At least one of fullname or email is required"
	MsgEmailTaken         = "Email is already in use"
	MsgAvatarMissing      = "Avatar file is missing"
	MsgCoverMissing       = "Cover image file is missing"
	MsgAvatarUploadFailed = "Error while uploading avatar"
	MsgCoverUploadFailed  = "Error while uploading cover image"
	MsgImageChanged       = "Image changed concurrently, please retry"
)
