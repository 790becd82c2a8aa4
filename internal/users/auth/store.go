// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
//
// Implementations enforce uniqueness of username and email, and report a
// missing account as apperr NOT_FOUND.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByUsername returns the account with the given (normalized) username.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByUsername(context context.Context, username string) (*User, error)

	/*
		FindByEmail returns the account with the given (normalized) email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		FindByUsernameOrEmail returns the first account matching either value.
		Empty arguments are ignored.

		Parameters:
		  - context: context.Context
		  - username: string
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByUsernameOrEmail(context context.Context, username, email string) (*User, error)

	/*
		Create persists a brand-new user account to the storage.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: apperr.Conflict on a duplicate username or email
	*/
	Create(context context.Context, user *User) error

	/*
		UpdateDetails writes the non-nil fields among fullname and email.
		Images are left untouched.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - fullname: *string
		  - email: *string

		Returns:
		  - error: apperr.NotFound, apperr.Conflict or persistence failures
	*/
	UpdateDetails(context context.Context, userID string, fullname, email *string) error

	/*
		SwapImage sets field to next only if it still holds previous (an empty
		previous matches an unset image). The check and the write are one
		atomic operation.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - field: ImageField
		  - previous: string
		  - next: string

		Returns:
		  - bool: true when the swap happened
		  - error: Persistence failures
	*/
	SwapImage(context context.Context, userID string, field ImageField, previous, next string) (bool, error)

	/*
		UpdatePassword replaces only the user's password hash.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - newHash: string

		Returns:
		  - error: Persistence failures
	*/
	UpdatePassword(context context.Context, userID, newHash string) error

	/*
		SetRefreshToken stores token as the account's single live refresh token,
		replacing any prior value.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - token: string

		Returns:
		  - error: Persistence failures
	*/
	SetRefreshToken(context context.Context, userID, token string) error

	/*
		SwapRefreshToken replaces the stored refresh token with next only if it
		still equals presented. The check and the write are one atomic operation.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - presented: string
		  - next: string

		Returns:
		  - bool: true when the swap happened
		  - error: Persistence failures
	*/
	SwapRefreshToken(context context.Context, userID, presented, next string) (bool, error)

	/*
		ClearRefreshToken removes the stored refresh token unconditionally.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	ClearRefreshToken(context context.Context, userID string) error
}
