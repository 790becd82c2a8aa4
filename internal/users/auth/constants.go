// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// # Field Identifiers

// Form and JSON field names of the account endpoints.
const (
	FieldUsername     = "username"
	FieldEmail        = "email"
	FieldFullname     = "fullname"
	FieldPassword     = "password"
	FieldAvatar       = "avatar"
	FieldCoverImage   = "coverImage"
	FieldRefreshToken = "refreshToken"
	FieldAccessToken  = "accessToken"
	FieldUser         = "user"
)

// # User-facing Messages

const (
	MsgUserExists         = "user already exists."
	MsgAvatarRequired     = "Avatar is required"
	MsgAvatarUploadFailed = "Avatar file is required."
	MsgUserNotFound       = "User not found"
	MsgUserDoesNotExist   = "User does not exist"
	MsgInvalidCredentials = "Invalid user credentials"
	MsgLoginIdentifier    = "username or email is required"
	MsgInvalidOldPassword = "Invalid old password"
	MsgUnauthorized       = "Unauthorized request."
	MsgInvalidAccess      = "Invalid access token."
	MsgInvalidRefresh     = "Invalid refresh token"
)
