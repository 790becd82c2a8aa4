// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the user identity and session management layer.

It defines the User entity and the session lifecycle: registration, login
(Issue), access-token resolution (Authenticate), refresh-token rotation
(Refresh) and logout (Revoke).

# Architecture

Each account holds at most one live refresh token. Rotation replaces it with a
compare-and-swap on the stored value, so a consumed token can never be honored
twice, and logout clears it unconditionally.
*/
package auth

import (
	"time"

	"github.com/taibuivan/tubely/internal/platform/sec"
)

// # Domain Entities

// User represents a registered member of the Tubely platform.
type User struct {
	ID           string    `json:"_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Fullname     string    `json:"fullname"`
	Avatar       string    `json:"avatar"`
	CoverImage   string    `json:"coverImage"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	RefreshToken string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ImageField names one of the two profile images.
type ImageField string

const (
	ImageAvatar ImageField = "avatar"
	ImageCover  ImageField = "coverImage"
)

// Identity projects the user onto the principal attached to requests.
func (user *User) Identity() sec.Identity {
	return sec.Identity{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		Fullname:   user.Fullname,
		Avatar:     user.Avatar,
		CoverImage: user.CoverImage,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
	}
}

// Session is the result of a successful Issue or Refresh.
type Session struct {
	User                  *User
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
}
