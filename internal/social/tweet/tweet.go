// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package tweet implements short text posts owned by a member.
//
// Content is stripped of markup and bounded to [MaxContentLength] characters
// before it is stored. Only the owner may edit or delete a tweet.
package tweet

import (
	"context"
	"time"

	"github.com/taibuivan/tubely/internal/users/auth"
)

// MaxContentLength is the upper bound of a tweet, in characters.
const MaxContentLength = 280

// Tweet is a short post owned by a member.
type Tweet struct {
	ID        string    `json:"_id"`
	Owner     string    `json:"owner"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Repository defines the persistence contract for tweets.
type Repository interface {
	// Create persists a new tweet.
	Create(context context.Context, tweet *Tweet) error

	// FindByID returns the tweet or apperr.NotFound.
	FindByID(context context.Context, id string) (*Tweet, error)

	// ListByOwner returns one page of the owner's tweets, newest first, and the total count.
	ListByOwner(context context.Context, ownerID string, limit, offset int) ([]*Tweet, int, error)

	// Update persists the content and updatedAt of an existing tweet.
	Update(context context.Context, tweet *Tweet) error

	// Delete removes the tweet or returns apperr.NotFound.
	Delete(context context.Context, id string) error
}

// UserLookup resolves tweet authors by username. auth.UserRepository satisfies it.
type UserLookup interface {
	FindByUsername(context context.Context, username string) (*auth.User, error)
}

// # User-facing Messages

const (
	MsgTweetPosted       = "Tweet posted"
	MsgTweetUpdated      = "Tweet updated"
	MsgTweetDeleted      = "Tweet deleted"
	MsgUserTweets        = "User tweets"
	MsgContentRequired   = "Tweet content is required"
	MsgIDContentRequired = "Tweet id and content are required"
	MsgTweetIDRequired   = "Tweet id is required"
	MsgInvalidTweetID    = "Invalid tweet id"
	MsgTweetNotFound     = "Tweet not found"
	MsgUserNotFound      = "User not found"
	MsgNotOwner          = "You are not allowed to modify this tweet"
	MsgContentTooLong    = "Tweet content must be at most 280 characters"
	MsgUsernameRequired  = "Username is required"
)
