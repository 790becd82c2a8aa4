// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tweet

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/taibuivan/tubely/internal/platform/apperr"
	"github.com/taibuivan/tubely/internal/platform/ident"
	"github.com/taibuivan/tubely/internal/platform/validate"
	"github.com/taibuivan/tubely/pkg/pagination"
	"github.com/taibuivan/tubely/pkg/textnorm"
)

// Service implements tweet use cases.
type Service struct {
	repository Repository
	users      UserLookup
	policy     *bluemonday.Policy
	logger     *slog.Logger
}

// NewService constructs a new [Service].
func NewService(repository Repository, users UserLookup, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		users:      users,
		policy:     bluemonday.StrictPolicy(),
		logger:     logger,
	}
}

// sanitize strips every tag, collapses whitespace and enforces the length bound.
// The stored text keeps the policy's entity escaping; the bound applies to the
// visible characters.
func (service *Service) sanitize(content, missing string) (string, error) {
	clean := textnorm.Display(service.policy.Sanitize(content))

	if clean == "" {
		return "", apperr.BadRequest(missing)
	}

	check := (&validate.Validator{}).MaxLen("content", html.UnescapeString(clean), MaxContentLength)
	if check.HasErrors() {
		return "", apperr.ValidationError(MsgContentTooLong, apperr.As(check.Err()).Details...)
	}
	return clean, nil
}

// # Commands

/*
Create posts a new tweet for ownerID.

Parameters:
  - context: context.Context
  - ownerID: string (authenticated caller)
  - content: string (raw input)

Returns:
  - *Tweet: The stored tweet
  - error: BadRequest on empty content, ValidationError when too long
*/
func (service *Service) Create(context context.Context, ownerID, content string) (*Tweet, error) {
	clean, err := service.sanitize(content, MsgContentRequired)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	tweet := &Tweet{
		ID:        ident.New(),
		Owner:     ownerID,
		Content:   clean,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := service.repository.Create(context, tweet); err != nil {
		return nil, fmt.Errorf("tweet_service_create_failed: %w", err)
	}

	service.logger.InfoContext(context, "tweet_posted",
		slog.String("tweet_id", tweet.ID),
		slog.String("owner_id", ownerID),
	)
	return tweet, nil
}

/*
Update replaces the content of a tweet owned by ownerID.

Returns:
  - *Tweet: The updated tweet
  - error: BadRequest, NotFound, Forbidden for non-owners
*/
func (service *Service) Update(context context.Context, ownerID, tweetID, content string) (*Tweet, error) {
	if strings.TrimSpace(tweetID) == "" || strings.TrimSpace(content) == "" {
		return nil, apperr.BadRequest(MsgIDContentRequired)
	}

	tweet, err := service.owned(context, ownerID, tweetID)
	if err != nil {
		return nil, err
	}

	clean, err := service.sanitize(content, MsgIDContentRequired)
	if err != nil {
		return nil, err
	}

	tweet.Content = clean
	tweet.UpdatedAt = time.Now().UTC()

	if err := service.repository.Update(context, tweet); err != nil {
		return nil, fmt.Errorf("tweet_service_update_failed: %w", err)
	}

	service.logger.InfoContext(context, "tweet_updated", slog.String("tweet_id", tweet.ID))
	return tweet, nil
}

// Delete removes a tweet owned by ownerID.
func (service *Service) Delete(context context.Context, ownerID, tweetID string) error {
	if strings.TrimSpace(tweetID) == "" {
		return apperr.BadRequest(MsgTweetIDRequired)
	}

	if _, err := service.owned(context, ownerID, tweetID); err != nil {
		return err
	}

	if err := service.repository.Delete(context, tweetID); err != nil {
		return fmt.Errorf("tweet_service_delete_failed: %w", err)
	}

	service.logger.InfoContext(context, "tweet_deleted", slog.String("tweet_id", tweetID))
	return nil
}

// owned loads tweetID and checks that ownerID wrote it.
func (service *Service) owned(context context.Context, ownerID, tweetID string) (*Tweet, error) {
	if !ident.Valid(tweetID) {
		return nil, apperr.BadRequest(MsgInvalidTweetID)
	}

	tweet, err := service.repository.FindByID(context, tweetID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound(MsgTweetNotFound)
		}
		return nil, fmt.Errorf("tweet_service_lookup_failed: %w", err)
	}

	if tweet.Owner != ownerID {
		return nil, apperr.Forbidden(MsgNotOwner)
	}
	return tweet, nil
}

// # Queries

/*
ListByUser returns one page of the tweets written by username.

Parameters:
  - context: context.Context
  - username: string
  - page: pagination.Params

Returns:
  - []*Tweet: The page, newest first
  - int: Total number of the user's tweets
  - error: BadRequest, NotFound when the user does not exist
*/
func (service *Service) ListByUser(context context.Context, username string, page pagination.Params) ([]*Tweet, int, error) {
	username = textnorm.Username(username)
	if username == "" {
		return nil, 0, apperr.BadRequest(MsgUsernameRequired)
	}

	owner, err := service.users.FindByUsername(context, username)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, 0, apperr.NotFound(MsgUserNotFound)
		}
		return nil, 0, fmt.Errorf("tweet_service_owner_lookup_failed: %w", err)
	}

	tweets, total, err := service.repository.ListByOwner(context, owner.ID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("tweet_service_list_failed: %w", err)
	}

	if tweets == nil {
		tweets = []*Tweet{}
	}
	return tweets, total, nil
}
