// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package subscription

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/tubely/internal/platform/apperr"
	"github.com/taibuivan/tubely/internal/platform/ident"
	"github.com/taibuivan/tubely/pkg/textnorm"
)

// Service implements the relationship aggregator use cases.
type Service struct {
	repository Repository
	users      UserLookup
	logger     *slog.Logger
}

// NewService constructs a new [Service].
func NewService(repository Repository, users UserLookup, logger *slog.Logger) *Service {
	return &Service{repository: repository, users: users, logger: logger}
}

// # Toggle

/*
ToggleSubscription flips the edge from subscriberID to channelID.

Description: The existing edge is deleted first. When none existed a new one
is inserted. Both steps are single atomic writes, and the unique index on the
pair turns a racing duplicate insert into CONFLICT rather than a second edge.

Parameters:
  - context: context.Context
  - subscriberID: string (authenticated caller)
  - channelID: string

Returns:
  - *Toggle: Subscribed=false with the removed record, or true with the new one
  - error: BadRequest, NotFound, Conflict or storage failures
*/
func (service *Service) ToggleSubscription(context context.Context, subscriberID, channelID string) (*Toggle, error) {
	if err := checkID(channelID, MsgChannelIDRequired, MsgInvalidChannelID); err != nil {
		return nil, err
	}

	if channelID == subscriberID {
		return nil, apperr.BadRequest(MsgSelfSubscription)
	}

	if _, err := service.users.FindByID(context, channelID); err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound(MsgChannelNotFound)
		}
		return nil, fmt.Errorf("subscription_service_channel_lookup_failed: %w", err)
	}

	// 1. Unsubscribe when an edge exists
	removed, err := service.repository.Delete(context, subscriberID, channelID)
	if err == nil {
		service.logger.InfoContext(context, "subscription_toggled",
			slog.String("subscriber_id", subscriberID),
			slog.String("channel_id", channelID),
			slog.Bool("subscribed", false),
		)
		return &Toggle{Subscribed: false, Record: removed}, nil
	}
	if !apperr.IsNotFound(err) {
		return nil, fmt.Errorf("subscription_service_delete_failed: %w", err)
	}

	// 2. Otherwise subscribe
	now := time.Now().UTC()
	edge := &Subscription{
		ID:         ident.New(),
		Subscriber: subscriberID,
		Channel:    channelID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := service.repository.Create(context, edge); err != nil {
		switch {
		case apperr.IsConflict(err):
			return nil, apperr.Conflict(MsgConcurrentModification)
		case apperr.IsNotFound(err):
			return nil, apperr.NotFound(MsgChannelNotFound)
		}
		return nil, fmt.Errorf("subscription_service_create_failed: %w", err)
	}

	service.logger.InfoContext(context, "subscription_toggled",
		slog.String("subscriber_id", subscriberID),
		slog.String("channel_id", channelID),
		slog.Bool("subscribed", true),
	)
	return &Toggle{Subscribed: true, Record: edge}, nil
}

// # Listings

// ListSubscribers returns the members subscribed to channelID. An empty list is not an error.
func (service *Service) ListSubscribers(context context.Context, channelID string) ([]Member, error) {
	if err := checkID(channelID, MsgChannelIDRequired, MsgInvalidChannelID); err != nil {
		return nil, err
	}

	members, err := service.repository.ListSubscribers(context, channelID)
	if err != nil {
		return nil, fmt.Errorf("subscription_service_list_subscribers_failed: %w", err)
	}
	return nonNil(members), nil
}

// ListSubscriptions returns the channels subscriberID follows. An empty list is not an error.
func (service *Service) ListSubscriptions(context context.Context, subscriberID string) ([]Member, error) {
	if err := checkID(subscriberID, MsgSubscriberIDRequired, MsgInvalidSubscriberID); err != nil {
		return nil, err
	}

	channels, err := service.repository.ListSubscriptions(context, subscriberID)
	if err != nil {
		return nil, fmt.Errorf("subscription_service_list_subscriptions_failed: %w", err)
	}
	return nonNil(channels), nil
}

// # Aggregation

/*
ChannelProfile builds the public channel view of username as seen by viewerID.

Parameters:
  - context: context.Context
  - username: string
  - viewerID: string (empty for anonymous viewers)

Returns:
  - *Channel: Public fields, subscriberCount, subscribedToCount and isSubscribed
  - error: BadRequest, NotFound or storage failures
*/
func (service *Service) ChannelProfile(context context.Context, username, viewerID string) (*Channel, error) {
	username = textnorm.Username(username)
	if username == "" {
		return nil, apperr.BadRequest(MsgUsernameRequired)
	}

	if !ident.Valid(viewerID) {
		viewerID = ""
	}

	channel, err := service.repository.ChannelProfile(context, username, viewerID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound(MsgChannelNotFound)
		}
		return nil, fmt.Errorf("subscription_service_channel_profile_failed: %w", err)
	}
	return channel, nil
}

// # Helpers

func checkID(id, missing, invalid string) error {
	if id == "" {
		return apperr.BadRequest(missing)
	}
	if !ident.Valid(id) {
		return apperr.BadRequest(invalid)
	}
	return nil
}

func nonNil(members []Member) []Member {
	if members == nil {
		return []Member{}
	}
	return members
}
