// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package subscription manages the directed subscriber → channel relationship
between members and the aggregated channel view built on top of it.

# Architecture

  - Entities: Subscription (edge), Member (public profile), Channel (aggregate).
  - Consistency: At most one edge exists per (subscriber, channel) pair. The store
    enforces it with a unique index, so of two racing toggles one fails with CONFLICT.
  - Aggregation: ChannelProfile computes both counts and the viewer flag in a
    single query so they describe the same snapshot.
*/
package subscription

import (
	"context"
	"time"

	"github.com/taibuivan/tubely/internal/users/auth"
)

// # Domain Entities

// Subscription is an edge from a subscriber to a channel.
type Subscription struct {
	ID         string    `json:"_id"`
	Subscriber string    `json:"subscriber"`
	Channel    string    `json:"channel"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Member is the public projection of a user listed as subscriber or channel.
type Member struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Channel is a user viewed as the target of subscriptions, with its counters
// and the viewer-relative subscription flag.
type Channel struct {
	ID                string `json:"_id"`
	Username          string `json:"username"`
	Fullname          string `json:"fullname"`
	Email             string `json:"email"`
	Avatar            string `json:"avatar"`
	CoverImage        string `json:"coverImage"`
	SubscriberCount   int64  `json:"subscriberCount"`
	SubscribedToCount int64  `json:"subscribedToCount"`
	IsSubscribed      bool   `json:"isSubscribed"`
}

// Toggle reports the outcome of ToggleSubscription.
type Toggle struct {
	Subscribed bool
	Record     *Subscription
}

// # Repository Contracts

// Repository defines the persistence contract for subscription edges.
type Repository interface {
	/*
		Create inserts a new edge.

		Parameters:
		  - context: context.Context
		  - edge: *Subscription (ID already assigned)

		Returns:
		  - error: apperr.Conflict if the pair already exists
	*/
	Create(context context.Context, edge *Subscription) error

	/*
		Delete removes the edge for (subscriberID, channelID) and returns it.

		Returns:
		  - *Subscription: The removed record
		  - error: apperr.NotFound if no edge existed
	*/
	Delete(context context.Context, subscriberID, channelID string) (*Subscription, error)

	// ListSubscribers returns the members subscribed to channelID, newest first.
	ListSubscribers(context context.Context, channelID string) ([]Member, error)

	// ListSubscriptions returns the channels subscriberID follows, newest first.
	ListSubscriptions(context context.Context, subscriberID string) ([]Member, error)

	/*
		ChannelProfile resolves username and aggregates its counters in one query.

		Parameters:
		  - context: context.Context
		  - username: string (normalized)
		  - viewerID: string (may be empty)

		Returns:
		  - *Channel: Public fields plus counters and isSubscribed
		  - error: apperr.NotFound if no such user
	*/
	ChannelProfile(context context.Context, username, viewerID string) (*Channel, error)
}

// UserLookup resolves channel identities. auth.UserRepository satisfies it.
type UserLookup interface {
	FindByID(context context.Context, id string) (*auth.User, error)
}

// # User-facing Messages

const (
	MsgSubscribed             = "Subscribed successfully"
	MsgUnsubscribed           = "Unsubscribed successfully"
	MsgSubscribersFound       = "Subscribers found"
	MsgNoSubscribers          = "No subscribers found"
	MsgSubscriptionsFound     = "Subscribed channels found"
	MsgNoSubscriptions        = "No subscribed channels found"
	MsgChannelFetched         = "User channel fetched successfully"
	MsgChannelIDRequired      = "Channel ID is required"
	MsgInvalidChannelID       = "Invalid channel ID"
	MsgSubscriberIDRequired   = "Subscriber ID is required"
	MsgInvalidSubscriberID    = "Invalid subscriber ID"
	MsgChannelNotFound        = "Channel does not exist"
	MsgSelfSubscription       = "You cannot subscribe to your own channel"
	MsgUsernameRequired       = "Username is missing"
	MsgSubscriptionNotFound   = "Subscription not found"
	MsgConcurrentModification = "Subscription changed concurrently, please retry"
)
