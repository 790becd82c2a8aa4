// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package subscription_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/tubely/internal/platform/apperr"
	"github.com/taibuivan/tubely/internal/social/subscription"
	"github.com/taibuivan/tubely/internal/users/auth"
)

// # Fakes

// memoryGraph stores users and edges and enforces the unique pair rule.
type memoryGraph struct {
	mu    sync.Mutex
	users map[string]*auth.User
	edges []*subscription.Subscription
}

func (graph *memoryGraph) FindByID(_ context.Context, id string) (*auth.User, error) {
	graph.mu.Lock()
	defer graph.mu.Unlock()
	if user, ok := graph.users[id]; ok {
		return user, nil
	}
	return nil, apperr.NotFound(auth.MsgUserNotFound)
}

func (graph *memoryGraph) Create(_ context.Context, edge *subscription.Subscription) error {
	graph.mu.Lock()
	defer graph.mu.Unlock()
	for _, existing := range graph.edges {
		if existing.Subscriber == edge.Subscriber && existing.Channel == edge.Channel {
			return apperr.Conflict("Resource already exists")
		}
	}
	graph.edges = append(graph.edges, edge)
	return nil
}

func (graph *memoryGraph) Delete(_ context.Context, subscriberID, channelID string) (*subscription.Subscription, error) {
	graph.mu.Lock()
	defer graph.mu.Unlock()
	for i, existing := range graph.edges {
		if existing.Subscriber == subscriberID && existing.Channel == channelID {
			graph.edges = append(graph.edges[:i], graph.edges[i+1:]...)
			return existing, nil
		}
	}
	return nil, apperr.NotFound(subscription.MsgSubscriptionNotFound)
}

func (graph *memoryGraph) members(match func(*subscription.Subscription) (bool, string)) []subscription.Member {
	graph.mu.Lock()
	defer graph.mu.Unlock()
	var members []subscription.Member
	for _, edge := range graph.edges {
		if ok, id := match(edge); ok {
			user := graph.users[id]
			members = append(members, subscription.Member{ID: user.ID, Username: user.Username, Email: user.Email})
		}
	}
	return members
}

func (graph *memoryGraph) ListSubscribers(_ context.Context, channelID string) ([]subscription.Member, error) {
	return graph.members(func(edge *subscription.Subscription) (bool, string) {
		return edge.Channel == channelID, edge.Subscriber
	}), nil
}

func (graph *memoryGraph) ListSubscriptions(_ context.Context, subscriberID string) ([]subscription.Member, error) {
	return graph.members(func(edge *subscription.Subscription) (bool, string) {
		return edge.Subscriber == subscriberID, edge.Channel
	}), nil
}

func (graph *memoryGraph) ChannelProfile(_ context.Context, username, viewerID string) (*subscription.Channel, error) {
	graph.mu.Lock()
	defer graph.mu.Unlock()

	for _, user := range graph.users {
		if user.Username != username {
			continue
		}
		channel := &subscription.Channel{ID: user.ID, Username: user.Username, Email: user.Email}
		for _, edge := range graph.edges {
			if edge.Channel == user.ID {
				channel.SubscriberCount++
				if edge.Subscriber == viewerID {
					channel.IsSubscribed = true
				}
			}
			if edge.Subscriber == user.ID {
				channel.SubscribedToCount++
			}
		}
		return channel, nil
	}
	return nil, apperr.NotFound(subscription.MsgChannelNotFound)
}

const (
	aliceID = "65f1a2b3c4d5e6f7a8b9c0d1"
	bobID   = "65f1a2b3c4d5e6f7a8b9c0d2"
	carolID = "65f1a2b3c4d5e6f7a8b9c0d3"
)

func newService() (*subscription.Service, *memoryGraph) {
	graph := &memoryGraph{users: map[string]*auth.User{
		aliceID: {ID: aliceID, Username: "alice", Email: "alice@example.com"},
		bobID:   {ID: bobID, Username: "bob", Email: "bob@example.com"},
		carolID: {ID: carolID, Username: "carol", Email: "carol@example.com"},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return subscription.NewService(graph, graph, logger), graph
}

// # Toggle

/*
TestToggleSubscription_Alternates verifies N toggles leave N mod 2 edges.
*/
func TestToggleSubscription_Alternates(t *testing.T) {
	service, graph := newService()

	for i := 1; i <= 5; i++ {
		result, err := service.ToggleSubscription(context.Background(), aliceID, bobID)
		require.NoError(t, err)

		assert.Equal(t, i%2 == 1, result.Subscribed, "toggle %d", i)
		require.NotNil(t, result.Record)
		assert.Equal(t, aliceID, result.Record.Subscriber)
		assert.Equal(t, bobID, result.Record.Channel)
		assert.Len(t, graph.edges, i%2)
	}
}

/*
TestToggleSubscription_Validation covers the identifier and self-subscription rules.
*/
func TestToggleSubscription_Validation(t *testing.T) {
	service, _ := newService()

	tests := []struct {
		name      string
		channelID string
		code      string
		message   string
	}{
		{"missing", "", apperr.CodeBadRequest, subscription.MsgChannelIDRequired},
		{"malformed", "not-an-id", apperr.CodeBadRequest, subscription.MsgInvalidChannelID},
		{"self", aliceID, apperr.CodeBadRequest, subscription.MsgSelfSubscription},
		{"unknown_channel", "65f1a2b3c4d5e6f7a8b9c0ff", apperr.CodeNotFound, subscription.MsgChannelNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.ToggleSubscription(context.Background(), aliceID, tt.channelID)
			require.Error(t, err)
			assert.True(t, apperr.HasCode(err, tt.code))
			assert.Equal(t, tt.message, apperr.As(err).Message)
		})
	}
}

/*
TestToggleSubscription_LostRace verifies a duplicate insert surfaces as CONFLICT.
*/
func TestToggleSubscription_LostRace(t *testing.T) {
	service, graph := newService()

	// Another writer inserts between our Delete (miss) and Create.
	racer := &racingGraph{memoryGraph: graph}
	service = subscription.NewService(racer, graph, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := service.ToggleSubscription(context.Background(), aliceID, bobID)
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))
	assert.Len(t, graph.edges, 1)
}

// racingGraph inserts the same edge right after a missed Delete.
type racingGraph struct {
	*memoryGraph
}

func (graph *racingGraph) Delete(ctx context.Context, subscriberID, channelID string) (*subscription.Subscription, error) {
	removed, err := graph.memoryGraph.Delete(ctx, subscriberID, channelID)
	if apperr.IsNotFound(err) {
		_ = graph.memoryGraph.Create(ctx, &subscription.Subscription{ID: "65f1a2b3c4d5e6f7a8b9c0aa", Subscriber: subscriberID, Channel: channelID})
	}
	return removed, err
}

// # Aggregation

/*
TestChannelProfile_MatchesListings verifies the counters agree with the listings.
*/
func TestChannelProfile_MatchesListings(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	// 1. alice and carol subscribe to bob; bob subscribes to carol
	for _, pair := range [][2]string{{aliceID, bobID}, {carolID, bobID}, {bobID, carolID}} {
		_, err := service.ToggleSubscription(ctx, pair[0], pair[1])
		require.NoError(t, err)
	}

	// 2. Profile as seen by alice
	channel, err := service.ChannelProfile(ctx, "  Bob ", aliceID)
	require.NoError(t, err)

	subscribers, err := service.ListSubscribers(ctx, bobID)
	require.NoError(t, err)
	subscriptions, err := service.ListSubscriptions(ctx, bobID)
	require.NoError(t, err)

	assert.Equal(t, int64(len(subscribers)), channel.SubscriberCount)
	assert.Equal(t, int64(len(subscriptions)), channel.SubscribedToCount)
	assert.Equal(t, int64(2), channel.SubscriberCount)
	assert.Equal(t, int64(1), channel.SubscribedToCount)
	assert.True(t, channel.IsSubscribed)

	// 3. Same profile as seen by bob
	self, err := service.ChannelProfile(ctx, "bob", bobID)
	require.NoError(t, err)
	assert.False(t, self.IsSubscribed)
}

/*
TestListings_EmptyAndInvalid verifies empty results and identifier checks.
*/
func TestListings_EmptyAndInvalid(t *testing.T) {
	service, _ := newService()

	members, err := service.ListSubscribers(context.Background(), carolID)
	require.NoError(t, err)
	assert.NotNil(t, members)
	assert.Empty(t, members)

	_, err = service.ListSubscriptions(context.Background(), "nope")
	assert.True(t, apperr.HasCode(err, apperr.CodeBadRequest))

	_, err = service.ChannelProfile(context.Background(), "ghost", aliceID)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	_, err = service.ChannelProfile(context.Background(), "  ", aliceID)
	assert.True(t, apperr.HasCode(err, apperr.CodeBadRequest))
}
