// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/taibuivan/tubely/internal/platform/apperr"
	"github.com/taibuivan/tubely/internal/social/subscription"
	"github.com/taibuivan/tubely/internal/social/tweet"
	"github.com/taibuivan/tubely/internal/users/auth"
)

// # Users

type memoryUsers struct {
	mu    sync.Mutex
	users map[string]*auth.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: make(map[string]*auth.User)}
}

func (repo *memoryUsers) find(match func(*auth.User) bool) (*auth.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, user := range repo.users {
		if match(user) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound(auth.MsgUserNotFound)
}

func (repo *memoryUsers) FindByID(_ context.Context, id string) (*auth.User, error) {
	return repo.find(func(u *auth.User) bool { return u.ID == id })
}

func (repo *memoryUsers) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	return repo.find(func(u *auth.User) bool { return u.Username == username })
}

func (repo *memoryUsers) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	return repo.find(func(u *auth.User) bool { return u.Email == email })
}

func (repo *memoryUsers) FindByUsernameOrEmail(_ context.Context, username, email string) (*auth.User, error) {
	return repo.find(func(u *auth.User) bool {
		return (username != "" && u.Username == username) || (email != "" && u.Email == email)
	})
}

func (repo *memoryUsers) Create(_ context.Context, user *auth.User) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, existing := range repo.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return apperr.Conflict("Resource already exists")
		}
	}
	clone := *user
	repo.users[user.ID] = &clone
	return nil
}

func (repo *memoryUsers) UpdateDetails(_ context.Context, id string, fullname, email *string) error {
	return repo.mutate(id, func(stored *auth.User) {
		if fullname != nil {
			stored.Fullname = *fullname
		}
		if email != nil {
			stored.Email = *email
		}
	})
}

func (repo *memoryUsers) SwapImage(_ context.Context, id string, field auth.ImageField, previous, next string) (bool, error) {
	swapped := false
	err := repo.mutate(id, func(stored *auth.User) {
		current := &stored.Avatar
		if field == auth.ImageCover {
			current = &stored.CoverImage
		}
		if *current == previous {
			*current, swapped = next, true
		}
	})
	return swapped, err
}

func (repo *memoryUsers) mutate(id string, apply func(*auth.User)) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	stored, ok := repo.users[id]
	if !ok {
		return apperr.NotFound(auth.MsgUserNotFound)
	}
	apply(stored)
	return nil
}

func (repo *memoryUsers) UpdatePassword(_ context.Context, id, hash string) error {
	return repo.mutate(id, func(u *auth.User) { u.PasswordHash = hash })
}

func (repo *memoryUsers) SetRefreshToken(_ context.Context, id, token string) error {
	return repo.mutate(id, func(u *auth.User) { u.RefreshToken = token })
}

func (repo *memoryUsers) SwapRefreshToken(_ context.Context, id, presented, next string) (bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	stored, ok := repo.users[id]
	if !ok || presented == "" || stored.RefreshToken != presented {
		return false, nil
	}
	stored.RefreshToken = next
	return true, nil
}

func (repo *memoryUsers) ClearRefreshToken(_ context.Context, id string) error {
	return repo.mutate(id, func(u *auth.User) { u.RefreshToken = "" })
}

// # Subscriptions

type memoryGraph struct {
	mu    sync.Mutex
	users *memoryUsers
	edges []*subscription.Subscription
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

func (graph *memoryGraph) members(ctx context.Context, match func(*subscription.Subscription) (bool, string)) ([]subscription.Member, error) {
	graph.mu.Lock()
	var ids []string
	for _, edge := range graph.edges {
		if ok, id := match(edge); ok {
			ids = append(ids, id)
		}
	}
	graph.mu.Unlock()

	members := []subscription.Member{}
	for _, id := range ids {
		user, err := graph.users.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		members = append(members, subscription.Member{ID: user.ID, Username: user.Username, Email: user.Email})
	}
	return members, nil
}

func (graph *memoryGraph) ListSubscribers(ctx context.Context, channelID string) ([]subscription.Member, error) {
	return graph.members(ctx, func(edge *subscription.Subscription) (bool, string) {
		return edge.Channel == channelID, edge.Subscriber
	})
}

func (graph *memoryGraph) ListSubscriptions(ctx context.Context, subscriberID string) ([]subscription.Member, error) {
	return graph.members(ctx, func(edge *subscription.Subscription) (bool, string) {
		return edge.Subscriber == subscriberID, edge.Channel
	})
}

func (graph *memoryGraph) ChannelProfile(ctx context.Context, username, viewerID string) (*subscription.Channel, error) {
	user, err := graph.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, apperr.NotFound(subscription.MsgChannelNotFound)
	}

	graph.mu.Lock()
	defer graph.mu.Unlock()

	channel := &subscription.Channel{
		ID:         user.ID,
		Username:   user.Username,
		Fullname:   user.Fullname,
		Email:      user.Email,
		Avatar:     user.Avatar,
		CoverImage: user.CoverImage,
	}
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

// # Tweets

type memoryTweets struct {
	mu     sync.Mutex
	tweets []*tweet.Tweet
}

func (repo *memoryTweets) Create(_ context.Context, t *tweet.Tweet) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	clone := *t
	repo.tweets = append(repo.tweets, &clone)
	return nil
}

func (repo *memoryTweets) FindByID(_ context.Context, id string) (*tweet.Tweet, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, t := range repo.tweets {
		if t.ID == id {
			clone := *t
			return &clone, nil
		}
	}
	return nil, apperr.NotFound(tweet.MsgTweetNotFound)
}

func (repo *memoryTweets) ListByOwner(_ context.Context, ownerID string, limit, offset int) ([]*tweet.Tweet, int, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	owned := []*tweet.Tweet{}
	for i := len(repo.tweets) - 1; i >= 0; i-- {
		if repo.tweets[i].Owner == ownerID {
			owned = append(owned, repo.tweets[i])
		}
	}
	total := len(owned)
	if offset >= total {
		return []*tweet.Tweet{}, total, nil
	}
	return owned[offset:min(offset+limit, total)], total, nil
}

func (repo *memoryTweets) Update(_ context.Context, t *tweet.Tweet) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for i, existing := range repo.tweets {
		if existing.ID == t.ID {
			clone := *t
			repo.tweets[i] = &clone
			return nil
		}
	}
	return apperr.NotFound(tweet.MsgTweetNotFound)
}

func (repo *memoryTweets) Delete(_ context.Context, id string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for i, existing := range repo.tweets {
		if existing.ID == id {
			repo.tweets = append(repo.tweets[:i], repo.tweets[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound(tweet.MsgTweetNotFound)
}

// # Media

// fakeHost consumes the spooled file and hands back a stable URL.
type fakeHost struct{}

func (fakeHost) Upload(_ context.Context, localPath string) (string, error) {
	_ = os.Remove(localPath)
	return "http://cdn.test/tubely/tubely/" + filepath.Base(localPath), nil
}

func (fakeHost) Delete(context.Context, string) error { return nil }

func (fakeHost) Ping(context.Context) error { return nil }
