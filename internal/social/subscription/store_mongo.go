// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package subscription

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taibuivan/tubely/internal/platform/apperr"
	"github.com/taibuivan/tubely/internal/platform/dberr"
	"github.com/taibuivan/tubely/internal/users/auth"
)

// SubscriptionsCollection is the MongoDB collection holding subscription edges.
const SubscriptionsCollection = "subscriptions"

type subscriptionDocument struct {
	ID         primitive.ObjectID `bson:"_id"`
	Subscriber primitive.ObjectID `bson:"subscriber"`
	Channel    primitive.ObjectID `bson:"channel"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

func (document *subscriptionDocument) toEntity() *Subscription {
	return &Subscription{
		ID:         document.ID.Hex(),
		Subscriber: document.Subscriber.Hex(),
		Channel:    document.Channel.Hex(),
		CreatedAt:  document.CreatedAt,
		UpdatedAt:  document.UpdatedAt,
	}
}

type memberDocument struct {
	ID       primitive.ObjectID `bson:"_id"`
	Username string             `bson:"username"`
	Email    string             `bson:"email"`
}

type channelDocument struct {
	ID                primitive.ObjectID `bson:"_id"`
	Username          string             `bson:"username"`
	Fullname          string             `bson:"fullname"`
	Email             string             `bson:"email"`
	Avatar            string             `bson:"avatar"`
	CoverImage        string             `bson:"coverImage"`
	SubscriberCount   int64              `bson:"subscriberCount"`
	SubscribedToCount int64              `bson:"subscribedToCount"`
	IsSubscribed      bool               `bson:"isSubscribed"`
}

// # Subscription Repository

// MongoRepository implements [Repository] with the MongoDB driver and
// aggregation pipelines over the users and subscriptions collections.
type MongoRepository struct {
	subscriptions *mongo.Collection
	users         *mongo.Collection
}

// NewMongoRepository creates a MongoDB implementation of the [Repository].
func NewMongoRepository(database *mongo.Database) *MongoRepository {
	return &MongoRepository{
		subscriptions: database.Collection(SubscriptionsCollection),
		users:         database.Collection(auth.UsersCollection),
	}
}

// EnsureIndexes creates the unique (subscriber, channel) index and the channel lookup index.
func (repository *MongoRepository) EnsureIndexes(context context.Context) error {
	_, err := repository.subscriptions.Indexes().CreateMany(context, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "subscriber", Value: 1}, {Key: "channel", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "channel", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("mongo_subscription_repo_indexes_failed: %w", err)
	}
	return nil
}

// Create inserts a new edge. A duplicate pair surfaces as CONFLICT.
func (repository *MongoRepository) Create(context context.Context, edge *Subscription) error {
	document, err := toDocument(edge)
	if err != nil {
		return err
	}

	if _, err := repository.subscriptions.InsertOne(context, document); err != nil {
		return dberr.Wrap(err, MsgSubscriptionNotFound)
	}
	return nil
}

// Delete removes the edge with FindOneAndDelete and returns the removed record.
func (repository *MongoRepository) Delete(context context.Context, subscriberID, channelID string) (*Subscription, error) {
	subscriber, channel, err := objectIDs(subscriberID, channelID)
	if err != nil {
		return nil, apperr.NotFound(MsgSubscriptionNotFound)
	}

	var document subscriptionDocument
	err = repository.subscriptions.FindOneAndDelete(context,
		bson.M{"subscriber": subscriber, "channel": channel},
	).Decode(&document)
	if err != nil {
		return nil, dberr.Wrap(err, MsgSubscriptionNotFound)
	}
	return document.toEntity(), nil
}

// ListSubscribers joins the edges of channelID against users on the subscriber side.
func (repository *MongoRepository) ListSubscribers(context context.Context, channelID string) ([]Member, error) {
	return repository.listMembers(context, "channel", "subscriber", channelID)
}

// ListSubscriptions joins the edges of subscriberID against users on the channel side.
func (repository *MongoRepository) ListSubscriptions(context context.Context, subscriberID string) ([]Member, error) {
	return repository.listMembers(context, "subscriber", "channel", subscriberID)
}

/*
listMembers runs the shared listing pipeline.

	$match    edges where matchField == id
	$sort     newest first
	$lookup   users on joinField
	$unwind   drop edges whose user is gone
	$project  _id, username, email of the joined user
*/
func (repository *MongoRepository) listMembers(context context.Context, matchField, joinField, id string) ([]Member, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return []Member{}, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{matchField: objectID}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         auth.UsersCollection,
			"localField":   joinField,
			"foreignField": "_id",
			"as":           "member",
		}}},
		{{Key: "$unwind", Value: "$member"}},
		{{Key: "$project", Value: bson.M{
			"_id":      "$member._id",
			"username": "$member.username",
			"email":    "$member.email",
		}}},
	}

	cursor, err := repository.subscriptions.Aggregate(context, pipeline)
	if err != nil {
		return nil, dberr.Wrap(err, MsgSubscriptionNotFound)
	}

	var documents []memberDocument
	if err := cursor.All(context, &documents); err != nil {
		return nil, dberr.Wrap(err, MsgSubscriptionNotFound)
	}

	members := make([]Member, 0, len(documents))
	for _, document := range documents {
		members = append(members, Member{ID: document.ID.Hex(), Username: document.Username, Email: document.Email})
	}
	return members, nil
}

/*
ChannelProfile aggregates the channel view in a single pipeline over users.

	$match      username
	$lookup     subscriptions where channel == _id     → subscribers
	$lookup     subscriptions where subscriber == _id  → subscribedTo
	$addFields  subscriberCount, subscribedToCount, isSubscribed ($in viewer)
	$project    public fields and the computed ones
*/
func (repository *MongoRepository) ChannelProfile(context context.Context, username, viewerID string) (*Channel, error) {
	viewer := primitive.NilObjectID
	if parsed, err := primitive.ObjectIDFromHex(viewerID); err == nil {
		viewer = parsed
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"username": username}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         SubscriptionsCollection,
			"localField":   "_id",
			"foreignField": "channel",
			"as":           "subscribers",
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         SubscriptionsCollection,
			"localField":   "_id",
			"foreignField": "subscriber",
			"as":           "subscribedTo",
		}}},
		{{Key: "$addFields", Value: bson.M{
			"subscriberCount":   bson.M{"$size": "$subscribers"},
			"subscribedToCount": bson.M{"$size": "$subscribedTo"},
			"isSubscribed": bson.M{"$cond": bson.M{
				"if":   bson.M{"$in": bson.A{viewer, "$subscribers.subscriber"}},
				"then": true,
				"else": false,
			}},
		}}},
		{{Key: "$project", Value: bson.M{
			"username":          1,
			"fullname":          1,
			"email":             1,
			"avatar":            1,
			"coverImage":        1,
			"subscriberCount":   1,
			"subscribedToCount": 1,
			"isSubscribed":      1,
		}}},
		{{Key: "$limit", Value: 1}},
	}

	cursor, err := repository.users.Aggregate(context, pipeline)
	if err != nil {
		return nil, dberr.Wrap(err, MsgChannelNotFound)
	}

	var documents []channelDocument
	if err := cursor.All(context, &documents); err != nil {
		return nil, dberr.Wrap(err, MsgChannelNotFound)
	}
	if len(documents) == 0 {
		return nil, apperr.NotFound(MsgChannelNotFound)
	}

	document := documents[0]
	return &Channel{
		ID:                document.ID.Hex(),
		Username:          document.Username,
		Fullname:          document.Fullname,
		Email:             document.Email,
		Avatar:            document.Avatar,
		CoverImage:        document.CoverImage,
		SubscriberCount:   document.SubscriberCount,
		SubscribedToCount: document.SubscribedToCount,
		IsSubscribed:      document.IsSubscribed,
	}, nil
}

// # Helpers

func objectIDs(subscriberID, channelID string) (primitive.ObjectID, primitive.ObjectID, error) {
	subscriber, err := primitive.ObjectIDFromHex(subscriberID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	channel, err := primitive.ObjectIDFromHex(channelID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	return subscriber, channel, nil
}

func toDocument(edge *Subscription) (*subscriptionDocument, error) {
	id, err := primitive.ObjectIDFromHex(edge.ID)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("mongo_subscription_repo_bad_id: %w", err))
	}
	subscriber, channel, err := objectIDs(edge.Subscriber, edge.Channel)
	if err != nil {
		return nil, apperr.NotFound(MsgChannelNotFound)
	}
	return &subscriptionDocument{
		ID:         id,
		Subscriber: subscriber,
		Channel:    channel,
		CreatedAt:  edge.CreatedAt,
		UpdatedAt:  edge.UpdatedAt,
	}, nil
}
