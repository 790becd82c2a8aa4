// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tweet

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
)

// TweetsCollection is the MongoDB collection holding tweets.
const TweetsCollection = "tweets"

type tweetDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Owner     primitive.ObjectID `bson:"owner"`
	Content   string             `bson:"content"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (document *tweetDocument) toEntity() *Tweet {
	return &Tweet{
		ID:        document.ID.Hex(),
		Owner:     document.Owner.Hex(),
		Content:   document.Content,
		CreatedAt: document.CreatedAt,
		UpdatedAt: document.UpdatedAt,
	}
}

// MongoRepository implements [Repository] using the MongoDB driver.
type MongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository creates a MongoDB implementation of the [Repository].
func NewMongoRepository(database *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: database.Collection(TweetsCollection)}
}

// EnsureIndexes creates the (owner, createdAt) listing index.
func (repository *MongoRepository) EnsureIndexes(context context.Context) error {
	_, err := repository.collection.Indexes().CreateOne(context, mongo.IndexModel{
		Keys: bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("mongo_tweet_repo_indexes_failed: %w", err)
	}
	return nil
}

// Create persists a new tweet document.
func (repository *MongoRepository) Create(context context.Context, tweet *Tweet) error {
	id, err := primitive.ObjectIDFromHex(tweet.ID)
	if err != nil {
		return apperr.Internal(fmt.Errorf("mongo_tweet_repo_bad_id: %w", err))
	}
	owner, err := primitive.ObjectIDFromHex(tweet.Owner)
	if err != nil {
		return apperr.NotFound(MsgUserNotFound)
	}

	document := tweetDocument{
		ID:        id,
		Owner:     owner,
		Content:   tweet.Content,
		CreatedAt: tweet.CreatedAt,
		UpdatedAt: tweet.UpdatedAt,
	}
	if _, err := repository.collection.InsertOne(context, document); err != nil {
		return dberr.Wrap(err, MsgTweetNotFound)
	}
	return nil
}

// FindByID retrieves a tweet by its ObjectID.
func (repository *MongoRepository) FindByID(context context.Context, id string) (*Tweet, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.NotFound(MsgTweetNotFound)
	}

	var document tweetDocument
	if err := repository.collection.FindOne(context, bson.M{"_id": objectID}).Decode(&document); err != nil {
		return nil, dberr.Wrap(err, MsgTweetNotFound)
	}
	return document.toEntity(), nil
}

// ListByOwner counts the owner's tweets and reads one page, newest first.
func (repository *MongoRepository) ListByOwner(context context.Context, ownerID string, limit, offset int) ([]*Tweet, int, error) {
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return []*Tweet{}, 0, nil
	}
	filter := bson.M{"owner": owner}

	total, err := repository.collection.CountDocuments(context, filter)
	if err != nil {
		return nil, 0, dberr.Wrap(err, MsgTweetNotFound)
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := repository.collection.Find(context, filter, findOptions)
	if err != nil {
		return nil, 0, dberr.Wrap(err, MsgTweetNotFound)
	}

	var documents []tweetDocument
	if err := cursor.All(context, &documents); err != nil {
		return nil, 0, dberr.Wrap(err, MsgTweetNotFound)
	}

	tweets := make([]*Tweet, 0, len(documents))
	for i := range documents {
		tweets = append(tweets, documents[i].toEntity())
	}
	return tweets, int(total), nil
}

// Update persists content and updatedAt.
func (repository *MongoRepository) Update(context context.Context, tweet *Tweet) error {
	objectID, err := primitive.ObjectIDFromHex(tweet.ID)
	if err != nil {
		return apperr.NotFound(MsgTweetNotFound)
	}

	result, err := repository.collection.UpdateOne(context,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"content": tweet.Content, "updatedAt": tweet.UpdatedAt}},
	)
	if err != nil {
		return dberr.Wrap(err, MsgTweetNotFound)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound(MsgTweetNotFound)
	}
	return nil
}

// Delete removes a tweet document.
func (repository *MongoRepository) Delete(context context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.NotFound(MsgTweetNotFound)
	}

	result, err := repository.collection.DeleteOne(context, bson.M{"_id": objectID})
	if err != nil {
		return dberr.Wrap(err, MsgTweetNotFound)
	}
	if result.DeletedCount == 0 {
		return apperr.NotFound(MsgTweetNotFound)
	}
	return nil
}
