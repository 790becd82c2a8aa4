// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

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

// UsersCollection is the MongoDB collection holding accounts.
const UsersCollection = "users"

// userDocument is the BSON shape of a stored account.
type userDocument struct {
	ID           primitive.ObjectID `bson:"_id"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email"`
	Fullname     string             `bson:"fullname"`
	Avatar       string             `bson:"avatar"`
	CoverImage   string             `bson:"coverImage"`
	Password     string             `bson:"password"`
	RefreshToken string             `bson:"refreshToken,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func (document *userDocument) toEntity() *User {
	return &User{
		ID:           document.ID.Hex(),
		Username:     document.Username,
		Email:        document.Email,
		Fullname:     document.Fullname,
		Avatar:       document.Avatar,
		CoverImage:   document.CoverImage,
		PasswordHash: document.Password,
		RefreshToken: document.RefreshToken,
		CreatedAt:    document.CreatedAt,
		UpdatedAt:    document.UpdatedAt,
	}
}

// # User Repository

// MongoUserRepository implements the UserRepository interface using the MongoDB driver.
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a MongoDB implementation of the UserRepository.
func NewMongoUserRepository(database *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: database.Collection(UsersCollection)}
}

// EnsureIndexes creates the unique indexes on username and email.
func (repository *MongoUserRepository) EnsureIndexes(context context.Context) error {
	_, err := repository.collection.Indexes().CreateMany(context, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("mongo_user_repo_indexes_failed: %w", err)
	}
	return nil
}

func (repository *MongoUserRepository) findOne(context context.Context, filter any) (*User, error) {
	var document userDocument
	if err := repository.collection.FindOne(context, filter).Decode(&document); err != nil {
		return nil, dberr.Wrap(err, MsgUserNotFound)
	}
	return document.toEntity(), nil
}

// FindByID retrieves an account by its ObjectID.
func (repository *MongoUserRepository) FindByID(context context.Context, id string) (*User, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.NotFound(MsgUserNotFound)
	}
	return repository.findOne(context, bson.M{"_id": objectID})
}

// FindByUsername retrieves an account by its unique username.
func (repository *MongoUserRepository) FindByUsername(context context.Context, username string) (*User, error) {
	return repository.findOne(context, bson.M{"username": username})
}

// FindByEmail retrieves an account by its unique email address.
func (repository *MongoUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	return repository.findOne(context, bson.M{"email": email})
}

// FindByUsernameOrEmail retrieves the first account matching either identifier.
func (repository *MongoUserRepository) FindByUsernameOrEmail(context context.Context, username, email string) (*User, error) {
	clauses := bson.A{}
	if username != "" {
		clauses = append(clauses, bson.M{"username": username})
	}
	if email != "" {
		clauses = append(clauses, bson.M{"email": email})
	}
	if len(clauses) == 0 {
		return nil, apperr.NotFound(MsgUserNotFound)
	}
	return repository.findOne(context, bson.M{"$or": clauses})
}

/*
Create persists a new account document.

Parameters:
  - context: context.Context
  - user: *User (ID must be a valid ObjectID hex)

Returns:
  - error: apperr.Conflict on duplicate username/email, or storage errors
*/
func (repository *MongoUserRepository) Create(context context.Context, user *User) error {
	objectID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return apperr.Internal(fmt.Errorf("mongo_user_repo_create_bad_id: %w", err))
	}

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	document := userDocument{
		ID:         objectID,
		Username:   user.Username,
		Email:      user.Email,
		Fullname:   user.Fullname,
		Avatar:     user.Avatar,
		CoverImage: user.CoverImage,
		Password:   user.PasswordHash,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
	}

	if _, err := repository.collection.InsertOne(context, document); err != nil {
		return dberr.Wrap(err, MsgUserNotFound)
	}
	return nil
}

// UpdateDetails sets the provided fields and refreshes updatedAt.
func (repository *MongoUserRepository) UpdateDetails(context context.Context, userID string, fullname, email *string) error {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if fullname != nil {
		set["fullname"] = *fullname
	}
	if email != nil {
		set["email"] = *email
	}
	return repository.updateByID(context, userID, bson.M{"$set": set})
}

// SwapImage replaces one image URL with a conditional single-document update.
func (repository *MongoUserRepository) SwapImage(context context.Context, userID string, field ImageField, previous, next string) (bool, error) {
	objectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return false, apperr.NotFound(MsgUserNotFound)
	}

	// nil also matches a document without the field.
	var current any = previous
	if previous == "" {
		current = bson.M{"$in": bson.A{"", nil}}
	}

	result, err := repository.collection.UpdateOne(context,
		bson.M{"_id": objectID, string(field): current},
		bson.M{"$set": bson.M{string(field): next, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return false, dberr.Wrap(err, MsgUserNotFound)
	}
	return result.MatchedCount == 1, nil
}

// UpdatePassword replaces the stored password hash.
func (repository *MongoUserRepository) UpdatePassword(context context.Context, userID, newHash string) error {
	return repository.updateByID(context, userID, bson.M{"$set": bson.M{"password": newHash, "updatedAt": time.Now().UTC()}})
}

// SetRefreshToken stores the account's live refresh token.
func (repository *MongoUserRepository) SetRefreshToken(context context.Context, userID, token string) error {
	return repository.updateByID(context, userID, bson.M{"$set": bson.M{"refreshToken": token}})
}

// SwapRefreshToken rotates the refresh token with a conditional single-document update.
func (repository *MongoUserRepository) SwapRefreshToken(context context.Context, userID, presented, next string) (bool, error) {
	objectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil || presented == "" {
		return false, nil
	}

	result, err := repository.collection.UpdateOne(context,
		bson.M{"_id": objectID, "refreshToken": presented},
		bson.M{"$set": bson.M{"refreshToken": next}},
	)
	if err != nil {
		return false, dberr.Wrap(err, MsgUserNotFound)
	}
	return result.MatchedCount == 1, nil
}

// ClearRefreshToken unsets the stored refresh token.
func (repository *MongoUserRepository) ClearRefreshToken(context context.Context, userID string) error {
	return repository.updateByID(context, userID, bson.M{"$unset": bson.M{"refreshToken": 1}})
}

func (repository *MongoUserRepository) updateByID(context context.Context, userID string, update bson.M) error {
	objectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return apperr.NotFound(MsgUserNotFound)
	}

	result, err := repository.collection.UpdateOne(context, bson.M{"_id": objectID}, update)
	if err != nil {
		return dberr.Wrap(err, MsgUserNotFound)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound(MsgUserNotFound)
	}
	return nil
}
