package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tran-hoang-nhan/phone-shop/internal/servererrors"
)

type Store struct {
	collection *mongo.Collection
}

func NewStore(db *mongo.Database) *Store {
	return &Store{
		collection: db.Collection("users"),
	}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(
		ctx,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	return nil
}

func (s *Store) createOne(ctx context.Context, newUser *User) error {
	now := time.Now()
	newUser.CreatedAt = now
	newUser.UpdatedAt = now

	result, err := s.collection.InsertOne(ctx, newUser)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return servererrors.ErrEmailAlreadyUsed
		}

		return fmt.Errorf(
			"failed to insert user in user store: %w",
			err,
		)
	}

	newUser.ID = result.InsertedID.(primitive.ObjectID)

	return nil
}

func (s *Store) findByID(ctx context.Context, userID primitive.ObjectID) (*User, error) {
	return s.findOne(ctx, bson.M{"_id": userID})
}

func (s *Store) findByEmail(ctx context.Context, email string) (*User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

// findByResetToken matches the sha256 of the emailed token and requires the
// expiry to still be in the future.
func (s *Store) findByResetToken(ctx context.Context, hashedToken string) (*User, error) {
	return s.findOne(ctx, bson.M{
		"resetPasswordToken":  hashedToken,
		"resetPasswordExpiry": bson.M{"$gt": time.Now()},
	})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*User, error) {
	var foundUser User

	err := s.collection.FindOne(ctx, filter).Decode(&foundUser)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, servererrors.ErrUserNotFound
		}

		return nil, fmt.Errorf(
			"failed to find user in user store: %w",
			err,
		)
	}

	return &foundUser, nil
}

func (s *Store) updateOne(ctx context.Context, userID primitive.ObjectID, fields bson.M) (*User, error) {
	fields["updatedAt"] = time.Now()

	var updatedUser User

	err := s.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": userID},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updatedUser)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, servererrors.ErrUserNotFound
		}

		if mongo.IsDuplicateKeyError(err) {
			return nil, servererrors.ErrEmailAlreadyUsed
		}

		return nil, fmt.Errorf(
			"failed to update user in user store: %w",
			err,
		)
	}

	return &updatedUser, nil
}

// clearResetToken removes the reset token fields after a successful reset.
func (s *Store) clearResetToken(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.collection.UpdateOne(
		ctx,
		bson.M{"_id": userID},
		bson.M{"$unset": bson.M{
			"resetPasswordToken":  "",
			"resetPasswordExpiry": "",
		}},
	)
	if err != nil {
		return fmt.Errorf(
			"failed to clear reset token in user store: %w",
			err,
		)
	}

	return nil
}
