package review

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
		collection: db.Collection("reviews"),
	}
}

// EnsureIndexes creates the unique (product, user) index that backs the
// one-review-per-user invariant even under concurrent creates.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(
		ctx,
		mongo.IndexModel{
			Keys: bson.D{
				{Key: "product", Value: 1},
				{Key: "user", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create review indexes: %w", err)
	}

	return nil
}

func (s *Store) createOne(ctx context.Context, newReview *Review) error {
	now := time.Now()
	newReview.CreatedAt = now
	newReview.UpdatedAt = now

	result, err := s.collection.InsertOne(ctx, newReview)
	if err != nil {
		// two concurrent creates can both pass the service's pre-check;
		// the unique index is the backstop
		if mongo.IsDuplicateKeyError(err) {
			return servererrors.ErrReviewAlreadyExists
		}

		return fmt.Errorf("failed to insert review in review store: %w", err)
	}

	if insertedID, ok := result.InsertedID.(primitive.ObjectID); ok {
		newReview.ID = insertedID
	}

	return nil
}

func (s *Store) findByProduct(ctx context.Context, productID primitive.ObjectID) ([]*Review, error) {
	cursor, err := s.collection.Find(
		ctx,
		bson.M{"product": productID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to find reviews in review store: %w",
			err,
		)
	}
	defer cursor.Close(ctx)

	var reviews []*Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf(
			"failed to decode reviews in review store: %w",
			err,
		)
	}

	return reviews, nil
}

func (s *Store) findByProductAndUser(ctx context.Context, productID, userID primitive.ObjectID) (*Review, error) {
	var foundReview Review

	err := s.collection.FindOne(
		ctx,
		bson.M{
			"product": productID,
			"user":    userID,
		},
	).Decode(&foundReview)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, servererrors.ErrReviewNotFound
		}

		return nil, fmt.Errorf(
			"failed to find review in review store: %w",
			err,
		)
	}

	return &foundReview, nil
}

func (s *Store) findByID(ctx context.Context, reviewID primitive.ObjectID) (*Review, error) {
	var foundReview Review

	err := s.collection.FindOne(
		ctx,
		bson.M{"_id": reviewID},
	).Decode(&foundReview)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, servererrors.ErrReviewNotFound
		}

		return nil, fmt.Errorf(
			"failed to find review in review store: %w",
			err,
		)
	}

	return &foundReview, nil
}

func (s *Store) updateOne(ctx context.Context, reviewID primitive.ObjectID, fields bson.M) (*Review, error) {
	fields["updatedAt"] = time.Now()

	var updatedReview Review

	err := s.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": reviewID},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updatedReview)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, servererrors.ErrReviewNotFound
		}

		return nil, fmt.Errorf(
			"failed to update review in review store: %w",
			err,
		)
	}

	return &updatedReview, nil
}

func (s *Store) deleteOne(ctx context.Context, reviewID primitive.ObjectID) error {
	result, err := s.collection.DeleteOne(
		ctx,
		bson.M{"_id": reviewID},
	)
	if err != nil {
		return fmt.Errorf(
			"failed to delete review in review store: %w",
			err,
		)
	}

	if result.DeletedCount == 0 {
		return servererrors.ErrReviewNotFound
	}

	return nil
}
