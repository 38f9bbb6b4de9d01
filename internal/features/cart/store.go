package cart

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
		collection: db.Collection("carts"),
	}
}

// EnsureIndexes makes the per-user cart lookup a covered point query and
// guarantees one cart document per user.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(
		ctx,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "user", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create cart indexes: %w", err)
	}

	return nil
}

func (s *Store) findByUser(ctx context.Context, userID primitive.ObjectID) (*Cart, error) {
	var foundCart Cart

	err := s.collection.FindOne(
		ctx,
		bson.M{"user": userID},
	).Decode(&foundCart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, servererrors.ErrCartNotFound
		}

		return nil, fmt.Errorf(
			"failed to find cart in cart store: %w",
			err,
		)
	}

	return &foundCart, nil
}

// save upserts the whole cart document keyed by user. The cart is small and
// owned by a single user, so last-write-wins is acceptable here.
func (s *Store) save(ctx context.Context, userCart *Cart) error {
	now := time.Now()
	if userCart.CreatedAt.IsZero() {
		userCart.CreatedAt = now
	}
	userCart.UpdatedAt = now

	_, err := s.collection.UpdateOne(
		ctx,
		bson.M{"user": userCart.User},
		bson.M{"$set": bson.M{
			"user":      userCart.User,
			"items":     userCart.Items,
			"createdAt": userCart.CreatedAt,
			"updatedAt": userCart.UpdatedAt,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save cart in cart store: %w", err)
	}

	return nil
}
