package order

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
		collection: db.Collection("orders"),
	}
}

// EnsureIndexes backs the per-user order history and the verified-purchase
// lookup used by the review feature.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(
		ctx,
		[]mongo.IndexModel{
			{
				Keys: bson.D{
					{Key: "user", Value: 1},
					{Key: "createdAt", Value: -1},
				},
			},
			{
				Keys: bson.D{
					{Key: "user", Value: 1},
					{Key: "orderItems.product", Value: 1},
					{Key: "isPaid", Value: 1},
				},
			},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create order indexes: %w", err)
	}

	return nil
}

func (s *Store) createOne(ctx context.Context, newOrder *Order) error {
	now := time.Now()
	newOrder.CreatedAt = now
	newOrder.UpdatedAt = now

	result, err := s.collection.InsertOne(ctx, newOrder)
	if err != nil {
		return fmt.Errorf(
			"failed to insert order in order store: %w",
			err,
		)
	}

	newOrder.ID = result.InsertedID.(primitive.ObjectID)

	return nil
}

func (s *Store) findByID(ctx context.Context, orderID primitive.ObjectID) (*Order, error) {
	var foundOrder Order

	err := s.collection.FindOne(
		ctx,
		bson.M{"_id": orderID},
	).Decode(&foundOrder)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, servererrors.ErrOrderNotFound
		}

		return nil, fmt.Errorf(
			"failed to find order in order store: %w",
			err,
		)
	}

	return &foundOrder, nil
}

func (s *Store) findByUser(ctx context.Context, userID primitive.ObjectID) ([]*Order, error) {
	return s.findMany(ctx, bson.M{"user": userID})
}

func (s *Store) findAll(ctx context.Context) ([]*Order, error) {
	return s.findMany(ctx, bson.M{})
}

func (s *Store) findMany(ctx context.Context, filter bson.M) ([]*Order, error) {
	cursor, err := s.collection.Find(
		ctx,
		filter,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to find orders in order store: %w",
			err,
		)
	}
	defer cursor.Close(ctx)

	orders := []*Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf(
			"failed to decode orders in order store: %w",
			err,
		)
	}

	return orders, nil
}

func (s *Store) updateOne(ctx context.Context, orderID primitive.ObjectID, fields bson.M) (*Order, error) {
	fields["updatedAt"] = time.Now()

	var updatedOrder Order

	err := s.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": orderID},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updatedOrder)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, servererrors.ErrOrderNotFound
		}

		return nil, fmt.Errorf(
			"failed to update order in order store: %w",
			err,
		)
	}

	return &updatedOrder, nil
}

// deleteOne removes an order outright. Only the checkout compensation path
// uses this; cancelled orders stay on record.
func (s *Store) deleteOne(ctx context.Context, orderID primitive.ObjectID) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": orderID})
	if err != nil {
		return fmt.Errorf(
			"failed to delete order in order store: %w",
			err,
		)
	}

	if result.DeletedCount == 0 {
		return servererrors.ErrOrderNotFound
	}

	return nil
}

func (s *Store) hasPaidOrderWithProduct(ctx context.Context, userID, productID primitive.ObjectID) (bool, error) {
	count, err := s.collection.CountDocuments(
		ctx,
		bson.M{
			"user":               userID,
			"orderItems.product": productID,
			"isPaid":             true,
		},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, fmt.Errorf(
			"failed to count paid orders in order store: %w",
			err,
		)
	}

	return count > 0, nil
}
