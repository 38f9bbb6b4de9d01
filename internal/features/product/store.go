package product

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
		collection: db.Collection("products"),
	}
}

// EnsureIndexes creates the text index backing free-text search plus the
// common filter/sort indexes. Safe to call on every startup.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(
		ctx,
		[]mongo.IndexModel{
			{
				Keys: bson.D{
					{Key: "title", Value: "text"},
					{Key: "brand", Value: "text"},
					{Key: "description", Value: "text"},
				},
			},
			{
				Keys: bson.D{
					{Key: "brand", Value: 1},
					{Key: "category", Value: 1},
				},
			},
			{
				Keys: bson.D{{Key: "price", Value: 1}},
			},
			{
				Keys: bson.D{{Key: "rating", Value: -1}},
			},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create product indexes: %w", err)
	}

	return nil
}

func (s *Store) createOne(ctx context.Context, newProduct *Product) error {
	now := time.Now()
	newProduct.CreatedAt = now
	newProduct.UpdatedAt = now

	result, err := s.collection.InsertOne(ctx, newProduct)
	if err != nil {
		return fmt.Errorf("failed to insert product in product store: %w", err)
	}

	if insertedID, ok := result.InsertedID.(primitive.ObjectID); ok {
		newProduct.ID = insertedID
	}

	return nil
}

// Import bulk-inserts fixture products. The seed command is the only caller;
// the API path goes through createOne.
func (s *Store) Import(ctx context.Context, products []*Product) error {
	now := time.Now()

	docs := make([]any, 0, len(products))
	for _, p := range products {
		p.CreatedAt = now
		p.UpdatedAt = now
		docs = append(docs, p)
	}

	if _, err := s.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to import products in product store: %w", err)
	}

	return nil
}

// Drop clears the collection so a re-seed starts from scratch.
func (s *Store) Drop(ctx context.Context) error {
	if err := s.collection.Drop(ctx); err != nil {
		return fmt.Errorf("failed to drop products in product store: %w", err)
	}

	return nil
}

func (s *Store) findAll(ctx context.Context, query *ListQuery) ([]*Product, int64, error) {
	total, err := s.collection.CountDocuments(ctx, query.Filter)
	if err != nil {
		return nil, 0, fmt.Errorf(
			"failed to count products in product store: %w",
			err,
		)
	}

	findOpts := options.Find().
		SetSort(query.Sort).
		SetSkip(query.Skip).
		SetLimit(int64(query.Limit))

	if query.Projection != nil {
		findOpts.SetProjection(query.Projection)
	}

	cursor, err := s.collection.Find(ctx, query.Filter, findOpts)
	if err != nil {
		return nil, 0, fmt.Errorf(
			"failed to find products in product store: %w",
			err,
		)
	}
	defer cursor.Close(ctx)

	var products []*Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, fmt.Errorf(
			"failed to decode products in product store: %w",
			err,
		)
	}

	return products, total, nil
}

func (s *Store) findByID(ctx context.Context, productID primitive.ObjectID) (*Product, error) {
	var foundProduct Product

	err := s.collection.FindOne(
		ctx,
		bson.M{"_id": productID},
	).Decode(&foundProduct)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, servererrors.ErrProductNotFound
		}

		return nil, fmt.Errorf(
			"failed to find product in product store: %w",
			err,
		)
	}

	return &foundProduct, nil
}

func (s *Store) updateOne(ctx context.Context, productID primitive.ObjectID, fields bson.M) (*Product, error) {
	fields["updatedAt"] = time.Now()

	var updatedProduct Product

	err := s.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": productID},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updatedProduct)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, servererrors.ErrProductNotFound
		}

		return nil, fmt.Errorf(
			"failed to update product in product store: %w",
			err,
		)
	}

	return &updatedProduct, nil
}

func (s *Store) deleteOne(ctx context.Context, productID primitive.ObjectID) error {
	result, err := s.collection.DeleteOne(
		ctx,
		bson.M{"_id": productID},
	)
	if err != nil {
		return fmt.Errorf(
			"failed to delete product in product store: %w",
			err,
		)
	}

	if result.DeletedCount == 0 {
		return servererrors.ErrProductNotFound
	}

	return nil
}

func (s *Store) updateRating(ctx context.Context, productID primitive.ObjectID, rating float64, numReviews int) error {
	result, err := s.collection.UpdateOne(
		ctx,
		bson.M{"_id": productID},
		bson.M{"$set": bson.M{
			"rating":     rating,
			"numReviews": numReviews,
			"updatedAt":  time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf(
			"failed to update product rating in product store: %w",
			err,
		)
	}

	if result.MatchedCount == 0 {
		return servererrors.ErrProductNotFound
	}

	return nil
}

// decrementStock applies "decrement stock by qty where stock >= qty" as one
// conditional update so two concurrent orders cannot both take the last
// units. Zero matched documents means the product is gone or the stock is
// short; the caller distinguishes the two with a follow-up read.
func (s *Store) decrementStock(ctx context.Context, productID primitive.ObjectID, quantity int) (*Product, error) {
	var updatedProduct Product

	err := s.collection.FindOneAndUpdate(
		ctx,
		bson.M{
			"_id":   productID,
			"stock": bson.M{"$gte": quantity},
		},
		bson.M{
			"$inc": bson.M{"stock": -quantity},
			"$set": bson.M{"updatedAt": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updatedProduct)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			if _, findErr := s.findByID(ctx, productID); findErr != nil {
				return nil, findErr
			}

			return nil, servererrors.ErrInsufficientStock
		}

		return nil, fmt.Errorf(
			"failed to decrement stock in product store: %w",
			err,
		)
	}

	return &updatedProduct, nil
}

func (s *Store) incrementStock(ctx context.Context, productID primitive.ObjectID, quantity int) (*Product, error) {
	var updatedProduct Product

	err := s.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": productID},
		bson.M{
			"$inc": bson.M{"stock": quantity},
			"$set": bson.M{"updatedAt": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updatedProduct)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, servererrors.ErrProductNotFound
		}

		return nil, fmt.Errorf(
			"failed to increment stock in product store: %w",
			err,
		)
	}

	return &updatedProduct, nil
}
