package product

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tran-hoang-nhan/phone-shop/internal/servererrors"
)

type Storer interface {
	createOne(ctx context.Context, newProduct *Product) error
	findAll(ctx context.Context, query *ListQuery) ([]*Product, int64, error)
	findByID(ctx context.Context, productID primitive.ObjectID) (*Product, error)
	updateOne(ctx context.Context, productID primitive.ObjectID, fields bson.M) (*Product, error)
	deleteOne(ctx context.Context, productID primitive.ObjectID) error
	updateRating(ctx context.Context, productID primitive.ObjectID, rating float64, numReviews int) error
	decrementStock(ctx context.Context, productID primitive.ObjectID, quantity int) (*Product, error)
	incrementStock(ctx context.Context, productID primitive.ObjectID, quantity int) (*Product, error)
}

type Service struct {
	store Storer
}

func NewService(store Storer) *Service {
	return &Service{
		store: store,
	}
}

func (s *Service) createProduct(ctx context.Context, newProduct *CreateProductRequest, createdBy string) (*Product, error) {
	creatorID, _ := primitive.ObjectIDFromHex(createdBy)

	toInsert := &Product{
		Title:              strings.TrimSpace(newProduct.Title),
		Description:        strings.TrimSpace(newProduct.Description),
		Category:           newProduct.Category,
		Brand:              newProduct.Brand,
		SKU:                newProduct.SKU,
		Price:              newProduct.Price,
		DiscountPercentage: newProduct.DiscountPercentage,
		Stock:              newProduct.Stock,
		Tags:               newProduct.Tags,
		Images:             newProduct.Images,
		Thumbnail:          newProduct.Thumbnail,
		CreatedBy:          creatorID,
	}

	if err := s.store.createOne(ctx, toInsert); err != nil {
		return nil, err
	}

	return toInsert, nil
}

func (s *Service) getAllProducts(ctx context.Context, query *ListQuery) ([]*Product, int64, error) {
	return s.store.findAll(ctx, query)
}

// GetByID is also the cross-feature product lookup used by the review and
// order features. An id that is not a valid object id maps to not-found, the
// same answer the store would give.
func (s *Service) GetByID(ctx context.Context, productID string) (*Product, error) {
	id, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, servererrors.ErrProductNotFound
	}

	return s.store.findByID(ctx, id)
}

func (s *Service) updateProduct(ctx context.Context, productID string, updates *UpdateProductRequest) (*Product, error) {
	id, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, servererrors.ErrProductNotFound
	}

	fields := bson.M{}

	if updates.Title != nil {
		fields["title"] = strings.TrimSpace(*updates.Title)
	}
	if updates.Description != nil {
		fields["description"] = strings.TrimSpace(*updates.Description)
	}
	if updates.Category != nil {
		fields["category"] = *updates.Category
	}
	if updates.Brand != nil {
		fields["brand"] = *updates.Brand
	}
	if updates.SKU != nil {
		fields["sku"] = *updates.SKU
	}
	if updates.Price != nil {
		fields["price"] = *updates.Price
	}
	if updates.DiscountPercentage != nil {
		fields["discountPercentage"] = *updates.DiscountPercentage
	}
	if updates.Stock != nil {
		fields["stock"] = *updates.Stock
	}
	if updates.Tags != nil {
		fields["tags"] = updates.Tags
	}
	if updates.Images != nil {
		fields["images"] = updates.Images
	}
	if updates.Thumbnail != nil {
		fields["thumbnail"] = *updates.Thumbnail
	}

	return s.store.updateOne(ctx, id, fields)
}

func (s *Service) deleteProduct(ctx context.Context, productID string) error {
	id, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return servererrors.ErrProductNotFound
	}

	return s.store.deleteOne(ctx, id)
}

// SetRating stores the recomputed aggregate rating for a product. Called by
// the review feature after every review mutation.
func (s *Service) SetRating(ctx context.Context, productID string, rating float64, numReviews int) error {
	id, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return servererrors.ErrProductNotFound
	}

	return s.store.updateRating(ctx, id, rating, numReviews)
}

// DecrementStock takes quantity units off a product's stock, failing with
// servererrors.ErrInsufficientStock when fewer units remain.
func (s *Service) DecrementStock(ctx context.Context, productID string, quantity int) (*Product, error) {
	id, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, servererrors.ErrProductNotFound
	}

	return s.store.decrementStock(ctx, id, quantity)
}

// IncrementStock puts quantity units back, used when an order is cancelled.
func (s *Service) IncrementStock(ctx context.Context, productID string, quantity int) (*Product, error) {
	id, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, servererrors.ErrProductNotFound
	}

	return s.store.incrementStock(ctx, id, quantity)
}
