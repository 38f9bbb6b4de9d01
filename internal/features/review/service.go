package review

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tran-hoang-nhan/phone-shop/internal/features/product"
	"github.com/tran-hoang-nhan/phone-shop/internal/servererrors"
)

type storer interface {
	createOne(ctx context.Context, newReview *Review) error
	findByProduct(ctx context.Context, productID primitive.ObjectID) ([]*Review, error)
	findByProductAndUser(ctx context.Context, productID, userID primitive.ObjectID) (*Review, error)
	findByID(ctx context.Context, reviewID primitive.ObjectID) (*Review, error)
	updateOne(ctx context.Context, reviewID primitive.ObjectID, fields bson.M) (*Review, error)
	deleteOne(ctx context.Context, reviewID primitive.ObjectID) error
}

type productServicer interface {
	GetByID(ctx context.Context, productID string) (*product.Product, error)
	SetRating(ctx context.Context, productID string, rating float64, numReviews int) error
}

type orderServicer interface {
	HasPaidOrderWithProduct(ctx context.Context, userID, productID string) (bool, error)
}

type Service struct {
	store    storer
	products productServicer
	orders   orderServicer
}

func NewService(store storer, productService productServicer, orderService orderServicer) *Service {
	return &Service{
		store:    store,
		products: productService,
		orders:   orderService,
	}
}

func (s *Service) getProductReviews(ctx context.Context, productID string) ([]*Review, error) {
	id, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, servererrors.ErrProductNotFound
	}

	return s.store.findByProduct(ctx, id)
}

func (s *Service) createReview(ctx context.Context, productID, userID string, newReview *CreateReviewRequest) (*Review, error) {
	pdID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, servererrors.ErrProductNotFound
	}

	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, servererrors.ErrUserNotFound
	}

	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	_, err = s.store.findByProductAndUser(ctx, pdID, uID)
	if err == nil {
		return nil, servererrors.ErrReviewAlreadyExists
	}
	if !errors.Is(err, servererrors.ErrReviewNotFound) {
		return nil, err
	}

	isVerified, err := s.orders.HasPaidOrderWithProduct(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	toInsert := &Review{
		Product:            pdID,
		User:               uID,
		Rating:             newReview.Rating,
		Title:              newReview.Title,
		Comment:            newReview.Comment,
		IsVerifiedPurchase: isVerified,
	}

	if err := s.store.createOne(ctx, toInsert); err != nil {
		return nil, err
	}

	if err := s.recomputeProductRating(ctx, pdID); err != nil {
		return nil, err
	}

	return toInsert, nil
}

func (s *Service) updateReview(ctx context.Context, reviewID, requesterID, requesterRole string, updates *UpdateReviewRequest) (*Review, error) {
	id, err := primitive.ObjectIDFromHex(reviewID)
	if err != nil {
		return nil, servererrors.ErrReviewNotFound
	}

	foundReview, err := s.store.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !canMutate(foundReview, requesterID, requesterRole) {
		return nil, servererrors.ErrNotResourceOwner
	}

	fields := bson.M{}
	if updates.Rating != nil {
		fields["rating"] = *updates.Rating
	}
	if updates.Title != nil {
		fields["title"] = *updates.Title
	}
	if updates.Comment != nil {
		fields["comment"] = *updates.Comment
	}

	updatedReview, err := s.store.updateOne(ctx, id, fields)
	if err != nil {
		return nil, err
	}

	if err := s.recomputeProductRating(ctx, foundReview.Product); err != nil {
		return nil, err
	}

	return updatedReview, nil
}

func (s *Service) deleteReview(ctx context.Context, reviewID, requesterID, requesterRole string) error {
	id, err := primitive.ObjectIDFromHex(reviewID)
	if err != nil {
		return servererrors.ErrReviewNotFound
	}

	foundReview, err := s.store.findByID(ctx, id)
	if err != nil {
		return err
	}

	if !canMutate(foundReview, requesterID, requesterRole) {
		return servererrors.ErrNotResourceOwner
	}

	if err := s.store.deleteOne(ctx, id); err != nil {
		return err
	}

	return s.recomputeProductRating(ctx, foundReview.Product)
}

// canMutate allows the review's author and admins.
func canMutate(r *Review, requesterID, requesterRole string) bool {
	return r.User.Hex() == requesterID || requesterRole == "admin"
}

// recomputeProductRating refetches the product's full review set and stores
// the arithmetic mean. O(n) per mutation, which is fine at this scale.
func (s *Service) recomputeProductRating(ctx context.Context, productID primitive.ObjectID) error {
	reviews, err := s.store.findByProduct(ctx, productID)
	if err != nil {
		return err
	}

	// the last review was deleted; reset rather than divide by zero
	if len(reviews) == 0 {
		return s.products.SetRating(ctx, productID.Hex(), 0, 0)
	}

	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}

	mean := float64(sum) / float64(len(reviews))

	return s.products.SetRating(ctx, productID.Hex(), mean, len(reviews))
}
