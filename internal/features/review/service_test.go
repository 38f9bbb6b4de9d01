package review

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tran-hoang-nhan/phone-shop/internal/features/product"
	"github.com/tran-hoang-nhan/phone-shop/internal/servererrors"
)

type fakeReviewStore struct {
	reviews map[primitive.ObjectID]*Review
}

func newFakeReviewStore(reviews ...*Review) *fakeReviewStore {
	fs := &fakeReviewStore{reviews: map[primitive.ObjectID]*Review{}}
	for _, r := range reviews {
		fs.reviews[r.ID] = r
	}
	return fs
}

func (fs *fakeReviewStore) createOne(_ context.Context, newReview *Review) error {
	for _, r := range fs.reviews {
		if r.Product == newReview.Product && r.User == newReview.User {
			return servererrors.ErrReviewAlreadyExists
		}
	}
	newReview.ID = primitive.NewObjectID()
	fs.reviews[newReview.ID] = newReview
	return nil
}

func (fs *fakeReviewStore) findByProduct(_ context.Context, productID primitive.ObjectID) ([]*Review, error) {
	var found []*Review
	for _, r := range fs.reviews {
		if r.Product == productID {
			found = append(found, r)
		}
	}
	return found, nil
}

func (fs *fakeReviewStore) findByProductAndUser(_ context.Context, productID, userID primitive.ObjectID) (*Review, error) {
	for _, r := range fs.reviews {
		if r.Product == productID && r.User == userID {
			return r, nil
		}
	}
	return nil, servererrors.ErrReviewNotFound
}

func (fs *fakeReviewStore) findByID(_ context.Context, reviewID primitive.ObjectID) (*Review, error) {
	r, ok := fs.reviews[reviewID]
	if !ok {
		return nil, servererrors.ErrReviewNotFound
	}
	return r, nil
}

func (fs *fakeReviewStore) updateOne(_ context.Context, reviewID primitive.ObjectID, fields bson.M) (*Review, error) {
	r, ok := fs.reviews[reviewID]
	if !ok {
		return nil, servererrors.ErrReviewNotFound
	}
	if rating, ok := fields["rating"].(int); ok {
		r.Rating = rating
	}
	if title, ok := fields["title"].(string); ok {
		r.Title = title
	}
	if comment, ok := fields["comment"].(string); ok {
		r.Comment = comment
	}
	return r, nil
}

func (fs *fakeReviewStore) deleteOne(_ context.Context, reviewID primitive.ObjectID) error {
	if _, ok := fs.reviews[reviewID]; !ok {
		return servererrors.ErrReviewNotFound
	}
	delete(fs.reviews, reviewID)
	return nil
}

type fakeProductServicer struct {
	product *product.Product

	gotRating     float64
	gotNumReviews int
	setRatingCalls int
}

func (fp *fakeProductServicer) GetByID(_ context.Context, productID string) (*product.Product, error) {
	if fp.product == nil || fp.product.ID.Hex() != productID {
		return nil, servererrors.ErrProductNotFound
	}
	return fp.product, nil
}

func (fp *fakeProductServicer) SetRating(_ context.Context, _ string, rating float64, numReviews int) error {
	fp.gotRating = rating
	fp.gotNumReviews = numReviews
	fp.setRatingCalls++
	return nil
}

type fakeOrderServicer struct {
	hasPaidOrder bool
}

func (fo *fakeOrderServicer) HasPaidOrderWithProduct(_ context.Context, _, _ string) (bool, error) {
	return fo.hasPaidOrder, nil
}

func newTestService(store *fakeReviewStore, hasPaidOrder bool, p *product.Product) (*Service, *fakeProductServicer) {
	products := &fakeProductServicer{product: p}
	return NewService(
		store,
		products,
		&fakeOrderServicer{hasPaidOrder: hasPaidOrder},
	), products
}

func TestService_CreateReview(t *testing.T) {
	testProduct := &product.Product{ID: primitive.NewObjectID()}
	userID := primitive.NewObjectID()

	svc, products := newTestService(newFakeReviewStore(), true, testProduct)

	created, err := svc.createReview(
		context.Background(),
		testProduct.ID.Hex(),
		userID.Hex(),
		&CreateReviewRequest{
			Rating:  4,
			Title:   "solid phone",
			Comment: "battery could be better",
		},
	)
	require.NoError(t, err)

	assert.True(t, created.IsVerifiedPurchase)
	assert.Equal(t, 4.0, products.gotRating)
	assert.Equal(t, 1, products.gotNumReviews)
}

func TestService_CreateReview_NotVerifiedWithoutPaidOrder(t *testing.T) {
	testProduct := &product.Product{ID: primitive.NewObjectID()}
	svc, _ := newTestService(newFakeReviewStore(), false, testProduct)

	created, err := svc.createReview(
		context.Background(),
		testProduct.ID.Hex(),
		primitive.NewObjectID().Hex(),
		&CreateReviewRequest{Rating: 5, Title: "great", Comment: "love it"},
	)
	require.NoError(t, err)
	assert.False(t, created.IsVerifiedPurchase)
}

func TestService_CreateReview_DuplicateIsConflict(t *testing.T) {
	testProduct := &product.Product{ID: primitive.NewObjectID()}
	userID := primitive.NewObjectID()

	existing := &Review{
		ID:      primitive.NewObjectID(),
		Product: testProduct.ID,
		User:    userID,
		Rating:  5,
	}
	svc, products := newTestService(newFakeReviewStore(existing), true, testProduct)

	_, err := svc.createReview(
		context.Background(),
		testProduct.ID.Hex(),
		userID.Hex(),
		&CreateReviewRequest{Rating: 1, Title: "changed my mind", Comment: "nope"},
	)
	assert.ErrorIs(t, err, servererrors.ErrReviewAlreadyExists)

	// a rejected duplicate must leave the aggregate untouched
	assert.Zero(t, products.setRatingCalls)
}

func TestService_CreateReview_ProductMustExist(t *testing.T) {
	svc, _ := newTestService(newFakeReviewStore(), true, nil)

	_, err := svc.createReview(
		context.Background(),
		primitive.NewObjectID().Hex(),
		primitive.NewObjectID().Hex(),
		&CreateReviewRequest{Rating: 3, Title: "meh", Comment: "average"},
	)
	assert.ErrorIs(t, err, servererrors.ErrProductNotFound)
}

func TestService_RecomputeIsArithmeticMean(t *testing.T) {
	testProduct := &product.Product{ID: primitive.NewObjectID()}

	store := newFakeReviewStore(
		&Review{ID: primitive.NewObjectID(), Product: testProduct.ID, User: primitive.NewObjectID(), Rating: 5},
		&Review{ID: primitive.NewObjectID(), Product: testProduct.ID, User: primitive.NewObjectID(), Rating: 4},
	)
	svc, products := newTestService(store, true, testProduct)

	_, err := svc.createReview(
		context.Background(),
		testProduct.ID.Hex(),
		primitive.NewObjectID().Hex(),
		&CreateReviewRequest{Rating: 3, Title: "ok", Comment: "it works"},
	)
	require.NoError(t, err)

	assert.InDelta(t, 4.0, products.gotRating, 1e-9) // (5+4+3)/3
	assert.Equal(t, 3, products.gotNumReviews)
}

func TestService_UpdateReview_Authorization(t *testing.T) {
	testProduct := &product.Product{ID: primitive.NewObjectID()}
	author := primitive.NewObjectID()

	newRating := 2

	tests := []struct {
		name          string
		requesterID   string
		requesterRole string
		wantErr       error
	}{
		{
			name:          "author may update",
			requesterID:   author.Hex(),
			requesterRole: "user",
		},
		{
			name:          "admin may update",
			requesterID:   primitive.NewObjectID().Hex(),
			requesterRole: "admin",
		},
		{
			name:          "stranger may not",
			requesterID:   primitive.NewObjectID().Hex(),
			requesterRole: "user",
			wantErr:       servererrors.ErrNotResourceOwner,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing := &Review{
				ID:      primitive.NewObjectID(),
				Product: testProduct.ID,
				User:    author,
				Rating:  5,
			}
			svc, _ := newTestService(newFakeReviewStore(existing), true, testProduct)

			_, err := svc.updateReview(
				context.Background(),
				existing.ID.Hex(),
				tt.requesterID,
				tt.requesterRole,
				&UpdateReviewRequest{Rating: &newRating},
			)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestService_DeleteLastReviewResetsRating(t *testing.T) {
	testProduct := &product.Product{ID: primitive.NewObjectID()}
	author := primitive.NewObjectID()

	existing := &Review{
		ID:      primitive.NewObjectID(),
		Product: testProduct.ID,
		User:    author,
		Rating:  5,
	}
	svc, products := newTestService(newFakeReviewStore(existing), true, testProduct)

	err := svc.deleteReview(
		context.Background(),
		existing.ID.Hex(),
		author.Hex(),
		"user",
	)
	require.NoError(t, err)

	assert.Zero(t, products.gotRating)
	assert.Zero(t, products.gotNumReviews)
	assert.Equal(t, 1, products.setRatingCalls)
}
