package product

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tran-hoang-nhan/phone-shop/internal/servererrors"
)

type fakeStore struct {
	products map[primitive.ObjectID]*Product

	lastUpdateFields bson.M
}

func newFakeStore(products ...*Product) *fakeStore {
	fs := &fakeStore{
		products: map[primitive.ObjectID]*Product{},
	}
	for _, p := range products {
		fs.products[p.ID] = p
	}
	return fs
}

func (fs *fakeStore) createOne(_ context.Context, newProduct *Product) error {
	newProduct.ID = primitive.NewObjectID()
	fs.products[newProduct.ID] = newProduct
	return nil
}

func (fs *fakeStore) findAll(_ context.Context, _ *ListQuery) ([]*Product, int64, error) {
	var all []*Product
	for _, p := range fs.products {
		all = append(all, p)
	}
	return all, int64(len(all)), nil
}

func (fs *fakeStore) findByID(_ context.Context, productID primitive.ObjectID) (*Product, error) {
	p, ok := fs.products[productID]
	if !ok {
		return nil, servererrors.ErrProductNotFound
	}
	return p, nil
}

func (fs *fakeStore) updateOne(_ context.Context, productID primitive.ObjectID, fields bson.M) (*Product, error) {
	p, ok := fs.products[productID]
	if !ok {
		return nil, servererrors.ErrProductNotFound
	}
	fs.lastUpdateFields = fields
	return p, nil
}

func (fs *fakeStore) deleteOne(_ context.Context, productID primitive.ObjectID) error {
	if _, ok := fs.products[productID]; !ok {
		return servererrors.ErrProductNotFound
	}
	delete(fs.products, productID)
	return nil
}

func (fs *fakeStore) updateRating(_ context.Context, productID primitive.ObjectID, rating float64, numReviews int) error {
	p, ok := fs.products[productID]
	if !ok {
		return servererrors.ErrProductNotFound
	}
	p.Rating = rating
	p.NumReviews = numReviews
	return nil
}

func (fs *fakeStore) decrementStock(_ context.Context, productID primitive.ObjectID, quantity int) (*Product, error) {
	p, ok := fs.products[productID]
	if !ok {
		return nil, servererrors.ErrProductNotFound
	}
	if p.Stock < quantity {
		return nil, servererrors.ErrInsufficientStock
	}
	p.Stock -= quantity
	return p, nil
}

func (fs *fakeStore) incrementStock(_ context.Context, productID primitive.ObjectID, quantity int) (*Product, error) {
	p, ok := fs.products[productID]
	if !ok {
		return nil, servererrors.ErrProductNotFound
	}
	p.Stock += quantity
	return p, nil
}

func TestService_CreateProduct(t *testing.T) {
	fs := newFakeStore()
	svc := NewService(fs)

	creatorID := primitive.NewObjectID()

	created, err := svc.createProduct(
		context.Background(),
		&CreateProductRequest{
			Title:       "  iPhone 15 Pro  ",
			Description: "the latest flagship phone",
			Category:    "smartphones",
			Price:       999,
			Stock:       10,
		},
		creatorID.Hex(),
	)
	require.NoError(t, err)

	assert.Equal(t, "iPhone 15 Pro", created.Title)
	assert.Equal(t, creatorID, created.CreatedBy)
	assert.False(t, created.ID.IsZero())
}

func TestService_GetByID_InvalidIDIsNotFound(t *testing.T) {
	svc := NewService(newFakeStore())

	_, err := svc.GetByID(context.Background(), "not-a-hex-id")
	assert.ErrorIs(t, err, servererrors.ErrProductNotFound)
}

func TestService_UpdateProduct_PartialFields(t *testing.T) {
	existing := &Product{
		ID:    primitive.NewObjectID(),
		Title: "iPhone 15",
		Price: 999,
	}
	fs := newFakeStore(existing)
	svc := NewService(fs)

	newPrice := 899.0

	_, err := svc.updateProduct(
		context.Background(),
		existing.ID.Hex(),
		&UpdateProductRequest{Price: &newPrice},
	)
	require.NoError(t, err)

	// only the submitted field may be written
	assert.Equal(t, bson.M{"price": 899.0}, fs.lastUpdateFields)
}

func TestService_DecrementStock(t *testing.T) {
	existing := &Product{
		ID:    primitive.NewObjectID(),
		Title: "iPhone 15",
		Stock: 5,
	}
	fs := newFakeStore(existing)
	svc := NewService(fs)

	updated, err := svc.DecrementStock(context.Background(), existing.ID.Hex(), 3)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Stock)

	_, err = svc.DecrementStock(context.Background(), existing.ID.Hex(), 3)
	assert.ErrorIs(t, err, servererrors.ErrInsufficientStock)
	assert.Equal(t, 2, existing.Stock, "failed decrement must not mutate stock")
}
