package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tran-hoang-nhan/phone-shop/internal/servererrors"
)

type fakeCartStore struct {
	carts map[primitive.ObjectID]*Cart
}

func newFakeCartStore(carts ...*Cart) *fakeCartStore {
	fs := &fakeCartStore{carts: map[primitive.ObjectID]*Cart{}}
	for _, c := range carts {
		fs.carts[c.User] = c
	}
	return fs
}

func (fs *fakeCartStore) findByUser(_ context.Context, userID primitive.ObjectID) (*Cart, error) {
	c, ok := fs.carts[userID]
	if !ok {
		return nil, servererrors.ErrCartNotFound
	}
	return c, nil
}

func (fs *fakeCartStore) save(_ context.Context, userCart *Cart) error {
	fs.carts[userCart.User] = userCart
	return nil
}

func TestService_GetCart_CreatesEmptyCartOnFirstAccess(t *testing.T) {
	svc := NewService(newFakeCartStore())
	userID := primitive.NewObjectID()

	userCart, err := svc.getCart(context.Background(), userID.Hex())
	require.NoError(t, err)

	assert.Equal(t, userID, userCart.User)
	assert.Empty(t, userCart.Items)
}

func TestService_AddItem(t *testing.T) {
	svc := NewService(newFakeCartStore())
	userID := primitive.NewObjectID()
	productID := primitive.NewObjectID()

	item := &AddCartItemRequest{
		Product:  productID.Hex(),
		Name:     "iPhone 15",
		Price:    999,
		Quantity: 2,
	}

	userCart, err := svc.addItem(context.Background(), userID.Hex(), item)
	require.NoError(t, err)
	require.Len(t, userCart.Items, 1)
	assert.Equal(t, 2, userCart.Items[0].Quantity)

	// adding the same product merges quantities instead of duplicating
	userCart, err = svc.addItem(context.Background(), userID.Hex(), item)
	require.NoError(t, err)
	require.Len(t, userCart.Items, 1)
	assert.Equal(t, 4, userCart.Items[0].Quantity)
}

func TestService_AddItem_MissingQuantityMeansOne(t *testing.T) {
	svc := NewService(newFakeCartStore())

	userCart, err := svc.addItem(
		context.Background(),
		primitive.NewObjectID().Hex(),
		&AddCartItemRequest{
			Product: primitive.NewObjectID().Hex(),
			Name:    "charger",
			Price:   19,
		},
	)
	require.NoError(t, err)
	require.Len(t, userCart.Items, 1)
	assert.Equal(t, 1, userCart.Items[0].Quantity)
}

func TestService_UpdateItem(t *testing.T) {
	userID := primitive.NewObjectID()
	productID := primitive.NewObjectID()

	existing := &Cart{
		User: userID,
		Items: []CartItem{
			{Product: productID, Name: "iPhone 15", Price: 999, Quantity: 2},
		},
	}
	svc := NewService(newFakeCartStore(existing))

	userCart, err := svc.updateItem(context.Background(), userID.Hex(), productID.Hex(), 5)
	require.NoError(t, err)
	assert.Equal(t, 5, userCart.Items[0].Quantity)

	// zero quantity removes the line entirely
	userCart, err = svc.updateItem(context.Background(), userID.Hex(), productID.Hex(), 0)
	require.NoError(t, err)
	assert.Empty(t, userCart.Items)
}

func TestService_UpdateItem_MissingLineIsNotFound(t *testing.T) {
	userID := primitive.NewObjectID()

	svc := NewService(newFakeCartStore(&Cart{User: userID, Items: []CartItem{}}))

	_, err := svc.updateItem(
		context.Background(),
		userID.Hex(),
		primitive.NewObjectID().Hex(),
		3,
	)
	assert.ErrorIs(t, err, servererrors.ErrCartItemNotFound)
}

func TestService_RemoveItem(t *testing.T) {
	userID := primitive.NewObjectID()
	keepID := primitive.NewObjectID()
	dropID := primitive.NewObjectID()

	existing := &Cart{
		User: userID,
		Items: []CartItem{
			{Product: keepID, Name: "iPhone 15", Quantity: 1},
			{Product: dropID, Name: "case", Quantity: 2},
		},
	}
	svc := NewService(newFakeCartStore(existing))

	userCart, err := svc.removeItem(context.Background(), userID.Hex(), dropID.Hex())
	require.NoError(t, err)
	require.Len(t, userCart.Items, 1)
	assert.Equal(t, keepID, userCart.Items[0].Product)
}

func TestService_Clear(t *testing.T) {
	userID := primitive.NewObjectID()

	existing := &Cart{
		User: userID,
		Items: []CartItem{
			{Product: primitive.NewObjectID(), Name: "iPhone 15", Quantity: 1},
		},
	}
	svc := NewService(newFakeCartStore(existing))

	userCart, err := svc.Clear(context.Background(), userID.Hex())
	require.NoError(t, err)
	assert.Empty(t, userCart.Items)
}

func TestService_Clear_NoCartIsNotFound(t *testing.T) {
	svc := NewService(newFakeCartStore())

	_, err := svc.Clear(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, servererrors.ErrCartNotFound)
}
