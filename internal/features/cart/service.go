package cart

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tran-hoang-nhan/phone-shop/internal/servererrors"
)

type storer interface {
	findByUser(ctx context.Context, userID primitive.ObjectID) (*Cart, error)
	save(ctx context.Context, userCart *Cart) error
}

type Service struct {
	store storer
}

func NewService(store storer) *Service {
	return &Service{
		store: store,
	}
}

// getCart returns the user's cart, creating an empty one on first access.
func (s *Service) getCart(ctx context.Context, userID string) (*Cart, error) {
	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, servererrors.ErrUserNotFound
	}

	userCart, err := s.store.findByUser(ctx, uID)
	if err == nil {
		return userCart, nil
	}
	if !errors.Is(err, servererrors.ErrCartNotFound) {
		return nil, err
	}

	userCart = &Cart{
		User:  uID,
		Items: []CartItem{},
	}

	if err := s.store.save(ctx, userCart); err != nil {
		return nil, err
	}

	return userCart, nil
}

// addItem merges the quantity into an existing line or appends a new one.
// A missing quantity means one unit.
func (s *Service) addItem(ctx context.Context, userID string, newItem *AddCartItemRequest) (*Cart, error) {
	productID, err := primitive.ObjectIDFromHex(newItem.Product)
	if err != nil {
		return nil, servererrors.ErrProductNotFound
	}

	userCart, err := s.getCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	quantity := newItem.Quantity
	if quantity < 1 {
		quantity = 1
	}

	merged := false
	for i := range userCart.Items {
		if userCart.Items[i].Product == productID {
			userCart.Items[i].Quantity += quantity
			merged = true
			break
		}
	}

	if !merged {
		userCart.Items = append(userCart.Items, CartItem{
			Product:  productID,
			Name:     newItem.Name,
			Price:    newItem.Price,
			Image:    newItem.Image,
			Quantity: quantity,
		})
	}

	if err := s.store.save(ctx, userCart); err != nil {
		return nil, err
	}

	return userCart, nil
}

// updateItem sets a line's quantity; zero or less removes the line.
func (s *Service) updateItem(ctx context.Context, userID, productID string, quantity int) (*Cart, error) {
	pdID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, servererrors.ErrCartItemNotFound
	}

	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, servererrors.ErrUserNotFound
	}

	userCart, err := s.store.findByUser(ctx, uID)
	if err != nil {
		return nil, err
	}

	itemIdx := -1
	for i := range userCart.Items {
		if userCart.Items[i].Product == pdID {
			itemIdx = i
			break
		}
	}

	if itemIdx == -1 {
		return nil, servererrors.ErrCartItemNotFound
	}

	if quantity <= 0 {
		userCart.Items = append(
			userCart.Items[:itemIdx],
			userCart.Items[itemIdx+1:]...,
		)
	} else {
		userCart.Items[itemIdx].Quantity = quantity
	}

	if err := s.store.save(ctx, userCart); err != nil {
		return nil, err
	}

	return userCart, nil
}

func (s *Service) removeItem(ctx context.Context, userID, productID string) (*Cart, error) {
	pdID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, servererrors.ErrCartItemNotFound
	}

	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, servererrors.ErrUserNotFound
	}

	userCart, err := s.store.findByUser(ctx, uID)
	if err != nil {
		return nil, err
	}

	kept := userCart.Items[:0]
	for _, item := range userCart.Items {
		if item.Product != pdID {
			kept = append(kept, item)
		}
	}
	userCart.Items = kept

	if err := s.store.save(ctx, userCart); err != nil {
		return nil, err
	}

	return userCart, nil
}

// Clear empties the user's cart. The order feature calls this after a
// successful checkout.
func (s *Service) Clear(ctx context.Context, userID string) (*Cart, error) {
	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, servererrors.ErrUserNotFound
	}

	userCart, err := s.store.findByUser(ctx, uID)
	if err != nil {
		return nil, err
	}

	userCart.Items = []CartItem{}

	if err := s.store.save(ctx, userCart); err != nil {
		return nil, err
	}

	return userCart, nil
}
