package order

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tran-hoang-nhan/phone-shop/internal/eventengine"
	"github.com/tran-hoang-nhan/phone-shop/internal/eventengine/event"
	"github.com/tran-hoang-nhan/phone-shop/internal/features/cart"
	"github.com/tran-hoang-nhan/phone-shop/internal/features/product"
	"github.com/tran-hoang-nhan/phone-shop/internal/servererrors"
)

type storer interface {
	createOne(ctx context.Context, newOrder *Order) error
	findByID(ctx context.Context, orderID primitive.ObjectID) (*Order, error)
	findByUser(ctx context.Context, userID primitive.ObjectID) ([]*Order, error)
	findAll(ctx context.Context) ([]*Order, error)
	updateOne(ctx context.Context, orderID primitive.ObjectID, fields bson.M) (*Order, error)
	deleteOne(ctx context.Context, orderID primitive.ObjectID) error
	hasPaidOrderWithProduct(ctx context.Context, userID, productID primitive.ObjectID) (bool, error)
}

type productServicer interface {
	GetByID(ctx context.Context, productID string) (*product.Product, error)
	DecrementStock(ctx context.Context, productID string, quantity int) (*product.Product, error)
	IncrementStock(ctx context.Context, productID string, quantity int) (*product.Product, error)
}

type cartClearer interface {
	Clear(ctx context.Context, userID string) (*cart.Cart, error)
}

type Service struct {
	store          storer
	productService productServicer
	cartService    cartClearer
	eventEngine    eventengine.RegisterPublisher
}

func NewService(
	store storer,
	productService productServicer,
	cartService cartClearer,
	eventEngine eventengine.RegisterPublisher,
) *Service {
	eventEngine.RegisterEvents(
		event.OrderPlacedEventName,
		event.OrderCancelledEventName,
	)

	return &Service{
		store:          store,
		productService: productService,
		cartService:    cartService,
		eventEngine:    eventEngine,
	}
}

// createOrder places an order for the cart-derived line items.
//
// Every line item is checked against the catalog before anything is written;
// a missing product or short stock fails the whole order. The stock decrement
// itself is a conditional update (stock >= quantity), so a concurrent order
// that wins the race leaves this one rejected. If a decrement loses after some
// items were already applied, those are put back and the order record is
// deleted, keeping the operation all-or-nothing.
func (s *Service) createOrder(ctx context.Context, userID string, newOrder *CreateOrderRequest) (*Order, error) {
	if len(newOrder.OrderItems) == 0 {
		return nil, servererrors.ErrEmptyOrder
	}

	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, servererrors.ErrUserNotFound
	}

	orderItems := make([]OrderItem, 0, len(newOrder.OrderItems))
	for _, item := range newOrder.OrderItems {
		foundProduct, err := s.productService.GetByID(ctx, item.Product)
		if err != nil {
			return nil, err
		}

		if foundProduct.Stock < item.Quantity {
			return nil, fmt.Errorf(
				"%w: %q has %d left, %d requested",
				servererrors.ErrInsufficientStock,
				foundProduct.Title,
				foundProduct.Stock,
				item.Quantity,
			)
		}

		pdID, _ := primitive.ObjectIDFromHex(item.Product)
		orderItems = append(orderItems, OrderItem{
			Product:  pdID,
			Name:     item.Name,
			Price:    item.Price,
			Image:    item.Image,
			Quantity: item.Quantity,
		})
	}

	toInsert := &Order{
		User:       uID,
		OrderItems: orderItems,
		ShippingAddress: ShippingAddress{
			Address:    newOrder.ShippingAddress.Address,
			City:       newOrder.ShippingAddress.City,
			PostalCode: newOrder.ShippingAddress.PostalCode,
			Country:    newOrder.ShippingAddress.Country,
		},
		PaymentMethod: newOrder.PaymentMethod,
		ItemsPrice:    newOrder.ItemsPrice,
		TaxPrice:      newOrder.TaxPrice,
		ShippingPrice: newOrder.ShippingPrice,
		TotalPrice:    newOrder.TotalPrice,
		Status:        StatusPending,
	}

	if err := s.store.createOne(ctx, toInsert); err != nil {
		return nil, err
	}

	stockChanges := make([]event.StockChange, 0, len(orderItems))
	for i, item := range orderItems {
		updatedProduct, err := s.productService.DecrementStock(
			ctx,
			item.Product.Hex(),
			item.Quantity,
		)
		if err != nil {
			s.compensate(ctx, toInsert.ID, orderItems[:i])
			return nil, err
		}

		stockChanges = append(stockChanges, event.StockChange{
			ProductID:      item.Product.Hex(),
			Title:          item.Name,
			Quantity:       item.Quantity,
			RemainingStock: updatedProduct.Stock,
		})
	}

	if _, err := s.cartService.Clear(ctx, userID); err != nil {
		log.Printf(
			"failed to clear cart for user '%v' after checkout: %v\n",
			userID,
			err,
		)
	}

	if err := s.eventEngine.Publish(&event.Event{
		Name: event.OrderPlacedEventName,
		Payload: &event.OrderPlacedEvent{
			OrderID:      toInsert.ID.Hex(),
			UserID:       userID,
			StockChanges: stockChanges,
		},
	}); err != nil {
		log.Println(err)
	}

	return toInsert, nil
}

// compensate puts back stock for the line items that were already decremented
// and removes the half-placed order record.
func (s *Service) compensate(ctx context.Context, orderID primitive.ObjectID, appliedItems []OrderItem) {
	for _, item := range appliedItems {
		if _, err := s.productService.IncrementStock(
			ctx,
			item.Product.Hex(),
			item.Quantity,
		); err != nil {
			log.Printf(
				"failed to restore stock for product '%v' while rolling back order '%v': %v\n",
				item.Product.Hex(),
				orderID.Hex(),
				err,
			)
		}
	}

	if err := s.store.deleteOne(ctx, orderID); err != nil {
		log.Printf(
			"failed to delete order '%v' during rollback: %v\n",
			orderID.Hex(),
			err,
		)
	}
}

func (s *Service) getOrderByID(ctx context.Context, orderID, requesterID, requesterRole string) (*Order, error) {
	oID, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, servererrors.ErrOrderNotFound
	}

	foundOrder, err := s.store.findByID(ctx, oID)
	if err != nil {
		return nil, err
	}

	if foundOrder.User.Hex() != requesterID && requesterRole != "admin" {
		return nil, servererrors.ErrNotResourceOwner
	}

	return foundOrder, nil
}

func (s *Service) getMyOrders(ctx context.Context, userID string) ([]*Order, error) {
	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, servererrors.ErrUserNotFound
	}

	return s.store.findByUser(ctx, uID)
}

func (s *Service) getAllOrders(ctx context.Context) ([]*Order, error) {
	return s.store.findAll(ctx)
}

// payOrder records the simulated gateway result on the order. Only the owner
// may pay; a missing transaction id gets one generated here.
func (s *Service) payOrder(ctx context.Context, orderID, requesterID string, payment *PayOrderRequest) (*Order, error) {
	oID, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, servererrors.ErrOrderNotFound
	}

	foundOrder, err := s.store.findByID(ctx, oID)
	if err != nil {
		return nil, err
	}

	if foundOrder.User.Hex() != requesterID {
		return nil, servererrors.ErrNotResourceOwner
	}

	if foundOrder.Status == StatusCancelled {
		return nil, fmt.Errorf(
			"%w: cannot pay a cancelled order",
			servererrors.ErrInvalidOrderStatus,
		)
	}

	transactionID := payment.TransactionID
	if transactionID == "" {
		transactionID = uuid.NewString()
	}

	paymentStatus := payment.Status
	if paymentStatus == "" {
		paymentStatus = "COMPLETED"
	}

	return s.store.updateOne(ctx, oID, bson.M{
		"isPaid": true,
		"paidAt": nowUTC(),
		"status": StatusProcessing,
		"paymentResult": &PaymentResult{
			TransactionID: transactionID,
			Status:        paymentStatus,
			UpdateTime:    payment.UpdateTime,
			EmailAddress:  payment.EmailAddress,
		},
	})
}

func (s *Service) deliverOrder(ctx context.Context, orderID string) (*Order, error) {
	oID, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, servererrors.ErrOrderNotFound
	}

	return s.store.updateOne(ctx, oID, bson.M{
		"isDelivered": true,
		"deliveredAt": nowUTC(),
		"status":      StatusDelivered,
	})
}

// updateStatus moves an order along pending -> processing -> shipped ->
// delivered. Any state may move to cancelled, which restores every line
// item's stock; repeating a cancel is a no-op so stock comes back exactly
// once.
func (s *Service) updateStatus(ctx context.Context, orderID string, newStatus Status) (*Order, error) {
	oID, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, servererrors.ErrOrderNotFound
	}

	foundOrder, err := s.store.findByID(ctx, oID)
	if err != nil {
		return nil, err
	}

	if newStatus == foundOrder.Status {
		return foundOrder, nil
	}

	if newStatus == StatusCancelled {
		return s.cancelOrder(ctx, foundOrder)
	}

	if nextStatus[foundOrder.Status] != newStatus {
		return nil, fmt.Errorf(
			"%w: cannot move order from '%v' to '%v'",
			servererrors.ErrInvalidOrderStatus,
			foundOrder.Status,
			newStatus,
		)
	}

	return s.store.updateOne(ctx, oID, bson.M{"status": newStatus})
}

func (s *Service) cancelOrder(ctx context.Context, foundOrder *Order) (*Order, error) {
	stockChanges := make([]event.StockChange, 0, len(foundOrder.OrderItems))
	for _, item := range foundOrder.OrderItems {
		updatedProduct, err := s.productService.IncrementStock(
			ctx,
			item.Product.Hex(),
			item.Quantity,
		)
		if err != nil {
			log.Printf(
				"failed to restore stock for product '%v' while cancelling order '%v': %v\n",
				item.Product.Hex(),
				foundOrder.ID.Hex(),
				err,
			)
			continue
		}

		stockChanges = append(stockChanges, event.StockChange{
			ProductID:      item.Product.Hex(),
			Title:          item.Name,
			Quantity:       item.Quantity,
			RemainingStock: updatedProduct.Stock,
		})
	}

	cancelledOrder, err := s.store.updateOne(
		ctx,
		foundOrder.ID,
		bson.M{"status": StatusCancelled},
	)
	if err != nil {
		return nil, err
	}

	if err := s.eventEngine.Publish(&event.Event{
		Name: event.OrderCancelledEventName,
		Payload: &event.OrderCancelledEvent{
			OrderID:      cancelledOrder.ID.Hex(),
			StockChanges: stockChanges,
		},
	}); err != nil {
		log.Println(err)
	}

	return cancelledOrder, nil
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

// HasPaidOrderWithProduct answers the review feature's verified-purchase
// question.
func (s *Service) HasPaidOrderWithProduct(ctx context.Context, userID, productID string) (bool, error) {
	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return false, nil
	}

	pdID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return false, nil
	}

	return s.store.hasPaidOrderWithProduct(ctx, uID, pdID)
}
