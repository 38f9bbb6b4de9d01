package order

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/tran-hoang-nhan/phone-shop/internal/handlerutils"
	"github.com/tran-hoang-nhan/phone-shop/internal/middlewares"
	"github.com/tran-hoang-nhan/phone-shop/internal/servererrors"
	"github.com/tran-hoang-nhan/phone-shop/internal/validate"
)

type servicer interface {
	createOrder(ctx context.Context, userID string, newOrder *CreateOrderRequest) (*Order, error)
	getOrderByID(ctx context.Context, orderID, requesterID, requesterRole string) (*Order, error)
	getMyOrders(ctx context.Context, userID string) ([]*Order, error)
	getAllOrders(ctx context.Context) ([]*Order, error)
	payOrder(ctx context.Context, orderID, requesterID string, payment *PayOrderRequest) (*Order, error)
	deliverOrder(ctx context.Context, orderID string) (*Order, error)
	updateStatus(ctx context.Context, orderID string, newStatus Status) (*Order, error)
}

type middleware interface {
	AuthWithContext(h handlerutils.APIHandler, roles ...string) handlerutils.APIHandler
}

type handler struct {
	service    servicer
	middleware middleware
}

func NewHandler(orderService servicer, middleware middleware) *handler {
	return &handler{
		service:    orderService,
		middleware: middleware,
	}
}

func (h *handler) RegisterRoutes(router *chi.Mux) {
	router.Post(
		"/orders",
		handlerutils.MakeHandler(
			h.middleware.AuthWithContext(
				h.createOrderHandler,
			),
		),
	)

	router.Get(
		"/orders",
		handlerutils.MakeHandler(
			h.middleware.AuthWithContext(
				h.getAllOrdersHandler,
				"admin",
			),
		),
	)

	router.Get(
		"/orders/myorders",
		handlerutils.MakeHandler(
			h.middleware.AuthWithContext(
				h.getMyOrdersHandler,
			),
		),
	)

	router.Get(
		"/orders/{orderID}",
		handlerutils.MakeHandler(
			h.middleware.AuthWithContext(
				h.getOrderHandler,
			),
		),
	)

	router.Put(
		"/orders/{orderID}/pay",
		handlerutils.MakeHandler(
			h.middleware.AuthWithContext(
				h.payOrderHandler,
			),
		),
	)

	router.Put(
		"/orders/{orderID}/deliver",
		handlerutils.MakeHandler(
			h.middleware.AuthWithContext(
				h.deliverOrderHandler,
				"admin",
			),
		),
	)

	router.Put(
		"/orders/{orderID}/status",
		handlerutils.MakeHandler(
			h.middleware.AuthWithContext(
				h.updateStatusHandler,
				"admin",
			),
		),
	)
}

func (h *handler) createOrderHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	var payload *CreateOrderRequest
	defer r.Body.Close()

	if err := handlerutils.ParseJSON(r, &payload); err != nil {
		return servererrors.New(
			http.StatusBadRequest,
			servererrors.ErrInvalidRequestPayload.Error(),
			nil,
		)
	}

	if err := validate.StructFields(payload); err != nil {
		return servererrors.New(
			http.StatusBadRequest,
			servererrors.ErrValidationFailed.Error(),
			err,
		)
	}

	claims := middlewares.GetClaimsFromContext(ctx)

	placedOrder, err := h.service.createOrder(ctx, claims.UserID, payload)
	if err != nil {
		return orderErr(err)
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusCreated,
		"order placed",
		placedOrder,
	)
}

func (h *handler) getOrderHandler(w http.ResponseWriter, r *http.Request) error {
	claims := middlewares.GetClaimsFromContext(r.Context())

	foundOrder, err := h.service.getOrderByID(
		r.Context(),
		chi.URLParam(r, "orderID"),
		claims.UserID,
		claims.Role,
	)
	if err != nil {
		return orderErr(err)
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"order retrieved",
		foundOrder,
	)
}

func (h *handler) getMyOrdersHandler(w http.ResponseWriter, r *http.Request) error {
	claims := middlewares.GetClaimsFromContext(r.Context())

	orders, err := h.service.getMyOrders(r.Context(), claims.UserID)
	if err != nil {
		return orderErr(err)
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"orders retrieved",
		orders,
	)
}

func (h *handler) getAllOrdersHandler(w http.ResponseWriter, r *http.Request) error {
	orders, err := h.service.getAllOrders(r.Context())
	if err != nil {
		return orderErr(err)
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"orders retrieved",
		orders,
	)
}

func (h *handler) payOrderHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	var payload *PayOrderRequest
	defer r.Body.Close()

	if err := handlerutils.ParseJSON(r, &payload); err != nil {
		return servererrors.New(
			http.StatusBadRequest,
			servererrors.ErrInvalidRequestPayload.Error(),
			nil,
		)
	}

	if err := validate.StructFields(payload); err != nil {
		return servererrors.New(
			http.StatusBadRequest,
			servererrors.ErrValidationFailed.Error(),
			err,
		)
	}

	claims := middlewares.GetClaimsFromContext(ctx)

	paidOrder, err := h.service.payOrder(
		ctx,
		chi.URLParam(r, "orderID"),
		claims.UserID,
		payload,
	)
	if err != nil {
		return orderErr(err)
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"order paid",
		paidOrder,
	)
}

func (h *handler) deliverOrderHandler(w http.ResponseWriter, r *http.Request) error {
	deliveredOrder, err := h.service.deliverOrder(
		r.Context(),
		chi.URLParam(r, "orderID"),
	)
	if err != nil {
		return orderErr(err)
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"order delivered",
		deliveredOrder,
	)
}

func (h *handler) updateStatusHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	var payload *UpdateOrderStatusRequest
	defer r.Body.Close()

	if err := handlerutils.ParseJSON(r, &payload); err != nil {
		return servererrors.New(
			http.StatusBadRequest,
			servererrors.ErrInvalidRequestPayload.Error(),
			nil,
		)
	}

	if err := validate.StructFields(payload); err != nil {
		return servererrors.New(
			http.StatusBadRequest,
			servererrors.ErrValidationFailed.Error(),
			err,
		)
	}

	updatedOrder, err := h.service.updateStatus(
		ctx,
		chi.URLParam(r, "orderID"),
		Status(payload.Status),
	)
	if err != nil {
		return orderErr(err)
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"order status updated",
		updatedOrder,
	)
}

func orderErr(err error) error {
	switch {
	case errors.Is(err, servererrors.ErrOrderNotFound),
		errors.Is(err, servererrors.ErrProductNotFound),
		errors.Is(err, servererrors.ErrUserNotFound):
		return servererrors.New(
			http.StatusNotFound,
			err.Error(),
			nil,
		)

	case errors.Is(err, servererrors.ErrEmptyOrder),
		errors.Is(err, servererrors.ErrInsufficientStock),
		errors.Is(err, servererrors.ErrInvalidOrderStatus):
		return servererrors.New(
			http.StatusBadRequest,
			err.Error(),
			nil,
		)

	case errors.Is(err, servererrors.ErrNotResourceOwner):
		return servererrors.New(
			http.StatusForbidden,
			err.Error(),
			nil,
		)

	default:
		return err
	}
}
