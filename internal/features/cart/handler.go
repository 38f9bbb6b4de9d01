package cart

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
	getCart(ctx context.Context, userID string) (*Cart, error)
	addItem(ctx context.Context, userID string, newItem *AddCartItemRequest) (*Cart, error)
	updateItem(ctx context.Context, userID, productID string, quantity int) (*Cart, error)
	removeItem(ctx context.Context, userID, productID string) (*Cart, error)
	Clear(ctx context.Context, userID string) (*Cart, error)
}

type middleware interface {
	AuthWithContext(h handlerutils.APIHandler, roles ...string) handlerutils.APIHandler
}

type handler struct {
	service    servicer
	middleware middleware
}

func NewHandler(cartService servicer, middleware middleware) *handler {
	return &handler{
		service:    cartService,
		middleware: middleware,
	}
}

func (h *handler) RegisterRoutes(router *chi.Mux) {
	router.Get(
		"/cart",
		handlerutils.MakeHandler(
			h.middleware.AuthWithContext(
				h.getCartHandler,
			),
		),
	)

	router.Post(
		"/cart/add",
		handlerutils.MakeHandler(
			h.middleware.AuthWithContext(
				h.addItemHandler,
			),
		),
	)

	router.Put(
		"/cart/update",
		handlerutils.MakeHandler(
			h.middleware.AuthWithContext(
				h.updateItemHandler,
			),
		),
	)

	router.Delete(
		"/cart/remove/{productID}",
		handlerutils.MakeHandler(
			h.middleware.AuthWithContext(
				h.removeItemHandler,
			),
		),
	)

	router.Delete(
		"/cart/clear",
		handlerutils.MakeHandler(
			h.middleware.AuthWithContext(
				h.clearCartHandler,
			),
		),
	)
}

func (h *handler) getCartHandler(w http.ResponseWriter, r *http.Request) error {
	claims := middlewares.GetClaimsFromContext(r.Context())

	userCart, err := h.service.getCart(r.Context(), claims.UserID)
	if err != nil {
		return cartErr(err)
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"cart retrieved",
		userCart,
	)
}

func (h *handler) addItemHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	var payload *AddCartItemRequest
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

	userCart, err := h.service.addItem(ctx, claims.UserID, payload)
	if err != nil {
		return cartErr(err)
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"item added to cart",
		userCart,
	)
}

func (h *handler) updateItemHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	var payload *UpdateCartItemRequest
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

	userCart, err := h.service.updateItem(
		ctx,
		claims.UserID,
		payload.Product,
		*payload.Quantity,
	)
	if err != nil {
		return cartErr(err)
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"cart item updated",
		userCart,
	)
}

func (h *handler) removeItemHandler(w http.ResponseWriter, r *http.Request) error {
	claims := middlewares.GetClaimsFromContext(r.Context())

	userCart, err := h.service.removeItem(
		r.Context(),
		claims.UserID,
		chi.URLParam(r, "productID"),
	)
	if err != nil {
		return cartErr(err)
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"item removed from cart",
		userCart,
	)
}

func (h *handler) clearCartHandler(w http.ResponseWriter, r *http.Request) error {
	claims := middlewares.GetClaimsFromContext(r.Context())

	userCart, err := h.service.Clear(r.Context(), claims.UserID)
	if err != nil {
		return cartErr(err)
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"cart cleared",
		userCart,
	)
}

func cartErr(err error) error {
	switch {
	case errors.Is(err, servererrors.ErrCartNotFound),
		errors.Is(err, servererrors.ErrCartItemNotFound),
		errors.Is(err, servererrors.ErrProductNotFound):
		return servererrors.New(
			http.StatusNotFound,
			err.Error(),
			nil,
		)

	default:
		return err
	}
}
