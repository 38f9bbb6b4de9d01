package review

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
	getProductReviews(ctx context.Context, productID string) ([]*Review, error)
	createReview(ctx context.Context, productID, userID string, newReview *CreateReviewRequest) (*Review, error)
	updateReview(ctx context.Context, reviewID, requesterID, requesterRole string, updates *UpdateReviewRequest) (*Review, error)
	deleteReview(ctx context.Context, reviewID, requesterID, requesterRole string) error
}

type middleware interface {
	AuthWithContext(h handlerutils.APIHandler, roles ...string) handlerutils.APIHandler
}

type handler struct {
	service    servicer
	middleware middleware
}

func NewHandler(reviewService servicer, middleware middleware) *handler {
	return &handler{
		service:    reviewService,
		middleware: middleware,
	}
}

func (h *handler) RegisterRoutes(router *chi.Mux) {
	router.Get(
		"/products/{productID}/reviews",
		handlerutils.MakeHandler(
			h.getProductReviewsHandler,
		),
	)

	// protected routes
	router.Post(
		"/products/{productID}/reviews",
		handlerutils.MakeHandler(
			h.middleware.AuthWithContext(
				h.createReviewHandler,
			),
		),
	)

	router.Put(
		"/products/{productID}/reviews/{reviewID}",
		handlerutils.MakeHandler(
			h.middleware.AuthWithContext(
				h.updateReviewHandler,
			),
		),
	)

	router.Delete(
		"/products/{productID}/reviews/{reviewID}",
		handlerutils.MakeHandler(
			h.middleware.AuthWithContext(
				h.deleteReviewHandler,
			),
		),
	)
}

func (h *handler) getProductReviewsHandler(w http.ResponseWriter, r *http.Request) error {
	reviews, err := h.service.getProductReviews(
		r.Context(),
		chi.URLParam(r, "productID"),
	)
	if err != nil {
		return reviewErr(err)
	}

	if reviews == nil {
		reviews = []*Review{}
	}

	return handlerutils.WriteListJSON(
		w,
		http.StatusOK,
		len(reviews),
		int64(len(reviews)),
		nil,
		reviews,
	)
}

func (h *handler) createReviewHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	var payload *CreateReviewRequest
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

	createdReview, err := h.service.createReview(
		ctx,
		chi.URLParam(r, "productID"),
		claims.UserID,
		payload,
	)
	if err != nil {
		return reviewErr(err)
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusCreated,
		"review created",
		createdReview,
	)
}

func (h *handler) updateReviewHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	var payload *UpdateReviewRequest
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

	updatedReview, err := h.service.updateReview(
		ctx,
		chi.URLParam(r, "reviewID"),
		claims.UserID,
		claims.Role,
		payload,
	)
	if err != nil {
		return reviewErr(err)
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"review updated",
		updatedReview,
	)
}

func (h *handler) deleteReviewHandler(w http.ResponseWriter, r *http.Request) error {
	claims := middlewares.GetClaimsFromContext(r.Context())

	err := h.service.deleteReview(
		r.Context(),
		chi.URLParam(r, "reviewID"),
		claims.UserID,
		claims.Role,
	)
	if err != nil {
		return reviewErr(err)
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"review deleted",
		struct{}{},
	)
}

func reviewErr(err error) error {
	switch {
	case errors.Is(err, servererrors.ErrProductNotFound),
		errors.Is(err, servererrors.ErrReviewNotFound):
		return servererrors.New(
			http.StatusNotFound,
			err.Error(),
			nil,
		)

	case errors.Is(err, servererrors.ErrReviewAlreadyExists):
		return servererrors.New(
			http.StatusConflict,
			servererrors.ErrReviewAlreadyExists.Error(),
			nil,
		)

	case errors.Is(err, servererrors.ErrNotResourceOwner):
		return servererrors.New(
			http.StatusForbidden,
			servererrors.ErrNotResourceOwner.Error(),
			nil,
		)

	default:
		return err
	}
}
