package product

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
	createProduct(ctx context.Context, newProduct *CreateProductRequest, createdBy string) (*Product, error)
	getAllProducts(ctx context.Context, query *ListQuery) ([]*Product, int64, error)
	GetByID(ctx context.Context, productID string) (*Product, error)
	updateProduct(ctx context.Context, productID string, updates *UpdateProductRequest) (*Product, error)
	deleteProduct(ctx context.Context, productID string) error
}

type middleware interface {
	AuthWithContext(h handlerutils.APIHandler, roles ...string) handlerutils.APIHandler
}

type handler struct {
	service    servicer
	middleware middleware
}

func NewHandler(productService servicer, middleware middleware) *handler {
	return &handler{
		service:    productService,
		middleware: middleware,
	}
}

func (h *handler) RegisterRoutes(router *chi.Mux) {
	router.Get(
		"/products",
		handlerutils.MakeHandler(
			h.getAllProductsHandler,
		),
	)

	router.Get(
		"/products/{productID}",
		handlerutils.MakeHandler(
			h.getProductHandler,
		),
	)

	// protected routes
	router.Post(
		"/products",
		handlerutils.MakeHandler(
			h.middleware.AuthWithContext(
				h.createProductHandler,
				"admin",
			),
		),
	)

	router.Put(
		"/products/{productID}",
		handlerutils.MakeHandler(
			h.middleware.AuthWithContext(
				h.updateProductHandler,
				"admin",
			),
		),
	)

	router.Delete(
		"/products/{productID}",
		handlerutils.MakeHandler(
			h.middleware.AuthWithContext(
				h.deleteProductHandler,
				"admin",
			),
		),
	)
}

func (h *handler) getAllProductsHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	query := parseListQuery(r.URL.Query())

	products, total, err := h.service.getAllProducts(ctx, query)
	if err != nil {
		return err
	}

	if products == nil {
		products = []*Product{}
	}

	return handlerutils.WriteListJSON(
		w,
		http.StatusOK,
		len(products),
		total,
		query.pagination(total),
		products,
	)
}

func (h *handler) getProductHandler(w http.ResponseWriter, r *http.Request) error {
	foundProduct, err := h.service.GetByID(
		r.Context(),
		chi.URLParam(r, "productID"),
	)
	if err != nil {
		return productErr(err)
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"product found",
		foundProduct,
	)
}

func (h *handler) createProductHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	var payload *CreateProductRequest
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

	createdProduct, err := h.service.createProduct(
		ctx,
		payload,
		claims.UserID,
	)
	if err != nil {
		return err
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusCreated,
		"product created",
		createdProduct,
	)
}

func (h *handler) updateProductHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	var payload *UpdateProductRequest
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

	updatedProduct, err := h.service.updateProduct(
		ctx,
		chi.URLParam(r, "productID"),
		payload,
	)
	if err != nil {
		return productErr(err)
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"product updated",
		updatedProduct,
	)
}

func (h *handler) deleteProductHandler(w http.ResponseWriter, r *http.Request) error {
	err := h.service.deleteProduct(
		r.Context(),
		chi.URLParam(r, "productID"),
	)
	if err != nil {
		return productErr(err)
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"product deleted",
		struct{}{},
	)
}

func productErr(err error) error {
	if errors.Is(err, servererrors.ErrProductNotFound) {
		return servererrors.New(
			http.StatusNotFound,
			servererrors.ErrProductNotFound.Error(),
			nil,
		)
	}

	return err
}
