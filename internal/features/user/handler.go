package user

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/tran-hoang-nhan/phone-shop/internal/handlerutils"
	"github.com/tran-hoang-nhan/phone-shop/internal/middlewares"
	"github.com/tran-hoang-nhan/phone-shop/internal/servererrors"
	"github.com/tran-hoang-nhan/phone-shop/internal/validate"
)

type servicer interface {
	register(ctx context.Context, newUser *RegisterRequest) (*AuthResponse, error)
	login(ctx context.Context, credentials *LoginRequest) (*AuthResponse, error)
	getMe(ctx context.Context, userID string) (*User, error)
	updateDetails(ctx context.Context, userID string, updates *UpdateDetailsRequest) (*User, error)
	updatePassword(ctx context.Context, userID string, passwords *UpdatePasswordRequest) (*AuthResponse, error)
	forgotPassword(ctx context.Context, email string) (string, error)
	resetPassword(ctx context.Context, resetToken, newPassword string) (*AuthResponse, error)
}

type middleware interface {
	AuthWithContext(h handlerutils.APIHandler, roles ...string) handlerutils.APIHandler
}

type handler struct {
	service    servicer
	middleware middleware
}

func NewHandler(userService servicer, middleware middleware) *handler {
	return &handler{
		service:    userService,
		middleware: middleware,
	}
}

func (h *handler) RegisterRoutes(router *chi.Mux) {
	router.Post(
		"/auth/register",
		handlerutils.MakeHandler(h.registerHandler),
	)

	router.Post(
		"/auth/login",
		handlerutils.MakeHandler(h.loginHandler),
	)

	router.Get(
		"/auth/logout",
		handlerutils.MakeHandler(h.logoutHandler),
	)

	router.Get(
		"/auth/me",
		handlerutils.MakeHandler(
			h.middleware.AuthWithContext(
				h.getMeHandler,
			),
		),
	)

	router.Put(
		"/auth/updatedetails",
		handlerutils.MakeHandler(
			h.middleware.AuthWithContext(
				h.updateDetailsHandler,
			),
		),
	)

	router.Put(
		"/auth/updatepassword",
		handlerutils.MakeHandler(
			h.middleware.AuthWithContext(
				h.updatePasswordHandler,
			),
		),
	)

	router.Post(
		"/auth/forgotpassword",
		handlerutils.MakeHandler(h.forgotPasswordHandler),
	)

	router.Put(
		"/auth/resetpassword/{resetToken}",
		handlerutils.MakeHandler(h.resetPasswordHandler),
	)
}

func (h *handler) registerHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	var payload *RegisterRequest
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

	auth, err := h.service.register(ctx, payload)
	if err != nil {
		return userErr(err)
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusCreated,
		"user registered",
		auth,
	)
}

func (h *handler) loginHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	var payload *LoginRequest
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

	auth, err := h.service.login(ctx, payload)
	if err != nil {
		return userErr(err)
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"logged in",
		auth,
	)
}

// logoutHandler exists for client symmetry. Tokens are stateless, so there is
// nothing to revoke server side; the client drops its copy.
func (h *handler) logoutHandler(w http.ResponseWriter, r *http.Request) error {
	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"logged out",
		nil,
	)
}

func (h *handler) getMeHandler(w http.ResponseWriter, r *http.Request) error {
	claims := middlewares.GetClaimsFromContext(r.Context())

	foundUser, err := h.service.getMe(r.Context(), claims.UserID)
	if err != nil {
		return userErr(err)
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"user retrieved",
		foundUser,
	)
}

func (h *handler) updateDetailsHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	var payload *UpdateDetailsRequest
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

	updatedUser, err := h.service.updateDetails(ctx, claims.UserID, payload)
	if err != nil {
		return userErr(err)
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"details updated",
		updatedUser,
	)
}

func (h *handler) updatePasswordHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	var payload *UpdatePasswordRequest
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

	auth, err := h.service.updatePassword(ctx, claims.UserID, payload)
	if err != nil {
		return userErr(err)
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"password updated",
		auth,
	)
}

func (h *handler) forgotPasswordHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	var payload *ForgotPasswordRequest
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

	resetToken, err := h.service.forgotPassword(ctx, payload.Email)
	if err != nil {
		return userErr(err)
	}

	// stands in for the reset email
	log.Printf(
		"password reset requested for '%v': PUT /api/auth/resetpassword/%v\n",
		payload.Email,
		resetToken,
	)

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"reset token issued",
		nil,
	)
}

func (h *handler) resetPasswordHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	var payload *ResetPasswordRequest
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

	auth, err := h.service.resetPassword(
		ctx,
		chi.URLParam(r, "resetToken"),
		payload.Password,
	)
	if err != nil {
		return userErr(err)
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"password reset",
		auth,
	)
}

func userErr(err error) error {
	switch {
	case errors.Is(err, servererrors.ErrUserNotFound):
		return servererrors.New(
			http.StatusNotFound,
			err.Error(),
			nil,
		)

	case errors.Is(err, servererrors.ErrEmailAlreadyUsed):
		return servererrors.New(
			http.StatusConflict,
			err.Error(),
			nil,
		)

	case errors.Is(err, servererrors.ErrInvalidCredentials):
		return servererrors.New(
			http.StatusUnauthorized,
			err.Error(),
			nil,
		)

	case errors.Is(err, servererrors.ErrInvalidResetToken):
		return servererrors.New(
			http.StatusBadRequest,
			err.Error(),
			nil,
		)

	default:
		return err
	}
}
