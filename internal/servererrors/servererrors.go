package servererrors

import "errors"

// Sentinel errors returned by services. Handlers match on these with
// errors.Is and wrap them in a *ServerError with the right status code.
var (
	ErrInvalidRequestPayload = errors.New("invalid request payload")
	ErrValidationFailed      = errors.New("validation failed")
	ErrURLQueryParams        = errors.New("invalid url query params")

	ErrProductNotFound  = errors.New("product not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrReviewNotFound   = errors.New("review not found")
	ErrCartNotFound     = errors.New("cart not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrCartItemNotFound = errors.New("product not found in cart")

	ErrEmailAlreadyUsed    = errors.New("email already in use")
	ErrReviewAlreadyExists = errors.New("you have already reviewed this product")

	ErrEmptyOrder         = errors.New("no order items")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidOrderStatus = errors.New("invalid order status")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoBearerToken      = errors.New("not authorized, no token")
	ErrUnauthorized       = errors.New("not authorized, token failed")
	ErrForbidden          = errors.New("your role is not allowed to access this route")
	ErrNotResourceOwner   = errors.New("you do not have permission to access this resource")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

// ServerError carries an HTTP status code alongside the message so the
// error middleware can write the response without knowing the handler.
type ServerError struct {
	StatusCode int
	message    string
	Errors     any // optional per-field validation details
}

func New(statusCode int, message string, errs any) *ServerError {
	return &ServerError{
		StatusCode: statusCode,
		message:    message,
		Errors:     errs,
	}
}

func (e *ServerError) Error() string {
	return e.message
}
