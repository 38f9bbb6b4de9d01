package handlerutils

import (
	"encoding/json"
	"errors"
	"net/http"
)

// APIHandler is a http handler that returns an error so handlers can bubble
// errors up to the centralized error middleware instead of writing their own
// error responses.
type APIHandler func(w http.ResponseWriter, r *http.Request) error

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Errors  any    `json:"errors,omitempty"`
}

// PageDescriptor points at an adjacent page of a paginated listing.
type PageDescriptor struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Pagination carries next/prev descriptors. A side is omitted when no page
// exists in that direction.
type Pagination struct {
	Next *PageDescriptor `json:"next,omitempty"`
	Prev *PageDescriptor `json:"prev,omitempty"`
}

type listResponse struct {
	Success    bool        `json:"success"`
	Count      int         `json:"count"`
	Total      int64       `json:"total"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Data       any         `json:"data"`
}

func ParseJSON(r *http.Request, payload any) error {
	if r.Body == nil {
		return errors.New("missing request body")
	}

	return json.NewDecoder(r.Body).Decode(payload)
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	return json.NewEncoder(w).Encode(v)
}

func WriteSuccessJSON(w http.ResponseWriter, statusCode int, message string, data any) error {
	return writeJSON(
		w,
		statusCode,
		successResponse{
			Success: true,
			Message: message,
			Data:    data,
		},
	)
}

// WriteListJSON writes the listing envelope used by collection endpoints:
// {success, count, total, pagination, data}.
func WriteListJSON(w http.ResponseWriter, statusCode int, count int, total int64, pagination *Pagination, data any) error {
	return writeJSON(
		w,
		statusCode,
		listResponse{
			Success:    true,
			Count:      count,
			Total:      total,
			Pagination: pagination,
			Data:       data,
		},
	)
}

func WriteErrorJSON(w http.ResponseWriter, statusCode int, message string, errs any) {
	// error values do not marshal to anything useful
	if err, ok := errs.(error); ok {
		errs = err.Error()
	}

	_ = writeJSON(
		w,
		statusCode,
		errorResponse{
			Success: false,
			Message: message,
			Errors:  errs,
		},
	)
}
