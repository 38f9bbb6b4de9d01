package handlerutils

import (
	"errors"
	"log"
	"net/http"

	"github.com/tran-hoang-nhan/phone-shop/internal/servererrors"
)

// MakeHandler adapts an APIHandler into a http.HandlerFunc and gives us a
// centralized place for error handling and logging. Handlers return a
// *servererrors.ServerError to control the status code; anything else is a
// 500 with no detail leaked to the client.
func MakeHandler(h APIHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}

		log.Println(err)

		var serverError *servererrors.ServerError
		if errors.As(err, &serverError) {
			WriteErrorJSON(
				w,
				serverError.StatusCode,
				serverError.Error(),
				serverError.Errors,
			)
			return
		}

		WriteErrorJSON(
			w,
			http.StatusInternalServerError,
			"something went wrong",
			nil,
		)
	}
}
