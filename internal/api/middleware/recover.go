package middleware

import (
	"net/http"
	"runtime/debug"

	appErrors "github.com/aaravmahajanofficial/storefront-checkout/internal/errors"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/utils/response"
)

// Recover turns a panic in a handler into a 500 response.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				LoggerFromContext(r.Context()).Error("Recovered from panic",
					"panic", rec,
					"stack", string(debug.Stack()))
				response.Error(w, appErrors.InternalError("An unexpected error occured"))
			}
		}()

		next.ServeHTTP(w, r)
	})
}
