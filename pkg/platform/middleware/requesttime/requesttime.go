// Package requesttime provides middleware for request-scoped time.
// Every operation within a single HTTP request sees the same "now", so program
// timestamps and evaluation logs agree with each other.
package requesttime

import (
	"net/http"
	"time"

	"grantgate/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request and stores
// it in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
