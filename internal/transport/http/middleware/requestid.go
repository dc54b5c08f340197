package middleware

import (
	"context"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/moodgarden/verify-api/internal/pkg/id"
)

// RequestID stores a ULID under chi's request id key and echoes it in X-Request-Id.
// A ULID supplied by the caller is kept.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(chimiddleware.RequestIDHeader)
		if !id.Valid(reqID) {
			reqID = id.New()
		}
		w.Header().Set(chimiddleware.RequestIDHeader, reqID)
		ctx := context.WithValue(r.Context(), chimiddleware.RequestIDKey, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
