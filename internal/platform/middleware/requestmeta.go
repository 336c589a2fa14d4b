package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"veracity/pkg/requestcontext"
)

// RequestMetadata stamps every request with an id and a fixed request time.
// Honoring an inbound X-Request-ID keeps correlation across services; the
// request time gives all downstream logic one consistent "now".
func RequestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		ctx = requestcontext.WithTime(ctx, time.Now().UTC())

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
