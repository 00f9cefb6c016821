package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

// RequestID tags every request with an id, keeping a caller-supplied
// one so ids stay stable across an upstream proxy
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		// Mirror the id on the response and the request so the logger
		// middleware picks it up
		w.Header().Set("X-Request-ID", requestID)
		r.Header.Set("X-Request-ID", requestID)

		next.ServeHTTP(w, r)
	})
}
