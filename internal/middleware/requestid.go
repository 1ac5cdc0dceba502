// Package middleware provides HTTP middleware for TaskScheduler.
package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Strob0t/TaskScheduler/internal/logger"
)

const (
	headerRequestID = "X-Request-ID"
	maxRequestIDLen = 128
)

// RequestID is HTTP middleware that extracts X-Request-ID from the request
// header or generates a new UUID. The ID is stored in the context and set
// on the response header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}

		ctx := logger.WithRequestID(r.Context(), id)
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
