package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/Strob0t/TaskScheduler/internal/port/cache"
)

const (
	headerIdempotencyKey = "Idempotency-Key"
	headerReplayed       = "Idempotent-Replayed"
	maxIdempotencyBody   = 1 << 20 // 1 MB
)

// idempotencyEntry stores a cached HTTP response.
type idempotencyEntry struct {
	StatusCode  int    `json:"status_code"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// Idempotency returns middleware that deduplicates POST/PUT/DELETE requests
// carrying an Idempotency-Key header. Responses are kept in c for ttl and
// replayed for repeated keys on the same method and path. Server errors are
// not stored so a retry can succeed.
func Idempotency(c cache.Cache, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Only apply to mutating methods
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get(headerIdempotencyKey)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			cacheKey := "idem:" + r.Method + ":" + r.URL.Path + ":" + key

			if data, found, err := c.Get(r.Context(), cacheKey); err == nil && found {
				var cached idempotencyEntry
				if err := json.Unmarshal(data, &cached); err == nil {
					if cached.ContentType != "" {
						w.Header().Set("Content-Type", cached.ContentType)
					}
					w.Header().Set(headerReplayed, "true")
					w.WriteHeader(cached.StatusCode)
					_, _ = w.Write(cached.Body)
					return
				}
				slog.WarnContext(r.Context(), "idempotency: corrupt cache entry", "key", key)
			}

			rec := &responseRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
				body:           &bytes.Buffer{},
			}
			next.ServeHTTP(rec, r)

			if rec.statusCode >= http.StatusInternalServerError || rec.body.Len() > maxIdempotencyBody {
				return
			}
			data, err := json.Marshal(idempotencyEntry{
				StatusCode:  rec.statusCode,
				ContentType: w.Header().Get("Content-Type"),
				Body:        rec.body.Bytes(),
			})
			if err != nil {
				return
			}
			if err := c.Set(r.Context(), cacheKey, data, ttl); err != nil {
				slog.WarnContext(r.Context(), "idempotency: failed to store response", "key", key, "error", err)
			}
		})
	}
}

// responseRecorder wraps http.ResponseWriter to capture the response.
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
