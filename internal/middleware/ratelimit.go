package middleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// maxTrackedClients bounds memory when many distinct addresses poll the API.
const maxTrackedClients = 10000

// RateLimiter is per-client token bucket rate limiting middleware. It keeps
// a polling automation agent from hammering the file store.
type RateLimiter struct {
	rate  float64 // tokens per second
	burst int
	now   func() time.Time

	mu      sync.Mutex
	clients map[string]*tokenBucket
}

type tokenBucket struct {
	tokens   float64
	lastSeen time.Time
}

// NewRateLimiter creates a rate limiter with the given sustained rate
// (requests per second) and burst size.
func NewRateLimiter(rate float64, burst int) *RateLimiter {
	return &RateLimiter{
		rate:    rate,
		burst:   burst,
		now:     time.Now,
		clients: make(map[string]*tokenBucket),
	}
}

// Handler returns HTTP middleware that enforces the limit per client address.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		remaining, wait, ok := rl.take(clientAddr(r))

		h := w.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(rl.burst))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !ok {
			h.Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			h.Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate limit exceeded"}` + "\n"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// take consumes one token for addr. It returns the whole tokens left, the
// wait until the next token when denied, and whether the request may proceed.
func (rl *RateLimiter) take(addr string) (remaining int, wait time.Duration, ok bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, found := rl.clients[addr]
	if !found {
		if len(rl.clients) >= maxTrackedClients {
			return 0, time.Second, false
		}
		b = &tokenBucket{tokens: float64(rl.burst), lastSeen: now}
		rl.clients[addr] = b
	}

	b.tokens = math.Min(float64(rl.burst), b.tokens+now.Sub(b.lastSeen).Seconds()*rl.rate)
	b.lastSeen = now

	if b.tokens < 1 {
		secs := (1 - b.tokens) / rl.rate
		return 0, time.Duration(secs * float64(time.Second)), false
	}
	b.tokens--
	return int(b.tokens), 0, true
}

// StartCleanup removes clients idle for longer than maxIdle every interval
// until ctx is done.
func (rl *RateLimiter) StartCleanup(ctx context.Context, interval, maxIdle time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.prune(maxIdle)
			}
		}
	}()
}

func (rl *RateLimiter) prune(maxIdle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-maxIdle)
	for addr, b := range rl.clients {
		if b.lastSeen.Before(cutoff) {
			delete(rl.clients, addr)
		}
	}
}

// Len returns the number of tracked clients.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// clientAddr is the host part of RemoteAddr. Forwarding headers are only
// honoured if a proxy-aware middleware rewrote RemoteAddr earlier.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
