package middleware

import (
	"net/http"
	"sync"
	"time"
)

// RateLimiter is a fixed-window in-memory counter. Counts reset on process
// restart and are not shared across instances.
type RateLimiter struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	hits   map[string]*windowHits
	now    func() time.Time
}

type windowHits struct {
	start time.Time
	count int
}

func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		max:    max,
		window: window,
		hits:   map[string]*windowHits{},
		now:    time.Now,
	}
}

// Check counts one hit against the key and reports whether it is still
// within the limit.
func (l *RateLimiter) Check(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	h, ok := l.hits[key]
	if !ok || now.Sub(h.start) >= l.window {
		l.hits[key] = &windowHits{start: now, count: 1}
		return true
	}
	h.count++
	return h.count <= l.max
}

// Limit rejects requests over the per-key limit with 429. keyFn derives the
// counter key from the request (user id, anon id).
func Limit(l *RateLimiter, keyFn func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFn(r)
			if key != "" && !l.Check(key) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"too many requests, please try again later"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
