package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// client is one tracked remote address.
type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter enforces a per-client request budget using token buckets.
// The chi RealIP middleware must run earlier in the chain so RemoteAddr
// reflects the actual client behind a proxy.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   rate.Limit
	burst   int
}

// NewRateLimiter allows up to maxRequests per window from each client
// address. Tokens refill continuously, so the cap is a sliding budget
// rather than a fixed-window counter.
func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*client),
		limit:   rate.Limit(float64(maxRequests) / window.Seconds()),
		burst:   maxRequests,
	}
	go rl.cleanup(window)
	return rl
}

// cleanup drops clients idle for a full window, bounding the map.
func (rl *RateLimiter) cleanup(window time.Duration) {
	for range time.Tick(time.Minute) {
		rl.mu.Lock()
		for addr, c := range rl.clients {
			if time.Since(c.lastSeen) > window {
				delete(rl.clients, addr)
			}
		}
		rl.mu.Unlock()
	}
}

func (rl *RateLimiter) limiterFor(addr string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[addr]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[addr] = c
	}
	c.lastSeen = time.Now()
	return c.limiter
}

// Handler is the middleware. Over-budget clients get 429 with the
// standard error shape.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		addr := r.RemoteAddr
		if host, _, err := net.SplitHostPort(addr); err == nil {
			addr = host
		}

		if !rl.limiterFor(addr).Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"rate_limited","message":"too many requests, slow down"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}
