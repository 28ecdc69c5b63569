package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const maxTrackedClients = 4096

// RateLimiter allows a fixed number of requests per client within a sliding window.
// Idle clients expire from the table after one window.
type RateLimiter struct {
	mu      sync.Mutex
	clients *expirable.LRU[string, []time.Time]
	limit   int
	window  time.Duration
	now     func() time.Time
}

// NewRateLimiter creates a new rate limiter with the specified limit and time window
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		clients: expirable.NewLRU[string, []time.Time](maxTrackedClients, nil, window),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// Allow checks if a request from the given client should be allowed
func (rl *RateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	times, _ := rl.clients.Get(client)

	valid := times[:0:0]
	for _, t := range times {
		if now.Sub(t) < rl.window {
			valid = append(valid, t)
		}
	}

	if len(valid) >= rl.limit {
		rl.clients.Add(client, valid)
		return false
	}

	rl.clients.Add(client, append(valid, now))
	return true
}

// Tracked returns the number of clients currently held in the table.
func (rl *RateLimiter) Tracked() int {
	return rl.clients.Len()
}

// RateLimit creates a middleware that rate limits requests per client address.
func RateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(clientHost(r.RemoteAddr)) {
				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
