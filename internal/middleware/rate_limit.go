package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"
)

type windowAttempt struct {
	count      int
	windowEnds time.Time
}

// IPRateLimiter is a fixed-window per-IP limiter guarding the API surface.
type IPRateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	attempt map[string]windowAttempt
}

func NewIPRateLimiter(limit int, window time.Duration) *IPRateLimiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &IPRateLimiter{
		limit:   limit,
		window:  window,
		attempt: map[string]windowAttempt{},
	}
}

func (rl *IPRateLimiter) Middleware(message string) func(http.Handler) http.Handler {
	if message == "" {
		message = "Rate limit exceeded"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r.RemoteAddr)
			if ip == "" {
				ip = "unknown"
			}

			now := time.Now()
			rl.mu.Lock()
			entry := rl.attempt[ip]
			if entry.windowEnds.Before(now) {
				entry = windowAttempt{count: 0, windowEnds: now.Add(rl.window)}
			}
			entry.count++
			rl.attempt[ip] = entry
			rl.mu.Unlock()

			if entry.count > rl.limit {
				writeError(w, r, http.StatusTooManyRequests, "rate_limited", message, nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
