package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/futig/lawgpt-backend/internal/pkg/response"
	"github.com/patrickmn/go-cache"
)

// RateLimit allows limit requests per client IP in each fixed window.
// Counters live in a go-cache that expires them with the window.
func RateLimit(limit int, window time.Duration) func(next http.Handler) http.Handler {
	counters := cache.New(window, 2*window)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)

			count := 1
			if err := counters.Add(key, 1, window); err != nil {
				n, err := counters.IncrementInt(key, 1)
				if err != nil {
					// Expired between Add and Increment, start a new window
					counters.Set(key, 1, window)
					n = 1
				}
				count = n
			}

			if count > limit {
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				response.Error(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP uses RemoteAddr, which chi's RealIP middleware rewrites behind a proxy
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
