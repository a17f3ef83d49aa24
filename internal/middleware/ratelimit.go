package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerWindow int           // Number of requests allowed per window
	Window            time.Duration // Time window for rate limiting
}

type rateWindow struct {
	count   int
	resetAt time.Time
}

// RateLimiter is an in-process fixed-window limiter keyed by client IP.
// The server is a single process, so no external counter store is needed.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*rateWindow
	config  RateLimitConfig
	logger  *zap.Logger
	now     func() time.Time
}

func NewRateLimiter(config RateLimitConfig, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string]*rateWindow),
		config:  config,
		logger:  logger,
		now:     time.Now,
	}
}

// allow records one request for clientID and reports whether it is within
// the window limit, plus the remaining budget and the window reset time.
func (rl *RateLimiter) allow(clientID string) (bool, int, time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.windows[clientID]
	if !ok || now.After(w.resetAt) {
		w = &rateWindow{resetAt: now.Add(rl.config.Window)}
		rl.windows[clientID] = w
	}

	w.count++
	remaining := rl.config.RequestsPerWindow - w.count
	if remaining < 0 {
		remaining = 0
	}
	return w.count <= rl.config.RequestsPerWindow, remaining, w.resetAt
}

// Handler wraps next with the rate limit check.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := r.RemoteAddr
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			clientID = host
		}

		ok, remaining, resetAt := rl.allow(clientID)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.config.RequestsPerWindow))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !ok {
			rl.logger.Warn("Rate limit exceeded",
				zap.String("client_id", clientID),
				zap.Int("limit", rl.config.RequestsPerWindow),
			)

			retryAfter := int(time.Until(resetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"success":false,"error":"rate limit exceeded"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}
