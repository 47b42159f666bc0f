package middleware

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"sales-analytics/internal/config"
	"sales-analytics/internal/errors"
	"sales-analytics/internal/observability"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps a token bucket per client IP. Each bucket holds
// RateLimitRequests tokens and refills evenly over RateLimitWindow, so a
// client can burst the full allowance and is then held to the window rate.
type RateLimiter struct {
	visitors map[string]*visitor
	config   config.SecurityConfig
	every    rate.Limit
	now      func() time.Time
	mu       sync.Mutex
}

func NewRateLimiter(cfg config.SecurityConfig) *RateLimiter {
	every := rate.Inf
	if cfg.RateLimitRequests > 0 {
		every = rate.Every(cfg.RateLimitWindow / time.Duration(cfg.RateLimitRequests))
	}

	return &RateLimiter{
		visitors: make(map[string]*visitor),
		config:   cfg,
		every:    every,
		now:      time.Now,
	}
}

func (rl *RateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rl.every, rl.config.RateLimitRequests)}
		rl.visitors[ip] = v
	}
	v.lastSeen = rl.now()
	return v.limiter
}

// Allow reports whether ip may proceed and, if not, how long until it may.
func (rl *RateLimiter) Allow(ip string) (bool, time.Duration) {
	if !rl.config.EnableRateLimit {
		return true, 0
	}

	limiter := rl.getLimiter(ip)
	now := rl.now()
	if limiter.AllowN(now, 1) {
		return true, 0
	}

	r := limiter.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	r.CancelAt(now)
	return false, delay
}

// Cleanup forgets clients idle for longer than the window. Their buckets
// would be full again anyway.
func (rl *RateLimiter) Cleanup() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.config.RateLimitWindow)
	removed := 0
	for ip, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, ip)
			removed++
		}
	}
	return removed
}

// Run calls Cleanup every interval until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Cleanup()
		}
	}
}

func RateLimit(limiter *RateLimiter, logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := getClientIP(r)

			allowed, retryAfter := limiter.Allow(ip)
			if !allowed {
				requestID := observability.GetRequestID(r.Context())
				observability.RateLimitRejections.Inc()

				logger.Warn("rate limit exceeded",
					"ip", ip,
					"retry_after", retryAfter,
					"request_id", requestID,
				)

				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
				errors.WriteError(w, logger, errors.RateLimit("Too many requests, please try again later"), requestID)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
