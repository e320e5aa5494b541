package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/HammerMeetNail/secretapp/internal/logging"
)

// Counter increments a fixed-window counter and returns the new count.
type Counter interface {
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
}

type redisCounter struct {
	client *redis.Client
}

// NewRedisCounter returns a Counter backed by Redis, or nil when client is
// nil so limiters fall back to their fail-open policy.
func NewRedisCounter(client *redis.Client) Counter {
	if client == nil {
		return nil
	}
	return &redisCounter{client: client}
}

func (c *redisCounter) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

type RateLimiter struct {
	counter  Counter
	limit    int
	window   time.Duration
	prefix   string
	keyFunc  func(*http.Request) string
	failOpen bool
}

func NewRateLimiter(counter Counter, limit int, window time.Duration, prefix string, keyFunc func(*http.Request) string, failOpen bool) *RateLimiter {
	if keyFunc == nil {
		keyFunc = GetClientIP
	}
	return &RateLimiter{
		counter:  counter,
		limit:    limit,
		window:   window,
		prefix:   prefix,
		keyFunc:  keyFunc,
		failOpen: failOpen,
	}
}

// NewLoginRateLimiter limits sign-in and sign-up attempts per client IP.
func NewLoginRateLimiter(counter Counter, perMinute int) *RateLimiter {
	return NewRateLimiter(counter, perMinute, time.Minute, "ratelimit:login:", GetClientIP, true)
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.counter == nil || rl.limit <= 0 {
			rl.unavailable(w, r, next, nil)
			return
		}

		windowEnd := time.Now().Truncate(rl.window).Add(rl.window)
		count, err := rl.counter.Increment(r.Context(), rl.prefix+rl.keyFunc(r), rl.window)
		if err != nil {
			rl.unavailable(w, r, next, err)
			return
		}

		remaining := int64(rl.limit) - count
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", rl.limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", windowEnd.Unix()))

		if count > int64(rl.limit) {
			retry := time.Until(windowEnd).Seconds()
			if retry < 1 {
				retry = 1
			}
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(retry)))
			writeError(w, http.StatusTooManyRequests, "Too many attempts. Please try again later.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) unavailable(w http.ResponseWriter, r *http.Request, next http.Handler, err error) {
	if err != nil {
		logging.Warn("Rate limiter unavailable", map[string]interface{}{"error": err.Error(), "prefix": rl.prefix})
	}
	if rl.failOpen {
		next.ServeHTTP(w, r)
		return
	}
	writeError(w, http.StatusServiceUnavailable, "Service temporarily unavailable")
}

// GetClientIP returns the first X-Forwarded-For entry, then X-Real-IP, then
// the host part of RemoteAddr.
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
