package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"finance-tracker/pkg/metrics"
	"finance-tracker/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimitRule allows Limit requests per client IP in each Window.
type RateLimitRule struct {
	Name   string
	Limit  int
	Window time.Duration
}

// RateLimit enforces rule with a Redis fixed window when client is set and a
// per-process token bucket otherwise. Redis failures let the request through.
func RateLimit(client *redis.Client, rule RateLimitRule, logger *zap.Logger) func(http.Handler) http.Handler {
	if rule.Limit <= 0 || rule.Window <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if client == nil {
		return memoryRateLimit(rule)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := "rl:" + rule.Name + ":" + clientKey(r)

			count, err := client.Incr(ctx, key).Result()
			if err != nil {
				logger.Warn("Rate limit check failed, allowing request", zap.Error(err), zap.String("limiter", rule.Name))
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				if err := client.Expire(ctx, key, rule.Window).Err(); err != nil {
					logger.Warn("Failed to set rate limit window", zap.Error(err), zap.String("limiter", rule.Name))
				}
			}

			setLimitHeaders(w, rule.Limit, rule.Limit-int(count))

			if count > int64(rule.Limit) {
				retryAfter := rule.Window
				if ttl, err := client.TTL(ctx, key).Result(); err == nil && ttl > 0 {
					retryAfter = ttl
				}
				reject(w, rule, retryAfter)
				return
			}

			metrics.RateLimitAllowed.WithLabelValues(rule.Name).Inc()
			next.ServeHTTP(w, r)
		})
	}
}

func memoryRateLimit(rule RateLimitRule) func(http.Handler) http.Handler {
	var limiters sync.Map // client key -> *rate.Limiter
	every := rule.Window / time.Duration(rule.Limit)

	limiterFor := func(key string) *rate.Limiter {
		v, _ := limiters.LoadOrStore(key, rate.NewLimiter(rate.Every(every), rule.Limit))
		return v.(*rate.Limiter)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lim := limiterFor(clientKey(r))

			reservation := lim.Reserve()
			if delay := reservation.Delay(); delay > 0 {
				reservation.Cancel()
				setLimitHeaders(w, rule.Limit, 0)
				reject(w, rule, delay)
				return
			}

			setLimitHeaders(w, rule.Limit, int(lim.Tokens()))
			metrics.RateLimitAllowed.WithLabelValues(rule.Name).Inc()
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	if ip := utils.ClientIP(r); ip != "" {
		return ip
	}
	return "unknown"
}

func setLimitHeaders(w http.ResponseWriter, limit, remaining int) {
	if remaining < 0 {
		remaining = 0
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
}

func reject(w http.ResponseWriter, rule RateLimitRule, retryAfter time.Duration) {
	seconds := int(math.Ceil(retryAfter.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	metrics.RateLimitRejected.WithLabelValues(rule.Name).Inc()
	utils.ResponseTooManyRequests(w, "Too many requests, please try again later")
}
