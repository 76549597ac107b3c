package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/DJaayy/slot-booking/internal/config"
)

// NewTokenBucket returns a Redis-backed token-bucket limiter keyed
// by (client IP, method, route). The bucket state lives in a Redis
// hash and is refilled atomically by a Lua script, so multiple
// server instances share one budget. When Redis is unavailable the
// limiter fails open: requests pass through unthrottled.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}

	bucket := redis.NewScript(`
		local key = KEYS[1]
		local now_ms = tonumber(ARGV[1])
		local capacity = tonumber(ARGV[2])
		local interval_ms = tonumber(ARGV[3])
		local ttl_seconds = tonumber(ARGV[4])

		local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
		local tokens = tonumber(state[1])
		local last_refill = tonumber(state[2])

		if tokens == nil or last_refill == nil then
			tokens = capacity
			last_refill = now_ms
		end

		local elapsed = math.max(0, now_ms - last_refill)
		local intervals = math.floor(elapsed / interval_ms)
		if intervals > 0 then
			tokens = math.min(capacity, tokens + intervals)
			last_refill = last_refill + (intervals * interval_ms)
		end

		local allowed = 0
		local retry_after_ms = 0
		if tokens > 0 then
			allowed = 1
			tokens = tokens - 1
		else
			retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
		end

		redis.call('HMSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
		redis.call('EXPIRE', key, ttl_seconds)

		return { allowed, tokens, retry_after_ms }
	`)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}
			key := cfg.Prefix + ":" + ip + ":" + c.Request().Method + ":" + c.Path()

			args := []interface{}{
				time.Now().UnixMilli(),
				cfg.Capacity,
				cfg.RefillInterval.Milliseconds(),
				int64(cfg.TTL / time.Second),
			}
			vals, err := bucket.Run(c.Request().Context(), rdb, []string{key}, args...).Result()
			if err != nil {
				// Redis down: let the request through rather than block bookings.
				return next(c)
			}
			arr, ok := vals.([]interface{})
			if !ok || len(arr) != 3 {
				return next(c)
			}
			allowed := asInt64(arr[0]) == 1
			remaining := asInt64(arr[1])
			retryMs := asInt64(arr[2])

			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if !allowed {
				secs := int(math.Ceil(float64(retryMs) / 1000.0))
				c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":       "too many requests",
					"retry_after": secs,
				})
			}
			return next(c)
		}
	}
}

func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}
