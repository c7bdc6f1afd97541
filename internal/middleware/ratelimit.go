package middleware

import (
	"context"
	"errors"
	"strconv"
	"time"

	"farmconnect/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy decides what happens to a request when Redis cannot be reached.
type FailPolicy int

const (
	// FailOpen lets the request through.
	FailOpen FailPolicy = iota
	// FailClosed answers 503.
	FailClosed
)

// ErrNoRateLimitStore is returned by an enabled Limiter that has no Redis client.
var ErrNoRateLimitStore = errors.New("rate limit: redis client is nil")

// Limiter is a fixed-window request counter kept in Redis, shared by every
// instance of the API. A disabled Limiter allows everything.
type Limiter struct {
	rdb     *redis.Client
	enabled bool
}

func NewLimiter(rdb *redis.Client, enabled bool) *Limiter {
	return &Limiter{rdb: rdb, enabled: enabled}
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Allow counts one request by id against resource's budget of limit per window.
func (l *Limiter) Allow(ctx context.Context, resource, id string, limit int, window time.Duration) (Decision, error) {
	if l == nil || !l.enabled {
		return Decision{Allowed: true, Remaining: limit}, nil
	}
	if l.rdb == nil {
		return Decision{}, ErrNoRateLimitStore
	}

	key := "rl:" + resource + ":" + id
	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return Decision{}, err
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, key, window).Err(); err != nil {
			return Decision{}, err
		}
	}

	d := Decision{Allowed: count <= int64(limit), Remaining: max(limit-int(count), 0)}
	if !d.Allowed {
		ttl, err := l.rdb.TTL(ctx, key).Result()
		if err != nil || ttl <= 0 {
			ttl = window
		}
		d.RetryAfter = ttl
	}
	return d, nil
}

// Handler enforces limit requests per window on resource, keyed by the
// authenticated user when there is one and by client IP otherwise.
func (l *Limiter) Handler(resource string, limit int, window time.Duration, policy FailPolicy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := "ip:" + c.IP()
		if uid, ok := c.Locals(LocalUserID).(string); ok && uid != "" {
			id = "user:" + uid
		}

		d, err := l.Allow(c.UserContext(), resource, id, limit, window)
		if err != nil {
			if policy == FailOpen {
				Logger.WarnContext(c.UserContext(), "rate limit store unavailable, failing open",
					"resource", resource, "error", err)
				return c.Next()
			}
			Logger.WarnContext(c.UserContext(), "rate limit store unavailable, failing closed",
				"resource", resource, "error", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(models.Envelope{
				Success: false,
				Error:   "Rate limiting is unavailable, please retry later",
				Code:    "RATE_LIMIT_UNAVAILABLE",
			})
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if !d.Allowed {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(d.RetryAfter.Round(time.Second).Seconds())))
			return c.Status(fiber.StatusTooManyRequests).JSON(models.Envelope{
				Success: false,
				Error:   "Too many requests, please try again later.",
				Code:    "RATE_LIMITED",
			})
		}
		return c.Next()
	}
}
