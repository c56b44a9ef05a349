package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/noah-isme/projecthub-api/internal/utils"
)

// RateLimitConfig describes one limiter scope.
type RateLimitConfig struct {
	// Scope prefixes every counter key, e.g. "login".
	Scope  string
	Max    int
	Window time.Duration
	// Storage holds counters; nil keeps them in process memory.
	Storage fiber.Storage
}

// RateLimit limits each caller within the scope. Authenticated callers are
// counted by user id, anonymous ones by client IP.
func RateLimit(cfg RateLimitConfig) fiber.Handler {
	if cfg.Max <= 0 {
		cfg.Max = 10
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Second
	}

	return limiter.New(limiter.Config{
		Max:        cfg.Max,
		Expiration: cfg.Window,
		Storage:    cfg.Storage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return rateLimitKey(cfg.Scope, c)
		},
		LimitReached: func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(cfg.Window.Round(time.Second)/time.Second)))
			return utils.SendError(c, fiber.StatusTooManyRequests, "too many requests")
		},
	})
}

func rateLimitKey(scope string, c *fiber.Ctx) string {
	if identity := IdentityFromContext(c); identity.ID != 0 {
		return scope + ":user:" + strconv.FormatUint(uint64(identity.ID), 10)
	}
	return scope + ":ip:" + c.IP()
}
