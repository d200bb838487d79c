package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/tripwise-ai/tripwise/pkg/admission/ratelimit"
	"github.com/tripwise-ai/tripwise/pkg/domain"
	"github.com/tripwise-ai/tripwise/pkg/domain/identity"
)

// KeyFunc derives the limiter key for a request. The default keys on the
// caller address.
type KeyFunc func(c *fiber.Ctx) string

type globalLimiterMiddleware struct {
	logger *logrus.Logger
	engine *ratelimit.Engine
	keyFn  KeyFunc
}

// NewGlobalLimiterMiddleware applies one shared budget to all requests from
// a caller, regardless of role or method.
func NewGlobalLimiterMiddleware(logger *logrus.Logger, engine *ratelimit.Engine, keyFn KeyFunc) Middleware {
	if keyFn == nil {
		keyFn = clientIP
	}
	return &globalLimiterMiddleware{
		logger: logger,
		engine: engine,
		keyFn:  keyFn,
	}
}

func (m *globalLimiterMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision := m.engine.Check(m.keyFn(c))
		setRateLimitHeaders(c, m.engine.Max(), decision)
		if !decision.Allowed {
			return rejectRateLimited(m.logger, c, m.engine.Name(), decision)
		}
		return c.Next()
	}
}

type roleLimiterMiddleware struct {
	logger *logrus.Logger
	// limiters is an allow-list built once at startup: a role without an
	// entry is intentionally not limited by this stage.
	limiters map[string]*ratelimit.Engine
}

func NewRoleLimiterMiddleware(logger *logrus.Logger, limiters map[string]*ratelimit.Engine) Middleware {
	return &roleLimiterMiddleware{
		logger:   logger,
		limiters: limiters,
	}
}

func (m *roleLimiterMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := identity.RoleAnonymous
		if id := RequestIdentity(c); id != nil {
			role = id.PrimaryRole()
		}

		engine, ok := m.limiters[role]
		if !ok {
			return c.Next()
		}

		decision := engine.Check(clientIP(c) + ":" + role)
		setRateLimitHeaders(c, engine.Max(), decision)
		if !decision.Allowed {
			return rejectRateLimited(m.logger, c, engine.Name(), decision)
		}
		return c.Next()
	}
}

type methodLimiterMiddleware struct {
	logger *logrus.Logger
	// Same opt-in semantics as the role limiter: unlisted methods pass.
	limiters map[string]*ratelimit.Engine
}

func NewMethodLimiterMiddleware(logger *logrus.Logger, limiters map[string]*ratelimit.Engine) Middleware {
	return &methodLimiterMiddleware{
		logger:   logger,
		limiters: limiters,
	}
}

func (m *methodLimiterMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		engine, ok := m.limiters[c.Method()]
		if !ok {
			return c.Next()
		}

		decision := engine.Check(clientIP(c) + ":" + c.Method())
		setRateLimitHeaders(c, engine.Max(), decision)
		if !decision.Allowed {
			return rejectRateLimited(m.logger, c, engine.Name(), decision)
		}
		return c.Next()
	}
}

func setRateLimitHeaders(c *fiber.Ctx, max int, d ratelimit.Decision) {
	c.Set("X-RateLimit-Limit", strconv.Itoa(max))
	c.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	c.Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
}

func rejectRateLimited(logger *logrus.Logger, c *fiber.Ctx, limiter string, d ratelimit.Decision) error {
	role := identity.RoleAnonymous
	var subject string
	if id := RequestIdentity(c); id != nil {
		role = id.PrimaryRole()
		subject = id.Subject
	}

	logger.WithFields(logrus.Fields{
		"limiter": limiter,
		"ip":      clientIP(c),
		"subject": subject,
		"role":    role,
		"path":    c.Path(),
		"method":  c.Method(),
		"reset":   d.ResetAt.Unix(),
	}).Warn("rate limit exceeded")

	retryAfter := int64(time.Until(d.ResetAt).Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}
	c.Set("Retry-After", strconv.FormatInt(retryAfter, 10))

	return domain.Reject(c, fiber.StatusTooManyRequests, domain.CodeRateLimitExceeded,
		"rate limit exceeded", map[string]interface{}{
			"resetAt": d.ResetAt.Unix(),
			"limiter": limiter,
		})
}
