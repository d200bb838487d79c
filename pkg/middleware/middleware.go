package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tripwise-ai/tripwise/pkg/admission/securitycontext"
	"github.com/tripwise-ai/tripwise/pkg/common"
	"github.com/tripwise-ai/tripwise/pkg/domain/identity"
)

type Middleware interface {
	Middleware() fiber.Handler
}

// Transport carries the admission pipeline stages in installation order.
type Transport struct {
	PanicRecoverMiddleware    Middleware
	MetricsMiddleware         Middleware
	FingerprintMiddleware     Middleware
	SecurityHeadersMiddleware Middleware
	ResponseAuditMiddleware   Middleware
	AuthMiddleware            Middleware
	SignatureMiddleware       Middleware
	HeuristicsMiddleware      Middleware
	GlobalLimiterMiddleware   Middleware
	RoleLimiterMiddleware     Middleware
	MethodLimiterMiddleware   Middleware
}

// SecurityCtx returns the request's security context, creating it on first
// use. Later stages merge into the same instance.
func SecurityCtx(c *fiber.Ctx) *securitycontext.SecurityContext {
	if sc, ok := c.Locals(common.SecurityContextKey).(*securitycontext.SecurityContext); ok {
		return sc
	}
	sc := securitycontext.New(time.Now())
	c.Locals(common.SecurityContextKey, sc)
	return sc
}

// RequestIdentity returns the verified identity attached by the auth stage,
// or nil for anonymous requests.
func RequestIdentity(c *fiber.Ctx) *identity.Identity {
	id, ok := c.Locals(common.IdentityContextKey).(*identity.Identity)
	if !ok {
		return nil
	}
	return id
}

// clientIP prefers proxy-set headers over the socket address, in the same
// order the upstream load balancers populate them.
func clientIP(c *fiber.Ctx) string {
	for _, header := range []string{
		"X-Real-IP",
		"X-Forwarded-For",
		"True-Client-IP",
		"CF-Connecting-IP",
	} {
		if v := c.Get(header); v != "" {
			if idx := strings.IndexByte(v, ','); idx > 0 {
				return strings.TrimSpace(v[:idx])
			}
			return v
		}
	}
	return c.IP()
}

func bearerToken(c *fiber.Ctx) string {
	auth := c.Get(fiber.HeaderAuthorization)
	if auth == "" {
		return ""
	}
	const prefix = "Bearer "
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return auth[len(prefix):]
	}
	return ""
}
