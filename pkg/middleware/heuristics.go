package middleware

import (
	"strings"

	"github.com/avct/uasurfer"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/tripwise-ai/tripwise/pkg/domain"
)

// scriptToolMarkers are user-agent substrings of common scripting clients.
// uasurfer classifies most crawlers, but plain HTTP tools slip through it.
var scriptToolMarkers = []string{
	"curl", "wget", "python-requests", "httpie", "go-http-client", "libwww",
}

type heuristicsMiddleware struct {
	logger          *logrus.Logger
	strict          bool
	requiredHeaders []string
}

// NewHeuristicsMiddleware is a lightweight sanity pass over unauthenticated
// requests. Requests carrying a bearer credential skip it entirely: the
// downstream identity verification is authoritative for those.
func NewHeuristicsMiddleware(logger *logrus.Logger, strict bool, requiredHeaders []string) Middleware {
	return &heuristicsMiddleware{
		logger:          logger,
		strict:          strict,
		requiredHeaders: requiredHeaders,
	}
}

func (m *heuristicsMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if bearerToken(c) != "" || RequestIdentity(c) != nil {
			return c.Next()
		}

		sc := SecurityCtx(c)

		var missing []string
		for _, h := range m.requiredHeaders {
			if c.Get(h) == "" {
				missing = append(missing, h)
			}
		}

		ua := c.Get(fiber.HeaderUserAgent)
		suspicious := m.isSuspiciousUserAgent(ua)
		if suspicious {
			sc.AddFlag("suspicious_user_agent")
		}

		if len(missing) > 0 || ua == "" || suspicious {
			m.logger.WithFields(logrus.Fields{
				"path":            c.Path(),
				"method":          c.Method(),
				"ip":              clientIP(c),
				"user_agent":      ua,
				"missing_headers": missing,
				"strict":          m.strict,
			}).Warn("request failed heuristic checks")

			if m.strict {
				return domain.Reject(c, fiber.StatusForbidden, domain.CodeForbidden,
					"request blocked by security policy", nil)
			}
		}

		return c.Next()
	}
}

func (m *heuristicsMiddleware) isSuspiciousUserAgent(ua string) bool {
	if ua == "" {
		return true
	}
	lower := strings.ToLower(ua)
	for _, marker := range scriptToolMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	parsed := uasurfer.Parse(ua)
	return parsed.IsBot()
}
