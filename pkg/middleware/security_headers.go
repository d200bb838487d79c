package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type securityHeadersMiddleware struct {
	logger        *logrus.Logger
	authFlowPaths []string
}

// NewSecurityHeadersMiddleware applies uniform defensive response headers.
// Auth-flow paths only get the nosniff header: the full set can break
// redirect-based flows rendered inside webviews.
func NewSecurityHeadersMiddleware(logger *logrus.Logger, authFlowPaths []string) Middleware {
	return &securityHeadersMiddleware{
		logger:        logger,
		authFlowPaths: authFlowPaths,
	}
}

func (m *securityHeadersMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")

		if !m.isAuthFlowPath(c.Path()) {
			c.Set("X-Frame-Options", "DENY")
			c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			c.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		}

		return c.Next()
	}
}

func (m *securityHeadersMiddleware) isAuthFlowPath(path string) bool {
	for _, p := range m.authFlowPaths {
		if path == p {
			return true
		}
	}
	return false
}
