package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/tripwise-ai/tripwise/pkg/common"
	"github.com/tripwise-ai/tripwise/pkg/domain"
	"github.com/tripwise-ai/tripwise/pkg/infra/auth/jwt"
)

type authMiddleware struct {
	logger     *logrus.Logger
	jwtManager jwt.Manager
}

// NewAuthMiddleware verifies bearer tokens when present. Requests without a
// credential pass through anonymously; later stages decide whether that is
// acceptable for the route.
func NewAuthMiddleware(logger *logrus.Logger, jwtManager jwt.Manager) Middleware {
	return &authMiddleware{
		logger:     logger,
		jwtManager: jwtManager,
	}
}

func (m *authMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return c.Next()
		}

		id, err := m.jwtManager.DecodeIdentity(token)
		if err != nil {
			m.logger.WithFields(logrus.Fields{
				"path":        c.Path(),
				"method":      c.Method(),
				"ip":          clientIP(c),
				"fingerprint": c.Locals(common.FingerprintIdContextKey),
			}).WithError(err).Warn("bearer token rejected")

			message := "invalid credential"
			if errors.Is(err, domain.ErrExpiredToken) {
				message = "expired credential"
			}
			return domain.Reject(c, fiber.StatusUnauthorized, domain.CodeUnauthorized, message, nil)
		}

		if !id.IsValid() {
			m.logger.WithFields(logrus.Fields{
				"subject": id.Subject,
				"path":    c.Path(),
				"method":  c.Method(),
				"ip":      clientIP(c),
			}).Warn("identity expired or revoked")
			return domain.Reject(c, fiber.StatusUnauthorized, domain.CodeUnauthorized, "invalid credential", nil)
		}

		c.Locals(common.IdentityContextKey, id)

		sc := SecurityCtx(c)
		sc.Authenticated = true
		sc.Roles = append([]string{}, id.Roles...)

		return c.Next()
	}
}
