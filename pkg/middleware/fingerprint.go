package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tripwise-ai/tripwise/pkg/common"
	"github.com/tripwise-ai/tripwise/pkg/infra/fingerprint"
)

type fingerprintMiddleware struct {
	logger *logrus.Logger
}

// NewFingerprintMiddleware attaches a trace id and a stable caller
// fingerprint to every request. It is the first stage that touches the
// security context, so it also creates it.
func NewFingerprintMiddleware(logger *logrus.Logger) Middleware {
	return &fingerprintMiddleware{logger: logger}
}

func (m *fingerprintMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		fp := fingerprint.Fingerprint{
			IP:        clientIP(c),
			UserAgent: c.Get(fiber.HeaderUserAgent),
		}

		id := fp.ID()
		c.Locals(common.FingerprintIdContextKey, id)
		c.Locals(common.TraceIdKey, uuid.New().String())

		sc := SecurityCtx(c)
		sc.Fingerprint = id

		return c.Next()
	}
}
