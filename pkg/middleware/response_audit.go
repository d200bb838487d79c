package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/tripwise-ai/tripwise/pkg/common"
	"github.com/tripwise-ai/tripwise/pkg/infra/prometheus"
)

type responseAuditMiddleware struct {
	logger        *logrus.Logger
	slowThreshold time.Duration
}

// NewResponseAuditMiddleware wraps the response path to measure latency and
// flag suspicious outcomes (slow, or 4xx/5xx) for audit logging. It never
// alters the response.
func NewResponseAuditMiddleware(logger *logrus.Logger, slowThreshold time.Duration) Middleware {
	return &responseAuditMiddleware{
		logger:        logger,
		slowThreshold: slowThreshold,
	}
}

func (m *responseAuditMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		c.Locals(common.LatencyContextKey, start)

		err := c.Next()

		elapsed := time.Since(start)
		status := c.Response().StatusCode()

		var reason string
		switch {
		case status >= 500:
			reason = "server_error"
		case status >= 400:
			reason = "client_error"
		case m.slowThreshold > 0 && elapsed > m.slowThreshold:
			reason = "slow"
		}

		if reason != "" {
			sc := SecurityCtx(c)
			sc.AddFlag("suspicious_response")
			prometheus.SuspiciousResponses.WithLabelValues(reason).Inc()
			m.logger.WithFields(logrus.Fields{
				"path":        c.Path(),
				"method":      c.Method(),
				"status":      status,
				"latency_ms":  elapsed.Milliseconds(),
				"ip":          clientIP(c),
				"fingerprint": sc.Fingerprint,
				"reason":      reason,
			}).Warn("suspicious response")
		}

		return err
	}
}
