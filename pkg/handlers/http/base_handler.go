package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/tripwise-ai/tripwise/pkg/common"
	"github.com/tripwise-ai/tripwise/pkg/domain"
	"github.com/tripwise-ai/tripwise/pkg/domain/identity"
	"github.com/tripwise-ai/tripwise/pkg/middleware"
)

// quotaIdentifier keys per-feature budgets. Authenticated callers are
// budgeted by subject; anonymous callers by their request fingerprint so a
// shared NAT address does not pool one budget.
func quotaIdentifier(c *fiber.Ctx) string {
	if id := middleware.RequestIdentity(c); id != nil {
		return id.Subject
	}
	if fp, ok := c.Locals(common.FingerprintIdContextKey).(string); ok && fp != "" {
		return fp
	}
	return c.IP()
}

// requireIdentity rejects anonymous requests. Used by the trip handlers,
// which read and write caller-owned documents.
func requireIdentity(c *fiber.Ctx) (*identity.Identity, error) {
	id := middleware.RequestIdentity(c)
	if id == nil {
		return nil, domain.Reject(c, fiber.StatusUnauthorized, domain.CodeUnauthorized,
			"authentication required", nil)
	}
	return id, nil
}

func rejectQuotaExceeded(c *fiber.Ctx, quotaKey string, resetAt int64) error {
	return domain.Reject(c, fiber.StatusTooManyRequests, domain.CodeRateLimitExceeded,
		fmt.Sprintf("%s quota exceeded", quotaKey), map[string]interface{}{
			"resetAt": resetAt,
			"quota":   quotaKey,
		})
}

func logHandlerError(logger *logrus.Logger, c *fiber.Ctx, err error, msg string) {
	logger.WithFields(logrus.Fields{
		"path":        c.Path(),
		"method":      c.Method(),
		"trace_id":    c.Locals(common.TraceIdKey),
		"fingerprint": c.Locals(common.FingerprintIdContextKey),
	}).WithError(err).Error(msg)
}
