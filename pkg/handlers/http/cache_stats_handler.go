package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/tripwise-ai/tripwise/pkg/admission/cache"
	"github.com/tripwise-ai/tripwise/pkg/domain"
	"github.com/tripwise-ai/tripwise/pkg/domain/identity"
)

type cacheStatsHandler struct {
	logger *logrus.Logger
	cache  *cache.Cache
}

func NewCacheStatsHandler(logger *logrus.Logger, cacheInstance *cache.Cache) Handler {
	return &cacheStatsHandler{logger: logger, cache: cacheInstance}
}

func (h *cacheStatsHandler) Handle(c *fiber.Ctx) error {
	id, err := requireIdentity(c)
	if err != nil {
		return err
	}
	if !id.HasRole(identity.RoleAdmin) {
		return domain.Reject(c, fiber.StatusForbidden, domain.CodeForbidden,
			"admin role required", nil)
	}

	stats := h.cache.Stats()
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"entries":   h.cache.Len(),
		"hits":      stats.Hits,
		"misses":    stats.Misses,
		"evictions": stats.Evictions,
		"sets":      stats.Sets,
	})
}
