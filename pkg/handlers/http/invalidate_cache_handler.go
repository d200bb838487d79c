package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/tripwise-ai/tripwise/pkg/admission/cache"
	"github.com/tripwise-ai/tripwise/pkg/domain"
	"github.com/tripwise-ai/tripwise/pkg/domain/identity"
)

type invalidateCacheHandler struct {
	logger *logrus.Logger
	cache  *cache.Cache
}

func NewInvalidateCacheHandler(logger *logrus.Logger, cacheInstance *cache.Cache) Handler {
	return &invalidateCacheHandler{logger: logger, cache: cacheInstance}
}

func (h *invalidateCacheHandler) Handle(c *fiber.Ctx) error {
	id, err := requireIdentity(c)
	if err != nil {
		return err
	}
	if !id.HasRole(identity.RoleAdmin) {
		return domain.Reject(c, fiber.StatusForbidden, domain.CodeForbidden,
			"admin role required", nil)
	}

	namespace := c.Params("namespace")
	if namespace == "" {
		return domain.Reject(c, fiber.StatusBadRequest, domain.CodeValidationError,
			"namespace is required", nil)
	}

	removed := h.cache.ClearNamespace(namespace)
	h.logger.WithFields(logrus.Fields{
		"namespace": namespace,
		"removed":   removed,
		"subject":   id.Subject,
	}).Info("cache namespace invalidated")

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"namespace": namespace,
		"removed":   removed,
	})
}
