package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/tripwise-ai/tripwise/pkg/admission/cache"
	"github.com/tripwise-ai/tripwise/pkg/common"
	"github.com/tripwise-ai/tripwise/pkg/domain"
	"github.com/tripwise-ai/tripwise/pkg/infra/providers/places"
	"golang.org/x/sync/singleflight"
)

type poiHandler struct {
	logger       *logrus.Logger
	cache        *cache.Cache
	placesClient places.Client
	group        singleflight.Group
}

func NewPoiHandler(
	logger *logrus.Logger,
	cacheInstance *cache.Cache,
	placesClient places.Client,
) Handler {
	return &poiHandler{
		logger:       logger,
		cache:        cacheInstance,
		placesClient: placesClient,
	}
}

func (h *poiHandler) Handle(c *fiber.Ctx) error {
	location := c.Query("location")
	if location == "" {
		return domain.Reject(c, fiber.StatusBadRequest, domain.CodeValidationError,
			"location is required", nil)
	}
	category := c.Query("category")
	limit := c.QueryInt("limit", 20)

	query := places.POIQuery{Location: location, Category: category, Limit: limit}
	// The limit shapes the provider payload, so it is part of the key: a
	// cached narrow page must never answer a wider request.
	cacheKey := fmt.Sprintf("%s:%s:%d", location, category, limit)

	if cached, ok := h.cache.Get(common.PoiNamespace, cacheKey); ok {
		if results, ok := cached.([]places.Place); ok {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"places": results, "cached": true})
		}
	}

	// Concurrent misses for the same query collapse into one provider call.
	ctx := c.Context()
	result, err, _ := h.group.Do(cacheKey, func() (interface{}, error) {
		return h.placesClient.SearchPOI(ctx, query)
	})
	if err != nil {
		logHandlerError(h.logger, c, err, "poi search failed")
		return domain.Reject(c, fiber.StatusBadGateway, domain.CodeInternalError,
			"places search unavailable", nil)
	}

	results, ok := result.([]places.Place)
	if !ok {
		return domain.Reject(c, fiber.StatusInternalServerError, domain.CodeInternalError,
			"places search unavailable", nil)
	}

	h.cache.Set(common.PoiNamespace, cacheKey, results, common.PlacesCacheTTL)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"places": results})
}
