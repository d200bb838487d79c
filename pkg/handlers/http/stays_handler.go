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

type staysHandler struct {
	logger       *logrus.Logger
	cache        *cache.Cache
	placesClient places.Client
	group        singleflight.Group
}

func NewStaysHandler(
	logger *logrus.Logger,
	cacheInstance *cache.Cache,
	placesClient places.Client,
) Handler {
	return &staysHandler{
		logger:       logger,
		cache:        cacheInstance,
		placesClient: placesClient,
	}
}

func (h *staysHandler) Handle(c *fiber.Ctx) error {
	location := c.Query("location")
	if location == "" {
		return domain.Reject(c, fiber.StatusBadRequest, domain.CodeValidationError,
			"location is required", nil)
	}

	query := places.StaysQuery{
		Location: location,
		CheckIn:  c.Query("check_in"),
		CheckOut: c.Query("check_out"),
		Guests:   c.QueryInt("guests", 1),
		Limit:    c.QueryInt("limit", 20),
	}
	cacheKey := fmt.Sprintf("%s:%s:%s:%d:%d",
		query.Location, query.CheckIn, query.CheckOut, query.Guests, query.Limit)

	if cached, ok := h.cache.Get(common.StaysNamespace, cacheKey); ok {
		if results, ok := cached.([]places.Stay); ok {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"stays": results, "cached": true})
		}
	}

	ctx := c.Context()
	result, err, _ := h.group.Do(cacheKey, func() (interface{}, error) {
		return h.placesClient.SearchStays(ctx, query)
	})
	if err != nil {
		logHandlerError(h.logger, c, err, "stays search failed")
		return domain.Reject(c, fiber.StatusBadGateway, domain.CodeInternalError,
			"lodging search unavailable", nil)
	}

	results, ok := result.([]places.Stay)
	if !ok {
		return domain.Reject(c, fiber.StatusInternalServerError, domain.CodeInternalError,
			"lodging search unavailable", nil)
	}

	h.cache.Set(common.StaysNamespace, cacheKey, results, common.PlacesCacheTTL)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"stays": results})
}
