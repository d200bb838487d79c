package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/tripwise-ai/tripwise/pkg/domain"
	"github.com/tripwise-ai/tripwise/pkg/domain/trip"
)

type listTripsHandler struct {
	logger *logrus.Logger
	repo   trip.Repository
}

func NewListTripsHandler(logger *logrus.Logger, repo trip.Repository) Handler {
	return &listTripsHandler{logger: logger, repo: repo}
}

func (h *listTripsHandler) Handle(c *fiber.Ctx) error {
	id, err := requireIdentity(c)
	if err != nil {
		return err
	}

	trips, err := h.repo.ListBySubject(c.Context(), id.Subject)
	if err != nil {
		logHandlerError(h.logger, c, err, "failed to list trips")
		return domain.Reject(c, fiber.StatusInternalServerError, domain.CodeInternalError,
			"failed to list trips", nil)
	}
	if trips == nil {
		trips = []trip.Trip{}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"trips": trips})
}
