package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tripwise-ai/tripwise/pkg/domain"
	"github.com/tripwise-ai/tripwise/pkg/domain/trip"
	"github.com/tripwise-ai/tripwise/pkg/infra/repository"
)

type deleteTripHandler struct {
	logger *logrus.Logger
	repo   trip.Repository
}

func NewDeleteTripHandler(logger *logrus.Logger, repo trip.Repository) Handler {
	return &deleteTripHandler{logger: logger, repo: repo}
}

func (h *deleteTripHandler) Handle(c *fiber.Ctx) error {
	id, err := requireIdentity(c)
	if err != nil {
		return err
	}

	tripID, err := uuid.Parse(c.Params("trip_id"))
	if err != nil {
		return domain.Reject(c, fiber.StatusBadRequest, domain.CodeValidationError,
			"invalid trip id", nil)
	}

	if err := h.repo.Delete(c.Context(), id.Subject, tripID); err != nil {
		if errors.Is(err, repository.ErrTripNotFound) {
			return domain.Reject(c, fiber.StatusNotFound, domain.CodeValidationError,
				"trip not found", nil)
		}
		logHandlerError(h.logger, c, err, "failed to delete trip")
		return domain.Reject(c, fiber.StatusInternalServerError, domain.CodeInternalError,
			"failed to delete trip", nil)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
