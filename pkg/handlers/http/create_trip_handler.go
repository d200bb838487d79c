package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tripwise-ai/tripwise/pkg/domain"
	"github.com/tripwise-ai/tripwise/pkg/domain/trip"
)

type createTripRequest struct {
	Title       string `json:"title"`
	Destination string `json:"destination"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Notes       string `json:"notes"`
	Phrasebook  string `json:"phrasebook"`
}

type createTripHandler struct {
	logger *logrus.Logger
	repo   trip.Repository
}

func NewCreateTripHandler(logger *logrus.Logger, repo trip.Repository) Handler {
	return &createTripHandler{logger: logger, repo: repo}
}

func (h *createTripHandler) Handle(c *fiber.Ctx) error {
	id, err := requireIdentity(c)
	if err != nil {
		return err
	}

	var req createTripRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.Reject(c, fiber.StatusBadRequest, domain.CodeValidationError,
			"invalid request body", nil)
	}
	if req.Title == "" || req.Destination == "" {
		return domain.Reject(c, fiber.StatusBadRequest, domain.CodeValidationError,
			"title and destination are required", nil)
	}

	t := &trip.Trip{
		ID:          uuid.New(),
		Subject:     id.Subject,
		Title:       req.Title,
		Destination: req.Destination,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Notes:       req.Notes,
		Phrasebook:  req.Phrasebook,
	}
	if err := h.repo.Save(c.Context(), t); err != nil {
		logHandlerError(h.logger, c, err, "failed to save trip")
		return domain.Reject(c, fiber.StatusInternalServerError, domain.CodeInternalError,
			"failed to save trip", nil)
	}

	return c.Status(fiber.StatusCreated).JSON(t)
}
