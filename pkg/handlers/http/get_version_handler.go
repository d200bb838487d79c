package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tripwise-ai/tripwise/pkg/version"
)

type getVersionHandler struct{}

func NewGetVersionHandler() Handler {
	return &getVersionHandler{}
}

func (h *getVersionHandler) Handle(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"version": version.Version,
	})
}
