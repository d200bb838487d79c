package http

import "github.com/gofiber/fiber/v2"

type Handler interface {
	Handle(ctx *fiber.Ctx) error
}

type HandlerTransport struct {
	// Features
	TranslateHandler  Handler
	PhrasebookHandler Handler
	CultureHandler    Handler
	PoiHandler        Handler
	StaysHandler      Handler

	// Trips
	CreateTripHandler Handler
	ListTripsHandler  Handler
	GetTripHandler    Handler
	DeleteTripHandler Handler

	// Ops
	GetVersionHandler      Handler
	CacheStatsHandler      Handler
	InvalidateCacheHandler Handler
}
