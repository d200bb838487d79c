package server

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/tripwise-ai/tripwise/pkg/config"
	handlers "github.com/tripwise-ai/tripwise/pkg/handlers/http"
	"github.com/tripwise-ai/tripwise/pkg/middleware"
)

type (
	ApiServerDI struct {
		MiddlewareTransport middleware.Transport
		HandlerTransport    handlers.HandlerTransport
		Config              *config.Config
		Logger              *logrus.Logger
	}
	ApiServer struct {
		*BaseServer
		middlewareTransport middleware.Transport
		handlerTransport    handlers.HandlerTransport
	}
)

func NewApiServer(di ApiServerDI) *ApiServer {
	return &ApiServer{
		BaseServer:          NewBaseServer(di.Config, di.Logger),
		middlewareTransport: di.MiddlewareTransport,
		handlerTransport:    di.HandlerTransport,
	}
}

func (s *ApiServer) Run() error {
	s.setupHealthCheck()
	s.setupRoutes()
	s.setupMetricsEndpoint()

	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)
	s.Logger.WithField("addr", addr).Info("Starting api server")
	return s.Router.Listen(addr)
}

func (s *ApiServer) setupRoutes() {
	// Version sits outside the admission pipeline, like health.
	s.Router.Get("/version", s.handlerTransport.GetVersionHandler.Handle)

	api := s.Router.Group("",
		s.middlewareTransport.PanicRecoverMiddleware.Middleware(),
		s.middlewareTransport.MetricsMiddleware.Middleware(),
		s.middlewareTransport.FingerprintMiddleware.Middleware(),
		s.middlewareTransport.SecurityHeadersMiddleware.Middleware(),
		s.middlewareTransport.ResponseAuditMiddleware.Middleware(),
		s.middlewareTransport.AuthMiddleware.Middleware(),
		s.middlewareTransport.SignatureMiddleware.Middleware(),
		s.middlewareTransport.HeuristicsMiddleware.Middleware(),
		s.middlewareTransport.GlobalLimiterMiddleware.Middleware(),
		s.middlewareTransport.RoleLimiterMiddleware.Middleware(),
		s.middlewareTransport.MethodLimiterMiddleware.Middleware(),
	)

	v1 := api.Group("/api/v1")
	{
		v1.Post("/translate", s.handlerTransport.TranslateHandler.Handle)
		v1.Post("/phrasebook", s.handlerTransport.PhrasebookHandler.Handle)
		v1.Post("/culture", s.handlerTransport.CultureHandler.Handle)
		v1.Get("/poi", s.handlerTransport.PoiHandler.Handle)
		v1.Get("/stays", s.handlerTransport.StaysHandler.Handle)

		trips := v1.Group("/trips")
		{
			trips.Post("", s.handlerTransport.CreateTripHandler.Handle)
			trips.Get("", s.handlerTransport.ListTripsHandler.Handle)
			trips.Get("/:trip_id", s.handlerTransport.GetTripHandler.Handle)
			trips.Delete("/:trip_id", s.handlerTransport.DeleteTripHandler.Handle)
		}

		admin := v1.Group("/admin")
		{
			admin.Get("/cache/stats", s.handlerTransport.CacheStatsHandler.Handle)
			admin.Delete("/cache/:namespace", s.handlerTransport.InvalidateCacheHandler.Handle)
		}
	}
}

func (s *ApiServer) Shutdown() error {
	return s.Router.Shutdown()
}
