package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/tripwise-ai/tripwise/pkg/admission/cache"
	"github.com/tripwise-ai/tripwise/pkg/admission/quota"
	"github.com/tripwise-ai/tripwise/pkg/admission/ratelimit"
	"github.com/tripwise-ai/tripwise/pkg/admission/signature"
	"github.com/tripwise-ai/tripwise/pkg/config"
	handlers "github.com/tripwise-ai/tripwise/pkg/handlers/http"
	"github.com/tripwise-ai/tripwise/pkg/infra/auth/jwt"
	"github.com/tripwise-ai/tripwise/pkg/infra/database"
	"github.com/tripwise-ai/tripwise/pkg/infra/httpx"
	infraLogger "github.com/tripwise-ai/tripwise/pkg/infra/logger"
	"github.com/tripwise-ai/tripwise/pkg/infra/prometheus"
	"github.com/tripwise-ai/tripwise/pkg/infra/providers/llm"
	"github.com/tripwise-ai/tripwise/pkg/infra/providers/places"
	"github.com/tripwise-ai/tripwise/pkg/infra/repository"
	"github.com/tripwise-ai/tripwise/pkg/infra/translator"
	"github.com/tripwise-ai/tripwise/pkg/middleware"
	"github.com/tripwise-ai/tripwise/pkg/server"
)

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	if err := config.Load("./config"); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.GetConfig()

	logger := infraLogger.NewLogger(cfg.Server.LogLevel)

	prometheus.Initialize()

	db, err := database.NewDB(logger, &database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	tripRepository := repository.NewTripRepository(db.DB)

	// Admission state is process-owned: cache, quota, and limiter counters
	// live and die with this instance.
	cacheInstance := cache.New(&cache.Opts{MaxEntries: cfg.Admission.Cache.MaxEntries})
	quotaEngine := quota.NewEngine(nil)

	verifier, err := signature.NewVerifier(cfg.Admission.SigningSecret, &signature.Opts{
		MaxSkew: time.Duration(cfg.Admission.Signature.MaxSkewSeconds) * time.Second,
	})
	if err != nil {
		logger.Fatalf("Failed to initialize signature verifier: %v", err)
	}

	jwtManager := jwt.NewJwtManager(cfg.Admission.IdentitySecret)

	globalEngine := buildEngine(logger, "global", cfg.Admission.GlobalLimit)
	roleEngines := buildEngineTable(logger, "role", cfg.Admission.RoleLimits)
	methodEngines := buildEngineTable(logger, "method", cfg.Admission.MethodLimits)

	// Outbound providers share one fasthttp client; each gets its own breaker.
	httpClient := httpx.NewFastHTTPClient(
		httpx.WithTimeout(30 * time.Second),
	)
	placesClient := places.NewClient(
		httpClient, logger,
		httpx.NewCircuitBreaker("places", 30*time.Second, 5),
		cfg.Providers.Places.BaseURL, cfg.Providers.Places.APIKey,
	)
	llmClient := llm.NewClient(
		httpClient, logger,
		httpx.NewCircuitBreaker("llm", 60*time.Second, 5),
		cfg.Providers.LLM.BaseURL, cfg.Providers.LLM.APIKey, cfg.Providers.LLM.Model,
	)

	// The on-device model runtime ships separately; until it is present the
	// completion provider does the translating.
	if cfg.Providers.Translator.ModelPath != "" {
		logger.WithField("model_path", cfg.Providers.Translator.ModelPath).
			Info("local translation model configured but no runtime bundled, using completion provider")
	}
	trans := translator.NewLLMTranslator(llmClient, logger)

	middlewareTransport := middleware.Transport{
		PanicRecoverMiddleware:    middleware.NewPanicRecoverMiddleware(logger),
		MetricsMiddleware:         middleware.NewMetricsMiddleware(logger),
		FingerprintMiddleware:     middleware.NewFingerprintMiddleware(logger),
		SecurityHeadersMiddleware: middleware.NewSecurityHeadersMiddleware(logger, cfg.Admission.AuthFlowPaths),
		ResponseAuditMiddleware:   middleware.NewResponseAuditMiddleware(logger, time.Duration(cfg.Admission.SlowResponseMs)*time.Millisecond),
		AuthMiddleware:            middleware.NewAuthMiddleware(logger, jwtManager),
		SignatureMiddleware: middleware.NewSignatureMiddleware(logger, verifier, middleware.SignatureMiddlewareConfig{
			SkipPaths:        cfg.Admission.Signature.SkipPaths,
			ProtectedPaths:   cfg.Admission.Signature.ProtectedPaths,
			ProtectedMethods: cfg.Admission.Signature.ProtectedMethods,
		}),
		HeuristicsMiddleware:    middleware.NewHeuristicsMiddleware(logger, cfg.Admission.StrictHeuristics, cfg.Admission.RequiredHeaders),
		GlobalLimiterMiddleware: middleware.NewGlobalLimiterMiddleware(logger, globalEngine, nil),
		RoleLimiterMiddleware:   middleware.NewRoleLimiterMiddleware(logger, roleEngines),
		MethodLimiterMiddleware: middleware.NewMethodLimiterMiddleware(logger, methodEngines),
	}

	phrasebookLimit, phrasebookWindow := quotaSettings(logger, cfg, "phrasebook", 20, time.Hour)
	cultureLimit, cultureWindow := quotaSettings(logger, cfg, "culture", 30, time.Hour)

	handlerTransport := handlers.HandlerTransport{
		TranslateHandler:  handlers.NewTranslateHandler(logger, cacheInstance, trans),
		PhrasebookHandler: handlers.NewPhrasebookHandler(logger, cacheInstance, quotaEngine, llmClient, phrasebookLimit, phrasebookWindow),
		CultureHandler:    handlers.NewCultureHandler(logger, cacheInstance, quotaEngine, llmClient, cultureLimit, cultureWindow),
		PoiHandler:        handlers.NewPoiHandler(logger, cacheInstance, placesClient),
		StaysHandler:      handlers.NewStaysHandler(logger, cacheInstance, placesClient),

		CreateTripHandler: handlers.NewCreateTripHandler(logger, tripRepository),
		ListTripsHandler:  handlers.NewListTripsHandler(logger, tripRepository),
		GetTripHandler:    handlers.NewGetTripHandler(logger, tripRepository),
		DeleteTripHandler: handlers.NewDeleteTripHandler(logger, tripRepository),

		GetVersionHandler:      handlers.NewGetVersionHandler(),
		CacheStatsHandler:      handlers.NewCacheStatsHandler(logger, cacheInstance),
		InvalidateCacheHandler: handlers.NewInvalidateCacheHandler(logger, cacheInstance),
	}

	srv := server.NewApiServer(server.ApiServerDI{
		MiddlewareTransport: middlewareTransport,
		HandlerTransport:    handlerTransport,
		Config:              cfg,
		Logger:              logger,
	})

	go func() {
		if err := srv.Run(); err != nil {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	fmt.Println("shutting down server...")
	if err := srv.Shutdown(); err != nil {
		fmt.Println("error shutting down server:", err)
		os.Exit(1)
	}
	fmt.Println("server gracefully stopped")
}

func buildEngine(logger *logrus.Logger, name string, limit config.LimitConfig) *ratelimit.Engine {
	window, err := limit.WindowDuration()
	if err != nil {
		logger.Fatalf("invalid %s limit: %v", name, err)
	}
	engine, err := ratelimit.NewEngine(name, window, limit.Limit, nil)
	if err != nil {
		logger.Fatalf("failed to build %s limiter: %v", name, err)
	}
	return engine
}

func buildEngineTable(logger *logrus.Logger, kind string, limits map[string]config.LimitConfig) map[string]*ratelimit.Engine {
	engines := make(map[string]*ratelimit.Engine, len(limits))
	for key, limit := range limits {
		engines[key] = buildEngine(logger, kind+":"+key, limit)
	}
	return engines
}

func quotaSettings(logger *logrus.Logger, cfg *config.Config, name string, defaultLimit int, defaultWindow time.Duration) (int, time.Duration) {
	q, ok := cfg.Admission.Quotas[name]
	if !ok {
		return defaultLimit, defaultWindow
	}
	window, err := time.ParseDuration(q.Window)
	if err != nil || window <= 0 {
		logger.Fatalf("invalid quota window for %s: %q", name, q.Window)
	}
	return q.Limit, window
}
