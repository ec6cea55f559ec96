package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/clickquest/clicker-system/internal/api/handler"
	"github.com/clickquest/clicker-system/internal/api/middleware"
	"github.com/clickquest/clicker-system/internal/core/ports"
)

// RouterConfig carries the collaborator-layer settings the router needs.
type RouterConfig struct {
	// SessionSecret signs the session-handle cookie.
	SessionSecret string
	// FrontendOrigin is the single origin allowed to send credentialed
	// cross-origin requests.
	FrontendOrigin string
	// Registry receives the HTTP metrics. Defaults to the global
	// Prometheus registry; tests inject their own to avoid duplicate
	// collector registration.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
// The transfer service is injected by the caller; the router owns only the
// HTTP plumbing around it.
func NewRouter(service ports.TransferService, db *mongo.Database, rdb *redis.Client, cfg RouterConfig, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)
	e.Validator = handler.NewValidator()

	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if cfg.Registry != nil {
		registerer = cfg.Registry
		gatherer = cfg.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "clicker",
		Registerer: registerer,
	}))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     []string{cfg.FrontendOrigin},
		AllowCredentials: true,
	}))
	e.Use(middleware.Session(cfg.SessionSecret))

	// --- Session / transfer protocol ---
	h := handler.NewSessionHandler(service)

	e.POST("/user", h.CreateUser)
	e.PUT("/user", h.RedeemTransfer)
	e.PATCH("/user", h.Rename)
	e.PUT("/session", h.ResumeSession)
	e.GET("/session", h.CheckSession)
	e.GET("/transfer_id", h.BeginTransfer)
	e.POST("/clicks", h.AddClicks)
	e.POST("/link", h.LinkExternal)

	// --- Health probes and metrics (no session required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: gatherer,
	}))

	return e
}
