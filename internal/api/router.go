package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/luckyhouse/listing-api/docs" // registers the OpenAPI document
	"github.com/luckyhouse/listing-api/internal/api/handler"
	"github.com/luckyhouse/listing-api/internal/api/middleware"
	"github.com/luckyhouse/listing-api/internal/core/domain"
	"github.com/luckyhouse/listing-api/internal/core/ports"
)

const (
	// bodyLimit bounds request bodies; listing payloads embed base64 photos.
	bodyLimit        = "64M"
	metricsNamespace = "listing"
)

// Deps are the constructed services and adapters the router mounts.
type Deps struct {
	Log         zerolog.Logger
	Auth        ports.AuthService
	Users       ports.UserService
	Listings    ports.ListingService
	Cookies     *middleware.SessionCookies
	Health      map[string]handler.Checker
	CORSOrigins []string
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)
	e.Validator = handler.NewValidator()

	// HTTP metrics live in a per-router registry; /metrics serves it together
	// with the default registry holding the domain metrics.
	httpMetrics := prometheus.NewRegistry()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:                 metricsNamespace,
		Subsystem:                 "http",
		Registerer:                httpMetrics,
		DoNotUseRequestPathFor404: true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	// Renders handler errors, so the status recorded above is the one sent.
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     d.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAccept},
		AllowCredentials: true,
	}))
	e.Use(echomiddleware.BodyLimit(bodyLimit))
	e.Use(middleware.LoadSession(d.Auth, d.Cookies, d.Log))

	authHandler := handler.NewAuthHandler(d.Auth, d.Cookies)
	userHandler := handler.NewUserHandler(d.Users)
	listingHandler := handler.NewListingHandler(d.Listings)
	healthHandler := handler.NewHealthHandler(d.Health)

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout, middleware.RequireAuth())
	auth.GET("/user", authHandler.CurrentUser)
	e.GET("/check_user", authHandler.CurrentUser)

	// --- Admin routes ---
	admin := e.Group("/admin", middleware.RequireRole(domain.RoleAdmin))
	admin.POST("/user/create", userHandler.Create)
	admin.POST("/user/update", userHandler.Update)
	admin.POST("/user/delete", userHandler.Delete)
	admin.GET("/user/get", userHandler.List)
	admin.POST("/listing/create", listingHandler.Create)
	admin.POST("/listing/update", listingHandler.Update)
	admin.POST("/listing/delete", listingHandler.Delete)
	admin.GET("/listing/get", listingHandler.List)
	admin.POST("/listing/:url/viewer", userHandler.GenerateViewer)
	admin.GET("/listing/:url/viewers", userHandler.ListViewers)

	// --- Listing routes ---
	e.GET("/listing/:token", listingHandler.GetPublic)
	e.GET("/listing/:token/details", listingHandler.GetDetails, middleware.RequireAuth())

	// --- Health probes (no auth required) ---
	e.GET("/health", healthHandler.Liveness)        // liveness: is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness: are dependencies up?

	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{prometheus.DefaultGatherer, httpMetrics},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
