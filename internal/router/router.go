package router // package router wires handlers and middleware into an echo instance

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/pousada-reservation/internal/handler"
	"github.com/iliyamo/pousada-reservation/internal/middleware"
)

// Deps is everything the HTTP layer needs.
type Deps struct {
	Health       *handler.HealthHandler
	Auth         *handler.AuthHandler
	Reservations *handler.ReservationHandler
	Messages     *handler.MessageHandler
	Catalog      *handler.CatalogHandler
	Newsletter   *handler.NewsletterHandler

	// Cache serves GET /api/rooms from redis; nil disables it.
	Cache *middleware.ResponseCache
	// RateLimit guards the /api group; nil disables it.
	RateLimit echo.MiddlewareFunc

	JWTSecret     string
	AdminRequired bool
	FrontendURL   string
	Log           *zap.Logger
}

// New builds the echo instance with global middleware and all routes.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = jsonSerializer{}
	e.Validator = handler.NewCustomValidator()
	e.HTTPErrorHandler = handler.HTTPErrorHandler(d.Log)

	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{d.FrontendURL},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(echomw.RequestID())
	e.Use(echomw.RequestLoggerWithConfig(middleware.RequestLoggerConfig(d.Log)))

	e.GET("/healthz", d.Health.Healthz)

	// runs before JWTAuth, so buckets are per IP and route
	mws := []echo.MiddlewareFunc{}
	if d.RateLimit != nil {
		mws = append(mws, d.RateLimit)
	}
	api := e.Group("/api", mws...)

	RegisterPublic(api, d)
	RegisterStaff(api, d)
	return e
}

// RegisterPublic registers the routes guests use without a token.
func RegisterPublic(api *echo.Group, d Deps) {
	api.GET("", d.Health.Info)
	api.GET("/test", d.Health.Test)

	cache := noCache
	if d.Cache != nil {
		cache = d.Cache.Middleware()
	}
	api.GET("/rooms", d.Catalog.Rooms, cache)
	api.GET("/rooms/:id", d.Catalog.Room, cache)
	api.GET("/settings", d.Catalog.Settings)

	api.POST("/reservations", d.Reservations.Create)
	api.POST("/messages", d.Messages.Create)
	api.POST("/newsletter", d.Newsletter.Subscribe)
	api.POST("/auth/login", d.Auth.Login)
}

func noCache(next echo.HandlerFunc) echo.HandlerFunc { return next }
