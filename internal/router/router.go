package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iliyamo/club-ledger/internal/config"
	"github.com/iliyamo/club-ledger/internal/handler"
	"github.com/iliyamo/club-ledger/internal/middleware"
)

// Handlers groups everything the routes dispatch to.
type Handlers struct {
	Health    *handler.HealthHandler
	Auth      *handler.AuthHandler
	Bookings  *handler.BookingHandler
	Revenue   *handler.RevenueHandler
	Settings  *handler.SettingsHandler
	Catalog   *handler.CatalogHandler
	Dashboard *handler.DashboardHandler
}

// Deps is what New needs besides the handlers.
type Deps struct {
	Config  config.Config
	Redis   *redis.Client // nil disables rate limiting and caching
	Logger  zerolog.Logger
	Options handler.Options
}

// New builds the echo server with the shared middleware stack and every
// route registered.
func New(d Deps, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.ErrorHandler(d.Options)

	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(middleware.Metrics())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: d.Config.CORSOrigins}))

	e.GET("/healthz", h.Health.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	RegisterPublic(e, h, PublicMiddleware{
		RateLimit: middleware.NewTokenBucket(d.Config.RateLimit, d.Redis, d.Logger),
		Cache:     middleware.NewResponseCache(d.Config.Cache, d.Redis, d.Logger),
	})
	RegisterAdmin(e, h, d.Config.JWTSecret, AdminMiddleware{
		PurgeMatches: middleware.PurgeCache(d.Config.Cache, d.Redis, d.Logger, "/matches"),
		PurgePlayers: middleware.PurgeCache(d.Config.Cache, d.Redis, d.Logger, "/players"),
	})
	return e
}
