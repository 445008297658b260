package router

import (
	"github.com/labstack/echo/v4"
)

// PublicMiddleware is the per-route middleware of the public endpoints.
type PublicMiddleware struct {
	RateLimit echo.MiddlewareFunc // booking creation
	Cache     echo.MiddlewareFunc // catalog listings
}

// RegisterPublic registers the unauthenticated endpoints.  Ticket prices
// are never cached.
func RegisterPublic(e *echo.Echo, h Handlers, mw PublicMiddleware) {
	e.POST("/auth/login", h.Auth.Login)

	e.POST("/bookings", h.Bookings.Create, mw.RateLimit)
	e.GET("/bookings", h.Bookings.ListByEmail)
	e.GET("/bookings/reference/:reference", h.Bookings.GetByReference)

	e.GET("/matches", h.Catalog.ListMatches, mw.Cache)
	e.GET("/players", h.Catalog.ListPlayers, mw.Cache)
	e.GET("/settings/ticket-prices", h.Settings.TicketPrices)
}
