package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/club-ledger/internal/middleware"
	"github.com/iliyamo/club-ledger/internal/model"
)

// AdminMiddleware drops cached catalog listings after admin writes.
type AdminMiddleware struct {
	PurgeMatches echo.MiddlewareFunc
	PurgePlayers echo.MiddlewareFunc
}

// RegisterAdmin registers the /admin endpoints.  All of them require a
// valid JWT carrying the admin role.
func RegisterAdmin(e *echo.Echo, h Handlers, jwtSecret string, mw AdminMiddleware) {
	g := e.Group(
		"/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.GET("/me", h.Auth.Me)

	// ---- Bookings ----
	g.GET("/bookings", h.Bookings.List)
	g.GET("/bookings/stats", h.Bookings.Stats)
	g.GET("/bookings/revenue-by-match", h.Bookings.RevenueByMatch)
	g.GET("/bookings/:id", h.Bookings.Get)
	g.PUT("/bookings/:id/status", h.Bookings.UpdateStatus)
	g.POST("/bookings/:id/confirm-payment", h.Bookings.ConfirmPayment)
	g.POST("/bookings/:id/cancel", h.Bookings.Cancel)
	g.DELETE("/bookings/:id", h.Bookings.Delete)

	// ---- Revenue ----
	g.GET("/revenue", h.Revenue.List)
	g.POST("/revenue", h.Revenue.Create)
	g.GET("/revenue/summary", h.Revenue.Summary)
	g.GET("/revenue/monthly", h.Revenue.Monthly)
	g.GET("/revenue/yearly", h.Revenue.Yearly)
	g.GET("/revenue/:id", h.Revenue.Get)
	g.PUT("/revenue/:id", h.Revenue.Update)
	g.DELETE("/revenue/:id", h.Revenue.Delete)

	// ---- Settings ----
	g.GET("/settings", h.Settings.List)
	g.PUT("/settings", h.Settings.SetMany)
	g.GET("/settings/ticket-prices", h.Settings.TicketPrices)
	g.PUT("/settings/ticket-prices", h.Settings.SetTicketPrices)
	g.GET("/settings/membership-fee", h.Settings.MembershipFee)
	g.PUT("/settings/membership-fee", h.Settings.SetMembershipFee)
	g.GET("/settings/:key", h.Settings.Get)
	g.PUT("/settings/:key", h.Settings.Set)
	g.DELETE("/settings/:key", h.Settings.Delete)

	// ---- Dashboard and catalog ----
	g.GET("/dashboard/stats", h.Dashboard.Stats)
	g.POST("/matches", h.Catalog.CreateMatch, mw.PurgeMatches)
	g.DELETE("/matches/:id", h.Catalog.DeleteMatch, mw.PurgeMatches)
	g.GET("/matches/:id/bookings", h.Bookings.ListByMatch)
	g.POST("/players", h.Catalog.CreatePlayer, mw.PurgePlayers)
}
