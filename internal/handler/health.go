package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
    PingContext(ctx context.Context) error
}

// HealthHandler reports whether the database answers.
type HealthHandler struct {
    Options
    DB Pinger
}

func NewHealthHandler(db Pinger, opts Options) *HealthHandler {
    return &HealthHandler{Options: opts, DB: db}
}

// Health handles GET /health.  Load balancers treat 503 as "take me out".
func (h *HealthHandler) Health(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    if err := h.DB.PingContext(ctx); err != nil {
        h.Logger.Error().Err(err).Msg("health: database ping failed")
        return c.JSON(http.StatusServiceUnavailable, Envelope{Message: "database unavailable"})
    }
    return ok(c, http.StatusOK, echo.Map{"status": "ok"})
}
