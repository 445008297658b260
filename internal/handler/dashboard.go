package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/club-ledger/internal/service"
)

type DashboardHandler struct {
    Options
    Reports *service.ReportService
}

func NewDashboardHandler(reports *service.ReportService, opts Options) *DashboardHandler {
    return &DashboardHandler{Options: opts, Reports: reports}
}

// Stats handles GET /admin/dashboard/stats.
func (h *DashboardHandler) Stats(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    d, err := h.Reports.Dashboard(ctx)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, d)
}
