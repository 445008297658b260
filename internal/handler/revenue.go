package handler

import (
    "encoding/json"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/club-ledger/internal/service"
)

// RevenueHandler exposes manual revenue entries and the revenue reports.
type RevenueHandler struct {
    Options
    Revenue *service.RevenueService
}

func NewRevenueHandler(svc *service.RevenueService, opts Options) *RevenueHandler {
    return &RevenueHandler{Options: opts, Revenue: svc}
}

// revenueReq accepts amount as a JSON number or a numeric string.
type revenueReq struct {
    Source          string      `json:"source" validate:"required"`
    Amount          json.Number `json:"amount" validate:"required"`
    Description     string      `json:"description" validate:"max=1000"`
    TransactionDate string      `json:"transaction_date" validate:"required"`
}

func (r revenueReq) input() service.RevenueInput {
    return service.RevenueInput{
        Source:          r.Source,
        Amount:          r.Amount,
        Description:     r.Description,
        TransactionDate: r.TransactionDate,
    }
}

// List handles GET /admin/revenue[?start_date&end_date&source&limit&offset].
func (h *RevenueHandler) List(c echo.Context) error {
    limit, offset, err := page(c)
    if err != nil {
        return h.fail(c, err)
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    list, err := h.Revenue.List(ctx, c.QueryParam("start_date"), c.QueryParam("end_date"), c.QueryParam("source"), limit, offset)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, list)
}

// Get handles GET /admin/revenue/:id.
func (h *RevenueHandler) Get(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return h.fail(c, err)
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    e, err := h.Revenue.Get(ctx, id)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, e)
}

// Create handles POST /admin/revenue.
func (h *RevenueHandler) Create(c echo.Context) error {
    var req revenueReq
    if err := bindAndValidate(c, &req); err != nil {
        return h.fail(c, err)
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    e, err := h.Revenue.Create(ctx, req.input())
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusCreated, e)
}

// Update handles PUT /admin/revenue/:id.
func (h *RevenueHandler) Update(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return h.fail(c, err)
    }
    var req revenueReq
    if err := bindAndValidate(c, &req); err != nil {
        return h.fail(c, err)
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    e, err := h.Revenue.Update(ctx, id, req.input())
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, e)
}

// Delete handles DELETE /admin/revenue/:id.
func (h *RevenueHandler) Delete(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return h.fail(c, err)
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    if err := h.Revenue.Delete(ctx, id); err != nil {
        return h.fail(c, err)
    }
    return okMessage(c, "revenue entry deleted")
}

// Summary handles GET /admin/revenue/summary[?start_date&end_date].
func (h *RevenueHandler) Summary(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    sum, err := h.Revenue.Summary(ctx, c.QueryParam("start_date"), c.QueryParam("end_date"))
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, sum)
}

// Monthly handles GET /admin/revenue/monthly?year&month.  Both default to
// the current UTC month.
func (h *RevenueHandler) Monthly(c echo.Context) error {
    now := time.Now().UTC()
    year, month, err := yearMonth(c, now.Year(), int(now.Month()))
    if err != nil {
        return h.fail(c, err)
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    sum, err := h.Revenue.Monthly(ctx, year, month)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, sum)
}

// Yearly handles GET /admin/revenue/yearly?year.
func (h *RevenueHandler) Yearly(c echo.Context) error {
    year, _, err := yearMonth(c, time.Now().UTC().Year(), 1)
    if err != nil {
        return h.fail(c, err)
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    rep, err := h.Revenue.Yearly(ctx, year)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, rep)
}

func yearMonth(c echo.Context, defYear, defMonth int) (int, int, error) {
    year, set, err := queryInt(c, "year")
    if err != nil {
        return 0, 0, err
    }
    if !set {
        year = defYear
    }
    month, set, err := queryInt(c, "month")
    if err != nil {
        return 0, 0, err
    }
    if !set {
        month = defMonth
    }
    return year, month, nil
}
