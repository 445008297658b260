package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"
    "github.com/shopspring/decimal"

    "github.com/iliyamo/club-ledger/internal/service"
)

// SettingsHandler exposes the configuration store.
type SettingsHandler struct {
    Options
    Settings *service.SettingsService
}

func NewSettingsHandler(svc *service.SettingsService, opts Options) *SettingsHandler {
    return &SettingsHandler{Options: opts, Settings: svc}
}

type membershipFeeReq struct {
    Fee *decimal.Decimal `json:"fee" validate:"required"`
}

type settingValueReq struct {
    Value *string `json:"value" validate:"required"`
}

// TicketPrices handles GET /settings/ticket-prices and its admin twin.
func (h *SettingsHandler) TicketPrices(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    prices, err := h.Settings.TicketPrices(ctx)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, prices)
}

// SetTicketPrices handles PUT /admin/settings/ticket-prices.  All three
// prices are written together or not at all.
func (h *SettingsHandler) SetTicketPrices(c echo.Context) error {
    var req service.TicketPricesInput
    if err := c.Bind(&req); err != nil {
        return h.fail(c, bindErr(err))
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    prices, err := h.Settings.SetTicketPrices(ctx, req)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, prices)
}

// MembershipFee handles GET /admin/settings/membership-fee.
func (h *SettingsHandler) MembershipFee(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    fee, err := h.Settings.MembershipFee(ctx)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, echo.Map{"fee": fee})
}

// SetMembershipFee handles PUT /admin/settings/membership-fee.
func (h *SettingsHandler) SetMembershipFee(c echo.Context) error {
    var req membershipFeeReq
    if err := bindAndValidate(c, &req); err != nil {
        return h.fail(c, err)
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    fee, err := h.Settings.SetMembershipFee(ctx, req.Fee)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, echo.Map{"fee": fee})
}

// List handles GET /admin/settings.
func (h *SettingsHandler) List(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    all, err := h.Settings.List(ctx)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, all)
}

// SetMany handles PUT /admin/settings with a {"key": "value"} object.
func (h *SettingsHandler) SetMany(c echo.Context) error {
    var entries map[string]string
    if err := c.Bind(&entries); err != nil {
        return h.fail(c, bindErr(err))
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    if err := h.Settings.SetMany(ctx, entries); err != nil {
        return h.fail(c, err)
    }
    return okMessage(c, "settings updated")
}

// Get handles GET /admin/settings/:key.
func (h *SettingsHandler) Get(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    st, err := h.Settings.Get(ctx, c.Param("key"))
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, st)
}

// Set handles PUT /admin/settings/:key.
func (h *SettingsHandler) Set(c echo.Context) error {
    var req settingValueReq
    if err := bindAndValidate(c, &req); err != nil {
        return h.fail(c, err)
    }
    key := c.Param("key")
    ctx, cancel := reqCtx(c)
    defer cancel()
    if err := h.Settings.Set(ctx, key, *req.Value); err != nil {
        return h.fail(c, err)
    }
    st, err := h.Settings.Get(ctx, key)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, st)
}

// Delete handles DELETE /admin/settings/:key.
func (h *SettingsHandler) Delete(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    if err := h.Settings.Delete(ctx, c.Param("key")); err != nil {
        return h.fail(c, err)
    }
    return okMessage(c, "setting deleted")
}
