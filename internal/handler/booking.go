package handler

import (
    "context"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/club-ledger/internal/model"
    "github.com/iliyamo/club-ledger/internal/repository"
    "github.com/iliyamo/club-ledger/internal/service"
)

// BookingHandler serves the public booking endpoints and the admin
// booking views.
type BookingHandler struct {
    Options
    Bookings *service.BookingService
}

func NewBookingHandler(svc *service.BookingService, opts Options) *BookingHandler {
    return &BookingHandler{Options: opts, Bookings: svc}
}

// ----- DTOs -----

// createBookingReq is the public purchase form.  It has no total or price
// field; the binder drops any the client sends.
type createBookingReq struct {
    MatchID       *uint64 `json:"match_id" validate:"required,gt=0"`
    CustomerName  string  `json:"customer_name" validate:"required,max=255"`
    CustomerEmail string  `json:"customer_email" validate:"required,email,max=255"`
    CustomerPhone string  `json:"customer_phone" validate:"required,max=50"`
    TicketType    string  `json:"ticket_type" validate:"required"`
    Quantity      *int    `json:"quantity" validate:"required"`
}

type updateStatusReq struct {
    PaymentStatus string `json:"payment_status" validate:"required,oneof=pending paid cancelled"`
}

// Create handles POST /bookings.
func (h *BookingHandler) Create(c echo.Context) error {
    var req createBookingReq
    if err := bindAndValidate(c, &req); err != nil {
        return h.fail(c, err)
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    b, err := h.Bookings.Create(ctx, service.CreateBookingInput{
        MatchID:       req.MatchID,
        CustomerName:  req.CustomerName,
        CustomerEmail: req.CustomerEmail,
        CustomerPhone: req.CustomerPhone,
        TicketType:    req.TicketType,
        Quantity:      req.Quantity,
    })
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusCreated, b)
}

// ListByEmail handles GET /bookings?email=.
func (h *BookingHandler) ListByEmail(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    list, err := h.Bookings.ListByEmail(ctx, c.QueryParam("email"))
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, list)
}

// GetByReference handles GET /bookings/reference/:reference.
func (h *BookingHandler) GetByReference(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    b, err := h.Bookings.GetByReference(ctx, c.Param("reference"))
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, b)
}

// ListByMatch handles GET /admin/matches/:id/bookings.
func (h *BookingHandler) ListByMatch(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return h.fail(c, err)
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    list, err := h.Bookings.ListByMatch(ctx, id)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, list)
}

// List handles GET /admin/bookings[?match_id&payment_status&limit&offset].
func (h *BookingHandler) List(c echo.Context) error {
    var f repository.BookingFilter
    n, set, err := queryInt(c, "match_id")
    if err != nil || (set && n <= 0) {
        return h.fail(c, &service.ValidationError{Field: "match_id", Message: "must be a positive integer"})
    }
    f.MatchID = uint64(n)
    f.PaymentStatus = strings.ToLower(strings.TrimSpace(c.QueryParam("payment_status")))
    if f.Limit, f.Offset, err = page(c); err != nil {
        return h.fail(c, err)
    }

    ctx, cancel := reqCtx(c)
    defer cancel()
    list, err := h.Bookings.List(ctx, f)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, list)
}

// Get handles GET /admin/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return h.fail(c, err)
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    b, err := h.Bookings.Get(ctx, id)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, b)
}

// Stats handles GET /admin/bookings/stats.
func (h *BookingHandler) Stats(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    stats, err := h.Bookings.Stats(ctx)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, stats)
}

// RevenueByMatch handles GET /admin/bookings/revenue-by-match.
func (h *BookingHandler) RevenueByMatch(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    rows, err := h.Bookings.RevenueByMatch(ctx)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, rows)
}

// UpdateStatus handles PUT /admin/bookings/:id/status.
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return h.fail(c, err)
    }
    var req updateStatusReq
    if err := c.Bind(&req); err != nil {
        return h.fail(c, bindErr(err))
    }
    req.PaymentStatus = strings.ToLower(strings.TrimSpace(req.PaymentStatus))
    if err := c.Validate(&req); err != nil {
        return h.fail(c, err)
    }

    ctx, cancel := reqCtx(c)
    defer cancel()
    b, err := h.Bookings.UpdatePaymentStatus(ctx, id, req.PaymentStatus)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, b)
}

// ConfirmPayment handles POST /admin/bookings/:id/confirm-payment.
func (h *BookingHandler) ConfirmPayment(c echo.Context) error {
    return h.transition(c, h.Bookings.ConfirmPayment)
}

// Cancel handles POST /admin/bookings/:id/cancel.
func (h *BookingHandler) Cancel(c echo.Context) error {
    return h.transition(c, h.Bookings.Cancel)
}

func (h *BookingHandler) transition(c echo.Context, fn func(context.Context, uint64) (*model.Booking, error)) error {
    id, err := parseID(c, "id")
    if err != nil {
        return h.fail(c, err)
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    b, err := fn(ctx, id)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, b)
}

// Delete handles DELETE /admin/bookings/:id.
func (h *BookingHandler) Delete(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return h.fail(c, err)
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    if err := h.Bookings.Delete(ctx, id); err != nil {
        return h.fail(c, err)
    }
    return okMessage(c, "booking deleted")
}

// page reads optional limit/offset query parameters.
func page(c echo.Context) (int, int, error) {
    limit, _, err := queryInt(c, "limit")
    if err != nil {
        return 0, 0, err
    }
    offset, _, err := queryInt(c, "offset")
    if err != nil {
        return 0, 0, err
    }
    if limit < 0 || limit > 500 {
        return 0, 0, &service.ValidationError{Field: "limit", Message: "must be between 0 and 500"}
    }
    if offset < 0 {
        return 0, 0, &service.ValidationError{Field: "offset", Message: "must not be negative"}
    }
    return limit, offset, nil
}
