package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"
    "time"

    "github.com/shopspring/decimal"

    "github.com/iliyamo/club-ledger/internal/model"
    "github.com/iliyamo/club-ledger/internal/utils"
)

// BookingRepo provides persistence for bookings.  All timestamps are
// written by the application in UTC, so both drivers store the same
// values.
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying sql.DB so callers can begin a transaction
// spanning a single insert attempt.
func (r *BookingRepo) DB() *sql.DB { return r.db }

// BookingFilter narrows List.  Zero values mean no filter.
type BookingFilter struct {
    MatchID       uint64
    PaymentStatus string
    Limit         int
    Offset        int
}

const bookingColumns = `b.id, b.booking_reference, b.match_id, b.customer_name, b.customer_email,
       b.customer_phone, b.ticket_type, b.quantity, b.total_amount, b.payment_status, b.created_at`

type rowScanner interface {
    Scan(dest ...any) error
}

func scanBooking(s rowScanner, b *model.Booking, extra ...any) error {
    dest := []any{
        &b.ID, &b.BookingReference, &b.MatchID, &b.CustomerName, &b.CustomerEmail,
        &b.CustomerPhone, &b.TicketType, &b.Quantity, &b.TotalAmount, &b.PaymentStatus, &b.CreatedAt,
    }
    return s.Scan(append(dest, extra...)...)
}

// Create inserts b in its own transaction.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    if err := r.CreateTx(ctx, tx, b); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// CreateTx inserts a new booking within the scope of an existing
// transaction and reads the stored row back into b.  A collision on
// booking_reference is reported as ErrDuplicateReference; every other
// driver error is returned as is.  The caller must commit or roll back.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
    const q = `INSERT INTO bookings
        (booking_reference, match_id, customer_name, customer_email, customer_phone,
         ticket_type, quantity, total_amount, payment_status, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
    now := time.Now().UTC().Truncate(time.Second)
    res, err := tx.ExecContext(ctx, q,
        b.BookingReference, b.MatchID, b.CustomerName, b.CustomerEmail, b.CustomerPhone,
        b.TicketType, b.Quantity, b.TotalAmount.StringFixed(2), b.PaymentStatus, now, now)
    if err != nil {
        if isUniqueViolation(err, "booking_reference") {
            return ErrDuplicateReference
        }
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    const sel = `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.id = ?`
    return scanBooking(tx.QueryRowContext(ctx, sel, id), b)
}

// GetByID returns a single booking or ErrNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
    return r.getOne(ctx, `SELECT `+bookingColumns+` FROM bookings b WHERE b.id = ?`, id)
}

// GetByReference returns the booking with the given reference or ErrNotFound.
func (r *BookingRepo) GetByReference(ctx context.Context, ref string) (*model.Booking, error) {
    return r.getOne(ctx, `SELECT `+bookingColumns+` FROM bookings b WHERE b.booking_reference = ?`, ref)
}

func (r *BookingRepo) getOne(ctx context.Context, q string, arg any) (*model.Booking, error) {
    var b model.Booking
    if err := scanBooking(r.db.QueryRowContext(ctx, q, arg), &b); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrNotFound
        }
        return nil, err
    }
    return &b, nil
}

// ListByMatch returns all bookings for a match, newest first.
func (r *BookingRepo) ListByMatch(ctx context.Context, matchID uint64) ([]model.Booking, error) {
    return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings b WHERE b.match_id = ? ORDER BY b.created_at DESC, b.id DESC`, matchID)
}

// ListByEmail returns all bookings made with email.  The email must
// already be lower-cased; bookings are stored that way.
func (r *BookingRepo) ListByEmail(ctx context.Context, email string) ([]model.Booking, error) {
    return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings b WHERE b.customer_email = ? ORDER BY b.created_at DESC, b.id DESC`, email)
}

func (r *BookingRepo) list(ctx context.Context, q string, args ...any) ([]model.Booking, error) {
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []model.Booking{}
    for rows.Next() {
        var b model.Booking
        if err := scanBooking(rows, &b); err != nil {
            return nil, err
        }
        out = append(out, b)
    }
    return out, rows.Err()
}

// List returns bookings joined with their match for the admin view.
func (r *BookingRepo) List(ctx context.Context, f BookingFilter) ([]model.BookingWithMatch, error) {
    var (
        where []string
        args  []any
    )
    if f.MatchID > 0 {
        where = append(where, "b.match_id = ?")
        args = append(args, f.MatchID)
    }
    if f.PaymentStatus != "" {
        where = append(where, "b.payment_status = ?")
        args = append(args, f.PaymentStatus)
    }
    q := `SELECT ` + bookingColumns + `, m.opponent, m.match_date
          FROM bookings b
          JOIN matches m ON m.id = b.match_id`
    if len(where) > 0 {
        q += " WHERE " + strings.Join(where, " AND ")
    }
    q += " ORDER BY b.created_at DESC, b.id DESC"
    if f.Limit > 0 {
        q += " LIMIT ? OFFSET ?"
        args = append(args, f.Limit, f.Offset)
    }
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []model.BookingWithMatch{}
    for rows.Next() {
        var bm model.BookingWithMatch
        if err := scanBooking(rows, &bm.Booking, &bm.Opponent, &bm.MatchDate); err != nil {
            return nil, err
        }
        out = append(out, bm)
    }
    return out, rows.Err()
}

// UpdateStatus sets payment_status unconditionally.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
    res, err := r.db.ExecContext(ctx,
        `UPDATE bookings SET payment_status = ?, updated_at = ? WHERE id = ?`,
        status, time.Now().UTC().Truncate(time.Second), id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrNotFound
    }
    return nil
}

// TransitionStatus moves a booking to status `to` only when its current
// status is one of from.  It returns ErrNotFound for an unknown id and
// ErrConflict when the current status does not allow the move.
func (r *BookingRepo) TransitionStatus(ctx context.Context, id uint64, from []string, to string) (*model.Booking, error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    placeholders := strings.TrimSuffix(strings.Repeat("?,", len(from)), ",")
    args := []any{to, time.Now().UTC().Truncate(time.Second), id}
    for _, s := range from {
        args = append(args, s)
    }
    res, err := tx.ExecContext(ctx,
        `UPDATE bookings SET payment_status = ?, updated_at = ? WHERE id = ? AND payment_status IN (`+placeholders+`)`,
        args...)
    if err != nil {
        return nil, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return nil, err
    }

    var b model.Booking
    if err := scanBooking(tx.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings b WHERE b.id = ?`, id), &b); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrNotFound
        }
        return nil, err
    }
    if n == 0 {
        return &b, ErrConflict
    }
    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    return &b, nil
}

// Delete removes a booking permanently.
func (r *BookingRepo) Delete(ctx context.Context, id uint64) error {
    res, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrNotFound
    }
    return nil
}

// Stats aggregates every booking in a single statement.
func (r *BookingRepo) Stats(ctx context.Context) (model.BookingStats, error) {
    const q = `SELECT
        COUNT(*),
        COALESCE(SUM(quantity), 0),
        COALESCE(SUM(total_amount), 0),
        COALESCE(SUM(CASE WHEN payment_status = 'paid' THEN total_amount ELSE 0 END), 0),
        COALESCE(SUM(CASE WHEN payment_status = 'pending' THEN 1 ELSE 0 END), 0),
        COALESCE(SUM(CASE WHEN payment_status = 'cancelled' THEN 1 ELSE 0 END), 0),
        COALESCE(SUM(CASE WHEN ticket_type = 'vip' THEN quantity ELSE 0 END), 0),
        COALESCE(SUM(CASE WHEN ticket_type = 'regular' THEN quantity ELSE 0 END), 0),
        COALESCE(SUM(CASE WHEN ticket_type = 'student' THEN quantity ELSE 0 END), 0)
        FROM bookings`
    var s model.BookingStats
    err := r.db.QueryRowContext(ctx, q).Scan(
        &s.TotalBookings, &s.TotalTickets, &s.GrossRevenue, &s.PaidRevenue,
        &s.PendingCount, &s.CancelledCount,
        &s.TicketsByType.VIP, &s.TicketsByType.Regular, &s.TicketsByType.Student,
    )
    return s, err
}

// RevenueByMatch reports every match with its non-cancelled bookings
// summed per ticket type, most recent match first.  Matches without
// bookings are included with zeros.
func (r *BookingRepo) RevenueByMatch(ctx context.Context) ([]model.MatchRevenue, error) {
    const q = `SELECT m.id, m.opponent, m.match_date,
        COUNT(b.id),
        COALESCE(SUM(b.quantity), 0),
        COALESCE(SUM(CASE WHEN b.ticket_type = 'vip' THEN b.quantity ELSE 0 END), 0),
        COALESCE(SUM(CASE WHEN b.ticket_type = 'regular' THEN b.quantity ELSE 0 END), 0),
        COALESCE(SUM(CASE WHEN b.ticket_type = 'student' THEN b.quantity ELSE 0 END), 0),
        COALESCE(SUM(CASE WHEN b.ticket_type = 'vip' THEN b.total_amount ELSE 0 END), 0),
        COALESCE(SUM(CASE WHEN b.ticket_type = 'regular' THEN b.total_amount ELSE 0 END), 0),
        COALESCE(SUM(CASE WHEN b.ticket_type = 'student' THEN b.total_amount ELSE 0 END), 0),
        COALESCE(SUM(b.total_amount), 0)
        FROM matches m
        LEFT JOIN bookings b ON b.match_id = m.id AND b.payment_status <> 'cancelled'
        GROUP BY m.id, m.opponent, m.match_date
        ORDER BY m.match_date DESC, m.id DESC`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []model.MatchRevenue{}
    for rows.Next() {
        var mr model.MatchRevenue
        if err := rows.Scan(
            &mr.MatchID, &mr.Opponent, &mr.MatchDate,
            &mr.TotalBookings, &mr.TotalTickets,
            &mr.TicketsByType.VIP, &mr.TicketsByType.Regular, &mr.TicketsByType.Student,
            &mr.VIPRevenue, &mr.RegularRevenue, &mr.StudentRevenue, &mr.TotalRevenue,
        ); err != nil {
            return nil, err
        }
        out = append(out, mr)
    }
    return out, rows.Err()
}

// PaidTotals sums paid bookings created within [from, to).  A zero bound
// leaves that side open.
func (r *BookingRepo) PaidTotals(ctx context.Context, from, to time.Time) (decimal.Decimal, int64, error) {
    q := `SELECT COALESCE(SUM(total_amount), 0), COALESCE(SUM(quantity), 0)
          FROM bookings WHERE payment_status = 'paid'`
    var args []any
    if !from.IsZero() {
        q += " AND created_at >= ?"
        args = append(args, from.UTC())
    }
    if !to.IsZero() {
        q += " AND created_at < ?"
        args = append(args, to.UTC())
    }
    var (
        total   utils.Money
        tickets int64
    )
    if err := r.db.QueryRowContext(ctx, q, args...).Scan(&total, &tickets); err != nil {
        return decimal.Zero, 0, err
    }
    return total.Decimal, tickets, nil
}
