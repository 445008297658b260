package model

import "github.com/iliyamo/club-ledger/internal/utils"

// Ticket types accepted by the booking ledger.
const (
    TicketVIP     = "vip"
    TicketRegular = "regular"
    TicketStudent = "student"
)

// Payment statuses a booking can be in.
const (
    PaymentPending   = "pending"
    PaymentPaid      = "paid"
    PaymentCancelled = "cancelled"
)

// TicketTypes lists the valid ticket types in display order.
var TicketTypes = []string{TicketVIP, TicketRegular, TicketStudent}

// PaymentStatuses lists the valid payment statuses.
var PaymentStatuses = []string{PaymentPending, PaymentPaid, PaymentCancelled}

// Booking records a ticket purchase for a match.  The total is always
// derived from the configured unit price at creation time.
//
// Fields:
//  ID               – primary key identifier.
//  BookingReference – unique BKYYYYMMDDXXXXXXXXXX code handed to the customer.
//  MatchID          – match the tickets are for.
//  CustomerName     – purchaser's name.
//  CustomerEmail    – purchaser's email, stored lower-cased.
//  CustomerPhone    – purchaser's phone number.
//  TicketType       – vip, regular or student.
//  Quantity         – number of tickets (1–50).
//  TotalAmount      – unit price × quantity, two decimals.
//  PaymentStatus    – pending, paid or cancelled.
//  CreatedAt        – creation timestamp (UTC).
type Booking struct {
    ID               uint64          `json:"id"`
    BookingReference string          `json:"booking_reference"`
    MatchID          uint64          `json:"match_id"`
    CustomerName     string          `json:"customer_name"`
    CustomerEmail    string          `json:"customer_email"`
    CustomerPhone    string          `json:"customer_phone"`
    TicketType       string          `json:"ticket_type"`
    Quantity         int             `json:"quantity"`
    TotalAmount      utils.Money     `json:"total_amount"`
    PaymentStatus    string          `json:"payment_status"`
    CreatedAt        utils.Timestamp `json:"created_at"`
}

// BookingWithMatch adds the match the booking belongs to.  Admin listings
// return this shape.
type BookingWithMatch struct {
    Booking
    Opponent  string          `json:"opponent"`
    MatchDate utils.Timestamp `json:"match_date"`
}

// TicketCounts holds a number per ticket type.
type TicketCounts struct {
    VIP     int64 `json:"vip"`
    Regular int64 `json:"regular"`
    Student int64 `json:"student"`
}

// BookingStats is the aggregated view over all bookings.
type BookingStats struct {
    TotalBookings  int64        `json:"total_bookings"`
    TotalTickets   int64        `json:"total_tickets"`
    GrossRevenue   utils.Money  `json:"gross_revenue"`
    PaidRevenue    utils.Money  `json:"paid_revenue"`
    PendingCount   int64        `json:"pending_bookings"`
    CancelledCount int64        `json:"cancelled_bookings"`
    TicketsByType  TicketCounts `json:"tickets_by_type"`
}

// MatchRevenue is one row of the revenue-by-match report.  Matches without
// bookings are present with zero counts and amounts.
type MatchRevenue struct {
    MatchID        uint64          `json:"match_id"`
    Opponent       string          `json:"opponent"`
    MatchDate      utils.Timestamp `json:"match_date"`
    TotalBookings  int64           `json:"total_bookings"`
    TotalTickets   int64           `json:"total_tickets"`
    TicketsByType  TicketCounts    `json:"tickets_by_type"`
    VIPRevenue     utils.Money     `json:"vip_revenue"`
    RegularRevenue utils.Money     `json:"regular_revenue"`
    StudentRevenue utils.Money     `json:"student_revenue"`
    TotalRevenue   utils.Money     `json:"total_revenue"`
}
