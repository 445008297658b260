// Package queue defines message payloads exchanged over the message broker
// together with the publisher and the background consumer.
package queue

// BookingCreatedQueue is the durable queue booking events are sent to.
const BookingCreatedQueue = "booking.created"

// BookingCreatedEvent is published after a booking is committed.  It
// contains enough information for downstream consumers to log, notify, or
// trigger analytics without querying the primary database.
type BookingCreatedEvent struct {
    BookingID        uint64 `json:"booking_id"`
    BookingReference string `json:"booking_reference"`
    MatchID          uint64 `json:"match_id"`
    CustomerEmail    string `json:"customer_email"`
    TicketType       string `json:"ticket_type"`
    Quantity         int    `json:"quantity"`
    TotalAmount      string `json:"total_amount"`
    PaymentStatus    string `json:"payment_status"`
    CreatedAt        string `json:"created_at"`
}
