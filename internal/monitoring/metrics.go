// Package monitoring holds the Prometheus collectors exported on /metrics.
package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bookingsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "club_bookings_created_total",
			Help: "Bookings stored, by ticket type and initial payment status",
		},
		[]string{"ticket_type", "payment_status"},
	)

	ticketsSold = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "club_tickets_booked_total",
			Help: "Tickets booked, by ticket type",
		},
		[]string{"ticket_type"},
	)

	referenceCollisions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "club_booking_reference_collisions_total",
			Help: "Booking reference collisions that triggered a retry",
		},
	)

	bookingFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "club_booking_failures_total",
			Help: "Booking attempts rejected or failed, by reason",
		},
		[]string{"reason"},
	)

	revenueEntries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "club_revenue_entries_total",
			Help: "Manual revenue entry mutations, by source and operation",
		},
		[]string{"source", "operation"},
	)

	eventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "club_events_published_total",
			Help: "Domain events handed to the broker, by queue and status",
		},
		[]string{"queue", "status"},
	)

	rateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "club_rate_limited_total",
			Help: "Requests rejected by the token bucket, by route",
		},
		[]string{"route"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "club_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status code",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// BookingCreated records a stored booking.
func BookingCreated(ticketType, status string, quantity int) {
	bookingsCreated.WithLabelValues(ticketType, status).Inc()
	ticketsSold.WithLabelValues(ticketType).Add(float64(quantity))
}

// ReferenceCollision records one retry caused by a duplicate reference.
func ReferenceCollision() { referenceCollisions.Inc() }

// BookingFailed records a rejected or failed booking attempt.
func BookingFailed(reason string) { bookingFailures.WithLabelValues(reason).Inc() }

// RevenueEntryChanged records a create, update or delete of a revenue entry.
func RevenueEntryChanged(source, operation string) {
	revenueEntries.WithLabelValues(source, operation).Inc()
}

// EventPublished records the outcome of a broker publish.
func EventPublished(queue string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	eventsPublished.WithLabelValues(queue, status).Inc()
}

// RateLimited records one request answered with 429.
func RateLimited(route string) { rateLimited.WithLabelValues(route).Inc() }

// ObserveHTTP records one served request.
func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
