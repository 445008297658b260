package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/club-ledger/internal/model"
	"github.com/iliyamo/club-ledger/internal/monitoring"
	"github.com/iliyamo/club-ledger/internal/queue"
	"github.com/iliyamo/club-ledger/internal/repository"
	"github.com/iliyamo/club-ledger/internal/utils"
)

// Settlement modes decide the payment status of a new booking.
const (
	SettlementImmediate = "immediate" // created as paid
	SettlementDeferred  = "deferred"  // created as pending, confirmed later
)

// MaxReferenceAttempts is how many references are tried before giving up.
const MaxReferenceAttempts = 5

// Quantity bounds for a single booking.
const (
	MinQuantity = 1
	MaxQuantity = 50
)

// ReferenceGenerator returns a candidate booking reference for now.
type ReferenceGenerator func(now time.Time) (string, error)

// BookingOptions configures a BookingService.  Zero values pick the
// defaults: immediate settlement, crypto/rand references, no publisher.
type BookingOptions struct {
	Settlement   string
	Publisher    EventPublisher
	NewReference ReferenceGenerator
	Now          func() time.Time
	Logger       zerolog.Logger
}

// BookingService is the booking ledger.
type BookingService struct {
	bookings   BookingStore
	matches    MatchLookup
	settings   *SettingsService
	publisher  EventPublisher
	newRef     ReferenceGenerator
	now        func() time.Time
	settlement string
	log        zerolog.Logger
}

// NewBookingService wires the ledger to its stores.
func NewBookingService(bookings BookingStore, matches MatchLookup, settings *SettingsService, opts BookingOptions) *BookingService {
	s := &BookingService{
		bookings:   bookings,
		matches:    matches,
		settings:   settings,
		publisher:  opts.Publisher,
		newRef:     opts.NewReference,
		now:        opts.Now,
		settlement: opts.Settlement,
		log:        opts.Logger,
	}
	if s.newRef == nil {
		s.newRef = utils.NewBookingReference
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.settlement == "" {
		s.settlement = SettlementImmediate
	}
	return s
}

// CreateBookingInput is an untrusted purchase request.  Pointer fields
// distinguish "absent" from zero.
type CreateBookingInput struct {
	MatchID       *uint64
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	TicketType    string
	Quantity      *int
}

// Create validates the request, prices it from the configuration store,
// allocates a unique reference and stores the booking.  Checks run in
// order: presence, ticket type, quantity, match existence, pricing.
func (s *BookingService) Create(ctx context.Context, in CreateBookingInput) (*model.Booking, error) {
	name := strings.TrimSpace(in.CustomerName)
	email := strings.ToLower(strings.TrimSpace(in.CustomerEmail))
	phone := strings.TrimSpace(in.CustomerPhone)
	ticket := strings.ToLower(strings.TrimSpace(in.TicketType))

	switch {
	case in.MatchID == nil || *in.MatchID == 0:
		return nil, s.reject(invalid("match_id", "is required"))
	case name == "":
		return nil, s.reject(invalid("customer_name", "is required"))
	case email == "":
		return nil, s.reject(invalid("customer_email", "is required"))
	case phone == "":
		return nil, s.reject(invalid("customer_phone", "is required"))
	case ticket == "":
		return nil, s.reject(invalid("ticket_type", "is required", model.TicketTypes...))
	case in.Quantity == nil:
		return nil, s.reject(invalid("quantity", "is required"))
	}
	if !slices.Contains(model.TicketTypes, ticket) {
		return nil, s.reject(invalid("ticket_type", "must be one of the allowed values", model.TicketTypes...))
	}
	qty := *in.Quantity
	if qty < MinQuantity || qty > MaxQuantity {
		return nil, s.reject(invalid("quantity", fmt.Sprintf("must be between %d and %d", MinQuantity, MaxQuantity)))
	}

	matchID := *in.MatchID
	ok, err := s.matches.Exists(ctx, matchID)
	if err != nil {
		monitoring.BookingFailed("storage")
		return nil, fmt.Errorf("lookup match %d: %w", matchID, err)
	}
	if !ok {
		monitoring.BookingFailed("match_not_found")
		return nil, notFound("match", matchID)
	}

	price, err := s.settings.unitPrice(ctx, ticket)
	if err != nil {
		if errors.Is(err, ErrPricingUnavailable) {
			monitoring.BookingFailed("pricing_unavailable")
			s.log.Error().Err(err).Str("ticket_type", ticket).Msg("ticket price misconfigured")
		}
		return nil, err
	}

	status := model.PaymentPaid
	if s.settlement == SettlementDeferred {
		status = model.PaymentPending
	}
	b := &model.Booking{
		MatchID:       matchID,
		CustomerName:  name,
		CustomerEmail: email,
		CustomerPhone: phone,
		TicketType:    ticket,
		Quantity:      qty,
		TotalAmount:   utils.NewMoney(price.Mul(decimal.NewFromInt(int64(qty)))),
		PaymentStatus: status,
	}
	if err := s.insertWithReference(ctx, b); err != nil {
		return nil, err
	}

	monitoring.BookingCreated(b.TicketType, b.PaymentStatus, b.Quantity)
	s.log.Info().
		Str("booking_reference", b.BookingReference).
		Uint64("match_id", b.MatchID).
		Str("ticket_type", b.TicketType).
		Int("quantity", b.Quantity).
		Str("total_amount", b.TotalAmount.String()).
		Msg("booking created")
	s.publishCreated(ctx, b)
	return b, nil
}

// insertWithReference tries up to MaxReferenceAttempts fresh references.
// Only a collision on booking_reference is retried; any other storage
// error is returned unchanged.
func (s *BookingService) insertWithReference(ctx context.Context, b *model.Booking) error {
	for attempt := 1; attempt <= MaxReferenceAttempts; attempt++ {
		ref, err := s.newRef(s.now())
		if err != nil {
			monitoring.BookingFailed("reference_generation")
			return fmt.Errorf("generate booking reference: %w", err)
		}
		b.BookingReference = ref
		err = s.bookings.Create(ctx, b)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicateReference) {
			monitoring.BookingFailed("storage")
			return err
		}
		monitoring.ReferenceCollision()
		s.log.Warn().Str("booking_reference", ref).Int("attempt", attempt).Msg("booking reference collision")
	}
	monitoring.BookingFailed("reference_exhausted")
	return ErrReferenceExhausted
}

func (s *BookingService) publishCreated(ctx context.Context, b *model.Booking) {
	if s.publisher == nil {
		return
	}
	ev := queue.BookingCreatedEvent{
		BookingID:        b.ID,
		BookingReference: b.BookingReference,
		MatchID:          b.MatchID,
		CustomerEmail:    b.CustomerEmail,
		TicketType:       b.TicketType,
		Quantity:         b.Quantity,
		TotalAmount:      b.TotalAmount.String(),
		PaymentStatus:    b.PaymentStatus,
		CreatedAt:        b.CreatedAt.UTC().Format(time.RFC3339),
	}
	// detached from the request; the booking is already committed
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.publisher.PublishBookingCreated(pubCtx, ev); err != nil {
		s.log.Warn().Err(err).Str("booking_reference", b.BookingReference).Msg("booking event not published")
	}
}

func (s *BookingService) reject(err error) error {
	monitoring.BookingFailed("validation")
	return err
}

func mapBookingErr(id any, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound("booking", id)
	}
	return err
}

// Get returns a booking by id.
func (s *BookingService) Get(ctx context.Context, id uint64) (*model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	return b, mapBookingErr(id, err)
}

// GetByReference returns a booking by its reference, case-insensitively.
func (s *BookingService) GetByReference(ctx context.Context, ref string) (*model.Booking, error) {
	ref = strings.ToUpper(strings.TrimSpace(ref))
	if ref == "" {
		return nil, invalid("reference", "is required")
	}
	b, err := s.bookings.GetByReference(ctx, ref)
	return b, mapBookingErr(ref, err)
}

// ListByMatch returns the bookings of one match.
func (s *BookingService) ListByMatch(ctx context.Context, matchID uint64) ([]model.Booking, error) {
	return s.bookings.ListByMatch(ctx, matchID)
}

// ListByEmail returns the bookings made with email, compared
// case-insensitively.
func (s *BookingService) ListByEmail(ctx context.Context, email string) ([]model.Booking, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, invalid("email", "is required")
	}
	return s.bookings.ListByEmail(ctx, email)
}

// List returns bookings for the admin view.
func (s *BookingService) List(ctx context.Context, f repository.BookingFilter) ([]model.BookingWithMatch, error) {
	if f.PaymentStatus != "" && !slices.Contains(model.PaymentStatuses, f.PaymentStatus) {
		return nil, invalid("payment_status", "must be one of the allowed values", model.PaymentStatuses...)
	}
	return s.bookings.List(ctx, f)
}

// UpdatePaymentStatus sets the payment status explicitly.
func (s *BookingService) UpdatePaymentStatus(ctx context.Context, id uint64, status string) (*model.Booking, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !slices.Contains(model.PaymentStatuses, status) {
		return nil, invalid("payment_status", "must be one of the allowed values", model.PaymentStatuses...)
	}
	if err := s.bookings.UpdateStatus(ctx, id, status); err != nil {
		return nil, mapBookingErr(id, err)
	}
	return s.Get(ctx, id)
}

// ConfirmPayment settles a pending booking.
func (s *BookingService) ConfirmPayment(ctx context.Context, id uint64) (*model.Booking, error) {
	return s.transition(ctx, id, []string{model.PaymentPending}, model.PaymentPaid)
}

// Cancel cancels a pending or paid booking.
func (s *BookingService) Cancel(ctx context.Context, id uint64) (*model.Booking, error) {
	return s.transition(ctx, id, []string{model.PaymentPending, model.PaymentPaid}, model.PaymentCancelled)
}

func (s *BookingService) transition(ctx context.Context, id uint64, from []string, to string) (*model.Booking, error) {
	b, err := s.bookings.TransitionStatus(ctx, id, from, to)
	if errors.Is(err, repository.ErrConflict) {
		return nil, fmt.Errorf("booking %d is %s, cannot become %s: %w", id, b.PaymentStatus, to, ErrInvalidTransition)
	}
	if err != nil {
		return nil, mapBookingErr(id, err)
	}
	s.log.Info().Uint64("booking_id", id).Str("payment_status", to).Msg("booking status changed")
	return b, nil
}

// Delete removes a booking permanently.
func (s *BookingService) Delete(ctx context.Context, id uint64) error {
	return mapBookingErr(id, s.bookings.Delete(ctx, id))
}

// Stats returns the aggregated booking statistics.
func (s *BookingService) Stats(ctx context.Context) (model.BookingStats, error) {
	return s.bookings.Stats(ctx)
}

// RevenueByMatch returns the per-match revenue report.
func (s *BookingService) RevenueByMatch(ctx context.Context) ([]model.MatchRevenue, error) {
	return s.bookings.RevenueByMatch(ctx)
}
