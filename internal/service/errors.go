// Package service holds the booking and revenue ledger: validation,
// pricing, reference allocation and the reporting views built on the
// repositories.
package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/club-ledger/internal/utils"
)

var (
	// ErrValidation marks malformed or out-of-range input.  Concrete
	// failures are *ValidationError values that unwrap to it.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a referenced match, booking, entry or key that
	// does not exist.
	ErrNotFound = errors.New("not found")
	// ErrPricingUnavailable means a ticket price is missing or unusable in
	// the configuration store.  It is a server configuration fault.
	ErrPricingUnavailable = errors.New("ticket pricing is not configured")
	// ErrReferenceExhausted means every attempt to allocate a unique
	// booking reference collided.  Retrying the whole request is safe.
	ErrReferenceExhausted = errors.New("could not allocate a booking reference, please retry")
	// ErrInvalidTransition means the booking's current status does not
	// allow the requested change.
	ErrInvalidTransition = errors.New("invalid payment status transition")
)

// ValidationError describes one rejected field.  Allowed is set when the
// field is an enumeration.
type ValidationError struct {
	Field   string   `json:"field"`
	Message string   `json:"message"`
	Allowed []string `json:"allowed,omitempty"`
}

func (e *ValidationError) Error() string {
	if len(e.Allowed) > 0 {
		return fmt.Sprintf("%s %s (allowed: %s)", e.Field, e.Message, strings.Join(e.Allowed, ", "))
	}
	return e.Field + " " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, message string, allowed ...string) error {
	return &ValidationError{Field: field, Message: message, Allowed: allowed}
}

func notFound(entity string, id any) error {
	return fmt.Errorf("%s %v: %w", entity, id, ErrNotFound)
}

// amountError reports why a money input was refused.
func amountError(field string, err error) error {
	if errors.Is(err, utils.ErrOutOfRange) {
		return invalid(field, "must be less than "+utils.MaxAmount.String())
	}
	return invalid(field, "must be a number")
}
