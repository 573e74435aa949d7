package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("booking not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrConflict              = errors.New("concurrent transition conflict")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrValidation            = errors.New("validation failed")
	ErrDuplicateCompensation = errors.New("compensation already exists for booking")
	// ErrNegotiationClosed is returned when an offer operation targets a
	// negotiation already in a terminal state (accepted or rejected).
	ErrNegotiationClosed = errors.New("negotiation already closed")
	// ErrCancellationWindow is returned when a customer tries to cancel a
	// scheduled booking less than two hours before its start.
	ErrCancellationWindow = errors.New("cancellation window closed")
)

// InvalidTransitionError carries the allowed target set so API callers can
// show what the booking may move to from its current status.
type InvalidTransitionError struct {
	From    BookingStatus
	To      BookingStatus
	Allowed []BookingStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition from %s to %s (allowed: %v)", e.From, e.To, e.Allowed)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
