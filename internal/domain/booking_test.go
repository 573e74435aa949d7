package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultTransitionTableTerminalStates(t *testing.T) {
	table := DefaultTransitionTable()

	assert.Empty(t, table.Allowed(BookingStatusArchived))
	assert.Empty(t, table.Allowed(BookingStatusCancelled))

	// Every non-terminal status up to completion can be cancelled.
	for _, from := range []BookingStatus{
		BookingStatusDraft, BookingStatusPriceReview, BookingStatusAwaitingPayment,
		BookingStatusPaid, BookingStatusAssigned, BookingStatusPickedUp,
		BookingStatusOnTheWay, BookingStatusDelivered,
	} {
		assert.True(t, table.CanTransition(from, BookingStatusCancelled), "cancel from %s", from)
	}

	// Completed bookings can only be archived.
	assert.Equal(t, []BookingStatus{BookingStatusArchived}, table.Allowed(BookingStatusCompleted))
	assert.False(t, table.CanTransition(BookingStatusCompleted, BookingStatusCancelled))
}

func TestTransitionTableHasNoSelfLoops(t *testing.T) {
	table := DefaultTransitionTable()
	for from, targets := range table {
		for _, to := range targets {
			assert.NotEqual(t, from, to, "self loop on %s", from)
		}
	}
}

func TestAllowedReturnsACopy(t *testing.T) {
	table := DefaultTransitionTable()

	allowed := table.Allowed(BookingStatusDraft)
	allowed[0] = BookingStatusArchived

	assert.False(t, table.CanTransition(BookingStatusDraft, BookingStatusArchived))
}

func TestWorkHadBegun(t *testing.T) {
	assert.True(t, WorkHadBegun(BookingStatusPickedUp))
	assert.True(t, WorkHadBegun(BookingStatusOnTheWay))
	assert.True(t, WorkHadBegun(BookingStatusInProgress))

	assert.False(t, WorkHadBegun(BookingStatusAssigned))
	assert.False(t, WorkHadBegun(BookingStatusDelivered))
	assert.False(t, WorkHadBegun(BookingStatusDraft))
}

func TestInProgressIsNotReachable(t *testing.T) {
	table := DefaultTransitionTable()
	for from, targets := range table {
		for _, to := range targets {
			assert.NotEqual(t, BookingStatusInProgress, to, "in_progress reachable from %s", from)
		}
	}
	assert.Empty(t, table.Allowed(BookingStatusInProgress))
}

func TestTypedErrorsUnwrapToSentinels(t *testing.T) {
	ite := &InvalidTransitionError{
		From:    BookingStatusDraft,
		To:      BookingStatusPaid,
		Allowed: []BookingStatus{BookingStatusPriceReview, BookingStatusCancelled},
	}
	assert.True(t, errors.Is(ite, ErrInvalidTransition))
	assert.Contains(t, ite.Error(), "draft")
	assert.Contains(t, ite.Error(), "paid")

	ve := &ValidationError{Field: "customer_email", Message: "required"}
	assert.True(t, errors.Is(ve, ErrValidation))
	assert.Contains(t, ve.Error(), "customer_email")
}
