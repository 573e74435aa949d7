package service

import (
	"context"
	"time"

	"runnerly-backend/internal/domain"
)

// TransitionResult is returned to the caller of a successful transition.
type TransitionResult struct {
	Booking   *domain.Booking
	OldStatus domain.BookingStatus
	NewStatus domain.BookingStatus
}

type CreateBookingRequest struct {
	ServiceType     string
	DistanceKm      float64
	Hours           int32
	ScheduledStart  *time.Time
	SelectedRuleIDs []int32
	CustomerEmail   string
	CustomerPhone   string
	CustomerName    string
}

type BookingService interface {
	CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error)
	GetBooking(ctx context.Context, id string) (*domain.Booking, error)
	ListByCustomer(ctx context.Context, customerEmail, status string, page, pageSize int32) ([]domain.Booking, int32, error)
	ListByRunner(ctx context.Context, runnerID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error)

	// Transition validates newStatus against the transition table, commits
	// the change atomically with one history entry, and triggers
	// notification dispatch after the commit.
	Transition(ctx context.Context, bookingID string, newStatus domain.BookingStatus, actor, reason string) (*TransitionResult, error)
}

type NegotiationService interface {
	// SubmitOffer records the customer's proposed price and puts the
	// booking under operator review.
	SubmitOffer(ctx context.Context, bookingID string, offeredCents int64, actor string) (*domain.Booking, error)
	// AcceptOffer accepts the customer's original offer as the final price.
	AcceptOffer(ctx context.Context, bookingID string, actor string) (*domain.Booking, error)
	// CounterOffer proposes a different price back to the customer.
	CounterOffer(ctx context.Context, bookingID string, priceCents int64, message, actor string) (*domain.Booking, error)
	RejectOffer(ctx context.Context, bookingID string, actor string) (*domain.Booking, error)
	CustomerAcceptsCounter(ctx context.Context, bookingID string, actor string) (*domain.Booking, error)
}

type CompensationService interface {
	// ReviewedCancellation cancels on behalf of an operator, applying the
	// status-based payout policy and recording the compensation.
	ReviewedCancellation(ctx context.Context, bookingID, actor, reason string) (*domain.CancellationCompensation, error)
	// SelfServiceCancellation cancels on behalf of the customer, applying
	// the time-to-start policy. Inside the two-hour window the request is
	// rejected outright.
	SelfServiceCancellation(ctx context.Context, bookingID, actor, reason string) (*domain.CancellationCompensation, error)
	GetCompensation(ctx context.Context, bookingID string) (*domain.CancellationCompensation, error)
}

// NotificationDispatcher fans out role-targeted messages after a committed
// transition. Implementations must never block or fail the transition.
type NotificationDispatcher interface {
	DispatchStatusChange(ctx context.Context, booking *domain.Booking, oldStatus, newStatus domain.BookingStatus)
}

// EmailSender is the primary message channel.
type EmailSender interface {
	SendMessage(ctx context.Context, address, subject, body string) error
}

// SMSSender is the secondary, best-effort channel.
type SMSSender interface {
	SendShortMessage(ctx context.Context, phoneNumber, text string) error
}
