package repository

import (
	"context"
	"time"

	"runnerly-backend/internal/domain"
)

type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	ListByCustomer(ctx context.Context, customerEmail string, status string, page, pageSize int32) ([]domain.Booking, int32, error)
	ListByRunner(ctx context.Context, runnerID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error)

	// CommitTransition applies a validated status change in one transaction:
	// status update, history append, and write-once derived timestamps. The
	// update is guarded by (status == from AND status_version == fromVersion);
	// it returns false without error when the guard misses, meaning a
	// concurrent transition committed first.
	CommitTransition(ctx context.Context, b *domain.Booking, from domain.BookingStatus, fromVersion int32, entry domain.StatusHistoryEntry) (bool, error)

	// UpdateNegotiation persists negotiation state and price fields. Top-level
	// status is never touched here; that goes through CommitTransition.
	UpdateNegotiation(ctx context.Context, b *domain.Booking) error

	History(ctx context.Context, bookingID string) ([]domain.StatusHistoryEntry, error)

	// Job queries.
	ListCompletedBefore(ctx context.Context, cutoff time.Time) ([]domain.Booking, error)
	ListStartingBetween(ctx context.Context, from, to time.Time) ([]domain.Booking, error)
}

type CompensationRepository interface {
	// Create inserts the compensation record. A second insert for the same
	// booking fails with domain.ErrDuplicateCompensation.
	Create(ctx context.Context, c *domain.CancellationCompensation) error
	GetByBookingID(ctx context.Context, bookingID string) (*domain.CancellationCompensation, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	// ListAdmins resolves the current admin set at dispatch time.
	ListAdmins(ctx context.Context) ([]domain.User, error)
}

type PricingRuleRepository interface {
	ListActive(ctx context.Context) ([]domain.PricingRule, error)
}
