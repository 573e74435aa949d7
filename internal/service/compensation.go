package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"runnerly-backend/internal/domain"
	"runnerly-backend/internal/logger"
	"runnerly-backend/internal/repository"
)

// Time-to-start payout steps for customer self-service cancellation, in
// cents (100.00 and 50.00). Inside two hours cancellation is disallowed
// altogether; at a day or more out nothing is owed and any payment is
// fully refundable.
const (
	compensationUnder4hCents  int64 = 10000
	compensationUnder24hCents int64 = 5000

	minCancellationNotice = 2 * time.Hour
	shortNoticeWindow     = 4 * time.Hour
	fullRefundNotice      = 24 * time.Hour
)

// StatusBasedCompensation is the operator-reviewed payout policy: 75% of
// the runner's earnings once work had begun, 25% when the task was merely
// assigned, nothing otherwise.
func StatusBasedCompensation(b *domain.Booking) int64 {
	if b.AssignedRunnerID == nil {
		return 0
	}
	if domain.WorkHadBegun(b.Status) {
		return roundCents(float64(b.DriverEarningsCents) * 0.75)
	}
	if b.Status == domain.BookingStatusAssigned {
		return roundCents(float64(b.DriverEarningsCents) * 0.25)
	}
	return 0
}

// TimeBasedCompensation is the self-service policy for scheduled tasks,
// keyed on how far ahead of the start the customer cancels.
func TimeBasedCompensation(scheduledStart, at time.Time) (int64, error) {
	notice := scheduledStart.Sub(at)
	switch {
	case notice < minCancellationNotice:
		return 0, domain.ErrCancellationWindow
	case notice < shortNoticeWindow:
		return compensationUnder4hCents, nil
	case notice < fullRefundNotice:
		return compensationUnder24hCents, nil
	default:
		return 0, nil
	}
}

type compensationService struct {
	bookingRepo repository.BookingRepository
	compRepo    repository.CompensationRepository
	bookingSvc  BookingService
}

func NewCompensationService(
	bookingRepo repository.BookingRepository,
	compRepo repository.CompensationRepository,
	bookingSvc BookingService,
) CompensationService {
	return &compensationService{
		bookingRepo: bookingRepo,
		compRepo:    compRepo,
		bookingSvc:  bookingSvc,
	}
}

func (s *compensationService) ReviewedCancellation(ctx context.Context, bookingID, actor, reason string) (*domain.CancellationCompensation, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	// Compute against the pre-cancellation status; after the transition the
	// booking no longer tells us how far the work had progressed.
	amount := StatusBasedCompensation(b)
	wasStarted := domain.WorkHadBegun(b.Status)

	if _, err := s.bookingSvc.Transition(ctx, bookingID, domain.BookingStatusCancelled, actor, reason); err != nil {
		return nil, err
	}

	if b.AssignedRunnerID == nil {
		return nil, nil
	}
	return s.record(ctx, b, amount, wasStarted, reason)
}

func (s *compensationService) SelfServiceCancellation(ctx context.Context, bookingID, actor, reason string) (*domain.CancellationCompensation, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	// The window check happens before any mutation: inside two hours the
	// cancellation request itself is rejected.
	var amount int64
	if b.ScheduledStart != nil {
		amount, err = TimeBasedCompensation(*b.ScheduledStart, time.Now())
		if err != nil {
			return nil, err
		}
	}
	wasStarted := domain.WorkHadBegun(b.Status)

	if _, err := s.bookingSvc.Transition(ctx, bookingID, domain.BookingStatusCancelled, actor, reason); err != nil {
		return nil, err
	}

	if b.AssignedRunnerID == nil {
		return nil, nil
	}
	return s.record(ctx, b, amount, wasStarted, reason)
}

func (s *compensationService) GetCompensation(ctx context.Context, bookingID string) (*domain.CancellationCompensation, error) {
	return s.compRepo.GetByBookingID(ctx, bookingID)
}

func (s *compensationService) record(ctx context.Context, b *domain.Booking, amount int64, wasStarted bool, reason string) (*domain.CancellationCompensation, error) {
	comp := &domain.CancellationCompensation{
		ID:          uuid.NewString(),
		BookingID:   b.ID,
		RunnerID:    *b.AssignedRunnerID,
		AmountCents: amount,
		Reason:      reason,
		WasAccepted: true,
		WasStarted:  wasStarted,
		Status:      domain.CompensationStatusSuggested,
	}
	if err := s.compRepo.Create(ctx, comp); err != nil {
		return nil, err
	}
	logger.Info("cancellation compensation recorded",
		"booking_id", b.ID, "runner_id", comp.RunnerID, "amount_cents", amount)
	return comp, nil
}
