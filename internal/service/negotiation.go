package service

import (
	"context"

	"runnerly-backend/internal/domain"
	"runnerly-backend/internal/logger"
	"runnerly-backend/internal/repository"
)

type negotiationService struct {
	bookingRepo repository.BookingRepository
	bookingSvc  BookingService
}

func NewNegotiationService(bookingRepo repository.BookingRepository, bookingSvc BookingService) NegotiationService {
	return &negotiationService{bookingRepo: bookingRepo, bookingSvc: bookingSvc}
}

func (s *negotiationService) SubmitOffer(ctx context.Context, bookingID string, offeredCents int64, actor string) (*domain.Booking, error) {
	if offeredCents <= 0 {
		return nil, &domain.ValidationError{Field: "offered_price", Message: "must be positive"}
	}
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.NegotiationStatus != domain.NegotiationNone {
		return nil, domain.ErrNegotiationClosed
	}

	b.CustomerOfferedPriceCents = offeredCents
	b.NegotiationStatus = domain.NegotiationPendingReview
	if err := s.bookingRepo.UpdateNegotiation(ctx, b); err != nil {
		return nil, err
	}
	logger.Info("price offer submitted", "booking_id", b.ID, "offered_cents", offeredCents)
	return s.ensureStatus(ctx, b, domain.BookingStatusPriceReview, actor, "customer price offer")
}

// AcceptOffer takes the customer's original offer as the final price and
// moves the booking to payment.
func (s *negotiationService) AcceptOffer(ctx context.Context, bookingID string, actor string) (*domain.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := requireNegotiation(b, domain.NegotiationPendingReview); err != nil {
		return nil, err
	}
	if b.CustomerOfferedPriceCents <= 0 {
		return nil, &domain.ValidationError{Field: "customer_offered_price", Message: "no offer on record"}
	}

	b.ProposedPriceCents = b.CustomerOfferedPriceCents
	b.TotalPriceCents = b.CustomerOfferedPriceCents
	b.DriverEarningsCents, b.PlatformFeeCents = SplitTotal(b.TotalPriceCents)
	b.NegotiationStatus = domain.NegotiationCustomerAccepted
	if err := s.bookingRepo.UpdateNegotiation(ctx, b); err != nil {
		return nil, err
	}
	logger.Info("offer accepted", "booking_id", b.ID, "total_cents", b.TotalPriceCents, "actor", actor)
	return s.ensureStatus(ctx, b, domain.BookingStatusAwaitingPayment, actor, "offer accepted")
}

func (s *negotiationService) CounterOffer(ctx context.Context, bookingID string, priceCents int64, message, actor string) (*domain.Booking, error) {
	if priceCents <= 0 {
		return nil, &domain.ValidationError{Field: "price", Message: "must be positive"}
	}
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := requireNegotiation(b, domain.NegotiationPendingReview); err != nil {
		return nil, err
	}

	b.ProposedPriceCents = priceCents
	b.CounterMessage = message
	b.NegotiationStatus = domain.NegotiationAdminCountered
	if err := s.bookingRepo.UpdateNegotiation(ctx, b); err != nil {
		return nil, err
	}
	logger.Info("counter offer sent", "booking_id", b.ID, "proposed_cents", priceCents, "actor", actor)
	return s.ensureStatus(ctx, b, domain.BookingStatusPriceReview, actor, "counter offer")
}

func (s *negotiationService) RejectOffer(ctx context.Context, bookingID string, actor string) (*domain.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := requireNegotiation(b, domain.NegotiationPendingReview, domain.NegotiationAdminCountered); err != nil {
		return nil, err
	}

	b.NegotiationStatus = domain.NegotiationRejected
	if err := s.bookingRepo.UpdateNegotiation(ctx, b); err != nil {
		return nil, err
	}
	logger.Info("offer rejected", "booking_id", b.ID, "actor", actor)
	return s.ensureStatus(ctx, b, domain.BookingStatusCancelled, actor, "offer rejected")
}

func (s *negotiationService) CustomerAcceptsCounter(ctx context.Context, bookingID string, actor string) (*domain.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := requireNegotiation(b, domain.NegotiationAdminCountered); err != nil {
		return nil, err
	}

	b.TotalPriceCents = b.ProposedPriceCents
	b.DriverEarningsCents, b.PlatformFeeCents = SplitTotal(b.TotalPriceCents)
	b.NegotiationStatus = domain.NegotiationCustomerAccepted
	if err := s.bookingRepo.UpdateNegotiation(ctx, b); err != nil {
		return nil, err
	}
	logger.Info("counter accepted", "booking_id", b.ID, "total_cents", b.TotalPriceCents)
	return s.ensureStatus(ctx, b, domain.BookingStatusAwaitingPayment, actor, "counter offer accepted")
}

// requireNegotiation enforces the forward-only sub-state-machine: terminal
// states reject every operation, and each operation names the states it
// may start from.
func requireNegotiation(b *domain.Booking, allowed ...domain.NegotiationStatus) error {
	switch b.NegotiationStatus {
	case domain.NegotiationCustomerAccepted, domain.NegotiationRejected:
		return domain.ErrNegotiationClosed
	}
	for _, ns := range allowed {
		if b.NegotiationStatus == ns {
			return nil
		}
	}
	return &domain.ValidationError{
		Field:   "negotiation_status",
		Message: "operation not applicable in state " + string(b.NegotiationStatus),
	}
}

// ensureStatus delegates to the top-level state machine unless the booking
// is already in the target status (counter offers keep a booking in
// price_review, which has no self-loop).
func (s *negotiationService) ensureStatus(ctx context.Context, b *domain.Booking, target domain.BookingStatus, actor, reason string) (*domain.Booking, error) {
	if b.Status == target {
		return b, nil
	}
	res, err := s.bookingSvc.Transition(ctx, b.ID, target, actor, reason)
	if err != nil {
		return nil, err
	}
	return res.Booking, nil
}
