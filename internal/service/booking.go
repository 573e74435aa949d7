package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"runnerly-backend/internal/domain"
	"runnerly-backend/internal/logger"
	"runnerly-backend/internal/repository"
)

// casAttempts bounds the retry loop when a concurrent transition wins the
// version check. Losers re-validate against the post-commit state; if the
// state keeps moving under us we give up with ErrConflict.
const casAttempts = 3

type bookingService struct {
	bookingRepo repository.BookingRepository
	ruleRepo    repository.PricingRuleRepository
	pricing     *PricingEngine
	dispatcher  NotificationDispatcher
	transitions domain.TransitionTable
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	ruleRepo repository.PricingRuleRepository,
	pricing *PricingEngine,
	dispatcher NotificationDispatcher,
	transitions domain.TransitionTable,
) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		ruleRepo:    ruleRepo,
		pricing:     pricing,
		dispatcher:  dispatcher,
		transitions: transitions,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	if req.CustomerEmail == "" {
		return nil, &domain.ValidationError{Field: "customer_email", Message: "required"}
	}
	if req.ServiceType == "" {
		return nil, &domain.ValidationError{Field: "service_type", Message: "required"}
	}

	rules, err := s.ruleRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if err := ValidateRules(rules); err != nil {
		return nil, err
	}

	preferred := time.Now()
	if req.ScheduledStart != nil {
		preferred = *req.ScheduledStart
	}
	bd, err := s.pricing.ComputeQuote(QuoteRequest{
		ServiceType:     req.ServiceType,
		DistanceKm:      req.DistanceKm,
		Hours:           req.Hours,
		SelectedRuleIDs: req.SelectedRuleIDs,
		PreferredTime:   preferred,
	}, rules)
	if err != nil {
		return nil, err
	}

	b := &domain.Booking{
		ID:                  uuid.NewString(),
		Status:              domain.BookingStatusDraft,
		ServiceType:         req.ServiceType,
		DistanceKm:          req.DistanceKm,
		Hours:               req.Hours,
		ScheduledStart:      req.ScheduledStart,
		BasePriceCents:      bd.BasePriceCents,
		DistanceFeeCents:    bd.DistanceFeeCents,
		TotalPriceCents:     bd.TotalPriceCents,
		DriverEarningsCents: bd.DriverEarningsCents,
		PlatformFeeCents:    bd.PlatformFeeCents,
		CustomerEmail:       req.CustomerEmail,
		CustomerPhone:       req.CustomerPhone,
		CustomerName:        req.CustomerName,
	}
	for _, ar := range bd.AppliedRules {
		b.Addons = append(b.Addons, domain.PriceAddon{
			Type:        ar.Type,
			AmountCents: ar.AmountCents,
			Reason:      ar.Reason,
		})
	}

	if err := s.bookingRepo.Create(ctx, b); err != nil {
		return nil, err
	}
	logger.Info("booking created", "booking_id", b.ID, "service_type", b.ServiceType, "total_cents", b.TotalPriceCents)
	return b, nil
}

func (s *bookingService) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	return s.bookingRepo.GetByID(ctx, id)
}

func (s *bookingService) ListByCustomer(ctx context.Context, customerEmail, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	return s.bookingRepo.ListByCustomer(ctx, customerEmail, status, page, pageSize)
}

func (s *bookingService) ListByRunner(ctx context.Context, runnerID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	return s.bookingRepo.ListByRunner(ctx, runnerID, status, page, pageSize)
}

func (s *bookingService) Transition(ctx context.Context, bookingID string, newStatus domain.BookingStatus, actor, reason string) (*TransitionResult, error) {
	if newStatus == "" {
		return nil, &domain.ValidationError{Field: "new_status", Message: "required"}
	}
	if actor == "" {
		return nil, &domain.ValidationError{Field: "actor", Message: "required"}
	}

	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < casAttempts; attempt++ {
		if !s.transitions.CanTransition(b.Status, newStatus) {
			return nil, &domain.InvalidTransitionError{
				From:    b.Status,
				To:      newStatus,
				Allowed: s.transitions.Allowed(b.Status),
			}
		}

		oldStatus := b.Status
		entry := domain.StatusHistoryEntry{
			Status:    newStatus,
			Timestamp: time.Now(),
			ChangedBy: actor,
			Reason:    reason,
		}
		committed, err := s.bookingRepo.CommitTransition(ctx, b, oldStatus, b.StatusVersion, entry)
		if err != nil {
			return nil, err
		}
		if committed {
			logger.Info("booking transitioned",
				"booking_id", b.ID, "from", oldStatus, "to", newStatus, "actor", actor)
			s.notifyAsync(ctx, b, oldStatus, newStatus)
			return &TransitionResult{Booking: b, OldStatus: oldStatus, NewStatus: newStatus}, nil
		}

		// Someone else committed first; re-validate against their result.
		b, err = s.bookingRepo.GetByID(ctx, bookingID)
		if err != nil {
			return nil, err
		}
	}
	return nil, domain.ErrConflict
}

// notifyAsync hands the committed transition to the dispatcher without
// blocking the caller. The dispatcher owns all failure handling; nothing
// that happens there can affect the already-committed transition.
func (s *bookingService) notifyAsync(ctx context.Context, b *domain.Booking, oldStatus, newStatus domain.BookingStatus) {
	if s.dispatcher == nil {
		return
	}
	snapshot := *b
	go s.dispatcher.DispatchStatusChange(context.WithoutCancel(ctx), &snapshot, oldStatus, newStatus)
}
