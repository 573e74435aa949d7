package service

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"runnerly-backend/internal/domain"
)

// memBookingRepo is an in-memory BookingRepository with the same CAS
// semantics as the postgres implementation, so transition tests can
// exercise real races.
type memBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*domain.Booking
}

func newMemBookingRepo(bookings ...*domain.Booking) *memBookingRepo {
	m := &memBookingRepo{bookings: make(map[string]*domain.Booking)}
	for _, b := range bookings {
		m.bookings[b.ID] = cloneBooking(b)
	}
	return m
}

func cloneBooking(b *domain.Booking) *domain.Booking {
	c := *b
	c.StatusHistory = append([]domain.StatusHistoryEntry(nil), b.StatusHistory...)
	c.Addons = append([]domain.PriceAddon(nil), b.Addons...)
	return &c
}

func (m *memBookingRepo) Create(_ context.Context, b *domain.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[b.ID] = cloneBooking(b)
	return nil
}

func (m *memBookingRepo) GetByID(_ context.Context, id string) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneBooking(b), nil
}

func (m *memBookingRepo) CommitTransition(_ context.Context, b *domain.Booking, from domain.BookingStatus, fromVersion int32, entry domain.StatusHistoryEntry) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.bookings[b.ID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if cur.Status != from || cur.StatusVersion != fromVersion {
		return false, nil
	}
	apply := func(target *domain.Booking) {
		target.Status = entry.Status
		target.StatusVersion = fromVersion + 1
		target.StatusHistory = append(target.StatusHistory, entry)
		if entry.Status == domain.BookingStatusCompleted && target.CompletedDate == nil {
			t := entry.Timestamp
			target.CompletedDate = &t
		}
		if entry.Status == domain.BookingStatusArchived && target.ArchivedDate == nil {
			t := entry.Timestamp
			target.ArchivedDate = &t
		}
		target.UpdatedOn = entry.Timestamp
	}
	apply(cur)
	apply(b)
	return true, nil
}

func (m *memBookingRepo) UpdateNegotiation(_ context.Context, b *domain.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.bookings[b.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.NegotiationStatus = b.NegotiationStatus
	cur.CounterMessage = b.CounterMessage
	cur.TotalPriceCents = b.TotalPriceCents
	cur.DriverEarningsCents = b.DriverEarningsCents
	cur.PlatformFeeCents = b.PlatformFeeCents
	cur.ProposedPriceCents = b.ProposedPriceCents
	cur.CustomerOfferedPriceCents = b.CustomerOfferedPriceCents
	return nil
}

func (m *memBookingRepo) History(_ context.Context, bookingID string) ([]domain.StatusHistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[bookingID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]domain.StatusHistoryEntry(nil), b.StatusHistory...), nil
}

func (m *memBookingRepo) ListByCustomer(_ context.Context, email, status string, _, _ int32) ([]domain.Booking, int32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Booking
	for _, b := range m.bookings {
		if b.CustomerEmail == email && (status == "" || string(b.Status) == status) {
			out = append(out, *cloneBooking(b))
		}
	}
	return out, int32(len(out)), nil
}

func (m *memBookingRepo) ListByRunner(_ context.Context, runnerID int32, status string, _, _ int32) ([]domain.Booking, int32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Booking
	for _, b := range m.bookings {
		if b.AssignedRunnerID != nil && *b.AssignedRunnerID == runnerID && (status == "" || string(b.Status) == status) {
			out = append(out, *cloneBooking(b))
		}
	}
	return out, int32(len(out)), nil
}

func (m *memBookingRepo) ListCompletedBefore(_ context.Context, cutoff time.Time) ([]domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Booking
	for _, b := range m.bookings {
		if b.Status == domain.BookingStatusCompleted && b.CompletedDate != nil && b.CompletedDate.Before(cutoff) {
			out = append(out, *cloneBooking(b))
		}
	}
	return out, nil
}

func (m *memBookingRepo) ListStartingBetween(_ context.Context, from, to time.Time) ([]domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Booking
	for _, b := range m.bookings {
		if b.ScheduledStart != nil && !b.ScheduledStart.Before(from) && b.ScheduledStart.Before(to) {
			out = append(out, *cloneBooking(b))
		}
	}
	return out, nil
}

// memCompensationRepo enforces the one-record-per-booking rule like the
// postgres unique constraint does.
type memCompensationRepo struct {
	mu      sync.Mutex
	records map[string]*domain.CancellationCompensation
}

func newMemCompensationRepo() *memCompensationRepo {
	return &memCompensationRepo{records: make(map[string]*domain.CancellationCompensation)}
}

func (m *memCompensationRepo) Create(_ context.Context, c *domain.CancellationCompensation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.records[c.BookingID]; exists {
		return domain.ErrDuplicateCompensation
	}
	cc := *c
	m.records[c.BookingID] = &cc
	return nil
}

func (m *memCompensationRepo) GetByBookingID(_ context.Context, bookingID string) (*domain.CancellationCompensation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.records[bookingID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cc := *c
	return &cc, nil
}

// memRuleRepo serves a fixed rule catalog.
type memRuleRepo struct {
	rules []domain.PricingRule
}

func (m *memRuleRepo) ListActive(_ context.Context) ([]domain.PricingRule, error) {
	return append([]domain.PricingRule(nil), m.rules...), nil
}

// recordingDispatcher captures dispatch invocations for assertions. The
// booking service fires dispatch in a goroutine, so tests wait on Calls.
type recordingDispatcher struct {
	mu    sync.Mutex
	calls []dispatchCall
	ch    chan dispatchCall
}

type dispatchCall struct {
	BookingID string
	Old, New  domain.BookingStatus
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{ch: make(chan dispatchCall, 16)}
}

func (d *recordingDispatcher) DispatchStatusChange(_ context.Context, b *domain.Booking, old, new domain.BookingStatus) {
	call := dispatchCall{BookingID: b.ID, Old: old, New: new}
	d.mu.Lock()
	d.calls = append(d.calls, call)
	d.mu.Unlock()
	d.ch <- call
}

func (d *recordingDispatcher) wait(timeout time.Duration) (dispatchCall, bool) {
	select {
	case call := <-d.ch:
		return call, true
	case <-time.After(timeout):
		return dispatchCall{}, false
	}
}

// Testify mocks for the dispatcher's collaborators.

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) ListAdmins(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendMessage(ctx context.Context, address, subject, body string) error {
	args := m.Called(ctx, address, subject, body)
	return args.Error(0)
}

type MockSMSSender struct {
	mock.Mock
}

func (m *MockSMSSender) SendShortMessage(ctx context.Context, phoneNumber, text string) error {
	args := m.Called(ctx, phoneNumber, text)
	return args.Error(0)
}
