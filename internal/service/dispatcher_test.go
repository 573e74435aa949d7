package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"

	"runnerly-backend/internal/domain"
)

func dispatchBooking(status domain.BookingStatus) *domain.Booking {
	b := newTestBooking(status)
	b.CustomerPhone = "+15550001"
	return b
}

func TestDispatchCustomerAndAdminFanOut(t *testing.T) {
	users := new(MockUserRepo)
	email := new(MockEmailSender)
	sms := new(MockSMSSender)
	d := NewNotificationDispatcher(DefaultTemplateTable(), users, email, sms)

	users.On("ListAdmins", mock.Anything).Return([]domain.User{
		{ID: 1, Email: "ops-1@example.com", Role: domain.UserRoleAdmin},
		{ID: 2, Email: "ops-2@example.com", PhoneNumber: "+15550002", Role: domain.UserRoleAdmin},
	}, nil)
	email.On("SendMessage", mock.Anything, "customer@example.com",
		"Your booking price is under review", mock.Anything).Return(nil)
	email.On("SendMessage", mock.Anything, "ops-1@example.com", mock.Anything, mock.Anything).Return(nil)
	email.On("SendMessage", mock.Anything, "ops-2@example.com", mock.Anything, mock.Anything).Return(nil)
	sms.On("SendShortMessage", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	d.DispatchStatusChange(context.Background(),
		dispatchBooking(domain.BookingStatusPriceReview),
		domain.BookingStatusDraft, domain.BookingStatusPriceReview)

	email.AssertNumberOfCalls(t, "SendMessage", 3)
	users.AssertExpectations(t)
}

func TestDispatchRendersPlaceholders(t *testing.T) {
	users := new(MockUserRepo)
	email := new(MockEmailSender)
	d := NewNotificationDispatcher(DefaultTemplateTable(), users, email, nil)

	b := dispatchBooking(domain.BookingStatusAwaitingPayment)
	b.TotalPriceCents = 42000
	email.On("SendMessage", mock.Anything, "customer@example.com",
		"Your booking is ready for payment",
		mock.MatchedBy(func(body string) bool {
			return strings.Contains(body, "Dana") &&
				strings.Contains(body, "b-1") &&
				strings.Contains(body, "420.00")
		})).Return(nil)

	d.DispatchStatusChange(context.Background(), b,
		domain.BookingStatusPriceReview, domain.BookingStatusAwaitingPayment)

	email.AssertExpectations(t)
}

func TestDispatchRunnerResolvedThroughUserRepo(t *testing.T) {
	users := new(MockUserRepo)
	email := new(MockEmailSender)
	d := NewNotificationDispatcher(DefaultTemplateTable(), users, email, nil)

	b := dispatchBooking(domain.BookingStatusAssigned)
	runnerID := int32(7)
	b.AssignedRunnerID = &runnerID
	b.AssignedRunnerName = "Riley"

	users.On("GetByID", mock.Anything, int32(7)).Return(&domain.User{
		ID: 7, Email: "riley@example.com", Role: domain.UserRoleRunner,
	}, nil)
	email.On("SendMessage", mock.Anything, "customer@example.com", mock.Anything, mock.Anything).Return(nil)
	email.On("SendMessage", mock.Anything, "riley@example.com", "New task assigned to you", mock.Anything).Return(nil)

	d.DispatchStatusChange(context.Background(), b,
		domain.BookingStatusPaid, domain.BookingStatusAssigned)

	email.AssertExpectations(t)
	users.AssertExpectations(t)
}

func TestDispatchOneFailureDoesNotStopOthers(t *testing.T) {
	users := new(MockUserRepo)
	email := new(MockEmailSender)
	d := NewNotificationDispatcher(DefaultTemplateTable(), users, email, nil)

	users.On("ListAdmins", mock.Anything).Return([]domain.User{
		{ID: 1, Email: "ops-1@example.com", Role: domain.UserRoleAdmin},
		{ID: 2, Email: "ops-2@example.com", Role: domain.UserRoleAdmin},
	}, nil)
	email.On("SendMessage", mock.Anything, "customer@example.com", mock.Anything, mock.Anything).
		Return(errors.New("mailbox full"))
	email.On("SendMessage", mock.Anything, "ops-1@example.com", mock.Anything, mock.Anything).
		Return(errors.New("smtp 550"))
	email.On("SendMessage", mock.Anything, "ops-2@example.com", mock.Anything, mock.Anything).Return(nil)

	// Must not panic and must still attempt every recipient.
	d.DispatchStatusChange(context.Background(),
		dispatchBooking(domain.BookingStatusPriceReview),
		domain.BookingStatusDraft, domain.BookingStatusPriceReview)

	email.AssertNumberOfCalls(t, "SendMessage", 3)
}

func TestDispatchSMSFailureIsBestEffort(t *testing.T) {
	users := new(MockUserRepo)
	email := new(MockEmailSender)
	sms := new(MockSMSSender)
	d := NewNotificationDispatcher(DefaultTemplateTable(), users, email, sms)

	email.On("SendMessage", mock.Anything, "customer@example.com", mock.Anything, mock.Anything).Return(nil)
	sms.On("SendShortMessage", mock.Anything, "+15550001", mock.Anything).
		Return(errors.New("gateway timeout"))

	d.DispatchStatusChange(context.Background(),
		dispatchBooking(domain.BookingStatusAwaitingPayment),
		domain.BookingStatusPriceReview, domain.BookingStatusAwaitingPayment)

	email.AssertExpectations(t)
	sms.AssertExpectations(t)
}

func TestDispatchNoTemplateMeansNoSend(t *testing.T) {
	users := new(MockUserRepo)
	email := new(MockEmailSender)
	d := NewNotificationDispatcher(DefaultTemplateTable(), users, email, nil)

	// draft and archived carry no notification content.
	d.DispatchStatusChange(context.Background(),
		dispatchBooking(domain.BookingStatusDraft),
		domain.BookingStatusPriceReview, domain.BookingStatusDraft)
	d.DispatchStatusChange(context.Background(),
		dispatchBooking(domain.BookingStatusArchived),
		domain.BookingStatusCompleted, domain.BookingStatusArchived)

	email.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatchRoleWithoutSlotGetsNothing(t *testing.T) {
	users := new(MockUserRepo)
	email := new(MockEmailSender)
	d := NewNotificationDispatcher(DefaultTemplateTable(), users, email, nil)

	// picked_up notifies only the customer even when a runner is assigned.
	b := dispatchBooking(domain.BookingStatusPickedUp)
	runnerID := int32(7)
	b.AssignedRunnerID = &runnerID

	email.On("SendMessage", mock.Anything, "customer@example.com", mock.Anything, mock.Anything).Return(nil)

	d.DispatchStatusChange(context.Background(), b,
		domain.BookingStatusAssigned, domain.BookingStatusPickedUp)

	email.AssertNumberOfCalls(t, "SendMessage", 1)
	users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	users.AssertNotCalled(t, "ListAdmins", mock.Anything)
}

func TestDispatchRunnerFallsBackToBookingPhone(t *testing.T) {
	users := new(MockUserRepo)
	email := new(MockEmailSender)
	sms := new(MockSMSSender)
	d := NewNotificationDispatcher(DefaultTemplateTable(), users, email, sms)

	b := dispatchBooking(domain.BookingStatusCancelled)
	runnerID := int32(7)
	b.AssignedRunnerID = &runnerID
	b.AssignedRunnerPhone = "+15550100"

	users.On("ListAdmins", mock.Anything).Return([]domain.User{}, nil)
	users.On("GetByID", mock.Anything, int32(7)).Return(nil, errors.New("user store down"))
	email.On("SendMessage", mock.Anything, "customer@example.com", mock.Anything, mock.Anything).Return(nil)
	sms.On("SendShortMessage", mock.Anything, "+15550001", mock.Anything).Return(nil)
	sms.On("SendShortMessage", mock.Anything, "+15550100", "Task cancelled").Return(nil)

	d.DispatchStatusChange(context.Background(), b,
		domain.BookingStatusAssigned, domain.BookingStatusCancelled)

	sms.AssertCalled(t, "SendShortMessage", mock.Anything, "+15550100", "Task cancelled")
}
