package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"runnerly-backend/internal/domain"
	"runnerly-backend/internal/logger"
	"runnerly-backend/internal/repository"
)

// RoleMessage is the notification content for one role on one transition.
type RoleMessage struct {
	Subject string
	Body    string
}

// StatusTemplates holds the optional per-role messages for a target
// status. A nil slot means that role gets nothing on this transition.
type StatusTemplates struct {
	Customer *RoleMessage
	Admin    *RoleMessage
	Runner   *RoleMessage
}

// TemplateTable maps a committed target status to its notification
// content. It is injected into the dispatcher at construction.
type TemplateTable map[domain.BookingStatus]StatusTemplates

// DefaultTemplateTable returns the production notification content.
// Bodies use {placeholder} slots filled from the booking at dispatch time.
func DefaultTemplateTable() TemplateTable {
	return TemplateTable{
		domain.BookingStatusPriceReview: {
			Customer: &RoleMessage{
				Subject: "Your booking price is under review",
				Body:    "Hello {customer_name},\n\nYour booking {booking_id} is being reviewed by our team. We will get back to you shortly.\n\nThe Runnerly Team",
			},
			Admin: &RoleMessage{
				Subject: "Booking awaiting price review",
				Body:    "Booking {booking_id} needs a price decision. Offered total: {total}.",
			},
		},
		domain.BookingStatusAwaitingPayment: {
			Customer: &RoleMessage{
				Subject: "Your booking is ready for payment",
				Body:    "Hello {customer_name},\n\nThe price for booking {booking_id} is confirmed at {total}. Please complete the payment to continue.\n\nThe Runnerly Team",
			},
		},
		domain.BookingStatusPaid: {
			Customer: &RoleMessage{
				Subject: "Payment received",
				Body:    "Hello {customer_name},\n\nWe received your payment for booking {booking_id}. A runner will be assigned shortly.\n\nThe Runnerly Team",
			},
			Admin: &RoleMessage{
				Subject: "Booking paid, needs a runner",
				Body:    "Booking {booking_id} is paid ({total}). Assign a runner.",
			},
		},
		domain.BookingStatusAssigned: {
			Customer: &RoleMessage{
				Subject: "A runner was assigned to your booking",
				Body:    "Hello {customer_name},\n\n{runner_name} will handle booking {booking_id}.\n\nThe Runnerly Team",
			},
			Runner: &RoleMessage{
				Subject: "New task assigned to you",
				Body:    "Hi {runner_name},\n\nYou were assigned booking {booking_id}. Check the app for pickup details.",
			},
		},
		domain.BookingStatusPickedUp: {
			Customer: &RoleMessage{
				Subject: "Your items were picked up",
				Body:    "Hello {customer_name},\n\n{runner_name} picked up your items for booking {booking_id}.\n\nThe Runnerly Team",
			},
		},
		domain.BookingStatusOnTheWay: {
			Customer: &RoleMessage{
				Subject: "Your runner is on the way",
				Body:    "Hello {customer_name},\n\n{runner_name} is on the way for booking {booking_id}.\n\nThe Runnerly Team",
			},
		},
		domain.BookingStatusDelivered: {
			Customer: &RoleMessage{
				Subject: "Delivered",
				Body:    "Hello {customer_name},\n\nBooking {booking_id} was delivered. Please confirm completion in the app.\n\nThe Runnerly Team",
			},
			Admin: &RoleMessage{
				Subject: "Booking delivered",
				Body:    "Booking {booking_id} was delivered and awaits completion.",
			},
		},
		domain.BookingStatusCompleted: {
			Customer: &RoleMessage{
				Subject: "Booking completed, thank you",
				Body:    "Hello {customer_name},\n\nBooking {booking_id} is complete. Thank you for using Runnerly.\n\nThe Runnerly Team",
			},
			Runner: &RoleMessage{
				Subject: "Task completed",
				Body:    "Hi {runner_name},\n\nBooking {booking_id} is complete. Your earnings: {earnings}.",
			},
		},
		domain.BookingStatusCancelled: {
			Customer: &RoleMessage{
				Subject: "Your booking was cancelled",
				Body:    "Hello {customer_name},\n\nBooking {booking_id} was cancelled.\n\nThe Runnerly Team",
			},
			Admin: &RoleMessage{
				Subject: "Booking cancelled",
				Body:    "Booking {booking_id} was cancelled. Review compensation if a runner was assigned.",
			},
			Runner: &RoleMessage{
				Subject: "Task cancelled",
				Body:    "Hi {runner_name},\n\nBooking {booking_id} was cancelled. Any compensation will show up in your balance.",
			},
		},
	}
}

type dispatcher struct {
	templates TemplateTable
	userRepo  repository.UserRepository
	email     EmailSender
	sms       SMSSender
}

func NewNotificationDispatcher(
	templates TemplateTable,
	userRepo repository.UserRepository,
	email EmailSender,
	sms SMSSender,
) NotificationDispatcher {
	return &dispatcher{
		templates: templates,
		userRepo:  userRepo,
		email:     email,
		sms:       sms,
	}
}

// DispatchStatusChange fans out the per-role messages for a committed
// transition. Every recipient is attempted independently; a failure on
// any channel is logged and isolated from the rest of the fan-out and
// from the transition itself.
func (d *dispatcher) DispatchStatusChange(ctx context.Context, b *domain.Booking, oldStatus, newStatus domain.BookingStatus) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("notification dispatch panicked", "booking_id", b.ID, "panic", r)
		}
	}()

	tpl, ok := d.templates[newStatus]
	if !ok {
		return
	}

	var wg sync.WaitGroup

	if tpl.Customer != nil && b.CustomerEmail != "" {
		wg.Add(1)
		go d.deliver(ctx, &wg, render(*tpl.Customer, b), b.CustomerEmail, b.CustomerPhone, "customer", b.ID)
	}

	if tpl.Runner != nil {
		email, phone := d.runnerAddress(ctx, b)
		if email != "" || phone != "" {
			wg.Add(1)
			go d.deliver(ctx, &wg, render(*tpl.Runner, b), email, phone, "runner", b.ID)
		}
	}

	if tpl.Admin != nil {
		// The admin set is dynamic; resolve it at dispatch time.
		admins, err := d.userRepo.ListAdmins(ctx)
		if err != nil {
			logger.Error("failed to resolve admins for notification",
				"booking_id", b.ID, "status", newStatus, "error", err)
		}
		msg := render(*tpl.Admin, b)
		for _, admin := range admins {
			wg.Add(1)
			go d.deliver(ctx, &wg, msg, admin.Email, admin.PhoneNumber, "admin", b.ID)
		}
	}

	wg.Wait()
	logger.Debug("notification dispatch finished",
		"booking_id", b.ID, "from", oldStatus, "to", newStatus)
}

// deliver sends one recipient's messages: email first, then the
// best-effort SMS. Neither failure affects the other or any other
// recipient.
func (d *dispatcher) deliver(ctx context.Context, wg *sync.WaitGroup, msg RoleMessage, email, phone, role, bookingID string) {
	defer wg.Done()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("notification delivery panicked", "booking_id", bookingID, "role", role, "panic", r)
		}
	}()

	if email != "" {
		if err := d.email.SendMessage(ctx, email, msg.Subject, msg.Body); err != nil {
			logger.Error("notification email failed",
				"booking_id", bookingID, "role", role, "address", email, "error", err)
		}
	}
	if phone != "" && d.sms != nil {
		if err := d.sms.SendShortMessage(ctx, phone, msg.Subject); err != nil {
			logger.Warn("notification sms failed",
				"booking_id", bookingID, "role", role, "phone", phone, "error", err)
		}
	}
}

func (d *dispatcher) runnerAddress(ctx context.Context, b *domain.Booking) (email, phone string) {
	if b.AssignedRunnerID == nil {
		return "", ""
	}
	runner, err := d.userRepo.GetByID(ctx, *b.AssignedRunnerID)
	if err != nil {
		logger.Warn("failed to resolve runner for notification",
			"booking_id", b.ID, "runner_id", *b.AssignedRunnerID, "error", err)
		return "", b.AssignedRunnerPhone
	}
	return runner.Email, runner.PhoneNumber
}

func render(msg RoleMessage, b *domain.Booking) RoleMessage {
	r := strings.NewReplacer(
		"{booking_id}", b.ID,
		"{status}", string(b.Status),
		"{customer_name}", b.CustomerName,
		"{runner_name}", b.AssignedRunnerName,
		"{total}", formatCents(b.TotalPriceCents),
		"{earnings}", formatCents(b.DriverEarningsCents),
	)
	return RoleMessage{
		Subject: r.Replace(msg.Subject),
		Body:    r.Replace(msg.Body),
	}
}

func formatCents(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
