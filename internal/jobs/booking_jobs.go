package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"runnerly-backend/internal/domain"
	"runnerly-backend/internal/logger"
)

// ArchiveCompletedBookings moves bookings completed more than the
// configured number of days ago into archived. Going through the state
// machine keeps the archive step in the audit history.
func (jr *JobRunner) ArchiveCompletedBookings() {
	jr.runWithRecovery("ArchiveCompletedBookings", func() {
		ctx := context.Background()
		cutoff := time.Now().AddDate(0, 0, -jr.config.Archival.AfterDays)

		bookings, err := jr.bookingRepo.ListCompletedBefore(ctx, cutoff)
		if err != nil {
			logger.Error("Failed to query completed bookings", "error", err)
			return
		}

		archived := 0
		for _, b := range bookings {
			_, err := jr.bookingSvc.Transition(ctx, b.ID, domain.BookingStatusArchived, "system", "auto-archive")
			if err != nil {
				// A concurrent operator action may have moved the booking;
				// skip it and pick it up on the next run if still eligible.
				if errors.Is(err, domain.ErrInvalidTransition) || errors.Is(err, domain.ErrConflict) {
					logger.Warn("Skipped archiving booking", "booking_id", b.ID, "error", err)
					continue
				}
				logger.Error("Failed to archive booking", "booking_id", b.ID, "error", err)
				continue
			}
			archived++
		}

		logger.Info("Archived completed bookings", "count", archived, "cutoff", cutoff)
	})
}

// SendStartReminders emails customers and runners whose scheduled
// bookings start within the next day.
func (jr *JobRunner) SendStartReminders() {
	jr.runWithRecovery("SendStartReminders", func() {
		ctx := context.Background()
		now := time.Now()

		bookings, err := jr.bookingRepo.ListStartingBetween(ctx, now, now.Add(24*time.Hour))
		if err != nil {
			logger.Error("Failed to query upcoming bookings", "error", err)
			return
		}

		count := 0
		for _, b := range bookings {
			start := ""
			if b.ScheduledStart != nil {
				start = b.ScheduledStart.Format(time.RFC1123)
			}
			if b.CustomerEmail != "" {
				body := fmt.Sprintf("Hello %s,\n\nA reminder that your booking %s starts at %s.\n\nThe Runnerly Team",
					b.CustomerName, b.ID, start)
				if err := jr.email.SendMessage(ctx, b.CustomerEmail, "Your booking starts soon", body); err != nil {
					logger.Error("Failed to send customer reminder", "booking_id", b.ID, "error", err)
				} else {
					count++
				}
			}
			if b.AssignedRunnerID != nil {
				runner, err := jr.userRepo.GetByID(ctx, *b.AssignedRunnerID)
				if err != nil {
					logger.Warn("Failed to resolve runner for reminder", "booking_id", b.ID, "error", err)
					continue
				}
				body := fmt.Sprintf("Hi %s,\n\nA reminder that booking %s starts at %s.",
					runner.Name, b.ID, start)
				if err := jr.email.SendMessage(ctx, runner.Email, "Your task starts soon", body); err != nil {
					logger.Error("Failed to send runner reminder", "booking_id", b.ID, "error", err)
				} else {
					count++
				}
			}
		}

		logger.Info("Sent start reminders", "count", count)
	})
}
