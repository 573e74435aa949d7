package domain

import "time"

type CompensationStatus string

const (
	CompensationStatusSuggested CompensationStatus = "SUGGESTED"
	CompensationStatusApproved  CompensationStatus = "APPROVED"
	CompensationStatusPaid      CompensationStatus = "PAID"
)

// CancellationCompensation records a payout to a runner whose work was
// disrupted by a cancellation. At most one exists per booking.
type CancellationCompensation struct {
	ID          string             `json:"id"`
	BookingID   string             `json:"booking_id"`
	RunnerID    int32              `json:"runner_id"`
	AmountCents int64              `json:"amount_cents"`
	Reason      string             `json:"reason"`
	WasAccepted bool               `json:"was_accepted"`
	WasStarted  bool               `json:"was_started"`
	Status      CompensationStatus `json:"status"`
	CreatedOn   time.Time          `json:"created_on"`
}
