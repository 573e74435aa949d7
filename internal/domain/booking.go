package domain

import "time"

type BookingStatus string

const (
	BookingStatusDraft           BookingStatus = "draft"
	BookingStatusPriceReview     BookingStatus = "price_review"
	BookingStatusAwaitingPayment BookingStatus = "awaiting_payment"
	BookingStatusPaid            BookingStatus = "paid"
	BookingStatusAssigned        BookingStatus = "assigned"
	BookingStatusPickedUp        BookingStatus = "picked_up"
	BookingStatusOnTheWay        BookingStatus = "on_the_way"
	BookingStatusDelivered       BookingStatus = "delivered"
	BookingStatusCompleted       BookingStatus = "completed"
	BookingStatusArchived        BookingStatus = "archived"
	BookingStatusCancelled       BookingStatus = "cancelled"

	// BookingStatusInProgress is reported by hourly (help-at-home) tasks that
	// were started before the delivery-style status flow was adopted. It is
	// not reachable through the transition table but the compensation policy
	// still recognizes it as "work had begun".
	BookingStatusInProgress BookingStatus = "in_progress"
)

type NegotiationStatus string

const (
	NegotiationNone             NegotiationStatus = ""
	NegotiationPendingReview    NegotiationStatus = "pending_admin_review"
	NegotiationAdminCountered   NegotiationStatus = "admin_countered"
	NegotiationCustomerAccepted NegotiationStatus = "customer_accepted"
	NegotiationRejected         NegotiationStatus = "rejected"
)

// TransitionTable is the directed graph of allowed status transitions.
// It is passed to the booking service at construction rather than read
// from a package-level variable so tests can substitute their own graph.
type TransitionTable map[BookingStatus][]BookingStatus

// DefaultTransitionTable returns the production status flow. Terminal
// states (archived, cancelled) have no outgoing edges.
func DefaultTransitionTable() TransitionTable {
	return TransitionTable{
		BookingStatusDraft:           {BookingStatusPriceReview, BookingStatusCancelled},
		BookingStatusPriceReview:     {BookingStatusAwaitingPayment, BookingStatusDraft, BookingStatusCancelled},
		BookingStatusAwaitingPayment: {BookingStatusPaid, BookingStatusCancelled},
		BookingStatusPaid:            {BookingStatusAssigned, BookingStatusCancelled},
		BookingStatusAssigned:        {BookingStatusPickedUp, BookingStatusCancelled},
		BookingStatusPickedUp:        {BookingStatusOnTheWay, BookingStatusCancelled},
		BookingStatusOnTheWay:        {BookingStatusDelivered, BookingStatusCancelled},
		BookingStatusDelivered:       {BookingStatusCompleted, BookingStatusCancelled},
		BookingStatusCompleted:       {BookingStatusArchived},
	}
}

// Allowed returns the allowed target statuses from a given status. The
// returned slice is a copy; callers may not mutate the table through it.
func (t TransitionTable) Allowed(from BookingStatus) []BookingStatus {
	targets := t[from]
	out := make([]BookingStatus, len(targets))
	copy(out, targets)
	return out
}

func (t TransitionTable) CanTransition(from, to BookingStatus) bool {
	for _, target := range t[from] {
		if target == to {
			return true
		}
	}
	return false
}

type StatusHistoryEntry struct {
	Status    BookingStatus `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	ChangedBy string        `json:"changed_by"`
	Reason    string        `json:"reason,omitempty"`
}

// PriceAddon is one applied price adjustment, kept on the booking for
// receipt and audit display.
type PriceAddon struct {
	Type        string `json:"type"`
	AmountCents int64  `json:"amount_cents"`
	Reason      string `json:"reason"`
}

type Booking struct {
	ID     string        `json:"id"`
	Status BookingStatus `json:"status"`
	// StatusVersion guards the read-validate-write transition sequence.
	// Every committed transition increments it.
	StatusVersion int32                `json:"status_version"`
	StatusHistory []StatusHistoryEntry `json:"status_history"`

	NegotiationStatus NegotiationStatus `json:"negotiation_status,omitempty"`
	CounterMessage    string            `json:"counter_message,omitempty"`

	ServiceType    string     `json:"service_type"`
	DistanceKm     float64    `json:"distance_km"`
	Hours          int32      `json:"hours,omitempty"`
	ScheduledStart *time.Time `json:"scheduled_start,omitempty"`

	BasePriceCents            int64        `json:"base_price_cents"`
	DistanceFeeCents          int64        `json:"distance_fee_cents"`
	Addons                    []PriceAddon `json:"addons,omitempty"`
	TotalPriceCents           int64        `json:"total_price_cents"`
	DriverEarningsCents       int64        `json:"driver_earnings_cents"`
	PlatformFeeCents          int64        `json:"platform_fee_cents"`
	ProposedPriceCents        int64        `json:"proposed_price_cents,omitempty"`
	CustomerOfferedPriceCents int64        `json:"customer_offered_price_cents,omitempty"`

	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
	CustomerName  string `json:"customer_name"`

	AssignedRunnerID    *int32 `json:"assigned_runner_id,omitempty"`
	AssignedRunnerName  string `json:"assigned_runner_name,omitempty"`
	AssignedRunnerPhone string `json:"assigned_runner_phone,omitempty"`

	CompletedDate *time.Time `json:"completed_date,omitempty"`
	ArchivedDate  *time.Time `json:"archived_date,omitempty"`
	CreatedOn     time.Time  `json:"created_on"`
	UpdatedOn     time.Time  `json:"updated_on"`
}

// WorkHadBegun reports whether the runner had started the task at the
// given status. Used by the status-based compensation policy.
func WorkHadBegun(status BookingStatus) bool {
	switch status {
	case BookingStatusPickedUp, BookingStatusOnTheWay, BookingStatusInProgress:
		return true
	}
	return false
}
