package domain

import "time"

type RuleValueKind string

const (
	RuleValuePercentage RuleValueKind = "PERCENTAGE"
	RuleValueFixed      RuleValueKind = "FIXED"
)

// ActiveWindow is an hour-of-day range during which an auto-apply rule
// matches. EndHour is exclusive. A window may wrap past midnight
// (e.g. StartHour 20, EndHour 7 covers 20:00-23:59 and 00:00-06:59).
type ActiveWindow struct {
	StartHour int `json:"start_hour" yaml:"start_hour"`
	EndHour   int `json:"end_hour" yaml:"end_hour"`
}

func (w ActiveWindow) Matches(t time.Time) bool {
	h := t.Hour()
	if w.StartHour <= w.EndHour {
		return h >= w.StartHour && h < w.EndHour
	}
	return h >= w.StartHour || h < w.EndHour
}

// PricingRule is an operator-maintained price adjustment. Rules are
// read-only to the pricing engine and validated once at load time.
type PricingRule struct {
	ID           int32         `json:"id"`
	Type         string        `json:"type"`
	ValueKind    RuleValueKind `json:"value_kind"`
	Amount       int64         `json:"amount"` // percent for PERCENTAGE, cents for FIXED
	AutoApply    bool          `json:"auto_apply"`
	ActiveWindow *ActiveWindow `json:"active_window,omitempty"`
	Priority     int32         `json:"priority"`
	Active       bool          `json:"active"`
}

// AppliedRule is one rule's contribution to a computed price, with a
// human-readable reason for receipt display.
type AppliedRule struct {
	Type        string `json:"type"`
	AmountCents int64  `json:"amount_cents"`
	Reason      string `json:"reason"` // "automatic" or "customer-selected"
}

type PriceBreakdown struct {
	BasePriceCents      int64         `json:"base_price_cents"`
	DistanceFeeCents    int64         `json:"distance_fee_cents"`
	TimeCostCents       int64         `json:"time_cost_cents,omitempty"`
	DeliveryTotalCents  int64         `json:"delivery_total_cents"`
	AppliedRules        []AppliedRule `json:"applied_rules,omitempty"`
	TotalPriceCents     int64         `json:"total_price_cents"`
	DriverEarningsCents int64         `json:"driver_earnings_cents"`
	PlatformFeeCents    int64         `json:"platform_fee_cents"`
}
