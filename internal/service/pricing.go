package service

import (
	"fmt"
	"math"
	"sort"
	"time"

	"runnerly-backend/internal/domain"
)

const (
	// ServiceTypeHelpAtHome is priced per hour on top of its own base;
	// every other service type uses the city base plus distance.
	ServiceTypeHelpAtHome = "help_at_home"

	// RuleReasonAutomatic and RuleReasonSelected tag applied rules for
	// receipt display.
	RuleReasonAutomatic = "automatic"
	RuleReasonSelected  = "customer-selected"

	// driverShare is the runner's fraction of the total price. The
	// rounding remainder always lands in the platform fee.
	driverShare = 0.8
)

type PricingConfig struct {
	BaseCityPriceCents  int64
	PerKmPriceCents     int64
	HelpAtHomeBaseCents int64
	PerHourRateCents    int64
}

type QuoteRequest struct {
	ServiceType     string
	DistanceKm      float64
	Hours           int32
	SelectedRuleIDs []int32
	PreferredTime   time.Time
}

// PricingEngine computes price breakdowns from the platform rate card and
// the operator-maintained rule catalog.
type PricingEngine struct {
	cfg PricingConfig
}

func NewPricingEngine(cfg PricingConfig) *PricingEngine {
	return &PricingEngine{cfg: cfg}
}

// ValidateRules checks the rule catalog once at load time. Malformed or
// negative rules must never reach price computation.
func ValidateRules(rules []domain.PricingRule) error {
	for _, r := range rules {
		if r.Amount < 0 {
			return &domain.ValidationError{
				Field:   fmt.Sprintf("pricing_rule[%d].amount", r.ID),
				Message: "must not be negative",
			}
		}
		switch r.ValueKind {
		case domain.RuleValuePercentage, domain.RuleValueFixed:
		default:
			return &domain.ValidationError{
				Field:   fmt.Sprintf("pricing_rule[%d].value_kind", r.ID),
				Message: fmt.Sprintf("unknown kind %q", r.ValueKind),
			}
		}
		if w := r.ActiveWindow; w != nil {
			if w.StartHour < 0 || w.StartHour > 23 || w.EndHour < 0 || w.EndHour > 24 {
				return &domain.ValidationError{
					Field:   fmt.Sprintf("pricing_rule[%d].active_window", r.ID),
					Message: "hours out of range",
				}
			}
		}
	}
	return nil
}

// ComputeQuote derives the full breakdown. Rules are assumed validated by
// ValidateRules at load time. Percentage rules are each computed against
// the delivery total, never against a running total, so they do not
// compound.
func (e *PricingEngine) ComputeQuote(req QuoteRequest, rules []domain.PricingRule) (*domain.PriceBreakdown, error) {
	if req.DistanceKm < 0 {
		return nil, &domain.ValidationError{Field: "distance_km", Message: "must not be negative"}
	}
	if req.Hours < 0 {
		return nil, &domain.ValidationError{Field: "hours", Message: "must not be negative"}
	}

	bd := &domain.PriceBreakdown{}
	if req.ServiceType == ServiceTypeHelpAtHome {
		bd.BasePriceCents = e.cfg.HelpAtHomeBaseCents
		bd.TimeCostCents = int64(req.Hours) * e.cfg.PerHourRateCents
	} else {
		bd.BasePriceCents = e.cfg.BaseCityPriceCents
	}
	bd.DistanceFeeCents = roundCents(req.DistanceKm * float64(e.cfg.PerKmPriceCents))
	bd.DeliveryTotalCents = bd.BasePriceCents + bd.DistanceFeeCents + bd.TimeCostCents

	// Auto-apply rules whose window matches the preferred time go first,
	// in descending priority. Rules without a window are always active.
	var auto []domain.PricingRule
	for _, r := range rules {
		if !r.Active || !r.AutoApply {
			continue
		}
		if r.ActiveWindow != nil && !r.ActiveWindow.Matches(req.PreferredTime) {
			continue
		}
		auto = append(auto, r)
	}
	sort.SliceStable(auto, func(i, j int) bool { return auto[i].Priority > auto[j].Priority })
	for _, r := range auto {
		bd.AppliedRules = append(bd.AppliedRules, domain.AppliedRule{
			Type:        r.Type,
			AmountCents: ruleAmount(r, bd.DeliveryTotalCents),
			Reason:      RuleReasonAutomatic,
		})
	}

	// Manually selected addons follow, in the order given.
	byID := make(map[int32]domain.PricingRule, len(rules))
	for _, r := range rules {
		byID[r.ID] = r
	}
	for _, id := range req.SelectedRuleIDs {
		r, ok := byID[id]
		if !ok || !r.Active {
			return nil, &domain.ValidationError{
				Field:   "selected_addons",
				Message: fmt.Sprintf("unknown addon %d", id),
			}
		}
		bd.AppliedRules = append(bd.AppliedRules, domain.AppliedRule{
			Type:        r.Type,
			AmountCents: ruleAmount(r, bd.DeliveryTotalCents),
			Reason:      RuleReasonSelected,
		})
	}

	bd.TotalPriceCents = bd.DeliveryTotalCents
	for _, ar := range bd.AppliedRules {
		bd.TotalPriceCents += ar.AmountCents
	}

	bd.DriverEarningsCents, bd.PlatformFeeCents = SplitTotal(bd.TotalPriceCents)
	return bd, nil
}

func ruleAmount(r domain.PricingRule, deliveryTotalCents int64) int64 {
	if r.ValueKind == domain.RuleValuePercentage {
		return roundCents(float64(deliveryTotalCents) * float64(r.Amount) / 100)
	}
	return r.Amount
}

// SplitTotal divides a total into the runner's 80% share and the platform
// fee. The split always sums back to the total; the rounding remainder is
// absorbed by the platform fee, never the runner share.
func SplitTotal(totalCents int64) (driverEarnings, platformFee int64) {
	driverEarnings = roundCents(float64(totalCents) * driverShare)
	platformFee = totalCents - driverEarnings
	return driverEarnings, platformFee
}

func roundCents(f float64) int64 {
	return int64(math.Round(f))
}
